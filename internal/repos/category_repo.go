package repos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"shopvision/internal/domain"
)

type CategoryRepo struct{ db *sqlx.DB }

func NewCategoryRepo(db *sqlx.DB) *CategoryRepo { return &CategoryRepo{db: db} }

// Counts returns every known category with its number of active products,
// including categories that currently have none.
func (r *CategoryRepo) Counts(ctx context.Context) ([]domain.CategoryCount, error) {
	var rows []domain.CategoryCount
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(`
		SELECT category, COUNT(*) AS products
		FROM products
		WHERE active = ?
		GROUP BY category`), true); err != nil {
		return nil, err
	}
	byCat := make(map[string]int, len(rows))
	for _, c := range rows {
		byCat[c.Category] = c.Products
	}
	out := make([]domain.CategoryCount, 0, len(domain.Categories))
	for _, c := range domain.Categories {
		out = append(out, domain.CategoryCount{Category: c, Products: byCat[c]})
	}
	return out, nil
}
