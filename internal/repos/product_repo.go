package repos

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"shopvision/internal/domain"
)

const productCols = `id, name, description, cost_price, stock, category, image_url, active, created_at, updated_at`

// likeEscaper makes user text match literally inside a LIKE ... ESCAPE '\' pattern.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

type ProductRepo struct{ db *sqlx.DB }

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

// List applies the filter; inactive products are hidden unless asked for.
func (r *ProductRepo) List(ctx context.Context, f domain.ProductFilter) ([]domain.Product, error) {
	where := []string{"1=1"}
	args := []any{}
	if !f.IncludeInactive {
		where = append(where, "active = ?")
		args = append(args, true)
	}
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		pattern := "%" + likeEscaper.Replace(q) + "%"
		where = append(where, `(LOWER(name) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern)
	}
	if f.Category != "" {
		where = append(where, "category = ?")
		args = append(args, f.Category)
	}
	if f.MaxStock != nil {
		where = append(where, "stock <= ?")
		args = append(args, *f.MaxStock)
	}

	q := `SELECT ` + productCols + ` FROM products WHERE ` + strings.Join(where, " AND ") + ` ORDER BY name, id`
	if f.Limit > 0 {
		q += ` LIMIT ? OFFSET ?`
		args = append(args, f.Limit, f.Offset)
	}

	out := []domain.Product{}
	err := r.db.SelectContext(ctx, &out, r.db.Rebind(q), args...)
	return out, err
}

// Get returns sql.ErrNoRows when the id is unknown.
func (r *ProductRepo) Get(ctx context.Context, id string) (domain.Product, error) {
	var p domain.Product
	err := r.db.GetContext(ctx, &p, r.db.Rebind(`SELECT `+productCols+` FROM products WHERE id = ?`), id)
	return p, err
}

func (r *ProductRepo) Create(ctx context.Context, p domain.Product) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO products(`+productCols+`)
		VALUES(?,?,?,?,?,?,?,?,?,?)`),
		p.ID, p.Name, p.Description, p.CostPrice, p.Stock, p.Category, p.ImageURL, p.Active, p.CreatedAt, p.UpdatedAt)
	return err
}

// Update writes only the fields present in u. Returns sql.ErrNoRows when
// nothing matched.
func (r *ProductRepo) Update(ctx context.Context, id string, u domain.ProductUpdate, now time.Time) error {
	set := []string{"updated_at = ?"}
	args := []any{now}
	if u.Name != nil {
		set = append(set, "name = ?")
		args = append(args, *u.Name)
	}
	if u.Description != nil {
		set = append(set, "description = ?")
		args = append(args, *u.Description)
	}
	if u.CostPrice != nil {
		set = append(set, "cost_price = ?")
		args = append(args, *u.CostPrice)
	}
	if u.Category != nil {
		set = append(set, "category = ?")
		args = append(args, *u.Category)
	}
	if u.ImageURL != nil {
		set = append(set, "image_url = ?")
		args = append(args, *u.ImageURL)
	}
	args = append(args, id)

	res, err := r.db.ExecContext(ctx, r.db.Rebind(`UPDATE products SET `+strings.Join(set, ", ")+` WHERE id = ?`), args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a product. Products referenced by recorded purchases or
// sales are deactivated instead so history keeps resolving; soft reports
// which of the two happened.
func (r *ProductRepo) Delete(ctx context.Context, id string, now time.Time) (soft bool, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback() }()

	var refs int
	if err := tx.GetContext(ctx, &refs, tx.Rebind(`
		SELECT (SELECT COUNT(*) FROM purchase_items WHERE product_id = ?)
		     + (SELECT COUNT(*) FROM sale_items WHERE product_id = ?)`), id, id); err != nil {
		return false, err
	}

	var res sql.Result
	if refs > 0 {
		soft = true
		res, err = tx.ExecContext(ctx, tx.Rebind(`UPDATE products SET active = ?, updated_at = ? WHERE id = ?`), false, now, id)
	} else {
		res, err = tx.ExecContext(ctx, tx.Rebind(`DELETE FROM products WHERE id = ?`), id)
	}
	if err != nil {
		return false, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return false, sql.ErrNoRows
	}
	return soft, tx.Commit()
}
