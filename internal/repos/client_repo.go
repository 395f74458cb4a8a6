package repos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"shopvision/internal/domain"
)

const clientCols = `id, name, markup, created_at`

type ClientRepo struct{ db *sqlx.DB }

func NewClientRepo(db *sqlx.DB) *ClientRepo { return &ClientRepo{db: db} }

func (r *ClientRepo) List(ctx context.Context) ([]domain.WholesaleClient, error) {
	out := []domain.WholesaleClient{}
	err := r.db.SelectContext(ctx, &out, `SELECT `+clientCols+` FROM wholesale_clients ORDER BY name`)
	return out, err
}

// Get returns sql.ErrNoRows when the id is unknown.
func (r *ClientRepo) Get(ctx context.Context, id string) (domain.WholesaleClient, error) {
	var c domain.WholesaleClient
	err := r.db.GetContext(ctx, &c, r.db.Rebind(`SELECT `+clientCols+` FROM wholesale_clients WHERE id = ?`), id)
	return c, err
}

func (r *ClientRepo) Create(ctx context.Context, c domain.WholesaleClient) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO wholesale_clients(`+clientCols+`) VALUES(?,?,?,?)`),
		c.ID, c.Name, c.Markup, c.CreatedAt)
	return err
}

// Update rewrites name and markup; an invalid NullDecimal clears the markup.
func (r *ClientRepo) Update(ctx context.Context, c domain.WholesaleClient) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`UPDATE wholesale_clients SET name = ?, markup = ? WHERE id = ?`),
		c.Name, c.Markup, c.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
