package repos

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"shopvision/internal/domain"
)

// SettingGlobalMargin holds the store-wide margin percentage as text.
const SettingGlobalMargin = "global_margin_percent"

// queryer is satisfied by both *sqlx.DB and *sqlx.Tx.
type queryer interface {
	sqlx.QueryerContext
	Rebind(string) string
}

type SettingsRepo struct{ db *sqlx.DB }

func NewSettingsRepo(db *sqlx.DB) *SettingsRepo { return &SettingsRepo{db: db} }

// RawMargin returns the stored margin text, or "" when never set.
func (r *SettingsRepo) RawMargin(ctx context.Context) (string, error) {
	return rawMargin(ctx, r.db)
}

func (r *SettingsRepo) SetMargin(ctx context.Context, value string, now time.Time) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO settings(key, value, updated_at) VALUES(?,?,?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`), SettingGlobalMargin, value, now)
	return err
}

func (r *SettingsRepo) Overrides(ctx context.Context) ([]domain.PriceOverride, error) {
	return overrides(ctx, r.db)
}

func (r *SettingsRepo) SetOverride(ctx context.Context, o domain.PriceOverride) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO price_overrides(product_id, price, updated_at) VALUES(?,?,?)
		ON CONFLICT(product_id) DO UPDATE SET price = excluded.price, updated_at = excluded.updated_at
	`), o.ProductID, o.Price, o.UpdatedAt)
	return err
}

// DeleteOverride returns sql.ErrNoRows when the product had none.
func (r *SettingsRepo) DeleteOverride(ctx context.Context, productID string) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM price_overrides WHERE product_id = ?`), productID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// RawMargin and Overrides read the pricing configuration inside a ledger
// transaction so a sale sees one consistent view.
func (t *LedgerTx) RawMargin() (string, error) { return rawMargin(t.ctx, t.tx) }

func (t *LedgerTx) Overrides() ([]domain.PriceOverride, error) { return overrides(t.ctx, t.tx) }

func rawMargin(ctx context.Context, q queryer) (string, error) {
	var v string
	err := sqlx.GetContext(ctx, q, &v, q.Rebind(`SELECT value FROM settings WHERE key = ?`), SettingGlobalMargin)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return v, err
}

func overrides(ctx context.Context, q queryer) ([]domain.PriceOverride, error) {
	out := []domain.PriceOverride{}
	err := sqlx.SelectContext(ctx, q, &out, `SELECT product_id, price, updated_at FROM price_overrides ORDER BY product_id`)
	return out, err
}
