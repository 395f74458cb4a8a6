package repos

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"shopvision/internal/domain"
)

// ErrShortStock is returned by DecrementIfAvailable when the guarded update
// matched no row.
var ErrShortStock = errors.New("insufficient stock")

type InventoryRepo struct{ db *sqlx.DB }

func NewInventoryRepo(db *sqlx.DB) *InventoryRepo { return &InventoryRepo{db: db} }

// Qty returns current stock for a product.
// If no row exists, it returns sql.ErrNoRows from sqlx.Get.
func (r *InventoryRepo) Qty(ctx context.Context, productID string) (int, error) {
	var qty int
	err := r.db.GetContext(ctx, &qty, r.db.Rebind(`SELECT stock FROM products WHERE id = ?`), productID)
	if err != nil {
		return 0, err
	}
	return qty, nil
}

// LedgerTx is one all-or-nothing unit of stock and ledger writes.
type LedgerTx struct {
	ctx context.Context
	tx  *sqlx.Tx
}

// WithTx runs fn inside a transaction, committing only when fn returns nil.
func (r *InventoryRepo) WithTx(ctx context.Context, fn func(*LedgerTx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(&LedgerTx{ctx: ctx, tx: tx}); err != nil {
		return err
	}
	return tx.Commit()
}

func (t *LedgerTx) Product(id string) (domain.Product, error) {
	var p domain.Product
	err := t.tx.GetContext(t.ctx, &p, t.tx.Rebind(`SELECT `+productCols+` FROM products WHERE id = ?`), id)
	return p, err
}

// DecrementIfAvailable subtracts "by" units only if enough stock exists.
func (t *LedgerTx) DecrementIfAvailable(productID string, by int, now time.Time) error {
	res, err := t.tx.ExecContext(t.ctx, t.tx.Rebind(`
		UPDATE products
		SET stock = stock - ?, updated_at = ?
		WHERE id = ? AND stock >= ?
	`), by, now, productID, by)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrShortStock
	}
	return nil
}

// IncrementBy adds units to an existing product; sql.ErrNoRows if unknown.
func (t *LedgerTx) IncrementBy(productID string, by int, now time.Time) error {
	res, err := t.tx.ExecContext(t.ctx, t.tx.Rebind(`
		UPDATE products
		SET stock = stock + ?, updated_at = ?
		WHERE id = ?
	`), by, now, productID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (t *LedgerTx) CreateProduct(p domain.Product) error {
	_, err := t.tx.ExecContext(t.ctx, t.tx.Rebind(`
		INSERT INTO products(`+productCols+`)
		VALUES(?,?,?,?,?,?,?,?,?,?)`),
		p.ID, p.Name, p.Description, p.CostPrice, p.Stock, p.Category, p.ImageURL, p.Active, p.CreatedAt, p.UpdatedAt)
	return err
}

// Client reads a wholesale client inside the transaction.
func (t *LedgerTx) Client(id string) (domain.WholesaleClient, error) {
	var c domain.WholesaleClient
	err := t.tx.GetContext(t.ctx, &c, t.tx.Rebind(`SELECT `+clientCols+` FROM wholesale_clients WHERE id = ?`), id)
	return c, err
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
