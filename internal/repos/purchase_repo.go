package repos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"shopvision/internal/domain"
)

const purchaseCols = `id, purchase_date, total_cost, payment_method, supplier, notes, created_by`

type PurchaseRepo struct{ db *sqlx.DB }

func NewPurchaseRepo(db *sqlx.DB) *PurchaseRepo { return &PurchaseRepo{db: db} }

func (t *LedgerTx) InsertPurchase(p domain.Purchase) error {
	_, err := t.tx.ExecContext(t.ctx, t.tx.Rebind(`
		INSERT INTO purchases(`+purchaseCols+`) VALUES(?,?,?,?,?,?,?)`),
		p.ID, p.PurchaseDate, p.TotalCost, p.PaymentMethod, p.Supplier, p.Notes, p.CreatedBy)
	return err
}

func (t *LedgerTx) InsertPurchaseItem(it domain.PurchaseItem) error {
	_, err := t.tx.ExecContext(t.ctx, t.tx.Rebind(`
		INSERT INTO purchase_items(purchase_id, line_no, product_id, product_name, category, quantity, unit_cost, created_product)
		VALUES(?,?,?,?,?,?,?,?)`),
		it.PurchaseID, it.Line, it.ProductID, it.ProductName, it.Category, it.Quantity, it.UnitCost, it.Created)
	return err
}

// List returns purchase headers newest first, without items. A limit of
// zero means no limit.
func (r *PurchaseRepo) List(ctx context.Context, rng domain.DateRange, limit int) ([]domain.Purchase, error) {
	where, args := dateWhere("purchase_date", rng)
	q := `SELECT ` + purchaseCols + ` FROM purchases WHERE ` + where + ` ORDER BY purchase_date DESC, id`
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}

	out := []domain.Purchase{}
	err := r.db.SelectContext(ctx, &out, r.db.Rebind(q), args...)
	return out, err
}

// Get returns the purchase with its items; sql.ErrNoRows if unknown.
func (r *PurchaseRepo) Get(ctx context.Context, id string) (domain.Purchase, error) {
	var p domain.Purchase
	if err := r.db.GetContext(ctx, &p, r.db.Rebind(`SELECT `+purchaseCols+` FROM purchases WHERE id = ?`), id); err != nil {
		return domain.Purchase{}, err
	}
	if err := r.db.SelectContext(ctx, &p.Items, r.db.Rebind(`
		SELECT purchase_id, line_no, product_id, product_name, category, quantity, unit_cost, created_product
		FROM purchase_items
		WHERE purchase_id = ?
		ORDER BY line_no`), id); err != nil {
		return domain.Purchase{}, err
	}
	return p, nil
}

// dateWhere builds an inclusive range predicate on col.
func dateWhere(col string, rng domain.DateRange) (string, []any) {
	where := "1=1"
	args := []any{}
	if !rng.From.IsZero() {
		where += " AND " + col + " >= ?"
		args = append(args, rng.From.UTC())
	}
	if !rng.To.IsZero() {
		where += " AND " + col + " <= ?"
		args = append(args, rng.To.UTC())
	}
	return where, args
}
