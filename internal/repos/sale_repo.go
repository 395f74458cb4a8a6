package repos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"shopvision/internal/domain"
)

const (
	saleCols     = `id, sale_date, sale_type, COALESCE(client_id,'') AS client_id, COALESCE(user_id,'') AS user_id, markup_percent, total_amount`
	saleItemCols = `sale_id, line_no, product_id, product_name, quantity, price_at_sale, unit_cost_at_sale, overridden`
)

type SaleRepo struct{ db *sqlx.DB }

func NewSaleRepo(db *sqlx.DB) *SaleRepo { return &SaleRepo{db: db} }

func (t *LedgerTx) InsertSale(s domain.Sale) error {
	_, err := t.tx.ExecContext(t.ctx, t.tx.Rebind(`
		INSERT INTO sales(id, sale_date, sale_type, client_id, user_id, markup_percent, total_amount)
		VALUES(?,?,?,?,?,?,?)`),
		s.ID, s.SaleDate, s.SaleType, nullable(s.ClientID), nullable(s.UserID), s.MarkupPercent, s.TotalAmount)
	return err
}

func (t *LedgerTx) InsertSaleItem(it domain.SaleItem) error {
	_, err := t.tx.ExecContext(t.ctx, t.tx.Rebind(`
		INSERT INTO sale_items(`+saleItemCols+`) VALUES(?,?,?,?,?,?,?,?)`),
		it.SaleID, it.Line, it.ProductID, it.ProductName, it.Quantity, it.PriceAtSale, it.UnitCostAtSale, it.Overridden)
	return err
}

// List returns sales newest first with their items attached. A limit of
// zero means no limit.
func (r *SaleRepo) List(ctx context.Context, rng domain.DateRange, limit int) ([]domain.Sale, error) {
	where, args := dateWhere("sale_date", rng)
	q := `SELECT ` + saleCols + ` FROM sales WHERE ` + where + ` ORDER BY sale_date DESC, id`
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}

	out := []domain.Sale{}
	if err := r.db.SelectContext(ctx, &out, r.db.Rebind(q), args...); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}

	ids := make([]string, len(out))
	for i, s := range out {
		ids[i] = s.ID
	}
	query, inArgs, err := sqlx.In(`SELECT `+saleItemCols+` FROM sale_items WHERE sale_id IN (?) ORDER BY sale_id, line_no`, ids)
	if err != nil {
		return nil, err
	}
	var items []domain.SaleItem
	if err := r.db.SelectContext(ctx, &items, r.db.Rebind(query), inArgs...); err != nil {
		return nil, err
	}

	byID := make(map[string][]domain.SaleItem, len(out))
	for _, it := range items {
		byID[it.SaleID] = append(byID[it.SaleID], it)
	}
	for i := range out {
		out[i].Items = byID[out[i].ID]
	}
	return out, nil
}

// Get returns the sale with its items; sql.ErrNoRows if unknown.
func (r *SaleRepo) Get(ctx context.Context, id string) (domain.Sale, error) {
	var s domain.Sale
	if err := r.db.GetContext(ctx, &s, r.db.Rebind(`SELECT `+saleCols+` FROM sales WHERE id = ?`), id); err != nil {
		return domain.Sale{}, err
	}
	if err := r.db.SelectContext(ctx, &s.Items, r.db.Rebind(`
		SELECT `+saleItemCols+` FROM sale_items WHERE sale_id = ? ORDER BY line_no`), id); err != nil {
		return domain.Sale{}, err
	}
	return s, nil
}
