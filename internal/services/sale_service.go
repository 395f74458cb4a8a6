package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"shopvision/internal/domain"
	"shopvision/internal/events"
	applog "shopvision/internal/log"
	"shopvision/internal/pricing"
	"shopvision/internal/repos"
	"shopvision/internal/validate"
)

type SaleService struct {
	Inv      *repos.InventoryRepo
	Sales    *repos.SaleRepo
	Events   events.Publisher
	Defaults pricing.Defaults
}

func NewSaleService(inv *repos.InventoryRepo, sales *repos.SaleRepo, pub events.Publisher, d pricing.Defaults) *SaleService {
	if pub == nil {
		pub = events.Nop{}
	}
	return &SaleService{Inv: inv, Sales: sales, Events: pub, Defaults: d}
}

// demand is the summed quantity of one product across a sale's lines.
type demand struct {
	productID string
	qty       int
}

// aggregate validates the lines and sums quantities per product, keeping
// the order in which products first appear.
func aggregate(items []domain.SaleLine) ([]demand, error) {
	if len(items) == 0 {
		return nil, invalid("a sale needs at least one item")
	}
	idx := make(map[string]int, len(items))
	var out []demand
	for i, it := range items {
		id, ok := validate.ID(it.ProductID)
		if !ok {
			return nil, &LineItemError{Index: i, Reason: "product_id is required"}
		}
		if it.Quantity <= 0 {
			return nil, &LineItemError{Index: i, Reason: "quantity must be positive"}
		}
		if !validate.Quantity(it.Quantity) {
			return nil, &LineItemError{Index: i, Reason: fmt.Sprintf("quantity must not exceed %d", validate.MaxQuantity)}
		}
		if j, seen := idx[id]; seen {
			if out[j].qty > validate.MaxQuantity-it.Quantity {
				return nil, &LineItemError{Index: i, Reason: fmt.Sprintf("total quantity of %s must not exceed %d", id, validate.MaxQuantity)}
			}
			out[j].qty += it.Quantity
			continue
		}
		idx[id] = len(out)
		out = append(out, demand{productID: id, qty: it.Quantity})
	}
	return out, nil
}

func checkSaleHeader(in domain.SaleInput) (domain.SaleInput, error) {
	st, ok := validate.SaleType(in.SaleType)
	if !ok {
		return in, invalid("sale_type must be %q or %q", domain.SaleFinalConsumer, domain.SaleWholesale)
	}
	in.SaleType = st
	if st == domain.SaleFinalConsumer {
		in.ClientID = ""
	}
	return in, nil
}

// authorize prices every product and checks the summed demand against
// current stock. Nothing is written.
func (s *SaleService) authorize(tx *repos.LedgerTx, in domain.SaleInput, lines []demand, now time.Time) (domain.SaleQuote, error) {
	markup, err := pricing.SelectMarkup(in.SaleType, in.ClientID, func(id string) (domain.WholesaleClient, error) {
		c, err := tx.Client(id)
		return c, storeErr("sale.client", err, ErrUnknownClient)
	}, s.Defaults)
	if err != nil {
		return domain.SaleQuote{}, err
	}

	raw, err := tx.RawMargin()
	if err != nil {
		return domain.SaleQuote{}, storeErr("sale.margin", err, nil)
	}
	ovs, err := tx.Overrides()
	if err != nil {
		return domain.SaleQuote{}, storeErr("sale.overrides", err, nil)
	}
	cfg := configFrom(raw, ovs)

	q := domain.SaleQuote{
		Sale: domain.Sale{
			ID:            uuid.NewString(),
			SaleDate:      now,
			SaleType:      in.SaleType,
			ClientID:      in.ClientID,
			UserID:        in.UserID,
			MarkupPercent: markup,
			TotalAmount:   decimal.Zero,
		},
		Profit: decimal.Zero,
	}
	for i, l := range lines {
		p, err := tx.Product(l.productID)
		if err != nil {
			return domain.SaleQuote{}, storeErr("sale.product", err, unknownProduct(l.productID))
		}
		if !p.Active {
			return domain.SaleQuote{}, unknownProduct(l.productID)
		}
		if l.qty > p.Stock {
			return domain.SaleQuote{}, &StockError{ProductID: p.ID, Requested: l.qty, Available: p.Stock}
		}

		rule := cfg.SaleRule(p.ID, markup)
		it := domain.SaleItem{
			SaleID:         q.Sale.ID,
			Line:           i + 1,
			ProductID:      p.ID,
			ProductName:    p.Name,
			Quantity:       l.qty,
			PriceAtSale:    pricing.Quote(pricing.Resolve(p.CostPrice, rule)),
			UnitCostAtSale: p.CostPrice,
			Overridden:     rule.Kind == pricing.KindManualOverride,
		}
		q.Sale.Items = append(q.Sale.Items, it)
		q.Sale.TotalAmount = q.Sale.TotalAmount.Add(it.Subtotal())
		q.Profit = q.Profit.Add(it.Profit())
	}
	return q, nil
}

// Quote prices a sale exactly as Apply would, without recording it.
func (s *SaleService) Quote(ctx context.Context, in domain.SaleInput) (domain.SaleQuote, error) {
	in, err := checkSaleHeader(in)
	if err != nil {
		return domain.SaleQuote{}, err
	}
	lines, err := aggregate(in.Items)
	if err != nil {
		return domain.SaleQuote{}, err
	}

	var q domain.SaleQuote
	err = s.Inv.WithTx(ctx, func(tx *repos.LedgerTx) error {
		var err error
		q, err = s.authorize(tx, in, lines, time.Now().UTC().Truncate(time.Second))
		if err != nil {
			return err
		}
		// read-only: roll back
		return errQuoteDone
	})
	if err != nil && !errors.Is(err, errQuoteDone) {
		return domain.SaleQuote{}, storeErr("sale.quote", err, nil)
	}
	return q, nil
}

var errQuoteDone = errors.New("quote done")

// Apply records a sale. All lines are checked against stock before any
// mutation; the whole sale commits or nothing does. Prices are captured
// at authorization and never rewritten.
func (s *SaleService) Apply(ctx context.Context, in domain.SaleInput) (domain.Sale, error) {
	in, err := checkSaleHeader(in)
	if err != nil {
		return domain.Sale{}, err
	}
	lines, err := aggregate(in.Items)
	if err != nil {
		return domain.Sale{}, err
	}

	var sale domain.Sale
	err = s.Inv.WithTx(ctx, func(tx *repos.LedgerTx) error {
		now := time.Now().UTC().Truncate(time.Second)
		q, err := s.authorize(tx, in, lines, now)
		if err != nil {
			return err
		}
		sale = q.Sale

		for _, it := range sale.Items {
			if err := tx.DecrementIfAvailable(it.ProductID, it.Quantity, now); err != nil {
				if errors.Is(err, repos.ErrShortStock) {
					avail := 0
					if p, perr := tx.Product(it.ProductID); perr == nil {
						avail = p.Stock
					}
					return &StockError{ProductID: it.ProductID, Requested: it.Quantity, Available: avail}
				}
				return storeErr("sale.decrement", err, nil)
			}
		}
		if err := tx.InsertSale(sale); err != nil {
			return storeErr("sale.insert", err, nil)
		}
		for _, it := range sale.Items {
			if err := tx.InsertSaleItem(it); err != nil {
				return storeErr("sale.insert_item", err, nil)
			}
		}
		return nil
	})
	if err != nil {
		return domain.Sale{}, storeErr("sale.commit", err, nil)
	}

	s.publish(ctx, sale)
	return sale, nil
}

func (s *SaleService) publish(ctx context.Context, sale domain.Sale) {
	ev := events.LedgerEvent{
		Type:       events.TypeSaleRecorded,
		ID:         sale.ID,
		OccurredAt: sale.SaleDate,
		Total:      sale.TotalAmount,
		SaleType:   sale.SaleType,
		ClientID:   sale.ClientID,
	}
	for _, it := range sale.Items {
		ev.Deltas = append(ev.Deltas, events.StockDelta{ProductID: it.ProductID, Delta: -it.Quantity})
	}
	if err := s.Events.Publish(ctx, ev); err != nil {
		applog.Logger().Error().Err(err).Str("action", "sale.publish").Str("sale_id", sale.ID).Msg("event not published")
	}
}

func (s *SaleService) List(ctx context.Context, rng domain.DateRange, limit int) ([]domain.Sale, error) {
	out, err := s.Sales.List(ctx, rng, limit)
	return out, storeErr("sales.list", err, nil)
}

func (s *SaleService) Get(ctx context.Context, id string) (domain.Sale, error) {
	sale, err := s.Sales.Get(ctx, id)
	return sale, storeErr("sales.get", err, ErrNotFound)
}
