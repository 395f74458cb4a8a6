package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"shopvision/internal/domain"
	"shopvision/internal/events"
	applog "shopvision/internal/log"
	"shopvision/internal/repos"
	"shopvision/internal/validate"
)

type PurchaseService struct {
	Inv       *repos.InventoryRepo
	Purchases *repos.PurchaseRepo
	Events    events.Publisher
}

func NewPurchaseService(inv *repos.InventoryRepo, purchases *repos.PurchaseRepo, pub events.Publisher) *PurchaseService {
	if pub == nil {
		pub = events.Nop{}
	}
	return &PurchaseService{Inv: inv, Purchases: purchases, Events: pub}
}

// checkPurchase validates the whole purchase before anything is written.
func checkPurchase(in domain.PurchaseInput) (domain.PurchaseInput, error) {
	pm, ok := validate.PaymentMethod(in.PaymentMethod)
	if !ok {
		return in, invalid("payment_method must be %q or %q", domain.PaymentCash, domain.PaymentTransfer)
	}
	in.PaymentMethod = pm
	in.Supplier = strings.TrimSpace(in.Supplier)
	in.Notes = strings.TrimSpace(in.Notes)
	if len(in.Items) == 0 {
		return in, invalid("a purchase needs at least one item")
	}

	for i, l := range in.Items {
		switch {
		case l.Existing != nil && l.New != nil:
			return in, &LineItemError{Index: i, Reason: "line must reference an existing product or describe a new one, not both"}
		case l.Existing != nil:
			id, ok := validate.ID(l.Existing.ProductID)
			if !ok {
				return in, &LineItemError{Index: i, Reason: "product_id is required"}
			}
			l.Existing.ProductID = id
		case l.New != nil:
			name, ok := validate.Name(l.New.Name)
			if !ok {
				return in, &LineItemError{Index: i, Reason: "new product name is required"}
			}
			cat, ok := validate.Category(l.New.Category)
			if !ok {
				return in, &LineItemError{Index: i, Reason: "new product category is invalid"}
			}
			l.New.Name, l.New.Category = name, cat
		default:
			return in, &LineItemError{Index: i, Reason: "line is empty"}
		}
		if l.Quantity() <= 0 {
			return in, &LineItemError{Index: i, Reason: "quantity must be positive"}
		}
		if !validate.Quantity(l.Quantity()) {
			return in, &LineItemError{Index: i, Reason: fmt.Sprintf("quantity must not exceed %d", validate.MaxQuantity)}
		}
		if !validate.Amount(l.UnitCost()) {
			return in, &LineItemError{Index: i, Reason: "unit_cost must be >= 0"}
		}
	}
	return in, nil
}

// Apply records a purchase: existing products gain stock, new product
// specs become products with stock = quantity and cost = unit cost. The
// purchase commits as a whole or not at all.
func (s *PurchaseService) Apply(ctx context.Context, in domain.PurchaseInput) (domain.Purchase, error) {
	in, err := checkPurchase(in)
	if err != nil {
		return domain.Purchase{}, err
	}

	var pur domain.Purchase
	err = s.Inv.WithTx(ctx, func(tx *repos.LedgerTx) error {
		now := time.Now().UTC().Truncate(time.Second)
		pur = domain.Purchase{
			ID:            uuid.NewString(),
			PurchaseDate:  now,
			TotalCost:     decimal.Zero,
			PaymentMethod: in.PaymentMethod,
			Supplier:      in.Supplier,
			Notes:         in.Notes,
			CreatedBy:     in.CreatedBy,
		}

		for i, l := range in.Items {
			it := domain.PurchaseItem{
				PurchaseID: pur.ID,
				Line:       i + 1,
				Quantity:   l.Quantity(),
				UnitCost:   l.UnitCost(),
			}
			if l.Existing != nil {
				p, err := tx.Product(l.Existing.ProductID)
				if err != nil {
					return storeErr("purchase.product", err, unknownProduct(l.Existing.ProductID))
				}
				if err := tx.IncrementBy(p.ID, l.Existing.Quantity, now); err != nil {
					return storeErr("purchase.increment", err, unknownProduct(p.ID))
				}
				it.ProductID, it.ProductName, it.Category = p.ID, p.Name, p.Category
			} else {
				p := domain.Product{
					ID:          uuid.NewString(),
					Name:        l.New.Name,
					Description: l.New.Description,
					CostPrice:   l.New.UnitCost,
					Stock:       l.New.Quantity,
					Category:    l.New.Category,
					Active:      true,
					CreatedAt:   now,
					UpdatedAt:   now,
				}
				if err := tx.CreateProduct(p); err != nil {
					return storeErr("purchase.create_product", err, nil)
				}
				it.ProductID, it.ProductName, it.Category, it.Created = p.ID, p.Name, p.Category, true
			}
			pur.Items = append(pur.Items, it)
			pur.TotalCost = pur.TotalCost.Add(it.UnitCost.Mul(decimal.NewFromInt(int64(it.Quantity))))
		}

		if err := tx.InsertPurchase(pur); err != nil {
			return storeErr("purchase.insert", err, nil)
		}
		for _, it := range pur.Items {
			if err := tx.InsertPurchaseItem(it); err != nil {
				return storeErr("purchase.insert_item", err, nil)
			}
		}
		return nil
	})
	if err != nil {
		return domain.Purchase{}, storeErr("purchase.commit", err, nil)
	}

	s.publish(ctx, pur)
	return pur, nil
}

func (s *PurchaseService) publish(ctx context.Context, pur domain.Purchase) {
	ev := events.LedgerEvent{
		Type:       events.TypePurchaseRecorded,
		ID:         pur.ID,
		OccurredAt: pur.PurchaseDate,
		Total:      pur.TotalCost,
	}
	for _, it := range pur.Items {
		ev.Deltas = append(ev.Deltas, events.StockDelta{ProductID: it.ProductID, Delta: it.Quantity, Created: it.Created})
	}
	if err := s.Events.Publish(ctx, ev); err != nil {
		applog.Logger().Error().Err(err).Str("action", "purchase.publish").Str("purchase_id", pur.ID).Msg("event not published")
	}
}

func (s *PurchaseService) List(ctx context.Context, rng domain.DateRange, limit int) ([]domain.Purchase, error) {
	out, err := s.Purchases.List(ctx, rng, limit)
	return out, storeErr("purchases.list", err, nil)
}

func (s *PurchaseService) Get(ctx context.Context, id string) (domain.Purchase, error) {
	p, err := s.Purchases.Get(ctx, id)
	return p, storeErr("purchases.get", err, ErrNotFound)
}
