package services

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"shopvision/internal/domain"
	"shopvision/internal/repos"
)

type InventoryService struct {
	Inv   *repos.InventoryRepo
	Prods CatalogStore
	// LowThreshold is the stock level at or below which a product is LOW_STOCK.
	LowThreshold int
}

func NewInventoryService(inv *repos.InventoryRepo, prods CatalogStore, lowThreshold int) *InventoryService {
	if lowThreshold <= 0 {
		lowThreshold = 5
	}
	return &InventoryService{Inv: inv, Prods: prods, LowThreshold: lowThreshold}
}

// Status converts qty to IN_STOCK / LOW_STOCK / OUT_OF_STOCK.
func (s *InventoryService) Status(qty int) string {
	switch {
	case qty <= 0:
		return domain.StatusOutOfStock
	case qty <= s.LowThreshold:
		return domain.StatusLowStock
	}
	return domain.StatusInStock
}

func (s *InventoryService) CheckAvailability(ctx context.Context, productID string) (domain.Availability, error) {
	qty, err := s.Inv.Qty(ctx, productID)
	if err != nil {
		return domain.Availability{}, storeErr("inventory.qty", err, ErrNotFound)
	}
	return domain.Availability{Status: s.Status(qty), Qty: qty}, nil
}

// LowStock lists active products at or below the threshold, scarcest first.
func (s *InventoryService) LowStock(ctx context.Context) ([]domain.Product, error) {
	ceiling := s.LowThreshold
	out, err := s.Prods.List(ctx, domain.ProductFilter{MaxStock: &ceiling})
	if err != nil {
		return nil, storeErr("inventory.low_stock", err, nil)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Stock < out[j].Stock })
	return out, nil
}

// Valuation totals active inventory at cost.
func (s *InventoryService) Valuation(ctx context.Context) (domain.Valuation, error) {
	ps, err := s.Prods.List(ctx, domain.ProductFilter{})
	if err != nil {
		return domain.Valuation{}, storeErr("inventory.valuation", err, nil)
	}
	v := domain.Valuation{TotalAtCost: decimal.Zero, LowThreshold: s.LowThreshold}
	for _, p := range ps {
		v.Products++
		v.Units += p.Stock
		v.TotalAtCost = v.TotalAtCost.Add(p.CostPrice.Mul(decimal.NewFromInt(int64(p.Stock))))
		switch s.Status(p.Stock) {
		case domain.StatusOutOfStock:
			v.OutOfStock++
		case domain.StatusLowStock:
			v.LowStock++
		}
	}
	return v, nil
}
