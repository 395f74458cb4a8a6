package services

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"shopvision/internal/cache"
	"shopvision/internal/domain"
	applog "shopvision/internal/log"
	"shopvision/internal/pricing"
)

// StorefrontService renders the public catalog: active products priced
// with the global margin (or a client's markup) unless overridden.
type StorefrontService struct {
	Prods    CatalogStore
	Pricing  *PricingService
	Inv      *InventoryService
	Snapshot cache.SnapshotStore
}

func NewStorefrontService(prods CatalogStore, p *PricingService, inv *InventoryService, snap cache.SnapshotStore) *StorefrontService {
	return &StorefrontService{Prods: prods, Pricing: p, Inv: inv, Snapshot: snap}
}

// priceFunc turns a pricing configuration into the storefront markup and the
// per-product rule.
type priceFunc func(cfg pricing.Config) (decimal.Decimal, func(string) pricing.Rule)

// Public prices the catalog for anonymous visitors.
func (s *StorefrontService) Public(ctx context.Context, f domain.ProductFilter) (domain.Storefront, error) {
	return s.build(ctx, f, func(cfg pricing.Config) (decimal.Decimal, func(string) pricing.Rule) {
		return cfg.GlobalMargin, cfg.Rule
	})
}

// Wholesale prices the catalog with a client's markup; overrides still win.
func (s *StorefrontService) Wholesale(ctx context.Context, clientID string, f domain.ProductFilter) (domain.Storefront, error) {
	markup, err := pricing.SelectMarkup(domain.SaleWholesale, clientID, func(id string) (domain.WholesaleClient, error) {
		return s.Pricing.Client(ctx, id)
	}, s.Pricing.Defaults)
	if err != nil {
		return domain.Storefront{}, err
	}
	return s.build(ctx, f, func(cfg pricing.Config) (decimal.Decimal, func(string) pricing.Rule) {
		return markup, func(id string) pricing.Rule { return cfg.SaleRule(id, markup) }
	})
}

// build prices the live catalog. When either the pricing settings or the
// product list cannot be read, the last snapshot is served and priced with
// the settings saved alongside it.
func (s *StorefrontService) build(ctx context.Context, f domain.ProductFilter, price priceFunc) (domain.Storefront, error) {
	f.IncludeInactive = false
	sf := domain.Storefront{AsOf: time.Now().UTC()}

	cfg, err := s.Pricing.Load(ctx)
	var products []domain.Product
	if err == nil {
		products, err = s.Prods.List(ctx, f)
	}
	if err == nil {
		// Only the unfiltered list is a master snapshot.
		if f.Query == "" && f.Category == "" && f.MaxStock == nil {
			snap := cache.Snapshot{Products: products, Margin: cfg.GlobalMargin, Overrides: cfg.Overrides}
			if serr := s.Snapshot.Save(ctx, snap); serr != nil {
				applog.Logger().Warn().Err(serr).Str("action", "catalog.snapshot_save").Msg("snapshot not saved")
			}
		}
	} else {
		snap, serr := s.Snapshot.Load(ctx)
		if serr != nil {
			return domain.Storefront{}, storeErr("catalog.list", err, nil)
		}
		applog.Logger().Warn().Err(err).Str("action", "catalog.snapshot_served").
			Time("taken_at", snap.TakenAt).Msg("catalog store unavailable, serving snapshot")
		products = filterSnapshot(snap.Products, f)
		cfg = pricing.Config{GlobalMargin: snap.Margin, Overrides: snap.Overrides}
		sf.Stale = true
		sf.AsOf = snap.TakenAt
	}

	markup, rule := price(cfg)
	sf.Markup = markup
	sf.Entries = make([]domain.CatalogEntry, 0, len(products))
	for _, p := range products {
		r := rule(p.ID)
		sf.Entries = append(sf.Entries, domain.CatalogEntry{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			Category:    p.Category,
			ImageURL:    p.ImageURL,
			Price:       pricing.Quote(pricing.Resolve(p.CostPrice, r)),
			Overridden:  r.Kind == pricing.KindManualOverride,
			Status:      s.Inv.Status(p.Stock),
			Stock:       p.Stock,
		})
	}
	return sf, nil
}

func filterSnapshot(ps []domain.Product, f domain.ProductFilter) []domain.Product {
	out := make([]domain.Product, 0, len(ps))
	for _, p := range ps {
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		if f.Query != "" && !containsFold(p.Name, f.Query) && !containsFold(p.Description, f.Query) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}
