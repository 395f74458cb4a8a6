package services_test

import (
	"context"
	"sync"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"shopvision/internal/cache"
	"shopvision/internal/config"
	"shopvision/internal/domain"
	"shopvision/internal/events"
	"shopvision/internal/pricing"
	"shopvision/internal/repos"
	"shopvision/internal/services"
)

// memdb opens a migrated, seeded in-memory database.
func memdb(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := repos.OpenDB(config.DBConfig{Driver: "sqlite", DSN: ":memory:", Seed: true})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

type recorder struct {
	mu     sync.Mutex
	events []events.LedgerEvent
}

func (r *recorder) Publish(_ context.Context, ev events.LedgerEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *recorder) Close() error { return nil }

func (r *recorder) all() []events.LedgerEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]events.LedgerEvent(nil), r.events...)
}

type fixture struct {
	db         *sqlx.DB
	prods      *repos.ProductRepo
	catalog    *services.CatalogService
	inventory  *services.InventoryService
	pricing    *services.PricingService
	storefront *services.StorefrontService
	sales      *services.SaleService
	purchases  *services.PurchaseService
	reports    *services.ReportService
	auth       *services.AuthService
	snapshot   *cache.MemorySnapshot
	pub        *recorder
}

var defaults = pricing.Defaults{FinalConsumer: decimal.NewFromInt(40), Wholesale: decimal.NewFromInt(20)}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := memdb(t)
	f := &fixture{db: db, pub: &recorder{}, snapshot: cache.NewMemorySnapshot()}

	f.prods = repos.NewProductRepo(db)
	inv := repos.NewInventoryRepo(db)
	saleRepo := repos.NewSaleRepo(db)
	purchaseRepo := repos.NewPurchaseRepo(db)

	f.catalog = services.NewCatalogService(repos.NewCategoryRepo(db), f.prods)
	f.inventory = services.NewInventoryService(inv, f.prods, 5)
	f.pricing = services.NewPricingService(repos.NewSettingsRepo(db), repos.NewClientRepo(db), f.prods, defaults)
	f.storefront = services.NewStorefrontService(f.prods, f.pricing, f.inventory, f.snapshot)
	f.sales = services.NewSaleService(inv, saleRepo, f.pub, defaults)
	f.purchases = services.NewPurchaseService(inv, purchaseRepo, f.pub)
	f.reports = services.NewReportService(saleRepo, purchaseRepo)
	f.auth = services.NewAuthService(repos.NewUserRepo(db), "test-secret", 0)
	return f
}

func (f *fixture) stock(t *testing.T, id string) int {
	t.Helper()
	p, err := f.catalog.GetProduct(context.Background(), id)
	if err != nil {
		t.Fatalf("get %s: %v", id, err)
	}
	return p.Stock
}

func (f *fixture) clientByName(t *testing.T, name string) domain.WholesaleClient {
	t.Helper()
	cs, err := f.pricing.ListClients(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	for _, c := range cs {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("client %q not seeded", name)
	return domain.WholesaleClient{}
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }
