package handlers

import (
	"github.com/jmoiron/sqlx"

	"shopvision/internal/cache"
	"shopvision/internal/config"
	"shopvision/internal/events"
	"shopvision/internal/pricing"
	"shopvision/internal/repos"
	"shopvision/internal/services"
)

type Deps struct {
	Auth *services.AuthService

	AuthHandler      *AuthHandler
	CategoryHandler  *CategoryHandler
	ProductHandler   *ProductHandler
	InventoryHandler *InventoryHandler
	CatalogHandler   *CatalogHandler
	PricingHandler   *PricingHandler
	PurchaseHandler  *PurchaseHandler
	SaleHandler      *SaleHandler
	ReportHandler    *ReportHandler
}

func NewDeps(db *sqlx.DB, cfg config.Config, snap cache.SnapshotStore, pub events.Publisher) *Deps {
	if snap == nil {
		snap = cache.NewMemorySnapshot()
	}
	if pub == nil {
		pub = events.Nop{}
	}
	defaults := pricing.Defaults{
		FinalConsumer: cfg.Pricing.FinalConsumerMarkup,
		Wholesale:     cfg.Pricing.WholesaleDefaultMarkup,
	}

	catRepo := repos.NewCategoryRepo(db)
	prodRepo := repos.NewProductRepo(db)
	invRepo := repos.NewInventoryRepo(db)
	clientRepo := repos.NewClientRepo(db)
	settingsRepo := repos.NewSettingsRepo(db)
	purchaseRepo := repos.NewPurchaseRepo(db)
	saleRepo := repos.NewSaleRepo(db)
	userRepo := repos.NewUserRepo(db)

	authSvc := services.NewAuthService(userRepo, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	catalogSvc := services.NewCatalogService(catRepo, prodRepo)
	invSvc := services.NewInventoryService(invRepo, prodRepo, cfg.Pricing.LowStockThreshold)
	pricingSvc := services.NewPricingService(settingsRepo, clientRepo, prodRepo, defaults)
	storeSvc := services.NewStorefrontService(prodRepo, pricingSvc, invSvc, snap)
	purchaseSvc := services.NewPurchaseService(invRepo, purchaseRepo, pub)
	saleSvc := services.NewSaleService(invRepo, saleRepo, pub, defaults)
	reportSvc := services.NewReportService(saleRepo, purchaseRepo)

	return &Deps{
		Auth:             authSvc,
		AuthHandler:      &AuthHandler{Auth: authSvc},
		CategoryHandler:  &CategoryHandler{Catalog: catalogSvc},
		ProductHandler:   &ProductHandler{Catalog: catalogSvc, Inv: invSvc},
		InventoryHandler: &InventoryHandler{Inv: invSvc},
		CatalogHandler:   &CatalogHandler{Store: storeSvc, Catalog: catalogSvc},
		PricingHandler:   &PricingHandler{Pricing: pricingSvc},
		PurchaseHandler:  &PurchaseHandler{Purchases: purchaseSvc},
		SaleHandler:      &SaleHandler{Sales: saleSvc},
		ReportHandler:    &ReportHandler{Reports: reportSvc},
	}
}
