package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Categories carried over from the distributor's catalog.
const (
	CategoryBeauty   = "BEAUTY"
	CategoryHome     = "HOME"
	CategoryTecno    = "TECNO"
	CategoryDeportes = "DEPORTES"
	CategoryRopa     = "ROPA"
)

var Categories = []string{CategoryBeauty, CategoryHome, CategoryTecno, CategoryDeportes, CategoryRopa}

type Product struct {
	ID          string          `db:"id" json:"id"`
	Name        string          `db:"name" json:"name"`
	Description string          `db:"description" json:"description,omitempty"`
	CostPrice   decimal.Decimal `db:"cost_price" json:"cost_price"`
	Stock       int             `db:"stock" json:"stock"`
	Category    string          `db:"category" json:"category"`
	ImageURL    string          `db:"image_url" json:"image_url,omitempty"`
	Active      bool            `db:"active" json:"active"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`
}

type ProductInput struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	CostPrice   decimal.Decimal `json:"cost_price"`
	Stock       int             `json:"stock"`
	Category    string          `json:"category"`
	ImageURL    string          `json:"image_url"`
}

// ProductUpdate carries only the fields being changed. Stock is absent on
// purpose: it moves through purchases and sales only.
type ProductUpdate struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	CostPrice   *decimal.Decimal `json:"cost_price"`
	Category    *string          `json:"category"`
	ImageURL    *string          `json:"image_url"`
}

func (u ProductUpdate) Empty() bool {
	return u.Name == nil && u.Description == nil && u.CostPrice == nil && u.Category == nil && u.ImageURL == nil
}

type ProductFilter struct {
	Query           string
	Category        string
	MaxStock        *int
	IncludeInactive bool
	Limit           int
	Offset          int
}

type CategoryCount struct {
	Category string `db:"category" json:"category"`
	Products int    `db:"products" json:"products"`
}

type Availability struct {
	Status string `json:"status"` // IN_STOCK | LOW_STOCK | OUT_OF_STOCK
	Qty    int    `json:"qty"`
}

type Valuation struct {
	Products     int             `json:"products"`
	Units        int             `json:"units"`
	TotalAtCost  decimal.Decimal `json:"total_at_cost"`
	LowStock     int             `json:"low_stock"`
	OutOfStock   int             `json:"out_of_stock"`
	LowThreshold int             `json:"low_threshold"`
}

// WholesaleClient.Markup is null when the record was stored without one.
type WholesaleClient struct {
	ID        string              `db:"id" json:"id"`
	Name      string              `db:"name" json:"name"`
	Markup    decimal.NullDecimal `db:"markup" json:"markup"`
	CreatedAt time.Time           `db:"created_at" json:"created_at"`
}

type PriceOverride struct {
	ProductID string          `db:"product_id" json:"product_id"`
	Price     decimal.Decimal `db:"price" json:"price"`
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"`
}

const (
	StatusInStock    = "IN_STOCK"
	StatusLowStock   = "LOW_STOCK"
	StatusOutOfStock = "OUT_OF_STOCK"
)

// CatalogEntry is what the public catalog shows; cost is never exposed.
type CatalogEntry struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Category    string          `json:"category"`
	ImageURL    string          `json:"image_url,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Overridden  bool            `json:"overridden"`
	Status      string          `json:"status"`
	Stock       int             `json:"stock"`
}

type Storefront struct {
	Entries []CatalogEntry  `json:"products"`
	Markup  decimal.Decimal `json:"markup_percent"`
	// Stale is set when the entries come from the last saved snapshot.
	Stale bool      `json:"stale"`
	AsOf  time.Time `json:"as_of"`
}
