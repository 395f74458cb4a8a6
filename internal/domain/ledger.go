package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	PaymentCash     = "cash"
	PaymentTransfer = "transfer"

	SaleFinalConsumer = "final_consumer"
	SaleWholesale     = "wholesale"
)

// PurchaseLine is either a reference to a catalog product (stock increment)
// or the description of a product to create. Exactly one of Existing and
// New is set.
type PurchaseLine struct {
	Existing *ExistingProductRef `json:"existing,omitempty"`
	New      *NewProductSpec     `json:"new,omitempty"`
}

type ExistingProductRef struct {
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
}

type NewProductSpec struct {
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	Description string          `json:"description,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
}

func (l PurchaseLine) Quantity() int {
	switch {
	case l.Existing != nil:
		return l.Existing.Quantity
	case l.New != nil:
		return l.New.Quantity
	}
	return 0
}

func (l PurchaseLine) UnitCost() decimal.Decimal {
	switch {
	case l.Existing != nil:
		return l.Existing.UnitCost
	case l.New != nil:
		return l.New.UnitCost
	}
	return decimal.Zero
}

type PurchaseInput struct {
	PaymentMethod string         `json:"payment_method"`
	Supplier      string         `json:"supplier"`
	Notes         string         `json:"notes"`
	CreatedBy     string         `json:"-"`
	Items         []PurchaseLine `json:"items"`
}

type Purchase struct {
	ID            string          `db:"id" json:"id"`
	PurchaseDate  time.Time       `db:"purchase_date" json:"purchase_date"`
	TotalCost     decimal.Decimal `db:"total_cost" json:"total_cost"`
	PaymentMethod string          `db:"payment_method" json:"payment_method"`
	Supplier      string          `db:"supplier" json:"supplier,omitempty"`
	Notes         string          `db:"notes" json:"notes,omitempty"`
	CreatedBy     string          `db:"created_by" json:"created_by,omitempty"`
	Items         []PurchaseItem  `db:"-" json:"items,omitempty"`
}

type PurchaseItem struct {
	PurchaseID  string          `db:"purchase_id" json:"purchase_id"`
	Line        int             `db:"line_no" json:"line"`
	ProductID   string          `db:"product_id" json:"product_id"`
	ProductName string          `db:"product_name" json:"product_name"`
	Category    string          `db:"category" json:"category"`
	Quantity    int             `db:"quantity" json:"quantity"`
	UnitCost    decimal.Decimal `db:"unit_cost" json:"unit_cost"`
	Created     bool            `db:"created_product" json:"created_product"`
}

type SaleLine struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type SaleInput struct {
	SaleType string     `json:"sale_type"`
	ClientID string     `json:"client_id"`
	UserID   string     `json:"-"`
	Items    []SaleLine `json:"items"`
}

type Sale struct {
	ID            string          `db:"id" json:"id"`
	SaleDate      time.Time       `db:"sale_date" json:"sale_date"`
	SaleType      string          `db:"sale_type" json:"sale_type"`
	ClientID      string          `db:"client_id" json:"client_id,omitempty"`
	UserID        string          `db:"user_id" json:"user_id,omitempty"`
	MarkupPercent decimal.Decimal `db:"markup_percent" json:"markup_percent"`
	TotalAmount   decimal.Decimal `db:"total_amount" json:"total_amount"`
	Items         []SaleItem      `db:"-" json:"items,omitempty"`
}

type SaleItem struct {
	SaleID         string          `db:"sale_id" json:"sale_id"`
	Line           int             `db:"line_no" json:"line"`
	ProductID      string          `db:"product_id" json:"product_id"`
	ProductName    string          `db:"product_name" json:"product_name"`
	Quantity       int             `db:"quantity" json:"quantity"`
	PriceAtSale    decimal.Decimal `db:"price_at_sale" json:"price_at_sale"`
	UnitCostAtSale decimal.Decimal `db:"unit_cost_at_sale" json:"unit_cost_at_sale"`
	Overridden     bool            `db:"overridden" json:"overridden"`
}

func (i SaleItem) Subtotal() decimal.Decimal {
	return i.PriceAtSale.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

func (i SaleItem) Profit() decimal.Decimal {
	return i.PriceAtSale.Sub(i.UnitCostAtSale).Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// DateRange bounds are inclusive; zero values leave that side open.
type DateRange struct {
	From time.Time
	To   time.Time
}

// SaleQuote is a priced sale that has not been recorded.
type SaleQuote struct {
	Sale   Sale            `json:"sale"`
	Profit decimal.Decimal `json:"profit"`
}

type SalesSummary struct {
	From          time.Time       `json:"from,omitempty"`
	To            time.Time       `json:"to,omitempty"`
	Sales         int             `json:"sales"`
	Units         int             `json:"units"`
	Total         decimal.Decimal `json:"total"`
	FinalConsumer decimal.Decimal `json:"final_consumer_total"`
	Wholesale     decimal.Decimal `json:"wholesale_total"`
	Cost          decimal.Decimal `json:"cost"`
	Profit        decimal.Decimal `json:"profit"`
	Purchases     int             `json:"purchases"`
	PurchaseTotal decimal.Decimal `json:"purchase_total"`
}

type TopProduct struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Units       int             `json:"units"`
	Revenue     decimal.Decimal `json:"revenue"`
}
