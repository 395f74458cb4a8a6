package services_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"shopvision/internal/domain"
	"shopvision/internal/events"
	"shopvision/internal/services"
)

func existing(id string, qty int, cost string) domain.PurchaseLine {
	return domain.PurchaseLine{Existing: &domain.ExistingProductRef{ProductID: id, Quantity: qty, UnitCost: dec(cost)}}
}

func newProduct(name, cat string, qty int, cost string) domain.PurchaseLine {
	return domain.PurchaseLine{New: &domain.NewProductSpec{Name: name, Category: cat, Quantity: qty, UnitCost: dec(cost)}}
}

func countProducts(t *testing.T, f *fixture) int {
	t.Helper()
	ps, err := f.catalog.List(context.Background(), domain.ProductFilter{IncludeInactive: true})
	if err != nil {
		t.Fatal(err)
	}
	return len(ps)
}

func TestPurchase_NewProductIsCreated(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	pur, err := f.purchases.Apply(ctx, domain.PurchaseInput{
		PaymentMethod: "cash",
		Items:         []domain.PurchaseLine{newProduct("X", "HOME", 5, "100")},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(pur.Items) != 1 || !pur.Items[0].Created {
		t.Fatalf("unexpected items %+v", pur.Items)
	}
	if !pur.TotalCost.Equal(dec("500")) {
		t.Fatalf("total = %s, want 500", pur.TotalCost)
	}

	p, err := f.catalog.GetProduct(ctx, pur.Items[0].ProductID)
	if err != nil {
		t.Fatal(err)
	}
	if p.Name != "X" || p.Category != domain.CategoryHome || p.Stock != 5 || !p.CostPrice.Equal(dec("100")) {
		t.Fatalf("created product = %+v", p)
	}

	evs := f.pub.all()
	if len(evs) != 1 || evs[0].Type != events.TypePurchaseRecorded || !evs[0].Deltas[0].Created {
		t.Fatalf("unexpected events %+v", evs)
	}
}

func TestPurchase_ExistingProductIncrements(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	pur, err := f.purchases.Apply(ctx, domain.PurchaseInput{
		PaymentMethod: "transfer",
		Supplier:      "Importadora",
		Items: []domain.PurchaseLine{
			existing("beauty-001", 3, "14000"),
			existing("home-001", 2, "44000"),
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if got := f.stock(t, "beauty-001"); got != 5 {
		t.Fatalf("beauty-001 stock = %d, want 5", got)
	}
	if got := f.stock(t, "home-001"); got != 3 {
		t.Fatalf("home-001 stock = %d, want 3", got)
	}
	// 3*14000 + 2*44000
	if !pur.TotalCost.Equal(dec("130000")) {
		t.Fatalf("total = %s", pur.TotalCost)
	}

	got, err := f.purchases.Get(ctx, pur.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Supplier != "Importadora" || got.PaymentMethod != "transfer" || len(got.Items) != 2 {
		t.Fatalf("stored purchase = %+v", got)
	}
	if got.Items[0].ProductName != "Plancha de Pelo Oryx" || got.Items[1].Line != 2 {
		t.Fatalf("stored items = %+v", got.Items)
	}
}

func TestPurchase_InvalidLineRejectsWholePurchase(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	before := countProducts(t, f)

	_, err := f.purchases.Apply(ctx, domain.PurchaseInput{
		PaymentMethod: "cash",
		Items: []domain.PurchaseLine{
			existing("beauty-001", 3, "100"),
			newProduct("", "HOME", 1, "10"),
		},
	})
	if !errors.Is(err, services.ErrInvalidLineItem) || !errors.Is(err, services.ErrValidation) {
		t.Fatalf("want ErrInvalidLineItem, got %v", err)
	}
	var le *services.LineItemError
	if !errors.As(err, &le) || le.Index != 1 {
		t.Fatalf("want line 1 flagged, got %#v", err)
	}
	if got := f.stock(t, "beauty-001"); got != 2 {
		t.Fatalf("stock = %d, want 2", got)
	}
	if got := countProducts(t, f); got != before {
		t.Fatalf("products %d -> %d", before, got)
	}
}

func TestPurchase_HugeQuantityIsRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	before := countProducts(t, f)

	for _, line := range []domain.PurchaseLine{
		existing("beauty-001", math.MaxInt64, "100"),
		newProduct("Licuadora Turbo", "HOME", math.MaxInt64, "100"),
	} {
		_, err := f.purchases.Apply(ctx, domain.PurchaseInput{
			PaymentMethod: "transfer",
			Items:         []domain.PurchaseLine{existing("beauty-001", 1, "100"), line},
		})
		var le *services.LineItemError
		if !errors.As(err, &le) || le.Index != 1 {
			t.Fatalf("want line 1 flagged, got %#v", err)
		}
	}
	if got := f.stock(t, "beauty-001"); got != 2 {
		t.Fatalf("stock = %d, want 2", got)
	}
	if got := countProducts(t, f); got != before {
		t.Fatalf("products %d -> %d", before, got)
	}
}

func TestPurchase_UnknownProductRollsBack(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	before := countProducts(t, f)

	_, err := f.purchases.Apply(ctx, domain.PurchaseInput{
		PaymentMethod: "cash",
		Items: []domain.PurchaseLine{
			existing("beauty-001", 3, "100"),
			newProduct("Mancuerna", "DEPORTES", 4, "2000"),
			existing("ghost", 1, "1"),
		},
	})
	if !errors.Is(err, services.ErrUnknownProduct) {
		t.Fatalf("want ErrUnknownProduct, got %v", err)
	}
	if got := f.stock(t, "beauty-001"); got != 2 {
		t.Fatalf("stock = %d, want 2 after rollback", got)
	}
	if got := countProducts(t, f); got != before {
		t.Fatalf("new product survived rollback: %d -> %d", before, got)
	}
	ps, err := f.purchases.List(ctx, domain.DateRange{}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(ps) != 0 {
		t.Fatalf("purchase header survived rollback")
	}
}

func TestPurchase_HeaderValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := []domain.PurchaseInput{
		{PaymentMethod: "", Items: []domain.PurchaseLine{existing("beauty-001", 1, "1")}},
		{PaymentMethod: "card", Items: []domain.PurchaseLine{existing("beauty-001", 1, "1")}},
		{PaymentMethod: "cash"},
		{PaymentMethod: "cash", Items: []domain.PurchaseLine{existing("beauty-001", 0, "1")}},
		{PaymentMethod: "cash", Items: []domain.PurchaseLine{existing("beauty-001", 1, "-1")}},
		{PaymentMethod: "cash", Items: []domain.PurchaseLine{newProduct("Y", "JUGUETES", 1, "1")}},
		{PaymentMethod: "cash", Items: []domain.PurchaseLine{{}}},
	}
	for i, in := range cases {
		if _, err := f.purchases.Apply(ctx, in); !errors.Is(err, services.ErrValidation) {
			t.Errorf("case %d: want ErrValidation, got %v", i, err)
		}
	}
}
