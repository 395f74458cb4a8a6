package services_test

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"shopvision/internal/domain"
	"shopvision/internal/events"
	"shopvision/internal/services"
	"shopvision/internal/validate"
)

func sell(items ...domain.SaleLine) domain.SaleInput {
	return domain.SaleInput{SaleType: domain.SaleFinalConsumer, Items: items}
}

func TestSale_InsufficientStockLeavesStockUntouched(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Plancha de Pelo Oryx has 2 units.
	for i := 0; i < 2; i++ {
		_, err := f.sales.Apply(ctx, sell(domain.SaleLine{ProductID: "beauty-001", Quantity: 3}))
		if !errors.Is(err, services.ErrInsufficientStock) {
			t.Fatalf("attempt %d: want ErrInsufficientStock, got %v", i, err)
		}
		var se *services.StockError
		if !errors.As(err, &se) || se.Requested != 3 || se.Available != 2 {
			t.Fatalf("want StockError{3,2}, got %#v", err)
		}
		if got := f.stock(t, "beauty-001"); got != 2 {
			t.Fatalf("stock changed to %d", got)
		}
	}
	if n := len(f.pub.all()); n != 0 {
		t.Fatalf("rejected sale published %d events", n)
	}
}

func TestSale_DuplicateLinesAreSummed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Cafetera Express has 8: 5+5 must fail as a whole.
	_, err := f.sales.Apply(ctx, sell(
		domain.SaleLine{ProductID: "home-002", Quantity: 5},
		domain.SaleLine{ProductID: "home-002", Quantity: 5},
	))
	if !errors.Is(err, services.ErrInsufficientStock) {
		t.Fatalf("want ErrInsufficientStock, got %v", err)
	}
	if got := f.stock(t, "home-002"); got != 8 {
		t.Fatalf("stock = %d, want 8", got)
	}

	// Auricular M25 has 3: 2+1 is fine and collapses into one item.
	sale, err := f.sales.Apply(ctx, sell(
		domain.SaleLine{ProductID: "tecno-001", Quantity: 2},
		domain.SaleLine{ProductID: "home-002", Quantity: 1},
		domain.SaleLine{ProductID: "tecno-001", Quantity: 1},
	))
	if err != nil {
		t.Fatal(err)
	}
	if len(sale.Items) != 2 || sale.Items[0].ProductID != "tecno-001" || sale.Items[0].Quantity != 3 {
		t.Fatalf("unexpected items %+v", sale.Items)
	}
	if got := f.stock(t, "tecno-001"); got != 0 {
		t.Fatalf("tecno-001 stock = %d, want 0", got)
	}
	if got := f.stock(t, "home-002"); got != 7 {
		t.Fatalf("home-002 stock = %d, want 7", got)
	}
}

func TestSale_FinalConsumerUsesDefaultMarkup(t *testing.T) {
	f := newFixture(t)

	sale, err := f.sales.Apply(context.Background(), sell(domain.SaleLine{ProductID: "tecno-001", Quantity: 2}))
	if err != nil {
		t.Fatal(err)
	}
	it := sale.Items[0]
	if it.PriceAtSale.StringFixed(2) != "11200.00" {
		t.Fatalf("price = %s, want 11200.00", it.PriceAtSale)
	}
	if !sale.TotalAmount.Equal(dec("22400")) {
		t.Fatalf("total = %s", sale.TotalAmount)
	}
	if !sale.MarkupPercent.Equal(dec("40")) {
		t.Fatalf("markup = %s", sale.MarkupPercent)
	}
	if got := f.stock(t, "tecno-001"); got != 1 {
		t.Fatalf("stock = %d, want 1", got)
	}

	evs := f.pub.all()
	if len(evs) != 1 || evs[0].Type != events.TypeSaleRecorded || evs[0].Deltas[0].Delta != -2 {
		t.Fatalf("unexpected events %+v", evs)
	}
}

func TestSale_WholesaleMarkupSelection(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sur := f.clientByName(t, "Comercial Sur") // 25%
	sale, err := f.sales.Apply(ctx, domain.SaleInput{
		SaleType: domain.SaleWholesale,
		ClientID: sur.ID,
		Items:    []domain.SaleLine{{ProductID: "tecno-001", Quantity: 1}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if sale.Items[0].PriceAtSale.StringFixed(2) != "10000.00" {
		t.Fatalf("price = %s, want 10000.00", sale.Items[0].PriceAtSale)
	}
	if sale.ClientID != sur.ID {
		t.Fatalf("client id not recorded: %+v", sale)
	}

	// missing client
	_, err = f.sales.Apply(ctx, domain.SaleInput{SaleType: domain.SaleWholesale, Items: []domain.SaleLine{{ProductID: "tecno-001", Quantity: 1}}})
	if !errors.Is(err, services.ErrMissingClient) {
		t.Fatalf("want ErrMissingClient, got %v", err)
	}

	// unknown client
	_, err = f.sales.Apply(ctx, domain.SaleInput{SaleType: domain.SaleWholesale, ClientID: "ghost", Items: []domain.SaleLine{{ProductID: "tecno-001", Quantity: 1}}})
	if !errors.Is(err, services.ErrUnknownClient) {
		t.Fatalf("want ErrUnknownClient, got %v", err)
	}

	// client without markup falls back to 20%
	bare, err := f.pricing.CreateClient(ctx, services.ClientInput{Name: "Sin Recargo"})
	if err != nil {
		t.Fatal(err)
	}
	q, err := f.sales.Quote(ctx, domain.SaleInput{SaleType: domain.SaleWholesale, ClientID: bare.ID, Items: []domain.SaleLine{{ProductID: "tecno-001", Quantity: 1}}})
	if err != nil {
		t.Fatal(err)
	}
	if q.Sale.Items[0].PriceAtSale.StringFixed(2) != "9600.00" {
		t.Fatalf("price = %s, want 9600.00", q.Sale.Items[0].PriceAtSale)
	}

	if got := f.stock(t, "tecno-001"); got != 2 {
		t.Fatalf("stock = %d, want 2 (only the first sale commits)", got)
	}
}

func TestSale_OverrideWinsAndRecordedPriceIsImmutable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.pricing.SetOverride(ctx, "home-002", dec("99999.99")); err != nil {
		t.Fatal(err)
	}
	sale, err := f.sales.Apply(ctx, sell(domain.SaleLine{ProductID: "home-002", Quantity: 1}))
	if err != nil {
		t.Fatal(err)
	}
	if !sale.Items[0].Overridden || !sale.Items[0].PriceAtSale.Equal(dec("99999.99")) {
		t.Fatalf("override not applied: %+v", sale.Items[0])
	}

	// change everything that fed the price
	if err := f.pricing.RemoveOverride(ctx, "home-002"); err != nil {
		t.Fatal(err)
	}
	if _, err := f.pricing.SetMargin(ctx, "300"); err != nil {
		t.Fatal(err)
	}
	cost := dec("1")
	if _, err := f.catalog.Update(ctx, "home-002", domain.ProductUpdate{CostPrice: &cost}); err != nil {
		t.Fatal(err)
	}

	got, err := f.sales.Get(ctx, sale.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Items[0].PriceAtSale.Equal(dec("99999.99")) || !got.TotalAmount.Equal(dec("99999.99")) {
		t.Fatalf("recorded sale changed: %+v", got)
	}
	if !got.Items[0].UnitCostAtSale.Equal(dec("75000")) {
		t.Fatalf("unit cost at sale changed: %s", got.Items[0].UnitCostAtSale)
	}
}

func TestSale_RejectsBadInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := []struct {
		name string
		in   domain.SaleInput
		want error
	}{
		{"no items", sell(), services.ErrValidation},
		{"zero qty", sell(domain.SaleLine{ProductID: "tecno-001", Quantity: 0}), services.ErrInvalidLineItem},
		{"no product", sell(domain.SaleLine{Quantity: 1}), services.ErrInvalidLineItem},
		{"unknown product", sell(domain.SaleLine{ProductID: "nope", Quantity: 1}), services.ErrUnknownProduct},
		{"bad type", domain.SaleInput{SaleType: "retail", Items: []domain.SaleLine{{ProductID: "tecno-001", Quantity: 1}}}, services.ErrValidation},
	}
	for _, tc := range cases {
		_, err := f.sales.Apply(ctx, tc.in)
		if !errors.Is(err, tc.want) {
			t.Errorf("%s: want %v, got %v", tc.name, tc.want, err)
		}
	}
	if got := f.stock(t, "tecno-001"); got != 3 {
		t.Fatalf("stock = %d, want 3", got)
	}
}

func TestSale_HugeQuantitiesAreRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := []struct {
		name  string
		in    domain.SaleInput
		index int
	}{
		// a wrapped sum would slip under the stock check
		{"wraps to negative", sell(
			domain.SaleLine{ProductID: "tecno-001", Quantity: math.MaxInt64},
			domain.SaleLine{ProductID: "tecno-001", Quantity: 2},
		), 0},
		{"summed over cap", sell(
			domain.SaleLine{ProductID: "tecno-001", Quantity: validate.MaxQuantity},
			domain.SaleLine{ProductID: "tecno-001", Quantity: 1},
		), 1},
	}
	for _, tc := range cases {
		for _, op := range []string{"quote", "apply"} {
			var err error
			if op == "quote" {
				_, err = f.sales.Quote(ctx, tc.in)
			} else {
				_, err = f.sales.Apply(ctx, tc.in)
			}
			if !errors.Is(err, services.ErrInvalidLineItem) {
				t.Fatalf("%s %s: want ErrInvalidLineItem, got %v", tc.name, op, err)
			}
			var le *services.LineItemError
			if !errors.As(err, &le) || le.Index != tc.index {
				t.Fatalf("%s %s: want line %d flagged, got %#v", tc.name, op, tc.index, err)
			}
		}
	}
	if got := f.stock(t, "tecno-001"); got != 3 {
		t.Fatalf("stock = %d, want 3", got)
	}
	if n := len(f.pub.all()); n != 0 {
		t.Fatalf("rejected sales published %d events", n)
	}
}

func TestSale_InactiveProductCannotBeSold(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.sales.Apply(ctx, sell(domain.SaleLine{ProductID: "tecno-002", Quantity: 1})); err != nil {
		t.Fatal(err)
	}
	soft, err := f.catalog.Delete(ctx, "tecno-002")
	if err != nil || !soft {
		t.Fatalf("want soft delete, got soft=%v err=%v", soft, err)
	}
	_, err = f.sales.Apply(ctx, sell(domain.SaleLine{ProductID: "tecno-002", Quantity: 1}))
	if !errors.Is(err, services.ErrUnknownProduct) {
		t.Fatalf("want ErrUnknownProduct, got %v", err)
	}
}

func TestSale_QuoteDoesNotMutate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	q, err := f.sales.Quote(ctx, sell(domain.SaleLine{ProductID: "tecno-002", Quantity: 4}))
	if err != nil {
		t.Fatal(err)
	}
	// 25000 * 1.4 = 35000; profit 10000 per unit
	if !q.Sale.TotalAmount.Equal(dec("140000")) || !q.Profit.Equal(dec("40000")) {
		t.Fatalf("quote = %s profit %s", q.Sale.TotalAmount, q.Profit)
	}
	if got := f.stock(t, "tecno-002"); got != 12 {
		t.Fatalf("stock = %d, want 12", got)
	}
	sales, err := f.sales.List(ctx, domain.DateRange{}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(sales) != 0 {
		t.Fatalf("quote recorded %d sales", len(sales))
	}
}

func TestSale_ConcurrentSalesNeverOversell(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.catalog.Create(ctx, domain.ProductInput{Name: "Pelota", CostPrice: decimal.NewFromInt(1000), Stock: 5, Category: domain.CategoryDeportes})
	if err != nil {
		t.Fatal(err)
	}

	const buyers = 20
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok, fail int
		other    []error
	)
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.sales.Apply(ctx, sell(domain.SaleLine{ProductID: p.ID, Quantity: 1}))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, services.ErrInsufficientStock):
				fail++
			default:
				other = append(other, err)
			}
		}()
	}
	wg.Wait()

	if len(other) > 0 {
		t.Fatalf("unexpected errors: %v", other)
	}
	if ok != 5 || fail != buyers-5 {
		t.Fatalf("ok=%d fail=%d, want 5/%d", ok, fail, buyers-5)
	}
	if got := f.stock(t, p.ID); got != 0 {
		t.Fatalf("stock = %d, want 0", got)
	}
}
