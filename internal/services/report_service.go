package services

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"shopvision/internal/domain"
	"shopvision/internal/repos"
)

type ReportService struct {
	Sales     *repos.SaleRepo
	Purchases *repos.PurchaseRepo
}

func NewReportService(sales *repos.SaleRepo, purchases *repos.PurchaseRepo) *ReportService {
	return &ReportService{Sales: sales, Purchases: purchases}
}

// Summary totals sales (split by type) and purchases over an inclusive range.
func (s *ReportService) Summary(ctx context.Context, rng domain.DateRange) (domain.SalesSummary, error) {
	sales, err := s.Sales.List(ctx, rng, 0)
	if err != nil {
		return domain.SalesSummary{}, storeErr("reports.sales", err, nil)
	}
	purchases, err := s.Purchases.List(ctx, rng, 0)
	if err != nil {
		return domain.SalesSummary{}, storeErr("reports.purchases", err, nil)
	}

	sum := domain.SalesSummary{
		From: rng.From, To: rng.To,
		Total: decimal.Zero, FinalConsumer: decimal.Zero, Wholesale: decimal.Zero,
		Cost: decimal.Zero, Profit: decimal.Zero, PurchaseTotal: decimal.Zero,
	}
	for _, sale := range sales {
		sum.Sales++
		sum.Total = sum.Total.Add(sale.TotalAmount)
		if sale.SaleType == domain.SaleWholesale {
			sum.Wholesale = sum.Wholesale.Add(sale.TotalAmount)
		} else {
			sum.FinalConsumer = sum.FinalConsumer.Add(sale.TotalAmount)
		}
		for _, it := range sale.Items {
			sum.Units += it.Quantity
			sum.Cost = sum.Cost.Add(it.UnitCostAtSale.Mul(decimal.NewFromInt(int64(it.Quantity))))
			sum.Profit = sum.Profit.Add(it.Profit())
		}
	}
	for _, p := range purchases {
		sum.Purchases++
		sum.PurchaseTotal = sum.PurchaseTotal.Add(p.TotalCost)
	}
	return sum, nil
}

// TopProducts ranks products by units sold, ties broken by revenue then name.
func (s *ReportService) TopProducts(ctx context.Context, rng domain.DateRange, limit int) ([]domain.TopProduct, error) {
	if limit <= 0 {
		limit = 10
	}
	sales, err := s.Sales.List(ctx, rng, 0)
	if err != nil {
		return nil, storeErr("reports.sales", err, nil)
	}

	byID := map[string]*domain.TopProduct{}
	for _, sale := range sales {
		for _, it := range sale.Items {
			tp, ok := byID[it.ProductID]
			if !ok {
				tp = &domain.TopProduct{ProductID: it.ProductID, ProductName: it.ProductName, Revenue: decimal.Zero}
				byID[it.ProductID] = tp
			}
			tp.Units += it.Quantity
			tp.Revenue = tp.Revenue.Add(it.Subtotal())
		}
	}

	out := make([]domain.TopProduct, 0, len(byID))
	for _, tp := range byID {
		out = append(out, *tp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Units != out[j].Units {
			return out[i].Units > out[j].Units
		}
		if c := out[i].Revenue.Cmp(out[j].Revenue); c != 0 {
			return c > 0
		}
		return out[i].ProductName < out[j].ProductName
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

const salesSheet = "Ventas"

// ExportSalesXLSX writes one row per sale item in the range.
func (s *ReportService) ExportSalesXLSX(ctx context.Context, rng domain.DateRange, w io.Writer) error {
	sales, err := s.Sales.List(ctx, rng, 0)
	if err != nil {
		return storeErr("reports.sales", err, nil)
	}

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", salesSheet); err != nil {
		return err
	}

	header := []any{"Sale ID", "Date", "Type", "Client", "Markup %", "Product ID", "Product", "Qty", "Unit price", "Unit cost", "Subtotal", "Profit", "Override"}
	if err := f.SetSheetRow(salesSheet, "A1", &header); err != nil {
		return err
	}

	row := 2
	for _, sale := range sales {
		for _, it := range sale.Items {
			price, _ := it.PriceAtSale.Float64()
			cost, _ := it.UnitCostAtSale.Float64()
			sub, _ := it.Subtotal().Float64()
			profit, _ := it.Profit().Float64()
			markup, _ := sale.MarkupPercent.Float64()
			vals := []any{
				sale.ID, sale.SaleDate.Format("2006-01-02 15:04:05"), sale.SaleType, sale.ClientID, markup,
				it.ProductID, it.ProductName, it.Quantity, price, cost, sub, profit, it.Overridden,
			}
			if err := f.SetSheetRow(salesSheet, fmt.Sprintf("A%d", row), &vals); err != nil {
				return err
			}
			row++
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}
