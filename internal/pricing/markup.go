package pricing

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"shopvision/internal/domain"
)

var (
	ErrMissingClient   = errors.New("wholesale sale requires a client")
	ErrUnknownSaleType = errors.New("unknown sale type")
)

// Defaults are the markups used when a sale does not name one.
type Defaults struct {
	FinalConsumer decimal.Decimal
	Wholesale     decimal.Decimal
}

// ClientFinder looks a wholesale client up by id.
type ClientFinder func(id string) (domain.WholesaleClient, error)

// SelectMarkup picks the markup percentage for a sale type. Final consumer
// sales use the fixed default; wholesale sales use the client's markup, or
// the wholesale default when the client has none. Lookup errors are
// returned as is.
func SelectMarkup(saleType, clientID string, find ClientFinder, d Defaults) (decimal.Decimal, error) {
	switch saleType {
	case domain.SaleFinalConsumer:
		return d.FinalConsumer, nil
	case domain.SaleWholesale:
		if clientID == "" {
			return decimal.Zero, ErrMissingClient
		}
		c, err := find(clientID)
		if err != nil {
			return decimal.Zero, err
		}
		if !c.Markup.Valid || c.Markup.Decimal.IsNegative() {
			return d.Wholesale, nil
		}
		return c.Markup.Decimal, nil
	}
	return decimal.Zero, fmt.Errorf("%w: %q", ErrUnknownSaleType, saleType)
}
