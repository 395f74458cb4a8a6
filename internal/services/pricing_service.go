package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"shopvision/internal/domain"
	"shopvision/internal/pricing"
	"shopvision/internal/repos"
	"shopvision/internal/validate"
)

type PricingService struct {
	Settings *repos.SettingsRepo
	Clients  *repos.ClientRepo
	Prods    CatalogStore
	Defaults pricing.Defaults
}

func NewPricingService(settings *repos.SettingsRepo, clients *repos.ClientRepo, prods CatalogStore, d pricing.Defaults) *PricingService {
	return &PricingService{Settings: settings, Clients: clients, Prods: prods, Defaults: d}
}

// Overview is the pricing configuration as shown to sellers.
type Overview struct {
	GlobalMargin        decimal.Decimal        `json:"global_margin"`
	FinalConsumerMarkup decimal.Decimal        `json:"final_consumer_markup"`
	WholesaleDefault    decimal.Decimal        `json:"wholesale_default_markup"`
	Overrides           []domain.PriceOverride `json:"overrides"`
}

// Load reads and validates the stored configuration.
func (s *PricingService) Load(ctx context.Context) (pricing.Config, error) {
	raw, err := s.Settings.RawMargin(ctx)
	if err != nil {
		return pricing.Config{}, storeErr("pricing.margin", err, nil)
	}
	ovs, err := s.Settings.Overrides(ctx)
	if err != nil {
		return pricing.Config{}, storeErr("pricing.overrides", err, nil)
	}
	return configFrom(raw, ovs), nil
}

func configFrom(rawMargin string, ovs []domain.PriceOverride) pricing.Config {
	m := make(map[string]decimal.Decimal, len(ovs))
	for _, o := range ovs {
		m[o.ProductID] = o.Price
	}
	return pricing.NewConfig(rawMargin, m)
}

func (s *PricingService) Overview(ctx context.Context) (Overview, error) {
	cfg, err := s.Load(ctx)
	if err != nil {
		return Overview{}, err
	}
	ovs, err := s.Settings.Overrides(ctx)
	if err != nil {
		return Overview{}, storeErr("pricing.overrides", err, nil)
	}
	return Overview{
		GlobalMargin:        cfg.GlobalMargin,
		FinalConsumerMarkup: s.Defaults.FinalConsumer,
		WholesaleDefault:    s.Defaults.Wholesale,
		Overrides:           ovs,
	}, nil
}

// SetMargin stores a new global margin. Unlike loading, writing is strict:
// non-numeric or negative input is rejected.
func (s *PricingService) SetMargin(ctx context.Context, raw string) (decimal.Decimal, error) {
	m, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil || m.IsNegative() {
		return decimal.Zero, invalid("margin must be a non-negative number")
	}
	if err := s.Settings.SetMargin(ctx, m.String(), time.Now().UTC().Truncate(time.Second)); err != nil {
		return decimal.Zero, storeErr("pricing.set_margin", err, nil)
	}
	return m, nil
}

func (s *PricingService) SetOverride(ctx context.Context, productID string, amount decimal.Decimal) (domain.PriceOverride, error) {
	if !validate.Amount(amount) {
		return domain.PriceOverride{}, invalid("price must be >= 0")
	}
	if _, err := s.Prods.Get(ctx, productID); err != nil {
		return domain.PriceOverride{}, storeErr("pricing.override_product", err, unknownProduct(productID))
	}
	o := domain.PriceOverride{ProductID: productID, Price: amount, UpdatedAt: time.Now().UTC().Truncate(time.Second)}
	if err := s.Settings.SetOverride(ctx, o); err != nil {
		return domain.PriceOverride{}, storeErr("pricing.set_override", err, nil)
	}
	return o, nil
}

func (s *PricingService) RemoveOverride(ctx context.Context, productID string) error {
	return storeErr("pricing.remove_override", s.Settings.DeleteOverride(ctx, productID), ErrNotFound)
}

func (s *PricingService) ListClients(ctx context.Context) ([]domain.WholesaleClient, error) {
	out, err := s.Clients.List(ctx)
	return out, storeErr("clients.list", err, nil)
}

func (s *PricingService) Client(ctx context.Context, id string) (domain.WholesaleClient, error) {
	c, err := s.Clients.Get(ctx, id)
	return c, storeErr("clients.get", err, ErrUnknownClient)
}

// ClientInput carries a client's name and optional markup percentage.
type ClientInput struct {
	Name   string           `json:"name"`
	Markup *decimal.Decimal `json:"markup"`
}

func (s *PricingService) CreateClient(ctx context.Context, in ClientInput) (domain.WholesaleClient, error) {
	c, err := s.checkClient(ctx, "", in)
	if err != nil {
		return domain.WholesaleClient{}, err
	}
	c.ID = uuid.NewString()
	c.CreatedAt = time.Now().UTC().Truncate(time.Second)
	if err := s.Clients.Create(ctx, c); err != nil {
		return domain.WholesaleClient{}, storeErr("clients.create", err, nil)
	}
	return c, nil
}

func (s *PricingService) UpdateClient(ctx context.Context, id string, in ClientInput) (domain.WholesaleClient, error) {
	cur, err := s.Client(ctx, id)
	if err != nil {
		return domain.WholesaleClient{}, err
	}
	c, err := s.checkClient(ctx, id, in)
	if err != nil {
		return domain.WholesaleClient{}, err
	}
	c.ID, c.CreatedAt = cur.ID, cur.CreatedAt
	if err := s.Clients.Update(ctx, c); err != nil {
		return domain.WholesaleClient{}, storeErr("clients.update", err, ErrUnknownClient)
	}
	return c, nil
}

// checkClient validates input and rejects names already used by another
// client (case-insensitive).
func (s *PricingService) checkClient(ctx context.Context, selfID string, in ClientInput) (domain.WholesaleClient, error) {
	name, ok := validate.Name(in.Name)
	if !ok {
		return domain.WholesaleClient{}, invalid("client name is required")
	}
	var markup decimal.NullDecimal
	if in.Markup != nil {
		if !validate.Amount(*in.Markup) {
			return domain.WholesaleClient{}, invalid("markup must be >= 0")
		}
		markup = decimal.NewNullDecimal(*in.Markup)
	}
	all, err := s.Clients.List(ctx)
	if err != nil {
		return domain.WholesaleClient{}, storeErr("clients.list", err, nil)
	}
	for _, c := range all {
		if c.ID != selfID && strings.EqualFold(c.Name, name) {
			return domain.WholesaleClient{}, invalid("client %q already exists", name)
		}
	}
	return domain.WholesaleClient{Name: name, Markup: markup}, nil
}
