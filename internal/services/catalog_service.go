package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"shopvision/internal/domain"
	"shopvision/internal/repos"
	"shopvision/internal/validate"
)

// CatalogStore is the product table as the services see it.
type CatalogStore interface {
	Get(ctx context.Context, id string) (domain.Product, error)
	Create(ctx context.Context, p domain.Product) error
	Update(ctx context.Context, id string, u domain.ProductUpdate, now time.Time) error
	List(ctx context.Context, f domain.ProductFilter) ([]domain.Product, error)
	Delete(ctx context.Context, id string, now time.Time) (soft bool, err error)
}

var _ CatalogStore = (*repos.ProductRepo)(nil)

type CatalogService struct {
	Cats  *repos.CategoryRepo
	Prods CatalogStore
}

func NewCatalogService(cats *repos.CategoryRepo, prods CatalogStore) *CatalogService {
	return &CatalogService{Cats: cats, Prods: prods}
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]domain.CategoryCount, error) {
	out, err := s.Cats.Counts(ctx)
	return out, storeErr("categories.list", err, nil)
}

func (s *CatalogService) List(ctx context.Context, f domain.ProductFilter) ([]domain.Product, error) {
	if f.Category != "" {
		c, ok := validate.Category(f.Category)
		if !ok {
			return nil, invalid("unknown category %q", f.Category)
		}
		f.Category = c
	}
	out, err := s.Prods.List(ctx, f)
	return out, storeErr("products.list", err, nil)
}

func (s *CatalogService) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	p, err := s.Prods.Get(ctx, id)
	return p, storeErr("products.get", err, ErrNotFound)
}

func (s *CatalogService) Create(ctx context.Context, in domain.ProductInput) (domain.Product, error) {
	name, ok := validate.Name(in.Name)
	if !ok {
		return domain.Product{}, invalid("name is required")
	}
	cat, ok := validate.Category(in.Category)
	if !ok {
		return domain.Product{}, invalid("unknown category %q", in.Category)
	}
	if !validate.Amount(in.CostPrice) {
		return domain.Product{}, invalid("cost_price must be >= 0")
	}
	if in.Stock < 0 {
		return domain.Product{}, invalid("stock must be >= 0")
	}

	now := time.Now().UTC().Truncate(time.Second)
	p := domain.Product{
		ID:          uuid.NewString(),
		Name:        name,
		Description: in.Description,
		CostPrice:   in.CostPrice,
		Stock:       in.Stock,
		Category:    cat,
		ImageURL:    in.ImageURL,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.Prods.Create(ctx, p); err != nil {
		return domain.Product{}, storeErr("products.create", err, nil)
	}
	return p, nil
}

// Update never touches stock; that moves through purchases and sales.
func (s *CatalogService) Update(ctx context.Context, id string, u domain.ProductUpdate) (domain.Product, error) {
	if u.Empty() {
		return domain.Product{}, invalid("nothing to update")
	}
	if u.Name != nil {
		name, ok := validate.Name(*u.Name)
		if !ok {
			return domain.Product{}, invalid("name is required")
		}
		u.Name = &name
	}
	if u.Category != nil {
		cat, ok := validate.Category(*u.Category)
		if !ok {
			return domain.Product{}, invalid("unknown category %q", *u.Category)
		}
		u.Category = &cat
	}
	if u.CostPrice != nil && !validate.Amount(*u.CostPrice) {
		return domain.Product{}, invalid("cost_price must be >= 0")
	}

	now := time.Now().UTC().Truncate(time.Second)
	if err := s.Prods.Update(ctx, id, u, now); err != nil {
		return domain.Product{}, storeErr("products.update", err, ErrNotFound)
	}
	return s.GetProduct(ctx, id)
}

// Delete hard-deletes unreferenced products and deactivates the rest.
func (s *CatalogService) Delete(ctx context.Context, id string) (soft bool, err error) {
	soft, err = s.Prods.Delete(ctx, id, time.Now().UTC().Truncate(time.Second))
	return soft, storeErr("products.delete", err, ErrNotFound)
}
