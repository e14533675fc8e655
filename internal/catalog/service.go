package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/pawshop/pawshop/internal/domain"
	"github.com/pawshop/pawshop/pkg/common"
	"go.uber.org/zap"
)

// ValidationError is a caller-visible rule violation. Handlers branch on it
// instead of treating it as an internal failure.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Service wraps catalog data access with the storefront's business rules.
type Service struct {
	products   ProductRepository
	categories CategoryRepository
	cache      *ProductCache
}

func NewService(products ProductRepository, categories CategoryRepository) *Service {
	return &Service{products: products, categories: categories}
}

// WithCache attaches a read-through product cache used by GetProduct.
func (s *Service) WithCache(cache *ProductCache) *Service {
	s.cache = cache
	return s
}

func (s *Service) CreateProduct(ctx context.Context, p *domain.Product) error {
	now := time.Now()
	if p.ID == 0 {
		p.ID = common.UUIDint64()
	}
	if p.Slug == "" {
		p.Slug = common.Slugify(p.Name)
	}
	p.CreatedAt = now
	p.UpdatedAt = now
	if err := s.products.Create(ctx, p); err != nil {
		return err
	}
	s.refreshCategoryCount(ctx, p.CategoryID)
	return nil
}

func (s *Service) UpdateProduct(ctx context.Context, p *domain.Product) error {
	prev, err := s.products.GetByID(ctx, p.ID)
	if err != nil {
		return err
	}
	p.CreatedAt = prev.CreatedAt
	p.UpdatedAt = time.Now()
	if p.Slug == "" {
		p.Slug = common.Slugify(p.Name)
	}
	if err := s.products.Update(ctx, p); err != nil {
		return err
	}
	if prev.CategoryID != p.CategoryID {
		s.refreshCategoryCount(ctx, prev.CategoryID)
	}
	s.refreshCategoryCount(ctx, p.CategoryID)
	s.invalidate(p.ID)
	return nil
}

func (s *Service) DeleteProduct(ctx context.Context, id int64) error {
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.products.Delete(ctx, id); err != nil {
		return err
	}
	s.refreshCategoryCount(ctx, p.CategoryID)
	s.invalidate(id)
	return nil
}

// GetProduct reads through the cache when one is attached.
func (s *Service) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	if s.cache != nil {
		return s.cache.Get(ctx, id)
	}
	return s.products.GetByID(ctx, id)
}

func (s *Service) CreateCategory(ctx context.Context, c *domain.Category) error {
	now := time.Now()
	if c.ID == 0 {
		c.ID = common.UUIDint64()
	}
	if c.Slug == "" {
		c.Slug = common.Slugify(c.Name)
	}
	c.ProductCount = 0
	c.CreatedAt = now
	c.UpdatedAt = now
	return s.categories.Create(ctx, c)
}

func (s *Service) UpdateCategory(ctx context.Context, c *domain.Category) error {
	prev, err := s.categories.GetByID(ctx, c.ID)
	if err != nil {
		return err
	}
	c.CreatedAt = prev.CreatedAt
	c.ProductCount = prev.ProductCount
	c.UpdatedAt = time.Now()
	if c.Slug == "" {
		c.Slug = common.Slugify(c.Name)
	}
	return s.categories.Update(ctx, c)
}

// DeleteCategory refuses to delete a category that products still reference.
// The refusal is a ValidationError the admin UI can show verbatim.
func (s *Service) DeleteCategory(ctx context.Context, id int64) error {
	count, err := s.products.CountByCategory(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return &ValidationError{Message: fmt.Sprintf(
			"Cannot delete category with %d products. Please move or delete products first.", count)}
	}
	return s.categories.Delete(ctx, id)
}

func (s *Service) LowStockProducts(ctx context.Context, threshold int) ([]*domain.Product, error) {
	return s.products.LowStock(ctx, threshold)
}

func (s *Service) refreshCategoryCount(ctx context.Context, categoryID int64) {
	if categoryID == 0 {
		return
	}
	count, err := s.products.CountByCategory(ctx, categoryID)
	if err != nil {
		zap.L().Warn("category count query failed", zap.Int64("category_id", categoryID), zap.Error(err))
		return
	}
	if err := s.categories.SetProductCount(ctx, categoryID, count); err != nil {
		zap.L().Warn("category count update failed", zap.Int64("category_id", categoryID), zap.Error(err))
	}
}

func (s *Service) invalidate(productID int64) {
	if s.cache != nil {
		s.cache.Invalidate(productID)
	}
}
