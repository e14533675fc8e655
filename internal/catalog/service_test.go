package catalog

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pawshop/pawshop/internal/domain"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errNotFound = errors.New("record not found")

type fakeProductRepo struct {
	mu       sync.Mutex
	products map[int64]domain.Product
	gets     int
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: map[int64]domain.Product{}}
}

func (r *fakeProductRepo) Create(_ context.Context, p *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[p.ID] = *p
	return nil
}

func (r *fakeProductRepo) Update(_ context.Context, p *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[p.ID] = *p
	return nil
}

func (r *fakeProductRepo) GetByID(_ context.Context, id int64) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gets++
	p, ok := r.products[id]
	if !ok {
		return nil, errNotFound
	}
	return &p, nil
}

func (r *fakeProductRepo) GetBySlug(_ context.Context, slug string) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.products {
		if p.Slug == slug {
			p := p
			return &p, nil
		}
	}
	return nil, errNotFound
}

func (r *fakeProductRepo) List(_ context.Context, _ map[string]interface{}, _, _ int) ([]*domain.Product, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Product
	for _, p := range r.products {
		p := p
		out = append(out, &p)
	}
	return out, int64(len(out)), nil
}

func (r *fakeProductRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.products, id)
	return nil
}

func (r *fakeProductRepo) CountByCategory(_ context.Context, categoryID int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, p := range r.products {
		if p.CategoryID == categoryID {
			n++
		}
	}
	return n, nil
}

func (r *fakeProductRepo) LowStock(_ context.Context, threshold int) ([]*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Product
	for _, p := range r.products {
		if p.Stock < threshold {
			p := p
			out = append(out, &p)
		}
	}
	return out, nil
}

type fakeCategoryRepo struct {
	mu         sync.Mutex
	categories map[int64]domain.Category
}

func newFakeCategoryRepo() *fakeCategoryRepo {
	return &fakeCategoryRepo{categories: map[int64]domain.Category{}}
}

func (r *fakeCategoryRepo) Create(_ context.Context, c *domain.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.categories[c.ID] = *c
	return nil
}

func (r *fakeCategoryRepo) Update(_ context.Context, c *domain.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.categories[c.ID] = *c
	return nil
}

func (r *fakeCategoryRepo) GetByID(_ context.Context, id int64) (*domain.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.categories[id]
	if !ok {
		return nil, errNotFound
	}
	return &c, nil
}

func (r *fakeCategoryRepo) List(_ context.Context) ([]*domain.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Category
	for _, c := range r.categories {
		c := c
		out = append(out, &c)
	}
	return out, nil
}

func (r *fakeCategoryRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.categories, id)
	return nil
}

func (r *fakeCategoryRepo) SetProductCount(_ context.Context, id int64, count int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.categories[id]
	if !ok {
		return errNotFound
	}
	c.ProductCount = int(count)
	r.categories[id] = c
	return nil
}

func newTestService() (*Service, *fakeProductRepo, *fakeCategoryRepo) {
	products := newFakeProductRepo()
	categories := newFakeCategoryRepo()
	return NewService(products, categories), products, categories
}

func TestCreateProduct_AssignsIDAndSlug(t *testing.T) {
	svc, repo, cats := newTestService()
	ctx := context.Background()

	require.NoError(t, svc.CreateCategory(ctx, &domain.Category{ID: 10, Name: "Dog Food"}))

	p := &domain.Product{Name: "Premium Dog Kibble 5kg", Price: 150000, Stock: 20, CategoryID: 10}
	require.NoError(t, svc.CreateProduct(ctx, p))

	assert.NotZero(t, p.ID)
	assert.Equal(t, "premium-dog-kibble-5kg", p.Slug)
	assert.False(t, p.CreatedAt.IsZero())

	stored, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.Name, stored.Name)

	cat, err := cats.GetByID(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, cat.ProductCount)
}

func TestUpdateProduct_MovesCategoryCounts(t *testing.T) {
	svc, _, cats := newTestService()
	ctx := context.Background()

	require.NoError(t, svc.CreateCategory(ctx, &domain.Category{ID: 1, Name: "Toys"}))
	require.NoError(t, svc.CreateCategory(ctx, &domain.Category{ID: 2, Name: "Treats"}))

	p := &domain.Product{Name: "Squeaky Bone", Price: 30000, Stock: 5, CategoryID: 1}
	require.NoError(t, svc.CreateProduct(ctx, p))

	moved := *p
	moved.CategoryID = 2
	require.NoError(t, svc.UpdateProduct(ctx, &moved))

	c1, _ := cats.GetByID(ctx, 1)
	c2, _ := cats.GetByID(ctx, 2)
	assert.Equal(t, 0, c1.ProductCount)
	assert.Equal(t, 1, c2.ProductCount)
}

func TestDeleteCategory_RefusesWhileReferenced(t *testing.T) {
	svc, _, cats := newTestService()
	ctx := context.Background()

	require.NoError(t, svc.CreateCategory(ctx, &domain.Category{ID: 1, Name: "Toys"}))
	require.NoError(t, svc.CreateProduct(ctx, &domain.Product{Name: "Ball", Price: 10000, Stock: 3, CategoryID: 1}))

	err := svc.DeleteCategory(ctx, 1)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Message, "Cannot delete category with 1 products")

	// still there
	_, err = cats.GetByID(ctx, 1)
	assert.NoError(t, err)
}

func TestDeleteCategory_EmptySucceeds(t *testing.T) {
	svc, _, cats := newTestService()
	ctx := context.Background()

	require.NoError(t, svc.CreateCategory(ctx, &domain.Category{ID: 1, Name: "Toys"}))
	require.NoError(t, svc.DeleteCategory(ctx, 1))

	_, err := cats.GetByID(ctx, 1)
	assert.ErrorIs(t, err, errNotFound)
}

func TestLowStockProducts(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	require.NoError(t, svc.CreateProduct(ctx, &domain.Product{Name: "A", Stock: 2}))
	require.NoError(t, svc.CreateProduct(ctx, &domain.Product{Name: "B", Stock: 50}))

	low, err := svc.LowStockProducts(ctx, 10)
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, "A", low[0].Name)
}

func TestProductCache_ReadThroughAndInvalidate(t *testing.T) {
	repo := newFakeProductRepo()
	require.NoError(t, repo.Create(context.Background(), &domain.Product{ID: 1, Name: "Ball", Price: 10000, Stock: 3}))

	cache := NewProductCache(repo, time.Minute)
	t.Cleanup(cache.Stop)

	p1, err := cache.Get(context.Background(), 1)
	require.NoError(t, err)
	p2, err := cache.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, p1.Name, p2.Name)
	assert.Equal(t, 1, repo.gets, "second read served from cache")

	cache.Invalidate(1)
	_, err = cache.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.gets)
}

func TestProductCache_MissPropagatesError(t *testing.T) {
	repo := newFakeProductRepo()
	cache := NewProductCache(repo, time.Minute)
	t.Cleanup(cache.Stop)

	_, err := cache.Get(context.Background(), 404)
	assert.ErrorIs(t, err, errNotFound)
}
