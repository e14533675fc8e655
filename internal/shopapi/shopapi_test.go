package shopapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/pawshop/pawshop/internal/app"
	"github.com/pawshop/pawshop/internal/cart"
	"github.com/pawshop/pawshop/internal/catalog"
	"github.com/pawshop/pawshop/internal/domain"
	"github.com/pawshop/pawshop/internal/order"
)

// fakeAppCtx implements just the providers the storefront handlers touch.
// Anything else panics via the embedded nil interface.
type fakeAppCtx struct {
	app.AppContext
	cartStore  *cart.Store
	history    *order.History
	factory    *order.Factory
	catalogSvc *catalog.Service
}

func (f *fakeAppCtx) Cart() *cart.Store            { return f.cartStore }
func (f *fakeAppCtx) Orders() *order.History       { return f.history }
func (f *fakeAppCtx) OrderFactory() *order.Factory { return f.factory }
func (f *fakeAppCtx) Catalog() *catalog.Service    { return f.catalogSvc }
func (f *fakeAppCtx) DB() *gorm.DB                 { return nil }

type fakeProductRepo struct {
	products map[int64]*domain.Product
}

func (r *fakeProductRepo) Create(_ context.Context, p *domain.Product) error {
	r.products[p.ID] = p
	return nil
}

func (r *fakeProductRepo) Update(_ context.Context, p *domain.Product) error {
	r.products[p.ID] = p
	return nil
}

func (r *fakeProductRepo) GetByID(_ context.Context, id int64) (*domain.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, errors.New("record not found")
	}
	cp := p.Clone()
	return &cp, nil
}

func (r *fakeProductRepo) GetBySlug(_ context.Context, slug string) (*domain.Product, error) {
	for _, p := range r.products {
		if p.Slug == slug {
			cp := p.Clone()
			return &cp, nil
		}
	}
	return nil, errors.New("record not found")
}

func (r *fakeProductRepo) List(_ context.Context, _ map[string]interface{}, _, _ int) ([]*domain.Product, int64, error) {
	var out []*domain.Product
	for _, p := range r.products {
		out = append(out, p)
	}
	return out, int64(len(out)), nil
}

func (r *fakeProductRepo) Delete(_ context.Context, id int64) error {
	delete(r.products, id)
	return nil
}

func (r *fakeProductRepo) CountByCategory(_ context.Context, categoryID int64) (int64, error) {
	var n int64
	for _, p := range r.products {
		if p.CategoryID == categoryID {
			n++
		}
	}
	return n, nil
}

func (r *fakeProductRepo) LowStock(_ context.Context, threshold int) ([]*domain.Product, error) {
	var out []*domain.Product
	for _, p := range r.products {
		if p.Stock < threshold {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeCategoryRepo struct{}

func (r *fakeCategoryRepo) Create(context.Context, *domain.Category) error { return nil }
func (r *fakeCategoryRepo) Update(context.Context, *domain.Category) error { return nil }
func (r *fakeCategoryRepo) GetByID(context.Context, int64) (*domain.Category, error) {
	return nil, errors.New("record not found")
}
func (r *fakeCategoryRepo) List(context.Context) ([]*domain.Category, error) { return nil, nil }
func (r *fakeCategoryRepo) Delete(context.Context, int64) error              { return nil }
func (r *fakeCategoryRepo) SetProductCount(context.Context, int64, int64) error {
	return nil
}

func newTestCtx(products ...domain.Product) *fakeAppCtx {
	repo := &fakeProductRepo{products: map[int64]*domain.Product{}}
	for i := range products {
		p := products[i]
		repo.products[p.ID] = &p
	}
	cartStore := cart.NewStore(nil, nil, nil)
	history := order.NewHistory(nil)
	return &fakeAppCtx{
		cartStore:  cartStore,
		history:    history,
		factory:    order.NewFactory(cartStore, history, nil),
		catalogSvc: catalog.NewService(repo, &fakeCategoryRepo{}),
	}
}

func addressFixture() domain.Address {
	return domain.Address{
		Recipient:  "Budi Santoso",
		Street:     "Jl. Melati No. 10",
		City:       "Jakarta",
		PostalCode: "10110",
	}
}

func newRequest(ctx *fakeAppCtx, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("appctx", ctx)
	return c, rec
}
