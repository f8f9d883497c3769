package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	product "github.com/angelmondragon/sagaflow-backend/internal/products"
	sagasvc "github.com/angelmondragon/sagaflow-backend/internal/saga"
	"github.com/angelmondragon/sagaflow-backend/pkg/config"
	"github.com/angelmondragon/sagaflow-backend/pkg/db/models"
	"github.com/angelmondragon/sagaflow-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/sagaflow-backend/pkg/errors"
	"github.com/angelmondragon/sagaflow-backend/pkg/logger"
	"github.com/angelmondragon/sagaflow-backend/pkg/redis"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubSagaService struct {
	created *models.SagaOrder
}

func (s stubSagaService) CreateOrder(ctx context.Context, input sagasvc.CreateOrderInput) (*models.SagaOrder, error) {
	if s.created != nil {
		return s.created, nil
	}
	return &models.SagaOrder{
		ID:         uuid.New(),
		CustomerID: input.CustomerID,
		ProductID:  input.ProductID,
		Quantity:   input.Quantity,
		Price:      input.Price,
		Status:     enums.OrderStatusCompleted,
		CreatedAt:  time.Now().UTC(),
		UpdatedAt:  time.Now().UTC(),
	}, nil
}

func (s stubSagaService) GetOrder(ctx context.Context, id uuid.UUID) (*models.SagaOrder, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
}

func (s stubSagaService) ListOrders(ctx context.Context, params sagasvc.ListParams) (*sagasvc.ListResult, error) {
	return &sagasvc.ListResult{Items: []sagasvc.ListItem{}}, nil
}

type stubProductCommands struct{}

func (stubProductCommands) CreateProduct(ctx context.Context, input product.CreateProductInput) (*product.ProductDTO, error) {
	return &product.ProductDTO{ID: uuid.New(), SKU: input.SKU, Name: input.Name, Price: input.Price}, nil
}

func (stubProductCommands) UpdatePrice(ctx context.Context, productID uuid.UUID, input product.UpdatePriceInput) (*product.ProductDTO, error) {
	return &product.ProductDTO{ID: productID, Price: input.Price}, nil
}

func (stubProductCommands) DeactivateProduct(ctx context.Context, productID uuid.UUID) error {
	return nil
}

type stubProductQueries struct{}

func (stubProductQueries) GetProduct(ctx context.Context, id uuid.UUID) (*product.ProductDTO, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
}

func (stubProductQueries) GetProductBySKU(ctx context.Context, sku string) (*product.ProductDTO, error) {
	return &product.ProductDTO{ID: uuid.New(), SKU: sku, Price: decimal.NewFromInt(5)}, nil
}

func (stubProductQueries) ListProducts(ctx context.Context, params product.ListParams) (*product.ListResult, error) {
	return &product.ListResult{Items: []product.ProductDTO{}}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
	}
}

func newTestRouter(cfg *config.Config) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(
		cfg,
		logg,
		stubPinger{},
		(*redis.Client)(nil),
		stubSagaService{},
		nil,
		stubProductCommands{},
		stubProductQueries{},
	)
}

func TestHealthLive(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := rec.Header().Get("X-SagaFlow-Env"); got != "test" {
		t.Fatalf("expected env header, got %q", got)
	}
}

func TestHealthReadyFailsWithoutRedis(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code < 500 {
		t.Fatalf("expected dependency failure, got %d", rec.Code)
	}
}

func TestCreateOrderRoute(t *testing.T) {
	router := newTestRouter(testConfig())
	body := `{"customer_id":"CUST-1","product_id":"SKU-1","quantity":2,"price":"19.99"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/saga/orders", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "SKU-1") {
		t.Fatalf("expected created order in body, got %s", rec.Body.String())
	}
}

func TestCreateOrderRouteRejectsBadBody(t *testing.T) {
	router := newTestRouter(testConfig())
	body := `{"customer_id":"CUST-1","product_id":"SKU-1","quantity":0,"price":"19.99"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/saga/orders", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestOrderDetailRouteNotFound(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/saga/orders/"+uuid.NewString(), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestOrderListRoute(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/saga/orders?status=completed&limit=5", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestOrderListRouteRejectsBadStatus(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/saga/orders?status=bogus", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestProductCommandRoutes(t *testing.T) {
	router := newTestRouter(testConfig())

	create := httptest.NewRequest(http.MethodPost, "/api/v1/commands/products", strings.NewReader(`{"sku":"SKU-9","name":"Widget","price":"4.50"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, create)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	patch := httptest.NewRequest(http.MethodPatch, "/api/v1/commands/products/"+uuid.NewString()+"/price", strings.NewReader(`{"price":"6.00"}`))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, patch)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	del := httptest.NewRequest(http.MethodDelete, "/api/v1/commands/products/"+uuid.NewString(), nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, del)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestProductQueryRoutes(t *testing.T) {
	router := newTestRouter(testConfig())

	list := httptest.NewRequest(http.MethodGet, "/api/v1/queries/products?active_only=true", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, list)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	bySKU := httptest.NewRequest(http.MethodGet, "/api/v1/queries/products?sku=SKU-9", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, bySKU)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	missing := httptest.NewRequest(http.MethodGet, "/api/v1/queries/products/"+uuid.NewString(), nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, missing)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestPublicPing(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/public/ping", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
