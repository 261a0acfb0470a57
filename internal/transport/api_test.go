package transport

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"storefront/internal/config"
	"storefront/internal/domain"
	"storefront/internal/middleware"
	"storefront/internal/repository"
	"storefront/internal/repository/sqlitetest"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const testSecret = "transport-test-secret"

var (
	adminCaller    = domain.Caller{UserID: uuid.New(), Username: "admin", IsAdmin: true}
	customerCaller = domain.Caller{UserID: uuid.New(), Username: "customer", IsCustomer: true}
)

// testAPI is every handler mounted on one router over an in-memory store
type testAPI struct {
	router     chi.Router
	session    *repository.Store
	categories service.CategoryService
	products   service.ProductService
}

func newTestAPI(t *testing.T) *testAPI {
	session := repository.NewStore(sqlitetest.Open(t))
	logger := zap.NewNop()

	categories := service.NewCategoryService(session, logger)
	products := service.NewProductService(session, logger)
	reviews := service.NewReviewService(session, logger, false)
	users := service.NewUserService(session, config.JWTConfig{
		Secret:        testSecret,
		AccessExpiry:  15,
		RefreshExpiry: 7,
	}, logger)

	router := chi.NewRouter()
	auth := middleware.AuthMiddleware(testSecret, logger)
	NewProductHandler(products, logger).RegisterRoutes(router, auth)
	NewReviewHandler(reviews, logger).RegisterRoutes(router, auth)
	NewCategoryHandler(categories, logger).RegisterRoutes(router, auth)
	NewUserHandler(users, logger).RegisterRoutes(router, auth)

	return &testAPI{
		router:     router,
		session:    session,
		categories: categories,
		products:   products,
	}
}

func tokenFor(t *testing.T, caller domain.Caller) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":     caller.UserID.String(),
		"username":    caller.Username,
		"is_admin":    caller.IsAdmin,
		"is_supplier": caller.IsSupplier,
		"is_customer": caller.IsCustomer,
		"exp":         time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}
	return signed
}

// do sends a JSON request. A nil caller sends no Authorization header.
func (a *testAPI) do(t *testing.T, method, path string, body interface{}, caller *domain.Caller) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to encode body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if caller != nil {
		req.Header.Set("Authorization", "Bearer "+tokenFor(t, *caller))
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testAPI) seedCategory(t *testing.T, name string, parent *uuid.UUID) *domain.Category {
	t.Helper()

	category, err := a.categories.Create(t.Context(), adminCaller, service.CategoryInput{Name: name, ParentID: parent})
	if err != nil {
		t.Fatalf("Failed to seed category %s: %v", name, err)
	}
	return category
}

func (a *testAPI) seedProduct(t *testing.T, owner domain.Caller, name string, categoryID uuid.UUID) *domain.Product {
	t.Helper()

	product, err := a.products.Create(t.Context(), owner, service.ProductInput{Name: name, Stock: 3, CategoryID: categoryID})
	if err != nil {
		t.Fatalf("Failed to seed product %s: %v", name, err)
	}
	return product
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("Failed to decode response %q: %v", w.Body.String(), err)
	}
}

func errorDetail(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var response middleware.ErrorResponse
	decodeBody(t, w, &response)
	return response.Detail
}

func newSupplier() domain.Caller {
	return domain.Caller{UserID: uuid.New(), Username: "supplier", IsSupplier: true}
}

func productNames(products []domain.Product) []string {
	names := make([]string, 0, len(products))
	for _, p := range products {
		names = append(names, p.Name)
	}
	return names
}
