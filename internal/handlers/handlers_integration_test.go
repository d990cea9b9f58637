package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"productos/internal/app"
	"productos/internal/database"
	"productos/internal/handlers"
	"productos/internal/models"
	"productos/internal/repositories"
	"productos/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupApp sets up a Fiber app over a private in-memory SQLite database.
func setupApp(t *testing.T) (*fiber.App, repositories.ProductRepository) {
	t.Helper()

	db, err := database.Open("file::memory:")
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.Connect(context.Background(), db))

	productRepo := repositories.NewGORMProductRepository(db)
	productService := services.NewProductService(productRepo, nil)
	return app.NewApp(productService, app.Options{DisableRequestLog: true}), productRepo
}

// seedProduct stores a product directly through the repository.
func seedProduct(t *testing.T, repo repositories.ProductRepository, name string, price float64) models.Product {
	t.Helper()
	p, err := repo.Create(context.Background(), models.ProductFields{Name: name, Price: price})
	require.NoError(t, err)
	return p
}

// TestMain runs setup and teardown for all tests
func TestMain(m *testing.M) {
	// Suppress logging during tests for cleaner output
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
	os.Exit(m.Run())
}

type envelope struct {
	OK     bool            `json:"ok"`
	Data   json.RawMessage `json:"data"`
	Error  string          `json:"error"`
	Errors []struct {
		Msg      string `json:"msg"`
		Path     string `json:"path"`
		Location string `json:"location"`
	} `json:"errors"`
	Msg string `json:"msg"`
}

func (e envelope) product(t *testing.T) models.Product {
	t.Helper()
	var p models.Product
	require.NoError(t, json.Unmarshal(e.Data, &p))
	return p
}

func (e envelope) messages() []string {
	out := make([]string, 0, len(e.Errors))
	for _, err := range e.Errors {
		out = append(out, err.Msg)
	}
	return out
}

func do(t *testing.T, app *fiber.App, method, target string, body any) (*http.Response, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1) // -1 for no timeout
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 && resp.Header.Get("Content-Type") == fiber.MIMEApplicationJSON {
		require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	}
	return resp, env
}

func TestHealth(t *testing.T) {
	app, _ := setupApp(t)

	resp, body := do(t, app, http.MethodGet, "/api", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "json")
	assert.Equal(t, "desde Api", body.Msg)
}

func TestCreateProduct(t *testing.T) {
	app, _ := setupApp(t)

	t.Run("validation errors on empty body", func(t *testing.T) {
		resp, body := do(t, app, http.MethodPost, "/api/products", map[string]any{})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.False(t, body.OK)
		assert.Equal(t, []string{
			handlers.MsgNameRequired,
			handlers.MsgPriceRequired,
			handlers.MsgInvalidValue,
			handlers.MsgInvalidPrice,
		}, body.messages())
	})

	t.Run("price must be greater than 0", func(t *testing.T) {
		resp, body := do(t, app, http.MethodPost, "/api/products", map[string]any{"name": "Monitor test 0", "price": 0})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, []string{handlers.MsgInvalidPrice}, body.messages())
	})

	t.Run("price must be a number and greater than 0", func(t *testing.T) {
		resp, body := do(t, app, http.MethodPost, "/api/products", map[string]any{"name": "Monitor test 0", "price": "hola"})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, []string{handlers.MsgInvalidValue, handlers.MsgInvalidPrice}, body.messages())
	})

	t.Run("creates an available product", func(t *testing.T) {
		resp, body := do(t, app, http.MethodPost, "/api/products", map[string]any{"name": "Mouse Testing", "price": 70})
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		assert.True(t, body.OK)
		assert.Empty(t, body.Errors)

		p := body.product(t)
		assert.NotZero(t, p.ID)
		assert.Equal(t, "Mouse Testing", p.Name)
		assert.Equal(t, 70.0, p.Price)
		assert.True(t, p.Availability)
	})

	t.Run("availability in the body is ignored", func(t *testing.T) {
		resp, body := do(t, app, http.MethodPost, "/api/products", map[string]any{"name": "Teclado", "price": "45.5", "availability": false})
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		assert.True(t, body.product(t).Availability)
		assert.Equal(t, 45.5, body.product(t).Price)
	})

	t.Run("malformed JSON", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/products", bytes.NewReader([]byte(`{"name":`)))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestListProducts(t *testing.T) {
	app, repo := setupApp(t)

	resp, body := do(t, app, http.MethodGet, "/api/products", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `[]`, string(body.Data))

	for i := 1; i <= 12; i++ {
		seedProduct(t, repo, fmt.Sprintf("Producto %d", i), float64(i*100))
	}

	resp, body = do(t, app, http.MethodGet, "/api/products", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "json")

	var products []map[string]any
	require.NoError(t, json.Unmarshal(body.Data, &products))
	require.Len(t, products, 10)
	assert.Equal(t, 1200.0, products[0]["price"])
	for i := 1; i < len(products); i++ {
		assert.GreaterOrEqual(t, products[i-1]["price"].(float64), products[i]["price"].(float64))
	}
	assert.NotContains(t, products[0], "createdAt")
	assert.NotContains(t, products[0], "updatedAt")
}

func TestGetProductByID(t *testing.T) {
	app, repo := setupApp(t)
	seeded := seedProduct(t, repo, "Monitor", 300)

	resp, body := do(t, app, http.MethodGet, "/api/products/2000", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Producto no encontrado", body.Error)
	assert.False(t, body.OK)

	resp, body = do(t, app, http.MethodGet, "/api/products/not-valid-ID", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Len(t, body.Errors, 1)
	assert.Equal(t, "Id no válido", body.Errors[0].Msg)

	resp, body = do(t, app, http.MethodGet, fmt.Sprintf("/api/products/%d", seeded.ID), nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, seeded.ID, body.product(t).ID)
	assert.Equal(t, "Monitor", body.product(t).Name)
}

func TestUpdateProduct(t *testing.T) {
	app, repo := setupApp(t)
	valid := map[string]any{"name": "Monitor Testing Update", "price": 300, "availability": true}

	resp, body := do(t, app, http.MethodPut, "/api/products/not-valid-ID", valid)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Len(t, body.Errors, 1)
	assert.Equal(t, "Id no válido", body.Errors[0].Msg)

	resp, body = do(t, app, http.MethodPut, "/api/products/1", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Len(t, body.Errors, 5)
	assert.Nil(t, body.Data)

	resp, body = do(t, app, http.MethodPut, "/api/products/1", map[string]any{"name": "Monitor Testing Update", "price": 0, "availability": true})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, []string{"Precio no válido"}, body.messages())

	resp, body = do(t, app, http.MethodPut, "/api/products/1", map[string]any{"name": "X", "price": 300, "availability": "quizas"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, []string{"Valor no disponible"}, body.messages())

	// Row 1 does not exist yet.
	resp, body = do(t, app, http.MethodPut, "/api/products/1", map[string]any{"name": "X", "price": 300, "availability": true})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Producto no encontrado", body.Error)
	assert.Nil(t, body.Data)

	seeded := seedProduct(t, repo, "Monitor", 250)
	resp, body = do(t, app, http.MethodPut, fmt.Sprintf("/api/products/%d", seeded.ID),
		map[string]any{"name": "Monitor Testing Update", "price": 300, "availability": false})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, body.Errors)
	p := body.product(t)
	assert.Equal(t, seeded.ID, p.ID)
	assert.Equal(t, "Monitor Testing Update", p.Name)
	assert.Equal(t, 300.0, p.Price)
	assert.False(t, p.Availability)
}

func TestPatchAvailability(t *testing.T) {
	app, repo := setupApp(t)

	resp, body := do(t, app, http.MethodPatch, "/api/products/2000", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Producto no encontrado", body.Error)
	assert.Nil(t, body.Data)

	resp, body = do(t, app, http.MethodPatch, "/api/products/abc", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Len(t, body.Errors, 1)

	seeded := seedProduct(t, repo, "Mouse", 25)
	target := fmt.Sprintf("/api/products/%d", seeded.ID)

	resp, body = do(t, app, http.MethodPatch, target, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.False(t, body.product(t).Availability)

	// The body is ignored.
	resp, body = do(t, app, http.MethodPatch, target, map[string]any{"availability": false})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, body.product(t).Availability)
}

func TestDeleteProduct(t *testing.T) {
	app, repo := setupApp(t)

	resp, body := do(t, app, http.MethodDelete, "/api/products/not-vaild-ID", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.NotEmpty(t, body.Errors)
	assert.Equal(t, "Id no válido", body.Errors[0].Msg)

	resp, body = do(t, app, http.MethodDelete, "/api/products/2000", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Producto no encontrado", body.Error)

	seeded := seedProduct(t, repo, "Audifonos", 99)
	target := fmt.Sprintf("/api/products/%d", seeded.ID)

	resp, body = do(t, app, http.MethodDelete, target, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `"Producto Eliminado"`, string(body.Data))

	resp, _ = do(t, app, http.MethodGet, target, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestNonPositiveIDIsNotFound(t *testing.T) {
	app, _ := setupApp(t)

	for _, id := range []string{"0", "-3"} {
		resp, body := do(t, app, http.MethodGet, "/api/products/"+id, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, id)
		assert.Equal(t, "Producto no encontrado", body.Error, id)
	}
}

func TestPersistenceFailureIsGeneric500(t *testing.T) {
	db, err := database.Open("file::memory:")
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// Never synced: every query fails with "no such table".
	t.Cleanup(func() { _ = sqlDB.Close() })
	sqlDB.SetMaxOpenConns(1)

	productService := services.NewProductService(repositories.NewGORMProductRepository(db), nil)
	app := app.NewApp(productService, app.Options{DisableRequestLog: true})

	for _, tc := range []struct{ method, target string }{
		{http.MethodGet, "/api/products"},
		{http.MethodGet, "/api/products/1"},
		{http.MethodDelete, "/api/products/1"},
	} {
		resp, body := do(t, app, tc.method, tc.target, nil)
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode, tc.target)
		assert.False(t, body.OK)
		assert.Equal(t, handlers.MsgInternalError, body.Error)
		assert.NotContains(t, body.Error, "no such table")
	}

	resp, body := do(t, app, http.MethodPost, "/api/products", map[string]any{"name": "Mouse", "price": 10})
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, handlers.MsgInternalError, body.Error)
}

func TestDocsAndMetrics(t *testing.T) {
	app, _ := setupApp(t)

	resp, _ := do(t, app, http.MethodGet, "/docs", nil)
	assert.Equal(t, http.StatusMovedPermanently, resp.StatusCode)
	assert.Equal(t, "/docs/index.html", resp.Header.Get("Location"))

	req := httptest.NewRequest(http.MethodGet, "/docs/doc.json", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), "/products/{id}")

	do(t, app, http.MethodGet, "/api", nil)
	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	raw, err = io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), "productos_http_requests_total")
}

func TestCORS(t *testing.T) {
	app, _ := setupApp(t)

	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestUnknownRoute(t *testing.T) {
	app, _ := setupApp(t)

	resp, body := do(t, app, http.MethodGet, "/api/unknown", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.False(t, body.OK)
}
