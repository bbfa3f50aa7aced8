//go:build integration

package router

// End-to-end run against real Postgres and Redis started with testcontainers.
// Run with: go test -tags integration ./internal/router/... -v

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/tinks231/bizbooks/internal/autocomplete"
	"github.com/tinks231/bizbooks/internal/config"
	"github.com/tinks231/bizbooks/internal/dto"
	"github.com/tinks231/bizbooks/internal/infra"
	"github.com/tinks231/bizbooks/internal/middleware"
	"github.com/tinks231/bizbooks/internal/repository"
	"github.com/tinks231/bizbooks/internal/service"
	"github.com/tinks231/bizbooks/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"
)

const e2eSecret = "e2e-secret"

// ── Helpers ──────────────────────────────────────────────────────────────────

func jsonBody(t *testing.T, v any) io.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(b)
}

func token(t *testing.T, tenantID uint, role string) string {
	t.Helper()
	claims := middleware.JWTClaims{
		TenantID: tenantID,
		UserID:   "e2e",
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(e2eSecret))
	require.NoError(t, err)
	return s
}

type testEnv struct {
	server *httptest.Server
	admin  string
	staff  string
}

func (e *testEnv) do(t *testing.T, method, path string, body io.Reader, tok string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, e.server.URL+path, body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	resp, err := e.server.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

// ── Suite setup ──────────────────────────────────────────────────────────────

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()

	pgC, err := tcPostgres.Run(ctx, "postgres:15-alpine",
		tcPostgres.WithDatabase("bizbooks_test"),
		tcPostgres.WithUsername("bizbooks"),
		tcPostgres.WithPassword("bizbooks"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	rdC, err := tcRedis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })

	rdURL, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	cfg := &config.Config{
		Env:                    "test",
		JWTSecret:              e2eSecret,
		DatabaseURL:            pgURL,
		RedisURL:               rdURL,
		WorkerPoolSize:         1,
		RateLimitPerMinute:     10000,
		CatalogCacheTTLMinutes: 5,
		FormSessionTTLMinutes:  5,
		AutocompleteMaxResults: 10,
		AutocompletePriceField: "selling_price",
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	require.NoError(t, err)
	rdb, err := infra.NewRedis(cfg.RedisURL)
	require.NoError(t, err)

	workerCtx, cancel := context.WithCancel(ctx)
	t.Cleanup(cancel)

	breaker := infra.NewBreaker(infra.CacheBreakerConfig())
	itemRepo := repository.NewItemRepository(db)
	catalog := service.NewCatalogService(itemRepo, rdb, breaker, cfg.CatalogCacheTTL())
	dispatcher := worker.NewDispatcher(rdb)
	defaults := service.WidgetDefaults{
		PriceField: autocomplete.PriceField(cfg.AutocompletePriceField),
		MaxResults: cfg.AutocompleteMaxResults,
	}
	worker.StartWorkerPool(workerCtx, rdb, &worker.Handlers{
		CatalogRefresh: worker.NewCatalogRefreshWorker(catalog),
	}, cfg.WorkerPoolSize)

	r := New(cfg, Deps{
		DB:           db,
		Redis:        rdb,
		CacheBreaker: breaker,
		Items:        service.NewItemService(itemRepo, catalog, dispatcher, defaults),
		Forms:        service.NewFormService(catalog, defaults, cfg.FormSessionTTL()),
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return &testEnv{
		server: srv,
		admin:  token(t, 1, middleware.RoleAdmin),
		staff:  token(t, 1, middleware.RoleStaff),
	}
}

func createItem(t *testing.T, env *testEnv, body map[string]any) dto.ItemResponse {
	t.Helper()
	resp := env.do(t, http.MethodPost, "/v1/items", jsonBody(t, body), env.admin)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var out dto.ItemResponse
	decodeJSON(t, resp, &out)
	return out
}

// ── Tests ────────────────────────────────────────────────────────────────────

func TestE2E_InvoiceRowAutocomplete(t *testing.T) {
	env := setupTestEnv(t)

	resp := env.do(t, http.MethodGet, "/health", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// 1. Catalog
	bolt := createItem(t, env, map[string]any{
		"name": "Steel Bolt M8", "hsn_code": "7318", "unit": "pcs",
		"selling_price": "12.50", "cost_price": "8", "tax_preference": "GST@18%",
	})
	assert.Equal(t, "ITEM-0001", bolt.SKU)
	createItem(t, env, map[string]any{"name": "Steel Nut M8", "item_code": "NUT8", "selling_price": "4"})

	// staff may read but not write
	resp = env.do(t, http.MethodPost, "/v1/items", jsonBody(t, map[string]any{"name": "x"}), env.staff)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	// SKUs are unique per tenant
	resp = env.do(t, http.MethodPost, "/v1/items", jsonBody(t, map[string]any{
		"name": "Bolt copy", "sku": "ITEM-0001", "selling_price": "1",
	}), env.admin)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	// 2. Purchase-bill search
	resp = env.do(t, http.MethodGet, "/v1/items/search?q=nut8", nil, env.staff)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var found []dto.ItemSearchResult
	decodeJSON(t, resp, &found)
	require.Len(t, found, 1)
	assert.Equal(t, "pcs", found[0].Unit)
	assert.Equal(t, "18", found[0].GSTRate.String())

	// wildcards match literally
	resp = env.do(t, http.MethodGet, "/v1/items/search?q=%25%25", nil, env.staff)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	found = nil
	decodeJSON(t, resp, &found)
	assert.Empty(t, found)

	// 3. Form session
	resp = env.do(t, http.MethodPost, "/v1/forms", jsonBody(t, map[string]any{}), env.staff)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var form dto.CreateFormResponse
	decodeJSON(t, resp, &form)
	base := "/v1/forms/" + form.FormID

	resp = env.do(t, http.MethodPost, base+"/rows", jsonBody(t, map[string]any{"row_id": "1", "quantity": "4"}), env.staff)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// the snapshot is rebuilt asynchronously after each write
	require.Eventually(t, func() bool {
		resp := env.do(t, http.MethodPost, base+"/rows", jsonBody(t, map[string]any{"row_id": "1", "quantity": "4"}), env.staff)
		resp.Body.Close()
		resp = env.do(t, http.MethodPost, base+"/rows/1/input", jsonBody(t, map[string]any{"value": "steel"}), env.staff)
		defer resp.Body.Close()
		var dd dto.DropdownResponse
		if err := json.NewDecoder(resp.Body).Decode(&dd); err != nil {
			return false
		}
		return dd.Visible && strings.Contains(dd.HTML, "Steel Bolt M8") && strings.Contains(dd.HTML, "Steel Nut M8")
	}, 10*time.Second, 200*time.Millisecond)

	resp = env.do(t, http.MethodPost, base+"/rows/1/select", jsonBody(t, map[string]any{"index": 0}), env.staff)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var row dto.RowStateResponse
	decodeJSON(t, resp, &row)
	assert.Equal(t, "Steel Bolt M8", row.ItemName)
	assert.Equal(t, "12.5", row.Rate)
	assert.Equal(t, "18", row.GSTRate)
	assert.Equal(t, "50", row.TaxableValue.String())
	assert.Equal(t, "59", row.TotalAmount.String())

	// 4. Another tenant cannot see the form
	resp = env.do(t, http.MethodGet, base, nil, token(t, 2, middleware.RoleStaff))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}
