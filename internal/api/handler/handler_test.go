package handler_test

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Rrens/storefront/internal/api/handler"
	"github.com/Rrens/storefront/internal/api/middleware"
	"github.com/Rrens/storefront/internal/cache"
	"github.com/Rrens/storefront/internal/realtime"
	"github.com/Rrens/storefront/internal/security"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Success bool           `json:"success"`
	Data    map[string]any `json:"data"`
	Error   *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Fields  map[string]string `json:"fields"`
	} `json:"error"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	return env
}

func TestHealthCheck(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	rec := httptest.NewRecorder()

	handler.HealthCheck(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.True(t, env.Success)
	assert.Equal(t, "ok", env.Data["status"])
}

type pingFunc func(context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestReadyCheck(t *testing.T) {
	healthy := pingFunc(func(context.Context) error { return nil })
	down := pingFunc(func(context.Context) error { return errors.New("connection refused") })

	rec := httptest.NewRecorder()
	handler.ReadyCheck(map[string]handler.Pinger{"database": healthy, "cache": healthy})(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ready", decodeEnvelope(t, rec).Data["status"])

	rec = httptest.NewRecorder()
	handler.ReadyCheck(map[string]handler.Pinger{"database": healthy, "cache": down})(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	env := decodeEnvelope(t, rec)
	require.NotNil(t, env.Error)
	assert.Equal(t, "UNAVAILABLE", env.Error.Code)
	assert.Equal(t, "cache not ready", env.Error.Message)
}

func TestFlushCache(t *testing.T) {
	store := cache.NewMemoryStore(0)
	t.Cleanup(store.Close)
	c := cache.New(store, cache.DefaultTTLs, nil)

	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "workspace:1", []byte(`{}`), time.Minute))
	require.NoError(t, store.Set(ctx, "product:2", []byte(`{}`), time.Minute))

	rec := httptest.NewRecorder()
	handler.FlushCache(c)(rec, httptest.NewRequest(http.MethodPost, "/admin/cache/flush", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 2, decodeEnvelope(t, rec).Data["keys_deleted"])
	assert.Zero(t, store.Len())
}

func TestRegister_ValidationFields(t *testing.T) {
	h := handler.NewAuthHandler(nil)

	body := `{"email":"not-an-email","password":"short"}`
	rec := httptest.NewRecorder()
	h.Register(rec, httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION", env.Error.Code)
	assert.Equal(t, map[string]string{
		"email":      "invalid email format",
		"password":   "must be at least 8",
		"first_name": "field is required",
	}, env.Error.Fields)
}

func TestRegister_MalformedBody(t *testing.T) {
	rec := httptest.NewRecorder()
	handler.NewAuthHandler(nil).Register(rec, httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader("{")))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "BAD_REQUEST", decodeEnvelope(t, rec).Error.Code)
}

func TestStream(t *testing.T) {
	hub := realtime.NewHub(4, nil)
	userID := uuid.New()
	h := handler.NewStreamHandler(hub, time.Hour)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), middleware.UserIDKey, userID)
		h.Stream(w, r.WithContext(ctx))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	require.NoError(t, err)

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	lines := bufio.NewScanner(resp.Body)
	next := func() string {
		for lines.Scan() {
			if line := lines.Text(); line != "" {
				return line
			}
		}
		return ""
	}

	assert.Equal(t, "event:connected", next())
	assert.Contains(t, next(), userID.String())
	require.Equal(t, 1, hub.Connections(userID))

	hub.Publish(ctx, userID, realtime.NewEvent(realtime.EventOrderNew, map[string]string{"order_id": "abc"}))

	assert.Equal(t, "event:"+realtime.EventOrderNew, next())
	data := next()
	assert.True(t, strings.HasPrefix(data, "data:"))
	assert.Contains(t, data, `"order_id":"abc"`)

	cancel()
	assert.Eventually(t, func() bool { return hub.Connections(userID) == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestStream_RequiresUser(t *testing.T) {
	rec := httptest.NewRecorder()
	handler.NewStreamHandler(realtime.NewHub(1, nil), 0).Stream(rec, httptest.NewRequest(http.MethodGet, "/stream", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// BenchmarkJWTGeneration benchmarks token generation
func BenchmarkJWTGeneration(b *testing.B) {
	manager := security.NewJWTManager("benchmark-secret-key-32-chars!!", 15*time.Minute, 7*24*time.Hour)
	userID := uuid.New()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = manager.GenerateAccessToken(userID, "test@example.com")
	}
}

func scopedRequest(method, target string, params map[string]string) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	ctx = context.WithValue(ctx, middleware.UserIDKey, uuid.New())
	ctx = context.WithValue(ctx, middleware.WorkspaceIDKey, uuid.New())
	return req.WithContext(ctx)
}

func TestEmployeePerformanceReport_BadDate(t *testing.T) {
	rec := httptest.NewRecorder()
	h := handler.NewWorkspaceHandler(nil, nil)

	h.EmployeePerformanceReport(rec, scopedRequest(http.MethodGet, "/reports/employee-performance?from=last-week", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	require.NotNil(t, env.Error)
	assert.Contains(t, env.Error.Message, "from")
}

func TestCustomerReport_BadLimit(t *testing.T) {
	rec := httptest.NewRecorder()
	h := handler.NewWorkspaceHandler(nil, nil)

	h.CustomerReport(rec, scopedRequest(http.MethodGet, "/reports/customer?limit=ten", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBillItemRoutes_InvalidItemID(t *testing.T) {
	h := handler.NewBillHandler(nil)
	params := map[string]string{"billID": uuid.NewString(), "itemID": "first"}

	rec := httptest.NewRecorder()
	h.DeleteItem(rec, scopedRequest(http.MethodDelete, "/bills/x/items/first", params))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h.UpdateItem(rec, scopedRequest(http.MethodPut, "/bills/x/items/first", params))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
