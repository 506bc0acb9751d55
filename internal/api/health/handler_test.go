package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type checkFunc func(ctx context.Context) error

func (f checkFunc) Check(ctx context.Context) error { return f(ctx) }
func (f checkFunc) Ping(ctx context.Context) error  { return f(ctx) }

func TestReady(t *testing.T) {
	h := NewHandler()
	h.RegisterChecker(NewSQLiteChecker(checkFunc(func(context.Context) error { return nil })))
	h.RegisterChecker(NewConverterChecker(checkFunc(func(context.Context) error { return nil })))

	rec := httptest.NewRecorder()
	h.Ready(rec, httptest.NewRequest("GET", "/health/ready", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "ready", resp.Status)
	assert.Equal(t, map[string]string{"sqlite": "ok", "converter": "ok"}, resp.Checks)
}

func TestReady_Unhealthy(t *testing.T) {
	h := NewHandler()
	h.RegisterChecker(NewConverterChecker(checkFunc(func(context.Context) error {
		return errors.New(`converter "soffice" not found`)
	})))
	h.RegisterChecker(NewSQLiteChecker(nil))

	rec := httptest.NewRecorder()
	h.Ready(rec, httptest.NewRequest("GET", "/health/ready", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "not_ready", resp.Status)
	assert.Equal(t, `converter "soffice" not found`, resp.Checks["converter"])
	assert.Equal(t, "database not initialized", resp.Checks["sqlite"])
}

func TestHealthAndLive(t *testing.T) {
	h := NewHandler()

	rec := httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest("GET", "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	h.Live(rec, httptest.NewRequest("GET", "/health/live", nil))
	assert.JSONEq(t, `{"status":"live"}`, rec.Body.String())
}
