package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"synergy/internal/config"
)

func newTestApp(t *testing.T, driver, dsn string) *app {
	t.Helper()
	t.Setenv("STORE_DRIVER", driver)
	t.Setenv("DB_CONN", dsn)
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("ALLOWED_ORIGINS", "http://localhost:5173")

	cfg, err := config.Load("")
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()
	b, err := openBackend(ctx, cfg.Store, logger)
	require.NoError(t, err)
	t.Cleanup(func() { b.Close(context.Background()) })

	a, err := wire(ctx, cfg, b, time.UTC, logger)
	require.NoError(t, err)
	t.Cleanup(a.theme.Close)
	return a
}

func TestServeRoutes(t *testing.T) {
	for _, tc := range []struct{ driver, dsn string }{
		{config.DriverMemory, ""},
		{config.DriverSQLite, ":memory:"},
	} {
		t.Run(tc.driver, func(t *testing.T) {
			a := newTestApp(t, tc.driver, tc.dsn)

			do := func(method, path, body string) *httptest.ResponseRecorder {
				rec := httptest.NewRecorder()
				a.handler.ServeHTTP(rec, httptest.NewRequest(method, path, strings.NewReader(body)))
				return rec
			}

			rec := do(http.MethodGet, "/api/health", "")
			require.Equal(t, http.StatusOK, rec.Code)
			assert.JSONEq(t, `{"status":"ok","message":"Synergy API is running"}`, rec.Body.String())

			rec = do(http.MethodPost, "/api/todos", `{"text":"Call mom","date":"2024-03-01T10:00:00Z"}`)
			require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

			rec = do(http.MethodGet, "/api/todos?date=2024-03-01", "")
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, rec.Body.String(), "Call mom")

			rec = do(http.MethodPost, "/api/notes/save", `{"title":"","blocks":[{"id":"x","type":"text","content":"Hello"}]}`)
			require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

			rec = do(http.MethodGet, "/api/preferences", "")
			require.Equal(t, http.StatusOK, rec.Code)
			assert.JSONEq(t, `{"theme":"dark"}`, rec.Body.String())

			rec = do(http.MethodPost, "/api/diet/estimate", `{"query":"an apple"}`)
			assert.Equal(t, http.StatusBadGateway, rec.Code, "no oracle configured")
		})
	}
}

func TestCORSPreflight(t *testing.T) {
	a := newTestApp(t, config.DriverMemory, "")

	req := httptest.NewRequest(http.MethodOptions, "/api/todos", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version"})
	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, "synergy version dev\n", out.String())
}
