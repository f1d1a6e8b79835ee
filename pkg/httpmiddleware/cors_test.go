package httpmiddleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func corsRequest(t *testing.T, cfg CORSConfig, method, origin string, preflight bool) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, "/", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	if preflight {
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	}
	rec := httptest.NewRecorder()
	CORS(cfg)(okHandler()).ServeHTTP(rec, req)
	return rec
}

func TestCORS_WildcardWithoutCredentials(t *testing.T) {
	rec := corsRequest(t, CORSConfig{AllowOrigins: []string{"*"}},
		http.MethodGet, "https://anywhere.example.net", false)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCORS_WildcardWithCredentialsEchoesOrigin(t *testing.T) {
	rec := corsRequest(t, CORSConfig{AllowOrigins: []string{"*"}, AllowCredentials: true},
		http.MethodGet, "https://anywhere.example.net", false)

	assert.Equal(t, "https://anywhere.example.net", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCORS_ListedOriginAllowed(t *testing.T) {
	cfg := CORSConfig{
		AllowOrigins:     []string{"https://audiophile.example.com"},
		AllowCredentials: true,
	}
	rec := corsRequest(t, cfg, http.MethodGet, "https://Audiophile.Example.Com", false)

	assert.Equal(t, "https://audiophile.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCORS_UnlistedOriginGetsNoHeaders(t *testing.T) {
	cfg := CORSConfig{
		AllowOrigins:     []string{"https://audiophile.example.com"},
		AllowCredentials: true,
	}
	rec := corsRequest(t, cfg, http.MethodGet, "https://evil.example.net", false)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCORS_UnlistedOriginPreflightDenied(t *testing.T) {
	cfg := CORSConfig{
		AllowOrigins:     []string{"https://audiophile.example.com"},
		AllowCredentials: true,
	}
	rec := corsRequest(t, cfg, http.MethodOptions, "https://evil.example.net", true)

	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Methods"))
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCORS_PreflightForListedOrigin(t *testing.T) {
	cfg := CORSConfig{
		AllowOrigins: []string{"https://audiophile.example.com"},
		AllowHeaders: []string{"Content-Type", "Idempotency-Key"},
		MaxAge:       86400,
	}
	rec := corsRequest(t, cfg, http.MethodOptions, "https://audiophile.example.com", true)

	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://audiophile.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "Content-Type, Idempotency-Key", rec.Header().Get("Access-Control-Allow-Headers"))
	assert.Equal(t, "86400", rec.Header().Get("Access-Control-Max-Age"))
}

func TestCORS_NoOriginPassesThrough(t *testing.T) {
	rec := corsRequest(t, CORSConfig{AllowOrigins: []string{"*"}}, http.MethodGet, "", false)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
