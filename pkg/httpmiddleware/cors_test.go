package httpmiddleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func corsRequest(handler http.Handler, method, origin string, preflight bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/api/products", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	if preflight {
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	}
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func TestCORS_PreflightDefaults(t *testing.T) {
	handler := CORS(CORSConfig{})(okHandler())

	w := corsRequest(handler, http.MethodOptions, "https://shop.example", true)
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, corsMethods, w.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "Content-Type, Authorization", w.Header().Get("Access-Control-Allow-Headers"))
	assert.Equal(t, "86400", w.Header().Get("Access-Control-Max-Age"))
}

func TestCORS_ActualRequestExposesHeaders(t *testing.T) {
	handler := CORS(CORSConfig{})(okHandler())

	w := corsRequest(handler, http.MethodGet, "https://shop.example", false)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Expose-Headers"), HeaderRequestID)
	assert.Contains(t, w.Header().Get("Access-Control-Expose-Headers"), "X-RateLimit-Remaining")
}

func TestCORS_SpecificOrigins(t *testing.T) {
	handler := CORS(CORSConfig{
		AllowOrigins: []string{"https://Shop.Example"},
	})(okHandler())

	// Case-insensitive match, configured spelling echoed back.
	w := corsRequest(handler, http.MethodGet, "https://shop.example", false)
	assert.Equal(t, "https://Shop.Example", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Values("Vary"), "Origin")

	// Unknown origins get no CORS headers but the request still runs.
	w = corsRequest(handler, http.MethodGet, "https://evil.example", false)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	// Preflight from an unknown origin is a bare 204.
	w = corsRequest(handler, http.MethodOptions, "https://evil.example", true)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_CredentialsEchoOrigin(t *testing.T) {
	handler := CORS(CORSConfig{
		AllowOrigins:     []string{"https://shop.example"},
		AllowCredentials: true,
	})(okHandler())

	w := corsRequest(handler, http.MethodGet, "https://shop.example", false)
	assert.Equal(t, "https://shop.example", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCORS_NoOriginPassesThrough(t *testing.T) {
	handler := CORS(CORSConfig{})(okHandler())

	w := corsRequest(handler, http.MethodGet, "", false)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
