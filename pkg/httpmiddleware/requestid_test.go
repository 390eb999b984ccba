package httpmiddleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestID_GeneratesWhenMissing(t *testing.T) {
	var fromCtx string
	handler := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fromCtx = RequestIDFromContext(r.Context())
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	echoed := w.Header().Get(HeaderRequestID)
	require.NotEmpty(t, echoed)
	assert.Equal(t, echoed, fromCtx)
	_, err := uuid.Parse(echoed)
	assert.NoError(t, err)
}

func TestRequestID_KeepsClientSuppliedID(t *testing.T) {
	handler := RequestID()(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "gateway-7f3a")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, "gateway-7f3a", w.Header().Get(HeaderRequestID))
}

func TestRequestID_ReplacesUnusableIDs(t *testing.T) {
	handler := RequestID()(okHandler())

	for name, bad := range map[string]string{
		"oversized":     strings.Repeat("x", maxRequestIDLen+1),
		"control chars": "abc\ndef",
		"non-ascii":     "идентификатор",
	} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(HeaderRequestID, bad)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		echoed := w.Header().Get(HeaderRequestID)
		assert.NotEqual(t, bad, echoed, name)
		_, err := uuid.Parse(echoed)
		assert.NoError(t, err, name)
	}
}

func TestRequestIDFromContext_Empty(t *testing.T) {
	assert.Empty(t, RequestIDFromContext(httptest.NewRequest(http.MethodGet, "/", nil).Context()))
}
