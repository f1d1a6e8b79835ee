package httpmiddleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestID_GeneratesWhenMissing(t *testing.T) {
	var seen string
	h := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.NotEmpty(t, seen)
	_, err := uuid.Parse(seen)
	assert.NoError(t, err)
	assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))
}

func TestRequestID_PassesThroughWellFormed(t *testing.T) {
	h := RequestID()(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "client-supplied-42")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "client-supplied-42", rec.Header().Get(RequestIDHeader))
}

func TestRequestID_ReplacesMalformed(t *testing.T) {
	h := RequestID()(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "bad\x7fid")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	got := rec.Header().Get(RequestIDHeader)
	require.NotEqual(t, "bad\x7fid", got)
	_, err := uuid.Parse(got)
	assert.NoError(t, err)
}

func TestWellFormedRequestID(t *testing.T) {
	long := make([]byte, maxRequestIDLen+1)
	for i := range long {
		long[i] = 'a'
	}

	assert.True(t, wellFormedRequestID("abc-123"))
	assert.False(t, wellFormedRequestID(""))
	assert.False(t, wellFormedRequestID(string(long)))
	assert.False(t, wellFormedRequestID("has\nnewline"))
	assert.False(t, wellFormedRequestID("ünïcode"))
}

func TestRecovery_PanicBecomesJSON500(t *testing.T) {
	h := Recovery()(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "close", rec.Header().Get("Connection"))
	assert.JSONEq(t, `{"code": 500, "message": "internal server error"}`, rec.Body.String())
}
