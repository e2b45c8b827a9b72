package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestID_GeneratesWhenAbsent(t *testing.T) {
	var inContext string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		inContext, _ = RequestIDFromContext(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	RequestID(next).ServeHTTP(rec, req)

	echoed := rec.Header().Get("X-Request-ID")
	require.NotEmpty(t, echoed)
	assert.Equal(t, echoed, inContext)

	_, err := uuid.Parse(echoed)
	assert.NoError(t, err)
}

func TestRequestID_HonorsIncomingHeader(t *testing.T) {
	var inContext string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		inContext, _ = RequestIDFromContext(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "gateway-id-123")
	rec := httptest.NewRecorder()
	RequestID(next).ServeHTTP(rec, req)

	assert.Equal(t, "gateway-id-123", inContext)
	assert.Equal(t, "gateway-id-123", rec.Header().Get("X-Request-ID"))
}
