package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrgScope(t *testing.T) {
	t.Run("stores header value on the context", func(t *testing.T) {
		var got string
		handler := OrgScope(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = GetOrgID(r.Context())
		}))

		req := httptest.NewRequest(http.MethodPost, "/ask", nil)
		req.Header.Set("X-Org-ID", "acme")
		handler.ServeHTTP(httptest.NewRecorder(), req)

		assert.Equal(t, "acme", got)
	})

	t.Run("missing header leaves request domain-scoped", func(t *testing.T) {
		var got string
		handler := OrgScope(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = GetOrgID(r.Context())
		}))

		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/ask", nil))

		assert.Empty(t, got)
	})

	t.Run("whitespace header is ignored", func(t *testing.T) {
		var got string
		handler := OrgScope(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = GetOrgID(r.Context())
		}))

		req := httptest.NewRequest(http.MethodPost, "/ask", nil)
		req.Header.Set("X-Org-ID", "   ")
		handler.ServeHTTP(httptest.NewRecorder(), req)

		assert.Empty(t, got)
	})
}
