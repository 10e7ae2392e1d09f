package middleware

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

const OrgIDKey contextKey = "org_id"

// OrgScope reads the optional X-Org-ID header and stores it on the request
// context. Requests without the header stay domain-scoped.
func OrgScope(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		orgID := strings.TrimSpace(r.Header.Get("X-Org-ID"))
		if orgID == "" {
			next.ServeHTTP(w, r)
			return
		}
		ctx := context.WithValue(r.Context(), OrgIDKey, orgID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func GetOrgID(ctx context.Context) string {
	orgID, _ := ctx.Value(OrgIDKey).(string)
	return orgID
}
