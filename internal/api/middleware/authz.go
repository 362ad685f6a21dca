package middleware

import (
	"net/http"

	"github.com/veriwork/veriwork/internal/api/response"
	"github.com/veriwork/veriwork/internal/rbac"
)

// RouteAuthz returns middleware that checks the actor's role against the
// policy's route access table. The first matching route pattern decides;
// paths matching no pattern are denied.
func RouteAuthz(policy *rbac.Policy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := GetRequestID(r.Context())

			identity := GetIdentity(r.Context())
			if identity == nil {
				response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "API key is required", requestID)
				return
			}

			if !policy.RouteAllowed(identity.Role, r.URL.Path) {
				response.Err(w, http.StatusForbidden, "FORBIDDEN", "Access to this route is denied", requestID)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole returns middleware that rejects identities whose role is not
// in the allowed list.
func RequireRole(roles ...rbac.Role) func(http.Handler) http.Handler {
	allowed := make(map[rbac.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := GetRequestID(r.Context())

			identity := GetIdentity(r.Context())
			if identity == nil {
				response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "API key is required", requestID)
				return
			}

			if !allowed[identity.Role] {
				response.Err(w, http.StatusForbidden, "FORBIDDEN", "Insufficient permissions", requestID)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
