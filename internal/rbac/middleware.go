package rbac

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gatewarden/gatewarden/internal/platform/httpx"
	"github.com/gatewarden/gatewarden/internal/shared"
	"github.com/gatewarden/gatewarden/internal/token"
)

// Middleware wires bearer authentication and authorization for HTTP handlers.
type Middleware struct {
	Guard  *Guard
	Signer token.Signer
	Logger *slog.Logger
}

// Authenticate verifies the bearer token and stores its claims in context.
// Access tokens are checked for signature and expiry only; they are not
// checked against the blacklist.
func (m Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := bearerToken(r)
		if raw == "" {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication credentials were not provided")
			return
		}
		claims, err := m.Signer.Verify(raw)
		if err != nil || claims.Type != token.TypeAccess {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", shared.ErrInvalidToken.Error())
			return
		}
		ctx := shared.ContextWithClaims(r.Context(), claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Protect authorizes the request against the endpoint derived from the HTTP
// method and the symbolic route name. Every denial is reported identically so
// callers cannot probe which routes are registered.
func (m Middleware) Protect(routeName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := shared.ClaimsFromContext(r.Context())
			if claims == nil {
				m.deny(w)
				return
			}
			allowed, err := m.Guard.Authorize(r.Context(), claims.UserID(), r.Method, routeName)
			if err != nil {
				if m.Logger != nil {
					m.Logger.Error("authorize", slog.String("route", routeName), slog.Any("error", err))
				}
				httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
				return
			}
			if !allowed {
				m.deny(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (m Middleware) deny(w http.ResponseWriter) {
	httpx.Problem(w, http.StatusForbidden, "Forbidden", shared.ErrPermissionDenied.Error())
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
