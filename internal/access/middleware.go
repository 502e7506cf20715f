package access

import (
	"net/http"

	"log/slog"
)

// Middleware provides HTTP guards mirroring the navigation policy. All
// guards fail closed: a missing or malformed user snapshot yields 403,
// never a panic.
type Middleware struct {
	Logger *slog.Logger
}

// RequireAdmin admits only true admins (legacy flag or ADMIN role).
func (m Middleware) RequireAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := UserFromContext(r.Context())
			if !user.IsTrueAdmin() {
				m.forbid(w, r, "admin required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole admits teams holding the named role (admin bypass applies).
func (m Middleware) RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := UserFromContext(r.Context())
			if !HasRole(user.TeamRoles(), role) {
				m.forbid(w, r, "role "+role+" required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAnyRole admits teams holding at least one of the named roles.
func (m Middleware) RequireAnyRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := UserFromContext(r.Context())
			if !HasAnyRole(user.TeamRoles(), roles) {
				m.forbid(w, r, "one of required roles missing")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireLocationAdmin admits location admins and true admins.
func (m Middleware) RequireLocationAdmin() func(http.Handler) http.Handler {
	return m.RequireRole(RoleLocationAdmin)
}

func (m Middleware) forbid(w http.ResponseWriter, r *http.Request, reason string) {
	if m.Logger != nil {
		m.Logger.Warn("access denied", slog.String("path", r.URL.Path), slog.String("reason", reason))
	}
	http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
}
