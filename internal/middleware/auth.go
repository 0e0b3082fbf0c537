package middleware

import (
	"net/http"

	"github.com/dukerupert/homeeasy/internal/auth"
)

const basicRealm = `Basic realm="homeeasy", charset="UTF-8"`

// RequireStaff checks HTTP Basic credentials against the configured staff
// accounts and stores the staff member on the request context. With no
// accounts configured every request passes through unauthenticated.
func RequireStaff(accounts auth.Accounts) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !accounts.Enabled() {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			name, password, ok := r.BasicAuth()
			if !ok || !accounts.Verify(name, password) {
				w.Header().Set("WWW-Authenticate", basicRealm)
				writeError(w, http.StatusUnauthorized, "authentication required")
				return
			}
			noteStaff(r.Context(), name)
			ctx := auth.WithStaff(r.Context(), auth.Staff{Name: name})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(`{"error":"` + msg + `"}` + "\n"))
}
