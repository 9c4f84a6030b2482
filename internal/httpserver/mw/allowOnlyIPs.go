package mw

import (
	"net/http"

	"github.com/linkdeck/linkdeck/internal/logger"
	"github.com/linkdeck/linkdeck/internal/utils"
)

// AllowOnlyCIDRS rejects requests from addresses outside the given
// IP/CIDR list. An empty list disables the check. trustProxy controls
// whether the client address is taken from forwarding headers or from
// the socket peer.
func AllowOnlyCIDRS(allowed []string, trustProxy bool, log logger.Logger) func(http.Handler) http.Handler {
	matcher := utils.NewIPMatcher(allowed)
	if matcher.IsEmpty() {
		return func(next http.Handler) http.Handler { return next }
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := utils.ClientIP(r, trustProxy)
			if !matcher.Allow(ip) {
				log.Warn("request rejected by ip allowlist",
					logger.String("ip", ip),
					logger.String("path", r.URL.Path))
				w.WriteHeader(http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
