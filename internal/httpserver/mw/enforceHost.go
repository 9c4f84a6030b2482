package mw

import (
	"net/http"
	"strings"

	"github.com/linkdeck/linkdeck/internal/logger"
)

// hostAllowlist holds precomputed host rules: exact names and
// "*.domain" wildcard suffixes.
type hostAllowlist struct {
	exact    map[string]struct{}
	suffixes []string // with leading dot, e.g. ".example.com"
}

func newHostAllowlist(hosts []string) hostAllowlist {
	al := hostAllowlist{exact: make(map[string]struct{}, len(hosts))}
	for _, h := range hosts {
		h = strings.ToLower(strings.TrimSpace(h))
		if h == "" {
			continue
		}
		if rest, ok := strings.CutPrefix(h, "*."); ok {
			al.suffixes = append(al.suffixes, "."+rest)
			continue
		}
		al.exact[h] = struct{}{}
	}
	return al
}

func (al hostAllowlist) allows(host string) bool {
	host = strings.ToLower(host)
	if _, ok := al.exact[host]; ok {
		return true
	}
	for _, suffix := range al.suffixes {
		if strings.HasSuffix(host, suffix) {
			return true
		}
	}
	return false
}

// EnforceHost rejects requests whose Host header matches none of the
// allowed names. Wildcards like "*.example.com" cover subdomains. An
// empty list disables the check.
func EnforceHost(allowedHosts []string, log logger.Logger) func(http.Handler) http.Handler {
	al := newHostAllowlist(allowedHosts)
	if len(al.exact) == 0 && len(al.suffixes) == 0 {
		return func(next http.Handler) http.Handler { return next }
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !al.allows(r.Host) {
				log.Warn("request rejected by host allowlist",
					logger.String("host", r.Host),
					logger.String("path", r.URL.Path))
				w.WriteHeader(http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
