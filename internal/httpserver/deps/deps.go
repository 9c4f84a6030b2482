package deps

import (
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/oauth2"

	"github.com/linkdeck/linkdeck/internal/dashboard"
	"github.com/linkdeck/linkdeck/internal/logger"
	"github.com/linkdeck/linkdeck/internal/session"
	redisstore "github.com/linkdeck/linkdeck/internal/store/redis"
)

type Deps struct {
	Logger    logger.Logger
	StartTime time.Time
	Version   string
	Commit    string
	BuildDate string
	GoVersion string

	AllowedHosts []string // Host headers allowed on ops endpoints
	AllowedCIDRS []string // IPs allowed on ops endpoints
	TrustProxy   bool     // true if running behind a trusted reverse proxy (e.g., cloudflared)

	RedisClient *redis.Client      // Redis client connection (readiness checks)
	Store       *redisstore.Store  // Bookmark + session store
	Sessions    *session.Manager   // Session lifecycle (cookies, records)
	OAuth       *oauth2.Config     // Interactive sign-in provider
	Guard       *dashboard.Guard   // Session guard for view activation
	Feed        dashboard.ChangeFeed
	Views       *dashboard.Registry // Live views per session, torn down on logout

	StoreTimeout      time.Duration // per-request timeout on store operations
	PostLoginRedirect string        // where the OAuth callback sends the browser
	SecureCookies     bool
}
