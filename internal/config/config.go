package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	// OAuth / sessions
	GoogleClientID     string        // Google OAuth2 client ID
	GoogleClientSecret string        // Google OAuth2 client secret
	OAuthRedirectURL   string        // ex: https://linkdeck.domain.ext/auth/callback
	SessionSecret      string        // HMAC secret for session tokens
	SessionTTL         time.Duration // session validity (default: 24h)
	SecureCookies      bool          // false only for plain-HTTP local dev
	PostLoginRedirect  string        // where the callback sends the browser (default: "/api/bookmarks")

	// Store behavior
	StoreTimeout    time.Duration // per-request timeout on load/insert/delete (default: 5s)
	JanitorInterval time.Duration // interval for the index janitor (default: 24h)
	SeedFile        string        // path to a bookmarks seed yaml (optional, empty = disabled)

	// Redis
	RedisAddr             string        // ex: "localhost:6379"
	RedisUser             string        // optional
	RedisPassword         string        // optional
	RedisPasswordRequired bool          // true => require password, false => allow empty password
	RedisDB               int           // Redis DB number
	RedisDT               time.Duration // Redis dial timeout (ex: 5s)
	RedisRT               time.Duration // Redis read timeout (ex: 3s)
	RedisWT               time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait          time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout      time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize         int           // Redis connection pool size
	RedisConnectTimeout   time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval    time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold    int           // warn after this many attempts

	AllowedHosts []string // optional, restrict access to specific Host headers
	AllowedCIDRS []string // optional, restrict ops endpoints to specific IPs
	TrustProxy   bool     // true => trust X-Forwarded-For headers (e.g. cloudflared)
}

func Load() *Config {
	cfg := &Config{
		// Server settings
		ListenPort:      getenv("LINKDECK_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("LINKDECK_SHUTDOWN_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:  getenv("LINKDECK_LOG_LEVEL", "info"),
		PrettyLog: mustBool("LINKDECK_PRETTY_LOG", true),

		// OAuth / sessions
		GoogleClientID:     requireEnv("LINKDECK_GOOGLE_CLIENT_ID"),
		GoogleClientSecret: requireEnv("LINKDECK_GOOGLE_CLIENT_SECRET"),
		OAuthRedirectURL:   requireEnv("LINKDECK_OAUTH_REDIRECT_URL"),
		SessionSecret:      requireEnv("LINKDECK_SESSION_SECRET"),
		SessionTTL:         mustDuration("LINKDECK_SESSION_TTL", 24*time.Hour),
		SecureCookies:      mustBool("LINKDECK_SECURE_COOKIES", true),
		PostLoginRedirect:  getenv("LINKDECK_POST_LOGIN_REDIRECT", "/api/bookmarks"),

		// Store behavior
		StoreTimeout:    mustDuration("LINKDECK_STORE_TIMEOUT", 5*time.Second),
		JanitorInterval: mustDuration("LINKDECK_JANITOR_INTERVAL", 24*time.Hour),
		SeedFile:        getenv("LINKDECK_SEED_FILE", ""), // Optional, empty = seed import disabled

		// Redis settings
		RedisAddr:             requireEnv("LINKDECK_REDIS_ADDR"),
		RedisUser:             getenv("LINKDECK_REDIS_USERNAME", "default"),
		RedisPasswordRequired: mustBool("LINKDECK_REDIS_PASSWORD_REQUIRED", true),
		RedisPassword:         getenv("LINKDECK_REDIS_PASSWORD", ""),
		RedisDB:               requireEnvInt("LINKDECK_REDIS_DB"),
		RedisDT:               mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:               mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:               mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:          mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:      mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:         getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout:   mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:    mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:    getenvInt("REDIS_WARN_THRESHOLD", 3),

		// Access restrictions
		AllowedHosts: splitAndTrim(getenv("LINKDECK_ALLOWED_HOSTS", "")),
		AllowedCIDRS: parseAllowedIPs(getenv("LINKDECK_ALLOWED_CIDRS", "")),
		TrustProxy:   mustBool("LINKDECK_TRUST_PROXY", true),
	}

	// Validate Redis password configuration
	if cfg.RedisPasswordRequired && cfg.RedisPassword == "" {
		panic("❌ FATAL: LINKDECK_REDIS_PASSWORD is required when LINKDECK_REDIS_PASSWORD_REQUIRED=true")
	}

	if len(cfg.SessionSecret) < 32 {
		panic("❌ FATAL: LINKDECK_SESSION_SECRET must be at least 32 bytes")
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		cfgCopy.RedisPassword = "***REDACTED***"
		cfgCopy.GoogleClientSecret = "***REDACTED***"
		cfgCopy.SessionSecret = "***REDACTED***"
		if cfg.RedisUser != "" {
			cfgCopy.RedisUser = "***REDACTED***"
		}
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
}

func requireEnvInt(key string) int {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		panic(fmt.Sprintf("❌ FATAL: Invalid integer value for %s: %s", key, v))
	}
	return i
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func parseAllowedIPs(allowed string) []string {
	if allowed == "" {
		return nil
	}
	ips := make([]string, 0, 4)
	for _, ip := range splitAndTrim(allowed) {
		if ip != "" {
			ips = append(ips, ip)
		}
	}
	return ips
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
