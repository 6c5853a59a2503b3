package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendFile  = "file"
	BackendRedis = "redis"
)

// Config holds the server (remote store) settings.
type Config struct {
	ListenPort      string        // ex: ":3000"
	ShutdownTimeout time.Duration // ex: 5s

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	StoreBackend string        // "file" | "redis"
	DataFile     string        // path of the JSON document for the file backend
	HistoryLimit int           // max persisted snapshots (default: 500)
	BodyLimit    int64         // max JSON request body in bytes (default: 1 MiB)
	StaticDir    string        // optional directory served at / (empty = disabled)
	WatchEvery   time.Duration // how often the document is re-read for /infra and gauges

	// Redis
	RedisAddr           string        // ex: "localhost:6379"
	RedisUser           string        // optional
	RedisPassword       string        // optional
	RedisDB             int           // Redis DB number
	RedisKey            string        // key holding the persisted document
	RedisDT             time.Duration // Redis dial timeout (ex: 5s)
	RedisRT             time.Duration // Redis read timeout (ex: 3s)
	RedisWT             time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait        time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout    time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize       int           // Redis connection pool size
	RedisConnectTimeout time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval  time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold  int           // warn after this many attempts

	// Access restrictions
	AllowedHosts []string // optional, restrict access to specific Host headers
	AllowedCIDRS []string // optional, restrict access to specific IPs/CIDRs
	TrustProxy   bool     // true => trust X-Forwarded-For headers (e.g. cloudflared)
	RateBurst    int      // write requests allowed in a burst per client IP
	RatePerMin   int      // sustained write requests per minute per client IP, 0 = no limit
}

// ClientConfig holds the linkctl settings.
type ClientConfig struct {
	ServerURL      string        // remote store base URL, empty = offline
	CacheFile      string        // SQLite file backing the local cache
	HistoryLimit   int           // max snapshots kept locally (default: 50)
	RemoteTimeout  time.Duration // per-request timeout, 0 = none
	RefreshTimeout time.Duration // how long the startup refresh may take
	DrainTimeout   time.Duration // how long to wait for queued pushes on exit

	LogLevel  string
	PrettyLog bool
}

// Load reads the server configuration from the environment (and .env if present).
func Load() *Config {
	loadDotEnv()

	cfg := &Config{
		// Server settings
		ListenPort:      getenv("SHELF_LISTEN_PORT", ":3000"),
		ShutdownTimeout: mustDuration("SHELF_SHUTDOWN_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:  getenv("SHELF_LOG_LEVEL", "info"),
		PrettyLog: mustBool("SHELF_PRETTY_LOG", true),

		// Storage
		StoreBackend: strings.ToLower(getenv("SHELF_STORE_BACKEND", BackendFile)),
		DataFile:     getenv("SHELF_DATA_FILE", "./data.json"),
		HistoryLimit: getenvInt("SHELF_HISTORY_LIMIT", 500),
		BodyLimit:    int64(getenvInt("SHELF_BODY_LIMIT", 1<<20)),
		StaticDir:    getenv("SHELF_STATIC_DIR", ""),
		WatchEvery:   mustDuration("SHELF_WATCH_INTERVAL", 30*time.Second),

		// Redis settings
		RedisUser:           getenv("SHELF_REDIS_USERNAME", "default"),
		RedisPassword:       getenv("SHELF_REDIS_PASSWORD", ""),
		RedisDB:             getenvInt("SHELF_REDIS_DB", 0),
		RedisKey:            getenv("SHELF_REDIS_KEY", "linkshelf:document"),
		RedisDT:             mustDuration("SHELF_REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:             mustDuration("SHELF_REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:             mustDuration("SHELF_REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:        mustDuration("SHELF_REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:    mustDuration("SHELF_REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:       getenvInt("SHELF_REDIS_POOL_SIZE", 10),
		RedisConnectTimeout: mustDuration("SHELF_REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:  mustDuration("SHELF_REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:  getenvInt("SHELF_REDIS_WARN_THRESHOLD", 3),

		// Access restrictions
		AllowedHosts: splitAndTrim(getenv("SHELF_ALLOWED_HOSTS", "")),
		AllowedCIDRS: parseAllowedIPs(getenv("SHELF_ALLOWED_CIDRS", "")),
		TrustProxy:   mustBool("SHELF_TRUST_PROXY", false),
		RateBurst:    getenvInt("SHELF_RATE_BURST", 60),
		RatePerMin:   getenvInt("SHELF_RATE_PER_MIN", 0),
	}

	switch cfg.StoreBackend {
	case BackendFile:
	case BackendRedis:
		cfg.RedisAddr = requireEnv("SHELF_REDIS_ADDR")
	default:
		panic(fmt.Sprintf("❌ FATAL: unknown SHELF_STORE_BACKEND %q (want file or redis)", cfg.StoreBackend))
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		if cfgCopy.RedisPassword != "" {
			cfgCopy.RedisPassword = "***REDACTED***"
		}
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
}

// LoadClient reads the linkctl configuration from the environment (and .env if present).
func LoadClient() *ClientConfig {
	loadDotEnv()

	return &ClientConfig{
		ServerURL:      strings.TrimRight(lookupenv("SHELF_SERVER_URL", "http://localhost:3000"), "/"),
		CacheFile:      getenv("SHELF_CACHE_FILE", defaultCacheFile()),
		HistoryLimit:   getenvInt("SHELF_LOCAL_HISTORY_LIMIT", 50),
		RemoteTimeout:  mustDuration("SHELF_REMOTE_TIMEOUT", 0),
		RefreshTimeout: mustDuration("SHELF_REFRESH_TIMEOUT", 3*time.Second),
		DrainTimeout:   mustDuration("SHELF_DRAIN_TIMEOUT", 5*time.Second),
		LogLevel:       getenv("SHELF_LOG_LEVEL", "warn"),
		PrettyLog:      mustBool("SHELF_PRETTY_LOG", true),
	}
}

// loadDotEnv reads .env from the working directory. A missing file is fine.
func loadDotEnv() {
	_ = godotenv.Load()
}

// defaultCacheFile returns ~/.config/linkshelf/cache.db, or a relative path without a home dir.
func defaultCacheFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "linkshelf-cache.db"
	}
	return filepath.Join(home, ".config", "linkshelf", "cache.db")
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// lookupenv is like getenv but honors an explicitly empty value.
func lookupenv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
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
