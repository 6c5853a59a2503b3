package deps

import (
	"time"

	"github.com/MrSnakeDoc/linkshelf/internal/logger"
	"github.com/MrSnakeDoc/linkshelf/internal/metrics"
	"github.com/MrSnakeDoc/linkshelf/internal/store"
)

type Deps struct {
	Logger       logger.Logger
	StartTime    time.Time
	Version      string
	Commit       string
	BuildDate    string
	GoVersion    string
	TimeNow      func() time.Time // for testing, defaults to time.Now
	AllowedHosts []string         // Host headers allowed to access the API
	AllowedCIDRS []string         // IPs allowed to access readyz/infra/metrics
	TrustProxy   bool             // true if running behind a trusted reverse proxy (e.g., cloudflared)
	Store        *store.Service   // persisted collection + history
	Metrics      *metrics.Metrics // nil disables /metrics
	BodyLimit    int64            // max JSON request body in bytes
	RateBurst    int              // write requests allowed in a burst per client IP
	RatePerMin   int              // sustained write requests per minute per client IP, 0 = no limit
	StaticDir    string           // optional directory served at / (empty = disabled)
}

// Now returns the current time through TimeNow when set.
func (d Deps) Now() time.Time {
	if d.TimeNow != nil {
		return d.TimeNow()
	}
	return time.Now()
}
