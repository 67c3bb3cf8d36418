package httpserver

import (
	"net/http"

	"github.com/foteam/sessionstore/internal/core/service"
	"github.com/foteam/sessionstore/internal/server/config"
	"github.com/foteam/sessionstore/internal/server/httpserver/handler"
	"github.com/foteam/sessionstore/internal/telemetry/logger"
	"github.com/foteam/sessionstore/internal/telemetry/metric"
)

// RouterConfig holds configuration for the HTTP router.
type RouterConfig struct {
	// Manager starts the per-request sessions.
	Manager *service.Manager

	// Cookie configures the session cookie.
	Cookie config.CookieConfig

	// Logger for request logging.
	Logger logger.Logger

	// Metrics is exposed on MetricsPath and fed by Instrument.
	// Nil disables both.
	Metrics      *metric.Registry
	MetricsPath  string
	MetricsToken string

	// Handler options, e.g. the readiness check.
	HandlerOptions []handler.Option
}

// NewRouter creates and configures the HTTP router with all routes and middleware.
//
// Order: Recover -> Logger -> RequestID -> AccessLog -> Instrument -> [Sessions] -> Handler.
// Probe and metrics routes do not open sessions.
func NewRouter(cfg *RouterConfig) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = logger.Default()
	}
	h := handler.New(append([]handler.Option{handler.WithLogger(log)}, cfg.HandlerOptions...)...)

	common := []Middleware{
		Recover(),
		WithLogger(log),
		RequestID(),
		AccessLog(),
		Instrument(cfg.Metrics),
	}

	mux := http.NewServeMux()

	probes := Chain(h, Recover(), RequestID())
	mux.Handle("GET /healthz", probes)
	mux.Handle("GET /readyz", probes)

	if cfg.Metrics != nil {
		path := cfg.MetricsPath
		if path == "" {
			path = config.DefaultMetricsPath
		}
		mux.Handle("GET "+path, Chain(cfg.Metrics.Handler(), Recover(), BearerAuth(cfg.MetricsToken)))
	}

	app := Chain(h, append(common, Sessions(cfg.Manager, cfg.Cookie))...)
	mux.Handle("GET /cart", app)
	mux.Handle("POST /cart/items", app)
	mux.Handle("DELETE /cart/items/{photo_id}", app)
	mux.Handle("DELETE /cart", app)
	mux.Handle("POST /login", app)
	mux.Handle("POST /logout", app)

	return mux
}
