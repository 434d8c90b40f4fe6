package providers

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/km-arc/go-ioc/framework/config"
	"github.com/km-arc/go-ioc/framework/container"
	gohttp "github.com/km-arc/go-ioc/framework/http"
	"github.com/km-arc/go-ioc/framework/logging"
	"github.com/km-arc/go-ioc/framework/metrics"
	"github.com/km-arc/go-ioc/framework/routing"
)

// ── ConfigServiceProvider ─────────────────────────────────────────────────────

// ConfigServiceProvider loads the application configuration from .env and
// binds it into the container.
//
// Bound identities:
//   - *config.Config (fixed instance)
type ConfigServiceProvider struct {
	container.BaseProvider
	EnvFiles []string

	// Config skips loading when set. Tests use it.
	Config *config.Config
}

func (p *ConfigServiceProvider) Register(app *container.Container) {
	cfg := p.Config
	if cfg == nil {
		cfg = config.Load(p.EnvFiles...)
	}
	app.Instance(container.KeyOf[*config.Config](), cfg)
}

// ── LoggingServiceProvider ────────────────────────────────────────────────────

// LoggingServiceProvider builds the zap logger from *config.Config and, on
// Boot, hands it to the container for its own tracing.
//
// Bound identities:
//   - *zap.Logger (singleton factory)
type LoggingServiceProvider struct{}

func (p *LoggingServiceProvider) Register(app *container.Container) {
	app.Singleton(container.KeyOf[*zap.Logger](), func(r container.Resolver) (any, error) {
		cfg, err := container.Resolve[*config.Config](r)
		if err != nil {
			return nil, err
		}
		logger, err := logging.New(cfg.Log)
		if err != nil {
			return nil, err
		}
		return logger.With(zap.String("app", cfg.App.Name)), nil
	})
}

func (p *LoggingServiceProvider) Boot(app *container.Container) error {
	logger, err := container.Resolve[*zap.Logger](app)
	if err != nil {
		return err
	}
	app.SetLogger(logger.Named("container"))
	return nil
}

// ── MetricsServiceProvider ────────────────────────────────────────────────────

// MetricsServiceProvider registers the Prometheus collectors and attaches
// them to the container when metrics are enabled.
//
// Bound identities:
//   - *metrics.Metrics (type-based singleton)
type MetricsServiceProvider struct{}

func (p *MetricsServiceProvider) Register(app *container.Container) {
	app.SingletonType(container.KeyOf[*metrics.Metrics](), metrics.New)
}

func (p *MetricsServiceProvider) Boot(app *container.Container) error {
	cfg, err := container.Resolve[*config.Config](app)
	if err != nil {
		return err
	}
	if !cfg.Metrics.Enabled {
		return nil
	}
	m, err := container.Resolve[*metrics.Metrics](app)
	if err != nil {
		return err
	}
	return m.Attach(app)
}

// ── RoutingServiceProvider ────────────────────────────────────────────────────

// RoutingServiceProvider registers the HTTP router and the container
// inspector it serves.
//
// Bound identities:
//   - *gohttp.Inspector (fixed instance)
//   - *routing.Router   (type-based singleton)
//
// The router has three constructors. The container picks the one whose
// dependencies are registered, so an application without the metrics
// provider still gets the inspection routes.
type RoutingServiceProvider struct {
	container.BaseProvider
}

func (p *RoutingServiceProvider) Register(app *container.Container) {
	app.Instance(container.KeyOf[*gohttp.Inspector](), gohttp.NewInspector(app))
	app.SingletonType(container.KeyOf[*routing.Router](),
		routing.New,
		NewRouter,
		NewInstrumentedRouter,
	)
}

// NewRouter builds the router with the health route and, when enabled, the
// container inspection routes. Inspection responses are never cached.
func NewRouter(cfg *config.Config, logger *zap.Logger, in *gohttp.Inspector) *routing.Router {
	r := routing.New(logger)
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		gohttp.NewResponse(w).Success(map[string]string{
			"app": cfg.App.Name,
			"env": cfg.App.Env,
		})
	})
	if cfg.Inspect.Enabled {
		r.Group(func(g *routing.Router) {
			g.Middleware(middleware.NoCache)
			g.Prefix(cfg.Inspect.Prefix, in.Routes)
		})
	}
	return r
}

// NewInstrumentedRouter is NewRouter plus the Prometheus endpoint.
func NewInstrumentedRouter(cfg *config.Config, logger *zap.Logger, in *gohttp.Inspector, m *metrics.Metrics) *routing.Router {
	r := NewRouter(cfg, logger, in)
	if cfg.Metrics.Enabled {
		r.Mount(cfg.Metrics.Path, m.Handler())
	}
	return r
}
