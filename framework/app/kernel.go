package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/km-arc/go-ioc/framework/config"
	"github.com/km-arc/go-ioc/framework/container"
	"github.com/km-arc/go-ioc/framework/providers"
	"github.com/km-arc/go-ioc/framework/routing"
)

// Application is the top-level application container.
// It embeds the IoC Container and ProviderRegistry so user code can call
// app.Bind(), app.Singleton(), app.Register() directly.
type Application struct {
	*container.Container
	Providers *container.ProviderRegistry
}

// Option adjusts the core providers before they are registered.
type Option func(*options)

type options struct {
	envFiles []string
	config   *config.Config
}

// WithEnvFiles loads configuration from the given .env files instead of ./.env.
func WithEnvFiles(files ...string) Option {
	return func(o *options) { o.envFiles = files }
}

// WithConfig uses cfg as is and skips .env loading.
func WithConfig(cfg *config.Config) Option {
	return func(o *options) { o.config = cfg }
}

// New creates the application and registers the framework core providers.
func New(opts ...Option) (*Application, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	c := container.New()
	app := &Application{
		Container: c,
		Providers: container.NewProviderRegistry(c),
	}

	core := []container.ServiceProvider{
		&providers.ConfigServiceProvider{EnvFiles: o.envFiles, Config: o.config},
		&providers.LoggingServiceProvider{},
		&providers.MetricsServiceProvider{},
		&providers.RoutingServiceProvider{},
	}
	for _, p := range core {
		if err := app.Register(p); err != nil {
			return nil, err
		}
	}
	return app, nil
}

// Register adds a ServiceProvider to the application.
func (a *Application) Register(provider container.ServiceProvider) error {
	return a.Providers.Register(provider)
}

// Boot runs the Boot() phase on all providers.
func (a *Application) Boot() error {
	return a.Providers.Boot()
}

// Config resolves *config.Config from the container.
func (a *Application) Config() (*config.Config, error) {
	return container.Resolve[*config.Config](a.Container)
}

// Logger resolves *zap.Logger from the container.
func (a *Application) Logger() (*zap.Logger, error) {
	return container.Resolve[*zap.Logger](a.Container)
}

// Router resolves *routing.Router from the container.
func (a *Application) Router() (*routing.Router, error) {
	return container.Resolve[*routing.Router](a.Container)
}

// Run boots the application if needed and serves HTTP on APP_PORT until ctx
// is cancelled, then drains in-flight requests and disposes the container.
func (a *Application) Run(ctx context.Context) error {
	ln, err := a.listen()
	if err != nil {
		return err
	}
	return a.Serve(ctx, ln)
}

func (a *Application) listen() (net.Listener, error) {
	if err := a.Boot(); err != nil {
		return nil, err
	}
	cfg, err := a.Config()
	if err != nil {
		return nil, err
	}
	ln, err := net.Listen("tcp", ":"+cfg.App.Port)
	if err != nil {
		return nil, fmt.Errorf("listen: %w", err)
	}
	return ln, nil
}

// Serve is Run on a caller-supplied listener.
func (a *Application) Serve(ctx context.Context, ln net.Listener) error {
	if err := a.Boot(); err != nil {
		_ = ln.Close()
		return err
	}
	cfg, err := a.Config()
	if err != nil {
		_ = ln.Close()
		return err
	}
	logger, err := a.Logger()
	if err != nil {
		_ = ln.Close()
		return err
	}
	router, err := a.Router()
	if err != nil {
		_ = ln.Close()
		return err
	}

	srv := &http.Server{
		Handler:           router.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server started",
			zap.String("addr", ln.Addr().String()),
			zap.String("env", cfg.App.Env),
		)
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return multierr.Append(fmt.Errorf("serve: %w", err), a.Shutdown())
		}
		return a.Shutdown()
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()
	err = srv.Shutdown(shutdownCtx)
	return multierr.Append(err, a.Shutdown())
}

// Shutdown disposes the container and flushes the logger.
func (a *Application) Shutdown() error {
	logger, _ := a.Logger()
	err := a.Dispose()
	if logger != nil {
		// stderr sync fails with EINVAL on some platforms
		_ = logger.Sync()
	}
	return err
}

// Environment returns the APP_ENV value.
func (a *Application) Environment() string {
	cfg, err := a.Config()
	if err != nil {
		return ""
	}
	return cfg.App.Env
}

func (a *Application) IsLocal() bool      { return a.Environment() == "local" }
func (a *Application) IsProduction() bool { return a.Environment() == "production" }
func (a *Application) IsTesting() bool    { return a.Environment() == "testing" }
