package providers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/km-arc/go-ioc/framework/config"
	"github.com/km-arc/go-ioc/framework/container"
	"github.com/km-arc/go-ioc/framework/metrics"
	"github.com/km-arc/go-ioc/framework/providers"
	"github.com/km-arc/go-ioc/framework/routing"
)

func testConfig() *config.Config {
	return &config.Config{
		App:     config.AppConfig{Name: "ProvidersTest", Env: "testing", Port: "0"},
		Log:     config.LogConfig{Level: "error", Format: "json"},
		Metrics: config.MetricsConfig{Enabled: true, Path: "/metrics"},
		Inspect: config.InspectConfig{Enabled: true, Prefix: "/container"},
	}
}

func boot(t *testing.T, cfg *config.Config, ps ...container.ServiceProvider) *container.Container {
	t.Helper()
	c := container.New()
	reg := container.NewProviderRegistry(c)
	require.NoError(t, reg.Register(&providers.ConfigServiceProvider{Config: cfg}))
	for _, p := range ps {
		require.NoError(t, reg.Register(p))
	}
	require.NoError(t, reg.Boot())
	return c
}

func serve(t *testing.T, c *container.Container, path string) int {
	t.Helper()
	router := container.MustResolve[*routing.Router](c)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	return rr.Code
}

func TestConfigProvider_Instance(t *testing.T) {
	cfg := testConfig()
	c := boot(t, cfg)

	got := container.MustResolve[*config.Config](c)
	assert.Same(t, cfg, got)

	regs := c.Registrations()
	require.Len(t, regs, 1)
	assert.Equal(t, container.KindInstance, regs[0].Kind)
}

func TestLoggingProvider_SingletonLogger(t *testing.T) {
	c := boot(t, testConfig(), &providers.LoggingServiceProvider{})

	a := container.MustResolve[*zap.Logger](c)
	b := container.MustResolve[*zap.Logger](c)
	assert.Same(t, a, b)
}

func TestLoggingProvider_BadFormatFailsBoot(t *testing.T) {
	cfg := testConfig()
	cfg.Log.Format = "xml"

	c := container.New()
	reg := container.NewProviderRegistry(c)
	require.NoError(t, reg.Register(&providers.ConfigServiceProvider{Config: cfg}))
	require.NoError(t, reg.Register(&providers.LoggingServiceProvider{}))

	assert.ErrorContains(t, reg.Boot(), `unknown format "xml"`)
}

func TestMetricsProvider_AttachesWhenEnabled(t *testing.T) {
	c := boot(t, testConfig(), &providers.MetricsServiceProvider{})

	m := container.MustResolve[*metrics.Metrics](c)
	_ = container.MustResolve[*config.Config](c)

	key := container.TypeKey(container.KeyOf[*config.Config]())
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Resolutions().WithLabelValues(key)))
}

func TestMetricsProvider_DisabledDoesNotAttach(t *testing.T) {
	cfg := testConfig()
	cfg.Metrics.Enabled = false
	c := boot(t, cfg, &providers.MetricsServiceProvider{})

	m := container.MustResolve[*metrics.Metrics](c)
	_ = container.MustResolve[*config.Config](c)

	assert.Equal(t, 0, testutil.CollectAndCount(m.Resolutions()))
}

func TestRoutingProvider_InstrumentedRouter(t *testing.T) {
	c := boot(t, testConfig(),
		&providers.LoggingServiceProvider{},
		&providers.MetricsServiceProvider{},
		&providers.RoutingServiceProvider{},
	)

	assert.Equal(t, http.StatusOK, serve(t, c, "/health"))
	assert.Equal(t, http.StatusOK, serve(t, c, "/container/bindings"))
	assert.Equal(t, http.StatusOK, serve(t, c, "/metrics"))
}

func TestRoutingProvider_WithoutMetricsFallsBack(t *testing.T) {
	c := boot(t, testConfig(),
		&providers.LoggingServiceProvider{},
		&providers.RoutingServiceProvider{},
	)

	assert.Equal(t, http.StatusOK, serve(t, c, "/health"))
	assert.Equal(t, http.StatusOK, serve(t, c, "/container/bindings"))
	assert.Equal(t, http.StatusNotFound, serve(t, c, "/metrics"))
}

func TestRoutingProvider_InspectionIsNotCached(t *testing.T) {
	c := boot(t, testConfig(),
		&providers.LoggingServiceProvider{},
		&providers.RoutingServiceProvider{},
	)
	router := container.MustResolve[*routing.Router](c)

	get := func(path string) *httptest.ResponseRecorder {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		return rr
	}

	assert.Contains(t, get("/container/bindings").Header().Get("Cache-Control"), "no-cache")
	assert.Empty(t, get("/health").Header().Get("Cache-Control"))
}

func TestRoutingProvider_InspectDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.Inspect.Enabled = false
	c := boot(t, cfg,
		&providers.LoggingServiceProvider{},
		&providers.RoutingServiceProvider{},
	)

	assert.Equal(t, http.StatusNotFound, serve(t, c, "/container/bindings"))
}

func TestRoutingProvider_RouterIsSingleton(t *testing.T) {
	c := boot(t, testConfig(),
		&providers.LoggingServiceProvider{},
		&providers.RoutingServiceProvider{},
	)

	assert.Same(t,
		container.MustResolve[*routing.Router](c),
		container.MustResolve[*routing.Router](c),
	)
}
