package app_test

import (
	"context"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-ioc/framework/app"
	"github.com/km-arc/go-ioc/framework/config"
	"github.com/km-arc/go-ioc/framework/container"
)

func testConfig() *config.Config {
	return &config.Config{
		App:     config.AppConfig{Name: "KernelTest", Env: "testing", Port: "0", ShutdownTimeout: time.Second},
		Log:     config.LogConfig{Level: "error", Format: "json"},
		Metrics: config.MetricsConfig{Enabled: true, Path: "/metrics"},
		Inspect: config.InspectConfig{Enabled: true, Prefix: "/container"},
	}
}

type pool struct{ closed bool }

func (p *pool) Close() error {
	p.closed = true
	return nil
}

type poolProvider struct {
	container.BaseProvider
	pool *pool
}

func (p *poolProvider) Register(c *container.Container) {
	c.Singleton(container.KeyOf[*pool](), func(container.Resolver) (any, error) {
		return p.pool, nil
	})
}

func (p *poolProvider) Boot(c *container.Container) error {
	_, err := container.Resolve[*pool](c)
	return err
}

func TestNew_RegistersCoreProviders(t *testing.T) {
	a, err := app.New(app.WithConfig(testConfig()))
	require.NoError(t, err)

	assert.Len(t, a.Providers.Providers(), 4)
	assert.False(t, a.Providers.Booted())
	assert.True(t, a.IsTesting())
	assert.False(t, a.IsProduction())
}

func TestApplication_ServeAndShutdown(t *testing.T) {
	a, err := app.New(app.WithConfig(testConfig()))
	require.NoError(t, err)

	p := &poolProvider{pool: &pool{}}
	require.NoError(t, a.Register(p))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Serve(ctx, ln) }()

	url := "http://" + ln.Addr().String() + "/health"
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		return resp.StatusCode == http.StatusOK && len(body) > 0
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}

	assert.True(t, p.pool.closed, "container should dispose singletons on shutdown")
	_, err = a.Config()
	assert.ErrorIs(t, err, container.ErrDisposed)
}

func TestApplication_BootFailureClosesListener(t *testing.T) {
	cfg := testConfig()
	cfg.Log.Format = "xml"
	a, err := app.New(app.WithConfig(cfg))
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	err = a.Serve(context.Background(), ln)
	require.Error(t, err)

	_, err = ln.Accept()
	assert.Error(t, err, "listener should be closed")
}

func TestApplication_ShutdownTwice(t *testing.T) {
	a, err := app.New(app.WithConfig(testConfig()))
	require.NoError(t, err)
	require.NoError(t, a.Boot())

	assert.NoError(t, a.Shutdown())
	assert.NoError(t, a.Shutdown())
}
