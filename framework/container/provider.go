package container

import "fmt"

// ── ServiceProvider interface ─────────────────────────────────────────────────

// ServiceProvider groups related registrations.
//
// Every provider implements Register(). Boot() is called after ALL providers
// have been registered, making it safe to resolve other services inside Boot().
//
//	type AppServiceProvider struct{ container.BaseProvider }
//
//	func (p *AppServiceProvider) Register(app *container.Container) {
//	    app.SingletonType(container.KeyOf[Mailer](), NewSMTPMailer)
//	}
//
//	func (p *AppServiceProvider) Boot(app *container.Container) error {
//	    logger, err := container.Resolve[*zap.Logger](app)
//	    if err != nil {
//	        return err
//	    }
//	    logger.Info("application booted")
//	    return nil
//	}
type ServiceProvider interface {
	// Register adds entries to the container.
	// Do NOT resolve anything here; use Boot() for that.
	Register(app *Container)

	// Boot is called after all providers are registered.
	// Safe to resolve and use any service here.
	Boot(app *Container) error
}

// ── BaseProvider ──────────────────────────────────────────────────────────────

// BaseProvider is an embeddable struct with a no-op Boot().
//
//	type MyProvider struct{ container.BaseProvider }
//	func (p *MyProvider) Register(app *container.Container) { ... }
type BaseProvider struct{}

func (p *BaseProvider) Boot(_ *Container) error { return nil }

// ── ProviderRegistry ──────────────────────────────────────────────────────────

// ProviderRegistry manages registration and booting of ServiceProviders.
type ProviderRegistry struct {
	app        *Container
	providers  []ServiceProvider
	booted     bool
	registered map[ServiceProvider]bool
}

// NewProviderRegistry creates a registry bound to app.
func NewProviderRegistry(app *Container) *ProviderRegistry {
	return &ProviderRegistry{
		app:        app,
		registered: make(map[ServiceProvider]bool),
	}
}

// Register adds a provider and calls its Register() method. A provider
// registered after Boot() is booted immediately.
func (r *ProviderRegistry) Register(provider ServiceProvider) error {
	if r.registered[provider] {
		return nil
	}
	r.registered[provider] = true

	provider.Register(r.app)
	r.providers = append(r.providers, provider)

	if r.booted {
		return boot(provider, r.app)
	}
	return nil
}

// Boot calls Boot() on every provider in registration order and stops at the
// first failure. Must be called after ALL providers have been registered.
func (r *ProviderRegistry) Boot() error {
	if r.booted {
		return nil
	}
	r.booted = true
	for _, provider := range r.providers {
		if err := boot(provider, r.app); err != nil {
			return err
		}
	}
	return nil
}

func boot(provider ServiceProvider, app *Container) error {
	if err := provider.Boot(app); err != nil {
		return fmt.Errorf("boot %T: %w", provider, err)
	}
	return nil
}

// Booted returns true if Boot() has been called.
func (r *ProviderRegistry) Booted() bool { return r.booted }

// Providers returns all registered providers.
func (r *ProviderRegistry) Providers() []ServiceProvider { return r.providers }
