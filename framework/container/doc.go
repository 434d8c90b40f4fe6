// Package container provides an IoC (Inversion of Control) container and a
// Service Provider system for Go.
//
// # Overview
//
// The container maps service identities (a reflect.Type, usually an
// interface) to construction strategies and builds object graphs on demand
// by resolving constructor dependencies recursively. Several entries may
// share an identity: Resolve returns the newest, ResolveAll returns every one.
//
// # Container Lifecycle
//
//  1. Create: c := container.New(container.WithLogger(logger))
//  2. Register providers: registry.Register(&MyProvider{})
//  3. Boot: registry.Boot()        (safe to resolve everything after this)
//  4. Serve requests
//  5. Tear down: c.Dispose()       (releases everything the container built)
//
// # Bindings
//
//	// Transient factory: new instance every Resolve()
//	c.Bind(container.KeyOf[Foo](), func(r container.Resolver) (any, error) {
//	    return &foo{}, nil
//	})
//
//	// Singleton factory: created once, reused
//	c.Singleton(container.KeyOf[Cache](), func(r container.Resolver) (any, error) {
//	    cfg, err := container.Resolve[*config.Config](r)
//	    if err != nil {
//	        return nil, err
//	    }
//	    return cache.NewRedis(cfg), nil
//	})
//
//	// Pre-built value
//	c.Instance(container.KeyOf[*config.Config](), cfg)
//
//	// Constructor injection: the ctor with the most resolvable
//	// parameters is chosen, earliest declared on a tie
//	c.SingletonType(container.KeyOf[UserService](), NewUserService, NewUserServiceWithAudit)
//
// # Resolving
//
//	raw, err := c.Resolve(container.KeyOf[Cache]())
//
//	// Generic, no type assertion required
//	cache, err := container.Resolve[Cache](c)
//	reports, err := container.ResolveAll[Report](c)
//
// # Cycles
//
// Every top-level Resolve owns a chain of the identities under construction.
// Meeting an identity already on the chain fails with a
// *CyclicDependencyError whose Path() reads "A -> B -> A".
//
// # Disposal
//
// Dispose releases every produced instance implementing Disposable or
// io.Closer: transient instances, cached singletons, nested dependencies and
// fixed instances alike.
//
// # Service Providers
//
//	type AppServiceProvider struct{ container.BaseProvider }
//
//	func (p *AppServiceProvider) Register(app *container.Container) {
//	    app.SingletonType(container.KeyOf[Mailer](), NewSMTPMailer)
//	}
//
//	registry := container.NewProviderRegistry(c)
//	registry.Register(&AppServiceProvider{})
//	registry.Boot()
package container
