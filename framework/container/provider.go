package container

// ── ServiceProvider interface ─────────────────────────────────────────────────

// ServiceProvider groups related bindings and their startup logic.
//
// Register binds services into the container and must not resolve other
// bindings; Boot runs after ALL providers have registered, so resolving
// anything is safe there.
//
//	type StoreProvider struct{ container.BaseProvider }
//
//	func (p *StoreProvider) Register(app *container.Container) {
//	    app.Singleton("store", func(c *container.Container) (any, error) {
//	        cfg, err := c.Make("config")
//	        if err != nil {
//	            return nil, err
//	        }
//	        return store.Open(cfg.(*config.Config))
//	    })
//	}
//
//	func (p *StoreProvider) Boot(app *container.Container) {
//	    app.RegisterDependency("config", "store")
//	}
type ServiceProvider interface {
	// Register binds services into the container.
	// Do NOT resolve other bindings here — use Boot() for that.
	Register(app *Container)

	// Boot is called after all providers are registered.
	// Safe to resolve and use any binding here.
	Boot(app *Container)

	// Provides returns the abstract names this provider registers. Only
	// consulted for deferred providers. Nil means always eager.
	Provides() []string

	// IsDeferred reports whether the provider should be loaded lazily,
	// on the first Make of one of its Provides() names.
	IsDeferred() bool
}

// ── BaseProvider ──────────────────────────────────────────────────────────────

// BaseProvider is an embeddable struct providing no-op implementations of
// Boot(), Provides() and IsDeferred(). Embed it and override what you need.
type BaseProvider struct{}

func (p *BaseProvider) Boot(_ *Container)  {}
func (p *BaseProvider) Provides() []string { return nil }
func (p *BaseProvider) IsDeferred() bool   { return false }

// ── ProviderRegistry ──────────────────────────────────────────────────────────

// ProviderRegistry manages registration and booting of ServiceProviders,
// including deferred (lazy) ones.
type ProviderRegistry struct {
	app        *Container
	eager      []ServiceProvider
	deferred   map[string]ServiceProvider // abstract name → provider
	registered map[ServiceProvider]bool
	applied    map[ServiceProvider]bool // deferred providers whose Register ran
	booted     bool
}

// NewProviderRegistry creates a registry bound to app.
func NewProviderRegistry(app *Container) *ProviderRegistry {
	return &ProviderRegistry{
		app:        app,
		deferred:   make(map[string]ServiceProvider),
		registered: make(map[ServiceProvider]bool),
		applied:    make(map[ServiceProvider]bool),
	}
}

// Register adds a provider and calls its Register() method, unless the
// provider defers itself, in which case registration happens on first use.
func (r *ProviderRegistry) Register(provider ServiceProvider) {
	if r.registered[provider] {
		return
	}
	r.registered[provider] = true

	if provider.IsDeferred() {
		for _, name := range provider.Provides() {
			r.deferred[name] = provider
		}
		r.interceptDeferred(provider)
		return
	}

	provider.Register(r.app)
	r.eager = append(r.eager, provider)

	// Late registration on a running application boots immediately.
	if r.booted {
		provider.Boot(r.app)
	}
}

// interceptDeferred installs a placeholder binding for each deferred name.
// The first Make triggers the provider's real Register (which overwrites
// the placeholder) plus Boot, then resolves through the real binding.
func (r *ProviderRegistry) interceptDeferred(provider ServiceProvider) {
	for _, name := range provider.Provides() {
		abstract := name // capture
		r.app.Bind(abstract, func(c *Container) (any, error) {
			if !r.applied[provider] {
				r.applied[provider] = true
				provider.Register(c)
				for _, provided := range provider.Provides() {
					delete(r.deferred, provided)
				}
				if r.booted {
					provider.Boot(c)
				}
			}
			return c.Make(abstract)
		})
	}
}

// Boot calls Boot() on all eager providers. Call after every provider has
// been registered.
func (r *ProviderRegistry) Boot() {
	if r.booted {
		return
	}
	r.booted = true
	for _, provider := range r.eager {
		provider.Boot(r.app)
	}
}

// Booted reports whether Boot() has run.
func (r *ProviderRegistry) Booted() bool { return r.booted }

// Providers returns all registered eager providers.
func (r *ProviderRegistry) Providers() []ServiceProvider { return r.eager }
