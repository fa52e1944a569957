package providers

import (
	"go.uber.org/zap"

	"github.com/km-arc/go-ioc/framework/config"
	"github.com/km-arc/go-ioc/framework/container"
	"github.com/km-arc/go-ioc/framework/logging"
	"github.com/km-arc/go-ioc/routing"
)

// ── ConfigServiceProvider ─────────────────────────────────────────────────────

// ConfigServiceProvider loads the application configuration from .env and
// binds it into the container as "config".
//
// Bound abstracts:
//   - "config"        → *config.Config
//   - "configuration" → alias of "config"
type ConfigServiceProvider struct {
	container.BaseProvider
	EnvFiles []string
}

func (p *ConfigServiceProvider) Register(app *container.Container) {
	envFiles := p.EnvFiles
	app.Singleton("config", func(c *container.Container) (any, error) {
		return config.Load(envFiles...), nil
	})
	_ = app.Alias("config", "configuration")
}

// ── LoggingServiceProvider ────────────────────────────────────────────────────

// LoggingServiceProvider builds the zap application logger from the loaded
// configuration.
//
// Bound abstracts:
//   - "logger" → *zap.Logger
//
// The logger depends on "config"; the edge is recorded so the logger is
// torn down (flushed) before the configuration on shutdown.
type LoggingServiceProvider struct {
	container.BaseProvider
}

func (p *LoggingServiceProvider) Register(app *container.Container) {
	app.Singleton("logger", func(c *container.Container) (any, error) {
		cfg, err := c.Make("config")
		if err != nil {
			return nil, err
		}
		return logging.New(cfg.(*config.Config).Log)
	})
}

func (p *LoggingServiceProvider) Boot(app *container.Container) {
	app.RegisterDependency("config", "logger")
	log := container.Resolve[*zap.Logger](app, "logger")
	app.RegisterDisposable("logger", container.DisposeFunc(func() error {
		// Sync flushes buffered entries; stderr sync errors are benign.
		_ = log.Sync()
		return nil
	}))
}

// ── RoutingServiceProvider ────────────────────────────────────────────────────

// RoutingServiceProvider registers the HTTP router used by the demo
// application surface.
//
// Bound abstracts:
//   - "router" → *routing.Router
type RoutingServiceProvider struct {
	container.BaseProvider
}

func (p *RoutingServiceProvider) Register(app *container.Container) {
	app.Singleton("router", func(c *container.Container) (any, error) {
		return routing.New(), nil
	})
}
