package main

import (
	"fmt"
	"net/http"
	"os"
	"sync"

	"go.uber.org/zap"

	"github.com/km-arc/go-ioc/app"
	"github.com/km-arc/go-ioc/framework/container"
	"github.com/km-arc/go-ioc/routing"
)

// VisitStore is a tiny container-managed service with explicit teardown.
type VisitStore struct {
	mu     sync.Mutex
	visits map[string]int
	log    *zap.Logger
}

func NewVisitStore(log *zap.Logger) *VisitStore {
	return &VisitStore{visits: make(map[string]int), log: log}
}

func (s *VisitStore) Record(who string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.visits[who]++
	return s.visits[who]
}

func (s *VisitStore) Dispose() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.log.Info("flushing visit store", zap.Int("entries", len(s.visits)))
	s.visits = nil
	return nil
}

// Greeter depends on the store; the container destroys it first.
type Greeter struct {
	store *VisitStore
}

func (g *Greeter) Greet(who string) string {
	n := g.store.Record(who)
	return fmt.Sprintf("Hello, %s! Visit #%d.", who, n)
}

// AppServiceProvider wires the demo services.
type AppServiceProvider struct{ container.BaseProvider }

func (p *AppServiceProvider) Register(c *container.Container) {
	c.Singleton("store", func(c *container.Container) (any, error) {
		return NewVisitStore(container.Resolve[*zap.Logger](c, "logger")), nil
	})
	c.Singleton("greeter", func(c *container.Container) (any, error) {
		store, err := c.Make("store")
		if err != nil {
			return nil, err
		}
		return &Greeter{store: store.(*VisitStore)}, nil
	})
	_ = c.Alias("greeter", "hello")
}

func (p *AppServiceProvider) Boot(c *container.Container) {
	// greeter holds the store, so it must go down first
	c.RegisterDependency("store", "greeter")
	c.RegisterDisposable("store", container.Resolve[*VisitStore](c, "store"))
}

func main() {
	application := app.New() // loads .env automatically
	application.Register(&AppServiceProvider{})
	application.Boot()

	r := application.Router()

	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		routing.JSON(w, http.StatusOK, map[string]any{
			"app":        application.Config().App.Name,
			"components": application.Count(),
		})
	})

	r.Prefix("/api/v1", func(api *routing.Router) {

		api.Get("/components", func(w http.ResponseWriter, req *http.Request) {
			routing.JSON(w, http.StatusOK, map[string]any{
				"names": application.Names(),
				"count": application.Count(),
			})
		})

		api.Get("/components/{name}", func(w http.ResponseWriter, req *http.Request) {
			name := application.Canonical(routing.Param(req, "name"))
			if !application.Contains(name) {
				routing.JSON(w, http.StatusNotFound, map[string]any{"error": "unknown component"})
				return
			}
			routing.JSON(w, http.StatusOK, map[string]any{
				"name":         name,
				"dependents":   application.Graph().DependentsOf(name),
				"dependencies": application.Graph().DependenciesOf(name),
			})
		})

		api.Delete("/components/{name}", func(w http.ResponseWriter, req *http.Request) {
			name := routing.Param(req, "name")
			if err := application.Destroy(name); err != nil {
				routing.JSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
				return
			}
			routing.JSON(w, http.StatusOK, map[string]any{"destroyed": name})
		})

		api.Get("/greet/{who}", func(w http.ResponseWriter, req *http.Request) {
			greeter := container.Resolve[*Greeter](application.Container, "hello")
			routing.JSON(w, http.StatusOK, map[string]any{
				"message": greeter.Greet(routing.Param(req, "who")),
			})
		})
	})

	if err := application.Run(); err != nil {
		os.Exit(1)
	}
}
