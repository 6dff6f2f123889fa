package vstore

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/vango-dev/vstore/pkg/composer"
	"github.com/vango-dev/vstore/pkg/devtools"
	"github.com/vango-dev/vstore/pkg/middleware"
	"github.com/vango-dev/vstore/pkg/reactive"
	"github.com/vango-dev/vstore/pkg/store"
)

// =============================================================================
// App Type
// =============================================================================

// App is the composition root of a vstore server. It owns the store
// runtime, installs the hydration and devtools hooks on it exactly once,
// and tracks the scopes created for rendering sessions.
//
//	app, err := vstore.New(vstore.Config{
//	    Devtools: vstore.DevtoolsConfig{Enabled: true},
//	    Metrics:  vstore.MetricsConfig{Enabled: true},
//	})
//	if err != nil {
//	    return err
//	}
//	defer app.Close()
//
//	stores := demo.New(app.Runtime())
//	scope := app.NewScope(nil)
//	_ = scope.Run(func() error {
//	    _, err := stores.Cart.UseProvider()
//	    return err
//	})
//	http.ListenAndServe(":3000", app.Handler())
type App struct {
	config  Config
	logger  *slog.Logger
	runtime *store.Runtime

	hub      *devtools.SocketHub
	bridge   *devtools.Bridge
	gatherer prometheus.Gatherer

	installOnce sync.Once
	closeOnce   sync.Once
	uninstall   []func()

	mu     sync.RWMutex
	scopes map[string]*Scope
}

// New creates an App with the given configuration. It fails only when the
// devtools filter does not compile.
func New(cfg Config) (*App, error) {
	cfg.applyDefaults()

	app := &App{
		config:  cfg,
		logger:  cfg.Logger,
		runtime: cfg.Runtime,
		scopes:  make(map[string]*Scope),
	}

	if cfg.Devtools.Enabled {
		app.hub = devtools.NewSocketHub(devtools.WithHubLogger(cfg.Logger))
		bridge, err := devtools.NewBridge(app.hub, cfg.devtoolsOptions()...)
		if err != nil {
			return nil, err
		}
		app.bridge = bridge
		app.hub.OnConnect(func(clientID string) {
			app.hub.Send(clientID, devtools.EventInit, bridge.Snapshot())
		})
	}

	app.Install()
	return app, nil
}

// Install adds the App's observers and hooks to its runtime. It runs once;
// later calls do nothing. New calls it.
func (a *App) Install() {
	a.installOnce.Do(func() {
		observers := append([]store.Observer{middleware.Logging(a.logger)}, a.config.Observers...)

		if a.config.Metrics.Enabled {
			var registerer prometheus.Registerer = prometheus.DefaultRegisterer
			a.gatherer = prometheus.DefaultGatherer
			if reg := a.config.Metrics.Registry; reg != nil {
				registerer, a.gatherer = reg, reg
			}
			observers = append(observers, middleware.Prometheus(
				middleware.WithRegistry(registerer),
				middleware.WithNamespace(a.config.Metrics.Namespace),
			))
		}

		for _, obs := range observers {
			a.uninstall = append(a.uninstall, a.runtime.Observe(obs))
		}

		a.uninstall = append(a.uninstall, composer.Install(a.runtime))
		if a.bridge != nil {
			a.uninstall = append(a.uninstall, a.bridge.Install(a.runtime))
		}
	})
}

// Runtime returns the store runtime the App is installed on.
func (a *App) Runtime() *store.Runtime {
	return a.runtime
}

// Bridge returns the devtools bridge, or nil when devtools are disabled.
func (a *App) Bridge() *devtools.Bridge {
	return a.bridge
}

// Logger returns the App's logger.
func (a *App) Logger() *slog.Logger {
	return a.logger
}

// Close disposes every scope, removes the App's hooks and observers from
// the runtime and disconnects devtools clients.
func (a *App) Close() {
	a.closeOnce.Do(func() {
		for _, s := range a.Scopes() {
			s.Dispose()
		}
		for i := len(a.uninstall) - 1; i >= 0; i-- {
			a.uninstall[i]()
		}
		if a.hub != nil {
			a.hub.Close()
		}
	})
}

// =============================================================================
// Scopes
// =============================================================================

// Scope is the root owner of one rendering session. Stores provided in a
// scope are hydrated from its payload and exported by Export.
type Scope struct {
	id       string
	app      *App
	owner    *reactive.Owner
	composer *composer.Composer
	created  time.Time
}

// NewScope creates a scope seeded with data. A nil payload uses
// Config.Hydration.
func (a *App) NewScope(data composer.HydrationData) *Scope {
	if data == nil {
		data = a.config.Hydration
	}

	s := &Scope{
		id:      uuid.NewString(),
		app:     a,
		owner:   reactive.NewOwner(nil),
		created: time.Now(),
	}
	s.composer = composer.New(data, composer.WithLogger(a.logger.With("scope", s.id)))
	composer.Provide(s.owner, s.composer)

	a.mu.Lock()
	a.scopes[s.id] = s
	a.mu.Unlock()

	a.logger.Debug("scope created", "scope", s.id, "hydrated", len(data))
	return s
}

// Scope returns the live scope with the given id.
func (a *App) Scope(id string) (*Scope, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	s, ok := a.scopes[id]
	return s, ok
}

// Scopes returns the live scopes, oldest first.
func (a *App) Scopes() []*Scope {
	a.mu.RLock()
	scopes := make([]*Scope, 0, len(a.scopes))
	for _, s := range a.scopes {
		scopes = append(scopes, s)
	}
	a.mu.RUnlock()

	sort.Slice(scopes, func(i, j int) bool {
		if scopes[i].created.Equal(scopes[j].created) {
			return scopes[i].id < scopes[j].id
		}
		return scopes[i].created.Before(scopes[j].created)
	})
	return scopes
}

// ID returns the scope's uuid.
func (s *Scope) ID() string {
	return s.id
}

// Owner returns the scope's root owner.
func (s *Scope) Owner() *reactive.Owner {
	return s.owner
}

// Created returns when the scope was created.
func (s *Scope) Created() time.Time {
	return s.created
}

// Run calls fn with the scope as the ambient owner, so that UseProvider
// and UseConsumer resolve against it.
func (s *Scope) Run(fn func() error) error {
	var err error
	reactive.WithOwner(s.owner, func() {
		err = fn()
	})
	return err
}

// Stores returns the identifiers of the live stores in the scope.
func (s *Scope) Stores() []string {
	return s.composer.ActiveStores()
}

// Export returns the hydration payload of the scope's live stores.
func (s *Scope) Export() (composer.HydrationData, error) {
	return s.composer.ExportHydrationData()
}

// Dispose disposes the scope's owner tree and forgets the scope.
func (s *Scope) Dispose() {
	s.app.mu.Lock()
	delete(s.app.scopes, s.id)
	s.app.mu.Unlock()

	s.owner.Dispose()
	s.app.logger.Debug("scope disposed", "scope", s.id)
}
