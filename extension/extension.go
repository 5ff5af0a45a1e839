// Package extension loads the optional feature modules that hang callbacks
// off the interception engine. Extensions register a factory under a name
// from an init func; the config lists which names get loaded.
package extension

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/k2io/hostpatch/intercept"
)

// ErrUnknown means no extension is registered under the name.
var ErrUnknown = errors.New("unknown extension")

type Info struct {
	Name        string
	Version     string
	Description string
	Author      string
}

// Extension is one loadable feature.
type Extension interface {
	// Init registers the extension's callbacks. It runs before the host
	// main loop starts.
	Init(e *intercept.Engine) error
	Describe() Info
}

// Factory builds a fresh Extension.
type Factory func() Extension

var (
	factoriesMu sync.RWMutex
	factories   = make(map[string]Factory)
)

// Register makes an extension available under name. It panics if factory is
// nil or name is taken.
func Register(name string, factory Factory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	if factory == nil {
		panic("extension: Register factory is nil")
	}
	if _, dup := factories[name]; dup {
		panic("extension: Register called twice for " + name)
	}
	factories[name] = factory
}

// Registered returns the sorted names of the registered extensions.
func Registered() []string {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func lookup(name string) (Factory, bool) {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()
	f, ok := factories[name]
	return f, ok
}

// Manager owns the extensions loaded into one engine.
type Manager struct {
	log    *zap.SugaredLogger
	loaded []Extension
}

func NewManager(log *zap.SugaredLogger) *Manager {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Manager{log: log}
}

// Load builds and initializes the named extensions in order. A failing
// extension is logged and skipped; the rest still load.
func (m *Manager) Load(e *intercept.Engine, names []string) error {
	var errs []error
	for _, name := range names {
		factory, ok := lookup(name)
		if !ok {
			m.log.Warnw("extension not registered", "name", name)
			errs = append(errs, fmt.Errorf("%w: %s", ErrUnknown, name))
			continue
		}
		ext := factory()
		if err := ext.Init(e); err != nil {
			m.log.Errorw("extension init failed", "name", name, "error", err)
			errs = append(errs, fmt.Errorf("init %s: %w", name, err))
			continue
		}
		info := ext.Describe()
		m.log.Infow("extension loaded", "name", info.Name, "version", info.Version, "author", info.Author)
		m.loaded = append(m.loaded, ext)
	}
	return errors.Join(errs...)
}

// Loaded returns the extensions that initialized, in load order.
func (m *Manager) Loaded() []Extension {
	return m.loaded
}
