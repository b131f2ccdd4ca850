package adapter

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/leapstack-labs/leapviz/pkg/core"
)

// Factory builds an adapter bound to logger. A nil logger discards output.
type Factory func(logger *slog.Logger) Adapter

// Registration describes one import-source type.
type Registration struct {
	// Name is the value of sources.<name>.type, matched case-insensitively.
	Name string

	// FileBased reports that the source's database setting is a file path
	// rather than a server DSN.
	FileBased bool

	Factory Factory
}

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Registration)
)

// Register adds an import-source type. Adapters call it from init();
// registering the same name twice replaces the earlier entry.
func Register(r Registration) {
	if r.Name == "" || r.Factory == nil {
		panic("adapter: Register requires a name and a factory")
	}
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[strings.ToLower(r.Name)] = r
}

// Lookup returns the registration for a source type.
func Lookup(name string) (Registration, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	r, ok := registry[strings.ToLower(name)]
	return r, ok
}

// NewAdapter creates an unconnected adapter for cfg.Type.
func NewAdapter(cfg core.AdapterConfig, logger *slog.Logger) (Adapter, error) {
	if cfg.Type == "" {
		return nil, core.InvalidArgumentf("source type not specified")
	}

	r, ok := Lookup(cfg.Type)
	if !ok {
		return nil, &UnknownAdapterError{
			Type:      cfg.Type,
			Available: ListAdapters(),
		}
	}
	return r.Factory(logger), nil
}

// ListAdapters returns the registered source type names, sorted.
func ListAdapters() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// IsRegistered reports whether a source type is available.
func IsRegistered(name string) bool {
	_, ok := Lookup(name)
	return ok
}

// UnknownAdapterError is returned for a source type nobody registered.
type UnknownAdapterError struct {
	Type      string
	Available []string
}

func (e *UnknownAdapterError) Error() string {
	return fmt.Sprintf("unknown source type %q (available: %s); check sources.<name>.type in leapviz.yaml",
		e.Type, strings.Join(e.Available, ", "))
}

// Is lets errors.Is(err, core.ErrInvalidArgument) match.
func (e *UnknownAdapterError) Is(target error) bool {
	return target == core.ErrInvalidArgument
}
