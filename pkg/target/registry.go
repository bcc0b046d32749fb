package target

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/kamaludinabdul/kula-pos-sub001/pkg/apperrors"
)

// Registration describes a target driver. Drivers register themselves from
// init so that linking a driver package is enough to enable it.
type Registration struct {
	Driver      string
	DisplayName string
	Open        func(ctx context.Context, opts Options, logger *zap.Logger) (Target, error)
}

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Registration)
)

// Register is called by each driver's init() function.
func Register(reg Registration) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[reg.Driver] = reg
}

// Drivers returns the registered driver names, sorted.
func Drivers() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Open connects to the target using the named driver.
func Open(ctx context.Context, driver string, opts Options, logger *zap.Logger) (Target, error) {
	registryMu.RLock()
	reg, ok := registry[driver]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: target %q (registered: %v)", apperrors.ErrUnsupportedDriver, driver, Drivers())
	}
	return reg.Open(ctx, opts, logger)
}
