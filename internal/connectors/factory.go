package connectors

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/jkkn-ai/assist/internal/connectors/filesystem"
	"github.com/jkkn-ai/assist/internal/connectors/gdrive"
	"github.com/jkkn-ai/assist/internal/core/domain"
	"github.com/jkkn-ai/assist/internal/core/ports/driven"
)

// Ensure Factory implements the interface.
var _ driven.ConnectorFactory = (*Factory)(nil)

// Factory creates connectors from source configuration.
type Factory struct {
	mu       sync.RWMutex
	builders map[string]driven.ConnectorBuilder
}

// NewFactory creates a factory with all built-in connector types
// registered.
func NewFactory() *Factory {
	f := &Factory{
		builders: make(map[string]driven.ConnectorBuilder),
	}

	f.Register(domain.ConnectorTypeFilesystem, func(source domain.Source) (driven.Connector, error) {
		path := source.Config["path"]
		if path == "" {
			return nil, fmt.Errorf("%w: filesystem source needs a path", domain.ErrInvalidInput)
		}
		return filesystem.New(source.ID, path), nil
	})

	f.Register(domain.ConnectorTypeDrive, func(source domain.Source) (driven.Connector, error) {
		return gdrive.New(source)
	})

	return f
}

// Create returns a Connector for the given source.
func (f *Factory) Create(_ context.Context, source domain.Source) (driven.Connector, error) {
	f.mu.RLock()
	builder, ok := f.builders[source.Type]
	f.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedType, source.Type)
	}
	return builder(source)
}

// Register adds a connector builder for the given type.
func (f *Factory) Register(connectorType string, builder driven.ConnectorBuilder) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.builders[connectorType] = builder
}

// SupportedTypes returns all registered connector types, sorted.
func (f *Factory) SupportedTypes() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	types := make([]string, 0, len(f.builders))
	for t := range f.builders {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
