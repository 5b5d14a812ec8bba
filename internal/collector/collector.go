package collector

import (
	"context"
	"fmt"

	"ContentCurator/internal/domain"
)

// Adapter fetches raw content from one source and normalizes it.
type Adapter interface {
	SourceKind() string
	Collect(ctx context.Context) ([]domain.CollectedItem, error)
}

// Factory builds an adapter for a configured source.
type Factory func(src domain.Source) (Adapter, error)

// Registry keeps a mapping from source kinds to adapter factories.
type Registry struct {
	factories map[domain.SourceKind]Factory
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: map[domain.SourceKind]Factory{}}
}

// Register adds or replaces the factory for a kind.
func (r *Registry) Register(kind domain.SourceKind, factory Factory) {
	if r.factories == nil {
		r.factories = map[domain.SourceKind]Factory{}
	}
	r.factories[kind] = factory
}

// Kinds lists registered source kinds.
func (r *Registry) Kinds() []domain.SourceKind {
	kinds := make([]domain.SourceKind, 0, len(r.factories))
	for k := range r.factories {
		kinds = append(kinds, k)
	}
	return kinds
}

// Build resolves the factory for src.Kind and constructs the adapter.
func (r *Registry) Build(src domain.Source) (Adapter, error) {
	factory, ok := r.factories[src.Kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownSourceKind, src.Kind)
	}
	adapter, err := factory(src)
	if err != nil {
		return nil, fmt.Errorf("build %s adapter: %w", src.Kind, err)
	}
	return adapter, nil
}
