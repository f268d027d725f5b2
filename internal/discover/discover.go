package discover

import (
	"context"
	"fmt"
)

// Request carries all parameters required to discover candidates on a site.
type Request struct {
	SiteName string
	BaseURL  string
	FeedURL  string
	MaxLinks int
}

// Discoverer captures a single discovery strategy (listing page, feed, ...).
// Implementations return absolute, normalized, deduplicated article URLs in
// document order, capped at Request.MaxLinks.
type Discoverer interface {
	Name() string
	Discover(ctx context.Context, req Request) ([]string, error)
}

// Registry keeps a mapping from strategy names to their implementations.
type Registry struct {
	discoverers map[string]Discoverer
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{discoverers: map[string]Discoverer{}}
}

// Register adds or replaces a discovery strategy.
func (r *Registry) Register(d Discoverer) {
	if r.discoverers == nil {
		r.discoverers = map[string]Discoverer{}
	}
	r.discoverers[d.Name()] = d
}

// Resolve returns a strategy by name or an error if it is absent. An empty
// name resolves to the listing strategy.
func (r *Registry) Resolve(name string) (Discoverer, error) {
	if name == "" {
		name = "listing"
	}
	if d, ok := r.discoverers[name]; ok {
		return d, nil
	}
	return nil, fmt.Errorf("discoverer %s is not registered", name)
}
