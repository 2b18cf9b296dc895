// Package metadata integrates external item-metadata search providers. Each
// provider is a Source registered under a string id; handlers dispatch on the
// id and treat unknown ids as not found. An empty result list is a valid
// answer, not an error.
package metadata

import (
	"context"
	"fmt"
	"sync"

	"github.com/collectiq/collectiq-backend/internal/apperr"
)

// Candidate is one search hit from an external source.
type Candidate struct {
	Title      string `json:"title"`
	Creator    string `json:"creator,omitempty"`
	Year       int    `json:"year,omitempty"`
	Identifier string `json:"identifier,omitempty"`
	ImageURL   string `json:"image_url,omitempty"`
	Source     string `json:"source"`
}

// Source is an external search provider.
type Source interface {
	ID() string
	Search(ctx context.Context, query string) ([]Candidate, error)
}

// Registry maps source ids to providers.
type Registry struct {
	mu      sync.RWMutex
	sources map[string]Source
}

func NewRegistry() *Registry {
	return &Registry{sources: make(map[string]Source)}
}

func (r *Registry) Register(s Source) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources[s.ID()] = s
}

// Search dispatches a query to the named source.
func (r *Registry) Search(ctx context.Context, sourceID, query string) ([]Candidate, error) {
	r.mu.RLock()
	src, ok := r.sources[sourceID]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("metadata source %q: %w", sourceID, apperr.ErrNotFound)
	}
	results, err := src.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("metadata source %q: %w", sourceID, err)
	}
	if results == nil {
		results = []Candidate{}
	}
	return results, nil
}

// IDs lists the registered source ids.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.sources))
	for id := range r.sources {
		ids = append(ids, id)
	}
	return ids
}
