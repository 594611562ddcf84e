package graph

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/smith-xyz/golang-component-map/pkg/models"
)

// GraphBuilder produces complete graphs.
type GraphBuilder interface {
	Build(ctx context.Context) (*models.Graph, error)
}

// BuilderFunc adapts a function to the GraphBuilder interface.
type BuilderFunc func(ctx context.Context) (*models.Graph, error)

// Build calls f.
func (f BuilderFunc) Build(ctx context.Context) (*models.Graph, error) {
	return f(ctx)
}

// Observer is notified after every build attempt. g is nil when err is not.
type Observer interface {
	ObserveBuild(g *models.Graph, duration time.Duration, err error)
}

// Store publishes the most recent successfully built graph. Readers never
// block; refreshes are serialized and swap the graph in only on success.
type Store struct {
	builder   GraphBuilder
	observers []Observer

	mu      sync.Mutex
	current atomic.Pointer[models.Graph]
	builtAt atomic.Int64 // unix nanos
}

// NewStore creates a store over builder. Nothing is built until the first
// Current or Refresh call.
func NewStore(builder GraphBuilder, observers ...Observer) *Store {
	return &Store{
		builder:   builder,
		observers: observers,
	}
}

// AddObserver registers o for subsequent builds.
func (s *Store) AddObserver(o Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, o)
}

// Current returns the published graph, building it on first access.
func (s *Store) Current(ctx context.Context) (*models.Graph, error) {
	if g := s.current.Load(); g != nil {
		return g, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// Another caller may have finished the cold start while we waited.
	if g := s.current.Load(); g != nil {
		return g, nil
	}
	return s.refreshLocked(ctx)
}

// Peek returns the published graph without building; nil before the first build.
func (s *Store) Peek() *models.Graph {
	return s.current.Load()
}

// BuiltAt returns when the published graph was built; zero before the first build.
func (s *Store) BuiltAt() time.Time {
	nanos := s.builtAt.Load()
	if nanos == 0 {
		return time.Time{}
	}
	return time.Unix(0, nanos)
}

// Refresh builds a new graph and publishes it. On failure the previously
// published graph stays in place and the error is returned.
func (s *Store) Refresh(ctx context.Context) (*models.Graph, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshLocked(ctx)
}

func (s *Store) refreshLocked(ctx context.Context) (*models.Graph, error) {
	if s.builder == nil {
		return nil, ErrNoSource
	}

	start := time.Now()
	g, err := s.builder.Build(ctx)
	duration := time.Since(start)

	for _, o := range s.observers {
		o.ObserveBuild(g, duration, err)
	}
	if err != nil {
		return nil, err
	}

	s.current.Store(g)
	s.builtAt.Store(time.Now().UnixNano())
	return g, nil
}
