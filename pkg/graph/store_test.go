package graph

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smith-xyz/golang-component-map/pkg/models"
)

type recordingObserver struct {
	mu       sync.Mutex
	failures int
	builds   int
}

func (r *recordingObserver) ObserveBuild(g *models.Graph, _ time.Duration, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		r.failures++
		return
	}
	r.builds++
}

func TestStoreColdStartBuildsOnce(t *testing.T) {
	var calls atomic.Int32
	store := NewStore(BuilderFunc(func(context.Context) (*models.Graph, error) {
		calls.Add(1)
		return models.NewGraph(nil), nil
	}))

	assert.Nil(t, store.Peek())
	assert.True(t, store.BuiltAt().IsZero())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Current(context.Background())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	assert.NotNil(t, store.Peek())
	assert.False(t, store.BuiltAt().IsZero())
}

func TestStoreFailedRefreshKeepsPreviousGraph(t *testing.T) {
	boom := errors.New("boom")
	first := models.NewGraph([]*models.Node{{ID: "game.A"}})
	fail := false

	observer := &recordingObserver{}
	store := NewStore(BuilderFunc(func(context.Context) (*models.Graph, error) {
		if fail {
			return nil, boom
		}
		return first, nil
	}), observer)

	g, err := store.Refresh(context.Background())
	require.NoError(t, err)
	require.Same(t, first, g)

	fail = true
	_, err = store.Refresh(context.Background())
	assert.ErrorIs(t, err, boom)

	current, err := store.Current(context.Background())
	require.NoError(t, err)
	assert.Same(t, first, current)
	assert.Equal(t, 1, observer.builds)
	assert.Equal(t, 1, observer.failures)
}

func TestStoreRefreshSwapsGraph(t *testing.T) {
	var generation atomic.Int32
	store := NewStore(BuilderFunc(func(context.Context) (*models.Graph, error) {
		n := generation.Add(1)
		nodes := make([]*models.Node, n)
		for i := range nodes {
			nodes[i] = &models.Node{ID: models.TypeID(string(rune('A' + i)))}
		}
		return models.NewGraph(nodes), nil
	}))

	g1, err := store.Current(context.Background())
	require.NoError(t, err)
	g2, err := store.Refresh(context.Background())
	require.NoError(t, err)

	assert.Len(t, g1.Nodes, 1, "published graphs are never mutated")
	assert.Len(t, g2.Nodes, 2)
	assert.Same(t, g2, store.Peek())
}

func TestStoreWithoutBuilder(t *testing.T) {
	_, err := NewStore(nil).Current(context.Background())
	assert.ErrorIs(t, err, ErrNoSource)
}
