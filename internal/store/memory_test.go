package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/balcao/balcao/internal/model"
)

var t0 = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

func newCategories(t *testing.T, opts ...Option) *Memory[model.Category, *model.Category] {
	t.Helper()
	clock := &stepClock{now: t0}
	m, err := NewMemory[model.Category](model.KindCategories, append([]Option{WithClock(clock.Now)}, opts...)...)
	require.NoError(t, err)
	return m
}

func TestMemory_AddThenList(t *testing.T) {
	ctx := context.Background()
	m := newCategories(t)

	added, err := m.Add(ctx, "admin-1", model.Category{Name: "Bebidas", Icon: "🥤"})
	require.NoError(t, err)

	_, err = ulid.ParseStrict(added.ID)
	require.NoError(t, err)
	assert.Equal(t, "admin-1", added.CreatedBy)
	assert.False(t, added.CreatedAt.IsZero())
	assert.Equal(t, added.CreatedAt, added.UpdatedAt)

	list, err := m.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, added, list[0])
}

func TestMemory_ListInsertionOrder(t *testing.T) {
	ctx := context.Background()
	m := newCategories(t)

	var ids []string
	for _, name := range []string{"Zeta", "Alfa", "Meio"} {
		c, err := m.Add(ctx, "u", model.Category{Name: name})
		require.NoError(t, err)
		ids = append(ids, c.ID)
	}

	list, err := m.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	for i, c := range list {
		assert.Equal(t, ids[i], c.ID)
	}
}

func TestMemory_ListEmptyIsNotNil(t *testing.T) {
	list, err := newCategories(t).List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestMemory_AddIgnoresSuppliedIdentity(t *testing.T) {
	ctx := context.Background()
	m := newCategories(t)

	first, err := m.Add(ctx, "u", model.Category{Name: "Bebidas"})
	require.NoError(t, err)

	in := model.Category{Name: "Outra"}
	in.ID = first.ID
	in.CreatedBy = "forged"

	second, err := m.Add(ctx, "u", in)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, "u", second.CreatedBy)

	got, err := m.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "Bebidas", got.Name)
}

func TestMemory_UpdatePreservesIdentity(t *testing.T) {
	ctx := context.Background()
	m := newCategories(t)

	added, err := m.Add(ctx, "admin-1", model.Category{Name: "Bebidas", Icon: "a"})
	require.NoError(t, err)

	in := model.Category{Name: "Bebidas Geladas", Icon: "b"}
	in.ID = added.ID
	in.CreatedBy = "someone-else"
	in.CreatedAt = t0.Add(-time.Hour)

	updated, err := m.Update(ctx, in)
	require.NoError(t, err)

	assert.Equal(t, added.ID, updated.ID)
	assert.Equal(t, "admin-1", updated.CreatedBy)
	assert.Equal(t, added.CreatedAt, updated.CreatedAt)
	assert.True(t, updated.UpdatedAt.After(added.UpdatedAt))
	assert.Equal(t, "Bebidas Geladas", updated.Name)

	got, err := m.Get(ctx, added.ID)
	require.NoError(t, err)
	assert.Equal(t, updated, got)
}

func TestMemory_UpdateMissing(t *testing.T) {
	in := model.Category{Name: "Nada"}
	in.ID = "01HZX5V4Q6M2N8K3B7C9D1E2F3"

	_, err := newCategories(t).Update(context.Background(), in)
	assert.True(t, errors.Is(err, ErrNotFound), "got %v", err)
}

func TestMemory_RemoveTwice(t *testing.T) {
	ctx := context.Background()
	m := newCategories(t)

	a, err := m.Add(ctx, "u", model.Category{Name: "A"})
	require.NoError(t, err)
	b, err := m.Add(ctx, "u", model.Category{Name: "B"})
	require.NoError(t, err)

	require.NoError(t, m.Remove(ctx, a.ID))
	err = m.Remove(ctx, a.ID)
	assert.True(t, errors.Is(err, ErrNotFound), "got %v", err)

	_, err = m.Get(ctx, a.ID)
	assert.True(t, errors.Is(err, ErrNotFound))

	list, err := m.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, b.ID, list[0].ID)
}

func TestMemory_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := newCategories(t)
	_, err := m.Add(ctx, "u", model.Category{Name: "A"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, m.Len())
}

func TestMemory_ConcurrentAddsUniqueIDs(t *testing.T) {
	ctx := context.Background()
	m, err := NewMemory[model.Category](model.KindCategories)
	require.NoError(t, err)

	const n = 200
	var wg sync.WaitGroup
	ids := make([]string, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c, err := m.Add(ctx, "u", model.Category{Name: fmt.Sprintf("cat-%d", i)})
			if assert.NoError(t, err) {
				ids[i] = c.ID
			}
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool, n)
	for _, id := range ids {
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
	assert.Equal(t, n, m.Len())
}

func TestMemory_SnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	snap, err := NewSnapshotter(dir, model.KindCategories)
	require.NoError(t, err)

	m := newCategories(t, WithSnapshot(snap))
	a, err := m.Add(ctx, "u", model.Category{Name: "A"})
	require.NoError(t, err)
	b, err := m.Add(ctx, "u", model.Category{Name: "B"})
	require.NoError(t, err)
	require.NoError(t, m.Remove(ctx, a.ID))

	_, err = os.Stat(filepath.Join(dir, "categories.json"))
	require.NoError(t, err)

	reloaded := newCategories(t, WithSnapshot(snap))
	list, err := reloaded.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, b.ID, list[0].ID)
	assert.Equal(t, "B", list[0].Name)
	assert.True(t, b.CreatedAt.Equal(list[0].CreatedAt))
}

func TestMemory_SnapshotFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	snap, err := NewSnapshotter(dir, model.KindCategories)
	require.NoError(t, err)
	m := newCategories(t, WithSnapshot(snap))

	// A directory at the target path makes the rename fail.
	require.NoError(t, os.Mkdir(snap.Path(), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(snap.Path(), "keep"), []byte("x"), 0o600))

	_, err = m.Add(ctx, "u", model.Category{Name: "A"})
	require.Error(t, err)
	assert.Equal(t, 0, m.Len())
}

func TestMemory_CorruptSnapshot(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "categories.json"), []byte("{not json"), 0o600))

	snap, err := NewSnapshotter(dir, model.KindCategories)
	require.NoError(t, err)

	_, err = NewMemory[model.Category](model.KindCategories, WithSnapshot(snap))
	assert.Error(t, err)
}
