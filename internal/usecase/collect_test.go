package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ContentCurator/internal/domain"
)

func TestCollectAllIsolatesSourceFailures(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	ok := store.addSource(domain.Source{ID: "ok", Kind: domain.KindFeed, Locator: "good", Active: true})
	bad := store.addSource(domain.Source{ID: "bad", Kind: domain.KindFeed, Locator: "broken", Active: true})
	unknown := store.addSource(domain.Source{ID: "unknown", Kind: "fax", Locator: "x", Active: true})
	store.addSource(domain.Source{ID: "off", Kind: domain.KindFeed, Locator: "good", Active: false})

	reg := registryFor(domain.KindFeed, map[string]stubAdapter{
		"good": {kind: "rss", items: []domain.CollectedItem{
			{ExternalID: "a", Title: "A"},
			{ExternalID: "b", Title: "B"},
		}},
		"broken": {kind: "rss", err: errors.New("connection refused")},
	})
	m := NewCollectorManager(store, store, reg, 2, nil)

	outcomes, err := m.CollectAll(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, outcomes, 3)

	assert.Equal(t, ok.ID, outcomes[0].SourceID)
	assert.Equal(t, 2, outcomes[0].Collected)
	assert.Equal(t, 2, outcomes[0].Saved)
	assert.False(t, outcomes[0].Failed())

	assert.Equal(t, bad.ID, outcomes[1].SourceID)
	assert.True(t, outcomes[1].Failed())
	assert.Contains(t, outcomes[1].Error, "connection refused")

	assert.Equal(t, unknown.ID, outcomes[2].SourceID)
	assert.ErrorIs(t, outcomes[2].Err, domain.ErrUnknownSourceKind)

	// Every attempted source is stamped, including failures.
	assert.Equal(t, 1, store.touched["ok"])
	assert.Equal(t, 1, store.touched["bad"])
	assert.Equal(t, 1, store.touched["unknown"])
	assert.Zero(t, store.touched["off"])

	assert.Equal(t, 2, store.itemCount())
	it, found := store.item("ok", "a")
	require.True(t, found)
	assert.False(t, it.CollectedAt.IsZero())
}

func TestCollectAllReportsMalformedConfigPerSource(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	store.addSource(domain.Source{ID: "bad", Kind: domain.KindFeed, Locator: "good", Active: true,
		ConfigErr: errors.New("malformed source config: decode json: invalid character 'o'")})
	store.addSource(domain.Source{ID: "good", Kind: domain.KindFeed, Locator: "good", Active: true})
	reg := registryFor(domain.KindFeed, map[string]stubAdapter{
		"good": {kind: "rss", items: []domain.CollectedItem{{ExternalID: "a", Title: "A"}}},
	})
	m := NewCollectorManager(store, store, reg, 2, nil)

	outcomes, err := m.CollectAll(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, outcomes, 2)

	assert.True(t, outcomes[0].Failed())
	assert.Contains(t, outcomes[0].Error, "malformed source config")
	assert.Zero(t, outcomes[0].Collected)

	assert.False(t, outcomes[1].Failed())
	assert.Equal(t, 1, outcomes[1].Saved)
	_, found := store.item("good", "a")
	assert.True(t, found)
	_, found = store.item("bad", "a")
	assert.False(t, found)
	assert.Equal(t, 1, store.touched["bad"])
}

func TestCollectAllTwiceKeepsOneRowPerExternalID(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	store.addSource(domain.Source{ID: "s", Kind: domain.KindFeed, Locator: "good", Active: true})
	reg := registryFor(domain.KindFeed, map[string]stubAdapter{
		"good": {kind: "rss", items: []domain.CollectedItem{{ExternalID: "a", Title: "A"}}},
	})
	m := NewCollectorManager(store, store, reg, 0, nil)

	for range 2 {
		_, err := m.CollectAll(context.Background(), "")
		require.NoError(t, err)
	}
	assert.Equal(t, 1, store.itemCount())
	assert.Equal(t, 2, store.touched["s"])
}

func TestCollectAllSkipsFailedUpserts(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	store.failUpsert["b"] = true
	store.addSource(domain.Source{ID: "s", Kind: domain.KindFeed, Locator: "good", Active: true})
	reg := registryFor(domain.KindFeed, map[string]stubAdapter{
		"good": {kind: "rss", items: []domain.CollectedItem{
			{ExternalID: "a"}, {ExternalID: "b"}, {ExternalID: "c"},
		}},
	})

	outcomes, err := NewCollectorManager(store, store, reg, 1, nil).CollectAll(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.Equal(t, 3, outcomes[0].Collected)
	assert.Equal(t, 2, outcomes[0].Saved)
	assert.False(t, outcomes[0].Failed())
}

func TestCollectAllRecoversAdapterPanic(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	store.addSource(domain.Source{ID: "p", Kind: domain.KindFeed, Locator: "boom", Active: true})
	store.addSource(domain.Source{ID: "s", Kind: domain.KindFeed, Locator: "good", Active: true})
	reg := registryFor(domain.KindFeed, map[string]stubAdapter{
		"boom": {kind: "rss", panic: true},
		"good": {kind: "rss", items: []domain.CollectedItem{{ExternalID: "a"}}},
	})

	outcomes, err := NewCollectorManager(store, store, reg, 4, nil).CollectAll(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, outcomes, 2)
	assert.True(t, outcomes[0].Failed())
	assert.Contains(t, outcomes[0].Error, "panic")
	assert.Equal(t, 1, outcomes[1].Saved)
	assert.Equal(t, 1, store.touched["p"])
}

func TestCollectAllScopedToTopic(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	store.addSource(domain.Source{ID: "in", TopicID: "t1", Kind: domain.KindFeed, Locator: "good", Active: true})
	store.addSource(domain.Source{ID: "out", TopicID: "t2", Kind: domain.KindFeed, Locator: "good", Active: true})
	reg := registryFor(domain.KindFeed, map[string]stubAdapter{"good": {kind: "rss"}})

	outcomes, err := NewCollectorManager(store, store, reg, 0, nil).CollectAll(context.Background(), "t1")
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.Equal(t, "in", outcomes[0].SourceID)
}

func TestCollectAllListFailure(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	store.listSourcesErr = errors.New("db down")

	_, err := NewCollectorManager(store, store, registryFor(domain.KindFeed, nil), 0, nil).CollectAll(context.Background(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
}
