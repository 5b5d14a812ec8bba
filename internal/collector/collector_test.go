package collector

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ContentCurator/internal/domain"
)

type stubAdapter struct {
	kind string
}

func (s stubAdapter) SourceKind() string { return s.kind }

func (s stubAdapter) Collect(context.Context) ([]domain.CollectedItem, error) { return nil, nil }

func TestRegistryBuild(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	reg.Register(domain.KindFeed, func(src domain.Source) (Adapter, error) {
		return stubAdapter{kind: "rss:" + src.Locator}, nil
	})

	adapter, err := reg.Build(domain.Source{Kind: domain.KindFeed, Locator: "u"})
	require.NoError(t, err)
	assert.Equal(t, "rss:u", adapter.SourceKind())
}

func TestRegistryUnknownKind(t *testing.T) {
	t.Parallel()

	_, err := NewRegistry().Build(domain.Source{Kind: "carrier-pigeon"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnknownSourceKind)
	assert.Contains(t, err.Error(), "carrier-pigeon")
}

func TestRegistryFactoryError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	reg := NewRegistry()
	reg.Register(domain.KindWeb, func(domain.Source) (Adapter, error) { return nil, boom })

	_, err := reg.Build(domain.Source{Kind: domain.KindWeb})
	assert.ErrorIs(t, err, boom)
}

func TestRegisterReplaces(t *testing.T) {
	t.Parallel()

	var reg Registry
	reg.Register(domain.KindWeb, func(domain.Source) (Adapter, error) { return stubAdapter{kind: "old"}, nil })
	reg.Register(domain.KindWeb, func(domain.Source) (Adapter, error) { return stubAdapter{kind: "new"}, nil })

	adapter, err := reg.Build(domain.Source{Kind: domain.KindWeb})
	require.NoError(t, err)
	assert.Equal(t, "new", adapter.SourceKind())
	assert.Len(t, reg.Kinds(), 1)
}

func TestOptions(t *testing.T) {
	t.Parallel()

	opts := Options{
		"n":     float64(7),
		"s":     "12",
		"flag":  true,
		"sflag": "true",
		"list":  []any{"a", 3, "b"},
		"sel":   map[string]any{"items": "li", "bad": 1},
		"name":  "x",
		"empty": "",
	}

	assert.Equal(t, 7, opts.Int("n", 0))
	assert.Equal(t, 12, opts.Int("s", 0))
	assert.Equal(t, 5, opts.Int("missing", 5))
	assert.True(t, opts.Bool("flag", false))
	assert.True(t, opts.Bool("sflag", false))
	assert.False(t, opts.Bool("missing", false))
	assert.Equal(t, []string{"a", "b"}, opts.Strings("list"))
	assert.Equal(t, map[string]string{"items": "li"}, opts.Map("sel"))
	assert.Equal(t, "x", opts.String("name", "d"))
	assert.Equal(t, "d", opts.String("empty", "d"))
	assert.Equal(t, "7", opts.String("n", ""))

	_, ok := opts.Float("name")
	assert.False(t, ok)
}
