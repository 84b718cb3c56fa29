package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calder-labs/askdoc-cli/internal/core/domain"
)

func TestRoundTrip(t *testing.T) {
	s := NewGroupStore()
	ctx := context.Background()

	g := domain.NewGroup("g", 100)
	g = g.Append(domain.EmbeddingRecord{FileID: "f", Part: 0, Embedding: []float32{1, 2}})
	require.NoError(t, s.Save(ctx, g))

	loaded, err := s.Load(ctx, "g")
	require.NoError(t, err)
	assert.Equal(t, g.Embeddings, loaded.Embeddings)
	assert.Equal(t, g.PartSize, loaded.PartSize)
}

func TestLoad_ReturnsCopy(t *testing.T) {
	s := NewGroupStore()
	ctx := context.Background()

	g := domain.NewGroup("g", 100)
	g = g.Append(domain.EmbeddingRecord{FileID: "f", Part: 0, Embedding: []float32{1}})
	require.NoError(t, s.Save(ctx, g))

	loaded, err := s.Load(ctx, "g")
	require.NoError(t, err)
	loaded.Embeddings[0].FileID = "mutated"

	again, err := s.Load(ctx, "g")
	require.NoError(t, err)
	assert.Equal(t, domain.FileID("f"), again.Embeddings[0].FileID)
}

func TestNotFoundAndDelete(t *testing.T) {
	s := NewGroupStore()
	ctx := context.Background()

	_, err := s.Load(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrGroupNotFound)

	require.NoError(t, s.Save(ctx, domain.NewGroup("g", 10)))
	require.NoError(t, s.Delete(ctx, "g"))
	assert.ErrorIs(t, s.Delete(ctx, "g"), domain.ErrGroupNotFound)
}

func TestList(t *testing.T) {
	s := NewGroupStore()
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, domain.NewGroup("b", 10)))
	require.NoError(t, s.Save(ctx, domain.NewGroup("a", 10)))

	names, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, names)
}
