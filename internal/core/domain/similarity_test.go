package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCosineSimilarity_Identity(t *testing.T) {
	v := []float32{0.3, -1.2, 4.5, 0.01}

	got, err := CosineSimilarity(v, v)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, got, 1e-9)
}

func TestCosineSimilarity_Bounds(t *testing.T) {
	pairs := [][2][]float32{
		{{1, 0}, {0, 1}},
		{{1, 2, 3}, {-1, -2, -3}},
		{{0.5, 0.5}, {100, -3}},
		{{-7, 2, 0.1}, {3, 3, 3}},
	}

	for _, p := range pairs {
		got, err := CosineSimilarity(p[0], p[1])
		require.NoError(t, err)
		assert.GreaterOrEqual(t, got, -1.0-1e-9)
		assert.LessOrEqual(t, got, 1.0+1e-9)
	}
}

func TestCosineSimilarity_Orthogonal(t *testing.T) {
	got, err := CosineSimilarity([]float32{1, 0}, []float32{0, 1})
	require.NoError(t, err)
	assert.InDelta(t, 0.0, got, 1e-9)
}

func TestCosineSimilarity_Opposite(t *testing.T) {
	got, err := CosineSimilarity([]float32{1, 2}, []float32{-1, -2})
	require.NoError(t, err)
	assert.InDelta(t, -1.0, got, 1e-9)
}

func TestCosineSimilarity_ZeroNorm(t *testing.T) {
	got, err := CosineSimilarity([]float32{0, 0, 0}, []float32{1, 2, 3})
	require.NoError(t, err)
	assert.Zero(t, got)
}

func TestCosineSimilarity_DimensionMismatch(t *testing.T) {
	_, err := CosineSimilarity([]float32{1, 2, 3, 4}, []float32{1, 2, 3, 4, 5})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestFindBest_EmptyGroup(t *testing.T) {
	g := NewGroup("empty", 1024)

	_, found, err := g.FindBest([]float32{1, 0})
	require.NoError(t, err)
	assert.False(t, found, "empty group must report no match, not an error")
}

func TestFindBest_PicksHighestSimilarity(t *testing.T) {
	g := NewGroup("docs", 1024)
	g = g.Append(EmbeddingRecord{FileID: "a", Part: 0, Embedding: []float32{0, 1}})
	g = g.Append(EmbeddingRecord{FileID: "b", Part: 3, Embedding: []float32{1, 0.1}})
	g = g.Append(EmbeddingRecord{FileID: "c", Part: 1, Embedding: []float32{-1, 0}})

	match, found, err := g.FindBest([]float32{1, 0})
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, FileID("b"), match.Record.FileID)
	assert.Equal(t, 3, match.Record.Part)
	assert.Greater(t, match.Similarity, 0.9)
}

func TestFindBest_TieKeepsEarliestRecord(t *testing.T) {
	// Two identical vectors: both score 1.0 against the query.
	g := NewGroup("docs", 1024)
	g = g.Append(EmbeddingRecord{FileID: "first", Part: 0, Embedding: []float32{2, 0}})
	g = g.Append(EmbeddingRecord{FileID: "second", Part: 0, Embedding: []float32{4, 0}})

	match, found, err := g.FindBest([]float32{1, 0})
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, FileID("first"), match.Record.FileID)
}

func TestFindBest_DimensionGuard(t *testing.T) {
	g := NewGroup("docs", 1024)
	g = g.Append(EmbeddingRecord{FileID: "a", Part: 0, Embedding: []float32{1, 2, 3, 4, 5}})

	_, _, err := g.FindBest([]float32{1, 2, 3, 4})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestGroup_AppendIsPure(t *testing.T) {
	g := NewGroup("docs", 512)
	g2 := g.Append(EmbeddingRecord{FileID: "a", Part: 0, Embedding: []float32{1}})

	assert.Zero(t, g.Len(), "original group must not be mutated")
	assert.Equal(t, 1, g2.Len())
	assert.Equal(t, 512, g2.PartSize)

	// Appending to the original after the copy must not alias storage.
	g3 := g2.Append(EmbeddingRecord{FileID: "b", Part: 1, Embedding: []float32{2}})
	assert.Equal(t, 1, g2.Len())
	assert.Equal(t, 2, g3.Len())
	assert.Equal(t, FileID("a"), g3.Embeddings[0].FileID)
	assert.Equal(t, FileID("b"), g3.Embeddings[1].FileID)
}
