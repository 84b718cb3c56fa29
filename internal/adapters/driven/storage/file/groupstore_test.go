package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calder-labs/askdoc-cli/internal/core/domain"
)

func newStore(t *testing.T) *GroupStore {
	t.Helper()
	s, err := NewGroupStore(t.TempDir())
	require.NoError(t, err)
	return s
}

func TestLoad_NotFound(t *testing.T) {
	s := newStore(t)

	_, err := s.Load(context.Background(), "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrGroupNotFound)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	group := domain.NewGroup("default", 1024)
	group = group.Append(domain.EmbeddingRecord{FileID: "f1", Part: 0, Embedding: []float32{0.1, 0.2, 0.3}})
	group = group.Append(domain.EmbeddingRecord{FileID: "f1", Part: 1, Embedding: []float32{-0.4, 0.5, 0.6}})

	require.NoError(t, s.Save(ctx, group))

	loaded, err := s.Load(ctx, "default")
	require.NoError(t, err)
	assert.Equal(t, group.PartSize, loaded.PartSize)
	assert.Equal(t, group.Embeddings, loaded.Embeddings)
	assert.Equal(t, "default", loaded.Name)
}

func TestSave_AppendThenReload(t *testing.T) {
	// Round-trip law: Save(Append(Load(g), r)); Load(g) equals original + r.
	s := newStore(t)
	ctx := context.Background()

	group := domain.NewGroup("notes", 512)
	group = group.Append(domain.EmbeddingRecord{FileID: "a", Part: 0, Embedding: []float32{1, 0}})
	require.NoError(t, s.Save(ctx, group))

	loaded, err := s.Load(ctx, "notes")
	require.NoError(t, err)

	rec := domain.EmbeddingRecord{FileID: "b", Part: 0, Embedding: []float32{0, 1}}
	require.NoError(t, s.Save(ctx, loaded.Append(rec)))

	final, err := s.Load(ctx, "notes")
	require.NoError(t, err)
	require.Equal(t, 2, final.Len())
	assert.Equal(t, domain.FileID("a"), final.Embeddings[0].FileID)
	assert.Equal(t, rec, final.Embeddings[1])
}

func TestSave_WholeUnitOverwrite(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	big := domain.NewGroup("g", 256)
	for i := 0; i < 10; i++ {
		big = big.Append(domain.EmbeddingRecord{FileID: "f", Part: i, Embedding: []float32{float32(i)}})
	}
	require.NoError(t, s.Save(ctx, big))

	small := domain.NewGroup("g", 256)
	small = small.Append(domain.EmbeddingRecord{FileID: "f", Part: 0, Embedding: []float32{9}})
	require.NoError(t, s.Save(ctx, small))

	loaded, err := s.Load(ctx, "g")
	require.NoError(t, err)
	assert.Equal(t, 1, loaded.Len(), "save replaces the whole unit, never appends on disk")
}

func TestSave_EmptyNameRejected(t *testing.T) {
	s := newStore(t)

	err := s.Save(context.Background(), domain.Group{PartSize: 100})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestList(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, domain.NewGroup("zeta", 100)))
	require.NoError(t, s.Save(ctx, domain.NewGroup("alpha", 100)))
	require.NoError(t, s.Save(ctx, domain.NewGroup("with spaces", 100)))

	names, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "with spaces", "zeta"}, names)
}

func TestDelete(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, domain.NewGroup("gone", 100)))
	require.NoError(t, s.Delete(ctx, "gone"))

	_, err := s.Load(ctx, "gone")
	assert.ErrorIs(t, err, domain.ErrGroupNotFound)

	err = s.Delete(ctx, "gone")
	assert.ErrorIs(t, err, domain.ErrGroupNotFound)
}

func TestSave_LeavesNoTempFiles(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, domain.NewGroup("clean", 100)))

	entries, err := os.ReadDir(s.Dir())
	require.NoError(t, err)
	for _, e := range entries {
		assert.Equal(t, ".json", filepath.Ext(e.Name()))
	}
}

func TestPersistedShape(t *testing.T) {
	// The on-disk keys are part of the storage contract.
	s := newStore(t)
	ctx := context.Background()

	g := domain.NewGroup("shape", 64)
	g = g.Append(domain.EmbeddingRecord{FileID: "f", Part: 2, Embedding: []float32{1.5}})
	require.NoError(t, s.Save(ctx, g))

	raw, err := os.ReadFile(filepath.Join(s.Dir(), "shape.json"))
	require.NoError(t, err)

	for _, key := range []string{`"PartSize"`, `"Embeddings"`, `"FileID"`, `"Part"`, `"Embedding"`} {
		assert.Contains(t, string(raw), key)
	}
}
