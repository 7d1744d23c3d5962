package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notegraph/domain/core/entities"
	"notegraph/domain/ot"
	pkgerrors "notegraph/pkg/errors"
)

func TestSaveAndLoadRoundTrip(t *testing.T) {
	repo := NewDocumentRepository()
	ctx := context.Background()

	doc := entities.NewDocument("Graph Theory")
	op := ot.Diff("s1", 0, "", "See [[Topology]].")
	_, err := doc.ApplyAccepted(op)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, doc))

	loaded, err := repo.Load(ctx, doc.ID())
	require.NoError(t, err)
	assert.Equal(t, "Graph Theory", loaded.Title())
	assert.Equal(t, "See [[Topology]].", loaded.Content())
	assert.Equal(t, int64(1), loaded.Version())

	// Loads are detached; mutating one must not leak into the store.
	_, err = loaded.ApplyAccepted(ot.Diff("s1", 1, loaded.Content(), "changed"))
	require.NoError(t, err)
	again, err := repo.Load(ctx, doc.ID())
	require.NoError(t, err)
	assert.Equal(t, "See [[Topology]].", again.Content())
}

func TestLoadMissingDocument(t *testing.T) {
	repo := NewDocumentRepository()
	_, err := repo.Load(context.Background(), entities.NewDocument("x").ID())
	require.Error(t, err)
	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeNotFound))
}

func TestResolveTitleIsCaseInsensitive(t *testing.T) {
	repo := NewDocumentRepository()
	ctx := context.Background()

	doc := entities.NewDocument("Graph Theory")
	require.NoError(t, repo.Save(ctx, doc))

	id, ok := repo.ResolveTitle(ctx, "graph theory")
	require.True(t, ok)
	assert.True(t, id.Equals(doc.ID()))

	_, ok = repo.ResolveTitle(ctx, "unknown")
	assert.False(t, ok)
}

func TestRenameMovesTitleIndex(t *testing.T) {
	repo := NewDocumentRepository()
	ctx := context.Background()

	doc := entities.NewDocument("Old Title")
	require.NoError(t, repo.Save(ctx, doc))

	doc.Rename("New Title")
	require.NoError(t, repo.Save(ctx, doc))

	_, ok := repo.ResolveTitle(ctx, "Old Title")
	assert.False(t, ok)
	id, ok := repo.ResolveTitle(ctx, "New Title")
	require.True(t, ok)
	assert.True(t, id.Equals(doc.ID()))
}

func TestDeleteRemovesDocumentAndIndex(t *testing.T) {
	repo := NewDocumentRepository()
	ctx := context.Background()

	doc := entities.NewDocument("Doomed")
	require.NoError(t, repo.Save(ctx, doc))
	require.NoError(t, repo.AppendOperation(ctx, doc.ID(), 1, ot.Diff("s1", 0, "", "x")))

	require.NoError(t, repo.Delete(ctx, doc.ID()))
	_, err := repo.Load(ctx, doc.ID())
	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeNotFound))
	_, ok := repo.ResolveTitle(ctx, "Doomed")
	assert.False(t, ok)

	err = repo.Delete(ctx, doc.ID())
	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeNotFound))
}

func TestListSortsByTitle(t *testing.T) {
	repo := NewDocumentRepository()
	ctx := context.Background()

	for _, title := range []string{"Zettel", "Atlas", "Middle"} {
		require.NoError(t, repo.Save(ctx, entities.NewDocument(title)))
	}

	docs, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, "Atlas", docs[0].Title())
	assert.Equal(t, "Middle", docs[1].Title())
	assert.Equal(t, "Zettel", docs[2].Title())
}

func TestAppendOperationTracksLog(t *testing.T) {
	repo := NewDocumentRepository()
	ctx := context.Background()

	doc := entities.NewDocument("Log")
	require.NoError(t, repo.Save(ctx, doc))

	require.NoError(t, repo.AppendOperation(ctx, doc.ID(), 1, ot.Diff("s1", 0, "", "a")))
	require.NoError(t, repo.AppendOperation(ctx, doc.ID(), 2, ot.Diff("s1", 1, "a", "ab")))
	assert.Equal(t, 2, repo.OperationCount(doc.ID()))

	err := repo.AppendOperation(ctx, entities.NewDocument("none").ID(), 1, ot.Diff("s1", 0, "", "a"))
	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeNotFound))
}
