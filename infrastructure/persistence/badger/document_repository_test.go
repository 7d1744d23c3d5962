package badger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"notegraph/domain/core/entities"
	"notegraph/domain/ot"
	pkgerrors "notegraph/pkg/errors"
)

func openTestRepo(t *testing.T) *DocumentRepository {
	t.Helper()
	repo, err := OpenInMemory(zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestSnapshotRoundTrip(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	doc := entities.NewDocument("Graph Theory")
	_, err := doc.ApplyAccepted(ot.Diff("s1", 0, "", "See [[Topology]] and [text](note://abc)."))
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, doc))

	loaded, err := repo.Load(ctx, doc.ID())
	require.NoError(t, err)
	assert.Equal(t, doc.Title(), loaded.Title())
	assert.Equal(t, doc.Content(), loaded.Content())
	assert.Equal(t, doc.Version(), loaded.Version())
	// Reconstructed documents treat pre-snapshot history as truncated.
	assert.Equal(t, doc.Version(), loaded.OldestRetained())
}

func TestLoadMissingReturnsNotFound(t *testing.T) {
	repo := openTestRepo(t)
	_, err := repo.Load(context.Background(), entities.NewDocument("x").ID())
	require.Error(t, err)
	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeNotFound))
}

func TestOperationLogReplaysInVersionOrder(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	doc := entities.NewDocument("Log")
	require.NoError(t, repo.Save(ctx, doc))

	content := ""
	for i, next := range []string{"a", "ab", "abc"} {
		op := ot.Diff("s1", int64(i), content, next)
		require.NoError(t, repo.AppendOperation(ctx, doc.ID(), int64(i+1), op))
		content = next
	}

	ops, err := repo.Operations(ctx, doc.ID())
	require.NoError(t, err)
	require.Len(t, ops, 3)

	replayed := ""
	for _, op := range ops {
		replayed, err = op.Apply(replayed)
		require.NoError(t, err)
	}
	assert.Equal(t, "abc", replayed)
}

func TestTitleIndexFollowsRename(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	doc := entities.NewDocument("Old Title")
	require.NoError(t, repo.Save(ctx, doc))

	id, ok := repo.ResolveTitle(ctx, "old title")
	require.True(t, ok)
	assert.True(t, id.Equals(doc.ID()))

	doc.Rename("New Title")
	require.NoError(t, repo.Save(ctx, doc))

	_, ok = repo.ResolveTitle(ctx, "Old Title")
	assert.False(t, ok)
	id, ok = repo.ResolveTitle(ctx, "New Title")
	require.True(t, ok)
	assert.True(t, id.Equals(doc.ID()))
}

func TestDeleteRemovesEverything(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	doc := entities.NewDocument("Doomed")
	require.NoError(t, repo.Save(ctx, doc))
	require.NoError(t, repo.AppendOperation(ctx, doc.ID(), 1, ot.Diff("s1", 0, "", "x")))

	require.NoError(t, repo.Delete(ctx, doc.ID()))

	_, err := repo.Load(ctx, doc.ID())
	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeNotFound))
	_, ok := repo.ResolveTitle(ctx, "Doomed")
	assert.False(t, ok)
	ops, err := repo.Operations(ctx, doc.ID())
	require.NoError(t, err)
	assert.Empty(t, ops)

	err = repo.Delete(ctx, doc.ID())
	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeNotFound))
}

func TestListReturnsAllDocuments(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	titles := map[string]bool{"Alpha": false, "Beta": false}
	for title := range titles {
		require.NoError(t, repo.Save(ctx, entities.NewDocument(title)))
	}

	docs, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	for _, d := range docs {
		titles[d.Title()] = true
	}
	for title, seen := range titles {
		assert.True(t, seen, title)
	}
}
