package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notegraph/domain/ot"
	pkgerrors "notegraph/pkg/errors"
)

func TestDocumentVersioning(t *testing.T) {
	doc := NewDocument("X")
	require.Equal(t, int64(0), doc.Version())
	require.Equal(t, "", doc.Content())

	v, err := doc.ApplyAccepted(ot.NewBuilder("s1", 0).Insert("Hello").Build())
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)
	assert.Equal(t, "Hello", doc.Content())

	v, err = doc.ApplyAccepted(ot.NewBuilder("s1", 1).Retain(5).Insert(" World").Build())
	require.NoError(t, err)
	assert.Equal(t, int64(2), v)
	assert.Equal(t, "Hello World", doc.Content())

	// History length tracks version with no gaps.
	ops, err := doc.HistorySince(0)
	require.NoError(t, err)
	assert.Len(t, ops, 2)
}

func TestApplyAcceptedRejectsMalformed(t *testing.T) {
	doc := NewDocument("X")
	_, err := doc.ApplyAccepted(ot.NewBuilder("s1", 0).Retain(3).Build())

	require.Error(t, err)
	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeMalformedOperation))
	assert.Equal(t, int64(0), doc.Version(), "failed apply must not advance the version")
	assert.Equal(t, "", doc.Content())
}

func TestHistorySince(t *testing.T) {
	doc := NewDocument("X")
	for i := 0; i < 5; i++ {
		_, err := doc.ApplyAccepted(ot.NewBuilder("s1", int64(i)).Retain(i).Insert("x").Build())
		require.NoError(t, err)
	}

	t.Run("tail of history", func(t *testing.T) {
		ops, err := doc.HistorySince(3)
		require.NoError(t, err)
		assert.Len(t, ops, 2)
	})

	t.Run("ahead of the server is a future version", func(t *testing.T) {
		_, err := doc.HistorySince(6)
		require.Error(t, err)
		assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeFutureVersion))
	})

	t.Run("behind retention is truncated", func(t *testing.T) {
		doc.TrimHistory(2)

		_, err := doc.HistorySince(1)
		require.Error(t, err)
		assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeHistoryTruncated))

		ops, err := doc.HistorySince(3)
		require.NoError(t, err)
		assert.Len(t, ops, 2)
	})
}

func TestReconstructDocument(t *testing.T) {
	orig := NewDocument("X")
	_, err := orig.ApplyAccepted(ot.NewBuilder("s1", 0).Insert("content").Build())
	require.NoError(t, err)

	doc := ReconstructDocument(orig.ID(), orig.Title(), orig.Content(), orig.Version())
	assert.Equal(t, orig.Content(), doc.Content())
	assert.Equal(t, orig.Version(), doc.Version())

	// Nothing before the snapshot is retained.
	_, err = doc.HistorySince(0)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeHistoryTruncated))
}
