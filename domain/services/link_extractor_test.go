package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notegraph/domain/core/valueobjects"
)

// staticResolver resolves titles from a fixed map, the way the storage
// collaborator does in production.
type staticResolver struct {
	byTitle map[string]valueobjects.DocumentID
}

func (r *staticResolver) ResolveTitle(_ context.Context, title string) (valueobjects.DocumentID, bool) {
	id, ok := r.byTitle[valueobjects.NormalizeTitle(title)]
	return id, ok
}

func TestExtract(t *testing.T) {
	from := valueobjects.NewDocumentID()
	other := valueobjects.NewDocumentID()
	resolver := &staticResolver{byTitle: map[string]valueobjects.DocumentID{
		"other note": other,
	}}
	extractor := NewLinkExtractor(resolver)
	ctx := context.Background()

	t.Run("resolved wiki link", func(t *testing.T) {
		links := extractor.Extract(ctx, from, "See [[Other Note]] for details")

		require.Len(t, links, 1)
		assert.True(t, links[0].To.Equals(other))
		assert.Equal(t, "Other Note", links[0].Anchor)
		assert.False(t, links[0].IsBroken())
	})

	t.Run("unresolved title becomes placeholder", func(t *testing.T) {
		links := extractor.Extract(ctx, from, "See [[Missing Note]]")

		require.Len(t, links, 1)
		assert.True(t, links[0].To.IsPlaceholder())
		assert.True(t, links[0].IsBroken())
		assert.Equal(t, "Missing Note", links[0].Anchor)
	})

	t.Run("placeholder identity is stable across runs", func(t *testing.T) {
		first := extractor.Extract(ctx, from, "[[Missing Note]]")
		second := extractor.Extract(ctx, from, "[[missing note]]")

		require.Len(t, first, 1)
		require.Len(t, second, 1)
		assert.True(t, first[0].To.Equals(second[0].To))
	})

	t.Run("note scheme links", func(t *testing.T) {
		links := extractor.Extract(ctx, from, "see [the other](note://"+other.String()+")")

		require.Len(t, links, 1)
		assert.True(t, links[0].To.Equals(other))
		assert.Equal(t, "the other", links[0].Anchor)
	})

	t.Run("duplicates collapse, distinct anchors stay distinct", func(t *testing.T) {
		content := "[[Other Note]] then [[Other Note]] then [other](note://" + other.String() + ")"
		links := extractor.Extract(ctx, from, content)

		require.Len(t, links, 2)
	})

	t.Run("self references are dropped", func(t *testing.T) {
		resolver.byTitle["me"] = from
		links := extractor.Extract(ctx, from, "[[Me]]")

		assert.Empty(t, links)
	})

	t.Run("no links", func(t *testing.T) {
		assert.Empty(t, extractor.Extract(ctx, from, "plain text [not a link] (nope)"))
	})
}

func TestExtractIsIdempotent(t *testing.T) {
	from := valueobjects.NewDocumentID()
	extractor := NewLinkExtractor(&staticResolver{byTitle: map[string]valueobjects.DocumentID{}})
	content := "links to [[One]] and [[Two]] and [[One]]"

	first := extractor.Extract(context.Background(), from, content)
	second := extractor.Extract(context.Background(), from, content)

	assert.Equal(t, first, second)
}

func TestSuggestLinks(t *testing.T) {
	titles := []string{"Graph Theory", "Notes", "Unrelated"}

	suggestions := SuggestLinks("I was reading about graph theory today", titles)

	require.NotEmpty(t, suggestions)
	assert.Equal(t, "Graph Theory", suggestions[0].Title)
	assert.Equal(t, "[[Graph Theory]]", suggestions[0].SuggestedLink)
	assert.Equal(t, 1.0, suggestions[0].Confidence)

	for _, s := range suggestions {
		assert.NotEqual(t, "Unrelated", s.Title)
	}
}
