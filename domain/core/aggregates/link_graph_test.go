package aggregates

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notegraph/domain/core/entities"
	"notegraph/domain/core/valueobjects"
)

func TestUpsertEdges(t *testing.T) {
	docA := valueobjects.NewDocumentID()
	docB := valueobjects.NewDocumentID()

	t.Run("backlink symmetry", func(t *testing.T) {
		g := NewLinkGraph()
		g.RegisterDocument(docA, "A")
		g.RegisterDocument(docB, "B")

		added, removed := g.UpsertEdges(docA, []entities.Link{entities.NewLink(docA, docB, "B")})
		require.Len(t, added, 1)
		assert.Empty(t, removed)

		backlinks := g.Backlinks(docB)
		require.Len(t, backlinks, 1)
		assert.True(t, backlinks[0].From.Equals(docA))
		assert.Equal(t, "B", backlinks[0].Anchor)
		assert.False(t, backlinks[0].Broken)

		// Re-saving A without the reference removes the backlink.
		added, removed = g.UpsertEdges(docA, nil)
		assert.Empty(t, added)
		require.Len(t, removed, 1)
		assert.Empty(t, g.Backlinks(docB))
	})

	t.Run("replace is atomic and exact", func(t *testing.T) {
		g := NewLinkGraph()
		g.RegisterDocument(docA, "A")
		g.RegisterDocument(docB, "B")
		docC := valueobjects.NewDocumentID()
		g.RegisterDocument(docC, "C")

		g.UpsertEdges(docA, []entities.Link{
			entities.NewLink(docA, docB, "B"),
			entities.NewLink(docA, docB, "also B"),
		})
		added, removed := g.UpsertEdges(docA, []entities.Link{
			entities.NewLink(docA, docB, "B"),
			entities.NewLink(docA, docC, "C"),
		})

		require.Len(t, added, 1)
		assert.True(t, added[0].To.Equals(docC))
		require.Len(t, removed, 1)
		assert.Equal(t, "also B", removed[0].Anchor)

		require.Len(t, g.Backlinks(docB), 1)
		require.Len(t, g.Backlinks(docC), 1)
	})

	t.Run("unchanged edge set yields no delta", func(t *testing.T) {
		g := NewLinkGraph()
		g.RegisterDocument(docA, "A")
		edges := []entities.Link{entities.NewLink(docA, docB, "B")}

		g.UpsertEdges(docA, edges)
		added, removed := g.UpsertEdges(docA, edges)

		assert.Empty(t, added)
		assert.Empty(t, removed)
	})

	t.Run("duplicate edges collapse", func(t *testing.T) {
		g := NewLinkGraph()
		g.RegisterDocument(docA, "A")
		link := entities.NewLink(docA, docB, "B")

		g.UpsertEdges(docA, []entities.Link{link, link, link})

		assert.Len(t, g.Outgoing(docA), 1)
	})
}

func TestPlaceholderNodes(t *testing.T) {
	docA := valueobjects.NewDocumentID()
	missing := valueobjects.NewPlaceholderID("Missing Note")

	g := NewLinkGraph()
	g.RegisterDocument(docA, "A")
	g.UpsertEdges(docA, []entities.Link{entities.NewLink(docA, missing, "Missing Note")})

	t.Run("referenced but not created documents appear as placeholders", func(t *testing.T) {
		var found bool
		for _, n := range g.Nodes() {
			if n.ID.Equals(missing) {
				found = true
				assert.True(t, n.Placeholder)
			}
		}
		assert.True(t, found)

		backlinks := g.Backlinks(missing)
		require.Len(t, backlinks, 1)
		assert.True(t, backlinks[0].Broken)
	})

	t.Run("placeholder promotes to document on creation", func(t *testing.T) {
		g.RegisterDocument(missing, "Missing Note")

		backlinks := g.Backlinks(missing)
		require.Len(t, backlinks, 1)
		assert.False(t, backlinks[0].Broken)
	})

	t.Run("a new document adopts its placeholder's links", func(t *testing.T) {
		g := NewLinkGraph()
		src := valueobjects.NewDocumentID()
		ph := valueobjects.NewPlaceholderID("Gamma")
		g.RegisterDocument(src, "Source")
		g.UpsertEdges(src, []entities.Link{entities.NewLink(src, ph, "Gamma")})

		// The document is created under its own id, not the placeholder's.
		target := valueobjects.NewDocumentID()
		adopted := g.RegisterDocument(target, "Gamma")
		require.Len(t, adopted, 1)
		assert.True(t, adopted[0].From.Equals(src))
		assert.True(t, adopted[0].To.Equals(target))

		backlinks := g.Backlinks(target)
		require.Len(t, backlinks, 1)
		assert.False(t, backlinks[0].Broken)

		out := g.Outgoing(src)
		require.Len(t, out, 1)
		assert.True(t, out[0].To.Equals(target))

		_, ok := g.Node(ph)
		assert.False(t, ok)
	})

	t.Run("orphaned placeholders are pruned", func(t *testing.T) {
		other := valueobjects.NewPlaceholderID("Ephemeral")
		g.UpsertEdges(docA, []entities.Link{entities.NewLink(docA, other, "Ephemeral")})
		g.UpsertEdges(docA, nil)

		for _, n := range g.Nodes() {
			assert.False(t, n.ID.Equals(other))
		}
	})
}

func TestRemoveDocument(t *testing.T) {
	docA := valueobjects.NewDocumentID()
	docB := valueobjects.NewDocumentID()

	g := NewLinkGraph()
	g.RegisterDocument(docA, "A")
	g.RegisterDocument(docB, "B")
	g.UpsertEdges(docA, []entities.Link{entities.NewLink(docA, docB, "B")})
	g.UpsertEdges(docB, []entities.Link{entities.NewLink(docB, docA, "A")})

	removed := g.RemoveDocument(docB)

	t.Run("outgoing edges of the removed document are gone", func(t *testing.T) {
		require.Len(t, removed, 1)
		assert.Empty(t, g.Backlinks(docA))
	})

	t.Run("incoming edges survive as broken links", func(t *testing.T) {
		backlinks := g.Backlinks(docB)
		require.Len(t, backlinks, 1)
		assert.True(t, backlinks[0].Broken)
	})

	t.Run("tombstone disappears when sources are re-saved", func(t *testing.T) {
		g.UpsertEdges(docA, nil)

		for _, n := range g.Nodes() {
			assert.False(t, n.ID.Equals(docB))
		}
	})
}

func TestTraversal(t *testing.T) {
	// a -> b -> c, d isolated; cycles are ordinary structure.
	a := valueobjects.NewDocumentID()
	b := valueobjects.NewDocumentID()
	c := valueobjects.NewDocumentID()
	d := valueobjects.NewDocumentID()

	g := NewLinkGraph()
	for title, id := range map[string]valueobjects.DocumentID{"a": a, "b": b, "c": c, "d": d} {
		g.RegisterDocument(id, title)
	}
	g.UpsertEdges(a, []entities.Link{entities.NewLink(a, b, "b")})
	g.UpsertEdges(b, []entities.Link{entities.NewLink(b, c, "c"), entities.NewLink(b, a, "a")})

	t.Run("shortest path follows links both ways", func(t *testing.T) {
		path, ok := g.ShortestPath(c, a)
		require.True(t, ok)
		require.Len(t, path, 3)
		assert.True(t, path[0].Equals(c))
		assert.True(t, path[2].Equals(a))
	})

	t.Run("unreachable nodes report no path", func(t *testing.T) {
		_, ok := g.ShortestPath(a, d)
		assert.False(t, ok)
	})

	t.Run("connected component", func(t *testing.T) {
		component := g.ConnectedComponent(a)
		assert.Len(t, component, 3)

		assert.Len(t, g.ConnectedComponent(d), 1)
	})

	t.Run("edge count", func(t *testing.T) {
		assert.Equal(t, 3, g.EdgeCount())
	})
}
