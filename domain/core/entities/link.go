package entities

import (
	"fmt"

	"notegraph/domain/core/valueobjects"
)

// Link is a directed reference between documents, derived from content by
// extraction and never authored directly. Two links between the same pair
// of documents with different anchor text are distinct edges.
type Link struct {
	From   valueobjects.DocumentID `json:"from"`
	To     valueobjects.DocumentID `json:"to"`
	Anchor string                  `json:"anchor"`
}

// NewLink creates a link edge
func NewLink(from, to valueobjects.DocumentID, anchor string) Link {
	return Link{From: from, To: to, Anchor: anchor}
}

// Key returns a stable identity for deduplication
func (l Link) Key() string {
	return fmt.Sprintf("%s\x00%s\x00%s", l.From, l.To, l.Anchor)
}

// IsBroken reports whether the link targets a document that does not exist
// (a placeholder node or a removed document's tombstone)
func (l Link) IsBroken() bool {
	return l.To.IsPlaceholder()
}

// Backlink is the inbound view of a link, as returned by backlink queries
type Backlink struct {
	From   valueobjects.DocumentID `json:"from"`
	Anchor string                  `json:"anchor"`
	Broken bool                    `json:"broken"`
}
