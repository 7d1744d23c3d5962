package queries

import "errors"

// GetLinkSuggestionsQuery scans a document's content for phrases matching
// existing titles that are not linked yet
type GetLinkSuggestionsQuery struct {
	DocumentID string
}

// Validate validates the GetLinkSuggestionsQuery
func (q GetLinkSuggestionsQuery) Validate() error {
	if q.DocumentID == "" {
		return errors.New("document ID is required")
	}
	return nil
}
