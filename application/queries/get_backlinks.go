package queries

import "errors"

// GetBacklinksQuery lists the documents linking to one document, broken
// sources included
type GetBacklinksQuery struct {
	DocumentID string
}

// Validate validates the GetBacklinksQuery
func (q GetBacklinksQuery) Validate() error {
	if q.DocumentID == "" {
		return errors.New("document ID is required")
	}
	return nil
}
