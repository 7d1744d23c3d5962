package queries

import "errors"

// GetDocumentQuery fetches one document's current snapshot
type GetDocumentQuery struct {
	DocumentID string
}

// Validate validates the GetDocumentQuery
func (q GetDocumentQuery) Validate() error {
	if q.DocumentID == "" {
		return errors.New("document ID is required")
	}
	return nil
}

// ListDocumentsQuery lists all documents
type ListDocumentsQuery struct{}

// Validate validates the ListDocumentsQuery
func (q ListDocumentsQuery) Validate() error { return nil }
