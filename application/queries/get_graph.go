package queries

import "errors"

// GetGraphDataQuery fetches the full graph for rendering
type GetGraphDataQuery struct{}

// Validate validates the GetGraphDataQuery
func (q GetGraphDataQuery) Validate() error { return nil }

// GetShortestPathQuery finds a shortest undirected path between two
// documents
type GetShortestPathQuery struct {
	FromID string
	ToID   string
}

// Validate validates the GetShortestPathQuery
func (q GetShortestPathQuery) Validate() error {
	if q.FromID == "" || q.ToID == "" {
		return errors.New("both endpoint IDs are required")
	}
	return nil
}

// GetConnectedComponentQuery lists every document reachable from one,
// following links in either direction
type GetConnectedComponentQuery struct {
	DocumentID string
}

// Validate validates the GetConnectedComponentQuery
func (q GetConnectedComponentQuery) Validate() error {
	if q.DocumentID == "" {
		return errors.New("document ID is required")
	}
	return nil
}
