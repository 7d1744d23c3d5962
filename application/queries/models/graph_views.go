package models

// GraphNodeReadModel is one node row for graph rendering. Placeholder
// nodes stand in for titles no document carries yet; removed nodes keep
// broken backlinks addressable after a delete.
type GraphNodeReadModel struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Placeholder bool   `json:"placeholder"`
	Removed     bool   `json:"removed"`
	InDegree    int    `json:"in_degree"`
	OutDegree   int    `json:"out_degree"`
}

// GraphEdgeReadModel is one directed link edge
type GraphEdgeReadModel struct {
	FromID string `json:"from_id"`
	ToID   string `json:"to_id"`
	Anchor string `json:"anchor"`
}

// GraphReadModel is the whole graph snapshot for rendering
type GraphReadModel struct {
	Nodes []GraphNodeReadModel `json:"nodes"`
	Edges []GraphEdgeReadModel `json:"edges"`
}

// PathReadModel is a shortest-path result; Found is false when the
// endpoints are disconnected
type PathReadModel struct {
	Found bool     `json:"found"`
	Path  []string `json:"path"`
}

// ComponentReadModel lists one connected component's document ids
type ComponentReadModel struct {
	DocumentID string   `json:"document_id"`
	Members    []string `json:"members"`
}
