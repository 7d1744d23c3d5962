package models

import "time"

// DocumentReadModel is the REST-facing view of one document snapshot
type DocumentReadModel struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Version   int64     `json:"version"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DocumentSummary is the list-view row, content omitted
type DocumentSummary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Version   int64     `json:"version"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BacklinkReadModel is one inbound reference, with enough context to
// render "linked from" lists including broken sources
type BacklinkReadModel struct {
	FromID    string `json:"from_id"`
	FromTitle string `json:"from_title"`
	Anchor    string `json:"anchor"`
	Broken    bool   `json:"broken"`
}

// BacklinksReadModel groups a document's backlinks
type BacklinksReadModel struct {
	DocumentID string              `json:"document_id"`
	Backlinks  []BacklinkReadModel `json:"backlinks"`
}

// LinkSuggestionReadModel is one unlinked title mention
type LinkSuggestionReadModel struct {
	TargetID      string  `json:"target_id"`
	TargetTitle   string  `json:"target_title"`
	SuggestedLink string  `json:"suggested_link"`
	Confidence    float64 `json:"confidence"`
	Reason        string  `json:"reason"`
}
