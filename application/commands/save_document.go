package commands

// SaveDocumentCommand replaces a document's content with a whole-text save.
// The new content is diffed against the authoritative text and enters the
// history as a normal operation, serialized through the document's
// coordinator alongside any live sessions.
type SaveDocumentCommand struct {
	DocumentID string `json:"document_id" validate:"required,uuid"`
	Content    string `json:"content" validate:"max=100000"`
	Title      string `json:"title" validate:"omitempty,min=1,max=200"`
}

// Validate validates the command
func (c SaveDocumentCommand) Validate() error {
	return validate.Struct(c)
}
