package commands

// DeleteDocumentCommand removes a document. Links pointing at it from
// surviving documents are kept as broken backlink sources rather than
// silently dropped.
type DeleteDocumentCommand struct {
	DocumentID string `json:"document_id" validate:"required,uuid"`
}

// Validate validates the command
func (c DeleteDocumentCommand) Validate() error {
	return validate.Struct(c)
}
