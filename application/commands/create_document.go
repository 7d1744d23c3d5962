package commands

import (
	"github.com/go-playground/validator/v10"
)

// validate checks the struct tags on every command
var validate = validator.New()

// CreateDocumentCommand creates a new note, optionally with initial content
type CreateDocumentCommand struct {
	Title   string `json:"title" validate:"required,min=1,max=200"`
	Content string `json:"content" validate:"max=100000"`
}

// Validate validates the command
func (c CreateDocumentCommand) Validate() error {
	return validate.Struct(c)
}
