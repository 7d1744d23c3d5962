package commands

import (
	"errors"

	"notegraph/domain/ot"
)

// SubmitOperationCommand submits one edit on behalf of a connected session.
// The websocket transport builds these from submit frames; the REST surface
// accepts them for scripted clients.
type SubmitOperationCommand struct {
	DocumentID  string         `json:"document_id" validate:"required,uuid"`
	SessionID   string         `json:"session_id" validate:"required"`
	BaseVersion int64          `json:"base_version" validate:"min=0"`
	Ops         []ot.Component `json:"ops"`
}

// Validate validates the command
func (c SubmitOperationCommand) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if len(c.Ops) == 0 {
		return errors.New("operation has no components")
	}
	return nil
}
