package ot

import (
	"strings"

	pkgerrors "notegraph/pkg/errors"
)

// Operation is an immutable description of a single edit batch: an ordered
// run of retain/insert/delete components applied left to right over the
// document's code points. BaseVersion is the document version the operation
// was computed against; SessionID attributes it to the authoring client.
//
// The retain plus delete lengths always sum to the length of the document
// at BaseVersion. Transform and Compose return fresh values and never
// mutate their inputs.
type Operation struct {
	SessionID   string      `json:"session_id"`
	BaseVersion int64       `json:"base_version"`
	Components  []Component `json:"ops"`
}

// Builder accumulates components for a new operation. Adjacent components
// of the same kind are merged so equivalent edits normalize to the same
// run sequence.
type Builder struct {
	sessionID   string
	baseVersion int64
	components  []Component
}

// NewBuilder starts an operation against the given base version
func NewBuilder(sessionID string, baseVersion int64) *Builder {
	return &Builder{sessionID: sessionID, baseVersion: baseVersion}
}

// Retain skips over n code points
func (b *Builder) Retain(n int) *Builder {
	if n <= 0 {
		return b
	}
	if last := len(b.components) - 1; last >= 0 && b.components[last].Kind == KindRetain {
		b.components[last].N += n
		return b
	}
	b.components = append(b.components, Retain(n))
	return b
}

// Insert adds text at the current position
func (b *Builder) Insert(text string) *Builder {
	if text == "" {
		return b
	}
	if last := len(b.components) - 1; last >= 0 && b.components[last].Kind == KindInsert {
		b.components[last].Text += text
		return b
	}
	b.components = append(b.components, Insert(text))
	return b
}

// Delete removes n code points at the current position
func (b *Builder) Delete(n int) *Builder {
	if n <= 0 {
		return b
	}
	if last := len(b.components) - 1; last >= 0 && b.components[last].Kind == KindDelete {
		b.components[last].N += n
		return b
	}
	b.components = append(b.components, Delete(n))
	return b
}

// Build returns the assembled operation
func (b *Builder) Build() Operation {
	return Operation{
		SessionID:   b.sessionID,
		BaseVersion: b.baseVersion,
		Components:  b.components,
	}
}

// BaseLen returns the document length (in code points) the operation
// expects, i.e. the sum of retain and delete runs.
func (op Operation) BaseLen() int {
	n := 0
	for _, c := range op.Components {
		if c.Kind == KindRetain || c.Kind == KindDelete {
			n += c.N
		}
	}
	return n
}

// TargetLen returns the document length after applying the operation
func (op Operation) TargetLen() int {
	n := 0
	for _, c := range op.Components {
		if c.Kind == KindRetain || c.Kind == KindInsert {
			n += c.Len()
		}
	}
	return n
}

// IsNoop reports whether the operation changes nothing
func (op Operation) IsNoop() bool {
	for _, c := range op.Components {
		if c.Kind != KindRetain {
			return false
		}
	}
	return true
}

// WithBase returns a copy of the operation re-tagged against a new base
// version. Used by the coordinator after transforming a stale submission.
func (op Operation) WithBase(version int64) Operation {
	op.BaseVersion = version
	return op
}

// Validate checks structural consistency against the given document length
func (op Operation) Validate(docLen int) error {
	for _, c := range op.Components {
		switch c.Kind {
		case KindRetain, KindDelete:
			if c.N <= 0 {
				return pkgerrors.NewMalformedOperationError("retain and delete lengths must be positive")
			}
		case KindInsert:
			if c.Text == "" {
				return pkgerrors.NewMalformedOperationError("insert text must be non-empty")
			}
		default:
			return pkgerrors.NewMalformedOperationError("unknown component kind")
		}
	}
	if base := op.BaseLen(); base != docLen {
		return pkgerrors.NewMalformedOperationError("operation length mismatch").
			WithDetail("expected", docLen).
			WithDetail("actual", base)
	}
	return nil
}

// Apply runs the operation over content and returns the new content.
// Content shorter or longer than the operation's base length is rejected
// as malformed; nothing is partially applied.
func (op Operation) Apply(content string) (string, error) {
	runes := []rune(content)
	if err := op.Validate(len(runes)); err != nil {
		return "", err
	}

	var sb strings.Builder
	pos := 0
	for _, c := range op.Components {
		switch c.Kind {
		case KindRetain:
			sb.WriteString(string(runes[pos : pos+c.N]))
			pos += c.N
		case KindInsert:
			sb.WriteString(c.Text)
		case KindDelete:
			pos += c.N
		}
	}
	return sb.String(), nil
}
