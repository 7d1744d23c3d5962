package entities

import (
	"time"

	"notegraph/domain/core/valueobjects"
	"notegraph/domain/ot"
	pkgerrors "notegraph/pkg/errors"
)

// Document is the authoritative state of one collaboratively edited note:
// its content, the monotonically increasing version, and the retained tail
// of accepted operations used to transform late-arriving submissions.
//
// A document is owned exclusively by its coordinator; nothing else mutates
// content or version. history[i] is the operation that produced version
// oldestRetained+i+1, so len(history) always equals version-oldestRetained.
type Document struct {
	id             valueobjects.DocumentID
	title          string
	content        string
	version        int64
	history        []ot.Operation
	oldestRetained int64
	createdAt      time.Time
	updatedAt      time.Time
}

// NewDocument creates an empty document at version zero
func NewDocument(title string) *Document {
	now := time.Now()
	return &Document{
		id:        valueobjects.NewDocumentID(),
		title:     title,
		createdAt: now,
		updatedAt: now,
	}
}

// ReconstructDocument rebuilds a document from persisted state. The history
// tail starts empty; operations accepted before the snapshot are treated as
// truncated.
func ReconstructDocument(id valueobjects.DocumentID, title, content string, version int64) *Document {
	now := time.Now()
	return &Document{
		id:             id,
		title:          title,
		content:        content,
		version:        version,
		oldestRetained: version,
		createdAt:      now,
		updatedAt:      now,
	}
}

// ID returns the document id
func (d *Document) ID() valueobjects.DocumentID { return d.id }

// Title returns the document title
func (d *Document) Title() string { return d.title }

// Content returns the current content
func (d *Document) Content() string { return d.content }

// Version returns the current version
func (d *Document) Version() int64 { return d.version }

// UpdatedAt returns the time of the last accepted operation
func (d *Document) UpdatedAt() time.Time { return d.updatedAt }

// OldestRetained returns the oldest version still covered by history
func (d *Document) OldestRetained() int64 { return d.oldestRetained }

// Rename updates the document title
func (d *Document) Rename(title string) {
	d.title = title
	d.updatedAt = time.Now()
}

// ApplyAccepted applies an operation that has already been transformed
// against the full history, appends it as the next version, and returns
// the accepted version number. The step is atomic from the caller's view:
// on any error neither content nor version changes.
func (d *Document) ApplyAccepted(op ot.Operation) (int64, error) {
	newContent, err := op.Apply(d.content)
	if err != nil {
		return 0, err
	}
	d.content = newContent
	d.history = append(d.history, op)
	d.version++
	d.updatedAt = time.Now()
	return d.version, nil
}

// HistorySince returns the accepted operations with versions in
// (afterVersion, current], oldest first. A caller ahead of the document is
// rejected as a future version; a caller behind the retained tail must
// reload the document.
func (d *Document) HistorySince(afterVersion int64) ([]ot.Operation, error) {
	if afterVersion > d.version {
		return nil, pkgerrors.NewFutureVersionError(afterVersion, d.version)
	}
	if afterVersion < d.oldestRetained {
		return nil, pkgerrors.NewHistoryTruncatedError(afterVersion, d.oldestRetained)
	}
	start := afterVersion - d.oldestRetained
	ops := make([]ot.Operation, d.version-afterVersion)
	copy(ops, d.history[start:])
	return ops, nil
}

// TrimHistory drops retained operations beyond max entries, oldest first.
// Sessions older than the new tail see HistoryTruncated and reload.
func (d *Document) TrimHistory(max int) {
	if max < 0 || len(d.history) <= max {
		return
	}
	drop := len(d.history) - max
	d.history = append([]ot.Operation(nil), d.history[drop:]...)
	d.oldestRetained += int64(drop)
}
