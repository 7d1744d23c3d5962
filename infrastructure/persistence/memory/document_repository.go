package memory

import (
	"context"
	"sort"
	"sync"

	"notegraph/domain/core/entities"
	"notegraph/domain/core/valueobjects"
	"notegraph/domain/ot"
	pkgerrors "notegraph/pkg/errors"
)

type record struct {
	id      valueobjects.DocumentID
	title   string
	content string
	version int64
	oplog   []ot.Operation
}

// DocumentRepository is the in-memory document store, the default for
// development and tests. Snapshots and the operation log live side by
// side; Load hands out detached copies, never shared state.
type DocumentRepository struct {
	mu     sync.RWMutex
	docs   map[string]*record
	titles map[string]valueobjects.DocumentID
}

// NewDocumentRepository creates an empty in-memory store
func NewDocumentRepository() *DocumentRepository {
	return &DocumentRepository{
		docs:   make(map[string]*record),
		titles: make(map[string]valueobjects.DocumentID),
	}
}

// Load retrieves a document's current snapshot
func (r *DocumentRepository) Load(ctx context.Context, id valueobjects.DocumentID) (*entities.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.docs[id.String()]
	if !ok {
		return nil, pkgerrors.NewNotFoundError("document")
	}
	return entities.ReconstructDocument(rec.id, rec.title, rec.content, rec.version), nil
}

// Save persists a document snapshot
func (r *DocumentRepository) Save(ctx context.Context, doc *entities.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := doc.ID().String()
	if old, ok := r.docs[key]; ok && old.title != doc.Title() {
		delete(r.titles, valueobjects.NormalizeTitle(old.title))
	}
	rec, ok := r.docs[key]
	if !ok {
		rec = &record{id: doc.ID()}
		r.docs[key] = rec
	}
	rec.title = doc.Title()
	rec.content = doc.Content()
	rec.version = doc.Version()
	r.titles[valueobjects.NormalizeTitle(doc.Title())] = doc.ID()
	return nil
}

// AppendOperation appends an accepted operation to the document's log
func (r *DocumentRepository) AppendOperation(ctx context.Context, id valueobjects.DocumentID, version int64, op ot.Operation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.docs[id.String()]
	if !ok {
		return pkgerrors.NewNotFoundError("document")
	}
	rec.oplog = append(rec.oplog, op)
	return nil
}

// Delete removes a document and its title index entry
func (r *DocumentRepository) Delete(ctx context.Context, id valueobjects.DocumentID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.docs[id.String()]
	if !ok {
		return pkgerrors.NewNotFoundError("document")
	}
	delete(r.docs, id.String())
	delete(r.titles, valueobjects.NormalizeTitle(rec.title))
	return nil
}

// List retrieves all documents sorted by title
func (r *DocumentRepository) List(ctx context.Context) ([]*entities.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*entities.Document, 0, len(r.docs))
	for _, rec := range r.docs {
		out = append(out, entities.ReconstructDocument(rec.id, rec.title, rec.content, rec.version))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title() < out[j].Title() })
	return out, nil
}

// ResolveTitle maps a title to the id of an existing document. Matching is
// case-insensitive so [[some note]] finds "Some Note".
func (r *DocumentRepository) ResolveTitle(ctx context.Context, title string) (valueobjects.DocumentID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.titles[valueobjects.NormalizeTitle(title)]
	return id, ok
}

// OperationCount reports how many operations the log holds for a document
func (r *DocumentRepository) OperationCount(id valueobjects.DocumentID) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if rec, ok := r.docs[id.String()]; ok {
		return len(rec.oplog)
	}
	return 0
}
