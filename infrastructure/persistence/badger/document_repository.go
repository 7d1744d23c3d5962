// Package badger implements the document store on BadgerDB: one snapshot
// record per document, an append-only operation log keyed by version, and
// a normalized-title index for wiki link resolution.
package badger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"

	"notegraph/domain/core/entities"
	"notegraph/domain/core/valueobjects"
	"notegraph/domain/ot"
	pkgerrors "notegraph/pkg/errors"
)

const (
	docPrefix   = "doc:"
	opPrefix    = "op:"
	titlePrefix = "title:"
)

type snapshotRecord struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Version int64  `json:"version"`
}

// DocumentRepository is the BadgerDB-backed document store
type DocumentRepository struct {
	db     *badger.DB
	logger *zap.Logger
}

// Open opens the store at path, creating the directory if needed
func Open(path string, logger *zap.Logger) (*DocumentRepository, error) {
	if path == "" {
		return nil, errors.New("badger path is required")
	}
	if err := os.MkdirAll(path, 0o750); err != nil {
		return nil, fmt.Errorf("create database directory %s: %w", path, err)
	}
	opts := badger.DefaultOptions(path).
		WithSyncWrites(true).
		WithNumVersionsToKeep(1).
		WithLogger(&badgerLogger{logger: logger.Named("badger")})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}
	return &DocumentRepository{db: db, logger: logger}, nil
}

// OpenInMemory opens a throwaway store, used by tests
func OpenInMemory(logger *zap.Logger) (*DocumentRepository, error) {
	opts := badger.DefaultOptions("").
		WithInMemory(true).
		WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}
	return &DocumentRepository{db: db, logger: logger}, nil
}

// Close releases the underlying database
func (r *DocumentRepository) Close() error {
	return r.db.Close()
}

func docKey(id valueobjects.DocumentID) []byte {
	return []byte(docPrefix + id.String())
}

func opKey(id valueobjects.DocumentID, version int64) []byte {
	return []byte(fmt.Sprintf("%s%s:%020d", opPrefix, id.String(), version))
}

func titleKey(title string) []byte {
	return []byte(titlePrefix + valueobjects.NormalizeTitle(title))
}

// Load retrieves a document's current snapshot
func (r *DocumentRepository) Load(ctx context.Context, id valueobjects.DocumentID) (*entities.Document, error) {
	var rec snapshotRecord
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(docKey(id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, pkgerrors.NewNotFoundError("document")
	}
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("load document", err)
	}
	return entities.ReconstructDocument(id, rec.Title, rec.Content, rec.Version), nil
}

// Save persists a document snapshot and keeps the title index current
func (r *DocumentRepository) Save(ctx context.Context, doc *entities.Document) error {
	rec := snapshotRecord{
		ID:      doc.ID().String(),
		Title:   doc.Title(),
		Content: doc.Content(),
		Version: doc.Version(),
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return pkgerrors.NewInternalError("marshal document", err)
	}

	err = r.db.Update(func(txn *badger.Txn) error {
		// Drop the old title index entry on rename.
		if item, err := txn.Get(docKey(doc.ID())); err == nil {
			var old snapshotRecord
			if err := item.Value(func(val []byte) error { return json.Unmarshal(val, &old) }); err == nil {
				if old.Title != doc.Title() {
					if err := txn.Delete(titleKey(old.Title)); err != nil {
						return err
					}
				}
			}
		}
		if err := txn.Set(docKey(doc.ID()), data); err != nil {
			return err
		}
		return txn.Set(titleKey(doc.Title()), []byte(doc.ID().String()))
	})
	if err != nil {
		return pkgerrors.NewDatabaseError("save document", err)
	}
	return nil
}

// AppendOperation appends an accepted operation to the document's log
func (r *DocumentRepository) AppendOperation(ctx context.Context, id valueobjects.DocumentID, version int64, op ot.Operation) error {
	data, err := json.Marshal(op)
	if err != nil {
		return pkgerrors.NewInternalError("marshal operation", err)
	}
	err = r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(opKey(id, version), data)
	})
	if err != nil {
		return pkgerrors.NewDatabaseError("append operation", err)
	}
	return nil
}

// Operations replays the stored log for a document in version order
func (r *DocumentRepository) Operations(ctx context.Context, id valueobjects.DocumentID) ([]ot.Operation, error) {
	var ops []ot.Operation
	err := r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(opPrefix + id.String() + ":")
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var op ot.Operation
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &op)
			})
			if err != nil {
				return err
			}
			ops = append(ops, op)
		}
		return nil
	})
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("read operation log", err)
	}
	return ops, nil
}

// Delete removes a document, its title index entry, and its operation log
func (r *DocumentRepository) Delete(ctx context.Context, id valueobjects.DocumentID) error {
	err := r.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(docKey(id))
		if err != nil {
			return err
		}
		var rec snapshotRecord
		if err := item.Value(func(val []byte) error { return json.Unmarshal(val, &rec) }); err != nil {
			return err
		}
		if err := txn.Delete(titleKey(rec.Title)); err != nil {
			return err
		}
		if err := txn.Delete(docKey(id)); err != nil {
			return err
		}

		it := txn.NewIterator(badger.IteratorOptions{Prefix: []byte(opPrefix + id.String() + ":")})
		defer it.Close()
		var opKeys [][]byte
		for it.Rewind(); it.Valid(); it.Next() {
			opKeys = append(opKeys, it.Item().KeyCopy(nil))
		}
		for _, k := range opKeys {
			if err := txn.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return pkgerrors.NewNotFoundError("document")
	}
	if err != nil {
		return pkgerrors.NewDatabaseError("delete document", err)
	}
	return nil
}

// List retrieves all documents
func (r *DocumentRepository) List(ctx context.Context) ([]*entities.Document, error) {
	var docs []*entities.Document
	err := r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(docPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var rec snapshotRecord
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			})
			if err != nil {
				return err
			}
			id, err := valueobjects.NewDocumentIDFromString(rec.ID)
			if err != nil {
				r.logger.Warn("Skipping document with invalid id", zap.String("id", rec.ID))
				continue
			}
			docs = append(docs, entities.ReconstructDocument(id, rec.Title, rec.Content, rec.Version))
		}
		return nil
	})
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("list documents", err)
	}
	return docs, nil
}

// ResolveTitle maps a title to the id of an existing document
func (r *DocumentRepository) ResolveTitle(ctx context.Context, title string) (valueobjects.DocumentID, bool) {
	var raw string
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(titleKey(title))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			raw = string(val)
			return nil
		})
	})
	if err != nil {
		return valueobjects.DocumentID{}, false
	}
	id, err := valueobjects.NewDocumentIDFromString(raw)
	if err != nil {
		return valueobjects.DocumentID{}, false
	}
	return id, true
}

// badgerLogger adapts zap to BadgerDB's Logger interface
type badgerLogger struct {
	logger *zap.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}
