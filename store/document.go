package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/AshwinGadhvi/BoloForm/apperr"
	"github.com/AshwinGadhvi/BoloForm/model"
)

// CreateDocument inserts a new document with an empty element list.
func (db *DB) CreateDocument(ctx context.Context, doc *model.Document) error {
	elements, err := marshalElements(doc.Elements)
	if err != nil {
		return err
	}
	_, err = db.conn.ExecContext(ctx, `
		INSERT INTO documents (id, title, object_name, owner, elements, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, doc.ID, doc.Title, doc.ObjectName, doc.Owner, elements, doc.CreatedAt, doc.UpdatedAt)
	if err != nil {
		return fmt.Errorf("%w: create document %s: %v", apperr.ErrPersistence, doc.ID, err)
	}
	return nil
}

// GetDocument fetches one document with its element list.
func (db *DB) GetDocument(ctx context.Context, id string) (*model.Document, error) {
	var doc model.Document
	var elements string
	err := db.conn.QueryRowContext(ctx, `
		SELECT id, title, object_name, owner, elements, created_at, updated_at
		FROM documents WHERE id = ?
	`, id).Scan(&doc.ID, &doc.Title, &doc.ObjectName, &doc.Owner, &elements, &doc.CreatedAt, &doc.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: document %s", apperr.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get document %s: %v", apperr.ErrPersistence, id, err)
	}
	if err := json.Unmarshal([]byte(elements), &doc.Elements); err != nil {
		return nil, fmt.Errorf("%w: decode elements for document %s: %v", apperr.ErrPersistence, id, err)
	}
	return &doc, nil
}

// ListDocumentsByOwner returns the owner's documents, newest first.
func (db *DB) ListDocumentsByOwner(ctx context.Context, owner string) ([]model.Document, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, title, object_name, owner, elements, created_at, updated_at
		FROM documents WHERE owner = ? ORDER BY created_at DESC
	`, owner)
	if err != nil {
		return nil, fmt.Errorf("%w: list documents for %s: %v", apperr.ErrPersistence, owner, err)
	}
	defer rows.Close()

	var docs []model.Document
	for rows.Next() {
		var doc model.Document
		var elements string
		if err := rows.Scan(&doc.ID, &doc.Title, &doc.ObjectName, &doc.Owner, &elements, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%w: scan document: %v", apperr.ErrPersistence, err)
		}
		if err := json.Unmarshal([]byte(elements), &doc.Elements); err != nil {
			return nil, fmt.Errorf("%w: decode elements for document %s: %v", apperr.ErrPersistence, doc.ID, err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// ReplaceElements swaps a document's entire element list in one
// update. There is no partial merge; concurrent saves are
// last-write-wins via the row-level update.
func (db *DB) ReplaceElements(ctx context.Context, id string, elements []model.Element) error {
	payload, err := marshalElements(elements)
	if err != nil {
		return err
	}
	res, err := db.conn.ExecContext(ctx, `
		UPDATE documents SET elements = ?, updated_at = ? WHERE id = ?
	`, payload, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("%w: replace elements for document %s: %v", apperr.ErrPersistence, id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: replace elements for document %s: %v", apperr.ErrPersistence, id, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: document %s", apperr.ErrNotFound, id)
	}
	return nil
}

// DeleteDocument removes the document row. Audit rows are untouched.
func (db *DB) DeleteDocument(ctx context.Context, id string) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("%w: delete document %s: %v", apperr.ErrPersistence, id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: delete document %s: %v", apperr.ErrPersistence, id, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: document %s", apperr.ErrNotFound, id)
	}
	return nil
}

func marshalElements(elements []model.Element) (string, error) {
	if elements == nil {
		elements = []model.Element{}
	}
	data, err := json.Marshal(elements)
	if err != nil {
		return "", fmt.Errorf("%w: encode elements: %v", apperr.ErrPersistence, err)
	}
	return string(data), nil
}
