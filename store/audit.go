package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/AshwinGadhvi/BoloForm/apperr"
	"github.com/AshwinGadhvi/BoloForm/model"
)

// LastAuditRecord returns the most recent record for a document, or
// nil when the document has no records yet.
func (db *DB) LastAuditRecord(ctx context.Context, documentID string) (*model.AuditRecord, error) {
	row := db.conn.QueryRowContext(ctx, `
		SELECT id, document_id, action, actor_id, ip_address, user_agent,
		       document_hash, previous_hash, current_hash, created_at
		FROM audit_logs WHERE document_id = ? ORDER BY id DESC LIMIT 1
	`, documentID)

	rec, err := scanAuditRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("last audit record for %s: %w", documentID, err)
	}
	return rec, nil
}

// AppendAuditRecord inserts a new record and fills in its ID. Existing
// rows are never updated or removed.
func (db *DB) AppendAuditRecord(ctx context.Context, rec *model.AuditRecord) error {
	res, err := db.conn.ExecContext(ctx, `
		INSERT INTO audit_logs (document_id, action, actor_id, ip_address, user_agent,
		                        document_hash, previous_hash, current_hash, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.DocumentID, rec.Action, rec.ActorID, rec.IPAddress, rec.UserAgent,
		rec.DocumentHash, rec.PreviousHash, rec.CurrentHash, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("append audit record for %s: %w", rec.DocumentID, err)
	}
	rec.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("append audit record for %s: %w", rec.DocumentID, err)
	}
	return nil
}

// ListAuditRecords returns a document's full chain in creation order.
func (db *DB) ListAuditRecords(ctx context.Context, documentID string) ([]model.AuditRecord, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, document_id, action, actor_id, ip_address, user_agent,
		       document_hash, previous_hash, current_hash, created_at
		FROM audit_logs WHERE document_id = ? ORDER BY id ASC
	`, documentID)
	if err != nil {
		return nil, fmt.Errorf("%w: list audit records for %s: %v", apperr.ErrPersistence, documentID, err)
	}
	defer rows.Close()

	var records []model.AuditRecord
	for rows.Next() {
		rec, err := scanAuditRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan audit record: %v", apperr.ErrPersistence, err)
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAuditRecord(row rowScanner) (*model.AuditRecord, error) {
	var rec model.AuditRecord
	err := row.Scan(&rec.ID, &rec.DocumentID, &rec.Action, &rec.ActorID, &rec.IPAddress,
		&rec.UserAgent, &rec.DocumentHash, &rec.PreviousHash, &rec.CurrentHash, &rec.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
