package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/AshwinGadhvi/BoloForm/apperr"
	"github.com/AshwinGadhvi/BoloForm/audit"
	"github.com/AshwinGadhvi/BoloForm/model"
	"github.com/AshwinGadhvi/BoloForm/pdf"
	"github.com/AshwinGadhvi/BoloForm/pkg/logger"
	"github.com/AshwinGadhvi/BoloForm/store"
)

// ActionMeta carries request attribution for audit records.
type ActionMeta struct {
	Actor     string
	IP        string
	UserAgent string
}

// DocumentService orchestrates document persistence, object storage,
// burning and audit logging.
type DocumentService struct {
	db      *store.DB
	files   FileStore
	auditor *audit.Logger
}

func NewDocumentService(db *store.DB, files FileStore, auditor *audit.Logger) *DocumentService {
	return &DocumentService{
		db:      db,
		files:   files,
		auditor: auditor,
	}
}

func originalObjectName(id string) string { return "original/" + id + ".pdf" }
func signedObjectName(id string) string   { return "signed/" + id + ".pdf" }

// Upload stores the raw PDF, records the document and appends an
// UPLOADED audit record hashed over the original bytes.
func (s *DocumentService) Upload(ctx context.Context, title, owner string, data []byte, meta ActionMeta) (*model.Document, error) {
	now := time.Now().UTC()
	id := uuid.New().String()
	doc := &model.Document{
		ID:         id,
		Title:      title,
		ObjectName: originalObjectName(id),
		Owner:      owner,
		Elements:   []model.Element{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.files.Upload(ctx, doc.ObjectName, bytes.NewReader(data), int64(len(data)), "application/pdf"); err != nil {
		return nil, fmt.Errorf("%w: store original: %v", apperr.ErrPersistence, err)
	}

	if _, err := s.auditor.Append(ctx, doc.ID, model.ActionUploaded, meta.Actor, meta.IP, meta.UserAgent, data); err != nil {
		return nil, err
	}

	if err := s.db.CreateDocument(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// SaveElements replaces the document's element list from a raw JSON
// payload. The payload must be a JSON array of valid elements; any
// other shape is rejected before an audit record is written.
func (s *DocumentService) SaveElements(ctx context.Context, id, owner string, raw []byte, meta ActionMeta) ([]model.Element, error) {
	if _, err := s.ownedDocument(ctx, id, owner); err != nil {
		return nil, err
	}

	// Only a JSON array is a valid element list. json.Unmarshal alone
	// would also accept null, which must not clear a document.
	if trimmed := bytes.TrimLeft(raw, " \t\r\n"); len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, fmt.Errorf("%w: elements payload must be a JSON array", apperr.ErrValidation)
	}
	var elements []model.Element
	if err := json.Unmarshal(raw, &elements); err != nil {
		return nil, fmt.Errorf("%w: elements payload must be a JSON array: %v", apperr.ErrValidation, err)
	}
	for i, el := range elements {
		if err := el.Validate(); err != nil {
			return nil, fmt.Errorf("%w: element %d: %v", apperr.ErrValidation, i, err)
		}
	}
	if elements == nil {
		elements = []model.Element{}
	}

	// The audit record is written before the row update so a saved
	// element list can never exist without its chain entry.
	payload, err := json.Marshal(elements)
	if err != nil {
		return nil, fmt.Errorf("%w: serialize elements: %v", apperr.ErrPersistence, err)
	}
	if _, err := s.auditor.Append(ctx, id, model.ActionElementSaved, meta.Actor, meta.IP, meta.UserAgent, payload); err != nil {
		return nil, err
	}

	if err := s.db.ReplaceElements(ctx, id, elements); err != nil {
		return nil, err
	}
	return elements, nil
}

// Download burns the document's current elements onto the original PDF,
// stores the signed copy and returns its bytes.
func (s *DocumentService) Download(ctx context.Context, id, owner string, meta ActionMeta) (*model.Document, []byte, error) {
	doc, err := s.ownedDocument(ctx, id, owner)
	if err != nil {
		return nil, nil, err
	}

	src, err := s.files.Download(ctx, doc.ObjectName)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: fetch original: %v", apperr.ErrPersistence, err)
	}

	out, err := pdf.Burn(ctx, src, doc.Elements)
	if err != nil {
		return nil, nil, err
	}

	signed := signedObjectName(doc.ID)
	if err := s.files.Upload(ctx, signed, bytes.NewReader(out), int64(len(out)), "application/pdf"); err != nil {
		return nil, nil, fmt.Errorf("%w: store signed copy: %v", apperr.ErrPersistence, err)
	}

	if _, err := s.auditor.Append(ctx, doc.ID, model.ActionDownloaded, meta.Actor, meta.IP, meta.UserAgent, out); err != nil {
		return nil, nil, err
	}
	return doc, out, nil
}

// Delete removes the document row and its stored objects. Object
// removal is best effort; audit records are retained.
func (s *DocumentService) Delete(ctx context.Context, id, owner string, meta ActionMeta) error {
	doc, err := s.ownedDocument(ctx, id, owner)
	if err != nil {
		return err
	}

	for _, obj := range []string{doc.ObjectName, signedObjectName(doc.ID)} {
		if err := s.files.Delete(ctx, obj); err != nil {
			logger.WithContext(ctx).Warn("failed to remove stored object",
				slog.String("object", obj),
				slog.String("error", err.Error()))
		}
	}

	payload, err := json.Marshal(map[string]string{
		"id":    doc.ID,
		"title": doc.Title,
		"owner": doc.Owner,
	})
	if err != nil {
		return fmt.Errorf("%w: serialize delete payload: %v", apperr.ErrPersistence, err)
	}
	if _, err := s.auditor.Append(ctx, doc.ID, model.ActionDeleted, meta.Actor, meta.IP, meta.UserAgent, payload); err != nil {
		return err
	}

	return s.db.DeleteDocument(ctx, id)
}

// Get returns a single document owned by the caller.
func (s *DocumentService) Get(ctx context.Context, id, owner string) (*model.Document, error) {
	return s.ownedDocument(ctx, id, owner)
}

// List returns the caller's documents, newest first.
func (s *DocumentService) List(ctx context.Context, owner string) ([]model.Document, error) {
	return s.db.ListDocumentsByOwner(ctx, owner)
}

// AuditTrail returns a document's full audit chain in creation order
// along with the result of verifying its hash links.
func (s *DocumentService) AuditTrail(ctx context.Context, id string) ([]model.AuditRecord, bool, error) {
	records, err := s.db.ListAuditRecords(ctx, id)
	if err != nil {
		return nil, false, err
	}
	return records, s.auditor.Verify(records), nil
}

// ownedDocument fetches a document and hides it from non-owners.
func (s *DocumentService) ownedDocument(ctx context.Context, id, owner string) (*model.Document, error) {
	doc, err := s.db.GetDocument(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc.Owner != owner {
		return nil, fmt.Errorf("%w: document %s", apperr.ErrNotFound, id)
	}
	return doc, nil
}
