package model

import (
	"time"
)

// AuditAction identifies what happened to a document.
type AuditAction string

const (
	ActionUploaded     AuditAction = "UPLOADED"
	ActionElementSaved AuditAction = "ELEMENT_SAVED"
	ActionDownloaded   AuditAction = "DOWNLOADED"
	ActionSigned       AuditAction = "SIGNED"
	ActionDeleted      AuditAction = "DELETED"
)

// AuditRecord is one link in a document's hash chain. Records are
// immutable once created; the log is only ever appended to, and it is
// retained after the owning document is removed.
type AuditRecord struct {
	ID           int64       `json:"id"`
	DocumentID   string      `json:"documentId"`
	Action       AuditAction `json:"action"`
	ActorID      string      `json:"actorId"`
	IPAddress    string      `json:"ipAddress"`
	UserAgent    string      `json:"userAgent"`
	DocumentHash string      `json:"documentHash"`
	PreviousHash string      `json:"previousHash"`
	CurrentHash  string      `json:"currentHash"`
	CreatedAt    time.Time   `json:"createdAt"`
}
