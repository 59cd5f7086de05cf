package audit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/AshwinGadhvi/BoloForm/apperr"
	"github.com/AshwinGadhvi/BoloForm/model"
)

// Store is the persistence boundary for audit records. LastRecord
// returns nil (and no error) when a document has no records yet.
type Store interface {
	LastAuditRecord(ctx context.Context, documentID string) (*model.AuditRecord, error)
	AppendAuditRecord(ctx context.Context, rec *model.AuditRecord) error
}

// Logger appends hash-chained audit records. Appends for the same
// document are serialized so two concurrent actions cannot read the
// same PreviousHash and fork the chain; appends for different
// documents do not block each other.
type Logger struct {
	store Store
	hash  HashFunc

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewLogger creates a Logger. A nil hash selects SHA256Hex.
func NewLogger(store Store, hash HashFunc) *Logger {
	if hash == nil {
		hash = SHA256Hex
	}
	return &Logger{
		store: store,
		hash:  hash,
		locks: make(map[string]*sync.Mutex),
	}
}

func (l *Logger) docLock(documentID string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	lock, ok := l.locks[documentID]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[documentID] = lock
	}
	return lock
}

// Append records an action on a document. payload is the action's
// already-serialized subject (the new element list, the burned output
// bytes, or a metadata object). Finding no prior record is the
// expected state for a document's first action, not an error. A
// persistence failure surfaces as apperr.ErrPersistence; nothing is
// retried here.
func (l *Logger) Append(ctx context.Context, documentID string, action model.AuditAction, actorID, ip, userAgent string, payload []byte) (*model.AuditRecord, error) {
	lock := l.docLock(documentID)
	lock.Lock()
	defer lock.Unlock()

	last, err := l.store.LastAuditRecord(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("%w: audit append for document %s (%s): %v", apperr.ErrPersistence, documentID, action, err)
	}

	previousHash := SentinelHash
	if last != nil {
		previousHash = last.CurrentHash
	}

	documentHash := l.hash(payload)
	rec := &model.AuditRecord{
		DocumentID:   documentID,
		Action:       action,
		ActorID:      actorID,
		IPAddress:    ip,
		UserAgent:    userAgent,
		DocumentHash: documentHash,
		PreviousHash: previousHash,
		CurrentHash:  ChainHash(l.hash, documentHash, previousHash, action),
		CreatedAt:    time.Now().UTC(),
	}

	if err := l.store.AppendAuditRecord(ctx, rec); err != nil {
		return nil, fmt.Errorf("%w: audit append for document %s (%s): %v", apperr.ErrPersistence, documentID, action, err)
	}
	return rec, nil
}

// Verify checks an already-fetched chain with this logger's hash.
func (l *Logger) Verify(records []model.AuditRecord) bool {
	return VerifyChain(l.hash, records)
}
