// Package audit maintains the append-only, per-document, hash-chained
// history of document actions. Every record is linked to its
// predecessor so that any retroactive edit or reordering of the log is
// detectable.
package audit

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/AshwinGadhvi/BoloForm/model"
)

// HashFunc is the process-wide hash used for chaining. It is injected
// rather than hard-wired so tests can substitute a deterministic stub.
type HashFunc func([]byte) string

// SHA256Hex is the default HashFunc.
func SHA256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// SentinelHash is the PreviousHash of a document's first record. It
// participates in the chain computation as its literal (empty) value.
const SentinelHash = ""

// ChainHash binds a record to its predecessor:
// h(documentHash ∥ previousHash ∥ action), concatenated in that fixed
// order.
func ChainHash(h HashFunc, documentHash, previousHash string, action model.AuditAction) string {
	return h([]byte(documentHash + previousHash + string(action)))
}

// VerifyChain recomputes every link of records, which must be ordered
// by creation. It returns false on the first mismatch. The first
// record has no predecessor to verify against; its trustworthiness
// rests on it having been the first observed append.
func VerifyChain(h HashFunc, records []model.AuditRecord) bool {
	for i := 1; i < len(records); i++ {
		expected := ChainHash(h, records[i].DocumentHash, records[i-1].CurrentHash, records[i].Action)
		if expected != records[i].CurrentHash {
			return false
		}
	}
	return true
}
