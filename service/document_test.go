package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"testing"

	"github.com/AshwinGadhvi/BoloForm/apperr"
	"github.com/AshwinGadhvi/BoloForm/audit"
	"github.com/AshwinGadhvi/BoloForm/model"
	"github.com/AshwinGadhvi/BoloForm/store"
)

// memFiles is an in-memory FileStore standing in for MinIO.
type memFiles struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemFiles() *memFiles {
	return &memFiles{objects: make(map[string][]byte)}
}

func (m *memFiles) Upload(_ context.Context, objectName string, reader io.Reader, _ int64, _ string) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[objectName] = data
	return nil
}

func (m *memFiles) Download(_ context.Context, objectName string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[objectName]
	if !ok {
		return nil, fmt.Errorf("object %s not found", objectName)
	}
	return data, nil
}

func (m *memFiles) Delete(_ context.Context, objectName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, objectName)
	return nil
}

func (m *memFiles) PresignedURL(_ context.Context, objectName string) (string, error) {
	return "http://example.test/" + objectName, nil
}

func newTestService(t *testing.T) (*DocumentService, *memFiles, *store.DB) {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "service.db"))
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	files := newMemFiles()
	svc := NewDocumentService(db, files, audit.NewLogger(db, nil))
	return svc, files, db
}

// onePagePDF builds a minimal well-formed single page PDF.
func onePagePDF() []byte {
	var buf bytes.Buffer
	offsets := []int{0}

	writeObj := func(body string) {
		offsets = append(offsets, buf.Len())
		buf.WriteString(body)
	}

	buf.WriteString("%PDF-1.4\n")
	writeObj("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")
	writeObj("2 0 obj\n<< /Type /Pages /Kids [3 0 R] /Count 1 >>\nendobj\n")
	writeObj("3 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << >> /Contents 4 0 R >>\nendobj\n")
	writeObj("4 0 obj\n<< /Length 0 >>\nstream\n\nendstream\nendobj\n")

	xrefOffset := buf.Len()
	buf.WriteString(fmt.Sprintf("xref\n0 %d\n", len(offsets)))
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets[1:] {
		buf.WriteString(fmt.Sprintf("%010d 00000 n \n", off))
	}
	buf.WriteString(fmt.Sprintf("trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets), xrefOffset))

	return buf.Bytes()
}

var testMeta = ActionMeta{Actor: "alice", IP: "203.0.113.7", UserAgent: "go-test"}

func TestUpload(t *testing.T) {
	svc, files, db := newTestService(t)
	ctx := context.Background()
	src := onePagePDF()

	doc, err := svc.Upload(ctx, "Lease Agreement", "alice", src, testMeta)
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if doc.ID == "" {
		t.Error("Expected a generated document ID")
	}
	if doc.ObjectName != "original/"+doc.ID+".pdf" {
		t.Errorf("Unexpected object name %q", doc.ObjectName)
	}
	if !bytes.Equal(files.objects[doc.ObjectName], src) {
		t.Error("Stored object does not match uploaded bytes")
	}

	stored, err := db.GetDocument(ctx, doc.ID)
	if err != nil {
		t.Fatalf("GetDocument failed: %v", err)
	}
	if stored.Title != "Lease Agreement" || stored.Owner != "alice" {
		t.Errorf("Unexpected stored document: %+v", stored)
	}
	if len(stored.Elements) != 0 {
		t.Errorf("Expected empty element list, got %d", len(stored.Elements))
	}

	records, verified, err := svc.AuditTrail(ctx, doc.ID)
	if err != nil {
		t.Fatalf("AuditTrail failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("Expected 1 audit record, got %d", len(records))
	}
	if records[0].Action != model.ActionUploaded {
		t.Errorf("Expected UPLOADED, got %s", records[0].Action)
	}
	if records[0].PreviousHash != audit.SentinelHash {
		t.Errorf("Expected sentinel previous hash, got %q", records[0].PreviousHash)
	}
	if records[0].ActorID != "alice" || records[0].IPAddress != "203.0.113.7" {
		t.Errorf("Unexpected attribution: %+v", records[0])
	}
	if !verified {
		t.Error("Expected chain to verify")
	}
}

func TestSaveElementsReplacesList(t *testing.T) {
	svc, _, db := newTestService(t)
	ctx := context.Background()

	doc, err := svc.Upload(ctx, "Offer", "alice", onePagePDF(), testMeta)
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	first := []byte(`[{"id":1,"page":1,"type":"text","xPercent":0.1,"yPercent":0.1,"value":"Approved"}]`)
	if _, err := svc.SaveElements(ctx, doc.ID, "alice", first, testMeta); err != nil {
		t.Fatalf("SaveElements failed: %v", err)
	}

	second := []byte(`[{"id":2,"page":1,"type":"checkbox","xPercent":0.5,"yPercent":0.5,"checked":true}]`)
	elements, err := svc.SaveElements(ctx, doc.ID, "alice", second, testMeta)
	if err != nil {
		t.Fatalf("SaveElements failed: %v", err)
	}
	if len(elements) != 1 || elements[0].ID != 2 {
		t.Errorf("Expected replacement list with element 2, got %+v", elements)
	}

	stored, err := db.GetDocument(ctx, doc.ID)
	if err != nil {
		t.Fatalf("GetDocument failed: %v", err)
	}
	if len(stored.Elements) != 1 || stored.Elements[0].ID != 2 {
		t.Errorf("Save must replace, not merge: %+v", stored.Elements)
	}

	records, verified, err := svc.AuditTrail(ctx, doc.ID)
	if err != nil {
		t.Fatalf("AuditTrail failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("Expected 3 audit records, got %d", len(records))
	}
	if records[1].Action != model.ActionElementSaved || records[2].Action != model.ActionElementSaved {
		t.Errorf("Expected ELEMENT_SAVED records, got %s %s", records[1].Action, records[2].Action)
	}
	if !verified {
		t.Error("Expected chain to verify")
	}
}

func TestSaveElementsNonArrayPayload(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	doc, err := svc.Upload(ctx, "Offer", "alice", onePagePDF(), testMeta)
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	payloads := [][]byte{
		[]byte(`{"elements":[]}`),
		[]byte(`"text"`),
		[]byte(`42`),
		[]byte(`null`),
		[]byte(`  null`),
		[]byte(``),
		[]byte(`not json`),
	}
	for _, raw := range payloads {
		if _, err := svc.SaveElements(ctx, doc.ID, "alice", raw, testMeta); !errors.Is(err, apperr.ErrValidation) {
			t.Errorf("Payload %q: expected ErrValidation, got %v", raw, err)
		}
	}

	// Rejected payloads must leave no trace in the audit chain.
	records, _, err := svc.AuditTrail(ctx, doc.ID)
	if err != nil {
		t.Fatalf("AuditTrail failed: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("Expected only the UPLOADED record, got %d records", len(records))
	}
}

func TestSaveElementsInvalidElement(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	doc, err := svc.Upload(ctx, "Offer", "alice", onePagePDF(), testMeta)
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	raw := []byte(`[{"id":1,"page":0,"type":"hologram","xPercent":2,"yPercent":0.1}]`)
	if _, err := svc.SaveElements(ctx, doc.ID, "alice", raw, testMeta); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("Expected ErrValidation, got %v", err)
	}
}

func TestDownloadBurnsAndAudits(t *testing.T) {
	svc, files, _ := newTestService(t)
	ctx := context.Background()

	doc, err := svc.Upload(ctx, "Offer", "alice", onePagePDF(), testMeta)
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	raw := []byte(`[{"id":1,"page":1,"type":"text","xPercent":0.1,"yPercent":0.1,"value":"Approved","color":"#2563EB"}]`)
	if _, err := svc.SaveElements(ctx, doc.ID, "alice", raw, testMeta); err != nil {
		t.Fatalf("SaveElements failed: %v", err)
	}

	got, out, err := svc.Download(ctx, doc.ID, "alice", testMeta)
	if err != nil {
		t.Fatalf("Download failed: %v", err)
	}
	if got.ID != doc.ID {
		t.Errorf("Expected document %s, got %s", doc.ID, got.ID)
	}
	if len(out) == 0 {
		t.Fatal("Expected burned PDF bytes")
	}
	if !bytes.Equal(files.objects["signed/"+doc.ID+".pdf"], out) {
		t.Error("Signed object does not match returned bytes")
	}

	records, verified, err := svc.AuditTrail(ctx, doc.ID)
	if err != nil {
		t.Fatalf("AuditTrail failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("Expected UPLOADED/ELEMENT_SAVED/DOWNLOADED, got %d records", len(records))
	}
	if records[2].Action != model.ActionDownloaded {
		t.Errorf("Expected DOWNLOADED, got %s", records[2].Action)
	}
	if !verified {
		t.Error("Expected chain to verify")
	}
	for i := 1; i < len(records); i++ {
		if records[i].PreviousHash != records[i-1].CurrentHash {
			t.Errorf("Record %d not linked to its predecessor", i)
		}
	}
}

func TestDownloadCorruptSource(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	doc, err := svc.Upload(ctx, "Broken", "alice", []byte("this is not a pdf"), testMeta)
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	if _, _, err := svc.Download(ctx, doc.ID, "alice", testMeta); !errors.Is(err, apperr.ErrCorruptSource) {
		t.Errorf("Expected ErrCorruptSource, got %v", err)
	}
}

func TestDeleteRetainsAuditRecords(t *testing.T) {
	svc, files, db := newTestService(t)
	ctx := context.Background()

	doc, err := svc.Upload(ctx, "Offer", "alice", onePagePDF(), testMeta)
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	if err := svc.Delete(ctx, doc.ID, "alice", testMeta); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if _, err := db.GetDocument(ctx, doc.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Expected ErrNotFound after delete, got %v", err)
	}
	if _, ok := files.objects[doc.ObjectName]; ok {
		t.Error("Expected original object to be removed")
	}

	records, verified, err := svc.AuditTrail(ctx, doc.ID)
	if err != nil {
		t.Fatalf("AuditTrail failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Expected UPLOADED and DELETED records, got %d", len(records))
	}
	if records[1].Action != model.ActionDeleted {
		t.Errorf("Expected DELETED, got %s", records[1].Action)
	}
	if !verified {
		t.Error("Expected chain to verify")
	}
}

func TestOwnershipHidesDocuments(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	doc, err := svc.Upload(ctx, "Private", "alice", onePagePDF(), testMeta)
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	if _, err := svc.Get(ctx, doc.ID, "mallory"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Get by non-owner: expected ErrNotFound, got %v", err)
	}
	if _, err := svc.SaveElements(ctx, doc.ID, "mallory", []byte(`[]`), testMeta); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Save by non-owner: expected ErrNotFound, got %v", err)
	}
	if _, _, err := svc.Download(ctx, doc.ID, "mallory", testMeta); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Download by non-owner: expected ErrNotFound, got %v", err)
	}
	if err := svc.Delete(ctx, doc.ID, "mallory", testMeta); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Delete by non-owner: expected ErrNotFound, got %v", err)
	}
}

func TestListReturnsOwnersDocuments(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Upload(ctx, "A", "alice", onePagePDF(), testMeta); err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if _, err := svc.Upload(ctx, "B", "bob", onePagePDF(), testMeta); err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	docs, err := svc.List(ctx, "alice")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(docs) != 1 || docs[0].Title != "A" {
		t.Errorf("Expected alice's single document, got %+v", docs)
	}
}
