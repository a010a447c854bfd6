package handlers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"qcs/internal/upload"
	"qcs/models"
)

func samplePDF(text string) []byte {
	content := fmt.Sprintf("BT /F1 12 Tf 72 712 Td (%s) Tj ET", text)
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 4 0 R >> >> /Contents 5 0 R >>",
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
	}
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

var samplePNG = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), make([]byte, 32)...)

func uploadRequest(t *testing.T, handler http.HandlerFunc, batchID uint, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile(uploadFormField, filename)
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("failed to write form file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPut, "/api/batches/"+strconv.Itoa(int(batchID))+"/coa", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.SetPathValue("id", strconv.Itoa(int(batchID)))
	w := httptest.NewRecorder()
	handler(w, req)
	return w
}

func TestBatchCoaUploadDownloadDelete(t *testing.T) {
	db, cleanup := withTestDatabase(t)
	t.Cleanup(cleanup)
	store, storeCleanup := withTestStorage(t)
	t.Cleanup(storeCleanup)
	ctx := context.Background()

	pdf := samplePDF("Batch BX123 conforms")
	w := uploadRequest(t, BatchCoa, 1, "certificate.pdf", pdf)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := decodeBody[batchResponse](t, w)
	wantKey := "coa/some base coat 123 bx123 coa.pdf"
	if resp.Coa == nil || *resp.Coa != wantKey {
		t.Fatalf("expected key %q, got %v", wantKey, resp.Coa)
	}

	w = callAPI(t, BatchCoa, http.MethodGet, "/api/batches/1/coa", 1, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Fatalf("expected application/pdf, got %q", ct)
	}
	if !bytes.Equal(w.Body.Bytes(), pdf) {
		t.Fatal("downloaded content differs from upload")
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "bx123 coa.pdf") {
		t.Fatalf("unexpected Content-Disposition %q", cd)
	}

	w = callAPI(t, BatchCoaText, http.MethodGet, "/api/batches/1/coa/text", 1, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	text := decodeBody[map[string]any](t, w)
	if !strings.Contains(text["text"].(string), "BX123") {
		t.Fatalf("expected extracted text, got %+v", text)
	}

	// Replacing with another extension removes the previous object.
	w = uploadRequest(t, BatchCoa, 1, "scan.png", samplePNG)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if ok, _ := store.Exists(ctx, wantKey); ok {
		t.Fatal("expected previous coa removed")
	}
	w = callAPI(t, BatchCoaText, http.MethodGet, "/api/batches/1/coa/text", 1, nil)
	if w.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("expected 415 for non-pdf coa, got %d", w.Code)
	}

	w = callAPI(t, BatchCoa, http.MethodDelete, "/api/batches/1/coa", 1, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	var batch models.Batch
	if err := db.First(&batch, 1).Error; err != nil || batch.Coa != nil {
		t.Fatalf("expected coa cleared, got %v (%v)", batch.Coa, err)
	}
	if ok, _ := store.Exists(ctx, "coa/some base coat 123 bx123 coa.png"); ok {
		t.Fatal("expected png removed from storage")
	}

	w = callAPI(t, BatchCoa, http.MethodGet, "/api/batches/1/coa", 1, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", w.Code)
	}
}

func TestBatchUploadRejections(t *testing.T) {
	_, cleanup := withTestDatabase(t)
	t.Cleanup(cleanup)
	_, storeCleanup := withTestStorage(t)
	t.Cleanup(storeCleanup)

	tests := []struct {
		name     string
		filename string
		content  []byte
		code     string
		mimeType string
	}{
		{"extension", "notes.txt", []byte("plain text"), "invalid_extension", ""},
		{"disguised content", "sheet.pdf", []byte("just some text pretending"), "invalid_file_type", "text/plain"},
		{"no extension", "README", samplePDF("x"), "invalid_extension", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := uploadRequest(t, BatchColorSheet, 2, tt.filename, tt.content)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
			}
			body := decodeBody[map[string]string](t, w)
			if body["code"] != tt.code {
				t.Fatalf("expected code %q, got %+v", tt.code, body)
			}
			if body["mime_type"] != tt.mimeType {
				t.Fatalf("expected mime type %q, got %q", tt.mimeType, body["mime_type"])
			}
			if tt.mimeType != "" && !strings.Contains(body["error"], tt.mimeType) {
				t.Fatalf("expected detected type in message, got %q", body["error"])
			}
		})
	}

	req := httptest.NewRequest(http.MethodPut, "/api/batches/2/color-sheet", io.NopCloser(strings.NewReader("")))
	req.SetPathValue("id", "2")
	w := httptest.NewRecorder()
	BatchColorSheet(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without multipart body, got %d", w.Code)
	}
}

func TestBatchColorSheetKey(t *testing.T) {
	_, cleanup := withTestDatabase(t)
	t.Cleanup(cleanup)
	_, storeCleanup := withTestStorage(t)
	t.Cleanup(storeCleanup)

	w := uploadRequest(t, BatchColorSheet, 2, "readings.PNG", samplePNG)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := decodeBody[batchResponse](t, w)
	if resp.ColorSheet == nil || *resp.ColorSheet != "color/high gloss clear coat cc77 color.PNG" {
		t.Fatalf("unexpected key %v", resp.ColorSheet)
	}
}

func TestAttachmentWithoutStorage(t *testing.T) {
	_, cleanup := withTestDatabase(t)
	t.Cleanup(cleanup)

	w := callAPI(t, BatchCoa, http.MethodGet, "/api/batches/1/coa", 1, nil)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
}

func TestBatchAttachmentKeysDoNotCollide(t *testing.T) {
	db, cleanup := withTestDatabase(t)
	t.Cleanup(cleanup)
	store, storeCleanup := withTestStorage(t)
	t.Cleanup(storeCleanup)
	ctx := context.Background()

	var twin models.Batch
	if err := db.First(&twin, 1).Error; err != nil {
		t.Fatalf("failed to load batch: %v", err)
	}
	twin.Record = models.Record{}
	if err := db.Create(&twin).Error; err != nil {
		t.Fatalf("failed to create twin batch: %v", err)
	}

	original := samplePDF("Original certificate")
	if w := uploadRequest(t, BatchCoa, 1, "certificate.pdf", original); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	w := uploadRequest(t, BatchCoa, twin.ID, "certificate.pdf", samplePDF("Twin certificate"))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	twinKey := decodeBody[batchResponse](t, w).Coa
	if twinKey == nil || *twinKey != "coa/some base coat 123 bx123 coa_1.pdf" {
		t.Fatalf("expected suffixed key for twin, got %v", twinKey)
	}

	// Re-uploading keeps the batch on the key it already owns.
	w = uploadRequest(t, BatchCoa, twin.ID, "again.pdf", samplePDF("Twin again"))
	if got := decodeBody[batchResponse](t, w).Coa; got == nil || *got != *twinKey {
		t.Fatalf("expected twin to keep key %q, got %v", *twinKey, got)
	}

	if w := callAPI(t, BatchCoa, http.MethodDelete, "/api/batches/x/coa", twin.ID, nil); w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}

	w = callAPI(t, BatchCoa, http.MethodGet, "/api/batches/1/coa", 1, nil)
	if w.Code != http.StatusOK || !bytes.Equal(w.Body.Bytes(), original) {
		t.Fatalf("expected batch 1 coa intact, got %d", w.Code)
	}

	// A row sharing a key keeps the object alive when another row lets go.
	sharedKey := "coa/some base coat 123 bx123 coa.pdf"
	if err := db.Model(&models.Batch{}).Where("id = ?", twin.ID).Update("coa", sharedKey).Error; err != nil {
		t.Fatalf("failed to share key: %v", err)
	}
	if w := callAPI(t, BatchResource, http.MethodDelete, "/api/batches/x", twin.ID, nil); w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", w.Code, w.Body.String())
	}
	if ok, err := store.Exists(ctx, sharedKey); err != nil || !ok {
		t.Fatalf("expected shared file kept, exists=%t err=%v", ok, err)
	}
}

func TestBatchUploadTooLarge(t *testing.T) {
	_, cleanup := withTestDatabase(t)
	t.Cleanup(cleanup)
	store, storeCleanup := withTestStorage(t)
	t.Cleanup(storeCleanup)
	ConfigureUploads(store, upload.NewValidator(nil, nil, 10), upload.DefaultPaths())

	tests := []struct {
		name    string
		content []byte
	}{
		{"over validator limit", samplePDF("more than ten bytes")},
		{"over request limit", append(samplePDF("x"), bytes.Repeat([]byte{' '}, 2<<20)...)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := uploadRequest(t, BatchCoa, 1, "certificate.pdf", tt.content)
			if w.Code != http.StatusRequestEntityTooLarge {
				t.Fatalf("expected 413, got %d: %s", w.Code, w.Body.String())
			}
			if body := decodeBody[map[string]string](t, w); body["code"] != upload.CodeFileTooLarge {
				t.Fatalf("expected code %q, got %+v", upload.CodeFileTooLarge, body)
			}
		})
	}
}
