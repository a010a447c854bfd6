package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path"
	"strings"

	"qcs/internal/coa"
	applog "qcs/internal/log"
	"qcs/internal/storage"
	"qcs/internal/upload"
	"qcs/models"
)

const uploadFormField = "file"

// attachmentKind binds a batch file column to its key layout.
type attachmentKind struct {
	name   string
	column string
	get    func(*models.Batch) *string
	key    func(product, number, filename string) string
}

var (
	coaAttachment = attachmentKind{
		name:   "coa",
		column: "coa",
		get:    func(b *models.Batch) *string { return b.Coa },
		key:    func(product, number, filename string) string { return uploadPaths.Coa(product, number, filename) },
	}
	colorSheetAttachment = attachmentKind{
		name:   "color sheet",
		column: "color_sheet",
		get:    func(b *models.Batch) *string { return b.ColorSheet },
		key: func(product, number, filename string) string {
			return uploadPaths.ColorSheet(product, number, filename)
		},
	}
)

// BatchCoa uploads, downloads and removes the certificate of analysis.
func BatchCoa(w http.ResponseWriter, r *http.Request) {
	batchAttachment(w, r, coaAttachment)
}

// BatchColorSheet uploads, downloads and removes the color sheet.
func BatchColorSheet(w http.ResponseWriter, r *http.Request) {
	batchAttachment(w, r, colorSheetAttachment)
}

func batchAttachment(w http.ResponseWriter, r *http.Request, kind attachmentKind) {
	if !requireDatabase(w, r) {
		return
	}
	if fileStore == nil {
		applog.Debug(r.Context(), "attachment request without storage")
		writeJSONError(w, http.StatusServiceUnavailable, "file storage unavailable")
		return
	}
	id, ok := pathID(w, r, "batch")
	if !ok {
		return
	}

	var batch models.Batch
	if err := batchQuery(r.Context()).First(&batch, id).Error; err != nil {
		writeDBError(w, r, err, "batch")
		return
	}

	switch r.Method {
	case http.MethodPut, http.MethodPost:
		storeAttachment(w, r, &batch, kind)
	case http.MethodGet, http.MethodHead:
		serveAttachment(w, r, &batch, kind)
	case http.MethodDelete:
		removeAttachment(w, r, &batch, kind)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func storeAttachment(w http.ResponseWriter, r *http.Request, batch *models.Batch, kind attachmentKind) {
	ctx := r.Context()
	r.Body = http.MaxBytesReader(w, r.Body, fileValidator.MaxBytes+1<<20)
	file, header, err := r.FormFile(uploadFormField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{
				"error": "file too large",
				"code":  upload.CodeFileTooLarge,
			})
			return
		}
		applog.Debug(ctx, "missing upload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "a file must be sent in the \"file\" form field")
		return
	}
	defer file.Close()

	if err := fileValidator.ValidateSize(header.Size); err != nil {
		writeUploadError(w, http.StatusRequestEntityTooLarge, err)
		return
	}
	mimeType, err := fileValidator.Validate(header.Filename, file)
	if err != nil {
		applog.Debug(ctx, "upload rejected", "batch_id", batch.ID, "filename", header.Filename, "error", err)
		writeUploadError(w, http.StatusBadRequest, err)
		return
	}

	product := ""
	if batch.Product != nil {
		product = batch.Product.String()
	}
	key, err := availableKey(ctx, batch, kind.key(product, batch.Number, header.Filename))
	if err != nil {
		applog.Error(ctx, "failed to resolve attachment key", "batch_id", batch.ID, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to store file")
		return
	}
	if err := fileStore.Save(ctx, key, file, mimeType); err != nil {
		applog.Error(ctx, "failed to store upload", "key", key, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to store file")
		return
	}

	var previous string
	if current := kind.get(batch); current != nil {
		previous = *current
	}
	if err := database.WithContext(ctx).Model(batch).Update(kind.column, key).Error; err != nil {
		if previous != key {
			removeStoredFile(ctx, key)
		}
		writeDBError(w, r, err, "batch")
		return
	}
	if previous != "" && previous != key {
		removeStoredFile(ctx, previous)
	}

	applog.Info(ctx, "attachment stored", "batch_id", batch.ID, "kind", kind.name, "key", key, "mime_type", mimeType)
	if err := batchQuery(ctx).First(batch, batch.ID).Error; err != nil {
		writeDBError(w, r, err, "batch")
		return
	}
	writeJSON(w, http.StatusOK, projectBatch(*batch))
}

func writeUploadError(w http.ResponseWriter, status int, err error) {
	var invalid *upload.ValidationError
	if !errors.As(err, &invalid) {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	payload := map[string]string{
		"error": invalid.Message,
		"code":  invalid.Code,
	}
	if invalid.MIMEType != "" {
		payload["mime_type"] = invalid.MIMEType
	}
	if invalid.Extension != "" {
		payload["extension"] = invalid.Extension
	}
	writeJSON(w, status, payload)
}

func serveAttachment(w http.ResponseWriter, r *http.Request, batch *models.Batch, kind attachmentKind) {
	ctx := r.Context()
	key := kind.get(batch)
	if key == nil {
		writeJSONError(w, http.StatusNotFound, "no "+kind.name+" uploaded")
		return
	}

	body, err := fileStore.Open(ctx, *key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			applog.Warn(ctx, "attachment missing from storage", "batch_id", batch.ID, "key", *key)
			writeJSONError(w, http.StatusNotFound, kind.name+" file is missing")
			return
		}
		applog.Error(ctx, "failed to open attachment", "key", *key, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to read file")
		return
	}
	defer body.Close()

	contentType := mime.TypeByExtension(upload.Ext(*key))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": path.Base(*key)}))
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	if _, err := io.Copy(w, body); err != nil {
		applog.Error(ctx, "failed to stream attachment", "key", *key, "error", err)
	}
}

func removeAttachment(w http.ResponseWriter, r *http.Request, batch *models.Batch, kind attachmentKind) {
	ctx := r.Context()
	current := kind.get(batch)
	if current == nil {
		writeJSONError(w, http.StatusNotFound, "no "+kind.name+" uploaded")
		return
	}
	key := *current
	if err := database.WithContext(ctx).Model(batch).Update(kind.column, nil).Error; err != nil {
		writeDBError(w, r, err, "batch")
		return
	}
	removeStoredFile(ctx, key)
	applog.Info(ctx, "attachment removed", "batch_id", batch.ID, "kind", kind.name, "key", key)
	w.WriteHeader(http.StatusNoContent)
}

// maxKeyAttempts bounds the numbered alternatives tried for a taken key.
const maxKeyAttempts = 100

// availableKey returns key, or key with a numeric suffix before the
// extension, such that no other batch references it and no unowned object
// already sits there. Keys the batch itself holds are reused.
func availableKey(ctx context.Context, batch *models.Batch, key string) (string, error) {
	ext := path.Ext(key)
	base := strings.TrimSuffix(key, ext)
	for n := 0; n < maxKeyAttempts; n++ {
		candidate := key
		if n > 0 {
			candidate = fmt.Sprintf("%s_%d%s", base, n, ext)
		}
		if ownsKey(batch, candidate) {
			return candidate, nil
		}
		taken, err := keyReferenced(ctx, candidate, batch.ID)
		if err != nil {
			return "", err
		}
		if taken {
			continue
		}
		exists, err := fileStore.Exists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no free storage key for %q", key)
}

func ownsKey(batch *models.Batch, key string) bool {
	return (batch.Coa != nil && *batch.Coa == key) || (batch.ColorSheet != nil && *batch.ColorSheet == key)
}

// keyReferenced reports whether a batch other than excludeID points at key.
// Pass 0 to consider every batch.
func keyReferenced(ctx context.Context, key string, excludeID uint) (bool, error) {
	var count int64
	err := database.WithContext(ctx).Model(&models.Batch{}).
		Where("(coa = ? OR color_sheet = ?) AND id <> ?", key, key, excludeID).
		Count(&count).Error
	return count > 0, err
}

// removeStoredFile deletes a blob no batch references any more, logging
// instead of failing the request.
func removeStoredFile(ctx context.Context, key string) {
	if fileStore == nil {
		return
	}
	if database != nil {
		referenced, err := keyReferenced(ctx, key, 0)
		if err != nil {
			applog.Warn(ctx, "failed to check file references", "key", key, "error", err)
			return
		}
		if referenced {
			applog.Debug(ctx, "stored file still referenced, keeping it", "key", key)
			return
		}
	}
	if err := fileStore.Delete(ctx, key); err != nil && !errors.Is(err, storage.ErrNotFound) {
		applog.Warn(ctx, "failed to remove stored file", "key", key, "error", err)
	}
}

// BatchCoaText returns the plain text of a PDF certificate of analysis.
func BatchCoaText(w http.ResponseWriter, r *http.Request) {
	if !requireDatabase(w, r) {
		return
	}
	if fileStore == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "file storage unavailable")
		return
	}
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	id, ok := pathID(w, r, "batch")
	if !ok {
		return
	}
	ctx := r.Context()

	var batch models.Batch
	if err := database.WithContext(ctx).First(&batch, id).Error; err != nil {
		writeDBError(w, r, err, "batch")
		return
	}
	if batch.Coa == nil {
		writeJSONError(w, http.StatusNotFound, "no coa uploaded")
		return
	}
	key := *batch.Coa
	if !strings.EqualFold(upload.Ext(key), ".pdf") {
		writeJSONError(w, http.StatusUnsupportedMediaType, "text can only be extracted from PDF certificates")
		return
	}

	body, err := fileStore.Open(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeJSONError(w, http.StatusNotFound, "coa file is missing")
			return
		}
		applog.Error(ctx, "failed to open coa", "key", key, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to read file")
		return
	}
	defer body.Close()

	doc, err := coa.Read(body)
	if err != nil {
		if errors.Is(err, coa.ErrNotPDF) {
			applog.Debug(ctx, "coa is not a readable pdf", "key", key, "error", err)
			writeJSONError(w, http.StatusUnprocessableEntity, "coa is not a readable PDF")
			return
		}
		applog.Error(ctx, "failed to extract coa text", "key", key, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to extract text")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"batch_id": batch.ID,
		"key":      key,
		"pages":    doc.Pages,
		"text":     doc.Text,
	})
}
