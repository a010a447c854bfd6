package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/alexedwards/scs/v2"
	"gorm.io/gorm"

	applog "qcs/internal/log"
	"qcs/internal/storage"
	"qcs/internal/upload"
	"qcs/models"
)

var (
	sessionManager *scs.SessionManager
	database       *gorm.DB

	fileStore     storage.Storage
	fileValidator = upload.Default()
	uploadPaths   = upload.DefaultPaths()
)

// Configure installs the shared dependencies used by the HTTP handlers.
func Configure(sm *scs.SessionManager, db *gorm.DB) {
	sessionManager = sm
	database = db
}

// ConfigureUploads installs the attachment store, the file type validator and
// the key layout. A nil validator keeps the stock allow-lists.
func ConfigureUploads(store storage.Storage, validator *upload.Validator, paths upload.Paths) {
	fileStore = store
	if validator == nil {
		validator = upload.Default()
	}
	fileValidator = validator
	uploadPaths = paths
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		applog.Error(context.Background(), "failed to encode json response", "error", err)
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeDBError maps persistence failures onto HTTP responses. what names the
// record type in messages and logs.
func writeDBError(w http.ResponseWriter, r *http.Request, err error, what string) {
	var protected *models.ProtectedError
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		applog.Debug(r.Context(), "record not found", "model", what)
		writeJSONError(w, http.StatusNotFound, what+" not found")
	case errors.As(err, &protected):
		applog.Debug(r.Context(), "delete blocked by dependents", "model", what, "error", err)
		writeJSONError(w, http.StatusConflict, protected.Error())
	case errors.Is(err, gorm.ErrDuplicatedKey):
		writeJSONError(w, http.StatusConflict, what+" already exists")
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		writeJSONError(w, http.StatusConflict, what+" is referenced by other records")
	default:
		applog.Error(r.Context(), "database operation failed", "model", what, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "internal server error")
	}
}

func requireDatabase(w http.ResponseWriter, r *http.Request) bool {
	if database == nil {
		applog.Debug(r.Context(), "request without database", "path", r.URL.Path)
		writeJSONError(w, http.StatusServiceUnavailable, "service unavailable")
		return false
	}
	return true
}

func parseID(value string) (uint, bool) {
	id, err := strconv.ParseUint(value, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// pathID reads the {id} wildcard. It writes a 404 and returns false when the
// value is not a positive integer.
func pathID(w http.ResponseWriter, r *http.Request, what string) (uint, bool) {
	id, ok := parseID(r.PathValue("id"))
	if !ok {
		applog.Debug(r.Context(), "invalid identifier", "model", what, "identifier", r.PathValue("id"))
		writeJSONError(w, http.StatusNotFound, what+" not found")
		return 0, false
	}
	return id, true
}

// queryID reads an optional numeric filter. The second result is false when
// the parameter is present but malformed.
func queryID(r *http.Request, name string) (*uint, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, true
	}
	id, ok := parseID(raw)
	if !ok {
		return nil, false
	}
	return &id, true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		applog.Debug(r.Context(), "invalid request payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return false
	}
	return true
}
