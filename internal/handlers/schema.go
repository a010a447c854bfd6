package handlers

import (
	"net/http"

	"qcs/models"
)

// Schemas lists the field metadata of every record type.
func Schemas(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, models.SchemasFor(fileValidator.Extensions))
}

// Schema returns the field metadata of one record type.
func Schema(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	meta, ok := models.SchemaFor(r.PathValue("model"), fileValidator.Extensions)
	if !ok {
		writeJSONError(w, http.StatusNotFound, "unknown model")
		return
	}
	writeJSON(w, http.StatusOK, meta)
}
