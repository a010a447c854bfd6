package handlers

import (
	"bytes"
	"mime"
	"net/http"
	"strconv"

	"qcs/internal/export"
	applog "qcs/internal/log"
	"qcs/models"
)

// ExportColorData downloads the filtered color data as CSV or XLSX.
func ExportColorData(w http.ResponseWriter, r *http.Request) {
	if !requireDatabase(w, r) {
		return
	}
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	ctx := r.Context()

	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "format must be csv or xlsx")
		return
	}
	query, ok := filteredColorData(w, r)
	if !ok {
		return
	}
	var rows []models.ColorData
	if err := query.Find(&rows).Error; err != nil {
		writeDBError(w, r, err, "color data")
		return
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, format, export.ColorDataTable(rows)); err != nil {
		applog.Error(ctx, "failed to render export", "format", format, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to export color data")
		return
	}

	w.Header().Set("Content-Type", export.ContentType(format))
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": "color-data." + format}))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		applog.Error(ctx, "failed to write export", "error", err)
		return
	}
	applog.Info(ctx, "color data exported", "format", format, "rows", len(rows))
}
