package handlers

import (
	"net/http"

	applog "qcs/internal/log"
	"qcs/internal/views/pages"
	"qcs/models"
)

const recentBatchLimit = 10

// Home renders the index page: record counts and the latest batches.
func Home(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	switch r.Method {
	case http.MethodGet, http.MethodHead:
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var counts pages.Counts
	var batches []models.Batch
	if database != nil {
		ctx := r.Context()
		tables := []struct {
			model any
			dest  *int64
		}{
			{&models.Supplier{}, &counts.Suppliers},
			{&models.Package{}, &counts.Packages},
			{&models.Product{}, &counts.Products},
			{&models.Batch{}, &counts.Batches},
			{&models.ColorData{}, &counts.ColorData},
		}
		for _, table := range tables {
			if err := database.WithContext(ctx).Model(table.model).Count(table.dest).Error; err != nil {
				applog.Error(ctx, "failed to count records", "error", err)
				http.Error(w, "unable to load records", http.StatusInternalServerError)
				return
			}
		}
		if err := database.WithContext(ctx).Preload("Product").Order("m_date desc, id desc").Limit(recentBatchLimit).Find(&batches).Error; err != nil {
			applog.Error(ctx, "failed to load recent batches", "error", err)
			http.Error(w, "unable to load records", http.StatusInternalServerError)
			return
		}
	}

	snapshot := pages.NewIndexSnapshot(counts, batches, currentUserName(r), ActiveSession(r))
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pages.Index(snapshot).Render(r.Context(), w); err != nil {
		applog.Error(r.Context(), "failed to render index", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
