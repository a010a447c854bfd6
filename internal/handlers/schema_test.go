package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"qcs/internal/upload"
	"qcs/models"
)

func TestSchemas(t *testing.T) {
	t.Parallel()

	w := callAPI(t, Schemas, http.MethodGet, "/api/schema", 0, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	metas := decodeBody[[]models.Meta](t, w)
	names := []string{"supplier", "package", "product", "batch", "color_data"}
	if len(metas) != len(names) {
		t.Fatalf("expected %d schemas, got %d", len(names), len(metas))
	}
	for i, name := range names {
		if metas[i].Name != name {
			t.Fatalf("schema %d = %q, want %q", i, metas[i].Name, name)
		}
	}
}

func TestSchemaUsesConfiguredExtensions(t *testing.T) {
	original := fileValidator
	t.Cleanup(func() { fileValidator = original })
	fileValidator = upload.NewValidator([]string{"pdf"}, nil, 0)

	req := httptest.NewRequest(http.MethodGet, "/api/schema/batch", nil)
	req.SetPathValue("model", "batch")
	w := httptest.NewRecorder()
	Schema(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	meta := decodeBody[models.Meta](t, w)
	field, ok := meta.Field("coa")
	if !ok || field.HelpText != "Select file to upload (pdf)" {
		t.Fatalf("unexpected coa field %+v", field)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/schema/color-data", nil)
	req.SetPathValue("model", "color-data")
	w = httptest.NewRecorder()
	Schema(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for dashed name, got %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/schema/widget", nil)
	req.SetPathValue("model", "widget")
	w = httptest.NewRecorder()
	Schema(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}
