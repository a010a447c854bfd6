package handlers

import (
	"net/http"
	"strings"
	"time"

	"gorm.io/gorm"

	applog "qcs/internal/log"
	"qcs/models"
)

type supplierResponse struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Country   string    `json:"country"`
	City      string    `json:"city"`
	Display   string    `json:"display"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type supplierRequest struct {
	Name    string `json:"name" validate:"required,max=100"`
	Country string `json:"country" validate:"required,max=60"`
	City    string `json:"city" validate:"required,max=60"`
}

func (p *supplierRequest) normalize() {
	p.Name = strings.TrimSpace(p.Name)
	p.Country = strings.TrimSpace(p.Country)
	p.City = strings.TrimSpace(p.City)
}

func (p supplierRequest) apply(s *models.Supplier) {
	s.Name = p.Name
	s.Country = p.Country
	s.City = p.City
}

// SupplierCollection lists suppliers by name and creates new ones.
func SupplierCollection(w http.ResponseWriter, r *http.Request) {
	if !requireDatabase(w, r) {
		return
	}
	switch r.Method {
	case http.MethodGet:
		listSuppliers(w, r)
	case http.MethodPost:
		createSupplier(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// SupplierResource shows, updates and deletes a single supplier.
func SupplierResource(w http.ResponseWriter, r *http.Request) {
	if !requireDatabase(w, r) {
		return
	}
	id, ok := pathID(w, r, "supplier")
	if !ok {
		return
	}
	switch r.Method {
	case http.MethodGet:
		showSupplier(w, r, id)
	case http.MethodPut:
		updateSupplier(w, r, id)
	case http.MethodDelete:
		deleteSupplier(w, r, id)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func listSuppliers(w http.ResponseWriter, r *http.Request) {
	var suppliers []models.Supplier
	if err := database.WithContext(r.Context()).Order("name asc, id asc").Find(&suppliers).Error; err != nil {
		writeDBError(w, r, err, "supplier")
		return
	}
	responses := make([]supplierResponse, 0, len(suppliers))
	for _, s := range suppliers {
		responses = append(responses, projectSupplier(s))
	}
	writeJSON(w, http.StatusOK, responses)
}

func showSupplier(w http.ResponseWriter, r *http.Request, id uint) {
	var supplier models.Supplier
	if err := database.WithContext(r.Context()).First(&supplier, id).Error; err != nil {
		writeDBError(w, r, err, "supplier")
		return
	}
	writeJSON(w, http.StatusOK, projectSupplier(supplier))
}

func createSupplier(w http.ResponseWriter, r *http.Request) {
	var payload supplierRequest
	if !decodeJSON(w, r, &payload) {
		return
	}
	payload.normalize()
	if errs := validatePayload(models.SupplierMeta, payload); len(errs) > 0 {
		writeFieldErrors(w, errs)
		return
	}

	var supplier models.Supplier
	payload.apply(&supplier)
	if err := database.WithContext(r.Context()).Create(&supplier).Error; err != nil {
		writeDBError(w, r, err, "supplier")
		return
	}
	applog.Info(r.Context(), "supplier created", "id", supplier.ID, "name", supplier.Name)
	writeJSON(w, http.StatusCreated, projectSupplier(supplier))
}

func updateSupplier(w http.ResponseWriter, r *http.Request, id uint) {
	ctx := r.Context()
	var supplier models.Supplier
	if err := database.WithContext(ctx).First(&supplier, id).Error; err != nil {
		writeDBError(w, r, err, "supplier")
		return
	}

	var payload supplierRequest
	if !decodeJSON(w, r, &payload) {
		return
	}
	payload.normalize()
	if errs := validatePayload(models.SupplierMeta, payload); len(errs) > 0 {
		writeFieldErrors(w, errs)
		return
	}

	payload.apply(&supplier)
	if err := database.WithContext(ctx).Save(&supplier).Error; err != nil {
		writeDBError(w, r, err, "supplier")
		return
	}
	writeJSON(w, http.StatusOK, projectSupplier(supplier))
}

// deleteSupplier removes the supplier together with its products. A product
// that still has batches rolls the whole delete back.
func deleteSupplier(w http.ResponseWriter, r *http.Request, id uint) {
	ctx := r.Context()
	err := database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var supplier models.Supplier
		if err := tx.First(&supplier, id).Error; err != nil {
			return err
		}
		return tx.Delete(&supplier).Error
	})
	if err != nil {
		writeDBError(w, r, err, "supplier")
		return
	}
	applog.Info(ctx, "supplier deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

func projectSupplier(s models.Supplier) supplierResponse {
	return supplierResponse{
		ID:        s.ID,
		Name:      s.Name,
		Country:   s.Country,
		City:      s.City,
		Display:   s.String(),
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}
