package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	applog "qcs/internal/log"
	"qcs/models"
)

type colorDataResponse struct {
	ID            uint              `json:"id"`
	BatchID       uint              `json:"batch_id"`
	Batch         string            `json:"batch"`
	Timestamp     time.Time         `json:"timestamp"`
	Category      string            `json:"category"`
	CategoryLabel string            `json:"category_label"`
	Measurements  map[string]string `json:"measurements"`
	Comment       string            `json:"comment"`
	Display       string            `json:"display"`
}

type colorDataRequest struct {
	BatchID  uint             `json:"batch_id" validate:"required"`
	Category string           `json:"category" validate:"required,choice=color_category"`
	L25      *decimal.Decimal `json:"l_25"`
	L45      *decimal.Decimal `json:"l_45"`
	L75      *decimal.Decimal `json:"l_75"`
	A25      *decimal.Decimal `json:"a_25"`
	A45      *decimal.Decimal `json:"a_45"`
	A75      *decimal.Decimal `json:"a_75"`
	B25      *decimal.Decimal `json:"b_25"`
	B45      *decimal.Decimal `json:"b_45"`
	B75      *decimal.Decimal `json:"b_75"`
	DE25     *decimal.Decimal `json:"de_25"`
	DE45     *decimal.Decimal `json:"de_45"`
	DE75     *decimal.Decimal `json:"de_75"`
	Comment  string           `json:"comment"`
}

func (p *colorDataRequest) normalize() {
	p.Category = models.NormalizeChoice(p.Category)
	p.Comment = strings.TrimSpace(p.Comment)
}

func (p colorDataRequest) measurements() map[string]*decimal.Decimal {
	return map[string]*decimal.Decimal{
		"l_25": p.L25, "l_45": p.L45, "l_75": p.L75,
		"a_25": p.A25, "a_45": p.A45, "a_75": p.A75,
		"b_25": p.B25, "b_45": p.B45, "b_75": p.B75,
		"de_25": p.DE25, "de_45": p.DE45, "de_75": p.DE75,
	}
}

// validate runs the tag rules, checks the batch exists and that every
// reading is present and fits numeric(5,2).
func (p colorDataRequest) validate(ctx context.Context) (fieldErrors, error) {
	meta := models.ColorDataMeta
	errs := validatePayload(meta, p)
	if p.BatchID != 0 {
		found, err := exists(ctx, &models.Batch{}, p.BatchID)
		if err != nil {
			return nil, err
		}
		if !found {
			errs.add(meta, "batch_id", "Select a valid choice. That choice is not one of the available choices.")
		}
	}

	values := p.measurements()
	for _, name := range models.MeasurementFields {
		value := values[name]
		if value == nil {
			errs.add(meta, name, "This field is required.")
			continue
		}
		switch err := models.ValidateMeasurement(*value); {
		case errors.Is(err, models.ErrMeasurementPlaces):
			errs.add(meta, name, fmt.Sprintf("Ensure that there are no more than %d decimal places.", models.MeasurementDecimalPlaces))
		case errors.Is(err, models.ErrMeasurementDigits):
			errs.add(meta, name, fmt.Sprintf("Ensure that there are no more than %d digits before the decimal point.", models.MeasurementMaxDigits-models.MeasurementDecimalPlaces))
		}
	}
	return errs, nil
}

// apply copies the payload onto c. Measurements must have passed validate.
func (p colorDataRequest) apply(c *models.ColorData) {
	c.BatchID = p.BatchID
	c.Category = models.ColorCategory(p.Category)
	c.L25, c.L45, c.L75 = *p.L25, *p.L45, *p.L75
	c.A25, c.A45, c.A75 = *p.A25, *p.A45, *p.A75
	c.B25, c.B45, c.B75 = *p.B25, *p.B45, *p.B75
	c.DE25, c.DE45, c.DE75 = *p.DE25, *p.DE45, *p.DE75
	c.Comment = p.Comment
	c.Batch = nil
}

// ColorDataCollection lists readings newest first, optionally filtered by
// batch_id and category, and records new ones.
func ColorDataCollection(w http.ResponseWriter, r *http.Request) {
	if !requireDatabase(w, r) {
		return
	}
	switch r.Method {
	case http.MethodGet:
		listColorData(w, r)
	case http.MethodPost:
		createColorData(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// ColorDataResource shows, updates and deletes a single reading.
func ColorDataResource(w http.ResponseWriter, r *http.Request) {
	if !requireDatabase(w, r) {
		return
	}
	id, ok := pathID(w, r, "color data")
	if !ok {
		return
	}
	switch r.Method {
	case http.MethodGet:
		showColorData(w, r, id)
	case http.MethodPut:
		updateColorData(w, r, id)
	case http.MethodDelete:
		deleteColorData(w, r, id)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func colorDataQuery(ctx context.Context) *gorm.DB {
	return database.WithContext(ctx).Preload("Batch.Product")
}

// filteredColorData applies the batch_id and category query filters. Rows
// are newest first, ties ordered like batches (product name, number) and
// then by category. It writes a 400 and returns false on malformed values.
func filteredColorData(w http.ResponseWriter, r *http.Request) (*gorm.DB, bool) {
	query := colorDataQuery(r.Context()).
		Select("color_data.*").
		Joins("JOIN batches ON batches.id = color_data.batch_id").
		Joins("JOIN products ON products.id = batches.product_id").
		Order("color_data.timestamp desc, products.name asc, batches.number asc, color_data.batch_id asc, color_data.category asc, color_data.id asc")

	batchID, ok := queryID(r, "batch_id")
	if !ok {
		writeJSONError(w, http.StatusBadRequest, "invalid batch_id filter")
		return nil, false
	}
	if batchID != nil {
		query = query.Where("color_data.batch_id = ?", *batchID)
	}
	if raw := r.URL.Query().Get("category"); raw != "" {
		category := models.ColorCategory(models.NormalizeChoice(raw))
		if !category.Valid() {
			writeJSONError(w, http.StatusBadRequest, "invalid category filter")
			return nil, false
		}
		query = query.Where("color_data.category = ?", category)
	}
	return query, true
}

func listColorData(w http.ResponseWriter, r *http.Request) {
	query, ok := filteredColorData(w, r)
	if !ok {
		return
	}
	var rows []models.ColorData
	if err := query.Find(&rows).Error; err != nil {
		writeDBError(w, r, err, "color data")
		return
	}
	responses := make([]colorDataResponse, 0, len(rows))
	for _, c := range rows {
		responses = append(responses, projectColorData(c))
	}
	writeJSON(w, http.StatusOK, responses)
}

func showColorData(w http.ResponseWriter, r *http.Request, id uint) {
	var row models.ColorData
	if err := colorDataQuery(r.Context()).First(&row, id).Error; err != nil {
		writeDBError(w, r, err, "color data")
		return
	}
	writeJSON(w, http.StatusOK, projectColorData(row))
}

func createColorData(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var payload colorDataRequest
	if !decodeJSON(w, r, &payload) {
		return
	}
	payload.normalize()
	errs, err := payload.validate(ctx)
	if err != nil {
		writeDBError(w, r, err, "color data")
		return
	}
	if len(errs) > 0 {
		writeFieldErrors(w, errs)
		return
	}

	var row models.ColorData
	payload.apply(&row)
	if err := database.WithContext(ctx).Create(&row).Error; err != nil {
		writeDBError(w, r, err, "color data")
		return
	}
	if err := colorDataQuery(ctx).First(&row, row.ID).Error; err != nil {
		writeDBError(w, r, err, "color data")
		return
	}
	applog.Info(ctx, "color data recorded", "id", row.ID, "batch_id", row.BatchID, "category", row.Category)
	writeJSON(w, http.StatusCreated, projectColorData(row))
}

// updateColorData keeps the original timestamp.
func updateColorData(w http.ResponseWriter, r *http.Request, id uint) {
	ctx := r.Context()
	var row models.ColorData
	if err := database.WithContext(ctx).First(&row, id).Error; err != nil {
		writeDBError(w, r, err, "color data")
		return
	}

	var payload colorDataRequest
	if !decodeJSON(w, r, &payload) {
		return
	}
	payload.normalize()
	errs, err := payload.validate(ctx)
	if err != nil {
		writeDBError(w, r, err, "color data")
		return
	}
	if len(errs) > 0 {
		writeFieldErrors(w, errs)
		return
	}

	payload.apply(&row)
	if err := database.WithContext(ctx).Save(&row).Error; err != nil {
		writeDBError(w, r, err, "color data")
		return
	}
	if err := colorDataQuery(ctx).First(&row, id).Error; err != nil {
		writeDBError(w, r, err, "color data")
		return
	}
	writeJSON(w, http.StatusOK, projectColorData(row))
}

func deleteColorData(w http.ResponseWriter, r *http.Request, id uint) {
	ctx := r.Context()
	result := database.WithContext(ctx).Delete(&models.ColorData{}, id)
	if result.Error != nil {
		writeDBError(w, r, result.Error, "color data")
		return
	}
	if result.RowsAffected == 0 {
		writeDBError(w, r, gorm.ErrRecordNotFound, "color data")
		return
	}
	applog.Info(ctx, "color data deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

func projectColorData(c models.ColorData) colorDataResponse {
	values := c.Measurements()
	measurements := make(map[string]string, len(values))
	for name, value := range values {
		measurements[name] = value.StringFixed(models.MeasurementDecimalPlaces)
	}
	resp := colorDataResponse{
		ID:            c.ID,
		BatchID:       c.BatchID,
		Timestamp:     c.Timestamp,
		Category:      string(c.Category),
		CategoryLabel: c.Category.Label(),
		Measurements:  measurements,
		Comment:       c.Comment,
		Display:       c.String(),
	}
	if c.Batch != nil {
		resp.Batch = c.Batch.String()
	}
	return resp
}
