package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"gorm.io/gorm"

	applog "qcs/internal/log"
	"qcs/models"
)

type batchResponse struct {
	ID         uint      `json:"id"`
	ProductID  uint      `json:"product_id"`
	Product    string    `json:"product"`
	Number     string    `json:"number"`
	Size       uint      `json:"size"`
	MDate      string    `json:"m_date"`
	ExpDate    string    `json:"exp_date"`
	Coa        *string   `json:"coa"`
	ColorSheet *string   `json:"color_sheet"`
	Display    string    `json:"display"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type batchRequest struct {
	ProductID uint   `json:"product_id" validate:"required"`
	Number    string `json:"number" validate:"required,max=100"`
	Size      uint   `json:"size" validate:"required,gt=0"`
	MDate     string `json:"m_date" validate:"required,datetime=2006-01-02"`
	ExpDate   string `json:"exp_date" validate:"required,datetime=2006-01-02"`
}

func (p *batchRequest) normalize() {
	p.Number = strings.TrimSpace(p.Number)
	p.MDate = strings.TrimSpace(p.MDate)
	p.ExpDate = strings.TrimSpace(p.ExpDate)
}

// validate runs the tag rules, checks the product exists and that the batch
// does not expire before it was made.
func (p batchRequest) validate(ctx context.Context) (fieldErrors, error) {
	errs := validatePayload(models.BatchMeta, p)
	if p.ProductID != 0 {
		found, err := exists(ctx, &models.Product{}, p.ProductID)
		if err != nil {
			return nil, err
		}
		if !found {
			errs.add(models.BatchMeta, "product_id", "Select a valid choice. That choice is not one of the available choices.")
		}
	}
	made, madeErr := models.ParseDate(p.MDate)
	expires, expErr := models.ParseDate(p.ExpDate)
	if madeErr == nil && expErr == nil && time.Time(expires).Before(time.Time(made)) {
		errs.add(models.BatchMeta, "exp_date", "Expiry date cannot be earlier than the manufacturing date.")
	}
	return errs, nil
}

// apply copies the payload onto b. Dates must have passed validate.
func (p batchRequest) apply(b *models.Batch) {
	b.ProductID = p.ProductID
	b.Number = p.Number
	b.Size = p.Size
	b.MDate, _ = models.ParseDate(p.MDate)
	b.ExpDate, _ = models.ParseDate(p.ExpDate)
	b.Product = nil
}

// BatchCollection lists batches by product name then number, optionally
// filtered by product_id, and creates new ones.
func BatchCollection(w http.ResponseWriter, r *http.Request) {
	if !requireDatabase(w, r) {
		return
	}
	switch r.Method {
	case http.MethodGet:
		listBatches(w, r)
	case http.MethodPost:
		createBatch(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// BatchResource shows, updates and deletes a single batch.
func BatchResource(w http.ResponseWriter, r *http.Request) {
	if !requireDatabase(w, r) {
		return
	}
	id, ok := pathID(w, r, "batch")
	if !ok {
		return
	}
	switch r.Method {
	case http.MethodGet:
		showBatch(w, r, id)
	case http.MethodPut:
		updateBatch(w, r, id)
	case http.MethodDelete:
		deleteBatch(w, r, id)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func batchQuery(ctx context.Context) *gorm.DB {
	return database.WithContext(ctx).Preload("Product")
}

func listBatches(w http.ResponseWriter, r *http.Request) {
	query := batchQuery(r.Context()).
		Select("batches.*").
		Joins("JOIN products ON products.id = batches.product_id").
		Order("products.name asc, batches.number asc, batches.id asc")

	productID, ok := queryID(r, "product_id")
	if !ok {
		writeJSONError(w, http.StatusBadRequest, "invalid product_id filter")
		return
	}
	if productID != nil {
		query = query.Where("batches.product_id = ?", *productID)
	}

	var batches []models.Batch
	if err := query.Find(&batches).Error; err != nil {
		writeDBError(w, r, err, "batch")
		return
	}
	responses := make([]batchResponse, 0, len(batches))
	for _, b := range batches {
		responses = append(responses, projectBatch(b))
	}
	writeJSON(w, http.StatusOK, responses)
}

func showBatch(w http.ResponseWriter, r *http.Request, id uint) {
	var batch models.Batch
	if err := batchQuery(r.Context()).First(&batch, id).Error; err != nil {
		writeDBError(w, r, err, "batch")
		return
	}
	writeJSON(w, http.StatusOK, projectBatch(batch))
}

func createBatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var payload batchRequest
	if !decodeJSON(w, r, &payload) {
		return
	}
	payload.normalize()
	errs, err := payload.validate(ctx)
	if err != nil {
		writeDBError(w, r, err, "batch")
		return
	}
	if len(errs) > 0 {
		writeFieldErrors(w, errs)
		return
	}

	var batch models.Batch
	payload.apply(&batch)
	if err := database.WithContext(ctx).Create(&batch).Error; err != nil {
		writeDBError(w, r, err, "batch")
		return
	}
	if err := batchQuery(ctx).First(&batch, batch.ID).Error; err != nil {
		writeDBError(w, r, err, "batch")
		return
	}
	applog.Info(ctx, "batch created", "id", batch.ID, "batch", batch.String())
	writeJSON(w, http.StatusCreated, projectBatch(batch))
}

// updateBatch leaves stored attachments at their existing keys even when the
// product or number changes.
func updateBatch(w http.ResponseWriter, r *http.Request, id uint) {
	ctx := r.Context()
	var batch models.Batch
	if err := database.WithContext(ctx).First(&batch, id).Error; err != nil {
		writeDBError(w, r, err, "batch")
		return
	}

	var payload batchRequest
	if !decodeJSON(w, r, &payload) {
		return
	}
	payload.normalize()
	errs, err := payload.validate(ctx)
	if err != nil {
		writeDBError(w, r, err, "batch")
		return
	}
	if len(errs) > 0 {
		writeFieldErrors(w, errs)
		return
	}

	payload.apply(&batch)
	if err := database.WithContext(ctx).Save(&batch).Error; err != nil {
		writeDBError(w, r, err, "batch")
		return
	}
	if err := batchQuery(ctx).First(&batch, id).Error; err != nil {
		writeDBError(w, r, err, "batch")
		return
	}
	writeJSON(w, http.StatusOK, projectBatch(batch))
}

// deleteBatch refuses while color data references the batch. Once the row
// is gone its attachments are removed from storage.
func deleteBatch(w http.ResponseWriter, r *http.Request, id uint) {
	ctx := r.Context()
	var batch models.Batch
	err := database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&batch, id).Error; err != nil {
			return err
		}
		return tx.Delete(&batch).Error
	})
	if err != nil {
		writeDBError(w, r, err, "batch")
		return
	}

	for _, key := range []*string{batch.Coa, batch.ColorSheet} {
		if key != nil {
			removeStoredFile(ctx, *key)
		}
	}
	applog.Info(ctx, "batch deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

func projectBatch(b models.Batch) batchResponse {
	resp := batchResponse{
		ID:         b.ID,
		ProductID:  b.ProductID,
		Number:     b.Number,
		Size:       b.Size,
		MDate:      models.FormatDate(b.MDate),
		ExpDate:    models.FormatDate(b.ExpDate),
		Coa:        b.Coa,
		ColorSheet: b.ColorSheet,
		Display:    b.String(),
		CreatedAt:  b.CreatedAt,
		UpdatedAt:  b.UpdatedAt,
	}
	if b.Product != nil {
		resp.Product = b.Product.String()
	}
	return resp
}
