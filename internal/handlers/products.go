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

type productResponse struct {
	ID               uint      `json:"id"`
	ProductID        *string   `json:"product_id"`
	Code             string    `json:"code"`
	Name             string    `json:"name"`
	Formula          string    `json:"formula"`
	FormulaLabel     string    `json:"formula_label"`
	ProductType      string    `json:"product_type"`
	ProductTypeLabel string    `json:"product_type_label"`
	SupplierID       uint      `json:"supplier_id"`
	Supplier         string    `json:"supplier"`
	PackageID        *uint     `json:"package_id"`
	Package          string    `json:"package"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type productRequest struct {
	ProductID   *string `json:"product_id" validate:"omitempty,max=50"`
	Code        string  `json:"code" validate:"required,max=50"`
	Name        string  `json:"name" validate:"required,max=100"`
	Formula     string  `json:"formula" validate:"required,choice=formula"`
	ProductType string  `json:"product_type" validate:"required,choice=product_type"`
	SupplierID  uint    `json:"supplier_id" validate:"required"`
	PackageID   *uint   `json:"package_id"`
}

func (p *productRequest) normalize() {
	if p.ProductID != nil {
		trimmed := strings.TrimSpace(*p.ProductID)
		if trimmed == "" {
			p.ProductID = nil
		} else {
			p.ProductID = &trimmed
		}
	}
	if p.PackageID != nil && *p.PackageID == 0 {
		p.PackageID = nil
	}
	p.Code = strings.TrimSpace(p.Code)
	p.Name = strings.TrimSpace(p.Name)
	p.Formula = models.NormalizeChoice(p.Formula)
	p.ProductType = models.NormalizeChoice(p.ProductType)
}

// validate runs the tag rules and checks that referenced rows exist.
func (p productRequest) validate(ctx context.Context) (fieldErrors, error) {
	errs := validatePayload(models.ProductMeta, p)
	if p.SupplierID != 0 {
		found, err := exists(ctx, &models.Supplier{}, p.SupplierID)
		if err != nil {
			return nil, err
		}
		if !found {
			errs.add(models.ProductMeta, "supplier_id", "Select a valid choice. That choice is not one of the available choices.")
		}
	}
	if p.PackageID != nil {
		found, err := exists(ctx, &models.Package{}, *p.PackageID)
		if err != nil {
			return nil, err
		}
		if !found {
			errs.add(models.ProductMeta, "package_id", "Select a valid choice. That choice is not one of the available choices.")
		}
	}
	return errs, nil
}

func (p productRequest) apply(product *models.Product) {
	product.ProductID = p.ProductID
	product.Code = p.Code
	product.Name = p.Name
	product.Formula = models.Formula(p.Formula)
	product.ProductType = models.ProductType(p.ProductType)
	product.SupplierID = p.SupplierID
	product.PackageID = p.PackageID
	product.Supplier = nil
	product.Package = nil
}

func exists(ctx context.Context, model any, id uint) (bool, error) {
	var count int64
	if err := database.WithContext(ctx).Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ProductCollection lists products by name, optionally filtered by
// product_type and supplier_id, and creates new ones.
func ProductCollection(w http.ResponseWriter, r *http.Request) {
	if !requireDatabase(w, r) {
		return
	}
	switch r.Method {
	case http.MethodGet:
		listProducts(w, r)
	case http.MethodPost:
		createProduct(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// ProductResource shows, updates and deletes a single product.
func ProductResource(w http.ResponseWriter, r *http.Request) {
	if !requireDatabase(w, r) {
		return
	}
	id, ok := pathID(w, r, "product")
	if !ok {
		return
	}
	switch r.Method {
	case http.MethodGet:
		showProduct(w, r, id)
	case http.MethodPut:
		updateProduct(w, r, id)
	case http.MethodDelete:
		deleteProduct(w, r, id)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func productQuery(ctx context.Context) *gorm.DB {
	return database.WithContext(ctx).Preload("Supplier").Preload("Package")
}

func listProducts(w http.ResponseWriter, r *http.Request) {
	query := productQuery(r.Context()).Order("name asc, id asc")

	if raw := r.URL.Query().Get("product_type"); raw != "" {
		productType := models.ProductType(models.NormalizeChoice(raw))
		if !productType.Valid() {
			writeJSONError(w, http.StatusBadRequest, "invalid product_type filter")
			return
		}
		query = query.Where("product_type = ?", productType)
	}
	supplierID, ok := queryID(r, "supplier_id")
	if !ok {
		writeJSONError(w, http.StatusBadRequest, "invalid supplier_id filter")
		return
	}
	if supplierID != nil {
		query = query.Where("supplier_id = ?", *supplierID)
	}

	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		writeDBError(w, r, err, "product")
		return
	}
	responses := make([]productResponse, 0, len(products))
	for _, p := range products {
		responses = append(responses, projectProduct(p))
	}
	writeJSON(w, http.StatusOK, responses)
}

func showProduct(w http.ResponseWriter, r *http.Request, id uint) {
	var product models.Product
	if err := productQuery(r.Context()).First(&product, id).Error; err != nil {
		writeDBError(w, r, err, "product")
		return
	}
	writeJSON(w, http.StatusOK, projectProduct(product))
}

func createProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var payload productRequest
	if !decodeJSON(w, r, &payload) {
		return
	}
	payload.normalize()
	errs, err := payload.validate(ctx)
	if err != nil {
		writeDBError(w, r, err, "product")
		return
	}
	if len(errs) > 0 {
		writeFieldErrors(w, errs)
		return
	}

	var product models.Product
	payload.apply(&product)
	if err := database.WithContext(ctx).Create(&product).Error; err != nil {
		writeDBError(w, r, err, "product")
		return
	}
	if err := productQuery(ctx).First(&product, product.ID).Error; err != nil {
		writeDBError(w, r, err, "product")
		return
	}
	applog.Info(ctx, "product created", "id", product.ID, "name", product.Name)
	writeJSON(w, http.StatusCreated, projectProduct(product))
}

func updateProduct(w http.ResponseWriter, r *http.Request, id uint) {
	ctx := r.Context()
	var product models.Product
	if err := database.WithContext(ctx).First(&product, id).Error; err != nil {
		writeDBError(w, r, err, "product")
		return
	}

	var payload productRequest
	if !decodeJSON(w, r, &payload) {
		return
	}
	payload.normalize()
	errs, err := payload.validate(ctx)
	if err != nil {
		writeDBError(w, r, err, "product")
		return
	}
	if len(errs) > 0 {
		writeFieldErrors(w, errs)
		return
	}

	payload.apply(&product)
	if err := database.WithContext(ctx).Save(&product).Error; err != nil {
		writeDBError(w, r, err, "product")
		return
	}
	if err := productQuery(ctx).First(&product, id).Error; err != nil {
		writeDBError(w, r, err, "product")
		return
	}
	writeJSON(w, http.StatusOK, projectProduct(product))
}

// deleteProduct refuses while batches reference the product.
func deleteProduct(w http.ResponseWriter, r *http.Request, id uint) {
	ctx := r.Context()
	err := database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.First(&product, id).Error; err != nil {
			return err
		}
		return tx.Delete(&product).Error
	})
	if err != nil {
		writeDBError(w, r, err, "product")
		return
	}
	applog.Info(ctx, "product deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

func projectProduct(p models.Product) productResponse {
	resp := productResponse{
		ID:               p.ID,
		ProductID:        p.ProductID,
		Code:             p.Code,
		Name:             p.Name,
		Formula:          string(p.Formula),
		FormulaLabel:     p.Formula.Label(),
		ProductType:      string(p.ProductType),
		ProductTypeLabel: p.ProductType.Label(),
		SupplierID:       p.SupplierID,
		PackageID:        p.PackageID,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
	if p.Supplier != nil {
		resp.Supplier = p.Supplier.String()
	}
	if p.Package != nil {
		resp.Package = p.Package.String()
	}
	return resp
}
