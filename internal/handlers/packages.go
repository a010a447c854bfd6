package handlers

import (
	"net/http"
	"time"

	"gorm.io/gorm"

	applog "qcs/internal/log"
	"qcs/models"
)

type packageResponse struct {
	ID               uint      `json:"id"`
	PackageType      string    `json:"package_type"`
	PackageTypeLabel string    `json:"package_type_label"`
	UOM              string    `json:"uom"`
	UOMLabel         string    `json:"uom_label"`
	Size             uint      `json:"size"`
	Display          string    `json:"display"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type packageRequest struct {
	PackageType string `json:"package_type" validate:"required,choice=package_type"`
	UOM         string `json:"uom" validate:"required,choice=uom"`
	Size        uint   `json:"size" validate:"required,gt=0"`
}

func (p *packageRequest) normalize() {
	p.PackageType = models.NormalizeChoice(p.PackageType)
	p.UOM = models.NormalizeChoice(p.UOM)
}

func (p packageRequest) apply(pkg *models.Package) {
	pkg.PackageType = models.PackageType(p.PackageType)
	pkg.UOM = models.UnitOfMeasure(p.UOM)
	pkg.Size = p.Size
}

// PackageCollection lists packages by size and creates new ones.
func PackageCollection(w http.ResponseWriter, r *http.Request) {
	if !requireDatabase(w, r) {
		return
	}
	switch r.Method {
	case http.MethodGet:
		listPackages(w, r)
	case http.MethodPost:
		createPackage(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// PackageResource shows, updates and deletes a single package.
func PackageResource(w http.ResponseWriter, r *http.Request) {
	if !requireDatabase(w, r) {
		return
	}
	id, ok := pathID(w, r, "package")
	if !ok {
		return
	}
	switch r.Method {
	case http.MethodGet:
		showPackage(w, r, id)
	case http.MethodPut:
		updatePackage(w, r, id)
	case http.MethodDelete:
		deletePackage(w, r, id)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func listPackages(w http.ResponseWriter, r *http.Request) {
	var packages []models.Package
	if err := database.WithContext(r.Context()).Order("size asc, id asc").Find(&packages).Error; err != nil {
		writeDBError(w, r, err, "package")
		return
	}
	responses := make([]packageResponse, 0, len(packages))
	for _, p := range packages {
		responses = append(responses, projectPackage(p))
	}
	writeJSON(w, http.StatusOK, responses)
}

func showPackage(w http.ResponseWriter, r *http.Request, id uint) {
	var pkg models.Package
	if err := database.WithContext(r.Context()).First(&pkg, id).Error; err != nil {
		writeDBError(w, r, err, "package")
		return
	}
	writeJSON(w, http.StatusOK, projectPackage(pkg))
}

func createPackage(w http.ResponseWriter, r *http.Request) {
	var payload packageRequest
	if !decodeJSON(w, r, &payload) {
		return
	}
	payload.normalize()
	if errs := validatePayload(models.PackageMeta, payload); len(errs) > 0 {
		writeFieldErrors(w, errs)
		return
	}

	var pkg models.Package
	payload.apply(&pkg)
	if err := database.WithContext(r.Context()).Create(&pkg).Error; err != nil {
		writeDBError(w, r, err, "package")
		return
	}
	applog.Info(r.Context(), "package created", "id", pkg.ID, "package", pkg.String())
	writeJSON(w, http.StatusCreated, projectPackage(pkg))
}

func updatePackage(w http.ResponseWriter, r *http.Request, id uint) {
	ctx := r.Context()
	var pkg models.Package
	if err := database.WithContext(ctx).First(&pkg, id).Error; err != nil {
		writeDBError(w, r, err, "package")
		return
	}

	var payload packageRequest
	if !decodeJSON(w, r, &payload) {
		return
	}
	payload.normalize()
	if errs := validatePayload(models.PackageMeta, payload); len(errs) > 0 {
		writeFieldErrors(w, errs)
		return
	}

	payload.apply(&pkg)
	if err := database.WithContext(ctx).Save(&pkg).Error; err != nil {
		writeDBError(w, r, err, "package")
		return
	}
	writeJSON(w, http.StatusOK, projectPackage(pkg))
}

// deletePackage detaches the products that used the package before removing it.
func deletePackage(w http.ResponseWriter, r *http.Request, id uint) {
	ctx := r.Context()
	err := database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var pkg models.Package
		if err := tx.First(&pkg, id).Error; err != nil {
			return err
		}
		return tx.Delete(&pkg).Error
	})
	if err != nil {
		writeDBError(w, r, err, "package")
		return
	}
	applog.Info(ctx, "package deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

func projectPackage(p models.Package) packageResponse {
	return packageResponse{
		ID:               p.ID,
		PackageType:      string(p.PackageType),
		PackageTypeLabel: p.PackageType.Label(),
		UOM:              string(p.UOM),
		UOMLabel:         p.UOM.Label(),
		Size:             p.Size,
		Display:          p.String(),
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}
