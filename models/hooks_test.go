package models_test

import (
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"

	"qcs/internal/db/mock"
	"qcs/models"
)

func seededDB(t *testing.T) *gorm.DB {
	t.Helper()
	database, err := mock.New(context.Background())
	if err != nil {
		t.Fatalf("mock.New() error = %v", err)
	}
	return database
}

func findProduct(t *testing.T, database *gorm.DB, name string) models.Product {
	t.Helper()
	var product models.Product
	if err := database.Where("name = ?", name).First(&product).Error; err != nil {
		t.Fatalf("find product %q: %v", name, err)
	}
	return product
}

func TestDeleteProductWithBatchesIsProtected(t *testing.T) {
	t.Parallel()

	database := seededDB(t)
	product := findProduct(t, database, "some base coat 123")

	err := database.Delete(&product).Error
	if !errors.Is(err, models.ErrProtected) {
		t.Fatalf("Delete(product) = %v, want ErrProtected", err)
	}
	var pe *models.ProtectedError
	if !errors.As(err, &pe) || pe.Model != "product" || pe.Count != 1 {
		t.Fatalf("unexpected protected error: %#v", pe)
	}
	if err := database.First(&models.Product{}, product.ID).Error; err != nil {
		t.Fatalf("product should still exist: %v", err)
	}
}

func TestDeleteBatchWithColorDataIsProtected(t *testing.T) {
	t.Parallel()

	database := seededDB(t)
	var batch models.Batch
	if err := database.Where("number = ?", "bx123").First(&batch).Error; err != nil {
		t.Fatalf("find batch: %v", err)
	}

	if err := database.Delete(&batch).Error; !errors.Is(err, models.ErrProtected) {
		t.Fatalf("Delete(batch) = %v, want ErrProtected", err)
	}

	var unmeasured models.Batch
	if err := database.Where("number = ?", "cc77").First(&unmeasured).Error; err != nil {
		t.Fatalf("find batch: %v", err)
	}
	if err := database.Delete(&unmeasured).Error; err != nil {
		t.Fatalf("Delete(batch without color data) = %v", err)
	}
}

func TestDeletePackageDetachesProducts(t *testing.T) {
	t.Parallel()

	database := seededDB(t)
	product := findProduct(t, database, "some base coat 123")
	if product.PackageID == nil {
		t.Fatal("expected seeded product to reference a package")
	}

	if err := database.Delete(&models.Package{Record: models.Record{ID: *product.PackageID}}).Error; err != nil {
		t.Fatalf("Delete(package) = %v", err)
	}

	reloaded := findProduct(t, database, "some base coat 123")
	if reloaded.PackageID != nil {
		t.Fatalf("PackageID = %v, want nil", *reloaded.PackageID)
	}
}

func TestDeleteSupplierCascadesUnlessProtected(t *testing.T) {
	t.Parallel()

	database := seededDB(t)

	var protected models.Supplier
	if err := database.Where("name = ?", "Nordic Coatings").First(&protected).Error; err != nil {
		t.Fatalf("find supplier: %v", err)
	}
	err := database.Transaction(func(tx *gorm.DB) error {
		return tx.Delete(&protected).Error
	})
	if !errors.Is(err, models.ErrProtected) {
		t.Fatalf("Delete(supplier with batches) = %v, want ErrProtected", err)
	}
	var count int64
	database.Model(&models.Product{}).Where("supplier_id = ?", protected.ID).Count(&count)
	if count != 2 {
		t.Fatalf("rolled back delete left %d products, want 2", count)
	}

	var free models.Supplier
	if err := database.Where("name = ?", "Adriatic Resins").First(&free).Error; err != nil {
		t.Fatalf("find supplier: %v", err)
	}
	if err := database.Transaction(func(tx *gorm.DB) error {
		return tx.Delete(&free).Error
	}); err != nil {
		t.Fatalf("Delete(supplier) = %v", err)
	}
	database.Model(&models.Product{}).Where("supplier_id = ?", free.ID).Count(&count)
	if count != 0 {
		t.Fatalf("cascade left %d products", count)
	}
}
