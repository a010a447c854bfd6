package models

import (
	"gorm.io/gorm"
)

// Product is a coating or chemical sold by a supplier.
type Product struct {
	Record
	ProductID   *string     `gorm:"column:product_id;size:50;uniqueIndex" json:"product_id"`
	Code        string      `gorm:"size:50;not null" json:"code"`
	Name        string      `gorm:"size:100;not null;index" json:"name"`
	Formula     Formula     `gorm:"size:2;not null" json:"formula"`
	ProductType ProductType `gorm:"size:2;not null;index" json:"product_type"`
	SupplierID  uint        `gorm:"not null;index" json:"supplier_id"`
	Supplier    *Supplier   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"supplier,omitempty"`
	PackageID   *uint       `gorm:"index" json:"package_id"`
	Package     *Package    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"package,omitempty"`
}

func (p Product) String() string { return p.Name }

// BeforeDelete refuses to remove a product that still has batches.
func (p *Product) BeforeDelete(tx *gorm.DB) error {
	var count int64
	if err := tx.Model(&Batch{}).Where("product_id = ?", p.ID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return &ProtectedError{Model: "product", ID: p.ID, Dependents: "batches", Count: count}
	}
	return nil
}
