package models

import (
	"fmt"

	"gorm.io/gorm"
)

// Supplier is the company a product is bought from.
type Supplier struct {
	Record
	Name    string `gorm:"size:100;not null" json:"name"`
	Country string `gorm:"size:60;not null" json:"country"`
	City    string `gorm:"size:60;not null" json:"city"`
}

func (s Supplier) String() string {
	return fmt.Sprintf("%s %s %s", s.Name, s.Country, s.City)
}

// BeforeDelete removes the supplier's products first. A product that still has
// batches aborts the whole delete, so callers should run it in a transaction.
func (s *Supplier) BeforeDelete(tx *gorm.DB) error {
	var products []Product
	if err := tx.Where("supplier_id = ?", s.ID).Find(&products).Error; err != nil {
		return err
	}
	for i := range products {
		if err := tx.Delete(&products[i]).Error; err != nil {
			return err
		}
	}
	return nil
}
