package models

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// Package describes a container type and size products are shipped in.
type Package struct {
	Record
	PackageType PackageType   `gorm:"size:8;not null" json:"package_type"`
	UOM         UnitOfMeasure `gorm:"column:uom;size:3;not null" json:"uom"`
	Size        uint          `gorm:"not null" json:"size"`
}

func (p Package) String() string {
	return fmt.Sprintf("%d %s %s", p.Size, p.UOM.Label(), strings.ToLower(p.PackageType.Label()))
}

// BeforeDelete detaches products that reference the package.
func (p *Package) BeforeDelete(tx *gorm.DB) error {
	return tx.Model(&Product{}).Where("package_id = ?", p.ID).Update("package_id", nil).Error
}
