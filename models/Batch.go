package models

import (
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// Batch is one production lot of a product.
type Batch struct {
	Record
	ProductID  uint           `gorm:"not null;index" json:"product_id"`
	Product    *Product       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"product,omitempty"`
	Number     string         `gorm:"size:100;not null" json:"number"`
	Size       uint           `gorm:"not null" json:"size"`
	MDate      datatypes.Date `gorm:"column:m_date;not null" json:"m_date"`
	ExpDate    datatypes.Date `gorm:"column:exp_date;not null" json:"exp_date"`
	Coa        *string        `gorm:"size:255" json:"coa"`
	ColorSheet *string        `gorm:"column:color_sheet;size:255" json:"color_sheet"`
}

func (Batch) TableName() string { return "batches" }

func (b Batch) String() string {
	product := ""
	if b.Product != nil {
		product = b.Product.String()
	}
	return fmt.Sprintf("%s %s", product, b.Number)
}

// ManufacturedOn returns the manufacturing date.
func (b Batch) ManufacturedOn() time.Time { return time.Time(b.MDate) }

// ExpiresOn returns the expiry date.
func (b Batch) ExpiresOn() time.Time { return time.Time(b.ExpDate) }

// BeforeDelete refuses to remove a batch that still has color data.
func (b *Batch) BeforeDelete(tx *gorm.DB) error {
	var count int64
	if err := tx.Model(&ColorData{}).Where("batch_id = ?", b.ID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return &ProtectedError{Model: "batch", ID: b.ID, Dependents: "color data rows", Count: count}
	}
	return nil
}

// NewDate converts a calendar day to its column representation.
func NewDate(t time.Time) datatypes.Date {
	y, m, d := t.Date()
	return datatypes.Date(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(value string) (datatypes.Date, error) {
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return datatypes.Date{}, err
	}
	return NewDate(t), nil
}

// FormatDate renders a stored date as YYYY-MM-DD.
func FormatDate(d datatypes.Date) string {
	t := time.Time(d)
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}
