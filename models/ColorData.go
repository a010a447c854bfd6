package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Measurement precision: 5 significant digits, 2 of them decimals.
const (
	MeasurementMaxDigits     = 5
	MeasurementDecimalPlaces = 2
)

var (
	ErrMeasurementPlaces = errors.New("models: measurement has more than 2 decimal places")
	ErrMeasurementDigits = errors.New("models: measurement has more than 3 whole digits")

	measurementLimit = decimal.New(1, MeasurementMaxDigits-MeasurementDecimalPlaces)
)

// MeasurementFields lists the colorimetric columns in display order.
var MeasurementFields = []string{
	"l_25", "l_45", "l_75",
	"a_25", "a_45", "a_75",
	"b_25", "b_45", "b_75",
	"de_25", "de_45", "de_75",
}

// ColorData is one L*a*b*/dE reading of a batch at three geometries.
type ColorData struct {
	Record
	BatchID   uint            `gorm:"not null;index" json:"batch_id"`
	Batch     *Batch          `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"batch,omitempty"`
	Timestamp time.Time       `gorm:"autoCreateTime;not null;index" json:"timestamp"`
	Category  ColorCategory   `gorm:"size:2;not null" json:"category"`
	L25       decimal.Decimal `gorm:"column:l_25;type:numeric(5,2);not null" json:"l_25"`
	L45       decimal.Decimal `gorm:"column:l_45;type:numeric(5,2);not null" json:"l_45"`
	L75       decimal.Decimal `gorm:"column:l_75;type:numeric(5,2);not null" json:"l_75"`
	A25       decimal.Decimal `gorm:"column:a_25;type:numeric(5,2);not null" json:"a_25"`
	A45       decimal.Decimal `gorm:"column:a_45;type:numeric(5,2);not null" json:"a_45"`
	A75       decimal.Decimal `gorm:"column:a_75;type:numeric(5,2);not null" json:"a_75"`
	B25       decimal.Decimal `gorm:"column:b_25;type:numeric(5,2);not null" json:"b_25"`
	B45       decimal.Decimal `gorm:"column:b_45;type:numeric(5,2);not null" json:"b_45"`
	B75       decimal.Decimal `gorm:"column:b_75;type:numeric(5,2);not null" json:"b_75"`
	DE25      decimal.Decimal `gorm:"column:de_25;type:numeric(5,2);not null" json:"de_25"`
	DE45      decimal.Decimal `gorm:"column:de_45;type:numeric(5,2);not null" json:"de_45"`
	DE75      decimal.Decimal `gorm:"column:de_75;type:numeric(5,2);not null" json:"de_75"`
	Comment   string          `gorm:"type:text" json:"comment"`
}

func (ColorData) TableName() string { return "color_data" }

func (c ColorData) String() string {
	batch := ""
	if c.Batch != nil {
		batch = c.Batch.String()
	}
	return strings.ToLower(fmt.Sprintf("%s %s", batch, c.Category.Label()))
}

// Measurements returns the readings keyed like MeasurementFields.
func (c ColorData) Measurements() map[string]decimal.Decimal {
	return map[string]decimal.Decimal{
		"l_25": c.L25, "l_45": c.L45, "l_75": c.L75,
		"a_25": c.A25, "a_45": c.A45, "a_75": c.A75,
		"b_25": c.B25, "b_45": c.B45, "b_75": c.B75,
		"de_25": c.DE25, "de_45": c.DE45, "de_75": c.DE75,
	}
}

// ValidateMeasurement checks that d fits a numeric(5,2) column.
func ValidateMeasurement(d decimal.Decimal) error {
	if !d.Equal(d.Round(MeasurementDecimalPlaces)) {
		return ErrMeasurementPlaces
	}
	if d.Abs().Truncate(0).GreaterThanOrEqual(measurementLimit) {
		return ErrMeasurementDigits
	}
	return nil
}
