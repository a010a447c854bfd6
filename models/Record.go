package models

import (
	"errors"
	"fmt"
	"time"
)

// Record carries the surrogate key and bookkeeping columns shared by all tables.
// Rows are hard deleted so that dependent-row protection sees every reference.
type Record struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ErrProtected is returned when a delete would orphan dependent rows.
var ErrProtected = errors.New("models: record is referenced by dependent rows")

// ProtectedError describes which dependents blocked a delete.
type ProtectedError struct {
	Model      string
	ID         uint
	Dependents string
	Count      int64
}

func (e *ProtectedError) Error() string {
	return fmt.Sprintf("cannot delete %s %d: referenced by %d %s", e.Model, e.ID, e.Count, e.Dependents)
}

func (e *ProtectedError) Unwrap() error { return ErrProtected }
