package model

import (
	"github.com/google/uuid"
)

// Bed is a physical unit within a care unit that can hold at most one
// currently-admitted patient. IsOccupied must be true exactly when one
// active, not-discharged patient references the bed.
type Bed struct {
	Base
	Audit
	BedName    string    `db:"bed_name" json:"bed_name"`
	CareUnitID uuid.UUID `db:"care_unit_id" json:"care_unit_id"`
	IsOccupied bool      `db:"is_occupied" json:"is_occupied"`
}

type CreateBedRequest struct {
	BedName string `json:"bed_name" binding:"required,min=1,max=100"`
}
