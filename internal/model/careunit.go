package model

// CareUnit is a ward or department grouping beds (e.g. ICU)
type CareUnit struct {
	Base
	Audit
	Name        string `db:"name" json:"name"`
	Description string `db:"description" json:"description"`
}

type CreateCareUnitRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description" binding:"max=500"`
}

type UpdateCareUnitRequest struct {
	Name        *string `json:"name" binding:"omitempty,max=100"`
	Description *string `json:"description" binding:"omitempty,max=500"`
}

// CascadeResult reports what a care unit deletion removed alongside
// the unit itself. The cascade is best effort, not atomic.
type CascadeResult struct {
	BedsDeleted        int64 `json:"beds_deleted"`
	FluidsDeleted      int64 `json:"fluids_deleted"`
	MedicationsDeleted int64 `json:"medications_deleted"`
}
