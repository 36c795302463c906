package model

// HospitalLogo is the uploaded logo asset. At most one logo is active
// at a time; activating one deactivates the rest.
type HospitalLogo struct {
	Base
	Audit
	Name     string `db:"name" json:"name"`
	ImageURL string `db:"image_url" json:"image_url"`
	IsActive bool   `db:"is_active" json:"is_active"`
}

type UpdateLogoRequest struct {
	IsActive bool `json:"is_active"`
}
