package validation

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/meditrack/ward-api/internal/model"
)

// RegisterCustom installs the custom binding validators on gin's
// validator engine. Call once at startup before serving requests.
func RegisterCustom() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return v.RegisterValidation("bloodgroup", validBloodGroup)
}

func validBloodGroup(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	for _, bg := range model.BloodGroups {
		if bg == val {
			return true
		}
	}
	return false
}
