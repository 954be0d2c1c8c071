package invoice

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/feeportal/backend/core"
)

var (
	// custom validation tags & texts
	statusTag  = "invstatus"
	statusText = "{0} must be one of: draft, unpaid, paid"
)

// InitValidators registers the invoice validation tags.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(statusTag, statusValidation)
	core.RegisterCustomTranslation(validate, translator, statusTag, statusText)
}

func statusValidation(fl validator.FieldLevel) bool {
	return Status(fl.Field().String()).Valid()
}
