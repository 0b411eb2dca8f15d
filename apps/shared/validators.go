// Package shared holds the setup common to the API and the admin CLI.
package shared

import (
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/MorenaCaparros/plataformaAPA-sub001/core"
	"github.com/MorenaCaparros/plataformaAPA-sub001/core/assessment"
	"github.com/MorenaCaparros/plataformaAPA-sub001/core/profile"
)

// NewTranslator returns the english translator of validation errors.
func NewTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

// InitValidators registers the custom validations and their messages of every package.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	core.InitValidators(validate, translator)
	profile.InitValidators(validate, translator)
	assessment.InitValidators(validate, translator)
}

// NewValidator returns a ready to use validator and its translator.
func NewValidator() (*validator.Validate, ut.Translator) {
	validate := validator.New()
	translator := NewTranslator()
	InitValidators(validate, translator)
	return validate, translator
}
