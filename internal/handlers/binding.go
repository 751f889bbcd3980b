package handlers

import (
	"errors"
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var currencyCodeRx = regexp.MustCompile(`^[A-Z]{3}$`)

// RegisterValidations installs the custom binding validators used by the
// request DTOs.
func RegisterValidations() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("unexpected binding validator engine")
	}
	return v.RegisterValidation("currencycode", func(fl validator.FieldLevel) bool {
		return currencyCodeRx.MatchString(fl.Field().String())
	})
}
