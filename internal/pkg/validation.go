package pkg

import (
	"fmt"
	"unicode"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := RegisterValidations(v); err != nil {
			panic(err)
		}
	}
}

// RegisterValidations adds the custom binding tags to v.
func RegisterValidations(v *validator.Validate) error {
	if err := v.RegisterValidation("password", strongPassword); err != nil {
		return fmt.Errorf("register password validation: %w", err)
	}
	return nil
}

// strongPassword requires an upper case letter, a digit and a symbol.
func strongPassword(fl validator.FieldLevel) bool {
	var upper, digit, symbol bool
	for _, r := range fl.Field().String() {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case !unicode.IsLetter(r) && !unicode.IsSpace(r):
			symbol = true
		}
	}
	return upper && digit && symbol
}
