package api

import (
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/gfxtab/gfxtab-api/internal/utils"
)

// ruleEmailAddress validates a bare local@domain.tld address
const ruleEmailAddress = "email_address"

var registerOnce sync.Once

// registerValidators teaches gin's validator the custom rules and makes it
// report fields by their json name.
func registerValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}

		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})

		_ = v.RegisterValidation(ruleEmailAddress, func(fl validator.FieldLevel) bool {
			return utils.ValidateEmail(fl.Field().String()) == nil
		})
	})
}
