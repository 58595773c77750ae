package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// BindJSON decodes the request body into obj and validates it with the
// `binding` struct tags. It returns nil on success, or a ValidationError
// listing every violated field. Unknown fields are ignored.
func BindJSON(ctx *gin.Context, obj any) *ValidationError {
	var body []byte
	if ctx.Request.Body != nil {
		var err error
		body, err = io.ReadAll(ctx.Request.Body)
		if err != nil {
			return &ValidationError{Errors: []FieldError{{
				Loc:  []string{"body"},
				Msg:  "Unable to read request body",
				Type: TypeJSONInvalid,
			}}}
		}
	}
	return bindBody(body, obj)
}

func bindBody(body []byte, obj any) *ValidationError {
	registerValidators()

	verr := &ValidationError{}

	if len(bytes.TrimSpace(body)) == 0 {
		verr.add(FieldError{Loc: []string{"body"}, Msg: "Field required", Type: TypeMissing})
		return verr
	}

	if err := json.Unmarshal(body, obj); err != nil {
		var typeErr *json.UnmarshalTypeError
		switch {
		case errors.As(err, &typeErr) && typeErr.Field != "":
			// decoding continues past a mistyped field, so keep validating
			verr.add(typeFieldError(typeErr))
		case errors.As(err, &typeErr):
			verr.add(FieldError{
				Loc:  []string{"body"},
				Msg:  "Input should be a valid dictionary or object",
				Type: TypeModelType,
			})
			return verr
		default:
			verr.add(FieldError{Loc: []string{"body"}, Msg: "JSON decode error", Type: TypeJSONInvalid})
			return verr
		}
	}

	if err := binding.Validator.ValidateStruct(obj); err != nil {
		var errs validator.ValidationErrors
		if !errors.As(err, &errs) {
			verr.add(FieldError{Loc: []string{"body"}, Msg: err.Error(), Type: TypeValueError})
			return verr
		}
		for _, fe := range errs {
			if verr.has(fe.Field()) {
				continue
			}
			verr.add(ruleFieldError(fe))
		}
	}

	if len(verr.Errors) == 0 {
		return nil
	}
	return verr
}

func typeFieldError(err *json.UnmarshalTypeError) FieldError {
	fe := FieldError{Loc: []string{"body", err.Field}, Type: TypeValueError}
	if err.Type != nil && err.Type.Kind() == reflect.String {
		fe.Msg = "Input should be a valid string"
		fe.Type = TypeStringType
	} else if err.Type != nil {
		fe.Msg = fmt.Sprintf("Input should be a valid %s", err.Type.Kind())
	}
	return fe
}

func ruleFieldError(fe validator.FieldError) FieldError {
	out := FieldError{Loc: []string{"body", fe.Field()}}
	switch fe.Tag() {
	case "required":
		out.Msg = "Field required"
		out.Type = TypeMissing
	case ruleEmailAddress:
		out.Msg = "value is not a valid email address"
		out.Type = TypeValueError
	default:
		out.Msg = fmt.Sprintf("Value failed the '%s' rule", fe.Tag())
		out.Type = TypeValueError
	}
	return out
}
