// internal/validation/validation.go
package validation

import (
	"errors"
	"fmt"
	"path"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	phonePattern = regexp.MustCompile(`^09\d{9}$`)

	// ImageExtensions are the avatar file types accepted by the "imageext" rule.
	ImageExtensions = []string{"jpg", "jpeg", "png"}
)

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})

	_ = validate.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return IsPhoneNumber(fl.Field().String())
	})
	_ = validate.RegisterValidation("imageext", func(fl validator.FieldLevel) bool {
		return HasImageExtension(fl.Field().String())
	})
}

// FieldError is a single field/message pair reported to the caller.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Errors is an ordered list of field errors. A nil or empty *Errors means valid.
type Errors struct {
	Fields []FieldError
}

func (e *Errors) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *Errors) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// Has reports whether field already carries an error.
func (e *Errors) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

// Err returns e as an error, or nil when no field failed.
func (e *Errors) Err() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

// New returns an Errors holding one field error.
func New(field, message string) *Errors {
	e := &Errors{}
	e.Add(field, message)
	return e
}

// As extracts *Errors from err.
func As(err error) (*Errors, bool) {
	var verr *Errors
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}

// Struct runs the struct tag rules on v and collects failures.
func Struct(v interface{}) *Errors {
	result := &Errors{}

	err := validate.Struct(v)
	if err == nil {
		return result
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		result.Add("non_field_errors", err.Error())
		return result
	}

	for _, fe := range verrs {
		if result.Has(fe.Field()) {
			continue
		}
		result.Add(fe.Field(), message(fe))
	}
	return result
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "max":
		return fmt.Sprintf("Ensure this value has at most %s characters.", fe.Param())
	case "min":
		return fmt.Sprintf("Ensure this value has at least %s characters.", fe.Param())
	case "email":
		return "Enter a valid email address."
	case "oneof":
		return "Select a valid choice."
	case "eqfield":
		return "The two password fields didn't match."
	case "phone":
		return "Phone number must be 11 digits and start with 09."
	case "imageext":
		return fmt.Sprintf("File extension is not allowed. Allowed extensions are: %s.", strings.Join(ImageExtensions, ", "))
	default:
		return "Enter a valid value."
	}
}

func IsPhoneNumber(s string) bool {
	return phonePattern.MatchString(s)
}

// HasImageExtension reports whether name ends in one of ImageExtensions, ignoring case.
func HasImageExtension(name string) bool {
	ext := strings.TrimPrefix(strings.ToLower(path.Ext(name)), ".")
	for _, allowed := range ImageExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}
