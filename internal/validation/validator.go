// package validation provides helper functions for request and domain data validation.
// It uses the go-playground/validator library and includes custom validation rules.
package validation

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// init registers custom validation rules with the validator instance.
func init() {
	// Report fields by their JSON names so messages match the request body.
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}

		return name
	})

	rules := map[string]validator.Func{
		"skill":           isSkill,
		"hours_per_point": hoursPerPoint,
	}

	for tag, fn := range rules {
		if err := validate.RegisterValidation(tag, fn); err != nil {
			panic(fmt.Sprintf("failed to register custom validation %q: %v", tag, err))
		}
	}
}

// isSkill accepts any non-blank UTF-8 tag without control characters,
// e.g. "go", ".net", "@angular" or "日本語".
func isSkill(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if strings.TrimSpace(s) == "" || !utf8.ValidString(s) {
		return false
	}

	return strings.IndexFunc(s, unicode.IsControl) < 0
}

// hoursPerPoint validates an hours field against the sibling StoryPoints
// field: estimated work must be positive when points are positive, and
// must not exceed points times the tag parameter.
func hoursPerPoint(fl validator.FieldLevel) bool {
	limit, err := strconv.ParseFloat(fl.Param(), 64)
	if err != nil {
		return false
	}

	points := fl.Parent().FieldByName("StoryPoints")
	if !points.IsValid() || !points.CanInt() {
		return false
	}

	hours := fl.Field().Float()
	sp := float64(points.Int())

	if sp > 0 && hours <= 0 {
		return false
	}

	return hours <= sp*limit
}

// ValidationError is a custom error type that holds a slice of validation error messages.
type ValidationError struct {
	Errors []string
}

// Error returns a single string concatenating all validation error messages.
func (v *ValidationError) Error() string {
	return strings.Join(v.Errors, ", ")
}

// ValidateStruct performs validation on a given struct based on its validation tags.
// If validation fails, it returns a *ValidationError with user-friendly messages.
func ValidateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	fieldErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return &ValidationError{Errors: []string{err.Error()}}
	}

	messages := make([]string, 0, len(fieldErrors))

	for _, fe := range fieldErrors {
		messages = append(messages, message(fe))
	}

	return &ValidationError{Errors: messages}
}

func message(fe validator.FieldError) string {
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}

	switch fe.Tag() {
	case "skill":
		return fmt.Sprintf(
			"field '%s' must be a non-empty skill tag without control characters",
			field,
		)
	case "hours_per_point":
		return fmt.Sprintf(
			"field '%s' must be positive for estimated items and at most %s hours per story point",
			field, fe.Param(),
		)
	case "gt", "gte", "lt", "lte", "min", "max":
		return fmt.Sprintf("field '%s' failed on the '%s=%s' tag", field, fe.Tag(), fe.Param())
	default:
		return fmt.Sprintf("field '%s' failed on the '%s' tag", field, fe.Tag())
	}
}
