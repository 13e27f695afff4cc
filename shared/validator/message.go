package validator

import (
	"errors"
	"strings"

	val "github.com/go-playground/validator/v10"
)

const unnamedField = "value"

var messages = map[string]string{
	"required": "{field} is required",
	"gt":       "{field} must be greater than {param}",
	"gte":      "{field} must be greater than or equal to {param}",
	"lte":      "{field} must be less than or equal to {param}",
	"min":      "{field} must be at least {param}",
	"max":      "{field} must be at most {param}",
	"oneof":    "{field} must be one of {param}",
	"email":    "{field} must be a valid email address",
	"uuid":     "{field} must be a valid UUID",
	"date":     "{field} must be a date formatted as YYYY-MM-DD",
	"dni":      "{field} must be a valid identity document number",
	"unique":   "{field} must not repeat {param}",
}

// message renders the first failed rule, naming the field by its JSON path
// ("guests[0].dni").
func message(err error) string {
	var fieldErrors val.ValidationErrors
	if !errors.As(err, &fieldErrors) || len(fieldErrors) == 0 {
		return err.Error()
	}

	first := fieldErrors[0]

	template, ok := messages[first.Tag()]
	if !ok {
		template = "{field} is invalid"
	}

	return strings.NewReplacer("{field}", path(first), "{param}", first.Param()).Replace(template)
}

func path(fieldError val.FieldError) string {
	namespace := fieldError.Namespace()

	if _, rest, found := strings.Cut(namespace, "."); found {
		return rest
	}

	if namespace != "" {
		return namespace
	}

	return unnamedField
}
