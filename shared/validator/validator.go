package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"regexp"
	"strings"
	"time"

	"hotel/shared/constant"
	"hotel/shared/failure"

	val "github.com/go-playground/validator/v10"
)

var (
	validate = val.New(val.WithRequiredStructEnabled())

	dniPattern = regexp.MustCompile(`^[A-Za-z0-9-]{5,20}$`)
)

func init() {
	// errors name fields the way clients send them
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}

		return name
	})

	for tag, fn := range map[string]val.Func{
		"date": isDate,
		"dni":  isDNI,
	} {
		if err := validate.RegisterValidation(tag, fn); err != nil {
			panic(fmt.Sprintf("registering %q validation: %v", tag, err))
		}
	}
}

// isDate accepts calendar dates written as YYYY-MM-DD.
func isDate(field val.FieldLevel) bool {
	value, ok := field.Field().Interface().(string)
	if !ok {
		return false
	}

	_, err := time.Parse(constant.DayFormat, value)

	return err == nil
}

// isDNI accepts identity document numbers: 5 to 20 letters, digits or dashes.
func isDNI(field val.FieldLevel) bool {
	value, ok := field.Field().Interface().(string)

	return ok && dniPattern.MatchString(value)
}

// Validate decodes exactly one JSON object from r into data, rejecting unknown
// fields, then validates it. Every failure is a BadRequest.
func Validate[T any](r io.Reader, data *T) error {
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(data); err != nil {
		return failure.BadRequest(fmt.Errorf("failed to decode request body: %w", err)) //nolint:wrapcheck
	}

	if err := decoder.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return failure.BadRequestFromString("request body must contain a single JSON object") //nolint:wrapcheck
	}

	return ValidateStruct(data)
}

func ValidateStruct[T any](data *T) error {
	if err := validate.Struct(data); err != nil {
		return failure.BadRequestFromString(message(err)) //nolint:wrapcheck
	}

	return nil
}

func ValidateVar(field any, tag string) error {
	if err := validate.Var(field, tag); err != nil {
		return failure.BadRequestFromString(message(err)) //nolint:wrapcheck
	}

	return nil
}
