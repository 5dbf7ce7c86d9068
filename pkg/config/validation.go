package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// fieldFlag finds the flag for a field from its "flag" struct tag, following
// a namespace such as "Config.Source.Endpoint" through nested structs.
func fieldFlag(structType reflect.Type, namespace string) string {
	parts := strings.Split(namespace, ".")
	var field reflect.StructField
	for _, name := range parts[1:] {
		if structType.Kind() == reflect.Ptr {
			structType = structType.Elem()
		}
		f, found := structType.FieldByName(name)
		if !found {
			return ""
		}
		field = f
		structType = f.Type
	}
	return field.Tag.Get("flag")
}

func formatValidationError(structType reflect.Type, errs validator.ValidationErrors) error {
	var messages []string

	for _, err := range errs {
		field := err.Namespace()
		hint := ""
		if flag := fieldFlag(structType, err.StructNamespace()); flag != "" {
			hint = fmt.Sprintf(" (see --%s flag for help)", flag)
		}

		switch err.Tag() {
		case "required":
			messages = append(messages, fmt.Sprintf("%s is required but not provided%s", field, hint))
		case "url":
			messages = append(messages, fmt.Sprintf("%s must be a valid URL%s", field, hint))
		case "oneof":
			messages = append(messages, fmt.Sprintf("%s must be one of [%s]%s", field, err.Param(), hint))
		case "min":
			messages = append(messages, fmt.Sprintf("%s must be at least %s%s", field, err.Param(), hint))
		case "max":
			messages = append(messages, fmt.Sprintf("%s must be at most %s%s", field, err.Param(), hint))
		case "startswith":
			messages = append(messages, fmt.Sprintf("%s must start with %q%s", field, err.Param(), hint))
		default:
			messages = append(messages, fmt.Sprintf("%s failed validation: %s%s", field, err.Tag(), hint))
		}
	}

	if len(messages) == 1 {
		return fmt.Errorf("config validation error: %s", messages[0])
	}
	return fmt.Errorf("config validation errors:\n  - %s", strings.Join(messages, "\n  - "))
}

func validateConfig(cfg any) error {
	if err := validate.Struct(cfg); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return formatValidationError(reflect.TypeOf(cfg), validationErrors)
		}
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}
