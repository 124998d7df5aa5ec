package validation

import (
	"fmt"
	"net/url"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var storeSchemes = []string{"sqlite", "postgres", "postgresql", "mysql", "mssql", "sqlserver"}

// Verify that the store URL parses and names a supported database.
// A "+driver" suffix on the scheme is allowed, e.g. postgresql+psycopg2.
func storeURL(fl validator.FieldLevel) bool {
	uri, err := url.Parse(fl.Field().String())
	if err != nil {
		return false
	}

	scheme, _, _ := strings.Cut(uri.Scheme, "+")
	for _, s := range storeSchemes {
		if scheme == s {
			return true
		}
	}

	return false
}

// Verify that a URL is absolute, uses http(s) and has no fragment.
func httpURL(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}

	uri, err := url.Parse(value)
	if err != nil {
		return false
	}

	return (uri.Scheme == "http" || uri.Scheme == "https") && uri.Host != "" && uri.Fragment == ""
}

// fieldName reports fields by their wire name so that errors read
// "max_results" rather than "MaxResults".
func fieldName(field reflect.StructField) string {
	for _, key := range []string{"json", "query", "params", "yaml"} {
		name, _, _ := strings.Cut(field.Tag.Get(key), ",")
		if name != "" && name != "-" {
			return name
		}
	}

	return field.Name
}

func NewValidator() (*validator.Validate, error) {
	validate := validator.New()
	validate.RegisterTagNameFunc(fieldName)

	for tag, fn := range map[string]validator.Func{
		"storeurl": storeURL,
		"httpurl":  httpURL,
	} {
		if err := validate.RegisterValidation(tag, fn); err != nil {
			return nil, fmt.Errorf("validation registration for %q failed: %w", tag, err)
		}
	}

	return validate, nil
}
