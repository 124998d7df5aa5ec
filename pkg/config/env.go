package config

import (
	"encoding"
	"fmt"
	"reflect"
	"strconv"

	"github.com/iancoleman/strcase"
)

type lookupFunc func(key string) (string, bool)

var textUnmarshaler = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()

// applyEnv overrides scalar fields from the environment. The variable name is
// the prefix followed by the screaming snake case of each Go field name on the
// path, e.g. Dataset.RefreshInterval is EVADASH_DATASET_REFRESH_INTERVAL.
func applyEnv(target any, prefix string, lookup lookupFunc) error {
	return applyEnvValue(reflect.ValueOf(target).Elem(), prefix, lookup)
}

//nolint:cyclop
func applyEnvValue(value reflect.Value, prefix string, lookup lookupFunc) error {
	typ := value.Type()

	for i := range typ.NumField() {
		field := typ.Field(i)
		if !field.IsExported() || field.Tag.Get("yaml") == "-" {
			continue
		}

		name := prefix + "_" + strcase.ToScreamingSnake(field.Name)
		fieldValue := value.Field(i)

		if fieldValue.Addr().Type().Implements(textUnmarshaler) {
			raw, ok := lookup(name)
			if !ok {
				continue
			}

			//nolint:forcetypeassert
			if err := fieldValue.Addr().Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(raw)); err != nil {
				return fmt.Errorf("invalid value %q for %s: %w", raw, name, err)
			}

			continue
		}

		//nolint:exhaustive
		switch fieldValue.Kind() {
		case reflect.Struct:
			if err := applyEnvValue(fieldValue, name, lookup); err != nil {
				return err
			}
		case reflect.String:
			if raw, ok := lookup(name); ok {
				fieldValue.SetString(raw)
			}
		case reflect.Int, reflect.Int32, reflect.Int64:
			if raw, ok := lookup(name); ok {
				n, err := strconv.ParseInt(raw, 10, 64)
				if err != nil {
					return fmt.Errorf("invalid value %q for %s: %w", raw, name, err)
				}

				fieldValue.SetInt(n)
			}
		case reflect.Bool:
			if raw, ok := lookup(name); ok {
				b, err := strconv.ParseBool(raw)
				if err != nil {
					return fmt.Errorf("invalid value %q for %s: %w", raw, name, err)
				}

				fieldValue.SetBool(b)
			}
		}
	}

	return nil
}
