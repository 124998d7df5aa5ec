package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/tidwall/gjson"

	"github.com/scarnyc/spacewalks/pkg/contract"
	"github.com/scarnyc/spacewalks/pkg/validation"
)

type HTTPRequestParser struct {
	validator *validator.Validate
}

func NewHTTPRequestParser() (*HTTPRequestParser, error) {
	v, err := validation.NewValidator()
	if err != nil {
		return nil, err
	}

	return &HTTPRequestParser{
		validator: v,
	}, nil
}

func (p *HTTPRequestParser) ParseBody(ctx *fiber.Ctx, input any) *contract.Error {
	if err := ctx.BodyParser(input); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			result := gjson.GetBytes(ctx.Body(), typeErr.Field)

			value := result.Str
			if value == "" {
				value = result.Raw
			}

			return contract.NewError(
				contract.ErrorCodeInvalidParameterValue,
				fmt.Sprintf("Invalid value %s for parameter '%s'", value, typeErr.Field),
			)
		}

		return contract.NewError(contract.ErrorCodeBadRequest, err.Error())
	}

	return p.validate(input)
}

func (p *HTTPRequestParser) ParseQuery(ctx *fiber.Ctx, input any) *contract.Error {
	if err := ctx.QueryParser(input); err != nil {
		return contract.NewError(contract.ErrorCodeBadRequest, err.Error())
	}

	return p.validate(input)
}

func (p *HTTPRequestParser) ParseParams(ctx *fiber.Ctx, input any) *contract.Error {
	if err := ctx.ParamsParser(input); err != nil {
		return contract.NewError(contract.ErrorCodeBadRequest, err.Error())
	}

	return p.validate(input)
}

func (p *HTTPRequestParser) validate(input any) *contract.Error {
	if err := p.validator.Struct(input); err != nil {
		return newErrorFromValidationError(err)
	}

	return nil
}

func dereference(value any) any {
	v := reflect.ValueOf(value)
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return nil
		}

		return v.Elem().Interface()
	}

	return value
}

func newErrorFromValidationError(err error) *contract.Error {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return contract.NewError(contract.ErrorCodeInternal, err.Error())
	}

	messages := make([]string, 0, len(errs))

	for _, fieldErr := range errs {
		field := fieldErr.Field()
		value := dereference(fieldErr.Value())

		switch fieldErr.Tag() {
		case "required":
			messages = append(messages, fmt.Sprintf("Missing value for required parameter '%s'", field))
		default:
			messages = append(messages, fmt.Sprintf("Invalid value %v for parameter '%s' supplied", value, field))
		}
	}

	return contract.NewError(contract.ErrorCodeInvalidParameterValue, strings.Join(messages, ", "))
}
