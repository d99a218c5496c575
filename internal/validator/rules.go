package validator

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	playground "github.com/go-playground/validator/v10"
	"github.com/oklog/ulid/v2"

	"github.com/balcao/balcao/internal/model"
)

var validate = newValidate()

func newValidate() *playground.Validate {
	v := playground.New(playground.WithRequiredStructEnabled())

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

	// entityid accepts server-generated record identifiers.
	if err := v.RegisterValidation("entityid", func(fl playground.FieldLevel) bool {
		_, err := ulid.ParseStrict(fl.Field().String())
		return err == nil
	}); err != nil {
		panic(err)
	}

	return v
}

func checkStruct(ptr any, verr *ValidationError) {
	err := validate.Struct(ptr)
	if err == nil {
		return
	}

	fieldErrs, ok := err.(playground.ValidationErrors)
	if !ok {
		verr.add(InputKey, "is invalid")
		return
	}

	for _, fe := range fieldErrs {
		name, element := splitElement(fe.Field())
		verr.add(name, message(fe, element))
	}
}

// splitElement turns "highlightedDays[2]" into ("highlightedDays", true).
func splitElement(field string) (string, bool) {
	if i := strings.IndexByte(field, '['); i >= 0 {
		return field[:i], true
	}
	return field, false
}

func message(fe playground.FieldError, element bool) string {
	msg := constraintMessage(fe)
	if element {
		return "items " + msg
	}
	return msg
}

func constraintMessage(fe playground.FieldError) string {
	param := fe.Param()
	kind := fe.Kind()

	switch fe.Tag() {
	case "required":
		return "is required"
	case "isdefault":
		return "must not be provided"
	case "entityid":
		return "must be a valid id"
	case "email":
		return "must be a valid email address"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(param, " ", ", ")
	case "datetime":
		return "must be a date in YYYY-MM-DD format"
	case "unique":
		return "must not contain duplicates"
	case "min":
		return boundMessage("at least", param, kind)
	case "max":
		return boundMessage("at most", param, kind)
	case "len":
		return boundMessage("exactly", param, kind)
	case "gt":
		return "must be greater than " + amountParam(fe)
	case "gte":
		return "must be greater than or equal to " + amountParam(fe)
	case "lt":
		return "must be less than " + amountParam(fe)
	case "lte":
		return "must be less than or equal to " + amountParam(fe)
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

// amountParam renders the bound of a Cents field in currency units.
func amountParam(fe playground.FieldError) string {
	if fe.Type() != reflect.TypeFor[model.Cents]() {
		return fe.Param()
	}
	v, err := strconv.ParseInt(fe.Param(), 10, 64)
	if err != nil {
		return fe.Param()
	}
	return model.Cents(v).String()
}

func boundMessage(bound, param string, kind reflect.Kind) string {
	switch kind {
	case reflect.String:
		return fmt.Sprintf("must be %s %s characters", bound, param)
	case reflect.Slice, reflect.Array, reflect.Map:
		return fmt.Sprintf("must contain %s %s items", bound, param)
	default:
		return fmt.Sprintf("must be %s %s", bound, param)
	}
}
