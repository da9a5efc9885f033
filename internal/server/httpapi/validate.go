package httpapi

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/dmitrijs2005/storekeeper/internal/common"
	"github.com/dmitrijs2005/storekeeper/internal/server/models"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// report fields by their wire name
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "query"} {
			name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
			if name != "" && name != "-" {
				return name
			}
		}
		return f.Name
	})

	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.InexactFloat64()
		}
		return nil
	}, decimal.Decimal{})

	mustRegister(v, "category", func(fl validator.FieldLevel) bool {
		return models.Category(fl.Field().String()).Valid()
	})

	return v
}

// mustRegister panics when a custom tag cannot be registered; the tag would
// otherwise panic on first use.
func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register validation %q: %v", tag, err))
	}
}

func categoryList() string {
	names := make([]string, 0, len(models.Categories))
	for _, c := range models.Categories {
		names = append(names, string(c))
	}
	return strings.Join(names, ", ")
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s should not be empty", fe.Field())
	case "email":
		return fmt.Sprintf("%s must be an email", fe.Field())
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must contain at least %s elements", fe.Field(), fe.Param())
		}
		return fmt.Sprintf("%s must be longer than or equal to %s characters", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be shorter than or equal to %s characters", fe.Field(), fe.Param())
	case "gte":
		return fmt.Sprintf("%s must not be less than %s", fe.Field(), fe.Param())
	case "category":
		return fmt.Sprintf("%s must be one of the following values: %s", fe.Field(), categoryList())
	}
	return fmt.Sprintf("%s is invalid", fe.Field())
}

// check validates req and turns validation failures into a bad request
// carrying one message per failed field.
func (s *Server) check(req any) error {
	err := s.validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate: %w", err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return common.BadRequest(msgs...)
}
