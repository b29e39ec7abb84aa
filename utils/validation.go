package utils

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"roaddarts/models"

	"github.com/go-playground/validator/v10"
)

var (
	sharedValidator *validator.Validate
	validatorOnce   sync.Once
)

// ValidationError lists the fields that failed validation.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for f, msg := range e.Fields {
		parts = append(parts, f+": "+msg)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func oneOf(allowed []string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		v := fl.Field().String()
		for _, a := range allowed {
			if v == a {
				return true
			}
		}
		return false
	}
}

func priceRange(sl validator.StructLevel) {
	p := sl.Current().Interface().(models.Price)
	if p.Min != nil && p.Max != nil && *p.Min > *p.Max {
		sl.ReportError(p.Min, "min", "Min", "lte_max", "")
	}
}

// Validator returns the shared validator with the listing enums registered.
func Validator() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("bordtype", oneOf(models.BoardTypes))
		_ = v.RegisterValidation("listingstatus", oneOf(models.ListingStatuses))
		_ = v.RegisterValidation("validationstatus", oneOf(models.ValidationStatuses))
		_ = v.RegisterValidation("pricecategory", oneOf(models.PriceCategories))
		v.RegisterStructValidation(priceRange, models.Price{})
		sharedValidator = v
	})
	return sharedValidator
}

// ValidateStruct validates s and flattens failures into a *ValidationError.
func ValidateStruct(s interface{}) error {
	err := Validator().Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &ValidationError{Fields: map[string]string{}}
	for _, fe := range verrs {
		out.Fields[trimRoot(fe.Namespace())] = message(fe)
	}
	return out
}

func trimRoot(ns string) string {
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "lte_max":
		return "must not exceed max"
	case "bordtype":
		return "must be one of " + strings.Join(models.BoardTypes, ", ")
	case "listingstatus":
		return "must be one of " + strings.Join(models.ListingStatuses, ", ")
	case "validationstatus":
		return "must be one of " + strings.Join(models.ValidationStatuses, ", ")
	case "pricecategory":
		return "must be one of " + strings.Join(models.PriceCategories, ", ")
	}
	return "is invalid"
}
