package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"qcs/models"
)

var choiceSets = map[string][]models.Choice{
	"package_type":   models.PackageTypeChoices,
	"uom":            models.UnitOfMeasureChoices,
	"formula":        models.FormulaChoices,
	"product_type":   models.ProductTypeChoices,
	"color_category": models.ColorCategoryChoices,
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func payloadValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(field reflect.StructField) string {
			name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
		if err := validate.RegisterValidation("choice", validChoice); err != nil {
			panic(err)
		}
	})
	return validate
}

func validChoice(fl validator.FieldLevel) bool {
	choices, ok := choiceSets[fl.Param()]
	if !ok {
		return false
	}
	value := fl.Field().String()
	for _, c := range choices {
		if c.Value == value {
			return true
		}
	}
	return false
}

// fieldErrors maps a payload field to a message prefixed with its label.
type fieldErrors map[string]string

func (f fieldErrors) add(meta models.Meta, name, message string) {
	if _, exists := f[name]; exists {
		return
	}
	f[name] = fmt.Sprintf("%s: %s", meta.Label(name), message)
}

// validatePayload runs the struct tags of payload and reports failures using
// the field labels of meta.
func validatePayload(meta models.Meta, payload any) fieldErrors {
	errs := fieldErrors{}
	err := payloadValidator().Struct(payload)
	if err == nil {
		return errs
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		errs[""] = err.Error()
		return errs
	}
	for _, fe := range validationErrs {
		errs.add(meta, fe.Field(), fieldMessage(fe))
	}
	return errs
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "max":
		return fmt.Sprintf("Ensure this value has at most %s characters.", fe.Param())
	case "gt":
		return fmt.Sprintf("Ensure this value is greater than %s.", fe.Param())
	case "choice":
		return fmt.Sprintf("Select a valid choice. %v is not one of the available choices.", fe.Value())
	case "datetime":
		return "Enter a valid date."
	default:
		return "Enter a valid value."
	}
}

func writeFieldErrors(w http.ResponseWriter, errs fieldErrors) {
	writeJSON(w, http.StatusBadRequest, map[string]any{
		"error":  "validation failed",
		"fields": errs,
	})
}
