// ABOUTME: Input validation for person payloads
// ABOUTME: Wraps go-playground/validator with a contact_status rule and readable messages
package people

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/harperreed/leadbook/models"
)

// ErrInvalidPatch wraps every validation failure.
var ErrInvalidPatch = errors.New("invalid person data")

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("contact_status", func(fl validator.FieldLevel) bool {
		return models.ContactStatus(fl.Field().String()).Valid()
	})
	return v
}

// ValidatePatch checks field formats before anything reaches the store.
// An empty string clears a field and is never a format error.
func ValidatePatch(p models.PersonPatch) error {
	var problems []string

	if err := validate.Struct(withoutClears(p)); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("%w: %v", ErrInvalidPatch, err)
		}
		for _, fe := range verrs {
			problems = append(problems, describe(fe))
		}
	}

	if d, ok := p.ConnectionDegree.Get(); ok && d < 0 {
		problems = append(problems, "connectionDegree must not be negative")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidPatch, strings.Join(problems, ", "))
	}
	return nil
}

func describe(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "email":
		return field + " must be a valid email"
	case "url":
		return field + " must be a valid URL"
	case "min":
		return field + " must be at least " + fe.Param()
	case "max":
		return field + " must be at most " + fe.Param() + " characters"
	case "contact_status":
		return field + " must be a known pipeline status"
	default:
		return field + " is invalid"
	}
}

// withoutClears drops text fields set to "" so format rules only see values.
func withoutClears(p models.PersonPatch) models.PersonPatch {
	for _, f := range []**string{
		&p.Name, &p.URL, &p.ProfileImage, &p.Location, &p.Headline, &p.About,
		&p.CurrentPosition, &p.CurrentCompany, &p.Email, &p.Phone,
	} {
		if *f != nil && **f == "" {
			*f = nil
		}
	}
	return p
}
