package metadata

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	apierrors "attendcli/internal/errors"
	"attendcli/pkg/contracts/domain"
)

// FieldErrors lists every invalid field of one metadata entry
type FieldErrors struct {
	File   string
	Errors []apierrors.ValidationError
}

func (e *FieldErrors) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	if e.File != "" {
		return fmt.Sprintf("invalid metadata for %s: %s", e.File, strings.Join(parts, "; "))
	}
	return "invalid metadata: " + strings.Join(parts, "; ")
}

// Validator checks BatchMetadata against the configured grade scheme
type Validator struct {
	validate *validator.Validate
	scheme   domain.GradeScheme
}

// NewValidator creates a validator for scheme
func NewValidator(scheme domain.GradeScheme) *Validator {
	v := validator.New()

	v.RegisterValidation("gradelevel", func(fl validator.FieldLevel) bool {
		return scheme.Valid(domain.GradeLevel(fl.Field().String()))
	})
	v.RegisterValidation("groupnumber", func(fl validator.FieldLevel) bool {
		return domain.ValidGroupNumber(int(fl.Field().Int()))
	})

	// Report yaml/json field names rather than Go names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Validator{validate: v, scheme: scheme}
}

// Scheme returns the grade scheme the validator enforces
func (v *Validator) Scheme() domain.GradeScheme {
	return v.scheme
}

// Validate returns a *FieldErrors when meta is invalid
func (v *Validator) Validate(meta domain.BatchMetadata) error {
	err := v.validate.Struct(meta)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fe := &FieldErrors{}
	for _, e := range verrs {
		fe.Errors = append(fe.Errors, apierrors.ValidationError{
			Field:   e.Field(),
			Message: v.message(e),
		})
	}
	return fe
}

func (v *Validator) message(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "gradelevel":
		levels := make([]string, 0, 13)
		for _, l := range v.scheme.Levels() {
			levels = append(levels, string(l))
		}
		return fmt.Sprintf("must be one of %s", strings.Join(levels, ", "))
	case "groupnumber":
		return "must be 1 or 2"
	default:
		return fmt.Sprintf("failed %s validation", e.Tag())
	}
}
