// Package validation checks request payloads against the rules declared in their
// `validate` struct tags and reports failures as apperrors.ValidationError.
package validation

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/SscSPs/user_accounts_service/internal/apperrors"
	portssvc "github.com/SscSPs/user_accounts_service/internal/core/ports/services"
	"github.com/go-playground/validator/v10"
)

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
	fullNamePattern = regexp.MustCompile(`^[a-zA-Z\s]+$`)
	digitPattern    = regexp.MustCompile(`\d`)
	lowerPattern    = regexp.MustCompile(`[a-z]`)
	upperPattern    = regexp.MustCompile(`[A-Z]`)
	specialPattern  = regexp.MustCompile(`[!@#$%^&*(),.?":{}|<>]`)
)

var labels = map[string]string{
	"username":    "Username",
	"email":       "Email",
	"password":    "Password",
	"fullName":    "Full name",
	"oldPassword": "Old password",
	"newPassword": "New password",
}

// Validator wraps a configured validator.Validate.
type Validator struct {
	validate *validator.Validate
}

// New creates a Validator with the username, strongpassword and fullname rules registered.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	// Registration only fails on empty tags or nil funcs.
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("fullname", func(fl validator.FieldLevel) bool {
		return fullNamePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("strongpassword", func(fl validator.FieldLevel) bool {
		return passwordWeakness(fl.Field().String()) == ""
	})

	return &Validator{validate: v}
}

var _ portssvc.Validator = (*Validator)(nil)

// Validate checks payload, which must be a struct or a pointer to one.
func (v *Validator) Validate(ctx context.Context, payload any) error {
	err := v.validate.StructCtx(ctx, payload)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate payload: %w", err)
	}

	fields := make([]apperrors.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, apperrors.FieldError{
			Field:   fe.Field(),
			Message: message(fe),
		})
	}
	return apperrors.NewValidationError(fields...)
}

func label(field string) string {
	if l, ok := labels[field]; ok {
		return l
	}
	return field
}

func message(fe validator.FieldError) string {
	name := label(fe.Field())
	switch fe.Tag() {
	case "required", "required_without":
		return name + " is required"
	case "email":
		return "Invalid email format"
	case "username":
		return name + " can only contain letters, numbers, and underscores"
	case "fullname":
		return name + " can only contain letters and spaces"
	case "strongpassword":
		return passwordWeakness(fmt.Sprint(fe.Value()))
	case "min":
		if fe.Field() == "username" {
			return name + " must be between 3 and 20 characters"
		}
		return fmt.Sprintf("%s must be at least %s characters long", name, fe.Param())
	case "max":
		if fe.Field() == "username" {
			return name + " must be between 3 and 20 characters"
		}
		return fmt.Sprintf("%s must be at most %s characters long", name, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", name, fe.Tag())
	}
}

// passwordWeakness returns the first unmet password rule, or "" when all hold.
func passwordWeakness(p string) string {
	switch {
	case !digitPattern.MatchString(p):
		return "Password must contain at least one number"
	case !lowerPattern.MatchString(p):
		return "Password must contain at least one lowercase letter"
	case !upperPattern.MatchString(p):
		return "Password must contain at least one uppercase letter"
	case !specialPattern.MatchString(p):
		return "Password must contain at least one special character"
	default:
		return ""
	}
}
