// Package validation registers GrowMap's custom binding tags with gin's
// go-playground validator and turns validation failures into readable messages.
package validation

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/yukikurage/growmap/internal/constants"
	"github.com/yukikurage/growmap/internal/credentials"
)

// Register adds the "username" and "dateonly" tags to v.
func Register(v *validator.Validate) error {
	if err := v.RegisterValidation("username", validateUsername); err != nil {
		return fmt.Errorf("failed to register username validator: %w", err)
	}
	if err := v.RegisterValidation("dateonly", validateDateOnly); err != nil {
		return fmt.Errorf("failed to register dateonly validator: %w", err)
	}
	return nil
}

// RegisterGin installs the custom tags on gin's default binding validator.
func RegisterGin() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin binding engine is not a go-playground validator")
	}
	return Register(v)
}

func validateUsername(fl validator.FieldLevel) bool {
	return credentials.ValidateUsername(fl.Field().String()) == nil
}

// validateDateOnly accepts an empty value; pair with "required" when needed.
func validateDateOnly(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if s == "" {
		return true
	}
	_, err := time.Parse(constants.DateLayout, s)
	return err == nil
}

var tagMessages = map[string]string{
	"required":  "%s is required",
	"username":  "%s must be 3-50 letters, digits, underscores or hyphens",
	"dateonly":  "%s must be a date in YYYY-MM-DD format",
	"oneof":     "%s must be one of: %s",
	"gt":        "%s must be greater than %s",
	"gte":       "%s must be greater than or equal to %s",
	"lte":       "%s must be less than or equal to %s",
	"max":       "%s must be at most %s characters",
	"min":       "%s must be at least %s characters",
	"latitude":  "%s must be a valid latitude",
	"longitude": "%s must be a valid longitude",
}

// Message converts a binding error into a single user-facing sentence.
// Errors that are not validator errors (malformed JSON, type mismatches)
// produce a generic message.
func Message(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Invalid request body"
	}

	messages := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		messages = append(messages, fieldMessage(fe))
	}
	return strings.Join(messages, "; ")
}

func fieldMessage(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	tmpl, ok := tagMessages[fe.Tag()]
	if !ok {
		return fmt.Sprintf("%s is invalid", field)
	}
	if strings.Count(tmpl, "%s") == 2 {
		return fmt.Sprintf(tmpl, field, fe.Param())
	}
	return fmt.Sprintf(tmpl, field)
}
