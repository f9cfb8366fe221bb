package api

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"curriculo/internal/apperror"
	"curriculo/internal/resume"
)

var hexColor6 = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

const (
	maxEditableSections = 30
	maxEditableItems    = 50
)

// RegisterValidators 向 gin 默认的校验器注册自定义标签。
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("unexpected gin validator engine")
	}
	if err := v.RegisterValidation("hexcolor6", validHexColor6); err != nil {
		return fmt.Errorf("register hexcolor6: %w", err)
	}
	if err := v.RegisterValidation("known", validKnownValue); err != nil {
		return fmt.Errorf("register known: %w", err)
	}
	return nil
}

// validHexColor6 accepts #RRGGBB only; the normalizer is more lenient for model output.
func validHexColor6(fl validator.FieldLevel) bool {
	return hexColor6.MatchString(fl.Field().String())
}

// validKnownValue accepts enum-like values that report Valid() == true.
func validKnownValue(fl validator.FieldLevel) bool {
	if !fl.Field().CanInterface() {
		return false
	}
	v, ok := fl.Field().Interface().(interface{ Valid() bool })
	return ok && v.Valid()
}

// FormatValidationErrors converts validator.ValidationErrors to short messages.
func FormatValidationErrors(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "invalid request body"
	}
	messages := make([]string, 0, len(verrs))
	for _, e := range verrs {
		messages = append(messages, formatFieldError(e))
	}
	return strings.Join(messages, "; ")
}

func formatFieldError(e validator.FieldError) string {
	field := e.Field()
	switch e.Tag() {
	case "required":
		return field + " is required"
	case "min":
		return fmt.Sprintf("%s must have at least %s characters", field, e.Param())
	case "max":
		return fmt.Sprintf("%s must have at most %s characters", field, e.Param())
	case "email":
		return field + " must be a valid email"
	case "hexcolor6":
		return field + " must be a #RRGGBB color"
	case "known":
		return fmt.Sprintf("%s has an unknown value %q", field, fmt.Sprint(e.Value()))
	default:
		return field + " is invalid"
	}
}

// validateContent checks what the JSON binding cannot express.
func validateContent(content *resume.Content) error {
	if len(content.Sections) > maxEditableSections {
		return apperror.Validation(fmt.Sprintf("a resume can have at most %d sections", maxEditableSections))
	}
	seen := make(map[string]struct{}, len(content.Sections))
	for i := range content.Sections {
		s := &content.Sections[i]
		if !s.Type.Valid() {
			return apperror.Validation(fmt.Sprintf("section %q has an unknown type", s.ID))
		}
		if strings.TrimSpace(s.ID) == "" {
			return apperror.Validation("section id is required")
		}
		if _, dup := seen[s.ID]; dup {
			return apperror.Validation(fmt.Sprintf("duplicate section id %q", s.ID))
		}
		seen[s.ID] = struct{}{}
		if len(s.Items) > maxEditableItems {
			return apperror.Validation(fmt.Sprintf("section %q has too many items", s.ID))
		}
		s.LayoutColumn = s.LayoutColumn.Normalize()
	}
	return nil
}
