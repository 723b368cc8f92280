// Package validation checks request payloads and cleans user-supplied text.
package validation

import (
	"errors"
	"html"
	"reflect"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"

	"scoredAPI/internal/apperrors"
)

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,20}$`)
	usernameStrip   = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

	validate = validator.New()
	policy   = bluemonday.StrictPolicy()
)

func init() {
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = validate.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return ValidUsername(fl.Field().String())
	})
}

// Struct validates a tagged request struct and converts the first failure
// into a validation AppError naming the offending field.
func Struct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		if fe.Tag() == "username" {
			return apperrors.ErrInvalidUsername
		}
		return apperrors.Validation(fieldMessage(fe))
	}
	return apperrors.Validation("Invalid request body")
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "uuid":
		return fe.Field() + " must be a valid id"
	case "oneof":
		return "Invalid " + strings.ToLower(fe.Field())
	default:
		return fe.Field() + " is invalid"
	}
}

func ValidUsername(username string) bool {
	return usernamePattern.MatchString(username)
}

// UsernameFrom derives a pattern-valid username candidate from free text such as
// an email local part or a display name. Returns "" when nothing usable remains.
func UsernameFrom(raw string) string {
	if at := strings.Index(raw, "@"); at >= 0 {
		raw = raw[:at]
	}
	candidate := usernameStrip.ReplaceAllString(strings.TrimSpace(raw), "")
	if len(candidate) > 20 {
		candidate = candidate[:20]
	}
	if len(candidate) < 3 {
		return ""
	}
	return candidate
}

// CleanText strips markup, trims whitespace and truncates to max runes.
// The result is plain text: entities the sanitizer introduces are decoded.
func CleanText(raw string, max int) string {
	cleaned := strings.TrimSpace(html.UnescapeString(policy.Sanitize(raw)))
	if max > 0 && utf8.RuneCountInString(cleaned) > max {
		cleaned = strings.TrimSpace(string([]rune(cleaned)[:max]))
	}
	return cleaned
}

// CleanNote returns nil for notes that are empty after cleaning.
func CleanNote(raw string, max int) *string {
	cleaned := CleanText(raw, max)
	if cleaned == "" {
		return nil
	}
	return &cleaned
}
