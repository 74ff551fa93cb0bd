package usecase

import (
	"fmt"
	"net/mail"
	"strings"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func ValidateOnboardingInput(input OnboardingInput) []ValidationError {
	var errs []ValidationError

	if strings.TrimSpace(input.Name) == "" {
		errs = append(errs, ValidationError{"name", "is required"})
	} else if len(input.Name) > 200 {
		errs = append(errs, ValidationError{"name", "must not exceed 200 characters"})
	}

	errs = append(errs, validateEmail(input.Email)...)

	if strings.TrimSpace(input.Goal) == "" {
		errs = append(errs, ValidationError{"goal", "is required"})
	}

	if strings.TrimSpace(input.Experience) == "" {
		errs = append(errs, ValidationError{"experience", "is required"})
	}

	// Phone is the one optional field on the form.
	if input.Phone != "" && len(input.Phone) > 30 {
		errs = append(errs, ValidationError{"phone", "is too long"})
	}

	return errs
}

func validateEmail(email string) []ValidationError {
	if strings.TrimSpace(email) == "" {
		return []ValidationError{{"email", "is required"}}
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return []ValidationError{{"email", "is invalid"}}
	}
	return nil
}

func joinValidationErrors(errs []ValidationError) string {
	msg := "validation failed: "
	for _, e := range errs {
		msg += e.Field + " (" + e.Message + "), "
	}
	return strings.TrimSuffix(msg, ", ")
}
