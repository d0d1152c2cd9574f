package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/phrazzld/kanji-trainer/internal/api/shared"
	"github.com/phrazzld/kanji-trainer/internal/domain"
	"github.com/phrazzld/kanji-trainer/internal/service/training"
	"github.com/phrazzld/kanji-trainer/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Session flow
	case errors.Is(err, training.ErrInvalidTransition),
		errors.Is(err, training.ErrEvolveUnavailable):
		return http.StatusConflict
	case errors.Is(err, training.ErrInvalidMode),
		errors.Is(err, training.ErrNotACandidate):
		return http.StatusBadRequest
	case errors.Is(err, training.ErrNoPopup):
		return http.StatusNotFound

	// Not found errors
	case errors.Is(err, domain.ErrUnknownCharacter),
		errors.Is(err, domain.ErrCharacterNotOwned),
		errors.Is(err, domain.ErrUnknownQuestion),
		errors.Is(err, domain.ErrUnknownFood),
		errors.Is(err, domain.ErrRewardNotFound):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, domain.ErrOutOfFood),
		errors.Is(err, domain.ErrFoodNotEligible),
		errors.Is(err, domain.ErrRewardExists):
		return http.StatusConflict

	// Bad request errors
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrRewardEmpty),
		errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, shared.ErrEmptyBody):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, training.ErrInvalidTransition):
		return "Action not available right now"
	case errors.Is(err, training.ErrEvolveUnavailable):
		return "Collect a character before training one"
	case errors.Is(err, training.ErrInvalidMode):
		return "Invalid mode"
	case errors.Is(err, training.ErrNotACandidate):
		return "Character cannot be trained"
	case errors.Is(err, training.ErrNoPopup):
		return "Popup not shown"

	case errors.Is(err, domain.ErrUnknownCharacter):
		return "Character not found"
	case errors.Is(err, domain.ErrCharacterNotOwned):
		return "Character not collected"
	case errors.Is(err, domain.ErrUnknownQuestion):
		return "Question not found"
	case errors.Is(err, domain.ErrUnknownFood):
		return "Food not found"
	case errors.Is(err, domain.ErrRewardNotFound):
		return "Reward not found"

	case errors.Is(err, domain.ErrOutOfFood):
		return "No food of this kind left"
	case errors.Is(err, domain.ErrFoodNotEligible):
		return "Character does not eat this food"
	case errors.Is(err, domain.ErrRewardExists):
		return "Reward already exists"

	case errors.Is(err, domain.ErrRewardEmpty):
		return "Reward cannot be empty"
	case errors.Is(err, shared.ErrEmptyBody):
		return "Request body is required"
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity):
		return "Invalid request"

	default:
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError removes sensitive details from validation errors
// and returns a user-friendly message.
func SanitizeValidationError(err error) string {
	errMsg := err.Error()

	// Example format: "Key: 'AnswerRequest.Answer' Error:Field validation for 'Answer' failed on the 'required' tag"
	if strings.Contains(errMsg, "Field validation") {
		parts := strings.Split(errMsg, "Error:")
		if len(parts) >= 2 {
			fieldParts := strings.Split(parts[1], "'")
			if len(fieldParts) >= 3 {
				field := fieldParts[1]
				var tag string
				if len(fieldParts) >= 5 {
					tag = fieldParts[3]
				}
				if tag != "" {
					return fmt.Sprintf("Invalid %s: %s", field, getValidationTagMessage(tag))
				}
				return fmt.Sprintf("Invalid %s", field)
			}
		}
	}

	return "Validation error"
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "oneof":
		return "invalid value"
	default:
		return "validation failed"
	}
}
