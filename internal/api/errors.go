package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/questup-api/internal/api/shared"
	"github.com/phrazzld/questup-api/internal/credential"
	"github.com/phrazzld/questup-api/internal/domain"
	"github.com/phrazzld/questup-api/internal/generation"
	"github.com/phrazzld/questup-api/internal/service"
	"github.com/phrazzld/questup-api/internal/service/auth"
	"github.com/phrazzld/questup-api/internal/store"
)

// ActionSelectCredential tells the client to select a Gemini API key
// (PUT /api/credentials) and try again.
const ActionSelectCredential = "select_credential"

// MapErrorToStatusCode maps internal errors to HTTP status codes without
// leaking internal error types to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Bad request errors
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, credential.ErrUnusableKey):
		return http.StatusBadRequest

	// Authentication errors, API tokens and generation credentials alike
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, domain.ErrUnauthorized),
		errors.Is(err, generation.ErrAuthMissing),
		errors.Is(err, generation.ErrAuth):
		return http.StatusUnauthorized

	// Not found errors
	case store.IsNotFoundError(err):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, service.ErrAlreadySubmitted),
		store.IsDuplicateError(err):
		return http.StatusConflict

	// Generative endpoint failures
	case errors.Is(err, generation.ErrTransient),
		errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	case errors.Is(err, generation.ErrMalformedResponse),
		errors.Is(err, generation.ErrContentBlocked),
		errors.Is(err, generation.ErrGenerationFailed):
		return http.StatusBadGateway

	case errors.Is(err, generation.ErrInvalidConfig):
		return http.StatusInternalServerError

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a user-facing message for err that reveals no
// internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var validationErr *domain.ValidationError
	switch {
	case errors.As(err, &validationErr):
		if validationErr.Field == "" {
			return "Invalid " + validationErr.Message
		}
		return fmt.Sprintf("Invalid %s: %s", validationErr.Field, validationErr.Message)
	case errors.Is(err, domain.ErrInvalidID):
		return "Invalid ID"
	case errors.Is(err, credential.ErrUnusableKey):
		return "API key is empty or unusable"

	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid):
		return "Invalid token"

	case errors.Is(err, generation.ErrAuthMissing):
		return "No Gemini API key selected. Select a key and try again"
	case errors.Is(err, generation.ErrAuth):
		return "The Gemini API key was rejected. Check billing or select another key"

	case errors.Is(err, store.ErrUserNotFound):
		return "User not found"
	case errors.Is(err, store.ErrExamNotFound):
		return "Exam not found"
	case store.IsNotFoundError(err):
		return "Not found"

	case errors.Is(err, service.ErrAlreadySubmitted):
		return "Answers were already submitted for this exam"
	case errors.Is(err, store.ErrEmailExists):
		return "Email already exists"
	case store.IsDuplicateError(err):
		return "Already exists"

	case errors.Is(err, generation.ErrQuota):
		return "The generation service is rate limited. Please try again later"
	case errors.Is(err, generation.ErrTransient):
		return "The generation service is temporarily unavailable. Please try again later"
	case errors.Is(err, context.DeadlineExceeded):
		return "Exam generation took too long. Please try again later"
	case errors.Is(err, generation.ErrContentBlocked):
		return "The generation service refused the request content"
	case errors.Is(err, service.ErrNoQuestions):
		return "No questions could be generated from these files"
	case errors.Is(err, generation.ErrMalformedResponse),
		errors.Is(err, generation.ErrGenerationFailed):
		return "The generation service returned an unusable response"

	default:
		return "An unexpected error occurred"
	}
}

// HandleAPIError writes the error response for err. fallback replaces the
// generic message of unmapped (500) errors when non-empty.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && fallback != "" {
		message = fallback
	}

	var opts []shared.ResponseOption
	if errors.Is(err, generation.ErrAuthMissing) || errors.Is(err, generation.ErrAuth) {
		opts = append(opts, shared.WithAction(ActionSelectCredential), shared.WithElevatedLogLevel())
	}
	if status == http.StatusServiceUnavailable {
		w.Header().Set("Retry-After", "30")
	}

	shared.RespondWithErrorAndLog(w, r, status, message, err, opts...)
}

// SanitizeValidationError turns validator output into a user-friendly message.
func SanitizeValidationError(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return "Validation error"
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fmt.Sprintf("Invalid %s: %s", fe.Field(), getValidationTagMessage(fe.Tag())))
	}
	return strings.Join(msgs, "; ")
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "email":
		return "invalid email format"
	case "min", "gte":
		return "too small"
	case "max", "lte":
		return "too large"
	case "oneof":
		return "invalid value"
	case "url":
		return "invalid URL"
	default:
		return "validation failed"
	}
}
