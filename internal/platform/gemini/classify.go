package gemini

import (
	"errors"
	"net/http"
	"strings"

	"github.com/phrazzld/questup-api/internal/generation"
	"google.golang.org/genai"
)

// authPhrases identify credential problems the endpoint reports with
// otherwise generic status codes.
var authPhrases = []string{
	"requested entity was not found",
	"not found",
	"billing",
	"api key not valid",
	"api key expired",
	"api_key_invalid",
	"permission",
}

// authReasons are ErrorInfo reasons in APIError.Details that mark the key
// itself as unusable.
var authReasons = map[string]bool{
	"API_KEY_INVALID":               true,
	"API_KEY_SERVICE_BLOCKED":       true,
	"API_KEY_HTTP_REFERRER_BLOCKED": true,
}

// Classify maps an endpoint error onto a generation.CallError. Errors that
// are not endpoint API errors, or whose status has no known meaning, are
// returned unmodified.
func Classify(err error) error {
	if err == nil {
		return nil
	}

	apiErr, ok := asAPIError(err)
	if !ok {
		return err
	}

	kind := kindFor(apiErr)
	if kind == generation.KindUnknown {
		return err
	}
	return &generation.CallError{Kind: kind, StatusCode: apiErr.Code, Err: err}
}

func asAPIError(err error) (genai.APIError, bool) {
	var value genai.APIError
	if errors.As(err, &value) {
		return value, true
	}
	var ptr *genai.APIError
	if errors.As(err, &ptr) && ptr != nil {
		return *ptr, true
	}
	return genai.APIError{}, false
}

func kindFor(apiErr genai.APIError) generation.Kind {
	switch apiErr.Code {
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
		return generation.KindAuth
	case http.StatusTooManyRequests:
		return generation.KindRateLimited
	case http.StatusServiceUnavailable:
		return generation.KindUnavailable
	}

	if hasAuthReason(apiErr.Details) {
		return generation.KindAuth
	}

	message := strings.ToLower(apiErr.Message + " " + apiErr.Status)
	for _, phrase := range authPhrases {
		if strings.Contains(message, phrase) {
			return generation.KindAuth
		}
	}

	switch apiErr.Status {
	case "RESOURCE_EXHAUSTED":
		return generation.KindRateLimited
	case "UNAVAILABLE":
		return generation.KindUnavailable
	}
	return generation.KindUnknown
}

func hasAuthReason(details []map[string]any) bool {
	for _, detail := range details {
		if reason, ok := detail["reason"].(string); ok && authReasons[reason] {
			return true
		}
	}
	return false
}
