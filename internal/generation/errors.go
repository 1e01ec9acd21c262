package generation

import (
	"errors"
	"fmt"

	"github.com/phrazzld/questup-api/internal/domain"
)

// Errors returned by the generation layer.
var (
	// ErrAuthMissing is returned when no credential could be resolved from any source.
	ErrAuthMissing = errors.New("no credential available for the generative endpoint")

	// ErrAuth is returned when the endpoint rejects the credential
	// (invalid key, billing or tier problems, wrong project). Never retried.
	ErrAuth = errors.New("credential rejected by the generative endpoint")

	// ErrTransient is returned for rate limiting or temporary unavailability
	// once the retry budget is exhausted.
	ErrTransient = errors.New("transient error from the generative endpoint")

	// ErrQuota is returned when the endpoint rate-limits the call. It is a
	// transient failure: errors.Is(err, ErrTransient) also holds.
	ErrQuota = fmt.Errorf("%w: rate limited", ErrTransient)

	// ErrMalformedResponse is returned when the endpoint's text does not parse
	// as the declared schema. Never retried.
	ErrMalformedResponse = errors.New("malformed response from the generative endpoint")

	// ErrContentBlocked is returned when the endpoint refuses to answer due to safety filters.
	ErrContentBlocked = errors.New("content blocked by the generative endpoint")

	// ErrInvalidConfig is returned when the generator configuration is invalid.
	ErrInvalidConfig = errors.New("invalid generator configuration")

	// ErrGenerationFailed is returned when the endpoint produced no usable questions.
	ErrGenerationFailed = errors.New("failed to generate questions")

	// ErrValidation is returned for caller-supplied parameters that are out of
	// bounds. It is the domain validation error, so *domain.ValidationError matches it.
	ErrValidation = domain.ErrValidation
)

// Kind classifies a failed endpoint call.
type Kind int

// Failure kinds produced by transport adapters.
const (
	KindUnknown Kind = iota
	KindAuth
	KindRateLimited
	KindUnavailable
	KindMalformed
	KindBlocked
)

// String returns a short label used in logs and metrics.
func (k Kind) String() string {
	switch k {
	case KindAuth:
		return "auth"
	case KindRateLimited:
		return "rate_limited"
	case KindUnavailable:
		return "unavailable"
	case KindMalformed:
		return "malformed"
	case KindBlocked:
		return "blocked"
	default:
		return "unknown"
	}
}

// Transient reports whether failures of this kind may be retried.
func (k Kind) Transient() bool {
	return k == KindRateLimited || k == KindUnavailable
}

// CallError is a classified endpoint failure.
type CallError struct {
	Kind       Kind
	StatusCode int
	Err        error
}

// Error implements the error interface.
func (e *CallError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s (status %d): %v", e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

// Unwrap returns the underlying error.
func (e *CallError) Unwrap() error {
	return e.Err
}

// Is maps the failure kind onto the package sentinels.
func (e *CallError) Is(target error) bool {
	switch e.Kind {
	case KindAuth:
		return target == ErrAuth
	case KindRateLimited:
		return target == ErrQuota || target == ErrTransient
	case KindUnavailable:
		return target == ErrTransient
	case KindMalformed:
		return target == ErrMalformedResponse
	case KindBlocked:
		return target == ErrContentBlocked
	default:
		return false
	}
}

// KindOf returns the kind of a classified error, or KindUnknown.
func KindOf(err error) Kind {
	var callErr *CallError
	if errors.As(err, &callErr) {
		return callErr.Kind
	}
	return KindUnknown
}
