package service

import (
	"errors"

	"github.com/phrazzld/questup-api/internal/domain"
)

// Service errors. The API layer maps them to status codes.
var (
	// ErrAlreadySubmitted is returned when answers are submitted for an exam
	// that already has answers and a completed analysis.
	ErrAlreadySubmitted = errors.New("exam answers already submitted")

	// ErrNoQuestions is returned when generation produced an empty exam.
	ErrNoQuestions = domain.ErrNoQuestions
)
