package generation

import (
	"context"

	"github.com/phrazzld/questup-api/internal/domain"
)

// Generator defines the interface for generating exams and analyzing results.
// It is the boundary between the application core and the generative endpoint.
type Generator interface {
	// GenerateExam creates questions from the reference files in params.
	// Validation failures are reported before any endpoint call.
	GenerateExam(ctx context.Context, params domain.ExamParams) ([]domain.Question, error)

	// AnalyzeResults summarizes a learner's answers to questions.
	// answers holds one entry per question; nil means unanswered.
	AnalyzeResults(ctx context.Context, questions []domain.Question, answers []*int) (*domain.AnalysisResult, error)
}
