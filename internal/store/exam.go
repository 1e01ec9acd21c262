package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/questup-api/internal/domain"
)

// ExamSessionSummary is the list view of an exam session; it omits the
// reference files and the questions.
type ExamSessionSummary struct {
	ID            uuid.UUID       `json:"id"`
	Grade         domain.Grade    `json:"grade"`
	Language      domain.Language `json:"language"`
	QuestionCount int             `json:"question_count"`
	Answered      bool            `json:"answered"`
	Score         int             `json:"score"`
	CreatedAt     time.Time       `json:"created_at"`
}

// ExamStore defines the interface for exam session persistence.
// Every read is scoped to the owning user: a session owned by someone else
// is reported as ErrExamNotFound.
type ExamStore interface {
	// Create saves a freshly generated exam session.
	Create(ctx context.Context, session *domain.ExamSession) error

	// GetByID retrieves a user's exam session.
	GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.ExamSession, error)

	// ListByUser returns a user's sessions, newest first, at most limit entries.
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]ExamSessionSummary, error)

	// SaveResults stores answers, score and analysis of a session.
	SaveResults(ctx context.Context, session *domain.ExamSession) error

	// WithTx returns an ExamStore bound to the given transaction.
	WithTx(tx DBTX) ExamStore
}
