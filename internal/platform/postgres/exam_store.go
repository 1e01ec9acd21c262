package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/questup-api/internal/domain"
	"github.com/phrazzld/questup-api/internal/platform/logger"
	"github.com/phrazzld/questup-api/internal/redact"
	"github.com/phrazzld/questup-api/internal/store"
)

// DefaultListLimit caps ListByUser when no positive limit is given.
const DefaultListLimit = 50

// PostgresExamStore implements store.ExamStore. Files, questions, answers,
// analysis and weak topics are stored as JSONB.
type PostgresExamStore struct {
	db     store.DBTX
	logger *slog.Logger
}

var _ store.ExamStore = (*PostgresExamStore)(nil)

// NewPostgresExamStore creates an exam store on db. If logger is nil,
// slog.Default is used.
func NewPostgresExamStore(db store.DBTX, logger *slog.Logger) *PostgresExamStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresExamStore{
		db:     db,
		logger: logger.With(slog.String("component", "exam_store")),
	}
}

// WithTx implements store.ExamStore.
func (s *PostgresExamStore) WithTx(tx store.DBTX) store.ExamStore {
	return &PostgresExamStore{db: tx, logger: s.logger}
}

// Create implements store.ExamStore.
func (s *PostgresExamStore) Create(ctx context.Context, session *domain.ExamSession) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := session.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	files, err := json.Marshal(session.Files)
	if err != nil {
		return fmt.Errorf("failed to encode files: %w", err)
	}
	questions, err := json.Marshal(session.Questions)
	if err != nil {
		return fmt.Errorf("failed to encode questions: %w", err)
	}
	weakTopics, err := nullableJSON(session.WeakTopicsFromPrevious, len(session.WeakTopicsFromPrevious) == 0)
	if err != nil {
		return fmt.Errorf("failed to encode weak topics: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO exam_sessions (
			id, user_id, grade, language, question_count,
			files, questions, score, weak_topics_from_previous, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`,
		session.ID, session.UserID, session.Grade, session.Language, session.QuestionCount,
		files, questions, session.Score, weakTopics, session.CreatedAt, session.UpdatedAt,
	)
	if err != nil {
		log.ErrorContext(ctx, "failed to create exam session",
			slog.String("exam_id", session.ID.String()),
			slog.String("user_id", session.UserID.String()),
			redact.ErrorAttr(err))
		return storeFailure("exam_session", "create", err)
	}

	log.InfoContext(ctx, "exam session created",
		slog.String("exam_id", session.ID.String()),
		slog.Int("questions", len(session.Questions)))
	return nil
}

// GetByID implements store.ExamStore.
func (s *PostgresExamStore) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.ExamSession, error) {
	var (
		session                       domain.ExamSession
		files, questions              []byte
		answers, analysis, weakTopics []byte
	)

	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, grade, language, question_count, files, questions,
		       answers, score, analysis, weak_topics_from_previous, created_at, updated_at
		FROM exam_sessions
		WHERE id = $1 AND user_id = $2
	`, id, userID).Scan(
		&session.ID, &session.UserID, &session.Grade, &session.Language, &session.QuestionCount,
		&files, &questions, &answers, &session.Score, &analysis, &weakTopics,
		&session.CreatedAt, &session.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrExamNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).ErrorContext(ctx, "failed to get exam session",
			slog.String("exam_id", id.String()), redact.ErrorAttr(err))
		return nil, storeFailure("exam_session", "get", err)
	}

	if err := decodeJSON(files, &session.Files); err != nil {
		return nil, fmt.Errorf("failed to decode files: %w", err)
	}
	if err := decodeJSON(questions, &session.Questions); err != nil {
		return nil, fmt.Errorf("failed to decode questions: %w", err)
	}
	if err := decodeJSON(answers, &session.Answers); err != nil {
		return nil, fmt.Errorf("failed to decode answers: %w", err)
	}
	if len(analysis) > 0 {
		session.Analysis = &domain.AnalysisResult{}
		if err := decodeJSON(analysis, session.Analysis); err != nil {
			return nil, fmt.Errorf("failed to decode analysis: %w", err)
		}
	}
	if err := decodeJSON(weakTopics, &session.WeakTopicsFromPrevious); err != nil {
		return nil, fmt.Errorf("failed to decode weak topics: %w", err)
	}

	return &session, nil
}

// ListByUser implements store.ExamStore.
func (s *PostgresExamStore) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]store.ExamSessionSummary, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, grade, language, question_count, answers IS NOT NULL, score, created_at
		FROM exam_sessions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).ErrorContext(ctx, "failed to list exam sessions",
			slog.String("user_id", userID.String()), redact.ErrorAttr(err))
		return nil, storeFailure("exam_session", "list", err)
	}
	defer func() { _ = rows.Close() }()

	summaries := []store.ExamSessionSummary{}
	for rows.Next() {
		var sum store.ExamSessionSummary
		if err := rows.Scan(&sum.ID, &sum.Grade, &sum.Language, &sum.QuestionCount,
			&sum.Answered, &sum.Score, &sum.CreatedAt); err != nil {
			return nil, storeFailure("exam_session", "list", err)
		}
		summaries = append(summaries, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, storeFailure("exam_session", "list", err)
	}
	return summaries, nil
}

// SaveResults implements store.ExamStore.
func (s *PostgresExamStore) SaveResults(ctx context.Context, session *domain.ExamSession) error {
	if err := session.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	answers, err := nullableJSON(session.Answers, session.Answers == nil)
	if err != nil {
		return fmt.Errorf("failed to encode answers: %w", err)
	}
	analysis, err := nullableJSON(session.Analysis, session.Analysis == nil)
	if err != nil {
		return fmt.Errorf("failed to encode analysis: %w", err)
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE exam_sessions
		SET answers = $3, score = $4, analysis = $5, updated_at = $6
		WHERE id = $1 AND user_id = $2
	`, session.ID, session.UserID, answers, session.Score, analysis, session.UpdatedAt)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).ErrorContext(ctx, "failed to save exam results",
			slog.String("exam_id", session.ID.String()), redact.ErrorAttr(err))
		return storeFailure("exam_session", "save_results", err)
	}
	return CheckRowsAffected(result, store.ErrExamNotFound)
}

// nullableJSON encodes v, or returns nil (SQL NULL) when empty is true.
func nullableJSON(v any, empty bool) ([]byte, error) {
	if empty {
		return nil, nil
	}
	return json.Marshal(v)
}

func decodeJSON(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}
