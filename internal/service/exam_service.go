package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/questup-api/internal/domain"
	"github.com/phrazzld/questup-api/internal/generation"
	"github.com/phrazzld/questup-api/internal/platform/logger"
	"github.com/phrazzld/questup-api/internal/platform/metrics"
	"github.com/phrazzld/questup-api/internal/redact"
	"github.com/phrazzld/questup-api/internal/store"
	"golang.org/x/sync/singleflight"
)

// Question warning reasons.
const (
	warnCorrectIndexOutOfRange = "correct_index_out_of_range"
	warnExplanationNotThai     = "explanation_not_thai"
)

// ExamService runs the exam lifecycle: generate, answer, analyze, retry.
type ExamService interface {
	// CreateExam generates and stores a new exam for userID.
	CreateExam(ctx context.Context, userID uuid.UUID, params domain.ExamParams) (*domain.ExamSession, error)

	// GetExam returns one of userID's exams.
	GetExam(ctx context.Context, userID, examID uuid.UUID) (*domain.ExamSession, error)

	// ListExams returns userID's exams, newest first.
	ListExams(ctx context.Context, userID uuid.UUID, limit int) ([]store.ExamSessionSummary, error)

	// SubmitAnswers scores answers and attaches the analysis. answers holds
	// one entry per question; nil marks an unanswered question.
	SubmitAnswers(ctx context.Context, userID, examID uuid.UUID, answers []*int) (*domain.ExamSession, error)

	// RetryWeakTopics generates a new exam from the same files and settings,
	// focused on topics. Empty topics fall back to the analysis weaknesses.
	RetryWeakTopics(ctx context.Context, userID, examID uuid.UUID, topics []string) (*domain.ExamSession, error)
}

// DefaultGenerationTimeout bounds a shared exam generation.
const DefaultGenerationTimeout = 5 * time.Minute

type examService struct {
	exams             store.ExamStore
	generator         generation.Generator
	inflight          singleflight.Group
	generationTimeout time.Duration
	logger            *slog.Logger
}

// ExamServiceOption configures an ExamService.
type ExamServiceOption func(*examService)

// WithGenerationTimeout bounds each shared generation, which keeps running
// after the caller that started it goes away. Non-positive values are ignored.
func WithGenerationTimeout(d time.Duration) ExamServiceOption {
	return func(s *examService) {
		if d > 0 {
			s.generationTimeout = d
		}
	}
}

// NewExamService creates an ExamService.
func NewExamService(
	exams store.ExamStore,
	generator generation.Generator,
	logger *slog.Logger,
	opts ...ExamServiceOption,
) (ExamService, error) {
	if exams == nil {
		return nil, fmt.Errorf("exam store cannot be nil")
	}
	if generator == nil {
		return nil, fmt.Errorf("generator cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	svc := &examService{
		exams:             exams,
		generator:         generator,
		generationTimeout: DefaultGenerationTimeout,
		logger:            logger.With("component", "exam_service"),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// CreateExam implements ExamService. Identical concurrent requests from the
// same user share one generation call and one stored session. The shared
// call does not end when the caller that started it is cancelled; each
// caller stops waiting when its own context is done.
func (s *examService) CreateExam(
	ctx context.Context,
	userID uuid.UUID,
	params domain.ExamParams,
) (*domain.ExamSession, error) {
	key := requestKey(userID, params)

	ch := s.inflight.DoChan(key, func() (any, error) {
		shared, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.generationTimeout)
		defer cancel()
		return s.createExam(shared, userID, params)
	})

	select {
	case <-ctx.Done():
		logger.FromContextOrDefault(ctx, s.logger).InfoContext(ctx, "stopped waiting for exam generation",
			slog.String("user_id", userID.String()),
			redact.ErrorAttr(ctx.Err()))
		return nil, ctx.Err()
	case res := <-ch:
		if res.Shared {
			logger.FromContextOrDefault(ctx, s.logger).InfoContext(ctx, "joined identical in-flight exam generation",
				slog.String("user_id", userID.String()))
		}
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*domain.ExamSession), nil
	}
}

func (s *examService) createExam(
	ctx context.Context,
	userID uuid.UUID,
	params domain.ExamParams,
) (*domain.ExamSession, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.String("user_id", userID.String()))

	questions, err := s.generator.GenerateExam(ctx, params)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		log.WarnContext(ctx, "generation returned no questions")
		return nil, fmt.Errorf("%w: %w", generation.ErrGenerationFailed, ErrNoQuestions)
	}

	s.inspect(ctx, log, questions)

	session, err := domain.NewExamSession(userID, params, questions)
	if err != nil {
		return nil, err
	}
	if err := s.exams.Create(ctx, session); err != nil {
		log.ErrorContext(ctx, "failed to store exam session", redact.ErrorAttr(err))
		return nil, fmt.Errorf("failed to store exam: %w", err)
	}

	log.InfoContext(ctx, "exam created",
		slog.String("exam_id", session.ID.String()),
		slog.Int("questions", len(questions)),
		slog.Int("weak_topics", len(session.WeakTopicsFromPrevious)))
	return session, nil
}

// inspect logs and counts questions kept despite soft problems.
func (s *examService) inspect(ctx context.Context, log *slog.Logger, questions []domain.Question) {
	for _, q := range questions {
		if !q.HasValidAnswer() {
			metrics.QuestionWarning(warnCorrectIndexOutOfRange)
			log.WarnContext(ctx, "question answer index out of range",
				slog.String("question_id", q.ID),
				slog.Int("correct_index", q.CorrectIndex),
				slog.Int("options", len(q.Options)))
		}
		if !q.ExplainedInThai() {
			metrics.QuestionWarning(warnExplanationNotThai)
			log.WarnContext(ctx, "question explanation or topic not in Thai",
				slog.String("question_id", q.ID))
		}
	}
}

// GetExam implements ExamService.
func (s *examService) GetExam(ctx context.Context, userID, examID uuid.UUID) (*domain.ExamSession, error) {
	session, err := s.exams.GetByID(ctx, userID, examID)
	if err != nil {
		return nil, fmt.Errorf("failed to get exam: %w", err)
	}
	return session, nil
}

// ListExams implements ExamService.
func (s *examService) ListExams(ctx context.Context, userID uuid.UUID, limit int) ([]store.ExamSessionSummary, error) {
	summaries, err := s.exams.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list exams: %w", err)
	}
	return summaries, nil
}

// SubmitAnswers implements ExamService. Answers and score are stored even
// when the analysis fails; the learner may then submit again to retry it.
func (s *examService) SubmitAnswers(
	ctx context.Context,
	userID, examID uuid.UUID,
	answers []*int,
) (*domain.ExamSession, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.String("exam_id", examID.String()))

	session, err := s.exams.GetByID(ctx, userID, examID)
	if err != nil {
		return nil, fmt.Errorf("failed to get exam: %w", err)
	}
	if session.Answers != nil && session.Analysis != nil {
		return nil, ErrAlreadySubmitted
	}

	if err := session.RecordAnswers(answers); err != nil {
		return nil, err
	}

	analysis, analysisErr := s.generator.AnalyzeResults(ctx, session.Questions, session.Answers)
	if analysisErr == nil {
		session.RecordAnalysis(analysis)
	}

	if err := s.exams.SaveResults(ctx, session); err != nil {
		log.ErrorContext(ctx, "failed to save exam results", redact.ErrorAttr(err))
		return nil, fmt.Errorf("failed to save results: %w", err)
	}

	if analysisErr != nil {
		log.WarnContext(ctx, "answers saved without analysis", redact.ErrorAttr(analysisErr))
		return nil, fmt.Errorf("failed to analyze results: %w", analysisErr)
	}

	log.InfoContext(ctx, "exam submitted",
		slog.Int("score", session.Score),
		slog.Int("questions", len(session.Questions)))
	return session, nil
}

// RetryWeakTopics implements ExamService.
func (s *examService) RetryWeakTopics(
	ctx context.Context,
	userID, examID uuid.UUID,
	topics []string,
) (*domain.ExamSession, error) {
	previous, err := s.exams.GetByID(ctx, userID, examID)
	if err != nil {
		return nil, fmt.Errorf("failed to get exam: %w", err)
	}

	focus := domain.CleanTopics(topics)
	if len(focus) == 0 && previous.Analysis != nil {
		focus = domain.CleanTopics(previous.Analysis.Weaknesses)
	}
	if len(focus) == 0 {
		return nil, domain.NewValidationError("weak_topics",
			"no weak topics given and the exam has no analysis weaknesses", nil)
	}

	return s.CreateExam(ctx, userID, previous.Params(focus))
}

// requestKey fingerprints a generation request for in-flight deduplication.
// File payloads are streamed into the hash.
func requestKey(userID uuid.UUID, params domain.ExamParams) string {
	h := sha256.New()
	writeField(h, strconv.Itoa(len(params.Files)))
	for _, f := range params.Files {
		writeField(h, f.Name)
		writeField(h, f.MimeType)
		writeField(h, f.Data)
	}
	writeField(h, string(params.Grade))
	writeField(h, string(params.Language))
	writeField(h, strconv.Itoa(params.Count))
	for _, topic := range domain.CleanTopics(params.WeakTopics) {
		writeField(h, topic)
	}
	return userID.String() + ":" + hex.EncodeToString(h.Sum(nil))
}

// writeField writes a length-prefixed value so adjacent fields cannot run
// together.
func writeField(h hash.Hash, v string) {
	_, _ = io.WriteString(h, strconv.Itoa(len(v)))
	_, _ = io.WriteString(h, ":")
	_, _ = io.WriteString(h, v)
}
