package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Session validation errors
var (
	ErrEmptySessionID     = errors.New("exam session ID cannot be empty")
	ErrEmptySessionUserID = errors.New("exam session user ID cannot be empty")
	ErrNoQuestions        = errors.New("exam session has no questions")
	ErrAnswerCount        = errors.New("answer count does not match question count")
)

// ExamSession is one generated exam together with the learner's answers
// and the resulting analysis.
type ExamSession struct {
	ID                     uuid.UUID       `json:"id"`
	UserID                 uuid.UUID       `json:"user_id"`
	Files                  []ReferenceFile `json:"files"`
	Grade                  Grade           `json:"grade"`
	Language               Language        `json:"language"`
	QuestionCount          int             `json:"question_count"`
	Questions              []Question      `json:"questions"`
	Answers                []*int          `json:"answers,omitempty"`
	Score                  int             `json:"score"`
	Analysis               *AnalysisResult `json:"analysis,omitempty"`
	WeakTopicsFromPrevious []string        `json:"weak_topics_from_previous,omitempty"`
	CreatedAt              time.Time       `json:"created_at"`
	UpdatedAt              time.Time       `json:"updated_at"`
}

// NewExamSession creates a session for freshly generated questions.
func NewExamSession(userID uuid.UUID, params ExamParams, questions []Question) (*ExamSession, error) {
	now := time.Now().UTC()
	s := &ExamSession{
		ID:                     uuid.New(),
		UserID:                 userID,
		Files:                  params.Files,
		Grade:                  params.Grade,
		Language:               params.Language,
		QuestionCount:          params.Count,
		Questions:              questions,
		WeakTopicsFromPrevious: CleanTopics(params.WeakTopics),
		CreatedAt:              now,
		UpdatedAt:              now,
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks the session invariants.
func (s *ExamSession) Validate() error {
	if s.ID == uuid.Nil {
		return ErrEmptySessionID
	}
	if s.UserID == uuid.Nil {
		return ErrEmptySessionUserID
	}
	if len(s.Questions) == 0 {
		return ErrNoQuestions
	}
	if s.Answers != nil && len(s.Answers) != len(s.Questions) {
		return ErrAnswerCount
	}
	return nil
}

// Params returns the parameters the session was generated with,
// substituting weakTopics for the previous ones.
func (s *ExamSession) Params(weakTopics []string) ExamParams {
	return ExamParams{
		Files:      s.Files,
		Grade:      s.Grade,
		Language:   s.Language,
		Count:      s.QuestionCount,
		WeakTopics: weakTopics,
	}
}

// RecordAnswers stores the learner's answers and recomputes the score.
func (s *ExamSession) RecordAnswers(answers []*int) error {
	if len(answers) != len(s.Questions) {
		return NewValidationError("answers", "must contain one entry per question", ErrAnswerCount)
	}

	score := 0
	for i, q := range s.Questions {
		if q.IsCorrect(answers[i]) {
			score++
		}
	}

	s.Answers = answers
	s.Score = score
	s.UpdatedAt = time.Now().UTC()
	return nil
}

// RecordAnalysis attaches an analysis result to the session.
func (s *ExamSession) RecordAnalysis(analysis *AnalysisResult) {
	s.Analysis = analysis
	s.UpdatedAt = time.Now().UTC()
}
