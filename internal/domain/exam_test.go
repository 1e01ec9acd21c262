package domain

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestGradeValid(t *testing.T) {
	for _, g := range []Grade{GradeG1, GradeG6, GradeM1, GradeM3, GradeM6} {
		assert.True(t, g.Valid(), "grade %s", g)
	}
	for _, g := range []Grade{"", "G7", "M0", "m3"} {
		assert.False(t, g.Valid(), "grade %q", g)
	}
}

func TestLanguageValid(t *testing.T) {
	assert.True(t, LanguageThai.Valid())
	assert.True(t, LanguageEnglish.Valid())
	assert.False(t, Language("French").Valid())
	assert.False(t, Language("").Valid())
}

func TestCleanTopics(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{name: "nil", in: nil, want: nil},
		{name: "only blanks", in: []string{"", "  "}, want: nil},
		{name: "trims and dedupes", in: []string{" fractions ", "", "fractions", "decimals"}, want: []string{"fractions", "decimals"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanTopics(tt.in))
		})
	}
}

func TestQuestionAnswers(t *testing.T) {
	q := Question{Options: []string{"a", "b", "c", "d"}, CorrectIndex: 2}

	assert.True(t, q.HasValidAnswer())
	assert.True(t, q.IsCorrect(intPtr(2)))
	assert.False(t, q.IsCorrect(intPtr(1)))
	assert.False(t, q.IsCorrect(nil))

	q.CorrectIndex = 7
	assert.False(t, q.HasValidAnswer())
	q.CorrectIndex = -1
	assert.False(t, q.HasValidAnswer())
}

func TestExplainedInThai(t *testing.T) {
	thai := Question{Explanation: "เพราะ 2+2 เท่ากับ 4", Topic: "การบวก"}
	assert.True(t, thai.ExplainedInThai())

	english := Question{Explanation: "Because 2+2 is 4", Topic: "การบวก"}
	assert.False(t, english.ExplainedInThai())
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("count", "must be between 1 and 50", nil)

	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "validation failed: count must be between 1 and 50", err.Error())

	wrapped := NewValidationError("answers", "mismatch", ErrAnswerCount)
	assert.ErrorIs(t, wrapped, ErrValidation)
	assert.ErrorIs(t, wrapped, ErrAnswerCount)

	var ve *ValidationError
	require.True(t, errors.As(wrapped, &ve))
	assert.Equal(t, "answers", ve.Field)
}

func TestExamSessionLifecycle(t *testing.T) {
	userID := uuid.New()
	params := ExamParams{
		Files:      []ReferenceFile{{Name: "a.pdf", Data: "AAAA", MimeType: "application/pdf"}},
		Grade:      GradeM3,
		Language:   LanguageEnglish,
		Count:      2,
		WeakTopics: []string{" algebra ", ""},
	}
	questions := []Question{
		{ID: "q1", Options: []string{"a", "b", "c", "d"}, CorrectIndex: 0, Topic: "พีชคณิต"},
		{ID: "q2", Options: []string{"a", "b", "c", "d"}, CorrectIndex: 3, Topic: "เรขาคณิต"},
	}

	session, err := NewExamSession(userID, params, questions)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, session.ID)
	assert.Equal(t, []string{"algebra"}, session.WeakTopicsFromPrevious)
	assert.Equal(t, 2, session.QuestionCount)

	err = session.RecordAnswers([]*int{intPtr(0)})
	assert.ErrorIs(t, err, ErrAnswerCount)
	assert.ErrorIs(t, err, ErrValidation)

	require.NoError(t, session.RecordAnswers([]*int{intPtr(0), nil}))
	assert.Equal(t, 1, session.Score)

	session.RecordAnalysis(&AnalysisResult{Summary: "ok"})
	assert.Equal(t, "ok", session.Analysis.Summary)

	retry := session.Params([]string{"geometry"})
	assert.Equal(t, params.Files, retry.Files)
	assert.Equal(t, GradeM3, retry.Grade)
	assert.Equal(t, LanguageEnglish, retry.Language)
	assert.Equal(t, 2, retry.Count)
	assert.Equal(t, []string{"geometry"}, retry.WeakTopics)
}

func TestNewExamSessionValidation(t *testing.T) {
	_, err := NewExamSession(uuid.Nil, ExamParams{}, []Question{{ID: "q"}})
	assert.ErrorIs(t, err, ErrEmptySessionUserID)

	_, err = NewExamSession(uuid.New(), ExamParams{}, nil)
	assert.ErrorIs(t, err, ErrNoQuestions)
}
