package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/questup-api/internal/domain"
	"github.com/phrazzld/questup-api/internal/store"
)

// LoginRequest defines the payload for the login endpoint.
type LoginRequest struct {
	Name      string `json:"name"       validate:"required,max=100"`
	Email     string `json:"email"      validate:"required,email"`
	AvatarURL string `json:"avatar_url" validate:"omitempty,url"`
}

// AuthResponse defines the successful response for the login endpoint.
type AuthResponse struct {
	UserID uuid.UUID    `json:"user_id"`
	Token  string       `json:"token"`
	User   UserResponse `json:"user"`
}

// UserResponse is the public view of a user.
type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	AvatarURL string    `json:"avatar_url"`
	CreatedAt time.Time `json:"created_at"`
}

// SelectCredentialRequest selects the Gemini API key used for the caller's
// generation calls.
type SelectCredentialRequest struct {
	APIKey string `json:"api_key" validate:"required"`
}

// CredentialStatusResponse reports whether a key will be used for the caller.
type CredentialStatusResponse struct {
	Selected bool `json:"selected"`
}

// FileRequest is one uploaded reference document.
type FileRequest struct {
	Name     string `json:"name"`
	Data     string `json:"data"      validate:"required"`
	MimeType string `json:"mime_type"`
}

// CreateExamRequest defines the payload for generating an exam.
type CreateExamRequest struct {
	Files      []FileRequest `json:"files"       validate:"required,min=1,dive"`
	Grade      string        `json:"grade"       validate:"required"`
	Language   string        `json:"language"    validate:"required"`
	Count      int           `json:"count"       validate:"required,gte=1,lte=50"`
	WeakTopics []string      `json:"weak_topics"`
}

// SubmitAnswersRequest carries one entry per question; null marks an
// unanswered question.
type SubmitAnswersRequest struct {
	Answers []*int `json:"answers" validate:"required"`
}

// RetryRequest selects the topics of a follow-up exam. An empty list uses
// the weaknesses found by the previous exam's analysis.
type RetryRequest struct {
	WeakTopics []string `json:"weak_topics"`
}

// QuestionResponse is one exam question.
type QuestionResponse struct {
	ID           string   `json:"id"`
	Text         string   `json:"text"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correct_index"`
	Explanation  string   `json:"explanation"`
	Topic        string   `json:"topic"`
}

// AnalysisResponse is the performance summary of a submitted exam.
type AnalysisResponse struct {
	Summary       string   `json:"summary"`
	Strengths     []string `json:"strengths"`
	Weaknesses    []string `json:"weaknesses"`
	ReadingAdvice string   `json:"reading_advice"`
}

// ExamResponse is an exam with its questions and, once submitted, results.
// Reference file payloads are never echoed back.
type ExamResponse struct {
	ID                     uuid.UUID          `json:"id"`
	Grade                  string             `json:"grade"`
	Language               string             `json:"language"`
	QuestionCount          int                `json:"question_count"`
	FileNames              []string           `json:"file_names"`
	Questions              []QuestionResponse `json:"questions"`
	Answers                []*int             `json:"answers,omitempty"`
	Score                  *int               `json:"score,omitempty"`
	Analysis               *AnalysisResponse  `json:"analysis,omitempty"`
	WeakTopicsFromPrevious []string           `json:"weak_topics_from_previous,omitempty"`
	CreatedAt              time.Time          `json:"created_at"`
	UpdatedAt              time.Time          `json:"updated_at"`
}

// ExamSummaryResponse is one entry of the exam history.
type ExamSummaryResponse struct {
	ID            uuid.UUID `json:"id"`
	Grade         string    `json:"grade"`
	Language      string    `json:"language"`
	QuestionCount int       `json:"question_count"`
	Answered      bool      `json:"answered"`
	Score         *int      `json:"score,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// ExamListResponse wraps the exam history.
type ExamListResponse struct {
	Exams []ExamSummaryResponse `json:"exams"`
}

func userToResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		AvatarURL: u.AvatarURL,
		CreatedAt: u.CreatedAt,
	}
}

func (req CreateExamRequest) params() domain.ExamParams {
	files := make([]domain.ReferenceFile, len(req.Files))
	for i, f := range req.Files {
		files[i] = domain.ReferenceFile{Name: f.Name, Data: f.Data, MimeType: f.MimeType}
	}
	return domain.ExamParams{
		Files:      files,
		Grade:      domain.Grade(req.Grade),
		Language:   domain.Language(req.Language),
		Count:      req.Count,
		WeakTopics: req.WeakTopics,
	}
}

func examToResponse(s *domain.ExamSession) ExamResponse {
	resp := ExamResponse{
		ID:                     s.ID,
		Grade:                  string(s.Grade),
		Language:               string(s.Language),
		QuestionCount:          s.QuestionCount,
		FileNames:              make([]string, 0, len(s.Files)),
		Questions:              make([]QuestionResponse, 0, len(s.Questions)),
		Answers:                s.Answers,
		WeakTopicsFromPrevious: s.WeakTopicsFromPrevious,
		CreatedAt:              s.CreatedAt,
		UpdatedAt:              s.UpdatedAt,
	}
	for _, f := range s.Files {
		resp.FileNames = append(resp.FileNames, f.Name)
	}
	for _, q := range s.Questions {
		resp.Questions = append(resp.Questions, QuestionResponse{
			ID:           q.ID,
			Text:         q.Text,
			Options:      q.Options,
			CorrectIndex: q.CorrectIndex,
			Explanation:  q.Explanation,
			Topic:        q.Topic,
		})
	}
	if s.Answers != nil {
		score := s.Score
		resp.Score = &score
	}
	if s.Analysis != nil {
		resp.Analysis = &AnalysisResponse{
			Summary:       s.Analysis.Summary,
			Strengths:     s.Analysis.Strengths,
			Weaknesses:    s.Analysis.Weaknesses,
			ReadingAdvice: s.Analysis.ReadingAdvice,
		}
	}
	return resp
}

func summaryToResponse(s store.ExamSessionSummary) ExamSummaryResponse {
	resp := ExamSummaryResponse{
		ID:            s.ID,
		Grade:         string(s.Grade),
		Language:      string(s.Language),
		QuestionCount: s.QuestionCount,
		Answered:      s.Answered,
		CreatedAt:     s.CreatedAt,
	}
	if s.Answered {
		score := s.Score
		resp.Score = &score
	}
	return resp
}
