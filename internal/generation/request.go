package generation

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"text/template"

	"github.com/phrazzld/questup-api/internal/domain"
)

// InlinePart is a reference file prepared for transport: the raw base64
// payload without its data URI scheme, plus the declared mime type.
type InlinePart struct {
	Name     string
	MimeType string
	Data     string
}

// Bytes decodes the payload.
func (p InlinePart) Bytes() ([]byte, error) {
	return base64.StdEncoding.DecodeString(p.Data)
}

// ExamRequest is a validated question generation request.
type ExamRequest struct {
	Parts      []InlinePart
	Prompt     string
	Grade      domain.Grade
	Language   domain.Language
	Count      int
	WeakTopics []string
}

// AnswerRecord is one line of the answer history sent for analysis.
type AnswerRecord struct {
	Topic   string `json:"topic"`
	Correct bool   `json:"correct"`
}

// AnalysisRequest is a validated result analysis request.
type AnalysisRequest struct {
	History []AnswerRecord
	Prompt  string
}

// Builder assembles generation requests from caller parameters.
type Builder struct {
	examTemplate     *template.Template
	analysisTemplate *template.Template
}

// NewBuilder creates a Builder. An empty templatePath selects the embedded
// exam prompt; otherwise the exam prompt template is read from that file.
func NewBuilder(templatePath string) (*Builder, error) {
	examTmpl, err := loadTemplate("exam.tmpl", templatePath)
	if err != nil {
		return nil, err
	}

	analysisTmpl, err := loadTemplate("analysis.tmpl", "")
	if err != nil {
		return nil, err
	}

	return &Builder{examTemplate: examTmpl, analysisTemplate: analysisTmpl}, nil
}

// BuildExamRequest validates params and assembles the generation request.
// Every failure is a *domain.ValidationError and happens before any network call.
func (b *Builder) BuildExamRequest(params domain.ExamParams) (*ExamRequest, error) {
	if len(params.Files) == 0 {
		return nil, domain.NewValidationError("files", "must contain at least one reference file", nil)
	}
	if !params.Grade.Valid() {
		return nil, domain.NewValidationError("grade", fmt.Sprintf("%q is not a supported grade", params.Grade), nil)
	}
	if !params.Language.Valid() {
		return nil, domain.NewValidationError("language", fmt.Sprintf("%q is not a supported language", params.Language), nil)
	}
	if params.Count < domain.MinQuestionCount || params.Count > domain.MaxQuestionCount {
		return nil, domain.NewValidationError("count",
			fmt.Sprintf("must be between %d and %d, got %d", domain.MinQuestionCount, domain.MaxQuestionCount, params.Count), nil)
	}

	parts := make([]InlinePart, 0, len(params.Files))
	for i, f := range params.Files {
		part, err := inlinePart(f)
		if err != nil {
			return nil, domain.NewValidationError(fmt.Sprintf("files[%d]", i), err.Error(), nil)
		}
		parts = append(parts, part)
	}

	weakTopics := domain.CleanTopics(params.WeakTopics)
	prompt, err := render(b.examTemplate, examPromptData{
		Grade:           string(params.Grade),
		Language:        string(params.Language),
		Count:           params.Count,
		Directive:       directiveFor(weakTopics),
		ExplanationRule: ExplanationRule,
	})
	if err != nil {
		return nil, err
	}
	if !strings.Contains(prompt, ExplanationRule) {
		prompt += "\n- " + ExplanationRule
	}

	return &ExamRequest{
		Parts:      parts,
		Prompt:     prompt,
		Grade:      params.Grade,
		Language:   params.Language,
		Count:      params.Count,
		WeakTopics: weakTopics,
	}, nil
}

// BuildAnalysisRequest assembles the analysis request from the questions and
// the learner's answers. answers must hold one entry per question; nil
// entries are unanswered questions.
func (b *Builder) BuildAnalysisRequest(questions []domain.Question, answers []*int) (*AnalysisRequest, error) {
	if len(questions) == 0 {
		return nil, domain.NewValidationError("questions", "must not be empty", nil)
	}
	if len(answers) != len(questions) {
		return nil, domain.NewValidationError("answers",
			fmt.Sprintf("expected %d answers, got %d", len(questions), len(answers)), domain.ErrAnswerCount)
	}

	history := make([]AnswerRecord, len(questions))
	for i, q := range questions {
		history[i] = AnswerRecord{Topic: q.Topic, Correct: q.IsCorrect(answers[i])}
	}

	historyJSON, err := json.Marshal(history)
	if err != nil {
		return nil, fmt.Errorf("failed to encode answer history: %w", err)
	}

	prompt, err := render(b.analysisTemplate, analysisPromptData{History: string(historyJSON)})
	if err != nil {
		return nil, err
	}

	return &AnalysisRequest{History: history, Prompt: prompt}, nil
}

// inlinePart strips the data URI scheme from a reference file and checks
// that the remaining payload is valid base64.
func inlinePart(f domain.ReferenceFile) (InlinePart, error) {
	payload := strings.TrimSpace(f.Data)
	mimeType := strings.TrimSpace(f.MimeType)

	if strings.HasPrefix(payload, "data:") {
		header, data, found := strings.Cut(strings.TrimPrefix(payload, "data:"), ",")
		if !found {
			return InlinePart{}, errors.New("has a data URI without payload")
		}
		if mimeType == "" {
			mimeType, _, _ = strings.Cut(header, ";")
		}
		payload = data
	}

	if payload == "" {
		return InlinePart{}, errors.New("has an empty payload")
	}
	if mimeType == "" {
		return InlinePart{}, errors.New("has no mime type")
	}
	if _, err := base64.StdEncoding.DecodeString(payload); err != nil {
		return InlinePart{}, errors.New("is not valid base64")
	}

	return InlinePart{Name: f.Name, MimeType: mimeType, Data: payload}, nil
}
