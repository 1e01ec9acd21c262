package domain

import "strings"

// Grade is a Thai school grade level: G1-G6 primary, M1-M6 secondary.
type Grade string

// Supported grades.
const (
	GradeG1 Grade = "G1"
	GradeG2 Grade = "G2"
	GradeG3 Grade = "G3"
	GradeG4 Grade = "G4"
	GradeG5 Grade = "G5"
	GradeG6 Grade = "G6"
	GradeM1 Grade = "M1"
	GradeM2 Grade = "M2"
	GradeM3 Grade = "M3"
	GradeM4 Grade = "M4"
	GradeM5 Grade = "M5"
	GradeM6 Grade = "M6"
)

// Valid reports whether g is one of the supported grades.
func (g Grade) Valid() bool {
	switch g {
	case GradeG1, GradeG2, GradeG3, GradeG4, GradeG5, GradeG6,
		GradeM1, GradeM2, GradeM3, GradeM4, GradeM5, GradeM6:
		return true
	default:
		return false
	}
}

// Language is the language questions and options are written in.
type Language string

// Supported exam languages.
const (
	LanguageThai    Language = "Thai"
	LanguageEnglish Language = "English"
)

// Valid reports whether l is a supported exam language.
func (l Language) Valid() bool {
	return l == LanguageThai || l == LanguageEnglish
}

// Question count bounds for a single exam.
const (
	MinQuestionCount = 1
	MaxQuestionCount = 50
)

// ReferenceFile is an uploaded document the questions are generated from.
// Data is a base64 data URI ("data:application/pdf;base64,....") or a raw
// base64 payload.
type ReferenceFile struct {
	Name     string `json:"name"`
	Data     string `json:"data"`
	MimeType string `json:"mime_type"`
}

// ExamParams are the caller-supplied parameters of one generation call.
type ExamParams struct {
	Files      []ReferenceFile
	Grade      Grade
	Language   Language
	Count      int
	WeakTopics []string
}

// CleanTopics trims topics and drops blank and duplicate entries,
// preserving the original order.
func CleanTopics(topics []string) []string {
	if len(topics) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(topics))
	out := make([]string, 0, len(topics))
	for _, t := range topics {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}

	if len(out) == 0 {
		return nil
	}
	return out
}
