package domain

import "unicode"

// OptionCount is the number of answer options every question carries.
const OptionCount = 4

// Question is a single multiple-choice exam question.
//
// CorrectIndex is expected to index into Options. Values outside that range
// are kept as returned by the generative endpoint; use HasValidAnswer to check.
type Question struct {
	ID           string   `json:"id"`
	Text         string   `json:"text"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correctIndex"`
	Explanation  string   `json:"explanation"`
	Topic        string   `json:"topic"`
}

// HasValidAnswer reports whether CorrectIndex points at one of the options.
func (q Question) HasValidAnswer() bool {
	return q.CorrectIndex >= 0 && q.CorrectIndex < len(q.Options)
}

// IsCorrect reports whether answer selects the correct option.
// A nil answer (unanswered question) is never correct.
func (q Question) IsCorrect(answer *int) bool {
	return answer != nil && *answer == q.CorrectIndex
}

// ExplainedInThai reports whether both explanation and topic contain Thai script.
func (q Question) ExplainedInThai() bool {
	return containsThai(q.Explanation) && containsThai(q.Topic)
}

func containsThai(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Thai, r) {
			return true
		}
	}
	return false
}

// AnalysisResult summarizes a learner's performance on one exam.
type AnalysisResult struct {
	Summary       string   `json:"summary"`
	Strengths     []string `json:"strengths"`
	Weaknesses    []string `json:"weaknesses"`
	ReadingAdvice string   `json:"readingAdvice"`
}
