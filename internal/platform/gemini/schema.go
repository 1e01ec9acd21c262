package gemini

import (
	"github.com/phrazzld/questup-api/internal/domain"
	"google.golang.org/genai"
)

// QuestionListSchema is the response schema for exam generation: an array of
// question objects, each with all five fields required and exactly four options.
func QuestionListSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeArray,
		Items: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"text": {Type: genai.TypeString},
				"options": {
					Type:     genai.TypeArray,
					Items:    &genai.Schema{Type: genai.TypeString},
					MinItems: genai.Ptr[int64](domain.OptionCount),
					MaxItems: genai.Ptr[int64](domain.OptionCount),
				},
				"correctIndex": {Type: genai.TypeInteger},
				"explanation":  {Type: genai.TypeString},
				"topic":        {Type: genai.TypeString},
			},
			Required:         []string{"text", "options", "correctIndex", "explanation", "topic"},
			PropertyOrdering: []string{"text", "options", "correctIndex", "explanation", "topic"},
		},
	}
}

// AnalysisSchema is the response schema for result analysis.
func AnalysisSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"summary":       {Type: genai.TypeString},
			"strengths":     {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
			"weaknesses":    {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
			"readingAdvice": {Type: genai.TypeString},
		},
		Required:         []string{"summary", "strengths", "weaknesses", "readingAdvice"},
		PropertyOrdering: []string{"summary", "strengths", "weaknesses", "readingAdvice"},
	}
}
