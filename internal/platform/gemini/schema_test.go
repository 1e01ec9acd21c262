package gemini

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestQuestionListSchema(t *testing.T) {
	s := QuestionListSchema()

	assert.Equal(t, genai.TypeArray, s.Type)
	require.NotNil(t, s.Items)
	assert.Equal(t, genai.TypeObject, s.Items.Type)
	assert.ElementsMatch(t, []string{"text", "options", "correctIndex", "explanation", "topic"}, s.Items.Required)

	options := s.Items.Properties["options"]
	require.NotNil(t, options)
	assert.Equal(t, int64(4), *options.MinItems)
	assert.Equal(t, int64(4), *options.MaxItems)
	assert.Equal(t, genai.TypeInteger, s.Items.Properties["correctIndex"].Type)
}

func TestAnalysisSchema(t *testing.T) {
	s := AnalysisSchema()

	assert.Equal(t, genai.TypeObject, s.Type)
	assert.ElementsMatch(t, []string{"summary", "strengths", "weaknesses", "readingAdvice"}, s.Required)
	assert.Equal(t, genai.TypeArray, s.Properties["weaknesses"].Type)
}

func TestResponseText(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{
				{Text: "thinking...", Thought: true},
				{Text: `[{"text":`},
				{Text: `"a"}]`},
			}},
		}},
	}

	text, err := responseText(resp)
	require.NoError(t, err)
	assert.Equal(t, `[{"text":"a"}]`, text)

	_, err = responseText(&genai.GenerateContentResponse{})
	assert.Error(t, err)

	_, err = responseText(&genai.GenerateContentResponse{
		PromptFeedback: &genai.GenerateContentResponsePromptFeedback{BlockReason: genai.BlockedReasonSafety},
	})
	assert.Error(t, err)
}
