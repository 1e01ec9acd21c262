package generation

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"strings"
	"text/template"
)

//go:embed prompts/*.tmpl
var promptFS embed.FS

// ExplanationRule is the fixed instruction that explanations and topics are
// always written in Thai, whatever the exam language. It is part of every
// exam prompt, including prompts rendered from an override template.
const ExplanationRule = "explanation และ topic ต้องเขียนเป็นภาษาไทยเสมอ ไม่ว่าโจทย์จะเป็นภาษาใด"

// Targeting directives.
const (
	generalDirective    = "สร้างข้อสอบเก็งแนวสำหรับนักเรียนรายบุคคล โดยใช้เนื้อหาจากไฟล์แนบโดยรวม"
	weakTopicsDirective = "เน้นประเด็นที่นักเรียนยังไม่เข้าใจ (Weak topics): "
)

// examPromptData is the data passed to the exam prompt template.
type examPromptData struct {
	Grade           string
	Language        string
	Count           int
	Directive       string
	ExplanationRule string
}

// analysisPromptData is the data passed to the analysis prompt template.
type analysisPromptData struct {
	History string
}

// loadTemplate parses the template at path, or the embedded default when path is empty.
func loadTemplate(name, path string) (*template.Template, error) {
	if path == "" {
		return template.New(name).ParseFS(promptFS, "prompts/"+name)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read prompt template from %s: %v",
			ErrInvalidConfig, path, err)
	}

	tmpl, err := template.New(name).Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse prompt template: %v", ErrInvalidConfig, err)
	}
	return tmpl, nil
}

func render(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute prompt template %s: %w", tmpl.Name(), err)
	}
	return strings.TrimSpace(buf.String()), nil
}

func directiveFor(weakTopics []string) string {
	if len(weakTopics) == 0 {
		return generalDirective
	}
	return weakTopicsDirective + strings.Join(weakTopics, ", ")
}
