package generation

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/questup-api/internal/domain"
)

// questionRecord is one question as returned by the endpoint.
type questionRecord struct {
	Text         string   `json:"text"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correctIndex"`
	Explanation  string   `json:"explanation"`
	Topic        string   `json:"topic"`
}

// Normalizer turns endpoint text into domain entities.
type Normalizer struct {
	// Now returns the batch timestamp. Nil means time.Now.
	Now func() time.Time

	// Suffix returns the per-batch disambiguator. Nil means a random one.
	Suffix func() string
}

// Questions parses raw as a JSON array of questions and assigns each one an
// identifier of the form q-<unix millis>-<index>-<batch suffix>. Fields are
// passed through verbatim; an out-of-range correctIndex is kept as is.
// Anything that does not parse fails with ErrMalformedResponse and yields
// no questions.
func (n Normalizer) Questions(raw string) ([]domain.Question, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("%w: empty payload", ErrMalformedResponse)
	}

	var records []questionRecord
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		return nil, fmt.Errorf("%w: failed to parse question list: %v", ErrMalformedResponse, err)
	}

	now := time.Now
	if n.Now != nil {
		now = n.Now
	}
	suffix := randomSuffix
	if n.Suffix != nil {
		suffix = n.Suffix
	}

	millis := now().UnixMilli()
	batch := suffix()

	questions := make([]domain.Question, len(records))
	for i, r := range records {
		questions[i] = domain.Question{
			ID:           fmt.Sprintf("q-%d-%d-%s", millis, i, batch),
			Text:         r.Text,
			Options:      r.Options,
			CorrectIndex: r.CorrectIndex,
			Explanation:  r.Explanation,
			Topic:        r.Topic,
		}
	}
	return questions, nil
}

// Analysis parses raw as a single analysis object.
func (n Normalizer) Analysis(raw string) (*domain.AnalysisResult, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("%w: empty payload", ErrMalformedResponse)
	}

	var result domain.AnalysisResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, fmt.Errorf("%w: failed to parse analysis: %v", ErrMalformedResponse, err)
	}
	return &result, nil
}

func randomSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}
