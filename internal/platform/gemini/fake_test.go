package gemini_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/phrazzld/questup-api/internal/config"
	"github.com/phrazzld/questup-api/internal/credential"
	"github.com/phrazzld/questup-api/internal/platform/gemini"
	"google.golang.org/genai"
)

// recordedCall is one GenerateContent invocation seen by fakeEndpoint.
type recordedCall struct {
	key      string
	model    string
	contents []*genai.Content
	config   *genai.GenerateContentConfig
}

type reply struct {
	resp *genai.GenerateContentResponse
	err  error
}

// fakeEndpoint serves scripted replies and records every client it hands out.
type fakeEndpoint struct {
	mu      sync.Mutex
	replies []reply
	calls   []recordedCall
	clients int
}

func (f *fakeEndpoint) factory(ctx context.Context, cred credential.Credential) (gemini.ContentGenerator, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clients++
	return &fakeClient{endpoint: f, key: cred.Value()}, nil
}

func (f *fakeEndpoint) script(replies ...reply) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies = append(f.replies, replies...)
}

type fakeClient struct {
	endpoint *fakeEndpoint
	key      string
}

func (c *fakeClient) GenerateContent(
	ctx context.Context,
	model string,
	contents []*genai.Content,
	config *genai.GenerateContentConfig,
) (*genai.GenerateContentResponse, error) {
	f := c.endpoint
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, recordedCall{key: c.key, model: model, contents: contents, config: config})
	if len(f.replies) == 0 {
		return nil, fmt.Errorf("unexpected call %d", len(f.calls))
	}
	r := f.replies[0]
	f.replies = f.replies[1:]
	return r.resp, r.err
}

// sleepRecorder replaces the backoff sleep.
type sleepRecorder struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (s *sleepRecorder) sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delays = append(s.delays, d)
	return ctx.Err()
}

// rotatingProvider hands out a different key on every resolution.
type rotatingProvider struct {
	mu    sync.Mutex
	count int
}

func (p *rotatingProvider) Resolve(ctx context.Context) (credential.Credential, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.count++
	return credential.Credential(fmt.Sprintf("key-%d", p.count)), nil
}

func ok(text string) reply {
	return reply{resp: textResponse(text)}
}

func fail(code int, status, message string) reply {
	return reply{err: genai.APIError{Code: code, Status: status, Message: message}}
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content:      &genai.Content{Parts: []*genai.Part{{Text: text}}},
			FinishReason: genai.FinishReasonStop,
		}},
	}
}

func questionsJSON(n int) string {
	type q struct {
		Text         string   `json:"text"`
		Options      []string `json:"options"`
		CorrectIndex int      `json:"correctIndex"`
		Explanation  string   `json:"explanation"`
		Topic        string   `json:"topic"`
	}
	out := make([]q, n)
	for i := range out {
		out[i] = q{
			Text:         fmt.Sprintf("Question %d?", i+1),
			Options:      []string{"A", "B", "C", "D"},
			CorrectIndex: i % 4,
			Explanation:  "คำอธิบายข้อ " + fmt.Sprint(i+1),
			Topic:        "พีชคณิต",
		}
	}
	b, _ := json.Marshal(out)
	return string(b)
}

func testLLMConfig() config.LLMConfig {
	return config.LLMConfig{
		ModelName:        "gemini-3-pro-preview",
		MaxRetries:       3,
		RetryBaseDelayMS: 2000,
		ThinkingBudget:   10000,
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
