package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/phrazzld/questup-api/internal/credential"
	"github.com/phrazzld/questup-api/internal/generation"
	"github.com/phrazzld/questup-api/internal/platform/logger"
	"github.com/phrazzld/questup-api/internal/redact"
	"google.golang.org/genai"
)

// ContentGenerator is the part of the genai client the transport uses.
// *genai.Models satisfies it.
type ContentGenerator interface {
	GenerateContent(
		ctx context.Context,
		model string,
		contents []*genai.Content,
		config *genai.GenerateContentConfig,
	) (*genai.GenerateContentResponse, error)
}

// ClientFactory creates an endpoint client bound to one credential.
type ClientFactory func(ctx context.Context, cred credential.Credential) (ContentGenerator, error)

// NewClientFactory returns the factory for real genai clients. An empty
// baseURL uses the public endpoint.
func NewClientFactory(baseURL string) ClientFactory {
	return func(ctx context.Context, cred credential.Credential) (ContentGenerator, error) {
		cfg := &genai.ClientConfig{
			APIKey:  cred.Value(),
			Backend: genai.BackendGeminiAPI,
		}
		if baseURL != "" {
			cfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
		}

		client, err := genai.NewClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return client.Models, nil
	}
}

// Transport performs single endpoint attempts. Every attempt resolves the
// credential again and builds a new client with it, so a key selected
// between attempts takes effect on the next one.
type Transport struct {
	credentials credential.Provider
	newClient   ClientFactory
	model       string
}

// NewTransport creates a Transport.
func NewTransport(credentials credential.Provider, newClient ClientFactory, model string) (*Transport, error) {
	if credentials == nil {
		return nil, fmt.Errorf("%w: credential provider cannot be nil", generation.ErrInvalidConfig)
	}
	if newClient == nil {
		return nil, fmt.Errorf("%w: client factory cannot be nil", generation.ErrInvalidConfig)
	}
	if model == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}
	return &Transport{credentials: credentials, newClient: newClient, model: model}, nil
}

// Call performs one attempt and returns the response text. Endpoint
// failures come back classified, see Classify.
func (t *Transport) Call(
	ctx context.Context,
	contents []*genai.Content,
	config *genai.GenerateContentConfig,
) (string, error) {
	log := logger.FromContext(ctx)

	cred, err := t.credentials.Resolve(ctx)
	if err != nil {
		return "", err
	}

	client, err := t.newClient(ctx, cred)
	if err != nil {
		return "", fmt.Errorf("%w: failed to create endpoint client: %s",
			generation.ErrInvalidConfig, redact.Error(err))
	}

	resp, err := client.GenerateContent(ctx, t.model, contents, config)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return "", ctxErr
		}
		classified := Classify(err)
		log.DebugContext(ctx, "endpoint call failed",
			slog.String("model", t.model),
			slog.String("kind", generation.KindOf(classified).String()),
			redact.ErrorAttr(err))
		return "", classified
	}

	return responseText(resp)
}

// responseText extracts the text of the first candidate, skipping thought parts.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", malformed("nil response")
	}
	if fb := resp.PromptFeedback; fb != nil && fb.BlockReason != "" && fb.BlockReason != genai.BlockedReasonUnspecified {
		return "", &generation.CallError{
			Kind: generation.KindBlocked,
			Err:  fmt.Errorf("prompt blocked: %s", fb.BlockReason),
		}
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return "", malformed("no candidates in response")
	}

	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety {
		return "", &generation.CallError{
			Kind: generation.KindBlocked,
			Err:  errors.New("response blocked by safety filters"),
		}
	}
	if candidate.Content == nil {
		return "", malformed("empty content in response")
	}

	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		sb.WriteString(part.Text)
	}

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", malformed("response contains no text")
	}
	return text, nil
}

func malformed(reason string) error {
	return &generation.CallError{Kind: generation.KindMalformed, Err: errors.New(reason)}
}
