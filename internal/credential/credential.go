package credential

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/phrazzld/questup-api/internal/generation"
	"github.com/phrazzld/questup-api/internal/platform/logger"
	"github.com/phrazzld/questup-api/internal/redact"
)

// ErrNoCredential is returned by a Provider that has nothing to offer.
// Chain moves on to the next provider when it sees it.
var ErrNoCredential = errors.New("no credential from this source")

// Credential is an opaque access key. It prints redacted.
type Credential string

// String implements fmt.Stringer without revealing the key.
func (c Credential) String() string {
	if c == "" {
		return ""
	}
	return "[REDACTED_KEY]"
}

// LogValue implements slog.LogValuer without revealing the key.
func (c Credential) LogValue() slog.Value {
	return slog.StringValue(c.String())
}

// Value returns the raw key for handing to the endpoint client.
func (c Credential) Value() string {
	return string(c)
}

// Usable reports whether a raw value can serve as a credential: non-empty
// after trimming and not a stringified missing value.
func Usable(value string) bool {
	v := strings.TrimSpace(value)
	return v != "" && v != "undefined" && v != "null"
}

// Provider resolves a credential from one source.
type Provider interface {
	// Resolve returns the credential, or ErrNoCredential if this source has none.
	Resolve(ctx context.Context) (Credential, error)
}

// StaticProvider serves a fixed, externally configured value.
type StaticProvider struct {
	value string
}

// NewStaticProvider creates a provider for a configured key. An empty value
// is allowed; the provider then reports ErrNoCredential.
func NewStaticProvider(value string) *StaticProvider {
	return &StaticProvider{value: value}
}

// Resolve implements Provider.
func (p *StaticProvider) Resolve(ctx context.Context) (Credential, error) {
	if !Usable(p.value) {
		return "", ErrNoCredential
	}
	return Credential(strings.TrimSpace(p.value)), nil
}

// Chain tries providers in order; the first usable credential wins.
type Chain []Provider

// NewChain creates a Chain from providers, skipping nil entries.
func NewChain(providers ...Provider) Chain {
	chain := make(Chain, 0, len(providers))
	for _, p := range providers {
		if p != nil {
			chain = append(chain, p)
		}
	}
	return chain
}

// Resolve implements Provider. It fails with generation.ErrAuthMissing when
// no provider yields a credential. Context cancellation is returned as is.
func (c Chain) Resolve(ctx context.Context) (Credential, error) {
	log := logger.FromContext(ctx)

	for i, p := range c {
		cred, err := p.Resolve(ctx)
		if err == nil && Usable(string(cred)) {
			return cred, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		if err != nil && !errors.Is(err, ErrNoCredential) {
			log.WarnContext(ctx, "credential provider failed",
				slog.Int("provider_index", i),
				slog.String("provider", fmt.Sprintf("%T", p)),
				redact.ErrorAttr(err))
		}
	}

	return "", fmt.Errorf("%w: tried %d sources", generation.ErrAuthMissing, len(c))
}
