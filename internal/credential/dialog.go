package credential

import (
	"context"
	"fmt"
	"strings"
)

// KeySelector is an interactive key selection capability.
type KeySelector interface {
	// HasSelectedKey reports whether a key has already been selected.
	HasSelectedKey(ctx context.Context) (bool, error)

	// OpenSelectKey opens the selection dialog and returns once the
	// interaction is over. Its return carries no success signal; the caller
	// reads the outcome with SelectedKey.
	OpenSelectKey(ctx context.Context) error

	// SelectedKey returns the currently selected key, empty if none.
	SelectedKey(ctx context.Context) (string, error)
}

// DialogProvider resolves the key selected through a KeySelector,
// opening the selection dialog first when nothing is selected yet.
type DialogProvider struct {
	selector KeySelector
}

// NewDialogProvider creates a provider backed by selector.
func NewDialogProvider(selector KeySelector) *DialogProvider {
	return &DialogProvider{selector: selector}
}

// Resolve implements Provider.
func (p *DialogProvider) Resolve(ctx context.Context) (Credential, error) {
	if p.selector == nil {
		return "", ErrNoCredential
	}

	selected, err := p.selector.HasSelectedKey(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to query key selection: %w", err)
	}

	if !selected {
		if err := p.selector.OpenSelectKey(ctx); err != nil {
			return "", fmt.Errorf("key selection dialog failed: %w", err)
		}
	}

	key, err := p.selector.SelectedKey(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to read selected key: %w", err)
	}
	if !Usable(key) {
		return "", ErrNoCredential
	}
	return Credential(strings.TrimSpace(key)), nil
}
