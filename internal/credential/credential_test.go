package credential_test

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/phrazzld/questup-api/internal/credential"
	"github.com/phrazzld/questup-api/internal/generation"
	"github.com/phrazzld/questup-api/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// mockSelector is a testify mock of credential.KeySelector.
type mockSelector struct {
	mock.Mock
}

func (m *mockSelector) HasSelectedKey(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

func (m *mockSelector) OpenSelectKey(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockSelector) SelectedKey(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

type failingProvider struct{ err error }

func (p failingProvider) Resolve(context.Context) (credential.Credential, error) {
	return "", p.err
}

func TestUsable(t *testing.T) {
	t.Parallel()

	assert.True(t, credential.Usable("AIza-test"))
	assert.False(t, credential.Usable(""))
	assert.False(t, credential.Usable("   "))
	assert.False(t, credential.Usable("undefined"))
	assert.False(t, credential.Usable("null"))
}

func TestCredentialDoesNotPrintKey(t *testing.T) {
	t.Parallel()

	cred := credential.Credential("AIzaSecretValue")
	assert.NotContains(t, fmt.Sprintf("%v %s", cred, cred), "AIzaSecretValue")
	assert.NotContains(t, cred.LogValue().String(), "AIzaSecretValue")
	assert.Equal(t, "AIzaSecretValue", cred.Value())

	var sb strings.Builder
	slog.New(slog.NewTextHandler(&sb, nil)).Info("resolved", "credential", cred)
	assert.NotContains(t, sb.String(), "AIzaSecretValue")
}

func TestStaticProvider(t *testing.T) {
	t.Parallel()

	cred, err := credential.NewStaticProvider(" env-key ").Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "env-key", cred.Value())

	for _, v := range []string{"", "undefined"} {
		_, err := credential.NewStaticProvider(v).Resolve(context.Background())
		assert.ErrorIs(t, err, credential.ErrNoCredential, "value %q", v)
	}
}

func TestChainPrefersStaticValue(t *testing.T) {
	t.Parallel()

	selector := &mockSelector{}
	chain := credential.NewChain(
		credential.NewStaticProvider("env-key"),
		credential.NewDialogProvider(selector),
	)

	cred, err := chain.Resolve(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "env-key", cred.Value())
	selector.AssertNotCalled(t, "HasSelectedKey", mock.Anything)
}

func TestChainFallsBackToDialog(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	selector := &mockSelector{}
	selector.On("HasSelectedKey", ctx).Return(false, nil).Once()
	selector.On("OpenSelectKey", ctx).Return(nil).Once()
	selector.On("SelectedKey", ctx).Return("dialog-key", nil).Once()

	chain := credential.NewChain(
		credential.NewStaticProvider(""),
		credential.NewDialogProvider(selector),
	)

	cred, err := chain.Resolve(ctx)

	require.NoError(t, err)
	assert.Equal(t, "dialog-key", cred.Value())
	selector.AssertExpectations(t)
}

func TestDialogProviderSkipsDialogWhenAlreadySelected(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	selector := &mockSelector{}
	selector.On("HasSelectedKey", ctx).Return(true, nil).Once()
	selector.On("SelectedKey", ctx).Return("chosen", nil).Once()

	cred, err := credential.NewDialogProvider(selector).Resolve(ctx)

	require.NoError(t, err)
	assert.Equal(t, "chosen", cred.Value())
	selector.AssertNotCalled(t, "OpenSelectKey", mock.Anything)
}

func TestDialogProviderIgnoresDialogReturnValue(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	selector := &mockSelector{}
	selector.On("HasSelectedKey", ctx).Return(false, nil)
	selector.On("OpenSelectKey", ctx).Return(nil)
	selector.On("SelectedKey", ctx).Return("undefined", nil)

	_, err := credential.NewDialogProvider(selector).Resolve(ctx)

	assert.ErrorIs(t, err, credential.ErrNoCredential)
}

func TestChainFailsWithAuthMissing(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	selector := &mockSelector{}
	selector.On("HasSelectedKey", ctx).Return(false, errors.New("dialog unavailable"))

	chain := credential.NewChain(
		credential.NewStaticProvider("undefined"),
		nil,
		credential.NewDialogProvider(selector),
		failingProvider{err: errors.New("boom")},
	)

	_, err := chain.Resolve(ctx)

	require.Error(t, err)
	assert.ErrorIs(t, err, generation.ErrAuthMissing)
}

func TestChainReturnsContextError(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	chain := credential.NewChain(failingProvider{err: context.Canceled})
	_, err := chain.Resolve(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, generation.ErrAuthMissing)
}

func TestChainRedactsProviderFailures(t *testing.T) {
	t.Parallel()

	var logs strings.Builder
	ctx := logger.WithLogger(context.Background(), slog.New(slog.NewJSONHandler(&logs, nil)))

	leaked := "AIzaSyA1234567890abcdefghijklmnop"
	chain := credential.NewChain(failingProvider{err: fmt.Errorf("rejected input %q", leaked)})

	_, err := chain.Resolve(ctx)

	assert.ErrorIs(t, err, generation.ErrAuthMissing)
	assert.Contains(t, logs.String(), "credential provider failed")
	assert.NotContains(t, logs.String(), leaked)
}
