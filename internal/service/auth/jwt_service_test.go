package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/questup-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-that-is-long-enough-for-testing"

func TestGenerateAndValidateToken(t *testing.T) {
	t.Parallel()

	fixedTime := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	svc := newHMACJWTService(testSecret, time.Hour, func() time.Time { return fixedTime })
	userID := uuid.New()

	token, err := svc.GenerateToken(context.Background(), userID)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, userID.String(), claims.Subject)
	assert.Equal(t, fixedTime.Unix(), claims.IssuedAt.Unix())
	assert.Equal(t, fixedTime.Add(time.Hour).Unix(), claims.ExpiresAt.Unix())
	assert.NotEmpty(t, claims.ID)
}

func TestValidateToken(t *testing.T) {
	t.Parallel()

	fixedTime := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	userID := uuid.New()
	issuer := newHMACJWTService(testSecret, time.Hour, func() time.Time { return fixedTime })
	token, err := issuer.GenerateToken(context.Background(), userID)
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		secret  string
		now     time.Time
		wantErr error
	}{
		{name: "valid within lifetime", token: token, secret: testSecret, now: fixedTime.Add(30 * time.Minute)},
		{name: "valid within clock skew", token: token, secret: testSecret, now: fixedTime.Add(time.Hour + time.Minute)},
		{name: "expired", token: token, secret: testSecret, now: fixedTime.Add(2 * time.Hour), wantErr: ErrExpiredToken},
		{name: "not yet valid", token: token, secret: testSecret, now: fixedTime.Add(-time.Hour), wantErr: ErrTokenNotYetValid},
		{name: "wrong secret", token: token, secret: "wrong-secret-that-is-long-enough-for-testing", now: fixedTime, wantErr: ErrInvalidToken},
		{name: "malformed", token: "not.a.token", secret: testSecret, now: fixedTime, wantErr: ErrInvalidToken},
		{name: "empty", token: "", secret: testSecret, now: fixedTime, wantErr: ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			now := tt.now
			svc := newHMACJWTService(tt.secret, time.Hour, func() time.Time { return now })

			claims, err := svc.ValidateToken(context.Background(), tt.token)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, claims)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, userID, claims.UserID)
		})
	}
}

func TestNewJWTService(t *testing.T) {
	t.Parallel()

	_, err := NewJWTService(config.AuthConfig{JWTSecret: "short", TokenLifetimeMinutes: 60})
	assert.Error(t, err)

	_, err = NewJWTService(config.AuthConfig{JWTSecret: testSecret, TokenLifetimeMinutes: 0})
	assert.Error(t, err)

	svc, err := NewJWTService(config.AuthConfig{JWTSecret: testSecret, TokenLifetimeMinutes: 60})
	require.NoError(t, err)
	assert.NotNil(t, svc)
}
