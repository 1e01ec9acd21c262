package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/questup-api/internal/domain"
	"github.com/phrazzld/questup-api/internal/platform/logger"
	"github.com/phrazzld/questup-api/internal/redact"
	"github.com/phrazzld/questup-api/internal/store"
)

// UserService signs learners in and looks them up.
type UserService interface {
	// Login finds the user with email, creating it on first sign-in. A
	// changed name or avatar updates the stored profile.
	Login(ctx context.Context, name, email, avatarURL string) (*domain.User, error)

	// GetUser retrieves a user by ID.
	GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error)
}

// txRunner runs fn inside a transaction.
type txRunner func(ctx context.Context, fn store.TxFn) error

// UserServiceImpl implements UserService.
type UserServiceImpl struct {
	userStore store.UserStore
	runInTx   txRunner
	logger    *slog.Logger
}

var _ UserService = (*UserServiceImpl)(nil)

// NewUserService creates a UserService. Sign-in runs in a transaction on db.
func NewUserService(userStore store.UserStore, db *sql.DB, logger *slog.Logger) *UserServiceImpl {
	return &UserServiceImpl{
		userStore: userStore,
		runInTx: func(ctx context.Context, fn store.TxFn) error {
			return store.RunInTransaction(ctx, db, fn)
		},
		logger: logger.With("component", "user_service"),
	}
}

// Login implements UserService.
func (s *UserServiceImpl) Login(ctx context.Context, name, email, avatarURL string) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	candidate, err := domain.NewUser(name, email, avatarURL)
	if err != nil {
		return nil, domain.NewValidationError("user", err.Error(), nil)
	}

	var user *domain.User
	err = s.runInTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		users := s.userStore.WithTx(tx)

		existing, err := users.GetByEmail(ctx, candidate.Email)
		switch {
		case errors.Is(err, store.ErrUserNotFound):
			if err := users.Create(ctx, candidate); err != nil {
				return err
			}
			user = candidate
			log.InfoContext(ctx, "new user signed in", slog.String("user_id", user.ID.String()))
			return nil
		case err != nil:
			return err
		}

		if existing.Name != candidate.Name || (avatarURL != "" && existing.AvatarURL != avatarURL) {
			existing.Name = candidate.Name
			if avatarURL != "" {
				existing.AvatarURL = avatarURL
			}
			if err := users.UpdateProfile(ctx, existing); err != nil {
				return err
			}
		}
		user = existing
		return nil
	})

	if errors.Is(err, store.ErrEmailExists) {
		// a concurrent first sign-in created the user
		return s.userStore.GetByEmail(ctx, candidate.Email)
	}
	if err != nil {
		log.ErrorContext(ctx, "login failed", redact.ErrorAttr(err))
		return nil, fmt.Errorf("failed to sign in: %w", err)
	}
	return user, nil
}

// GetUser implements UserService.
func (s *UserServiceImpl) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.userStore.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}
	return user, nil
}
