package service

import (
	"context"
	"database/sql"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/questup-api/internal/domain"
	"github.com/phrazzld/questup-api/internal/store"
	"github.com/stretchr/testify/mock"
)

type mockExamStore struct {
	mock.Mock
}

func (m *mockExamStore) Create(ctx context.Context, session *domain.ExamSession) error {
	return m.Called(ctx, session).Error(0)
}

func (m *mockExamStore) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.ExamSession, error) {
	args := m.Called(ctx, userID, id)
	session, _ := args.Get(0).(*domain.ExamSession)
	return session, args.Error(1)
}

func (m *mockExamStore) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]store.ExamSessionSummary, error) {
	args := m.Called(ctx, userID, limit)
	list, _ := args.Get(0).([]store.ExamSessionSummary)
	return list, args.Error(1)
}

func (m *mockExamStore) SaveResults(ctx context.Context, session *domain.ExamSession) error {
	return m.Called(ctx, session).Error(0)
}

func (m *mockExamStore) WithTx(tx store.DBTX) store.ExamStore {
	return m
}

type mockUserStore struct {
	mock.Mock
}

func (m *mockUserStore) Create(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

func (m *mockUserStore) UpdateProfile(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockUserStore) WithTx(tx store.DBTX) store.UserStore {
	return m
}

type mockGenerator struct {
	mock.Mock
}

func (m *mockGenerator) GenerateExam(ctx context.Context, params domain.ExamParams) ([]domain.Question, error) {
	args := m.Called(ctx, params)
	questions, _ := args.Get(0).([]domain.Question)
	return questions, args.Error(1)
}

func (m *mockGenerator) AnalyzeResults(
	ctx context.Context,
	questions []domain.Question,
	answers []*int,
) (*domain.AnalysisResult, error) {
	args := m.Called(ctx, questions, answers)
	result, _ := args.Get(0).(*domain.AnalysisResult)
	return result, args.Error(1)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// directTx runs transactional code without a database.
func directTx(ctx context.Context, fn store.TxFn) error {
	return fn(ctx, (*sql.Tx)(nil))
}
