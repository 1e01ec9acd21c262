package api

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/questup-api/internal/domain"
	"github.com/phrazzld/questup-api/internal/service/auth"
	"github.com/phrazzld/questup-api/internal/store"
	"github.com/stretchr/testify/mock"
)

type mockExamService struct {
	mock.Mock
}

func (m *mockExamService) CreateExam(ctx context.Context, userID uuid.UUID, params domain.ExamParams) (*domain.ExamSession, error) {
	args := m.Called(ctx, userID, params)
	s, _ := args.Get(0).(*domain.ExamSession)
	return s, args.Error(1)
}

func (m *mockExamService) GetExam(ctx context.Context, userID, examID uuid.UUID) (*domain.ExamSession, error) {
	args := m.Called(ctx, userID, examID)
	s, _ := args.Get(0).(*domain.ExamSession)
	return s, args.Error(1)
}

func (m *mockExamService) ListExams(ctx context.Context, userID uuid.UUID, limit int) ([]store.ExamSessionSummary, error) {
	args := m.Called(ctx, userID, limit)
	l, _ := args.Get(0).([]store.ExamSessionSummary)
	return l, args.Error(1)
}

func (m *mockExamService) SubmitAnswers(ctx context.Context, userID, examID uuid.UUID, answers []*int) (*domain.ExamSession, error) {
	args := m.Called(ctx, userID, examID, answers)
	s, _ := args.Get(0).(*domain.ExamSession)
	return s, args.Error(1)
}

func (m *mockExamService) RetryWeakTopics(ctx context.Context, userID, examID uuid.UUID, topics []string) (*domain.ExamSession, error) {
	args := m.Called(ctx, userID, examID, topics)
	s, _ := args.Get(0).(*domain.ExamSession)
	return s, args.Error(1)
}

type mockUserService struct {
	mock.Mock
}

func (m *mockUserService) Login(ctx context.Context, name, email, avatarURL string) (*domain.User, error) {
	args := m.Called(ctx, name, email, avatarURL)
	u, _ := args.Get(0).(*domain.User)
	return u, args.Error(1)
}

func (m *mockUserService) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, userID)
	u, _ := args.Get(0).(*domain.User)
	return u, args.Error(1)
}

type mockJWTService struct {
	mock.Mock
}

func (m *mockJWTService) GenerateToken(ctx context.Context, userID uuid.UUID) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

func (m *mockJWTService) ValidateToken(ctx context.Context, token string) (*auth.Claims, error) {
	args := m.Called(ctx, token)
	c, _ := args.Get(0).(*auth.Claims)
	return c, args.Error(1)
}
