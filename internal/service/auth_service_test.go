package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/blog-service/internal/auth"
	"github.com/spec-kit/blog-service/internal/config"
	"github.com/spec-kit/blog-service/internal/domain"
	"github.com/spec-kit/blog-service/internal/repository"
)

// MockUserRepo is a mock implementation of repository.UserRepository.
type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepo) UpdateProfile(ctx context.Context, id int64, nickname, email string) error {
	args := m.Called(ctx, id, nickname, email)
	return args.Error(0)
}

func (m *MockUserRepo) UpdateAvatar(ctx context.Context, id int64, avatarURL string) error {
	args := m.Called(ctx, id, avatarURL)
	return args.Error(0)
}

func (m *MockUserRepo) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	args := m.Called(ctx, id, passwordHash)
	return args.Error(0)
}

func (m *MockUserRepo) TouchLastLogin(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserRepo) Exists(ctx context.Context, q repository.Querier, id int64) (bool, error) {
	args := m.Called(ctx, q, id)
	return args.Bool(0), args.Error(1)
}

func newAuthService(t *testing.T) (*AuthService, *MockUserRepo, auth.SessionStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sessions := auth.NewRedisSessionStore(client)

	mockRepo := new(MockUserRepo)
	cfg := config.AuthConfig{
		JWTSecret:     "test-secret",
		TokenTTLHours: 12,
		BcryptCost:    bcrypt.MinCost,
	}
	svc := NewAuthService(cfg, mockRepo, sessions, zap.NewNop())
	return svc, mockRepo, sessions, mr
}

func hashFor(t *testing.T, password string) string {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		svc, mockRepo, sessions, mr := newAuthService(t)
		user := &domain.User{
			ID:           7,
			Username:     "lisi",
			PasswordHash: hashFor(t, "secret123"),
			Role:         domain.RoleReader,
			Status:       domain.UserStatusActive,
		}
		mockRepo.On("GetByUsername", ctx, "lisi").Return(user, nil).Once()
		mockRepo.On("TouchLastLogin", ctx, int64(7)).Return(nil).Once()

		token, expiresAt, err := svc.Login(ctx, "lisi", "secret123")
		require.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.WithinDuration(t, time.Now().Add(12*time.Hour), expiresAt, time.Minute)

		// The token is persisted for resolution and its Redis TTL matches
		// the embedded expiry.
		ok, err := sessions.Exists(ctx, token)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.InDelta(t, 12*time.Hour, mr.TTL(token), float64(time.Minute))

		mockRepo.AssertExpectations(t)
	})

	t.Run("WrongPassword", func(t *testing.T) {
		svc, mockRepo, _, _ := newAuthService(t)
		user := &domain.User{
			ID:           7,
			Username:     "lisi",
			PasswordHash: hashFor(t, "secret123"),
			Status:       domain.UserStatusActive,
		}
		mockRepo.On("GetByUsername", ctx, "lisi").Return(user, nil).Once()

		_, _, err := svc.Login(ctx, "lisi", "wrong")
		assert.Error(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("UnknownUser", func(t *testing.T) {
		svc, mockRepo, _, _ := newAuthService(t)
		mockRepo.On("GetByUsername", ctx, "ghost").Return(nil, pgx.ErrNoRows).Once()

		_, _, err := svc.Login(ctx, "ghost", "whatever")
		assert.Error(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("DisabledAccount", func(t *testing.T) {
		svc, mockRepo, _, _ := newAuthService(t)
		user := &domain.User{
			ID:           7,
			Username:     "lisi",
			PasswordHash: hashFor(t, "secret123"),
			Status:       domain.UserStatusDisabled,
		}
		mockRepo.On("GetByUsername", ctx, "lisi").Return(user, nil).Once()

		_, _, err := svc.Login(ctx, "lisi", "secret123")
		assert.Error(t, err)
		mockRepo.AssertExpectations(t)
	})
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		svc, mockRepo, _, _ := newAuthService(t)
		mockRepo.On("GetByUsername", ctx, "newbie").Return(nil, pgx.ErrNoRows).Once()
		mockRepo.On("Create", ctx, mock.AnythingOfType("*domain.User")).Return(nil).Once()

		user, err := svc.Register(ctx, "newbie", "secret123")
		require.NoError(t, err)
		assert.Equal(t, domain.RoleReader, user.Role)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("secret123")))
		mockRepo.AssertExpectations(t)
	})

	t.Run("DuplicateUsername", func(t *testing.T) {
		svc, mockRepo, _, _ := newAuthService(t)
		mockRepo.On("GetByUsername", ctx, "lisi").Return(&domain.User{ID: 7}, nil).Once()

		_, err := svc.Register(ctx, "lisi", "secret123")
		assert.Error(t, err)
		mockRepo.AssertExpectations(t)
	})
}

func TestChangePasswordRevokesSession(t *testing.T) {
	ctx := context.Background()
	svc, mockRepo, sessions, _ := newAuthService(t)

	user := &domain.User{
		ID:           7,
		Username:     "lisi",
		PasswordHash: hashFor(t, "oldpass1"),
		Role:         domain.RoleReader,
		Status:       domain.UserStatusActive,
	}
	token, _, err := svc.TokenManager().GenerateToken(user.ID, user.Username, user.Role)
	require.NoError(t, err)
	require.NoError(t, sessions.Save(ctx, token, time.Hour))

	mockRepo.On("GetByID", ctx, int64(7)).Return(user, nil).Once()
	mockRepo.On("UpdatePassword", ctx, int64(7), mock.AnythingOfType("string")).Return(nil).Once()

	require.NoError(t, svc.ChangePassword(ctx, 7, "oldpass1", "newpass1", token))

	ok, err := sessions.Exists(ctx, token)
	require.NoError(t, err)
	assert.False(t, ok)
	mockRepo.AssertExpectations(t)
}

func TestChangePasswordWrongCurrent(t *testing.T) {
	ctx := context.Background()
	svc, mockRepo, _, _ := newAuthService(t)

	user := &domain.User{ID: 7, PasswordHash: hashFor(t, "oldpass1")}
	mockRepo.On("GetByID", ctx, int64(7)).Return(user, nil).Once()

	err := svc.ChangePassword(ctx, 7, "nope", "newpass1", "token")
	assert.Error(t, err)
	mockRepo.AssertExpectations(t)
}

func TestLogoutRevokesToken(t *testing.T) {
	ctx := context.Background()
	svc, _, sessions, _ := newAuthService(t)

	require.NoError(t, sessions.Save(ctx, "some-token", time.Hour))
	require.NoError(t, svc.Logout(ctx, "some-token"))

	ok, err := sessions.Exists(ctx, "some-token")
	require.NoError(t, err)
	assert.False(t, ok)
}
