package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/quizgame-api/internal/domain/entity"
	apperrors "github.com/yourusername/quizgame-api/internal/pkg/errors"
	"github.com/yourusername/quizgame-api/pkg/auth"
)

func newTestAuthService(userRepo *MockUserRepository, invalidRepo *MockInvalidTokenRepository) (*AuthService, *auth.JWTService) {
	jwtService, err := auth.NewJWTService("test-secret", 1, invalidRepo)
	if err != nil {
		panic(err)
	}
	return NewAuthService(userRepo, jwtService), jwtService
}

func TestRegister_ReturnsParsableToken(t *testing.T) {
	// Arrange
	userRepo := new(MockUserRepository)
	invalidRepo := new(MockInvalidTokenRepository)
	svc, jwtService := newTestAuthService(userRepo, invalidRepo)

	var created *entity.User
	userRepo.On("Create", mock.AnythingOfType("*entity.User")).
		Run(func(args mock.Arguments) {
			created = args.Get(0).(*entity.User)
			created.ID = 1
		}).Return(nil)
	invalidRepo.On("GetInvalidationTime", mock.Anything, uint(1)).Return(nil, apperrors.ErrNotFound)

	// Act
	token, err := svc.Register(context.Background(), "admin@test.com", "secret123", "Admin")

	// Assert
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.NotEqual(t, "secret123", created.Password, "Пароль должен храниться только в виде хеша")
	assert.True(t, created.CheckPassword("secret123"))

	claims, err := jwtService.ParseToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, uint(1), claims.UserID)
	assert.Equal(t, "admin@test.com", claims.Email)
}

func TestRegister_DefaultsNameToEmail(t *testing.T) {
	userRepo := new(MockUserRepository)
	svc, _ := newTestAuthService(userRepo, new(MockInvalidTokenRepository))

	var created *entity.User
	userRepo.On("Create", mock.AnythingOfType("*entity.User")).
		Run(func(args mock.Arguments) {
			created = args.Get(0).(*entity.User)
		}).Return(nil)

	_, err := svc.Register(context.Background(), "admin@test.com", "secret123", "")

	require.NoError(t, err)
	assert.Equal(t, "admin@test.com", created.Name)
}

func TestRegister_RequiresEmailAndPassword(t *testing.T) {
	svc, _ := newTestAuthService(new(MockUserRepository), new(MockInvalidTokenRepository))

	_, err := svc.Register(context.Background(), "", "secret123", "")
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))

	_, err = svc.Register(context.Background(), "admin@test.com", "", "")
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestRegister_EmailTaken(t *testing.T) {
	userRepo := new(MockUserRepository)
	svc, _ := newTestAuthService(userRepo, new(MockInvalidTokenRepository))

	userRepo.On("Create", mock.Anything).Return(apperrors.ErrConflict)

	_, err := svc.Register(context.Background(), "admin@test.com", "secret123", "")

	assert.ErrorIs(t, err, apperrors.ErrEmailRegistered)
}

func TestLogin_Success(t *testing.T) {
	userRepo := new(MockUserRepository)
	invalidRepo := new(MockInvalidTokenRepository)
	svc, jwtService := newTestAuthService(userRepo, invalidRepo)

	user := &entity.User{ID: 1, Email: "admin@test.com", Name: "Admin"}
	require.NoError(t, user.SetPassword("secret123"))

	userRepo.On("GetByEmail", "admin@test.com").Return(user, nil)
	invalidRepo.On("RemoveInvalidToken", mock.Anything, uint(1)).Return(nil)
	invalidRepo.On("GetInvalidationTime", mock.Anything, uint(1)).Return(nil, apperrors.ErrNotFound)

	token, err := svc.Login(context.Background(), "admin@test.com", "secret123")

	require.NoError(t, err)
	claims, err := jwtService.ParseToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "admin@test.com", claims.Email)
	// Новый логин снимает инвалидацию после logout
	invalidRepo.AssertCalled(t, "RemoveInvalidToken", mock.Anything, uint(1))
}

func TestLogin_WrongPassword(t *testing.T) {
	userRepo := new(MockUserRepository)
	svc, _ := newTestAuthService(userRepo, new(MockInvalidTokenRepository))

	user := &entity.User{ID: 1, Email: "admin@test.com"}
	require.NoError(t, user.SetPassword("secret123"))
	userRepo.On("GetByEmail", "admin@test.com").Return(user, nil)

	_, err := svc.Login(context.Background(), "admin@test.com", "wrong")

	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestLogin_UnknownEmail(t *testing.T) {
	userRepo := new(MockUserRepository)
	svc, _ := newTestAuthService(userRepo, new(MockInvalidTokenRepository))

	userRepo.On("GetByEmail", "nobody@test.com").Return(nil, apperrors.ErrNotFound)

	_, err := svc.Login(context.Background(), "nobody@test.com", "secret123")

	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials, "Ответ не раскрывает, существует ли email")
}

func TestLogout_RevokesEarlierTokens(t *testing.T) {
	userRepo := new(MockUserRepository)
	invalidRepo := new(MockInvalidTokenRepository)
	svc, jwtService := newTestAuthService(userRepo, invalidRepo)

	user := &entity.User{ID: 1, Email: "admin@test.com"}
	token, err := jwtService.GenerateToken(user)
	require.NoError(t, err)

	var revokedAt time.Time
	invalidRepo.On("AddInvalidToken", mock.Anything, uint(1), mock.AnythingOfType("time.Time")).
		Run(func(args mock.Arguments) {
			revokedAt = args.Get(2).(time.Time)
		}).Return(nil)

	require.NoError(t, svc.Logout(context.Background(), 1))

	// IssuedAt в токене имеет секундную точность, момент отзыва сдвигаем вперед
	invalidRepo.On("GetInvalidationTime", mock.Anything, uint(1)).
		Return(&entity.InvalidToken{UserID: 1, InvalidationTime: revokedAt.Add(time.Second)}, nil)

	_, err = jwtService.ParseToken(context.Background(), token)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized, "Токен, выпущенный до logout, должен быть отозван")
}
