package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/yourusername/quizgame-api/internal/domain/entity"
	"github.com/yourusername/quizgame-api/internal/domain/repository"
	apperrors "github.com/yourusername/quizgame-api/internal/pkg/errors"
	"github.com/yourusername/quizgame-api/pkg/auth"
)

// AuthService предоставляет методы для регистрации и аутентификации
// администраторов
type AuthService struct {
	userRepo   repository.UserRepository
	jwtService *auth.JWTService
}

// NewAuthService создает новый сервис аутентификации
func NewAuthService(userRepo repository.UserRepository, jwtService *auth.JWTService) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtService: jwtService,
	}
}

// Register создает нового пользователя и возвращает токен
func (s *AuthService) Register(ctx context.Context, email, password, name string) (string, error) {
	if email == "" || password == "" {
		return "", apperrors.New(apperrors.KindValidation, "Email and password are required")
	}
	if name == "" {
		name = email
	}

	user := &entity.User{
		Email: email,
		Name:  name,
	}
	if err := user.SetPassword(password); err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.userRepo.Create(user); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return "", apperrors.ErrEmailRegistered
		}
		return "", fmt.Errorf("failed to create user: %w", err)
	}

	log.Printf("[AuthService] Зарегистрирован пользователь %s", email)
	return s.jwtService.GenerateToken(user)
}

// Login проверяет учетные данные и возвращает токен
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			// Не раскрываем, что именно неверно: email или пароль
			return "", apperrors.ErrInvalidCredentials
		}
		return "", err
	}

	if !user.CheckPassword(password) {
		return "", apperrors.ErrInvalidCredentials
	}

	// Новый логин снимает инвалидацию после прежнего logout
	if err := s.jwtService.ResetInvalidationForUser(ctx, user.ID); err != nil {
		log.Printf("[AuthService] Не удалось снять инвалидацию для пользователя #%d: %v", user.ID, err)
	}

	return s.jwtService.GenerateToken(user)
}

// Logout отзывает все ранее выпущенные токены пользователя
func (s *AuthService) Logout(ctx context.Context, userID uint) error {
	if err := s.jwtService.InvalidateTokensForUser(ctx, userID); err != nil {
		return fmt.Errorf("failed to invalidate tokens: %w", err)
	}
	log.Printf("[AuthService] Пользователь #%d вышел, токены отозваны", userID)
	return nil
}
