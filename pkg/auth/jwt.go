package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/yourusername/quizgame-api/internal/domain/entity"
	"github.com/yourusername/quizgame-api/internal/domain/repository"
	apperrors "github.com/yourusername/quizgame-api/internal/pkg/errors"
)

// JWTCustomClaims содержит пользовательские поля для токена
type JWTCustomClaims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// JWTService предоставляет методы для работы с JWT (HS256).
// Logout не умеет отзывать сам токен, поэтому момент инвалидации хранится
// по пользователю: токены, выпущенные раньше него, не принимаются.
type JWTService struct {
	secret           []byte
	expiration       time.Duration
	invalidTokenRepo repository.InvalidTokenRepository
}

// NewJWTService создает новый сервис JWT
func NewJWTService(secret string, expirationHrs int, invalidTokenRepo repository.InvalidTokenRepository) (*JWTService, error) {
	if secret == "" {
		return nil, fmt.Errorf("JWT secret is required")
	}
	if expirationHrs <= 0 {
		expirationHrs = 24
	}
	return &JWTService{
		secret:           []byte(secret),
		expiration:       time.Duration(expirationHrs) * time.Hour,
		invalidTokenRepo: invalidTokenRepo,
	}, nil
}

// GenerateToken выпускает токен для пользователя
func (s *JWTService) GenerateToken(user *entity.User) (string, error) {
	now := time.Now()
	claims := JWTCustomClaims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiration)),
			Subject:   user.Email,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ParseToken проверяет подпись, срок действия и инвалидацию токена
func (s *JWTService) ParseToken(ctx context.Context, tokenString string) (*JWTCustomClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTCustomClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.ErrExpiredToken
		}
		return nil, apperrors.ErrUnauthorized
	}

	claims, ok := token.Claims.(*JWTCustomClaims)
	if !ok || !token.Valid {
		return nil, apperrors.ErrUnauthorized
	}

	// Токен, выпущенный до logout, считается отозванным
	if s.invalidTokenRepo != nil && claims.IssuedAt != nil {
		record, err := s.invalidTokenRepo.GetInvalidationTime(ctx, claims.UserID)
		if err == nil && record.IsTokenInvalidAt(claims.IssuedAt.Time) {
			return nil, apperrors.ErrUnauthorized
		}
	}

	return claims, nil
}

// InvalidateTokensForUser отзывает все ранее выпущенные токены пользователя
func (s *JWTService) InvalidateTokensForUser(ctx context.Context, userID uint) error {
	if s.invalidTokenRepo == nil {
		return fmt.Errorf("invalid token repository is not configured")
	}
	return s.invalidTokenRepo.AddInvalidToken(ctx, userID, time.Now())
}

// ResetInvalidationForUser снимает инвалидацию (вызывается при новом логине)
func (s *JWTService) ResetInvalidationForUser(ctx context.Context, userID uint) error {
	if s.invalidTokenRepo == nil {
		return nil
	}
	return s.invalidTokenRepo.RemoveInvalidToken(ctx, userID)
}
