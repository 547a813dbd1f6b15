package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/linemk/fanbase/internal/domain/models"
	security "github.com/linemk/fanbase/internal/jwt-new"
	"github.com/linemk/fanbase/internal/lib/logger"
	"github.com/linemk/fanbase/internal/storage"
	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	log       *slog.Logger
	userRepo  storage.UserStorage
	tokenTTL  time.Duration
	jwtSecret string
}

func NewAuthService(log *slog.Logger, userRepo storage.UserStorage, tokenTTL time.Duration, jwtSecret string) *AuthService {
	return &AuthService{
		log:       log,
		userRepo:  userRepo,
		tokenTTL:  tokenTTL,
		jwtSecret: jwtSecret,
	}
}

type AuthServiceInterface interface {
	Login(ctx context.Context, email, password, role string) (string, error)
}

// Login осуществляет аутентификацию пользователя.
// Если пользователь не найден, он регистрируется с указанной ролью (по умолчанию - фанат),
// пароль хэшируется через bcrypt. Для существующего пользователя роль из запроса игнорируется.
func (a *AuthService) Login(ctx context.Context, email, password, role string) (string, error) {
	const op = "service.AuthService.Login"
	log := a.log.With(
		slog.String("op", op),
		slog.String("email", email),
	)
	log.Info("checking user")

	user, err := a.userRepo.GetUserByEmail(ctx, email)
	switch {
	case errors.Is(err, storage.ErrUserNotFound):
		log.Info("user not found, creating new user")
		user, err = a.register(ctx, email, password, role)
		if err != nil {
			log.Error("failed to register user", logger.Err(err))
			return "", fmt.Errorf("%s: %w", op, err)
		}
	case err != nil:
		log.Error("failed to get user", logger.Err(err))
		return "", fmt.Errorf("%s: failed to get user: %w", op, err)
	default:
		if err := bcrypt.CompareHashAndPassword(user.PassHash, []byte(password)); err != nil {
			log.Warn("invalid password")
			return "", fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}
	}

	token, err := security.NewToken(user, a.tokenTTL, a.jwtSecret)
	if err != nil {
		log.Error("failed to generate token", logger.Err(err))
		return "", fmt.Errorf("%s: failed to generate token: %w", op, err)
	}

	log.Info("user logged in successfully", slog.Int64("userID", user.ID), slog.String("role", user.Role))
	return token, nil
}

func (a *AuthService) register(ctx context.Context, email, password, role string) (*models.User, error) {
	if role == "" {
		role = models.RoleFan
	}
	passHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	displayName, _, _ := strings.Cut(email, "@")
	user, err := a.userRepo.CreateUser(ctx, &models.User{
		Email:       email,
		PassHash:    passHash,
		DisplayName: displayName,
		Role:        role,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}
