// Package auth выдаёт токены сотрудникам студии и определяет пользователя по токену.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/studio-churn/internal/lib/jwt"
	"github.com/magabrotheeeer/studio-churn/internal/lib/password"
	"github.com/magabrotheeeer/studio-churn/internal/lib/sl"
	"github.com/magabrotheeeer/studio-churn/internal/models"
	"github.com/magabrotheeeer/studio-churn/internal/storage/repository"
)

const (
	// RoleAdmin может импортировать справочник абонементов.
	RoleAdmin = "admin"
	// RoleStaff доступны отчёты, список участников и тикеты.
	RoleStaff = "staff"
)

var (
	// ErrInvalidCredentials возвращается при неизвестном пользователе или неверном пароле.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidRole возвращается для роли, отличной от admin и staff.
	ErrInvalidRole = errors.New("invalid role")
)

// UserRepository описывает контракт для работы с сотрудниками в базе данных.
type UserRepository interface {
	CreateUser(ctx context.Context, user models.User) (string, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

// AuthService отвечает за вход сотрудников и проверку токенов.
type AuthService struct {
	users    UserRepository
	jwtMaker jwt.Maker
	log      *slog.Logger
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(users UserRepository, jwtMaker jwt.Maker, log *slog.Logger) *AuthService {
	return &AuthService{
		users:    users,
		jwtMaker: jwtMaker,
		log:      log,
	}
}

// Register создает сотрудника с хэшированным паролем.
func (s *AuthService) Register(ctx context.Context, email, username, rawPassword, role string) (string, error) {
	const op = "auth.Register"
	if role != RoleAdmin && role != RoleStaff {
		return "", fmt.Errorf("%s: %w: %q", op, ErrInvalidRole, role)
	}
	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	uid, err := s.users.CreateUser(ctx, models.User{
		Email:        email,
		Username:     username,
		PasswordHash: hashed,
		Role:         role,
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return uid, nil
}

// EnsureAdmin создаёт администратора при первом запуске. Если пользователь
// с таким username уже есть, ничего не меняется.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, username, rawPassword string) error {
	const op = "auth.EnsureAdmin"
	_, err := s.users.GetUserByUsername(ctx, username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%s: %w", op, err)
	}
	if _, err := s.Register(ctx, email, username, rawPassword, RoleAdmin); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("bootstrap admin created", sl.Op(op), slog.String("username", username))
	return nil
}

// Login проверяет пароль сотрудника и выпускает токен.
func (s *AuthService) Login(ctx context.Context, username, rawPassword string) (token, role string, err error) {
	const op = "auth.Login"
	user, err := s.users.GetUserByUsername(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		return "", "", fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}
	if err != nil {
		return "", "", fmt.Errorf("%s: %w", op, err)
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return "", "", fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}
	token, err = s.jwtMaker.GenerateToken(user.Username, user.Role, user.UUID)
	if err != nil {
		return "", "", fmt.Errorf("%s: %w", op, err)
	}
	return token, user.Role, nil
}

// Identify возвращает сотрудника по токену или nil, если токен недействителен.
func (s *AuthService) Identify(_ context.Context, token string) *models.User {
	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		s.log.Debug("token rejected", sl.Op("auth.Identify"), sl.Err(err))
		return nil
	}
	return &models.User{
		UUID:     claims.UserUID,
		Username: claims.Username,
		Role:     claims.Role,
	}
}
