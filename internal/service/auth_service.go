package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/hottakes-api/internal/domain/entity"
	"github.com/yourusername/hottakes-api/internal/domain/repository"
	apperrors "github.com/yourusername/hottakes-api/internal/pkg/errors"
	"github.com/yourusername/hottakes-api/pkg/auth"
	"github.com/yourusername/hottakes-api/pkg/logger"
)

const (
	resetTokenTTL     = time.Hour
	minPasswordLength = 8
	revokedKeyPrefix  = "revoked:"
)

var nicknamePattern = regexp.MustCompile(`^[A-Za-z0-9_.-]{3,30}$`)

// RegisterInput содержит данные для регистрации
type RegisterInput struct {
	Nickname string
	Email    string
	Password string
}

// Session - выпущенный токен и его claims
type Session struct {
	Token  string
	Claims *auth.SessionClaims
}

// AuthService отвечает за регистрацию, вход и сброс пароля
type AuthService struct {
	userRepo   repository.UserRepository
	cacheRepo  repository.CacheRepository
	jwtService *auth.JWTService
	email      EmailService
	publicURL  string
	log        *logger.Logger
	now        func() time.Time
}

// NewAuthService создает сервис аутентификации
func NewAuthService(
	userRepo repository.UserRepository,
	cacheRepo repository.CacheRepository,
	jwtService *auth.JWTService,
	email EmailService,
	publicURL string,
	log *logger.Logger,
) (*AuthService, error) {
	if userRepo == nil {
		return nil, fmt.Errorf("UserRepository is required for AuthService")
	}
	if jwtService == nil {
		return nil, fmt.Errorf("JWTService is required for AuthService")
	}
	if email == nil {
		email = NewNoopEmailService(log)
	}
	return &AuthService{
		userRepo:   userRepo,
		cacheRepo:  cacheRepo,
		jwtService: jwtService,
		email:      email,
		publicURL:  strings.TrimRight(publicURL, "/"),
		log:        log.Named("AuthService"),
		now:        time.Now,
	}, nil
}

// SessionTTL - время жизни сессии (для cookie)
func (s *AuthService) SessionTTL() time.Duration {
	return s.jwtService.Expiry()
}

func validatePassword(password string) *apperrors.Issue {
	if len(password) < minPasswordLength {
		return &apperrors.Issue{Path: "password", Message: fmt.Sprintf("password must be at least %d characters", minPasswordLength)}
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register создает пользователя и сразу открывает сессию
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*entity.User, *Session, error) {
	nickname := strings.TrimSpace(input.Nickname)
	email := normalizeEmail(input.Email)

	var issues []apperrors.Issue
	if !nicknamePattern.MatchString(nickname) {
		issues = append(issues, apperrors.Issue{Path: "nickname", Message: "nickname must be 3-30 letters, digits, '_', '.' or '-'"})
	}
	if email != "" && !strings.Contains(email, "@") {
		issues = append(issues, apperrors.Issue{Path: "email", Message: "email is invalid"})
	}
	if issue := validatePassword(input.Password); issue != nil {
		issues = append(issues, *issue)
	}
	if len(issues) > 0 {
		return nil, nil, apperrors.Validationf("invalid registration").WithIssues(issues...)
	}

	user := &entity.User{Nickname: nickname, Password: input.Password}
	if email != "" {
		user.Email = &email
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, nil, apperrors.Conflictf("nickname or email is already taken")
		}
		return nil, nil, err
	}

	session, err := s.issue(user)
	if err != nil {
		return nil, nil, err
	}
	s.log.Info("Пользователь зарегистрирован", "user_id", user.ID, "nickname", user.Nickname)
	return user, session, nil
}

// Login проверяет пароль; login может быть никнеймом или email
func (s *AuthService) Login(ctx context.Context, login, password string) (*entity.User, *Session, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return nil, nil, apperrors.Validationf("nickname and password are required")
	}

	var (
		user *entity.User
		err  error
	)
	if strings.Contains(login, "@") {
		user, err = s.userRepo.GetByEmail(ctx, normalizeEmail(login))
	} else {
		user, err = s.userRepo.GetByNickname(ctx, login)
	}
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil, apperrors.Unauthorizedf("invalid credentials")
		}
		return nil, nil, err
	}
	if !user.CheckPassword(password) {
		s.log.Warn("Неверный пароль", "user_id", user.ID)
		return nil, nil, apperrors.Unauthorizedf("invalid credentials")
	}

	session, err := s.issue(user)
	if err != nil {
		return nil, nil, err
	}
	return user, session, nil
}

func (s *AuthService) issue(user *entity.User) (*Session, error) {
	token, claims, err := s.jwtService.GenerateToken(user.ID, user.Nickname)
	if err != nil {
		return nil, fmt.Errorf("issue session for user %d: %w", user.ID, err)
	}
	return &Session{Token: token, Claims: claims}, nil
}

// Authenticate проверяет токен, отзыв и существование пользователя
func (s *AuthService) Authenticate(ctx context.Context, token string) (*entity.User, *auth.SessionClaims, error) {
	claims, err := s.jwtService.ParseToken(token)
	if err != nil {
		if errors.Is(err, auth.ErrTokenExpired) {
			return nil, nil, fmt.Errorf("%w: session expired", apperrors.ErrExpiredToken)
		}
		return nil, nil, apperrors.Unauthorizedf("invalid session")
	}

	if s.cacheRepo != nil {
		revoked, err := s.cacheRepo.Exists(ctx, revokedKeyPrefix+claims.ID)
		if err != nil {
			// кеш недоступен: токен уже проверен подписью
			s.log.Warn("Не удалось проверить отзыв токена", "jti", claims.ID, "error", err)
		} else if revoked {
			return nil, nil, apperrors.Unauthorizedf("session has been revoked")
		}
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil, apperrors.Unauthorizedf("user no longer exists")
		}
		return nil, nil, err
	}
	return user, claims, nil
}

// Logout отзывает jti до истечения токена
func (s *AuthService) Logout(ctx context.Context, claims *auth.SessionClaims) error {
	if claims == nil || claims.ID == "" || s.cacheRepo == nil {
		return nil
	}
	ttl := time.Minute
	if claims.ExpiresAt != nil {
		ttl = claims.ExpiresAt.Time.Sub(s.now())
	}
	if ttl <= 0 {
		return nil
	}
	if err := s.cacheRepo.SetJSON(ctx, revokedKeyPrefix+claims.ID, claims.UserID, ttl); err != nil {
		return fmt.Errorf("revoke session %s: %w", claims.ID, err)
	}
	s.log.Info("Сессия отозвана", "user_id", claims.UserID, "jti", claims.ID)
	return nil
}

// Me возвращает текущего пользователя
func (s *AuthService) Me(ctx context.Context, userID uint) (*entity.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

// ForgotPassword выдает токен сброса и отправляет письмо.
// Неизвестный email не раскрывается: ошибка не возвращается.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return apperrors.Validationf("email is required")
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.log.Info("Запрос сброса для неизвестного email")
			return nil
		}
		return err
	}

	token := uuid.NewString()
	expiry := s.now().Add(resetTokenTTL)
	user.ResetToken = &token
	user.ResetTokenExpiry = &expiry
	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("store reset token for user %d: %w", user.ID, err)
	}

	link := s.publicURL + "/reset-password?token=" + url.QueryEscape(token)
	if err := s.email.SendPasswordReset(ctx, email, user.Nickname, link); err != nil {
		s.log.Error("Не удалось отправить письмо сброса пароля", "user_id", user.ID, "error", err)
	}
	return nil
}

// ResetPassword меняет пароль по токену и гасит токен
func (s *AuthService) ResetPassword(ctx context.Context, token, password string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return apperrors.Validationf("token is required")
	}
	if issue := validatePassword(password); issue != nil {
		return apperrors.Validationf("invalid password").WithIssues(*issue)
	}

	user, err := s.userRepo.GetByResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.Validationf("reset token is invalid or expired")
		}
		return err
	}
	if !user.ResetTokenValid(s.now()) {
		return apperrors.Validationf("reset token is invalid or expired")
	}

	user.Password = password
	user.ResetToken = nil
	user.ResetTokenExpiry = nil
	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("reset password for user %d: %w", user.ID, err)
	}
	s.log.Info("Пароль сброшен", "user_id", user.ID)
	return nil
}
