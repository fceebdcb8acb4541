package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"freelance/internal/config"
	"freelance/internal/domain"
	"freelance/internal/repository"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// ResetTokenStore tracks one-shot password-reset tokens.
type ResetTokenStore interface {
	Save(ctx context.Context, tokenID, email string) error
	Consume(ctx context.Context, tokenID string) (email string, ok bool, err error)
}

// Mailer delivers transactional mail. Delivery is an external concern;
// implementations only get one call per message.
type Mailer interface {
	SendPasswordReset(ctx context.Context, to, resetLink string) error
}

// UserService handles account registration, authentication, and password
// recovery.
type UserService struct {
	userRepo repository.UserRepository
	tokens   ResetTokenStore
	mailer   Mailer
	jwtCfg   config.JWTConfig
	baseURL  string
	log      *logrus.Logger
}

// NewUserService creates a new UserService.
func NewUserService(
	userRepo repository.UserRepository,
	tokens ResetTokenStore,
	mailer Mailer,
	jwtCfg config.JWTConfig,
	baseURL string,
	log *logrus.Logger,
) *UserService {
	return &UserService{
		userRepo: userRepo,
		tokens:   tokens,
		mailer:   mailer,
		jwtCfg:   jwtCfg,
		baseURL:  baseURL,
		log:      log,
	}
}

// RegisterRequest contains the parameters for registering a user.
type RegisterRequest struct {
	Name     string
	Email    string
	Password string
	Role     domain.Role
}

// Register creates a new account with a bcrypt-hashed password.
func (s *UserService) Register(ctx context.Context, req RegisterRequest) (*domain.User, error) {
	if req.Name == "" || req.Email == "" || req.Password == "" || req.Role == "" {
		return nil, ErrMissingUserFields
	}
	if !emailPattern.MatchString(req.Email) {
		return nil, ErrInvalidEmail
	}
	if !domain.ValidRole(req.Role) {
		return nil, ErrInvalidRole
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		ID:           uuid.New().String(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         req.Role,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"user_id": user.ID, "role": user.Role}).Info("user registered")
	return user, nil
}

// Login verifies credentials and issues a signed bearer token.
func (s *UserService) Login(ctx context.Context, email, password string) (string, error) {
	if email == "" || password == "" {
		return "", ErrMissingUserFields
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	claims := jwt.MapClaims{
		"user_id": user.ID,
		"role":    string(user.Role),
		"exp":     time.Now().Add(s.jwtCfg.Expiration).Unix(),
		"iss":     s.jwtCfg.Issuer,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtCfg.Secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signed, nil
}

// ForgetPassword issues a one-shot reset token for the account and mails a
// reset link. The token is a signed JWT whose id is also recorded in the
// token store; redeeming removes the record, so the link works once.
func (s *UserService) ForgetPassword(ctx context.Context, email string) error {
	if email == "" {
		return ErrMissingUserFields
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}

	tokenID := uuid.New().String()
	claims := jwt.MapClaims{
		"jti":   tokenID,
		"email": user.Email,
		"exp":   time.Now().Add(time.Hour).Unix(),
		"iss":   s.jwtCfg.Issuer,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.jwtCfg.Secret))
	if err != nil {
		return fmt.Errorf("sign reset token: %w", err)
	}

	if err := s.tokens.Save(ctx, tokenID, user.Email); err != nil {
		return err
	}

	resetLink := fmt.Sprintf("%s/api/users/reset-password/%s", s.baseURL, signed)
	if err := s.mailer.SendPasswordReset(ctx, user.Email, resetLink); err != nil {
		return err
	}

	s.log.WithField("user_id", user.ID).Info("password reset link sent")
	return nil
}

// ResetPassword redeems a reset token and replaces the account password.
func (s *UserService) ResetPassword(ctx context.Context, token, password string) error {
	if password == "" {
		return ErrMissingUserFields
	}

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(s.jwtCfg.Secret), nil
	})
	if err != nil || !parsed.Valid {
		return ErrInvalidResetToken
	}

	tokenID, _ := claims["jti"].(string)
	email, _ := claims["email"].(string)
	if tokenID == "" || email == "" {
		return ErrInvalidResetToken
	}

	storedEmail, ok, err := s.tokens.Consume(ctx, tokenID)
	if err != nil {
		return err
	}
	if !ok || storedEmail != email {
		return ErrInvalidResetToken
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.userRepo.UpdatePassword(ctx, user.ID, string(hash)); err != nil {
		return err
	}

	s.log.WithField("user_id", user.ID).Info("password reset")
	return nil
}
