package service

import (
	"context"
	"errors"
	"strings"

	"gatherly/internal/auth"
	"gatherly/internal/model"
	"gatherly/internal/repo"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmailTaken      = errors.New("email already registered")
	ErrMissingRequired = errors.New("email and password are required")
)

// AuthService handles sign-up and sign-in. Registering creates the user
// document alongside the credential record; signing in mints an access token.
type AuthService interface {
	Register(ctx context.Context, email, password, displayName, username string) (*model.User, string, error)
	Login(ctx context.Context, email, password string) (*model.User, string, error)
	SignOut(ctx context.Context, uid string) error
	DeleteAccount(ctx context.Context, uid string) error
}

type authService struct {
	users  repo.UserRepository
	issuer *auth.TokenIssuer
	logger *zap.Logger
}

func NewAuthService(users repo.UserRepository, issuer *auth.TokenIssuer, logger *zap.Logger) AuthService {
	return &authService{
		users:  users,
		issuer: issuer,
		logger: logger,
	}
}

func (s *authService) Register(ctx context.Context, email, password, displayName, username string) (*model.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, "", ErrMissingRequired
	}

	if _, err := s.users.CredentialByEmail(ctx, email); err == nil {
		return nil, "", ErrEmailTaken
	} else if !errors.Is(err, repo.ErrUserNotFound) {
		return nil, "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	uid := uuid.NewString()
	user := &model.User{
		ID:          uid,
		Email:       email,
		DisplayName: displayName,
		Username:    username,
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, "", err
	}
	if err := s.users.SaveCredential(ctx, &model.Credential{
		ID:           uid,
		Email:        email,
		PasswordHash: string(hash),
	}); err != nil {
		s.logger.Error("user created but credential write failed", zap.Error(err), zap.String("uid", uid))
		return nil, "", err
	}

	token, err := s.issuer.Mint(uid)
	if err != nil {
		return nil, "", err
	}

	s.logger.Info("user registered", zap.String("uid", uid))
	return user, token, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	cred, err := s.users.CredentialByEmail(ctx, email)
	if errors.Is(err, repo.ErrUserNotFound) {
		return nil, "", auth.ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)); err != nil {
		return nil, "", auth.ErrInvalidCredentials
	}

	user, err := s.users.GetUser(ctx, cred.ID)
	if err != nil {
		return nil, "", err
	}

	token, err := s.issuer.Mint(cred.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// SignOut is stateless on the server: tokens simply expire. Kept on the
// interface so the handler layer has a single collaborator for the auth
// surface.
func (s *authService) SignOut(ctx context.Context, uid string) error {
	s.logger.Info("user signed out", zap.String("uid", uid))
	return nil
}

func (s *authService) DeleteAccount(ctx context.Context, uid string) error {
	if err := s.users.DeleteUser(ctx, uid); err != nil {
		return err
	}
	return s.users.DeleteCredential(ctx, uid)
}
