package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"shop-api/internal/auth"
	"shop-api/internal/model"
	"shop-api/pkg/apierror"
)

type userStore interface {
	FindByEmail(ctx context.Context, email string) (model.User, error)
	Create(ctx context.Context, u *model.User) error
}

type tokenIssuer interface {
	Issue(identity auth.Identity) (string, error)
}

type AuthService struct {
	users     userStore
	tokens    tokenIssuer
	dummyHash string
}

func NewAuthService(users userStore, tokens tokenIssuer) (*AuthService, error) {
	// Compared against on unknown emails so both login failures cost one bcrypt run.
	dummyHash, err := auth.HashPassword("not-a-real-password")
	if err != nil {
		return nil, fmt.Errorf("prepare dummy hash: %w", err)
	}

	return &AuthService{users: users, tokens: tokens, dummyHash: dummyHash}, nil
}

func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (model.User, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		return model.User{}, apierror.BadRequest("email and password are required", "")
	}

	_, err := s.users.FindByEmail(ctx, email)
	if err == nil {
		return model.User{}, model.ErrUserAlreadyExists
	}
	if !errors.Is(err, model.ErrUserNotFound) {
		return model.User{}, err
	}

	hash, err := auth.HashPassword(req.Password)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return model.User{}, apierror.BadRequest("password is too long", "password")
	}
	if err != nil {
		return model.User{}, fmt.Errorf("hash password: %w", err)
	}

	user := model.User{
		Username:     req.Username,
		Email:        email,
		Number:       string(req.Number),
		PasswordHash: hash,
		Role:         model.RoleUser,
	}
	if err := s.users.Create(ctx, &user); err != nil {
		return model.User{}, err
	}

	return user, nil
}

// Login returns a signed access token. Unknown emails and wrong passwords
// both yield model.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email string, password string) (string, error) {
	user, err := s.users.FindByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, model.ErrUserNotFound) {
		auth.VerifyPassword(password, s.dummyHash)
		return "", model.ErrInvalidCredentials
	}
	if err != nil {
		return "", err
	}

	if !auth.VerifyPassword(password, user.PasswordHash) {
		return "", model.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(auth.Identity{Email: user.Email, Role: user.Role})
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}

	return token, nil
}
