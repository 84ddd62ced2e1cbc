package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/RubachokBoss/thesisflow/internal/models"
	"github.com/RubachokBoss/thesisflow/internal/repository"
	"github.com/RubachokBoss/thesisflow/internal/service/integration"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

type AuthService interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*models.RegisterResponse, error)
	Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error)
	Authenticate(ctx context.Context, token string) (Principal, error)
	CreateAdmin(ctx context.Context, email, password, displayName string) (*models.User, error)
}

type authService struct {
	store      repository.Store
	identity   integration.IdentityProvider
	bcryptCost int
	logger     zerolog.Logger
}

func NewAuthService(store repository.Store, identity integration.IdentityProvider, bcryptCost int, logger zerolog.Logger) AuthService {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &authService{
		store:      store,
		identity:   identity,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

func (s *authService) Register(ctx context.Context, req *models.RegisterRequest) (*models.RegisterResponse, error) {
	req.Email = strings.TrimSpace(req.Email)
	req.DisplayName = strings.TrimSpace(req.DisplayName)
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	if !req.Role.SelfRegistrable() {
		return nil, fmt.Errorf("%w: role must be student or supervisor", ErrInvalidInput)
	}

	user, err := s.createUser(ctx, req.Email, req.Password, req.DisplayName, req.Role)
	if err != nil {
		return nil, err
	}

	return &models.RegisterResponse{ID: user.ID, Subject: user.Subject}, nil
}

func (s *authService) CreateAdmin(ctx context.Context, email, password, displayName string) (*models.User, error) {
	in := struct {
		Email       string `validate:"required,email,max=255"`
		Password    string `validate:"required,min=6,max=128"`
		DisplayName string `validate:"required,max=255"`
	}{
		Email:       strings.TrimSpace(email),
		Password:    password,
		DisplayName: strings.TrimSpace(displayName),
	}
	if err := validateStruct(&in); err != nil {
		return nil, err
	}

	return s.createUser(ctx, in.Email, in.Password, in.DisplayName, models.RoleAdmin)
}

func (s *authService) createUser(ctx context.Context, email, password, displayName string, role models.Role) (*models.User, error) {
	existing, err := s.store.Users().GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: e-mail already registered", ErrConflict)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := &models.User{
		ID:           uuid.New().String(),
		Subject:      uuid.New().String(),
		Email:        email,
		DisplayName:  displayName,
		Role:         role,
		PasswordHash: string(hashed),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.store.Users().Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("%w: e-mail already registered", ErrConflict)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info().
		Str("user_id", user.ID).
		Str("role", role.String()).
		Msg("User registered")

	return user, nil
}

func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {
	req.Email = strings.TrimSpace(req.Email)
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	user, err := s.store.Users().GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("%w: invalid e-mail or password", ErrUnauthorized)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, fmt.Errorf("%w: invalid e-mail or password", ErrUnauthorized)
	}

	token, expiresAt, err := s.identity.Issue(user)
	if err != nil {
		return nil, err
	}

	return &models.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt.Unix(),
		User:      user,
	}, nil
}

func (s *authService) Authenticate(ctx context.Context, token string) (Principal, error) {
	if token == "" {
		return Principal{}, fmt.Errorf("%w: missing token", ErrUnauthorized)
	}

	claims, err := s.identity.Verify(token)
	if err != nil {
		return Principal{}, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	user, err := s.store.Users().GetBySubject(ctx, claims.Subject)
	if err != nil {
		return Principal{}, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return Principal{}, fmt.Errorf("%w: unknown user", ErrUnauthorized)
	}

	return NewPrincipal(user), nil
}
