package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"medinfo-backend/internal/domains/user"
	"medinfo-backend/pkg/logger"
	"medinfo-backend/pkg/session"
)

// bcryptCost trades login latency for hash strength.
const bcryptCost = 12

type userService struct {
	repo     user.Repository
	sessions *session.Manager
}

func NewUserService(repo user.Repository, sessions *session.Manager) user.Service {
	return &userService{repo: repo, sessions: sessions}
}

func (s *userService) Register(ctx context.Context, req user.RegisterRequest) (*user.UserDTO, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	exists, err := s.repo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, user.ErrEmailAlreadyExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, err
	}

	u := &user.User{
		Email:        email,
		PasswordHash: string(hash),
		FullName:     strings.TrimSpace(req.FullName),
		Role:         user.RoleUser,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}

	logger.Info("User registered", map[string]interface{}{
		"user_id": u.ID.String(),
		"email":   u.Email,
	})

	dto := u.ToDTO()
	return &dto, nil
}

func (s *userService) Login(ctx context.Context, req user.LoginRequest) (*user.LoginResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	u, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		// Do not reveal whether the account exists.
		if _, ok := err.(*user.UserError); ok {
			return nil, user.ErrInvalidCredentials
		}
		return nil, err
	}
	if !u.IsActive {
		return nil, user.ErrUserInactive
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return nil, user.ErrInvalidCredentials
	}

	token, err := s.sessions.Issue(u.ID.String())
	if err != nil {
		return nil, err
	}

	logger.Info("User logged in", map[string]interface{}{
		"user_id": u.ID.String(),
	})

	return &user.LoginResponse{Token: token, User: u.ToDTO()}, nil
}

func (s *userService) GetProfile(ctx context.Context, id uuid.UUID) (*user.UserDTO, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := u.ToDTO()
	return &dto, nil
}
