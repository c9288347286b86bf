package user

import (
	"context"

	"github.com/google/uuid"
)

// Service is the user business logic contract.
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*UserDTO, error)
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	GetProfile(ctx context.Context, id uuid.UUID) (*UserDTO, error)
}
