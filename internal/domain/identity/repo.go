package identity

import (
	"context"

	"github.com/google/uuid"
)

type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
}

type ProviderRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Provider, error)
}
