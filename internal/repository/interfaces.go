package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/husaynirfan1/lukisan-server/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
}

type SessionRepository interface {
	Create(ctx context.Context, session *domain.UserSession) error
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.UserSession, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByUserID(ctx context.Context, userID uuid.UUID) error
	DeleteExpired(ctx context.Context) error
}

type AccountRepository interface {
	Create(ctx context.Context, account *domain.CreditAccount) error
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.CreditAccount, error)
	Update(ctx context.Context, account *domain.CreditAccount) error
}

type LogoRepository interface {
	Create(ctx context.Context, logo *domain.Logo) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Logo, error)
	GetByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Logo, error)
	CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type Repositories struct {
	User    UserRepository
	Session SessionRepository
	Account AccountRepository
	Logo    LogoRepository
}
