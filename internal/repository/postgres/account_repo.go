package postgres

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/husaynirfan1/lukisan-server/internal/domain"
)

type accountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) *accountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) Create(ctx context.Context, account *domain.CreditAccount) error {
	return r.db.WithContext(ctx).Create(account).Error
}

func (r *accountRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.CreditAccount, error) {
	var account domain.CreditAccount
	err := r.db.WithContext(ctx).First(&account, "user_id = ?", userID).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *accountRepository) Update(ctx context.Context, account *domain.CreditAccount) error {
	return r.db.WithContext(ctx).Save(account).Error
}
