package postgres

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/husaynirfan1/lukisan-server/internal/domain"
)

type logoRepository struct {
	db *gorm.DB
}

func NewLogoRepository(db *gorm.DB) *logoRepository {
	return &logoRepository{db: db}
}

func (r *logoRepository) Create(ctx context.Context, logo *domain.Logo) error {
	return r.db.WithContext(ctx).Create(logo).Error
}

func (r *logoRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Logo, error) {
	var logo domain.Logo
	err := r.db.WithContext(ctx).First(&logo, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &logo, nil
}

func (r *logoRepository) GetByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Logo, error) {
	var logos []*domain.Logo
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&logos).Error
	if err != nil {
		return nil, err
	}
	return logos, nil
}

func (r *logoRepository) CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Logo{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}

func (r *logoRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Logo{}, "id = ?", id).Error
}
