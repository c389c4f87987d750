package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/mealtrack-go-api/internal/models"
)

// AdminRepository provides access to operator accounts.
type AdminRepository interface {
	Create(ctx context.Context, admin *models.Admin) error
	GetByID(ctx context.Context, id uint) (models.Admin, error)
	GetByEmail(ctx context.Context, email string) (models.Admin, error)
	GetByResetToken(ctx context.Context, token string) (models.Admin, error)
	Update(ctx context.Context, id uint, updates map[string]interface{}) (models.Admin, error)
	Count(ctx context.Context) (int64, error)
}

type adminRepository struct {
	db *gorm.DB
}

// NewAdminRepository constructs an admin repository.
func NewAdminRepository(db *gorm.DB) AdminRepository {
	return &adminRepository{db: db}
}

func (r *adminRepository) Create(ctx context.Context, admin *models.Admin) error {
	return r.db.WithContext(ctx).Create(admin).Error
}

func (r *adminRepository) GetByID(ctx context.Context, id uint) (models.Admin, error) {
	var admin models.Admin
	if err := r.db.WithContext(ctx).First(&admin, id).Error; err != nil {
		return models.Admin{}, err
	}
	return admin, nil
}

func (r *adminRepository) GetByEmail(ctx context.Context, email string) (models.Admin, error) {
	var admin models.Admin
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&admin).Error; err != nil {
		return models.Admin{}, err
	}
	return admin, nil
}

func (r *adminRepository) GetByResetToken(ctx context.Context, token string) (models.Admin, error) {
	var admin models.Admin
	err := r.db.WithContext(ctx).
		Where("password_reset_token = ?", token).
		Where("password_reset_expires > ?", time.Now().UTC()).
		First(&admin).Error
	if err != nil {
		return models.Admin{}, err
	}
	return admin, nil
}

func (r *adminRepository) Update(ctx context.Context, id uint, updates map[string]interface{}) (models.Admin, error) {
	tx := r.db.WithContext(ctx).Model(&models.Admin{}).Where("id = ?", id).Updates(updates)
	if tx.Error != nil {
		return models.Admin{}, tx.Error
	}
	if tx.RowsAffected == 0 {
		return models.Admin{}, gorm.ErrRecordNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *adminRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Admin{}).Count(&count).Error
	return count, err
}
