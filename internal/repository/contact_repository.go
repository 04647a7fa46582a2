package repository

import (
	"time"

	"simedu_backend/internal/model"

	"gorm.io/gorm"
)

type ContactRepository struct {
	DB *gorm.DB
}

func NewContactRepository(db *gorm.DB) *ContactRepository {
	return &ContactRepository{DB: db}
}

func (r *ContactRepository) CreateDemoRequest(req *model.DemoRequest) error {
	return r.DB.Create(req).Error
}

func (r *ContactRepository) CreateResetToken(token *model.PasswordResetToken) error {
	return r.DB.Create(token).Error
}

// FindValidResetToken returns an unused, unexpired token.
func (r *ContactRepository) FindValidResetToken(token string) (*model.PasswordResetToken, error) {
	var t model.PasswordResetToken
	err := r.DB.Where("token = ? AND used = ? AND expires_at > ?", token, false, time.Now()).
		First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *ContactRepository) MarkResetTokenUsed(id uint) error {
	return r.DB.Model(&model.PasswordResetToken{}).
		Where("id = ?", id).
		Update("used", true).Error
}
