package repository

import (
	"strings"

	"simedu_backend/internal/model"

	"gorm.io/gorm"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

// active scopes a query to live rows of one tenant. Every read below
// goes through it so callers cannot forget the soft-delete filter.
func (r *UserRepository) active(companyID uint) *gorm.DB {
	return r.DB.Where("company_id = ? AND active = ?", companyID, true)
}

func (r *UserRepository) Create(user *model.User) error {
	return r.DB.Create(user).Error
}

func (r *UserRepository) FindByID(companyID, id uint) (*model.User, error) {
	var user model.User
	err := r.active(companyID).First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ResolveByID loads a live row by its global id. The auth gate uses it
// on every request to derive the caller's tenant and role from the
// directory instead of trusting token claims.
func (r *UserRepository) ResolveByID(id uint) (*model.User, error) {
	var user model.User
	err := r.DB.Where("active = ?", true).First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmailGlobal resolves a login credential without a tenant in
// hand. Email is unique per tenant, not globally, so this returns the
// first active match.
func (r *UserRepository) FindByEmailGlobal(email string) (*model.User, error) {
	var user model.User
	err := r.DB.Where("email = ? AND active = ?", strings.ToLower(email), true).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// EmailTaken reports whether the email is used by an active user in the
// tenant other than excludeID (pass 0 to check against everyone).
func (r *UserRepository) EmailTaken(companyID uint, email string, excludeID uint) (bool, error) {
	q := r.active(companyID).Model(&model.User{}).Where("email = ?", strings.ToLower(email))
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Search matches the query as a case-insensitive substring of the
// user's name or email. Inactive users never match; excludeID removes
// the caller's own record when searching for deletion targets.
func (r *UserRepository) Search(companyID uint, query string, excludeID uint) ([]model.User, error) {
	like := "%" + strings.ToLower(query) + "%"
	q := r.active(companyID).
		Where("LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(email) LIKE ?", like, like, like)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}

	var users []model.User
	err := q.Order("first_name, last_name").Find(&users).Error
	return users, err
}

func (r *UserRepository) Update(user *model.User) error {
	return r.DB.Save(user).Error
}

// SoftDelete flips the active flag. The row and everything referencing
// it stays in place.
func (r *UserRepository) SoftDelete(companyID, id uint) error {
	res := r.DB.Model(&model.User{}).
		Where("company_id = ? AND id = ?", companyID, id).
		Update("active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// FindByIDs returns the active users among the given ids.
func (r *UserRepository) FindByIDs(companyID uint, ids []uint) ([]model.User, error) {
	if len(ids) == 0 {
		return []model.User{}, nil
	}
	var users []model.User
	err := r.active(companyID).Where("id IN ?", ids).Find(&users).Error
	return users, err
}

func (r *UserRepository) CountActive(companyID uint) (int64, error) {
	var count int64
	err := r.active(companyID).Model(&model.User{}).Count(&count).Error
	return count, err
}
