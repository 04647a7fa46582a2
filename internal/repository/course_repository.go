package repository

import (
	"simedu_backend/internal/model"

	"gorm.io/gorm"
)

type CourseRepository struct {
	DB *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{DB: db}
}

func (r *CourseRepository) FindByID(companyID, id uint) (*model.Course, error) {
	var course model.Course
	err := r.DB.Where("company_id = ? AND active = ?", companyID, true).First(&course, id).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *CourseRepository) ListActive(companyID uint) ([]model.Course, error) {
	var courses []model.Course
	err := r.DB.Where("company_id = ? AND active = ?", companyID, true).
		Order("name").Find(&courses).Error
	return courses, err
}

func (r *CourseRepository) CountActive(companyID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Course{}).
		Where("company_id = ? AND active = ?", companyID, true).
		Count(&count).Error
	return count, err
}
