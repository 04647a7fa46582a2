package repository

import (
	"time"

	"simedu_backend/internal/model"

	"gorm.io/gorm"
)

type EnrollmentRepository struct {
	DB *gorm.DB
}

func NewEnrollmentRepository(db *gorm.DB) *EnrollmentRepository {
	return &EnrollmentRepository{DB: db}
}

// FindByUserAndCourse returns the single enrollment row of a (user,
// course) pair, if any.
func (r *EnrollmentRepository) FindByUserAndCourse(tx *gorm.DB, userID, courseID uint) (*model.Enrollment, error) {
	if tx == nil {
		tx = r.DB
	}
	var e model.Enrollment
	err := tx.Where("user_id = ? AND course_id = ?", userID, courseID).First(&e).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *EnrollmentRepository) Create(tx *gorm.DB, e *model.Enrollment) error {
	if tx == nil {
		tx = r.DB
	}
	return tx.Create(e).Error
}

func (r *EnrollmentRepository) Update(tx *gorm.DB, e *model.Enrollment) error {
	if tx == nil {
		tx = r.DB
	}
	return tx.Save(e).Error
}

// DeleteClass removes every enrollment row sharing the class name in
// the tenant. The class has no existence of its own, so this deletes
// the class.
func (r *EnrollmentRepository) DeleteClass(companyID uint, className string) (int64, error) {
	res := r.DB.Where("company_id = ? AND class_name = ?", companyID, className).
		Delete(&model.Enrollment{})
	return res.RowsAffected, res.Error
}

func (r *EnrollmentRepository) RenameClass(companyID uint, oldName, newName string) (int64, error) {
	res := r.DB.Model(&model.Enrollment{}).
		Where("company_id = ? AND class_name = ?", companyID, oldName).
		Update("class_name", newName)
	return res.RowsAffected, res.Error
}

func (r *EnrollmentRepository) UpdateClassDates(companyID uint, className string, start, end time.Time) (int64, error) {
	res := r.DB.Model(&model.Enrollment{}).
		Where("company_id = ? AND class_name = ?", companyID, className).
		Updates(map[string]interface{}{"start_date": start, "end_date": end})
	return res.RowsAffected, res.Error
}

func (r *EnrollmentRepository) ListByClass(companyID uint, className string) ([]model.Enrollment, error) {
	var rows []model.Enrollment
	err := r.DB.Where("company_id = ? AND class_name = ?", companyID, className).
		Find(&rows).Error
	return rows, err
}

func (r *EnrollmentRepository) ListByCourse(companyID, courseID uint) ([]model.Enrollment, error) {
	var rows []model.Enrollment
	err := r.DB.Where("company_id = ? AND course_id = ?", companyID, courseID).
		Find(&rows).Error
	return rows, err
}

// ClassSummary is one row of the class listing.
type ClassSummary struct {
	ClassName   string    `json:"className"`
	StartDate   time.Time `json:"startDate"`
	EndDate     time.Time `json:"endDate"`
	MemberCount int64     `json:"memberCount"`
}

func (r *EnrollmentRepository) ListClasses(companyID uint) ([]ClassSummary, error) {
	var rows []ClassSummary
	err := r.DB.Model(&model.Enrollment{}).
		Select("class_name, MIN(start_date) AS start_date, MAX(end_date) AS end_date, COUNT(DISTINCT user_id) AS member_count").
		Where("company_id = ? AND class_name <> ''", companyID).
		Group("class_name").
		Order("class_name").
		Scan(&rows).Error
	return rows, err
}

func (r *EnrollmentRepository) CountActive(companyID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Enrollment{}).
		Where("company_id = ? AND active = ?", companyID, true).
		Count(&count).Error
	return count, err
}

// CountByCourse returns enrolled-user counts keyed by course id, used
// by the popularity ranking.
func (r *EnrollmentRepository) CountByCourse(companyID uint) (map[uint]int64, error) {
	type row struct {
		CourseID uint
		Count    int64
	}
	var rows []row
	err := r.DB.Model(&model.Enrollment{}).
		Select("course_id, COUNT(DISTINCT user_id) AS count").
		Where("company_id = ?", companyID).
		Group("course_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[uint]int64, len(rows))
	for _, r := range rows {
		counts[r.CourseID] = r.Count
	}
	return counts, nil
}
