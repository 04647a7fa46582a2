package repository

import (
	"time"

	"simedu_backend/internal/model"

	"gorm.io/gorm"
)

// ReportFilter narrows reporting queries. The zero value of an optional
// dimension means "no restriction"; filters combine with AND and the
// tenant is always bound. Conditions are applied as parameterized
// clauses, never interpolated into SQL text.
type ReportFilter struct {
	CompanyID uint
	CourseID  uint
	ClassName string
	From      *time.Time
	To        *time.Time
}

// apply scopes a completed_score_records query to the filter.
func (f ReportFilter) apply(db *gorm.DB) *gorm.DB {
	q := db.Where("completed_score_records.company_id = ?", f.CompanyID)
	if f.CourseID != 0 {
		q = q.Where("completed_score_records.course_id = ?", f.CourseID)
	}
	if f.ClassName != "" {
		q = q.Where(
			"EXISTS (SELECT 1 FROM enrollments e WHERE e.user_id = completed_score_records.user_id AND e.course_id = completed_score_records.course_id AND e.company_id = ? AND e.class_name = ?)",
			f.CompanyID, f.ClassName)
	}
	if f.From != nil {
		q = q.Where("completed_score_records.created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("completed_score_records.created_at <= ?", *f.To)
	}
	return q
}

type ReportRepository struct {
	DB *gorm.DB
}

func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{DB: db}
}

// FinalRows returns the authoritative row of every attempt matching the
// filter: the last completed row of each thread. Rows are inserted in
// turn order during migration, so max id per thread is the final turn.
func (r *ReportRepository) FinalRows(f ReportFilter) ([]model.CompletedScoreRecord, error) {
	var rows []model.CompletedScoreRecord
	err := f.apply(r.DB.Model(&model.CompletedScoreRecord{})).
		Where("completed_score_records.id IN (SELECT MAX(id) FROM completed_score_records WHERE company_id = ? GROUP BY thread_id)", f.CompanyID).
		Order("completed_score_records.created_at, completed_score_records.id").
		Find(&rows).Error
	return rows, err
}

// CountAttempts counts distinct threads in range.
func (r *ReportRepository) CountAttempts(f ReportFilter) (int64, error) {
	var count int64
	err := f.apply(r.DB.Model(&model.CompletedScoreRecord{})).
		Distinct("thread_id").
		Count(&count).Error
	return count, err
}

// ParticipantIDs returns the distinct users with at least one completed
// attempt in range.
func (r *ReportRepository) ParticipantIDs(f ReportFilter) ([]uint, error) {
	var ids []uint
	err := f.apply(r.DB.Model(&model.CompletedScoreRecord{})).
		Distinct("user_id").
		Pluck("user_id", &ids).Error
	return ids, err
}
