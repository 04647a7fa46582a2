package repository

import (
	"simedu_backend/internal/model"

	"gorm.io/gorm"
)

type SessionRepository struct {
	DB *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{DB: db}
}

// AppendTurn persists one exchange of an open session. The timestamp is
// server-assigned by the ORM on insert.
func (r *SessionRepository) AppendTurn(turn *model.InProgressTurn) error {
	return r.DB.Create(turn).Error
}

func (r *SessionRepository) ListInProgress(key model.SessionKey) ([]model.InProgressTurn, error) {
	var turns []model.InProgressTurn
	err := r.DB.
		Where("user_id = ? AND course_id = ? AND simulation_name = ? AND thread_id = ?",
			key.UserID, key.CourseID, key.SimulationName, key.ThreadID).
		Order("created_at, id").
		Find(&turns).Error
	return turns, err
}

// MigrateToCompleted moves every in-progress row of the session into
// completed storage and deletes the originals, inside one transaction.
// Either both steps commit or neither does; a failure leaves the
// in-progress rows untouched and completed storage unaffected.
//
// Original turn timestamps are preserved; absent criterion scores stay
// null. Returns the number of migrated rows.
func (r *SessionRepository) MigrateToCompleted(key model.SessionKey) (int, error) {
	turns, err := r.ListInProgress(key)
	if err != nil {
		return 0, err
	}
	if len(turns) == 0 {
		return 0, gorm.ErrRecordNotFound
	}

	err = r.DB.Transaction(func(tx *gorm.DB) error {
		for i := range turns {
			rec := turns[i].AsCompleted()
			// CreatedAt is pre-set, so the ORM keeps the original turn
			// timestamp instead of stamping insert time.
			if err := tx.Create(&rec).Error; err != nil {
				return err
			}
		}
		return tx.
			Where("user_id = ? AND course_id = ? AND simulation_name = ? AND thread_id = ?",
				key.UserID, key.CourseID, key.SimulationName, key.ThreadID).
			Delete(&model.InProgressTurn{}).Error
	})
	if err != nil {
		return 0, err
	}
	return len(turns), nil
}

// ListCompletedByThread returns the transcript of a finished attempt in
// turn order. The last row carries the authoritative final scores.
func (r *SessionRepository) ListCompletedByThread(companyID uint, threadID string) ([]model.CompletedScoreRecord, error) {
	var rows []model.CompletedScoreRecord
	err := r.DB.
		Where("company_id = ? AND thread_id = ?", companyID, threadID).
		Order("created_at, id").
		Find(&rows).Error
	return rows, err
}
