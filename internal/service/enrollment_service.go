package service

import (
	"time"

	"simedu_backend/internal/model"
	"simedu_backend/internal/repository"
	"simedu_backend/internal/util"
	"simedu_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// EnrollmentService bulk-assigns users to courses and manages classes.
// A class is the set of enrollment rows sharing a class name within a
// tenant; it has no record of its own.
type EnrollmentService struct {
	EnrollmentRepo *repository.EnrollmentRepository
	CourseRepo     *repository.CourseRepository
	UserRepo       *repository.UserRepository
	DB             *gorm.DB
}

func NewEnrollmentService(
	enrollmentRepo *repository.EnrollmentRepository,
	courseRepo *repository.CourseRepository,
	userRepo *repository.UserRepository,
	db *gorm.DB,
) *EnrollmentService {
	return &EnrollmentService{
		EnrollmentRepo: enrollmentRepo,
		CourseRepo:     courseRepo,
		UserRepo:       userRepo,
		DB:             db,
	}
}

// AssignInput is one bulk-assignment request.
type AssignInput struct {
	CourseID  uint      `json:"courseId" binding:"required"`
	ClassName string    `json:"className" binding:"required"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	UserIDs   []uint    `json:"userIds" binding:"required"`
}

// AssignResult reports per-record outcomes of a batch.
type AssignResult struct {
	Inserted int `json:"inserted"`
	Updated  int `json:"updated"`
	Failed   int `json:"failed"`
}

// AssignUsers processes the batch inside one transaction. Target ids
// are resolved against the tenant's active directory first; ids outside
// it count as failed. An existing (user, course) row gets its class
// name and dates updated; otherwise a new row is inserted. A per-record
// failure is logged and skipped, not allowed to abort the batch;
// resubmitting the identical batch leaves the row count unchanged.
func (s *EnrollmentService) AssignUsers(companyID uint, in AssignInput) (*AssignResult, error) {
	course, err := s.CourseRepo.FindByID(companyID, in.CourseID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}

	users, err := s.UserRepo.FindByIDs(companyID, in.UserIDs)
	if err != nil {
		return nil, err
	}
	known := make(map[uint]bool, len(users))
	for _, u := range users {
		known[u.ID] = true
	}

	result := &AssignResult{}
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		for _, userID := range in.UserIDs {
			// Ids outside the tenant's active directory never produce rows.
			if !known[userID] {
				logger.Log.Warn("enrollment target not in directory",
					zap.Uint("user", userID), zap.Uint("course", course.ID))
				result.Failed++
				continue
			}
			existing, err := s.EnrollmentRepo.FindByUserAndCourse(tx, userID, course.ID)
			switch {
			case err == nil:
				existing.ClassName = in.ClassName
				existing.StartDate = in.StartDate
				existing.EndDate = in.EndDate
				if err := s.EnrollmentRepo.Update(tx, existing); err != nil {
					logger.Log.Error("enrollment update failed",
						zap.Uint("user", userID), zap.Uint("course", course.ID), zap.Error(err))
					result.Failed++
					continue
				}
				result.Updated++
			case err == gorm.ErrRecordNotFound:
				row := model.Enrollment{
					UserID:    userID,
					CourseID:  course.ID,
					CompanyID: companyID,
					ClassName: in.ClassName,
					StartDate: in.StartDate,
					EndDate:   in.EndDate,
					Active:    true,
				}
				if err := s.EnrollmentRepo.Create(tx, &row); err != nil {
					logger.Log.Error("enrollment insert failed",
						zap.Uint("user", userID), zap.Uint("course", course.ID), zap.Error(err))
					result.Failed++
					continue
				}
				result.Inserted++
			default:
				logger.Log.Error("enrollment lookup failed",
					zap.Uint("user", userID), zap.Uint("course", course.ID), zap.Error(err))
				result.Failed++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteClass removes every enrollment of the class. Irreversible.
func (s *EnrollmentService) DeleteClass(companyID uint, className string) (int64, error) {
	deleted, err := s.EnrollmentRepo.DeleteClass(companyID, className)
	if err != nil {
		return 0, err
	}
	if deleted == 0 {
		return 0, util.ErrClassNotFound
	}
	return deleted, nil
}

// RenameClass moves every row of the class to a new name.
func (s *EnrollmentService) RenameClass(companyID uint, oldName, newName string) (int64, error) {
	updated, err := s.EnrollmentRepo.RenameClass(companyID, oldName, newName)
	if err != nil {
		return 0, err
	}
	if updated == 0 {
		return 0, util.ErrClassNotFound
	}
	return updated, nil
}

// UpdateClassDates changes the date range across the class's rows.
func (s *EnrollmentService) UpdateClassDates(companyID uint, className string, start, end time.Time) (int64, error) {
	updated, err := s.EnrollmentRepo.UpdateClassDates(companyID, className, start, end)
	if err != nil {
		return 0, err
	}
	if updated == 0 {
		return 0, util.ErrClassNotFound
	}
	return updated, nil
}

// ListClasses returns the tenant's classes with dates and member
// counts.
func (s *EnrollmentService) ListClasses(companyID uint) ([]repository.ClassSummary, error) {
	return s.EnrollmentRepo.ListClasses(companyID)
}
