package model

import "time"

// Enrollment links a user to a course. One row exists per (user, course)
// pair; re-assigning the pair updates the class name and dates in place.
// A "class" has no table of its own, it is the set of enrollment rows
// sharing a class name within a tenant.
type Enrollment struct {
	BaseModel
	UserID    uint      `gorm:"not null;uniqueIndex:idx_enrollments_user_course" json:"userId"`
	CourseID  uint      `gorm:"not null;uniqueIndex:idx_enrollments_user_course" json:"courseId"`
	CompanyID uint      `gorm:"not null;index" json:"companyId"`
	ClassName string    `gorm:"size:255;index" json:"className"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	Active    bool      `gorm:"default:true" json:"active"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}
