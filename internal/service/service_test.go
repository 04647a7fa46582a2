package service

import (
	"testing"

	"simedu_backend/internal/model"
	"simedu_backend/pkg/database"
	"simedu_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func init() {
	logger.Log = zap.NewNop()
}

// setupTestDB opens an in-memory sqlite database with the production
// schema. The pool is pinned to one connection so the database survives
// across queries.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func createTestCompany(t *testing.T, db *gorm.DB, name string) *model.Company {
	t.Helper()
	company := model.Company{Name: name, Active: true}
	if err := db.Create(&company).Error; err != nil {
		t.Fatalf("create company: %v", err)
	}
	return &company
}

func createTestUser(t *testing.T, db *gorm.DB, companyID uint, first, last, email string) *model.User {
	t.Helper()
	user := model.User{
		FirstName: first,
		LastName:  last,
		Email:     email,
		CompanyID: companyID,
		Active:    true,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return &user
}

func createTestCourse(t *testing.T, db *gorm.DB, companyID uint, name string, sims ...string) *model.Course {
	t.Helper()
	course := model.Course{Name: name, CompanyID: companyID, Active: true}
	slots := []*string{
		&course.Simulation1, &course.Simulation2, &course.Simulation3,
		&course.Simulation4, &course.Simulation5,
	}
	for i, s := range sims {
		if i >= len(slots) {
			break
		}
		*slots[i] = s
	}
	if err := db.Create(&course).Error; err != nil {
		t.Fatalf("create course: %v", err)
	}
	return &course
}

func intPtr(v int) *int {
	return &v
}
