package service

import (
	"context"
	"testing"
	"time"

	"simedu_backend/internal/model"
	"simedu_backend/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newReportService(t *testing.T) (*ReportService, *gorm.DB, *model.Company) {
	t.Helper()
	db := setupTestDB(t)
	company := createTestCompany(t, db, "Acme")
	svc := NewReportService(
		repository.NewReportRepository(db),
		repository.NewCourseRepository(db),
		repository.NewUserRepository(db),
		repository.NewEnrollmentRepository(db),
		repository.NewSimulationRepository(db),
		nil,
	)
	return svc, db, company
}

// seedAttempt writes the final record of one completed attempt.
func seedAttempt(t *testing.T, db *gorm.DB, companyID, userID, courseID uint, threadID string, total int, at time.Time) {
	t.Helper()
	rec := model.CompletedScoreRecord{
		UserID:         userID,
		CourseID:       courseID,
		CompanyID:      companyID,
		SimulationName: "sales_discovery",
		ThreadID:       threadID,
		UserMessage:    "Bye",
		AssistantReply: "Done",
	}
	rec.CreatedAt = at
	rec.TotalScore = intPtr(total)
	rec.Criterion1 = "Rapport: opened warmly"
	rec.Score1 = intPtr(total / 10)
	require.NoError(t, db.Create(&rec).Error)
}

func TestSummaryCounts(t *testing.T) {
	svc, db, company := newReportService(t)
	course := createTestCourse(t, db, company.ID, "Sales Onboarding", "sales_discovery")
	u1 := createTestUser(t, db, company.ID, "Ada", "Lovelace", "ada@example.com")
	u2 := createTestUser(t, db, company.ID, "Grace", "Hopper", "grace@example.com")

	require.NoError(t, db.Create(&model.Enrollment{
		UserID: u1.ID, CourseID: course.ID, CompanyID: company.ID, ClassName: "Spring", Active: true,
	}).Error)
	require.NoError(t, db.Create(&model.Enrollment{
		UserID: u2.ID, CourseID: course.ID, CompanyID: company.ID, ClassName: "Spring", Active: true,
	}).Error)

	now := time.Now()
	seedAttempt(t, db, company.ID, u1.ID, course.ID, "t1", 80, now)
	seedAttempt(t, db, company.ID, u2.ID, course.ID, "t2", 60, now)

	summary, err := svc.Summary(context.Background(), repository.ReportFilter{CompanyID: company.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 1, summary.ActiveCourses)
	assert.EqualValues(t, 2, summary.ActiveUsers)
	assert.EqualValues(t, 2, summary.ActiveEnrollments)
	assert.EqualValues(t, 2, summary.CompletedAttempts)
}

func TestCourseStatsScoreAggregates(t *testing.T) {
	svc, db, company := newReportService(t)
	course := createTestCourse(t, db, company.ID, "Sales Onboarding", "sales_discovery")
	user := createTestUser(t, db, company.ID, "Ada", "Lovelace", "ada@example.com")

	now := time.Now()
	seedAttempt(t, db, company.ID, user.ID, course.ID, "t1", 80, now)
	seedAttempt(t, db, company.ID, user.ID, course.ID, "t2", 60, now)
	seedAttempt(t, db, company.ID, user.ID, course.ID, "t3", 90, now)

	stats, err := svc.CourseStats(repository.ReportFilter{CompanyID: company.ID})
	require.NoError(t, err)
	require.Len(t, stats, 1)

	assert.Equal(t, "Sales Onboarding", stats[0].CourseName)
	assert.EqualValues(t, 3, stats[0].AttemptCount)
	assert.EqualValues(t, 1, stats[0].Participants)
	assert.Equal(t, 76.67, stats[0].AverageScore)
	assert.Equal(t, 60, stats[0].MinScore)
	assert.Equal(t, 90, stats[0].MaxScore)
}

func TestCourseStatsOnlyLastRecordOfThreadCounts(t *testing.T) {
	svc, db, company := newReportService(t)
	course := createTestCourse(t, db, company.ID, "Sales Onboarding", "sales_discovery")
	user := createTestUser(t, db, company.ID, "Ada", "Lovelace", "ada@example.com")

	// Two records of the same thread: an unscored intermediate turn and
	// the final one. Only the final row is authoritative.
	now := time.Now()
	rec := model.CompletedScoreRecord{
		UserID: user.ID, CourseID: course.ID, CompanyID: company.ID,
		SimulationName: "sales_discovery", ThreadID: "t1",
	}
	rec.CreatedAt = now.Add(-time.Minute)
	require.NoError(t, db.Create(&rec).Error)
	seedAttempt(t, db, company.ID, user.ID, course.ID, "t1", 70, now)

	stats, err := svc.CourseStats(repository.ReportFilter{CompanyID: company.ID})
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.EqualValues(t, 1, stats[0].AttemptCount)
	assert.Equal(t, 70.0, stats[0].AverageScore)
}

func TestMonthlySeriesFillsGaps(t *testing.T) {
	svc, db, company := newReportService(t)
	course := createTestCourse(t, db, company.ID, "Sales Onboarding", "sales_discovery")
	user := createTestUser(t, db, company.ID, "Ada", "Lovelace", "ada@example.com")

	jan := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	mar := time.Date(2026, 3, 20, 10, 0, 0, 0, time.UTC)
	seedAttempt(t, db, company.ID, user.ID, course.ID, "t1", 80, jan)
	seedAttempt(t, db, company.ID, user.ID, course.ID, "t2", 60, mar)

	series, err := svc.MonthlySeries(repository.ReportFilter{CompanyID: company.ID})
	require.NoError(t, err)
	require.Len(t, series, 3)

	assert.Equal(t, "2026-01", series[0].Month)
	assert.EqualValues(t, 1, series[0].AttemptCount)
	assert.Equal(t, 80.0, series[0].AverageScore)

	assert.Equal(t, "2026-02", series[1].Month)
	assert.Zero(t, series[1].AttemptCount)
	assert.Zero(t, series[1].AverageScore)

	assert.Equal(t, "2026-03", series[2].Month)
	assert.EqualValues(t, 1, series[2].AttemptCount)
}

func TestDateRangeFilter(t *testing.T) {
	svc, db, company := newReportService(t)
	course := createTestCourse(t, db, company.ID, "Sales Onboarding", "sales_discovery")
	user := createTestUser(t, db, company.ID, "Ada", "Lovelace", "ada@example.com")

	seedAttempt(t, db, company.ID, user.ID, course.ID, "t1", 80,
		time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC))
	seedAttempt(t, db, company.ID, user.ID, course.ID, "t2", 60,
		time.Date(2026, 3, 20, 10, 0, 0, 0, time.UTC))

	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	stats, err := svc.CourseStats(repository.ReportFilter{CompanyID: company.ID, From: &from})
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.EqualValues(t, 1, stats[0].AttemptCount)
	assert.Equal(t, 60.0, stats[0].AverageScore)
}

func TestClassStatsScopedByEnrollment(t *testing.T) {
	svc, db, company := newReportService(t)
	course := createTestCourse(t, db, company.ID, "Sales Onboarding", "sales_discovery")
	inClass := createTestUser(t, db, company.ID, "Ada", "Lovelace", "ada@example.com")
	outOfClass := createTestUser(t, db, company.ID, "Grace", "Hopper", "grace@example.com")

	require.NoError(t, db.Create(&model.Enrollment{
		UserID: inClass.ID, CourseID: course.ID, CompanyID: company.ID, ClassName: "Spring", Active: true,
	}).Error)
	require.NoError(t, db.Create(&model.Enrollment{
		UserID: outOfClass.ID, CourseID: course.ID, CompanyID: company.ID, ClassName: "Autumn", Active: true,
	}).Error)

	now := time.Now()
	seedAttempt(t, db, company.ID, inClass.ID, course.ID, "t1", 85, now)
	seedAttempt(t, db, company.ID, outOfClass.ID, course.ID, "t2", 40, now)

	stat, err := svc.ClassStats(repository.ReportFilter{CompanyID: company.ID}, "Spring")
	require.NoError(t, err)
	assert.EqualValues(t, 1, stat.AttemptCount)
	assert.Equal(t, 85.0, stat.AverageScore)
}

func TestCriterionStats(t *testing.T) {
	svc, db, company := newReportService(t)
	course := createTestCourse(t, db, company.ID, "Sales Onboarding", "sales_discovery")
	user := createTestUser(t, db, company.ID, "Ada", "Lovelace", "ada@example.com")

	now := time.Now()
	seedAttempt(t, db, company.ID, user.ID, course.ID, "t1", 80, now) // slot 1 score 8
	seedAttempt(t, db, company.ID, user.ID, course.ID, "t2", 60, now) // slot 1 score 6

	// One attempt without the criterion slot filled.
	rec := model.CompletedScoreRecord{
		UserID: user.ID, CourseID: course.ID, CompanyID: company.ID,
		SimulationName: "sales_discovery", ThreadID: "t3",
	}
	rec.CreatedAt = now
	rec.TotalScore = intPtr(50)
	require.NoError(t, db.Create(&rec).Error)

	stats, err := svc.CriterionStats(repository.ReportFilter{CompanyID: company.ID})
	require.NoError(t, err)
	require.Len(t, stats, 1)

	assert.Equal(t, 1, stats[0].Slot)
	assert.Equal(t, "Rapport", stats[0].Label)
	assert.EqualValues(t, 2, stats[0].Count)
	assert.Equal(t, 7.0, stats[0].AverageScore)
	assert.Equal(t, 1.0, stats[0].StdDev)
	assert.Equal(t, 66.67, stats[0].FillRate)
}

func TestNonParticipants(t *testing.T) {
	svc, db, company := newReportService(t)
	course := createTestCourse(t, db, company.ID, "Sales Onboarding", "sales_discovery")
	done := createTestUser(t, db, company.ID, "Ada", "Lovelace", "ada@example.com")
	pending := createTestUser(t, db, company.ID, "Grace", "Hopper", "grace@example.com")

	for _, u := range []*model.User{done, pending} {
		require.NoError(t, db.Create(&model.Enrollment{
			UserID: u.ID, CourseID: course.ID, CompanyID: company.ID, ClassName: "Spring", Active: true,
		}).Error)
	}
	seedAttempt(t, db, company.ID, done.ID, course.ID, "t1", 80, time.Now())

	missing, err := svc.NonParticipants(repository.ReportFilter{CompanyID: company.ID, ClassName: "Spring"})
	require.NoError(t, err)
	require.Len(t, missing, 1)
	assert.Equal(t, pending.ID, missing[0].UserID)
	assert.Equal(t, "Spring", missing[0].ClassName)
}

func TestPopularityRanking(t *testing.T) {
	svc, db, company := newReportService(t)
	popular := createTestCourse(t, db, company.ID, "Popular", "sales_discovery")
	quiet := createTestCourse(t, db, company.ID, "Quiet", "sales_discovery")
	user := createTestUser(t, db, company.ID, "Ada", "Lovelace", "ada@example.com")

	require.NoError(t, db.Create(&model.Enrollment{
		UserID: user.ID, CourseID: popular.ID, CompanyID: company.ID, ClassName: "Spring", Active: true,
	}).Error)

	now := time.Now()
	seedAttempt(t, db, company.ID, user.ID, popular.ID, "t1", 80, now)
	seedAttempt(t, db, company.ID, user.ID, popular.ID, "t2", 70, now)
	seedAttempt(t, db, company.ID, user.ID, quiet.ID, "t3", 60, now)

	entries, err := svc.Popularity(repository.ReportFilter{CompanyID: company.ID}, 5)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, popular.ID, entries[0].CourseID)
	assert.EqualValues(t, 2, entries[0].AttemptCount)
	assert.EqualValues(t, 1, entries[0].EnrolledCount)

	// topN trims the tail.
	entries, err = svc.Popularity(repository.ReportFilter{CompanyID: company.ID}, 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, popular.ID, entries[0].CourseID)
}
