package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"time"

	"simedu_backend/internal/model"
	"simedu_backend/internal/repository"
	"simedu_backend/internal/util"
	"simedu_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const summaryCacheTTL = 5 * time.Minute

// ReportService computes the dashboard aggregates. It only reads
// completed storage and the catalog tables; filters combine with AND
// and the tenant is always bound.
type ReportService struct {
	ReportRepo     *repository.ReportRepository
	CourseRepo     *repository.CourseRepository
	UserRepo       *repository.UserRepository
	EnrollmentRepo *repository.EnrollmentRepository
	SimRepo        *repository.SimulationRepository
	Redis          *redis.Client
}

func NewReportService(
	reportRepo *repository.ReportRepository,
	courseRepo *repository.CourseRepository,
	userRepo *repository.UserRepository,
	enrollmentRepo *repository.EnrollmentRepository,
	simRepo *repository.SimulationRepository,
	rdb *redis.Client,
) *ReportService {
	return &ReportService{
		ReportRepo:     reportRepo,
		CourseRepo:     courseRepo,
		UserRepo:       userRepo,
		EnrollmentRepo: enrollmentRepo,
		SimRepo:        simRepo,
		Redis:          rdb,
	}
}

func (s *ReportService) summaryCacheKey(f repository.ReportFilter) string {
	from, to := "", ""
	if f.From != nil {
		from = f.From.Format(util.DateFormat)
	}
	if f.To != nil {
		to = f.To.Format(util.DateFormat)
	}
	return fmt.Sprintf("report:summary:%d:%d:%s:%s:%s", f.CompanyID, f.CourseID, f.ClassName, from, to)
}

// Summary computes the headline counts. Results are cached briefly in
// Redis; a cache error falls back to the database.
func (s *ReportService) Summary(ctx context.Context, f repository.ReportFilter) (*model.ReportSummary, error) {
	key := s.summaryCacheKey(f)
	if s.Redis != nil {
		if cached, err := s.Redis.Get(ctx, key).Result(); err == nil {
			var summary model.ReportSummary
			if json.Unmarshal([]byte(cached), &summary) == nil {
				return &summary, nil
			}
		}
	}

	courses, err := s.CourseRepo.CountActive(f.CompanyID)
	if err != nil {
		return nil, err
	}
	users, err := s.UserRepo.CountActive(f.CompanyID)
	if err != nil {
		return nil, err
	}
	enrollments, err := s.EnrollmentRepo.CountActive(f.CompanyID)
	if err != nil {
		return nil, err
	}
	attempts, err := s.ReportRepo.CountAttempts(f)
	if err != nil {
		return nil, err
	}

	summary := &model.ReportSummary{
		ActiveCourses:     courses,
		ActiveUsers:       users,
		ActiveEnrollments: enrollments,
		CompletedAttempts: attempts,
	}

	if s.Redis != nil {
		if data, err := json.Marshal(summary); err == nil {
			if err := s.Redis.Set(ctx, key, data, summaryCacheTTL).Err(); err != nil {
				logger.Log.Warn("summary cache write failed", zap.Error(err))
			}
		}
	}
	return summary, nil
}

// MonthlySeries groups attempts by calendar month. Months between the
// first and last observation with no attempts are filled with zeros.
func (s *ReportService) MonthlySeries(f repository.ReportFilter) ([]model.MonthlyStat, error) {
	rows, err := s.ReportRepo.FinalRows(f)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []model.MonthlyStat{}, nil
	}

	type bucket struct {
		attempts int64
		users    map[uint]struct{}
		sum      int64
		scored   int64
	}
	buckets := make(map[string]*bucket)
	for _, row := range rows {
		month := row.CreatedAt.Format(util.MonthFormat)
		b, ok := buckets[month]
		if !ok {
			b = &bucket{users: make(map[uint]struct{})}
			buckets[month] = b
		}
		b.attempts++
		b.users[row.UserID] = struct{}{}
		if row.TotalScore != nil {
			b.sum += int64(*row.TotalScore)
			b.scored++
		}
	}

	first := rows[0].CreatedAt
	last := rows[len(rows)-1].CreatedAt

	var series []model.MonthlyStat
	for cur := time.Date(first.Year(), first.Month(), 1, 0, 0, 0, 0, first.Location()); !cur.After(last); cur = cur.AddDate(0, 1, 0) {
		month := cur.Format(util.MonthFormat)
		stat := model.MonthlyStat{Month: month}
		if b, ok := buckets[month]; ok {
			stat.AttemptCount = b.attempts
			stat.Participants = int64(len(b.users))
			if b.scored > 0 {
				stat.AverageScore = round2(float64(b.sum) / float64(b.scored))
			}
		}
		series = append(series, stat)
	}
	return series, nil
}

// CourseStats aggregates attempts per course.
func (s *ReportService) CourseStats(f repository.ReportFilter) ([]model.CourseStat, error) {
	rows, err := s.ReportRepo.FinalRows(f)
	if err != nil {
		return nil, err
	}

	names := make(map[uint]string)
	if courses, err := s.CourseRepo.ListActive(f.CompanyID); err == nil {
		for _, c := range courses {
			names[c.ID] = c.Name
		}
	}

	type bucket struct {
		attempts int64
		users    map[uint]struct{}
		scores   []int
	}
	buckets := make(map[uint]*bucket)
	for _, row := range rows {
		b, ok := buckets[row.CourseID]
		if !ok {
			b = &bucket{users: make(map[uint]struct{})}
			buckets[row.CourseID] = b
		}
		b.attempts++
		b.users[row.UserID] = struct{}{}
		if row.TotalScore != nil {
			b.scores = append(b.scores, *row.TotalScore)
		}
	}

	var stats []model.CourseStat
	for courseID, b := range buckets {
		stat := model.CourseStat{
			CourseID:     courseID,
			CourseName:   names[courseID],
			Participants: int64(len(b.users)),
			AttemptCount: b.attempts,
		}
		fillScoreStats(b.scores, &stat.AverageScore, &stat.MinScore, &stat.MaxScore)
		stats = append(stats, stat)
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].CourseID < stats[j].CourseID })
	return stats, nil
}

// ClassStats aggregates one class's attempts.
func (s *ReportService) ClassStats(f repository.ReportFilter, className string) (*model.ClassStat, error) {
	f.ClassName = className
	rows, err := s.ReportRepo.FinalRows(f)
	if err != nil {
		return nil, err
	}

	users := make(map[uint]struct{})
	var scores []int
	for _, row := range rows {
		users[row.UserID] = struct{}{}
		if row.TotalScore != nil {
			scores = append(scores, *row.TotalScore)
		}
	}

	stat := &model.ClassStat{
		ClassName:    className,
		Participants: int64(len(users)),
		AttemptCount: int64(len(rows)),
	}
	fillScoreStats(scores, &stat.AverageScore, &stat.MinScore, &stat.MaxScore)
	return stat, nil
}

// CriterionStats aggregates each of the ten criterion slots across the
// filtered attempts. Slots nobody filled are left out.
func (s *ReportService) CriterionStats(f repository.ReportFilter) ([]model.CriterionStat, error) {
	rows, err := s.ReportRepo.FinalRows(f)
	if err != nil {
		return nil, err
	}
	total := len(rows)
	if total == 0 {
		return []model.CriterionStat{}, nil
	}

	var stats []model.CriterionStat
	for slot := 1; slot <= model.MaxCriteria; slot++ {
		var scores []int
		label := ""
		for i := range rows {
			if v, ok := rows[i].SlotScore(slot); ok {
				scores = append(scores, v)
				if label == "" {
					label = model.CriterionScore{Label: rows[i].SlotLabel(slot)}.ShortName()
				}
			}
		}
		if len(scores) == 0 {
			continue
		}

		mean := meanOf(scores)
		stats = append(stats, model.CriterionStat{
			Slot:         slot,
			Label:        label,
			Count:        int64(len(scores)),
			AverageScore: round2(mean),
			StdDev:       round2(stdDevOf(scores, mean)),
			FillRate:     round2(float64(len(scores)) / float64(total) * 100),
		})
	}
	return stats, nil
}

// NonParticipants lists enrolled users with zero completed attempts in
// the filtered range. Either a class name or a course id scopes the
// enrollment set.
func (s *ReportService) NonParticipants(f repository.ReportFilter) ([]model.NonParticipant, error) {
	var enrollments []model.Enrollment
	var err error
	switch {
	case f.ClassName != "":
		enrollments, err = s.EnrollmentRepo.ListByClass(f.CompanyID, f.ClassName)
	case f.CourseID != 0:
		enrollments, err = s.EnrollmentRepo.ListByCourse(f.CompanyID, f.CourseID)
	default:
		return nil, util.ErrClassNotFound
	}
	if err != nil {
		return nil, err
	}

	participantIDs, err := s.ReportRepo.ParticipantIDs(f)
	if err != nil {
		return nil, err
	}
	participated := make(map[uint]struct{}, len(participantIDs))
	for _, id := range participantIDs {
		participated[id] = struct{}{}
	}

	classByUser := make(map[uint]string)
	var missing []uint
	for _, e := range enrollments {
		if _, ok := participated[e.UserID]; ok {
			continue
		}
		if _, seen := classByUser[e.UserID]; seen {
			continue
		}
		classByUser[e.UserID] = e.ClassName
		missing = append(missing, e.UserID)
	}

	users, err := s.UserRepo.FindByIDs(f.CompanyID, missing)
	if err != nil {
		return nil, err
	}

	result := make([]model.NonParticipant, 0, len(users))
	for _, u := range users {
		result = append(result, model.NonParticipant{
			UserID:    u.ID,
			FirstName: u.FirstName,
			LastName:  u.LastName,
			Email:     u.Email,
			ClassName: classByUser[u.ID],
		})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].UserID < result[j].UserID })
	return result, nil
}

// Popularity ranks the top-N courses by distinct attempt count, with
// enrolled-user counts as the secondary figure.
func (s *ReportService) Popularity(f repository.ReportFilter, topN int) ([]model.PopularityEntry, error) {
	if topN <= 0 {
		topN = 10
	}

	rows, err := s.ReportRepo.FinalRows(f)
	if err != nil {
		return nil, err
	}

	attempts := make(map[uint]int64)
	for _, row := range rows {
		attempts[row.CourseID]++
	}

	enrolled, err := s.EnrollmentRepo.CountByCourse(f.CompanyID)
	if err != nil {
		return nil, err
	}

	names := make(map[uint]string)
	if courses, err := s.CourseRepo.ListActive(f.CompanyID); err == nil {
		for _, c := range courses {
			names[c.ID] = c.Name
		}
	}

	entries := make([]model.PopularityEntry, 0, len(attempts))
	for courseID, count := range attempts {
		entries = append(entries, model.PopularityEntry{
			CourseID:      courseID,
			CourseName:    names[courseID],
			AttemptCount:  count,
			EnrolledCount: enrolled[courseID],
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].AttemptCount != entries[j].AttemptCount {
			return entries[i].AttemptCount > entries[j].AttemptCount
		}
		return entries[i].CourseID < entries[j].CourseID
	})
	if len(entries) > topN {
		entries = entries[:topN]
	}
	return entries, nil
}

func fillScoreStats(scores []int, avg *float64, min, max *int) {
	if len(scores) == 0 {
		return
	}
	*min, *max = scores[0], scores[0]
	sum := 0
	for _, v := range scores {
		sum += v
		if v < *min {
			*min = v
		}
		if v > *max {
			*max = v
		}
	}
	*avg = round2(float64(sum) / float64(len(scores)))
}

func meanOf(scores []int) float64 {
	sum := 0
	for _, v := range scores {
		sum += v
	}
	return float64(sum) / float64(len(scores))
}

func stdDevOf(scores []int, mean float64) float64 {
	if len(scores) < 2 {
		return 0
	}
	var sq float64
	for _, v := range scores {
		d := float64(v) - mean
		sq += d * d
	}
	return math.Sqrt(sq / float64(len(scores)))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
