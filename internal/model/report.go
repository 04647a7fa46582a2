package model

// Report DTOs. JSON keys keep the platform's established report
// vocabulary so existing dashboards keep parsing.

// ReportSummary is the headline dashboard block.
type ReportSummary struct {
	ActiveCourses     int64 `json:"aktifEgitimSayisi"`
	ActiveUsers       int64 `json:"aktifKullaniciSayisi"`
	ActiveEnrollments int64 `json:"aktifKayitSayisi"`
	CompletedAttempts int64 `json:"tamamlananSimulasyonSayisi"`
}

// MonthlyStat is one point of the monthly time series.
type MonthlyStat struct {
	Month        string  `json:"ay"` // "2006-01"
	AttemptCount int64   `json:"denemeSayisi"`
	Participants int64   `json:"katilimciSayisi"`
	AverageScore float64 `json:"ortalamaPuan"`
}

// CourseStat aggregates completed attempts of one course.
type CourseStat struct {
	CourseID     uint    `json:"egitimId"`
	CourseName   string  `json:"egitimAdi"`
	Participants int64   `json:"katilimciSayisi"`
	AttemptCount int64   `json:"denemeSayisi"`
	AverageScore float64 `json:"ortalamaPuan"`
	MinScore     int     `json:"minimumPuan"`
	MaxScore     int     `json:"maksimumPuan"`
}

// ClassStat has the same shape as CourseStat, scoped to one class.
type ClassStat struct {
	ClassName    string  `json:"sinifAdi"`
	Participants int64   `json:"katilimciSayisi"`
	AttemptCount int64   `json:"denemeSayisi"`
	AverageScore float64 `json:"ortalamaPuan"`
	MinScore     int     `json:"minimumPuan"`
	MaxScore     int     `json:"maksimumPuan"`
}

// CriterionStat aggregates one of the ten criterion slots across the
// filtered attempts. Slots with zero observations are not reported.
type CriterionStat struct {
	Slot         int     `json:"slot"`
	Label        string  `json:"kriter"`
	Count        int64   `json:"denemeSayisi"`
	AverageScore float64 `json:"ortalamaPuan"`
	StdDev       float64 `json:"standartSapma"`
	FillRate     float64 `json:"doldurmaOrani"` // percent of attempts with the slot populated
}

// NonParticipant is an enrolled user without a completed attempt in the
// filtered range.
type NonParticipant struct {
	UserID    uint   `json:"kullaniciId"`
	FirstName string `json:"ad"`
	LastName  string `json:"soyad"`
	Email     string `json:"eposta"`
	ClassName string `json:"sinifAdi"`
}

// PopularityEntry ranks a course by distinct attempt count; the
// enrolled-user count shows how many learners could access it.
type PopularityEntry struct {
	CourseID      uint   `json:"egitimId"`
	CourseName    string `json:"egitimAdi"`
	AttemptCount  int64  `json:"denemeSayisi"`
	EnrolledCount int64  `json:"atananKullaniciSayisi"`
}
