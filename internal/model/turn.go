package model

import (
	"strings"
	"time"
)

// CriterionScore is one scored rubric criterion. Label carries a short
// name and an optional free-text explanation separated by ":". Score is
// nil when the criterion was not applicable for an attempt, which is
// distinct from zero.
type CriterionScore struct {
	Label string `json:"label"`
	Score *int   `json:"score"`
}

// ShortName returns the part of the label before the first ":".
func (c CriterionScore) ShortName() string {
	name, _, _ := strings.Cut(c.Label, ":")
	return strings.TrimSpace(name)
}

// Explanation returns the part of the label after the first ":", or ""
// when the label has no explanation.
func (c CriterionScore) Explanation() string {
	_, expl, _ := strings.Cut(c.Label, ":")
	return strings.TrimSpace(expl)
}

// ScoreSlots holds the ten fixed criterion slots plus the total. It is
// embedded in both the in-progress turns and the completed records so
// migration copies column-for-column. Intermediate turns carry all-nil
// scores; only the final turn of a session is fully populated.
type ScoreSlots struct {
	Criterion1  string `gorm:"size:255" json:"criterion1,omitempty"`
	Score1      *int   `json:"score1,omitempty"`
	Criterion2  string `gorm:"size:255" json:"criterion2,omitempty"`
	Score2      *int   `json:"score2,omitempty"`
	Criterion3  string `gorm:"size:255" json:"criterion3,omitempty"`
	Score3      *int   `json:"score3,omitempty"`
	Criterion4  string `gorm:"size:255" json:"criterion4,omitempty"`
	Score4      *int   `json:"score4,omitempty"`
	Criterion5  string `gorm:"size:255" json:"criterion5,omitempty"`
	Score5      *int   `json:"score5,omitempty"`
	Criterion6  string `gorm:"size:255" json:"criterion6,omitempty"`
	Score6      *int   `json:"score6,omitempty"`
	Criterion7  string `gorm:"size:255" json:"criterion7,omitempty"`
	Score7      *int   `json:"score7,omitempty"`
	Criterion8  string `gorm:"size:255" json:"criterion8,omitempty"`
	Score8      *int   `json:"score8,omitempty"`
	Criterion9  string `gorm:"size:255" json:"criterion9,omitempty"`
	Score9      *int   `json:"score9,omitempty"`
	Criterion10 string `gorm:"size:255" json:"criterion10,omitempty"`
	Score10     *int   `json:"score10,omitempty"`
	TotalScore  *int   `json:"totalScore,omitempty"`
}

// MaxCriteria is the number of fixed criterion slots per record.
const MaxCriteria = 10

// Pairs returns the populated criterion slots in order. A slot counts
// as populated when its label is set.
func (s *ScoreSlots) Pairs() []CriterionScore {
	labels := [MaxCriteria]string{
		s.Criterion1, s.Criterion2, s.Criterion3, s.Criterion4, s.Criterion5,
		s.Criterion6, s.Criterion7, s.Criterion8, s.Criterion9, s.Criterion10,
	}
	scores := [MaxCriteria]*int{
		s.Score1, s.Score2, s.Score3, s.Score4, s.Score5,
		s.Score6, s.Score7, s.Score8, s.Score9, s.Score10,
	}
	var pairs []CriterionScore
	for i := 0; i < MaxCriteria; i++ {
		if labels[i] == "" {
			continue
		}
		pairs = append(pairs, CriterionScore{Label: labels[i], Score: scores[i]})
	}
	return pairs
}

// SetPairs fills the slots from the given pairs, at most MaxCriteria.
func (s *ScoreSlots) SetPairs(pairs []CriterionScore) {
	labels := [MaxCriteria]*string{
		&s.Criterion1, &s.Criterion2, &s.Criterion3, &s.Criterion4, &s.Criterion5,
		&s.Criterion6, &s.Criterion7, &s.Criterion8, &s.Criterion9, &s.Criterion10,
	}
	scores := [MaxCriteria]**int{
		&s.Score1, &s.Score2, &s.Score3, &s.Score4, &s.Score5,
		&s.Score6, &s.Score7, &s.Score8, &s.Score9, &s.Score10,
	}
	for i := 0; i < MaxCriteria; i++ {
		if i < len(pairs) {
			*labels[i] = pairs[i].Label
			*scores[i] = pairs[i].Score
		} else {
			*labels[i] = ""
			*scores[i] = nil
		}
	}
}

// SlotScore returns the score of slot i (1-based) and whether the slot
// carries a score at all.
func (s *ScoreSlots) SlotScore(i int) (int, bool) {
	scores := [MaxCriteria]*int{
		s.Score1, s.Score2, s.Score3, s.Score4, s.Score5,
		s.Score6, s.Score7, s.Score8, s.Score9, s.Score10,
	}
	if i < 1 || i > MaxCriteria || scores[i-1] == nil {
		return 0, false
	}
	return *scores[i-1], true
}

// SlotLabel returns the label of slot i (1-based).
func (s *ScoreSlots) SlotLabel(i int) string {
	labels := [MaxCriteria]string{
		s.Criterion1, s.Criterion2, s.Criterion3, s.Criterion4, s.Criterion5,
		s.Criterion6, s.Criterion7, s.Criterion8, s.Criterion9, s.Criterion10,
	}
	if i < 1 || i > MaxCriteria {
		return ""
	}
	return labels[i-1]
}

// Complete reports whether the slots form a valid final score set: a
// total plus at least one criterion, every populated criterion carrying
// a score.
func (s *ScoreSlots) Complete() bool {
	if s.TotalScore == nil {
		return false
	}
	pairs := s.Pairs()
	if len(pairs) == 0 {
		return false
	}
	for _, p := range pairs {
		if p.Score == nil {
			return false
		}
	}
	return true
}

// InProgressTurn is one exchange of an open simulation session. Rows
// accumulate per thread until the session is ended, after which they
// are migrated to completed_score_records and removed.
type InProgressTurn struct {
	BaseModel
	UserID         uint   `gorm:"not null;index:idx_turns_thread" json:"userId"`
	CourseID       uint   `gorm:"not null" json:"courseId"`
	CompanyID      uint   `gorm:"not null;index" json:"companyId"`
	SimulationName string `gorm:"size:100;not null" json:"simulationName"`
	ThreadID       string `gorm:"size:100;not null;index:idx_turns_thread" json:"threadId"`
	UserMessage    string `gorm:"type:text" json:"userMessage"`
	AssistantReply string `gorm:"type:text" json:"assistantReply"`
	ScoreSlots     `gorm:"embedded"`
}

func (InProgressTurn) TableName() string {
	return "in_progress_turns"
}

// CompletedScoreRecord is the durable counterpart of an InProgressTurn,
// written once at session end with the original turn timestamps and
// never updated. For a thread, the most recent row carries the
// authoritative final scores.
type CompletedScoreRecord struct {
	BaseModel
	UserID         uint   `gorm:"not null;index" json:"userId"`
	CourseID       uint   `gorm:"not null;index" json:"courseId"`
	CompanyID      uint   `gorm:"not null;index" json:"companyId"`
	SimulationName string `gorm:"size:100;not null;index" json:"simulationName"`
	ThreadID       string `gorm:"size:100;not null;index" json:"threadId"`
	UserMessage    string `gorm:"type:text" json:"userMessage"`
	AssistantReply string `gorm:"type:text" json:"assistantReply"`
	ScoreSlots     `gorm:"embedded"`
}

func (CompletedScoreRecord) TableName() string {
	return "completed_score_records"
}

// SessionKey identifies one learner's attempt at one simulation.
type SessionKey struct {
	UserID         uint
	CourseID       uint
	CompanyID      uint
	SimulationName string
	ThreadID       string
}

// Turn timestamps are server-assigned; helper for the migration which
// must preserve them.
func (t *InProgressTurn) AsCompleted() CompletedScoreRecord {
	rec := CompletedScoreRecord{
		UserID:         t.UserID,
		CourseID:       t.CourseID,
		CompanyID:      t.CompanyID,
		SimulationName: t.SimulationName,
		ThreadID:       t.ThreadID,
		UserMessage:    t.UserMessage,
		AssistantReply: t.AssistantReply,
		ScoreSlots:     t.ScoreSlots,
	}
	rec.CreatedAt = t.CreatedAt
	rec.UpdatedAt = time.Now()
	return rec
}
