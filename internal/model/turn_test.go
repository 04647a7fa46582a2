package model

import (
	"testing"
	"time"
)

func intPtr(v int) *int { return &v }

func TestCriterionScoreLabelSplit(t *testing.T) {
	c := CriterionScore{Label: "Rapport: opened the call warmly"}
	if got := c.ShortName(); got != "Rapport" {
		t.Fatalf("ShortName = %q", got)
	}
	if got := c.Explanation(); got != "opened the call warmly" {
		t.Fatalf("Explanation = %q", got)
	}

	bare := CriterionScore{Label: "Rapport"}
	if got := bare.ShortName(); got != "Rapport" {
		t.Fatalf("ShortName = %q", got)
	}
	if got := bare.Explanation(); got != "" {
		t.Fatalf("Explanation = %q, want empty", got)
	}
}

func TestScoreSlotsPairsRoundTrip(t *testing.T) {
	var s ScoreSlots
	s.SetPairs([]CriterionScore{
		{Label: "Rapport", Score: intPtr(8)},
		{Label: "Discovery", Score: intPtr(6)},
	})

	pairs := s.Pairs()
	if len(pairs) != 2 {
		t.Fatalf("got %d pairs", len(pairs))
	}
	if pairs[0].Label != "Rapport" || *pairs[0].Score != 8 {
		t.Fatalf("unexpected first pair: %+v", pairs[0])
	}

	// Slots beyond the given pairs are cleared.
	if s.Criterion3 != "" || s.Score3 != nil {
		t.Fatalf("slot 3 not cleared")
	}

	// Setting fewer pairs clears the rest.
	s.SetPairs([]CriterionScore{{Label: "Closing", Score: intPtr(5)}})
	if got := len(s.Pairs()); got != 1 {
		t.Fatalf("got %d pairs after reset", got)
	}
}

func TestScoreSlotsSetPairsCapsAtMax(t *testing.T) {
	pairs := make([]CriterionScore, MaxCriteria+3)
	for i := range pairs {
		pairs[i] = CriterionScore{Label: "C", Score: intPtr(i)}
	}

	var s ScoreSlots
	s.SetPairs(pairs)
	if got := len(s.Pairs()); got != MaxCriteria {
		t.Fatalf("got %d pairs, want %d", got, MaxCriteria)
	}
}

func TestScoreSlotsComplete(t *testing.T) {
	var s ScoreSlots
	if s.Complete() {
		t.Fatal("empty slots reported complete")
	}

	s.TotalScore = intPtr(70)
	if s.Complete() {
		t.Fatal("total without criteria reported complete")
	}

	s.SetPairs([]CriterionScore{{Label: "Rapport", Score: nil}})
	s.TotalScore = intPtr(70)
	if s.Complete() {
		t.Fatal("nil criterion score reported complete")
	}

	s.SetPairs([]CriterionScore{{Label: "Rapport", Score: intPtr(0)}})
	s.TotalScore = intPtr(0)
	if !s.Complete() {
		t.Fatal("zero scores are valid and must count as complete")
	}
}

func TestSlotAccessorsBounds(t *testing.T) {
	var s ScoreSlots
	s.Criterion1 = "Rapport"
	s.Score1 = intPtr(9)

	if v, ok := s.SlotScore(1); !ok || v != 9 {
		t.Fatalf("SlotScore(1) = %d, %v", v, ok)
	}
	if _, ok := s.SlotScore(0); ok {
		t.Fatal("SlotScore(0) accepted")
	}
	if _, ok := s.SlotScore(MaxCriteria + 1); ok {
		t.Fatal("SlotScore out of range accepted")
	}
	if got := s.SlotLabel(1); got != "Rapport" {
		t.Fatalf("SlotLabel(1) = %q", got)
	}
	if got := s.SlotLabel(99); got != "" {
		t.Fatalf("SlotLabel(99) = %q", got)
	}
}

func TestAsCompletedPreservesTurnData(t *testing.T) {
	turn := InProgressTurn{
		UserID:         1,
		CourseID:       2,
		CompanyID:      3,
		SimulationName: "sales_discovery",
		ThreadID:       "thread_1",
		UserMessage:    "Hi",
		AssistantReply: "Hello",
	}
	turn.CreatedAt = time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	turn.TotalScore = intPtr(80)

	rec := turn.AsCompleted()
	if rec.ThreadID != "thread_1" || rec.CompanyID != 3 {
		t.Fatalf("identity fields lost: %+v", rec)
	}
	if !rec.CreatedAt.Equal(turn.CreatedAt) {
		t.Fatalf("timestamp not preserved: %v", rec.CreatedAt)
	}
	if rec.TotalScore == nil || *rec.TotalScore != 80 {
		t.Fatal("scores not carried over")
	}
	if rec.ID != 0 {
		t.Fatalf("completed record must get a fresh id, got %d", rec.ID)
	}
}
