package service

import (
	"context"
	"encoding/json"
	"strings"

	"simedu_backend/internal/model"
	"simedu_backend/internal/repository"
	"simedu_backend/internal/util"
	"simedu_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CompletionMarker is the fixed phrase the assistant puts in its last
// reply of a session. A reply containing it is the final turn and must
// carry a complete score block.
const CompletionMarker = "[SIMULATION COMPLETE]"

// assistantProvider is the slice of the provider client the pipeline
// needs. *AssistantService satisfies it.
type assistantProvider interface {
	CreateThread(ctx context.Context) (string, error)
	PostMessage(ctx context.Context, threadID, role, content string) error
	RunAndWait(ctx context.Context, threadID, assistantRef string) error
	LatestAssistantReply(ctx context.Context, threadID string) (string, error)
}

// SimulationService drives the session pipeline: init, turn exchange,
// turn persistence, completion migration and report retrieval.
type SimulationService struct {
	SimRepo     *repository.SimulationRepository
	CourseRepo  *repository.CourseRepository
	SessionRepo *repository.SessionRepository
	Assistant   assistantProvider
}

func NewSimulationService(
	simRepo *repository.SimulationRepository,
	courseRepo *repository.CourseRepository,
	sessionRepo *repository.SessionRepository,
	assistant assistantProvider,
) *SimulationService {
	return &SimulationService{
		SimRepo:     simRepo,
		CourseRepo:  courseRepo,
		SessionRepo: sessionRepo,
		Assistant:   assistant,
	}
}

// SessionInit is the result of starting an attempt.
type SessionInit struct {
	SimulationName string `json:"simulationName"`
	DisplayName    string `json:"displayName"`
	Instructions   string `json:"instructions"`
	AssistantRef   string `json:"assistantRef"`
	ThreadID       string `json:"threadId"`
}

// InitSession resolves the simulation definition and obtains a fresh
// thread from the provider. Failure here is terminal for the attempt.
func (s *SimulationService) InitSession(ctx context.Context, simulationName string) (*SessionInit, error) {
	def, err := s.SimRepo.FindByName(simulationName)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrSimulationNotFound
		}
		return nil, err
	}

	threadID, err := s.Assistant.CreateThread(ctx)
	if err != nil {
		return nil, err
	}

	return &SessionInit{
		SimulationName: def.Name,
		DisplayName:    def.DisplayName,
		Instructions:   def.Instructions,
		AssistantRef:   def.AssistantRef,
		ThreadID:       threadID,
	}, nil
}

// TurnRequest is one user message of an open session.
type TurnRequest struct {
	Key          model.SessionKey
	AssistantRef string
	UserMessage  string
}

// TurnResult carries the assistant reply and, on the final turn, the
// extracted scores.
type TurnResult struct {
	Reply  string            `json:"reply"`
	Final  bool              `json:"final"`
	Scores *model.ScoreSlots `json:"scores,omitempty"`
}

// SendTurn submits the user message, waits for the run, classifies the
// reply and persists the turn. A final turn without a complete score
// block is rejected before anything is written.
func (s *SimulationService) SendTurn(ctx context.Context, req TurnRequest) (*TurnResult, error) {
	if err := s.Assistant.PostMessage(ctx, req.Key.ThreadID, "user", req.UserMessage); err != nil {
		return nil, err
	}
	if err := s.Assistant.RunAndWait(ctx, req.Key.ThreadID, req.AssistantRef); err != nil {
		return nil, err
	}
	reply, err := s.Assistant.LatestAssistantReply(ctx, req.Key.ThreadID)
	if err != nil {
		return nil, err
	}

	final := strings.Contains(reply, CompletionMarker)

	turn := model.InProgressTurn{
		UserID:         req.Key.UserID,
		CourseID:       req.Key.CourseID,
		CompanyID:      req.Key.CompanyID,
		SimulationName: req.Key.SimulationName,
		ThreadID:       req.Key.ThreadID,
		UserMessage:    req.UserMessage,
		AssistantReply: reply,
	}

	result := TurnResult{Reply: reply, Final: final}

	if final {
		slots, err := extractScores(reply)
		if err != nil {
			return nil, util.ErrIncompleteScores
		}
		if !slots.Complete() {
			return nil, util.ErrIncompleteScores
		}
		turn.ScoreSlots = *slots
		result.Scores = slots
	}

	if err := s.SessionRepo.AppendTurn(&turn); err != nil {
		return nil, err
	}
	return &result, nil
}

// scoreBlock is the JSON the assistant embeds in its final reply.
// Numeric fields arrive as JSON numbers and may be fractional; they are
// coerced to integers.
type scoreBlock struct {
	Criteria []struct {
		Label string       `json:"label"`
		Score *json.Number `json:"score"`
	} `json:"criteria"`
	TotalScore *json.Number `json:"total_score"`
}

func coerceScore(n *json.Number) *int {
	if n == nil {
		return nil
	}
	f, err := n.Float64()
	if err != nil {
		return nil
	}
	v := int(f)
	return &v
}

// extractScores pulls the score block out of a final reply. The block
// is the outermost JSON object in the text.
func extractScores(reply string) (*model.ScoreSlots, error) {
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start < 0 || end <= start {
		return nil, util.ErrIncompleteScores
	}

	dec := json.NewDecoder(strings.NewReader(reply[start : end+1]))
	dec.UseNumber()
	var block scoreBlock
	if err := dec.Decode(&block); err != nil {
		return nil, util.ErrIncompleteScores
	}

	var slots model.ScoreSlots
	pairs := make([]model.CriterionScore, 0, len(block.Criteria))
	for _, c := range block.Criteria {
		if c.Label == "" {
			continue
		}
		pairs = append(pairs, model.CriterionScore{Label: c.Label, Score: coerceScore(c.Score)})
	}
	if len(pairs) > model.MaxCriteria {
		pairs = pairs[:model.MaxCriteria]
	}
	slots.SetPairs(pairs)
	slots.TotalScore = coerceScore(block.TotalScore)
	return &slots, nil
}

// EndSession migrates the attempt from in-progress to completed
// storage. The migration is all-or-nothing; on failure the in-progress
// rows stay untouched and a retry observes them unchanged.
func (s *SimulationService) EndSession(key model.SessionKey) (int, error) {
	migrated, err := s.SessionRepo.MigrateToCompleted(key)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return 0, util.ErrNoSessionTurns
		}
		return 0, err
	}
	logger.Log.Info("session completed",
		zap.String("thread", key.ThreadID),
		zap.Uint("user", key.UserID),
		zap.String("simulation", key.SimulationName),
		zap.Int("turns", migrated),
	)
	return migrated, nil
}

// TranscriptTurn is one exchange of a finished attempt.
type TranscriptTurn struct {
	UserMessage    string `json:"userMessage"`
	AssistantReply string `json:"assistantReply"`
	CreatedAt      string `json:"createdAt"`
}

// CriterionResult is one scored criterion of the final turn, with the
// label split into its short name and explanation.
type CriterionResult struct {
	Name        string `json:"name"`
	Explanation string `json:"explanation"`
	Score       *int   `json:"score"`
}

// SessionReport is the retrieval view of a finished attempt.
type SessionReport struct {
	ThreadID       string            `json:"threadId"`
	SimulationName string            `json:"simulationName"`
	DisplayName    string            `json:"displayName"`
	TotalScore     *int              `json:"totalScore"`
	Criteria       []CriterionResult `json:"criteria"`
	Transcript     []TranscriptTurn  `json:"transcript"`
}

// SessionReport loads a completed attempt. The most recent row holds
// the authoritative scores; the full ordered set is the transcript.
func (s *SimulationService) SessionReport(companyID uint, threadID string) (*SessionReport, error) {
	rows, err := s.SessionRepo.ListCompletedByThread(companyID, threadID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, util.ErrNoSessionTurns
	}

	final := rows[len(rows)-1]
	report := SessionReport{
		ThreadID:       threadID,
		SimulationName: final.SimulationName,
		TotalScore:     final.TotalScore,
	}
	if names, err := s.SimRepo.DisplayNames(); err == nil {
		report.DisplayName = names[final.SimulationName]
	}
	for _, p := range final.Pairs() {
		report.Criteria = append(report.Criteria, CriterionResult{
			Name:        p.ShortName(),
			Explanation: p.Explanation(),
			Score:       p.Score,
		})
	}
	for _, row := range rows {
		report.Transcript = append(report.Transcript, TranscriptTurn{
			UserMessage:    row.UserMessage,
			AssistantReply: row.AssistantReply,
			CreatedAt:      row.CreatedAt.Format(util.TimeFormat),
		})
	}
	return &report, nil
}

// CourseSimulation is one resolved slot of a course.
type CourseSimulation struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Modality    string `json:"modality"`
}

// CourseSimulations resolves a course's slots into executable
// definitions, skipping slots whose definition is missing from the
// catalog.
func (s *SimulationService) CourseSimulations(companyID, courseID uint) ([]CourseSimulation, error) {
	course, err := s.CourseRepo.FindByID(companyID, courseID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}

	var sims []CourseSimulation
	for _, name := range course.SimulationSlots() {
		def, err := s.SimRepo.FindByName(name)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				logger.Log.Warn("course references unknown simulation",
					zap.Uint("course", courseID), zap.String("simulation", name))
				continue
			}
			return nil, err
		}
		sims = append(sims, CourseSimulation{
			Name:        def.Name,
			DisplayName: def.DisplayName,
			Modality:    def.Modality,
		})
	}
	return sims, nil
}
