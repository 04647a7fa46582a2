package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"simedu_backend/internal/config"
	"simedu_backend/internal/util"
	"simedu_backend/pkg/monitoring"
)

// AssistantService is the client for the external AI conversation
// provider (Assistants-style API: threads, messages, runs). The
// provider is eventually consistent; run completion is observed by
// polling with a fixed interval and a hard attempt cap.
type AssistantService struct {
	config config.AssistantConfig
	client *http.Client
}

func NewAssistantService(cfg config.AssistantConfig) *AssistantService {
	return &AssistantService{
		config: cfg,
		client: &http.Client{Timeout: 60 * time.Second},
	}
}

type assistantMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type threadResponse struct {
	ID string `json:"id"`
}

type runResponse struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	LastError *struct {
		Message string `json:"message"`
	} `json:"last_error,omitempty"`
}

type messageListResponse struct {
	Data []struct {
		Role    string `json:"role"`
		Content []struct {
			Type string `json:"type"`
			Text struct {
				Value string `json:"value"`
			} `json:"text"`
		} `json:"content"`
	} `json:"data"`
}

func (s *AssistantService) post(ctx context.Context, path string, body interface{}, out interface{}) error {
	var buf io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return err
		}
		buf = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.BaseURL+path, buf)
	if err != nil {
		return err
	}
	s.setHeaders(req)

	return s.do(req, out)
}

func (s *AssistantService) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.config.BaseURL+path, nil)
	if err != nil {
		return err
	}
	s.setHeaders(req)

	return s.do(req, out)
}

func (s *AssistantService) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.config.APIKey)
	req.Header.Set("OpenAI-Beta", "assistants=v2")
}

func (s *AssistantService) do(req *http.Request, out interface{}) error {
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", util.ErrAssistantUnavailable, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d: %s", util.ErrAssistantUnavailable, resp.StatusCode, string(body))
	}

	if out == nil {
		return nil
	}
	return json.Unmarshal(body, out)
}

// CreateThread obtains a fresh conversation thread from the provider.
func (s *AssistantService) CreateThread(ctx context.Context) (string, error) {
	var resp threadResponse
	if err := s.post(ctx, "/threads", map[string]interface{}{}, &resp); err != nil {
		return "", err
	}
	if resp.ID == "" {
		return "", fmt.Errorf("assistant API returned no thread id")
	}
	return resp.ID, nil
}

// PostMessage appends a message to a thread.
func (s *AssistantService) PostMessage(ctx context.Context, threadID, role, content string) error {
	path := fmt.Sprintf("/threads/%s/messages", threadID)
	return s.post(ctx, path, assistantMessage{Role: role, Content: content}, nil)
}

// StartRun asks the assistant to process the thread.
func (s *AssistantService) StartRun(ctx context.Context, threadID, assistantRef string) (string, error) {
	path := fmt.Sprintf("/threads/%s/runs", threadID)
	var resp runResponse
	if err := s.post(ctx, path, map[string]string{"assistant_id": assistantRef}, &resp); err != nil {
		return "", err
	}
	if resp.ID == "" {
		return "", fmt.Errorf("assistant API returned no run id")
	}
	return resp.ID, nil
}

// GetRunStatus fetches the state of a run.
func (s *AssistantService) GetRunStatus(ctx context.Context, threadID, runID string) (string, error) {
	path := fmt.Sprintf("/threads/%s/runs/%s", threadID, runID)
	var resp runResponse
	if err := s.get(ctx, path, &resp); err != nil {
		return "", err
	}
	return resp.Status, nil
}

// LatestAssistantReply returns the text of the most recent assistant
// message in a thread.
func (s *AssistantService) LatestAssistantReply(ctx context.Context, threadID string) (string, error) {
	path := fmt.Sprintf("/threads/%s/messages?order=desc&limit=10", threadID)
	var resp messageListResponse
	if err := s.get(ctx, path, &resp); err != nil {
		return "", err
	}
	for _, m := range resp.Data {
		if m.Role != "assistant" {
			continue
		}
		for _, c := range m.Content {
			if c.Type == "text" && c.Text.Value != "" {
				return c.Text.Value, nil
			}
		}
	}
	return "", fmt.Errorf("assistant API returned no assistant message")
}

// RunAndWait starts a run and polls its status at the configured
// interval for at most PollMaxAttempts attempts. It surfaces
// ErrRunTimeout when the bound is exceeded and ErrRunFailed when the
// provider reports a terminal failure. No state is committed on either.
func (s *AssistantService) RunAndWait(ctx context.Context, threadID, assistantRef string) error {
	runID, err := s.StartRun(ctx, threadID, assistantRef)
	if err != nil {
		return err
	}

	for attempt := 1; attempt <= s.config.PollMaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.config.PollInterval):
		}

		status, err := s.GetRunStatus(ctx, threadID, runID)
		if err != nil {
			return err
		}

		switch status {
		case "completed":
			monitoring.AssistantPollAttempts.Observe(float64(attempt))
			return nil
		case "failed", "cancelled", "expired":
			return util.ErrRunFailed
		}
	}

	return util.ErrRunTimeout
}
