package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"simedu_backend/internal/config"
	"simedu_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// assistantStub fakes the provider API. statuses is the sequence of run
// states successive status polls observe.
type assistantStub struct {
	statuses []string
	polls    int
	reply    string
}

func (s *assistantStub) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /threads", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"id": "thread_1"})
	})
	mux.HandleFunc("POST /threads/thread_1/messages", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("{}"))
	})
	mux.HandleFunc("POST /threads/thread_1/runs", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"id": "run_1"})
	})
	mux.HandleFunc("GET /threads/thread_1/runs/run_1", func(w http.ResponseWriter, r *http.Request) {
		status := s.statuses[len(s.statuses)-1]
		if s.polls < len(s.statuses) {
			status = s.statuses[s.polls]
		}
		s.polls++
		json.NewEncoder(w).Encode(map[string]string{"id": "run_1", "status": status})
	})
	mux.HandleFunc("GET /threads/thread_1/messages", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"data":[{"role":"assistant","content":[{"type":"text","text":{"value":%q}}]}]}`, s.reply)
	})
	return mux
}

func newAssistantClient(t *testing.T, stub *assistantStub, maxAttempts int) (*AssistantService, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(stub.handler())
	t.Cleanup(srv.Close)

	return NewAssistantService(config.AssistantConfig{
		BaseURL:         srv.URL,
		APIKey:          "test-key",
		PollInterval:    time.Millisecond,
		PollMaxAttempts: maxAttempts,
	}), srv
}

func TestAssistantSessionRoundTrip(t *testing.T) {
	stub := &assistantStub{
		statuses: []string{"queued", "in_progress", "completed"},
		reply:    "Tell me about your team.",
	}
	svc, _ := newAssistantClient(t, stub, 10)
	ctx := context.Background()

	threadID, err := svc.CreateThread(ctx)
	require.NoError(t, err)
	assert.Equal(t, "thread_1", threadID)

	require.NoError(t, svc.PostMessage(ctx, threadID, "user", "Hi"))
	require.NoError(t, svc.RunAndWait(ctx, threadID, "asst_1"))
	assert.Equal(t, 3, stub.polls)

	reply, err := svc.LatestAssistantReply(ctx, threadID)
	require.NoError(t, err)
	assert.Equal(t, "Tell me about your team.", reply)
}

func TestRunAndWaitTimesOutAfterMaxAttempts(t *testing.T) {
	stub := &assistantStub{statuses: []string{"in_progress"}}
	svc, _ := newAssistantClient(t, stub, 3)

	err := svc.RunAndWait(context.Background(), "thread_1", "asst_1")
	assert.Equal(t, util.ErrRunTimeout, err)
	assert.Equal(t, 3, stub.polls)
}

func TestRunAndWaitSurfacesProviderFailure(t *testing.T) {
	for _, status := range []string{"failed", "cancelled", "expired"} {
		stub := &assistantStub{statuses: []string{status}}
		svc, _ := newAssistantClient(t, stub, 10)

		err := svc.RunAndWait(context.Background(), "thread_1", "asst_1")
		assert.Equal(t, util.ErrRunFailed, err, "status %s", status)
		assert.Equal(t, 1, stub.polls, "status %s", status)
	}
}

func TestRunAndWaitHonorsContextCancellation(t *testing.T) {
	stub := &assistantStub{statuses: []string{"in_progress"}}
	srv := httptest.NewServer(stub.handler())
	t.Cleanup(srv.Close)

	// The deadline falls inside the first poll wait.
	svc := NewAssistantService(config.AssistantConfig{
		BaseURL:         srv.URL,
		PollInterval:    time.Second,
		PollMaxAttempts: 1000,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := svc.RunAndWait(ctx, "thread_1", "asst_1")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestProviderErrorsWrapUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"overloaded"}`, http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	svc := NewAssistantService(config.AssistantConfig{
		BaseURL: srv.URL, PollInterval: time.Millisecond, PollMaxAttempts: 1,
	})

	_, err := svc.CreateThread(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, util.ErrAssistantUnavailable))
	assert.True(t, strings.Contains(err.Error(), "503"))
}

func TestAssistantRequestHeaders(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		json.NewEncoder(w).Encode(map[string]string{"id": "thread_1"})
	}))
	t.Cleanup(srv.Close)

	svc := NewAssistantService(config.AssistantConfig{BaseURL: srv.URL, APIKey: "secret"})
	_, err := svc.CreateThread(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Bearer secret", got.Get("Authorization"))
	assert.Equal(t, "assistants=v2", got.Get("OpenAI-Beta"))
}
