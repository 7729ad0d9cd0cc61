// Package testcases holds end-to-end dialogue scenarios against a live chat
// model. They are skipped unless DEPOSITAGENT_RUN_LIVE_TESTS=1 and a
// ../config.json with an api_key is present.
package testcases

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/tbxark/depositagent/agent"
	"github.com/tbxark/depositagent/config"
	"github.com/tbxark/depositagent/extract"
	"github.com/tbxark/depositagent/types"
)

type engineOptions struct {
	textOnly bool
}

type EngineOption func(*engineOptions)

// WithTextExtractor uses only the fenced-JSON text extractor.
func WithTextExtractor() EngineOption {
	return func(o *engineOptions) {
		o.textOnly = true
	}
}

func InitChatModel(t *testing.T) *openai.ChatModel {
	t.Helper()
	if os.Getenv("DEPOSITAGENT_RUN_LIVE_TESTS") != "1" {
		t.Skip("set DEPOSITAGENT_RUN_LIVE_TESTS=1 to run live LLM tests")
		return nil
	}

	ctx := context.Background()
	conf, err := config.Load("../config.json")
	if err != nil {
		t.Skipf("failed to load config: %v", err)
		return nil
	}
	if conf.LLM.APIKey == "" {
		t.Skip("config.json api_key is empty")
		return nil
	}
	chatModel, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey:  conf.LLM.APIKey,
		Model:   conf.LLM.Model,
		BaseURL: conf.LLM.BaseURL,
	})
	if err != nil {
		t.Fatalf("failed to init chat model: %v", err)
		return nil
	}
	return chatModel
}

func NewTestEngine(t *testing.T, opts ...EngineOption) *agent.Engine {
	t.Helper()
	chatModel := InitChatModel(t)
	o := &engineOptions{}
	for _, opt := range opts {
		opt(o)
	}

	var extractor extract.Extractor = extract.NewTextExtractor(chatModel)
	if !o.textOnly {
		toolBased, err := extract.NewToolBasedExtractor(chatModel)
		if err != nil {
			t.Fatalf("failed to create extractor: %v", err)
		}
		extractor = extract.NewFailbackExtractor(toolBased, extractor)
	}
	return agent.NewEngine(
		agent.NewMemorySessionStore(time.Hour),
		extractor,
		agent.WithExtractionTimeout(2*time.Minute),
	)
}

// Session drives one dialogue and fails the test on engine errors.
type Session struct {
	t      *testing.T
	engine *agent.Engine
	ID     string
}

func StartSession(t *testing.T, engine *agent.Engine, variant types.Variant) *Session {
	t.Helper()
	resp, err := engine.Start(context.Background(), &agent.StartRequest{Variant: variant})
	if err != nil {
		t.Fatalf("failed to start session: %v", err)
	}
	t.Logf("welcome: %s", resp.WelcomePrompt)
	return &Session{t: t, engine: engine, ID: resp.SessionID}
}

func (s *Session) Say(message string) *agent.TurnResponse {
	s.t.Helper()
	resp, err := s.engine.Turn(context.Background(), &agent.TurnRequest{SessionID: s.ID, Message: message})
	if err != nil {
		s.t.Fatalf("turn %q failed: %v", message, err)
	}
	s.t.Logf("user: %s\nassistant: %s\nslots: %v", message, resp.NextPrompt, resp.Slots)
	return resp
}

func ExpectPhase(t *testing.T, resp *agent.TurnResponse, want types.Phase) {
	t.Helper()
	if resp.Phase != want {
		t.Fatalf("expected phase %s, got %s", want, resp.Phase)
	}
}

func ExpectSlot(t *testing.T, resp *agent.TurnResponse, field, want string) {
	t.Helper()
	if got := resp.Slots[field]; got != want {
		t.Errorf("expected %s = %q, got %q", field, want, got)
	}
}

func describe(resp *agent.TurnResponse) string {
	return fmt.Sprintf("phase=%s missing=%d violations=%d", resp.Phase, len(resp.Missing), len(resp.Violations))
}
