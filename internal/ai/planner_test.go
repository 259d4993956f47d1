package ai

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	openai "github.com/sashabaranov/go-openai"

	"github.com/calebwray/theotime/internal/database"
	"github.com/calebwray/theotime/internal/model"
	"github.com/calebwray/theotime/internal/store"
)

type fakeCompleter struct {
	content string
	err     error
	calls   int
}

func (f *fakeCompleter) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.calls++
	if f.err != nil {
		return openai.ChatCompletionResponse{}, f.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: f.content}},
		},
	}, nil
}

func setupPlanner(t *testing.T, fake *fakeCompleter) (*Planner, *store.SettingStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	settings := store.NewSettingStore(db)
	planner := NewPlanner(settings, slog.New(slog.NewTextHandler(io.Discard, nil)))
	planner.newClient = func(string) completer { return fake }
	return planner, settings
}

func set(t *testing.T, ss *store.SettingStore, key, value string) {
	t.Helper()
	if _, err := ss.Set(key, &value, nil); err != nil {
		t.Fatalf("set %s: %v", key, err)
	}
}

func TestSuggestDisabledByDefault(t *testing.T) {
	planner, _ := setupPlanner(t, &fakeCompleter{})

	_, err := planner.Suggest(t.Context(), Request{Topic: "kindness"})
	if !errors.Is(err, ErrDisabled) {
		t.Errorf("err = %v, want ErrDisabled", err)
	}
}

func TestSuggestRequiresAPIKey(t *testing.T) {
	planner, settings := setupPlanner(t, &fakeCompleter{})
	set(t, settings, model.SettingAIEnabled, "true")

	_, err := planner.Suggest(t.Context(), Request{Topic: "kindness"})
	if !errors.Is(err, ErrNotConfigured) {
		t.Errorf("err = %v, want ErrNotConfigured", err)
	}
}

func TestSuggestChildGate(t *testing.T) {
	planner, settings := setupPlanner(t, &fakeCompleter{content: "{}"})
	set(t, settings, model.SettingAIEnabled, "true")
	set(t, settings, model.SettingOpenAIAPIKey, "sk-test")

	_, err := planner.Suggest(t.Context(), Request{Topic: "kindness", ForChild: true})
	if !errors.Is(err, ErrDisabled) {
		t.Errorf("child request without child_ai_enabled: err = %v, want ErrDisabled", err)
	}

	set(t, settings, model.SettingChildAIEnabled, "true")
	if _, err := planner.Suggest(t.Context(), Request{Topic: "kindness", ForChild: true}); err != nil {
		t.Errorf("child request with gate open: %v", err)
	}
}

func TestSuggestParsesJSON(t *testing.T) {
	fake := &fakeCompleter{content: `{"title":"Kindness","bible_reading":"Luke 10","activities":["role play"],"songs":["song 1"],"notes":"short"}`}
	planner, settings := setupPlanner(t, fake)
	set(t, settings, model.SettingAIEnabled, "true")
	set(t, settings, model.SettingOpenAIAPIKey, "sk-test")

	s, err := planner.Suggest(t.Context(), Request{Topic: "kindness"})
	if err != nil {
		t.Fatalf("suggest: %v", err)
	}
	if s.Title != "Kindness" || s.BibleReading != "Luke 10" {
		t.Errorf("suggestion = %+v", s)
	}
	if len(s.Activities) != 1 || s.Activities[0] != "role play" {
		t.Errorf("activities = %v", s.Activities)
	}
}

func TestSuggestProseFallsBackToNotes(t *testing.T) {
	fake := &fakeCompleter{content: "Here are some thoughts on kindness..."}
	planner, settings := setupPlanner(t, fake)
	set(t, settings, model.SettingAIEnabled, "true")
	set(t, settings, model.SettingOpenAIAPIKey, "sk-test")

	s, err := planner.Suggest(t.Context(), Request{Topic: "kindness"})
	if err != nil {
		t.Fatalf("suggest: %v", err)
	}
	if s.Title != "" || s.Notes != fake.content {
		t.Errorf("prose reply should land in notes: %+v", s)
	}
}

func TestSuggestStripsCodeFence(t *testing.T) {
	fake := &fakeCompleter{content: "```json\n{\"title\":\"Fenced\"}\n```"}
	planner, settings := setupPlanner(t, fake)
	set(t, settings, model.SettingAIEnabled, "true")
	set(t, settings, model.SettingOpenAIAPIKey, "sk-test")

	s, err := planner.Suggest(t.Context(), Request{Topic: "kindness"})
	if err != nil {
		t.Fatalf("suggest: %v", err)
	}
	if s.Title != "Fenced" {
		t.Errorf("suggestion = %+v", s)
	}
}

func TestSuggestDoesNotRetryAuthErrors(t *testing.T) {
	fake := &fakeCompleter{err: &openai.APIError{HTTPStatusCode: 401}}
	planner, settings := setupPlanner(t, fake)
	set(t, settings, model.SettingAIEnabled, "true")
	set(t, settings, model.SettingOpenAIAPIKey, "sk-bad")

	_, err := planner.Suggest(t.Context(), Request{Topic: "kindness"})
	if err == nil {
		t.Fatal("expected error")
	}
	if fake.calls != 1 {
		t.Errorf("auth failure retried %d times, want 1 call", fake.calls)
	}
}
