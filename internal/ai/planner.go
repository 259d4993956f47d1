// Package ai generates worship plan suggestions through the OpenAI API. The
// API key and model live in settings so a parent can change them at runtime.
package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sethvargo/go-retry"

	"github.com/calebwray/theotime/internal/model"
	"github.com/calebwray/theotime/internal/store"
)

const defaultModel = "gpt-4o-mini"

// ErrDisabled is returned when AI features are switched off in settings.
var ErrDisabled = errors.New("ai suggestions are disabled")

// ErrNotConfigured is returned when no API key has been saved.
var ErrNotConfigured = errors.New("no OpenAI API key configured")

// Suggestion is one proposed worship session outline.
type Suggestion struct {
	Title        string   `json:"title"`
	BibleReading string   `json:"bible_reading"`
	Activities   []string `json:"activities"`
	Songs        []string `json:"songs"`
	Notes        string   `json:"notes"`
}

// Request shapes a suggestion prompt.
type Request struct {
	Topic    string
	Profiles []model.ChildProfile
	ForChild bool
}

// Planner asks the configured OpenAI model for worship session ideas.
type Planner struct {
	settings *store.SettingStore
	logger   *slog.Logger

	// newClient is swappable in tests.
	newClient func(apiKey string) completer
}

type completer interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

func NewPlanner(settings *store.SettingStore, logger *slog.Logger) *Planner {
	return &Planner{
		settings: settings,
		logger:   logger.With("component", "ai"),
		newClient: func(apiKey string) completer {
			return openai.NewClient(apiKey)
		},
	}
}

// Suggest produces a worship outline for the given topic and audience. The
// key and model are read per call so settings changes apply immediately.
func (p *Planner) Suggest(ctx context.Context, req Request) (*Suggestion, error) {
	enabled, err := p.settings.GetBool(model.SettingAIEnabled, false)
	if err != nil {
		return nil, fmt.Errorf("read ai setting: %w", err)
	}
	if !enabled {
		return nil, ErrDisabled
	}
	if req.ForChild {
		childOK, err := p.settings.GetBool(model.SettingChildAIEnabled, false)
		if err != nil {
			return nil, fmt.Errorf("read child ai setting: %w", err)
		}
		if !childOK {
			return nil, ErrDisabled
		}
	}

	apiKey, err := p.settings.GetValue(model.SettingOpenAIAPIKey, "")
	if err != nil {
		return nil, fmt.Errorf("read api key: %w", err)
	}
	if apiKey == "" {
		return nil, ErrNotConfigured
	}
	modelName, err := p.settings.GetValue(model.SettingOpenAIModel, defaultModel)
	if err != nil {
		return nil, fmt.Errorf("read model setting: %w", err)
	}

	client := p.newClient(apiKey)
	chatReq := openai.ChatCompletionRequest{
		Model: modelName,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt(req.ForChild)},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt(req)},
		},
	}

	var resp openai.ChatCompletionResponse
	backoff := retry.WithMaxRetries(3, retry.NewExponential(500*time.Millisecond))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		var callErr error
		resp, callErr = client.CreateChatCompletion(ctx, chatReq)
		if callErr == nil {
			return nil
		}
		var apiErr *openai.APIError
		if errors.As(callErr, &apiErr) && apiErr.HTTPStatusCode >= 400 && apiErr.HTTPStatusCode < 500 && apiErr.HTTPStatusCode != 429 {
			return callErr
		}
		return retry.RetryableError(callErr)
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("empty completion response")
	}

	return parseSuggestion(resp.Choices[0].Message.Content), nil
}

func systemPrompt(forChild bool) string {
	base := "You help a family plan Bible-based worship sessions. " +
		"Respond with a JSON object containing the keys title, bible_reading, " +
		"activities (array of strings), songs (array of strings), and notes."
	if forChild {
		base += " The request comes from a child: keep suggestions simple, " +
			"encouraging, and age-appropriate, and never include external links."
	}
	return base
}

func userPrompt(req Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Suggest a family worship session about: %s\n", req.Topic)
	for _, p := range req.Profiles {
		fmt.Fprintf(&b, "Child")
		if p.Username != nil {
			fmt.Fprintf(&b, " %s", *p.Username)
		}
		if p.Age != nil {
			fmt.Fprintf(&b, ", age %d", *p.Age)
		}
		if p.Interests != nil {
			fmt.Fprintf(&b, ", interests: %s", *p.Interests)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// parseSuggestion reads the model's JSON reply. Models occasionally answer in
// prose or wrap the JSON in a code fence; anything unparseable is kept as
// free-form notes rather than discarded.
func parseSuggestion(content string) *Suggestion {
	trimmed := strings.TrimSpace(content)
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)

	var s Suggestion
	if err := json.Unmarshal([]byte(trimmed), &s); err != nil {
		return &Suggestion{Notes: content}
	}
	return &s
}
