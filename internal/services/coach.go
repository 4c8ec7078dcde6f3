package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/arnold/okrmaster-api/internal/config"
	"github.com/arnold/okrmaster-api/internal/models"
	"github.com/go-playground/validator/v10"
	"github.com/sashabaranov/go-openai"
)

var (
	// ErrAIDisabled is returned when no AI API key is configured.
	ErrAIDisabled = errors.New("ai collaborator disabled")
	// ErrAIResponse flags an empty, unparsable or invalid model reply.
	ErrAIResponse = errors.New("invalid ai response")
)

const aiTemperature = 0.7

// Coach is the generative AI collaborator.
type Coach interface {
	// SuggestObjective refines a free-text idea into an objective with key results.
	SuggestObjective(ctx context.Context, idea string) (*models.Suggestion, error)
	// TransformKeyResult rephrases a superior's key result as an objective
	// the adopter can own.
	TransformKeyResult(ctx context.Context, keyResultTitle string) (*models.Suggestion, error)
	Coach(ctx context.Context, objective *models.Objective) (*models.Coaching, error)
	MonthlyReport(ctx context.Context, objectives []models.Objective) (*models.MonthlyReport, error)
}

// Global AI collaborator, nil when disabled.
var AI Coach

// CurrentCoach returns the installed collaborator or ErrAIDisabled.
func CurrentCoach() (Coach, error) {
	if AI == nil {
		return nil, ErrAIDisabled
	}
	return AI, nil
}

// InitAI installs a GeminiCoach when an API key is configured.
func InitAI(cfg *config.Config) {
	if !cfg.AIEnabled() {
		slog.Info("ai: no API key configured, AI endpoints disabled")
		AI = nil
		return
	}
	AI = NewGeminiCoach(cfg.AIAPIKey, cfg.AIBaseURL, cfg.AIModel, cfg.AITimeout)
	slog.Info("ai: collaborator enabled", "model", cfg.AIModel)
}

// GeminiCoach talks to Gemini through its OpenAI-compatible endpoint. Any
// OpenAI-compatible server works given the right base URL.
type GeminiCoach struct {
	client   *openai.Client
	model    string
	timeout  time.Duration
	validate *validator.Validate
}

func NewGeminiCoach(apiKey, baseURL, model string, timeout time.Duration) *GeminiCoach {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimSuffix(baseURL, "/")
	}
	return &GeminiCoach{
		client:   openai.NewClientWithConfig(cfg),
		model:    model,
		timeout:  timeout,
		validate: validator.New(),
	}
}

const (
	okrExpertRole   = "You are a world-class expert in OKRs (Objectives and Key Results). Always answer with a single JSON object and nothing else."
	strategistRole  = "You are an organizational strategy expert. Always answer with a single JSON object and nothing else."
	coachRole       = "You are a productivity and strategy coach. Always answer with a single JSON object and nothing else."
	consultantRole  = "You are a senior strategy consultant. Always answer with a single JSON object and nothing else."
	suggestionShape = `{"objectiveTitle": string, "keyResults": [{"title": string, "targetValue": number, "unit": string}]}`
	coachingShape   = `{"status": "On Track" | "At Risk" | "Off Track", "summary": string, "tips": [string]}`
	reportShape     = `{"executiveSummary": string, "nextMonthActions": [string], "adjustments": [{"objectiveId": string | null, "suggestion": string, "reason": string}]}`
)

func (g *GeminiCoach) SuggestObjective(ctx context.Context, idea string) (*models.Suggestion, error) {
	var out models.Suggestion
	if err := g.complete(ctx, okrExpertRole, suggestionPrompt(idea), &out); err != nil {
		return nil, fmt.Errorf("suggest objective: %w", err)
	}
	return &out, nil
}

func (g *GeminiCoach) TransformKeyResult(ctx context.Context, keyResultTitle string) (*models.Suggestion, error) {
	var out models.Suggestion
	if err := g.complete(ctx, strategistRole, transformPrompt(keyResultTitle), &out); err != nil {
		return nil, fmt.Errorf("transform key result: %w", err)
	}
	return &out, nil
}

func (g *GeminiCoach) Coach(ctx context.Context, objective *models.Objective) (*models.Coaching, error) {
	var out models.Coaching
	if err := g.complete(ctx, coachRole, coachingPrompt(objective), &out); err != nil {
		return nil, fmt.Errorf("coach objective %s: %w", objective.ID, err)
	}
	return &out, nil
}

func (g *GeminiCoach) MonthlyReport(ctx context.Context, objectives []models.Objective) (*models.MonthlyReport, error) {
	var out models.MonthlyReport
	if err := g.complete(ctx, consultantRole, reportPrompt(objectives), &out); err != nil {
		return nil, fmt.Errorf("monthly report: %w", err)
	}
	if out.NextMonthActions == nil {
		out.NextMonthActions = []string{}
	}
	if out.Adjustments == nil {
		out.Adjustments = []models.Adjustment{}
	}
	return &out, nil
}

// complete runs one JSON-mode chat completion and decodes the reply into out.
func (g *GeminiCoach) complete(ctx context.Context, system, prompt string, out any) error {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: aiTemperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return err
	}
	if len(resp.Choices) == 0 {
		return fmt.Errorf("%w: no choices", ErrAIResponse)
	}

	raw := ExtractJSON(resp.Choices[0].Message.Content)
	if raw == "" {
		return fmt.Errorf("%w: no JSON object in reply", ErrAIResponse)
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return fmt.Errorf("%w: %v", ErrAIResponse, err)
	}
	if err := g.validate.Struct(out); err != nil {
		return fmt.Errorf("%w: %v", ErrAIResponse, err)
	}
	return nil
}

func suggestionPrompt(idea string) string {
	return fmt.Sprintf(`The user wants to create an OKR from this idea: %q.

1. Refine the objective so it is inspiring and qualitative.
2. Suggest 3 key results that are quantitative, measurable, hard but achievable.

Answer in the language of the idea, as JSON shaped like:
%s`, idea, suggestionShape)
}

func transformPrompt(keyResultTitle string) string {
	return fmt.Sprintf(`I have this key result from my leader: %q.

I need to adopt it and turn it into my own OBJECTIVE.

1. Turn this numeric key result into an inspiring, qualitative objective for my level.
   Example: if the leader's key result is "Sell $1M", my objective could be "Build the most efficient sales machine in the industry".
2. Suggest 3 new, specific key results I could execute to reach that objective.

Answer in the language of the key result, as JSON shaped like:
%s`, keyResultTitle, suggestionShape)
}

func coachingPrompt(o *models.Objective) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Analyze this OKR and its current progress:\n\nObjective: %s\nKey results:\n", o.Title)
	for _, kr := range o.KeyResults {
		fmt.Fprintf(&b, "- %s: %g / %g %s\n", kr.Title, kr.CurrentValue, kr.TargetValue, kr.Unit)
	}
	fmt.Fprintf(&b, "\nAverage progress: %d%%\n\n", o.Progress())
	b.WriteString("Give constructive feedback. If it is going badly, give tips to get back on course. ")
	b.WriteString("If it is going well, give tips to keep the momentum or be more ambitious.\n\n")
	fmt.Fprintf(&b, "Answer as JSON shaped like:\n%s", coachingShape)
	return b.String()
}

func reportPrompt(objectives []models.Objective) string {
	var b strings.Builder
	b.WriteString("I need a one-page monthly OKR report to send to my boss.\n\nThese are my OKRs and their current state:\n")
	for _, o := range objectives {
		fmt.Fprintf(&b, "\nID: %s\nObjective: %s\nKey results:\n", o.ID, o.Title)
		for _, kr := range o.KeyResults {
			fmt.Fprintf(&b, "   - %s: %g / %g %s\n", kr.Title, kr.CurrentValue, kr.TargetValue, kr.Unit)
		}
	}
	b.WriteString(`
Produce:
1. executiveSummary: a professional executive summary (max 3 lines) of my overall performance this month. Results oriented and honest.
2. nextMonthActions: 3-5 high-impact strategic actions for next month based on the weak spots you detect.
3. adjustments: flag objectives that look too easy (sandbagging) or impossible and suggest moving numbers up or down, and why. Use the objective ID, or null for general advice. Leave empty if everything looks right.

`)
	fmt.Fprintf(&b, "Answer as JSON shaped like:\n%s", reportShape)
	return b.String()
}
