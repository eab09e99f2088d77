// Package classifier implements the generative intent classifier as an
// OpenAI-compatible chat completion with a JSON object response. The resolver
// treats the returned suggestion as untrusted and runs it through validation.
package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/harunnryd/kaizen/internal/config"
	"github.com/harunnryd/kaizen/internal/intent"

	openai "github.com/sashabaranov/go-openai"
)

const systemPrompt = `You are an assistant that parses user messages into structured intents for a task management agent.

IMPORTANT RULES:
1. Only use these tools: task_tool, scheduler_tool, approval_tool, preference_tool, proposal_tool, shell_tool
2. NEVER generate shell commands, system calls, or any code execution
3. NEVER output URLs, file paths, or external links
4. Keep responses focused on task management only

Available intents:
- add_task: Create a new task (needs: title)
- list_tasks: List open tasks
- done_task: Mark task complete (needs: task_id as integer)
- delete_task: Delete task permanently (needs: task_id as integer)
- daily_brief: Get daily summary
- approve: Approve a pending request (needs: approval_id)
- unknown: Cannot determine intent

Respond ONLY with valid JSON matching this schema:
{
  "intent": "add_task|list_tasks|done_task|delete_task|daily_brief|approve|unknown",
  "entities": {"task_id": 123, "title": "example", "approval_id": "abc"},
  "plan_steps": [{"tool": "task_tool", "action": "create", "params": {"title": "example"}}],
  "confidence": 0.95
}`

type OpenAIClassifier struct {
	client    *openai.Client
	model     string
	maxTokens int
}

func NewOpenAIClassifier(cfg config.ClassifierConfig) (*OpenAIClassifier, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("classifier api key is not configured")
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = config.DefaultClassifierModel
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = config.DefaultClassifierMaxTokens
	}

	return &OpenAIClassifier{
		client:    openai.NewClientWithConfig(clientCfg),
		model:     model,
		maxTokens: maxTokens,
	}, nil
}

func (c *OpenAIClassifier) Classify(ctx context.Context, text string) (*intent.Suggestion, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: "Parse this message: " + text},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0.1,
		MaxTokens:   c.maxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("classifier request: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("classifier returned no choices")
	}

	content := resp.Choices[0].Message.Content
	var suggestion intent.Suggestion
	if err := json.Unmarshal([]byte(content), &suggestion); err != nil {
		return nil, fmt.Errorf("classifier returned malformed JSON: %w", err)
	}

	slog.Debug("Classifier suggestion", "intent", suggestion.Intent, "confidence", suggestion.Confidence)
	return &suggestion, nil
}
