package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/yukikurage/pmo-timeline-api/internal/constants"
	"github.com/yukikurage/pmo-timeline-api/internal/models"
)

type AIService struct {
	client *openai.Client
	model  string
}

// GenerateRequest carries the text to analyse and the thread it belongs to.
type GenerateRequest struct {
	Text   string
	Thread models.Thread
	Now    time.Time
}

type GeneratedTask struct {
	Title    string     `json:"title"`
	Notes    string     `json:"notes"`
	Priority string     `json:"priority"`
	DueDate  *time.Time `json:"due_date"`
}

var _ TaskGenerator = (*AIService)(nil)

// NewAIService talks to the OpenAI API. An empty model selects GPT-4o.
func NewAIService(apiKey, model string) *AIService {
	return NewAIServiceWithConfig(openai.DefaultConfig(apiKey), model)
}

// NewAIServiceWithConfig is used to point the client at a different base URL.
func NewAIServiceWithConfig(cfg openai.ClientConfig, model string) *AIService {
	if model == "" {
		model = openai.GPT4o
	}
	return &AIService{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

// GenerateTasks extracts concrete tasks for a thread from free text using OpenAI GPT
func (s *AIService) GenerateTasks(ctx context.Context, req GenerateRequest) ([]GeneratedTask, error) {
	if s.client == nil {
		return nil, fmt.Errorf("OpenAI client not initialized")
	}

	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: s.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: buildPrompt(req),
				},
			},
			Temperature: 0.3,
		},
	)

	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	content := stripCodeFence(resp.Choices[0].Message.Content)

	var tasks []GeneratedTask
	if err := json.Unmarshal([]byte(content), &tasks); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w (response: %s)", err, content)
	}

	return tasks, nil
}

func buildPrompt(req GenerateRequest) string {
	return fmt.Sprintf(`You are a project assistant. Extract concrete tasks for the thread below from the text.

Current time: %s
Thread: %s (%s)
Thread due date: %s
Outcome goal: %s

Text:
%s

Return a JSON array of at most %d tasks in this format:
[
  {
    "title": "short task title",
    "notes": "details",
    "priority": "high | medium | low",
    "due_date": "ISO8601 date-time such as 2025-10-28T23:59:59Z, or null"
  }
]

Rules:
- Return [] when the text contains no tasks
- Convert relative deadlines ("tomorrow", "next week") into dates
- No due date may be later than the thread due date
- Return JSON only, without explanations`,
		req.Now.Format("2006-01-02 15:04:05"),
		req.Thread.Title,
		req.Thread.ThreadType,
		req.Thread.Due().Format(constants.DateLayout),
		req.Thread.OutcomeGoal,
		req.Text,
		constants.MaxAIGeneratedTasks,
	)
}

// stripCodeFence removes a ```json fence the model sometimes wraps output in.
func stripCodeFence(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content)
}
