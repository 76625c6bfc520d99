package receipt

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"github.com/shopspring/decimal"

	"pocketbook/internal/core"
)

const (
	DefaultBaseURL = "https://open.bigmodel.cn/api/paas/v4"
	DefaultModel   = "glm-4v-flash"
)

const instructionPrompt = `You are a bookkeeping assistant. Analyse this receipt or bill screenshot.
Extract the following fields and reply with JSON only (no markdown code fences, just the raw JSON string):
{
  "type": "expense" or "income",
  "amount": amount as a number, no currency symbol,
  "category": "category id, exactly one of: food, transport, shopping, entertainment, housing, medical, other_expense, salary, bonus, investment, other_income",
  "date": "YYYY-MM-DD" (assume the current year when the year is missing, today when the date is missing),
  "note": "short note (merchant or item name)"
}`

// Config configures an OpenAI-compatible chat completions endpoint.
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	HTTPClient *http.Client
}

// OpenAIClassifier sends the image to a vision chat model and decodes the
// JSON object found in the first choice.
type OpenAIClassifier struct {
	client *openai.Client
	model  string
	ready  bool
}

var _ Classifier = (*OpenAIClassifier)(nil)

func NewOpenAIClassifier(cfg Config) *OpenAIClassifier {
	oc := openai.DefaultConfig(cfg.APIKey)
	oc.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if oc.BaseURL == "" {
		oc.BaseURL = DefaultBaseURL
	}
	if cfg.HTTPClient != nil {
		oc.HTTPClient = cfg.HTTPClient
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	return &OpenAIClassifier{
		client: openai.NewClientWithConfig(oc),
		model:  model,
		ready:  strings.TrimSpace(cfg.APIKey) != "",
	}
}

// Configured reports whether an API key is present.
func (c *OpenAIClassifier) Configured() bool {
	return c.ready
}

func (c *OpenAIClassifier) Classify(ctx context.Context, img Image) (core.Draft, error) {
	if !c.ready {
		return core.Draft{}, ErrNotConfigured
	}
	if len(img.Data) == 0 {
		return core.Draft{}, ErrEmptyImage
	}

	dataURL := "data:" + DetectMIME(img.Data, img.MIMEType) + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{{
			Role: openai.ChatMessageRoleUser,
			MultiContent: []openai.ChatMessagePart{
				{Type: openai.ChatMessagePartTypeText, Text: instructionPrompt},
				{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{URL: dataURL}},
			},
		}},
	})
	if err != nil {
		slog.ErrorContext(ctx, "Receipt classification request failed", "model", c.model, "error", err)
		return core.Draft{}, fmt.Errorf("%w: %v", ErrClassification, err)
	}
	if len(resp.Choices) == 0 {
		return core.Draft{}, fmt.Errorf("%w: response has no choices", ErrClassification)
	}

	draft, err := ParseDraft(resp.Choices[0].Message.Content)
	if err != nil {
		slog.WarnContext(ctx, "Receipt classification returned unparseable content",
			"model", c.model, "content", resp.Choices[0].Message.Content, "error", err)
		return core.Draft{}, err
	}
	slog.InfoContext(ctx, "Receipt classified", "model", c.model, "type", draft.Kind, "category", draft.CategoryID)
	return draft, nil
}

type draftPayload struct {
	Type     string          `json:"type"`
	Amount   json.RawMessage `json:"amount"`
	Category string          `json:"category"`
	Date     string          `json:"date"`
	Note     string          `json:"note"`
}

// ParseDraft strips markdown code fences from a model reply and decodes
// the JSON object inside. The amount may be a number or a numeric string.
// A reply carrying none of type, amount and category is ErrClassification.
func ParseDraft(content string) (core.Draft, error) {
	clean := StripCodeFences(content)
	var p draftPayload
	if err := json.Unmarshal([]byte(clean), &p); err != nil {
		return core.Draft{}, fmt.Errorf("%w: decode reply: %v", ErrClassification, err)
	}

	draft := core.Draft{
		Kind:       core.Kind(strings.ToLower(strings.TrimSpace(p.Type))),
		CategoryID: strings.TrimSpace(p.Category),
		Date:       strings.TrimSpace(p.Date),
		Note:       strings.TrimSpace(p.Note),
	}
	if raw := strings.TrimSpace(string(p.Amount)); raw != "" && raw != "null" {
		var d decimal.Decimal
		if err := d.UnmarshalJSON([]byte(raw)); err == nil {
			draft.Amount = d.Abs().StringFixed(2)
		}
	}
	if draft.Kind == "" && draft.Amount == "" && draft.CategoryID == "" {
		return core.Draft{}, fmt.Errorf("%w: reply has no type, amount or category", ErrClassification)
	}
	return draft, nil
}

// StripCodeFences removes ```json and ``` markers and surrounding space.
func StripCodeFences(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}
