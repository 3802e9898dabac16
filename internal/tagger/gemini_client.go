package tagger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"

	"fjacquet/moneyview/internal/logging"
	"fjacquet/moneyview/internal/models"
)

// GeminiConfig holds the settings of a GeminiClient.
type GeminiConfig struct {
	APIKey            string
	Model             string
	RequestsPerMinute int
	Timeout           time.Duration
}

// GeminiClient implements AIClient on the Google Gemini API. Requests are
// throttled to RequestsPerMinute.
type GeminiClient struct {
	client  *genai.Client
	model   *genai.GenerativeModel
	limiter *rate.Limiter
	timeout time.Duration
	logger  logging.Logger
}

// NewGeminiClient connects to the Gemini API.
func NewGeminiClient(ctx context.Context, cfg GeminiConfig, logger logging.Logger) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("GEMINI_API_KEY not set")
	}
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = 1
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(cfg.Model)
	model.SetTemperature(0)

	return &GeminiClient{
		client:  client,
		model:   model,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), 1),
		timeout: cfg.Timeout,
		logger:  logging.OrDefault(logger),
	}, nil
}

// SuggestTag asks the model to pick one of candidates.
func (c *GeminiClient) SuggestTag(ctx context.Context, tx models.Transaction, candidates []models.Tag) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	resp, err := c.model.GenerateContent(ctx, genai.Text(buildPrompt(tx, candidates)))
	if err != nil {
		return "", fmt.Errorf("Gemini API error: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("no response from Gemini API")
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			text.WriteString(string(t))
		}
	}

	tagID := parseSuggestion(text.String(), candidates)
	c.logger.WithFields(
		logging.Field{Key: logging.FieldTransactionID, Value: tx.ID},
		logging.Field{Key: logging.FieldTag, Value: tagID},
		logging.Field{Key: logging.FieldDuration, Value: time.Since(start).Milliseconds()},
	).Debug("Gemini suggestion received")

	return tagID, nil
}

// Close releases the underlying connection.
func (c *GeminiClient) Close() error {
	return c.client.Close()
}

func buildPrompt(tx models.Transaction, candidates []models.Tag) string {
	var b strings.Builder
	b.WriteString("Categorize the following bank transaction.\n")
	fmt.Fprintf(&b, "Partner: %s\n", tx.PartnerName)
	fmt.Fprintf(&b, "Amount: %s\n", tx.TotalAmount.StringFixed(2))
	if !tx.Date.IsZero() {
		fmt.Fprintf(&b, "Date: %s\n", tx.Date.Format("2006-01-02"))
	}
	fmt.Fprintf(&b, "Description: %s\n\n", tx.Description)
	b.WriteString("Choose exactly one tag id from this list:\n")
	for _, tag := range candidates {
		fmt.Fprintf(&b, "- %s: %s\n", tag.ID, tag.Name)
	}
	b.WriteString("\nIf none fits, answer with \"Tag: none\".\n")
	b.WriteString("Respond in this format:\nTag: [tag id]\n")
	return b.String()
}

// parseSuggestion extracts the tag id from a "Tag: <id>" answer. A tag name
// is accepted in place of the id. Anything else yields "".
func parseSuggestion(response string, candidates []models.Tag) string {
	var answer string
	for _, line := range strings.Split(response, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "Tag:") {
			answer = strings.TrimSpace(strings.TrimPrefix(line, "Tag:"))
			break
		}
	}
	answer = strings.Trim(answer, "[]\"'` ")
	if answer == "" {
		return ""
	}

	for _, tag := range candidates {
		if tag.ID == answer {
			return tag.ID
		}
	}
	for _, tag := range candidates {
		if tag.Name != "" && strings.EqualFold(tag.Name, answer) {
			return tag.ID
		}
	}
	return ""
}
