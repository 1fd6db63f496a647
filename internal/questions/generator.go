// internal/questions/generator.go
package questions

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mamathon/triviawager/internal/models"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
)

// Count is how many items a generated set must contain.
const Count = 5

const systemPrompt = `You write trivia for a guessing game. Produce exactly 5 challenging questions ` +
	`about the topic the user gives. Every answer must be a single whole number. ` +
	`Reply with JSON only: {"questions":[{"question":"...","answer":123}]}`

var (
	ErrBadResponse = errors.New("question generator returned an unusable response")

	validate = validator.New()
)

// HTTPSource asks a chat-completions style endpoint for a question set.
type HTTPSource struct {
	URL    string
	APIKey string
	Model  string
	Client *http.Client
}

// NewHTTPSource builds a source whose requests never outlive timeout.
func NewHTTPSource(url, apiKey, model string, timeout time.Duration) *HTTPSource {
	return &HTTPSource{
		URL:    url,
		APIKey: apiKey,
		Model:  model,
		Client: &http.Client{Timeout: timeout},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string            `json:"model,omitempty"`
	Messages       []chatMessage     `json:"messages"`
	ResponseFormat map[string]string `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type generatedItem struct {
	Question string      `json:"question" validate:"required"`
	Answer   json.Number `json:"answer" validate:"required"`
}

// Generate implements lobby.QuestionSource.
func (s *HTTPSource) Generate(ctx context.Context, topic string) ([]models.QuestionItem, error) {
	body, err := json.Marshal(chatRequest{
		Model: s.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: "Topic: " + topic},
		},
		ResponseFormat: map[string]string{"type": "json_object"},
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.URL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.APIKey)
	}

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling question generator: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("reading question generator response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d: %s", ErrBadResponse, resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var chat chatResponse
	if err := json.Unmarshal(raw, &chat); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	if len(chat.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices", ErrBadResponse)
	}

	items, err := ParseSet(chat.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"topic": topic, "count": len(items)}).Debug("generated question set")
	return items, nil
}

// ParseSet decodes a {"questions":[...]} document, tolerating a markdown code
// fence around it. Items without text or without a whole-number answer are
// skipped; fewer than Count usable items is an error.
func ParseSet(content string) ([]models.QuestionItem, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var doc struct {
		Questions []generatedItem `json:"questions"`
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadResponse, err)
	}

	items := lo.FilterMap(doc.Questions, func(g generatedItem, _ int) (models.QuestionItem, bool) {
		if validate.Struct(g) != nil {
			return models.QuestionItem{}, false
		}
		answer, ok := wholeNumber(g.Answer)
		return models.QuestionItem{Question: strings.TrimSpace(g.Question), Answer: answer}, ok
	})
	if len(items) < Count {
		return nil, fmt.Errorf("%w: %d usable questions", ErrBadResponse, len(items))
	}
	return items[:Count], nil
}

func wholeNumber(n json.Number) (int, bool) {
	if v, err := n.Int64(); err == nil {
		return int(v), true
	}
	f, err := n.Float64()
	if err != nil || f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, false
	}
	// float64(math.MaxInt64) rounds up to 2^63, which is already out of range.
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int(f), true
}
