package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"TrackDigest/internal/config"
	"TrackDigest/internal/domain"
	"TrackDigest/internal/ports"
)

// ChatJudge implements ports.Judge backed by OpenAI-compatible chat APIs.
// It asks the model for a 1-5 relevance value with a short justification.
type ChatJudge struct {
	endpoint     string
	model        string
	apiKey       string
	systemPrompt string
	httpClient   *http.Client
}

var _ ports.Judge = (*ChatJudge)(nil)

// NewChatJudge builds a judge from configuration.
func NewChatJudge(cfg config.JudgeConfig) *ChatJudge {
	return &ChatJudge{
		endpoint:     cfg.Endpoint,
		model:        cfg.Model,
		apiKey:       cfg.APIKey,
		systemPrompt: cfg.SystemPrompt,
		httpClient: &http.Client{
			Timeout: 20 * time.Second,
		},
	}
}

// Judge posts the paper's title and abstract and decodes the model's
// {"value": n, "justification": "..."} reply.
func (c *ChatJudge) Judge(ctx context.Context, doc domain.Document, trackNames []string) (domain.RelevanceJudgment, error) {
	if c == nil {
		return domain.RelevanceJudgment{}, fmt.Errorf("judge client is nil")
	}
	if c.apiKey == "" || c.endpoint == "" || c.model == "" {
		return domain.RelevanceJudgment{}, fmt.Errorf("judge client misconfigured")
	}

	userPayload, err := json.Marshal(map[string]any{
		"title":    doc.Title,
		"abstract": doc.Abstract,
		"tracks":   trackNames,
	})
	if err != nil {
		return domain.RelevanceJudgment{}, fmt.Errorf("marshal judge payload: %w", err)
	}

	body, err := json.Marshal(map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "system", "content": safePrompt(c.systemPrompt)},
			{"role": "user", "content": string(userPayload)},
		},
		"response_format": map[string]string{"type": "json_object"},
	})
	if err != nil {
		return domain.RelevanceJudgment{}, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return domain.RelevanceJudgment{}, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.RelevanceJudgment{}, fmt.Errorf("judge request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return domain.RelevanceJudgment{}, fmt.Errorf("judge error %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	var chatResp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return domain.RelevanceJudgment{}, fmt.Errorf("decode judge response: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return domain.RelevanceJudgment{}, fmt.Errorf("judge returned no choices")
	}

	var verdict struct {
		Value         int    `json:"value"`
		Justification string `json:"justification"`
	}
	if err := json.Unmarshal([]byte(chatResp.Choices[0].Message.Content), &verdict); err != nil {
		return domain.RelevanceJudgment{}, fmt.Errorf("decode judge verdict: %w", err)
	}
	if verdict.Value < 1 || verdict.Value > 5 {
		return domain.RelevanceJudgment{}, fmt.Errorf("judge verdict %d out of 1-5 range", verdict.Value)
	}

	return domain.RelevanceJudgment{
		DocumentID:    doc.ID,
		Value:         verdict.Value,
		Justification: verdict.Justification,
		JudgedAt:      time.Now().UTC(),
	}, nil
}

func safePrompt(prompt string) string {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "You judge the relevance of academic papers to research interests. " +
			"Reply with JSON: {\"value\": 1-5, \"justification\": \"one sentence\"}."
	}
	return prompt
}
