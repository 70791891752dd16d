package enhance

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ctmes/ProfTwo/internal/config"
)

// systemPrompt steers the model toward transcript cleanup without losing
// content. Kept stable so enhancement output is comparable across runs.
const systemPrompt = "You are an expert educational content editor. Your task is to take raw " +
	"lecture transcripts and make them more readable, clear, and understandable while " +
	"preserving all the original information and meaning. Fix grammar, improve sentence " +
	"structure, organize thoughts logically, and ensure the content flows naturally for " +
	"educational purposes."

// Client calls the chat-completions text-enhancement service. The bearer
// token comes from config; it is never embedded in code.
type Client struct {
	endpoint    string
	apiKey      string
	model       string
	temperature float64
	http        *http.Client
}

func New(cfg *config.Config) *Client {
	return &Client{
		endpoint:    cfg.Enhance.Endpoint,
		apiKey:      cfg.Enhance.APIKey,
		model:       cfg.Enhance.Model,
		temperature: cfg.Enhance.Temperature,
		http:        &http.Client{Timeout: 60 * time.Second},
	}
}

// Enhance sends the raw transcript and returns the edited text.
func (c *Client) Enhance(ctx context.Context, transcript string) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("no enhancement api key configured")
	}

	payload := map[string]any{
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": "Please edit this lecture transcript to make it more readable " +
				"and understandable while preserving all information:\n\n" + transcript},
		},
		"model":       c.model,
		"stream":      false,
		"temperature": c.temperature,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.endpoint+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return "", fmt.Errorf("enhancement api status %d", resp.StatusCode)
	}

	// Minimal struct to pull out the edited text
	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}

	if len(result.Choices) == 0 || result.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("enhancement api returned no content")
	}
	return result.Choices[0].Message.Content, nil
}
