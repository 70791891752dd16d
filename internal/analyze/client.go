package analyze

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ctmes/ProfTwo/internal/config"
)

// Result is the enrichment the analysis service produces. Consumed only for
// display; an empty Result is a valid outcome (failed or skipped call).
type Result struct {
	Summary   string   `json:"summary"`
	Topics    []string `json:"topics"`
	Intents   []string `json:"intents"`
	Sentiment string   `json:"sentiment"`
}

// Client calls the text-intelligence service with the four fixed analysis
// options the product uses: summarize, topics, intents, sentiment.
type Client struct {
	endpoint string
	apiKey   string
	language string
	http     *http.Client
}

func New(cfg *config.Config) *Client {
	return &Client{
		endpoint: cfg.Analyze.Endpoint,
		apiKey:   cfg.Analyze.APIKey,
		language: cfg.Analyze.Language,
		http:     &http.Client{Timeout: 60 * time.Second},
	}
}

// Analyze submits the (already enhanced) transcript text.
func (c *Client) Analyze(ctx context.Context, text string) (*Result, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("no analysis api key configured")
	}

	u, err := url.Parse(c.endpoint + "/read")
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("language", c.language)
	q.Set("summarize", "v2")
	q.Set("topics", "true")
	q.Set("intents", "true")
	q.Set("sentiment", "true")
	u.RawQuery = q.Encode()

	body, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", u.String(), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Token "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("analysis api status %d", resp.StatusCode)
	}

	// Minimal struct over the service's nested response shape
	var raw struct {
		Results struct {
			Summary struct {
				Text string `json:"text"`
			} `json:"summary"`
			Topics struct {
				Segments []struct {
					Topics []struct {
						Topic string `json:"topic"`
					} `json:"topics"`
				} `json:"segments"`
			} `json:"topics"`
			Intents struct {
				Segments []struct {
					Intents []struct {
						Intent string `json:"intent"`
					} `json:"intents"`
				} `json:"segments"`
			} `json:"intents"`
			Sentiments struct {
				Average struct {
					Sentiment string `json:"sentiment"`
				} `json:"average"`
			} `json:"sentiments"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, err
	}

	result := &Result{
		Summary:   raw.Results.Summary.Text,
		Sentiment: raw.Results.Sentiments.Average.Sentiment,
	}
	seen := map[string]bool{}
	for _, seg := range raw.Results.Topics.Segments {
		for _, tp := range seg.Topics {
			if tp.Topic != "" && !seen[tp.Topic] {
				seen[tp.Topic] = true
				result.Topics = append(result.Topics, tp.Topic)
			}
		}
	}
	for _, seg := range raw.Results.Intents.Segments {
		for _, in := range seg.Intents {
			if in.Intent != "" {
				result.Intents = append(result.Intents, in.Intent)
			}
		}
	}
	return result, nil
}

// TopicsCSV flattens topics for the lecture record's single text column.
func (r *Result) TopicsCSV() string {
	if r == nil {
		return ""
	}
	return strings.Join(r.Topics, ",")
}
