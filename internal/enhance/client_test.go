package enhance

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ctmes/ProfTwo/internal/config"
)

func testClient(endpoint string) *Client {
	cfg := &config.Config{}
	cfg.Enhance.Endpoint = endpoint
	cfg.Enhance.APIKey = "test-key"
	cfg.Enhance.Model = "grok-3-latest"
	cfg.Enhance.Temperature = 0.3
	return New(cfg)
}

func TestEnhance(t *testing.T) {
	var gotAuth string
	var gotPayload map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotPayload)

		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"content": "Edited transcript."}},
			},
		})
	}))
	defer srv.Close()

	edited, err := testClient(srv.URL).Enhance(context.Background(), "raw umm transcript")
	if err != nil {
		t.Fatalf("Enhance failed: %v", err)
	}
	if edited != "Edited transcript." {
		t.Errorf("Got %q", edited)
	}

	if gotAuth != "Bearer test-key" {
		t.Errorf("Auth header = %q", gotAuth)
	}
	if gotPayload["model"] != "grok-3-latest" {
		t.Errorf("Model = %v", gotPayload["model"])
	}
	if gotPayload["stream"] != false {
		t.Errorf("Expected stream:false, got %v", gotPayload["stream"])
	}

	msgs, _ := gotPayload["messages"].([]any)
	if len(msgs) != 2 {
		t.Fatalf("Expected 2 messages, got %d", len(msgs))
	}
	user, _ := msgs[1].(map[string]any)
	if content, _ := user["content"].(string); !strings.Contains(content, "raw umm transcript") {
		t.Errorf("User message missing the raw transcript: %q", content)
	}
}

func TestEnhanceServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	if _, err := testClient(srv.URL).Enhance(context.Background(), "text"); err == nil {
		t.Error("Expected error on 502")
	}
}

func TestEnhanceEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer srv.Close()

	if _, err := testClient(srv.URL).Enhance(context.Background(), "text"); err == nil {
		t.Error("Expected error on empty choices")
	}
}

func TestEnhanceMissingKey(t *testing.T) {
	cfg := &config.Config{}
	cfg.Enhance.Endpoint = "http://localhost:0"
	if _, err := New(cfg).Enhance(context.Background(), "text"); err == nil {
		t.Error("Expected error with no api key")
	}
}
