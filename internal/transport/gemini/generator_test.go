package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/boostube/internal/domain"
)

type generateRequest struct {
	Contents []struct {
		Role  string `json:"role"`
		Parts []struct {
			Text string `json:"text"`
		} `json:"parts"`
	} `json:"contents"`
}

func newTestGenerator(t *testing.T, url string) *Generator {
	t.Helper()
	g, err := NewGenerator(context.Background(), &Config{
		APIKey:  "test-key",
		BaseURL: url,
		Model:   "gemini-1.5-flash",
		Logger:  zap.NewNop(),
	})
	if err != nil {
		t.Fatalf("NewGenerator: %v", err)
	}
	return g
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(body))
}

func TestGenerator_Generate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "models/gemini-1.5-flash:generateContent") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("x-goog-api-key") != "test-key" {
			t.Errorf("missing api key header")
		}

		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if len(req.Contents) != 1 || req.Contents[0].Role != "user" ||
			len(req.Contents[0].Parts) != 1 || req.Contents[0].Parts[0].Text != "write a script" {
			t.Errorf("unexpected request body: %+v", req)
		}

		writeJSON(w, http.StatusOK, `{
			"candidates": [{"content": {"role": "model", "parts": [{"text": "INTRO: hello"}]}}],
			"usageMetadata": {"promptTokenCount": 4, "totalTokenCount": 20}
		}`)
	}))
	defer server.Close()

	result, err := newTestGenerator(t, server.URL).Generate(context.Background(), "write a script")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if result.Text != "INTRO: hello" {
		t.Errorf("unexpected text %q", result.Text)
	}
	if result.PromptTokens != 4 || result.TotalTokens != 20 {
		t.Errorf("unexpected usage %+v", result)
	}
}

func TestGenerator_MissingCandidates(t *testing.T) {
	bodies := map[string]string{
		"no candidates": `{"candidates": []}`,
		"no parts":      `{"candidates": [{"content": {"role": "model", "parts": []}}]}`,
		"blank text":    `{"candidates": [{"content": {"role": "model", "parts": [{"text": "  "}]}}]}`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusOK, body)
			}))
			defer server.Close()

			_, err := newTestGenerator(t, server.URL).Generate(context.Background(), "x")
			if !errors.Is(err, domain.ErrPayloadShape) {
				t.Fatalf("expected ErrPayloadShape, got %v", err)
			}
		})
	}
}

func TestGenerator_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest,
			`{"error": {"code": 400, "message": "API key not valid", "status": "INVALID_ARGUMENT"}}`)
	}))
	defer server.Close()

	_, err := newTestGenerator(t, server.URL).Generate(context.Background(), "x")
	if !errors.Is(err, domain.ErrTransport) {
		t.Fatalf("expected ErrTransport, got %v", err)
	}
	if errors.Is(err, domain.ErrPayloadShape) {
		t.Error("api errors are transport errors, not payload shape errors")
	}
}

func TestGenerator_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := newTestGenerator(t, url).Generate(context.Background(), "x")
	if !errors.Is(err, domain.ErrTransport) {
		t.Fatalf("expected ErrTransport, got %v", err)
	}
}

func TestNewGenerator_RequiresKey(t *testing.T) {
	if _, err := NewGenerator(context.Background(), &Config{}); err == nil {
		t.Fatal("expected error for missing api key")
	}
}

func TestNewGenerator_DefaultModel(t *testing.T) {
	g, err := NewGenerator(context.Background(), &Config{APIKey: "k", BaseURL: "http://127.0.0.1:1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.Model() != DefaultModel {
		t.Errorf("Model() = %q, want %q", g.Model(), DefaultModel)
	}
}
