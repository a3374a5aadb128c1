package extract

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/openai/openai-go/option"
)

// completionResponse builds a minimal chat-completion response whose
// message content is the given string.
func completionResponse(content string) map[string]any {
	return map[string]any{
		"id":     "chatcmpl-test",
		"object": "chat.completion",
		"model":  "gpt-4o-mini",
		"choices": []map[string]any{
			{
				"index":         0,
				"finish_reason": "stop",
				"message": map[string]any{
					"role":    "assistant",
					"content": content,
				},
			},
		},
	}
}

// newTestExtractor creates an extractor pointed at a local server that
// always answers with the given message content.
func newTestExtractor(t *testing.T, content string) *OpenAIExtractor {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(completionResponse(content)); err != nil {
			t.Errorf("failed to encode response: %v", err)
		}
	}))
	t.Cleanup(server.Close)

	return NewOpenAIExtractor("test-key", WithClientOptions(option.WithBaseURL(server.URL+"/")))
}

// TestExtract tests extraction against a stubbed completion endpoint.
func TestExtract(t *testing.T) {
	t.Parallel()

	t.Run("decodes a well-formed response", func(t *testing.T) {
		t.Parallel()

		e := newTestExtractor(t, `{"profiles": [{"name": "Ada", "about": "A pioneering computer scientist with a very long biography sentence here."}]}`)

		profiles, err := e.Extract(context.Background(), "Ada worked on the Analytical Engine and wrote extensive notes about it.")
		if err != nil {
			t.Fatalf("extract failed: %v", err)
		}

		if len(profiles) != 1 {
			t.Fatalf("expected 1 profile, got %d", len(profiles))
		}
		if profiles[0].Name != "Ada" {
			t.Errorf("expected name Ada, got %q", profiles[0].Name)
		}
	})

	t.Run("empty text skips the API call", func(t *testing.T) {
		t.Parallel()

		called := false
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			called = true
			w.WriteHeader(http.StatusInternalServerError)
		}))
		t.Cleanup(server.Close)

		e := NewOpenAIExtractor("test-key", WithClientOptions(option.WithBaseURL(server.URL+"/")))

		profiles, err := e.Extract(context.Background(), "   \n  ")
		if err != nil {
			t.Fatalf("expected no error for empty text, got %v", err)
		}
		if profiles != nil {
			t.Errorf("expected nil profiles, got %v", profiles)
		}
		if called {
			t.Error("expected no API call for empty text")
		}
	})

	t.Run("invalid JSON is an error, not a panic", func(t *testing.T) {
		t.Parallel()

		e := newTestExtractor(t, "Sure! Here are the profiles you asked for: Ada, Alan.")

		if _, err := e.Extract(context.Background(), "some page text long enough to send"); err == nil {
			t.Fatal("expected a decode error")
		}
	})

	t.Run("server error is surfaced", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, `{"error": {"message": "boom"}}`, http.StatusInternalServerError)
		}))
		t.Cleanup(server.Close)

		e := NewOpenAIExtractor("test-key", WithClientOptions(
			option.WithBaseURL(server.URL+"/"),
			option.WithMaxRetries(0),
		))

		if _, err := e.Extract(context.Background(), "some page text long enough to send"); err == nil {
			t.Fatal("expected an error from the failing endpoint")
		}
	})
}

// TestDecodeProfiles tests the strict response decoding.
func TestDecodeProfiles(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    int
		wantErr bool
	}{
		{
			name:    "single profile",
			content: `{"profiles": [{"name": "Ada", "about": "Mathematician."}]}`,
			want:    1,
		},
		{
			name:    "multiple profiles keep order",
			content: `{"profiles": [{"name": "Ada", "about": "First."}, {"name": "Alan", "about": "Second."}]}`,
			want:    2,
		},
		{
			name:    "empty list",
			content: `{"profiles": []}`,
			want:    0,
		},
		{
			name:    "missing profiles key yields zero records",
			content: `{"people": []}`,
			want:    0,
		},
		{
			name:    "incomplete records are dropped",
			content: `{"profiles": [{"name": "Ada"}, {"about": "No name."}, {"name": "Alan", "about": "Complete."}]}`,
			want:    1,
		},
		{
			name:    "not JSON",
			content: "profiles: none",
			wantErr: true,
		},
		{
			name:    "wrong type for profiles",
			content: `{"profiles": "Ada"}`,
			wantErr: true,
		},
		{
			name:    "fenced JSON is rejected",
			content: "```json\n{\"profiles\": []}\n```",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			profiles, err := decodeProfiles(tt.content)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %d profiles", len(profiles))
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(profiles) != tt.want {
				t.Errorf("expected %d profiles, got %d", tt.want, len(profiles))
			}
		})
	}
}
