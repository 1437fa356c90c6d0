package ai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"framecheck/internal/models"
)

type capturedRequest struct {
	path   string
	apiKey string
	body   map[string]any
}

func newGeminiServer(t *testing.T, status int, response string, captured *capturedRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		if captured != nil {
			captured.path = r.URL.Path
			captured.apiKey = r.Header.Get("x-goog-api-key")
			if captured.apiKey == "" {
				captured.apiKey = r.URL.Query().Get("key")
			}
			_ = json.Unmarshal(raw, &captured.body)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClientSendSuccess(t *testing.T) {
	var captured capturedRequest
	srv := newGeminiServer(t, http.StatusOK,
		`{"candidates":[{"content":{"role":"model","parts":[{"text":"**Verdict [RELIABLE]**\nLooks fine"}]}}]}`,
		&captured)

	client := NewClient("gemini-2.0-flash", srv.URL+"/")
	frames := []models.Frame{
		{Timestamp: 1.5, Image: base64.StdEncoding.EncodeToString([]byte("jpeg-1"))},
		{Timestamp: 3.0, Image: base64.StdEncoding.EncodeToString([]byte("jpeg-2"))},
	}

	text, err := client.Send(context.Background(), "AIzaTestKey1234", "the prompt", frames)
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if text != "**Verdict [RELIABLE]**\nLooks fine" {
		t.Errorf("Send returned %q", text)
	}

	if !strings.Contains(captured.path, "gemini-2.0-flash:generateContent") {
		t.Errorf("Request path = %s, want generateContent for the model", captured.path)
	}
	if captured.apiKey != "AIzaTestKey1234" {
		t.Errorf("Request carried key %q", captured.apiKey)
	}

	contents, _ := captured.body["contents"].([]any)
	if len(contents) != 1 {
		t.Fatalf("Request has %d contents, want 1", len(contents))
	}
	parts, _ := contents[0].(map[string]any)["parts"].([]any)
	if len(parts) != 3 {
		t.Fatalf("Request has %d parts, want text plus 2 frames", len(parts))
	}
	if first, _ := parts[0].(map[string]any); first["text"] != "the prompt" {
		t.Errorf("First part = %v, want the prompt text", parts[0])
	}
}

func TestClientSendSkipsInvalidFrames(t *testing.T) {
	var captured capturedRequest
	srv := newGeminiServer(t, http.StatusOK, `{"candidates":[{"content":{"parts":[{"text":"ok"}]}}]}`, &captured)

	client := NewClient("gemini-2.0-flash", srv.URL+"/")
	frames := []models.Frame{{Timestamp: 1, Image: "not base64!"}}

	if _, err := client.Send(context.Background(), "AIzaTestKey1234", "p", frames); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	contents, _ := captured.body["contents"].([]any)
	parts, _ := contents[0].(map[string]any)["parts"].([]any)
	if len(parts) != 1 {
		t.Errorf("Request has %d parts, want only the text part", len(parts))
	}
}

func TestClientSendErrors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		response string
		check    func(t *testing.T, err error)
	}{
		{
			name:     "Quota exceeded",
			status:   http.StatusTooManyRequests,
			response: `{"error":{"code":429,"message":"Resource has been exhausted","status":"RESOURCE_EXHAUSTED"}}`,
			check: func(t *testing.T, err error) {
				if !errors.Is(err, ErrQuotaExceeded) {
					t.Errorf("err = %v, want ErrQuotaExceeded", err)
				}
			},
		},
		{
			name:     "Provider error envelope",
			status:   http.StatusBadRequest,
			response: `{"error":{"code":400,"message":"API key not valid. Please pass a valid API key.","status":"INVALID_ARGUMENT"}}`,
			check: func(t *testing.T, err error) {
				var perr *ProviderError
				if !errors.As(err, &perr) {
					t.Fatalf("err = %v, want ProviderError", err)
				}
				if perr.Message != "API key not valid. Please pass a valid API key." {
					t.Errorf("ProviderError.Message = %q", perr.Message)
				}
				if perr.Code != 400 {
					t.Errorf("ProviderError.Code = %d", perr.Code)
				}
			},
		},
		{
			name:     "No candidates",
			status:   http.StatusOK,
			response: `{"candidates":[]}`,
			check: func(t *testing.T, err error) {
				if !errors.Is(err, ErrUnexpectedResponseShape) {
					t.Errorf("err = %v, want ErrUnexpectedResponseShape", err)
				}
			},
		},
		{
			name:     "No parts",
			status:   http.StatusOK,
			response: `{"candidates":[{"content":{"parts":[]}}]}`,
			check: func(t *testing.T, err error) {
				if !errors.Is(err, ErrUnexpectedResponseShape) {
					t.Errorf("err = %v, want ErrUnexpectedResponseShape", err)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newGeminiServer(t, tt.status, tt.response, nil)
			client := NewClient("gemini-2.0-flash", srv.URL+"/")

			_, err := client.Send(context.Background(), "AIzaTestKey1234", "p", nil)
			if err == nil {
				t.Fatal("Expected an error")
			}
			tt.check(t, err)
		})
	}
}
