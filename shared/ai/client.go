package ai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"net/http"

	"framecheck/internal/models"

	"google.golang.org/genai"
)

// ErrQuotaExceeded is returned on HTTP 429. Callers must not retry automatically.
var ErrQuotaExceeded = errors.New("API quota exceeded")

// ErrUnexpectedResponseShape means the response had no candidates[0].content.parts[0].text.
var ErrUnexpectedResponseShape = errors.New("unexpected response shape")

// ProviderError carries an error message reported by the provider, passed through verbatim.
type ProviderError struct {
	Code    int
	Message string
}

func (e *ProviderError) Error() string {
	return e.Message
}

// Sender sends one multimodal prompt and returns the raw model text.
type Sender interface {
	Send(ctx context.Context, apiKey, prompt string, frames []models.Frame) (string, error)
}

// Client talks to the Gemini generateContent endpoint. A genai client is built per call
// because the key can change between popup actions.
type Client struct {
	model   string
	baseURL string
}

func NewClient(model, baseURL string) *Client {
	return &Client{
		model:   model,
		baseURL: baseURL,
	}
}

func (c *Client) Send(ctx context.Context, apiKey, prompt string, frames []models.Frame) (string, error) {
	cc := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if c.baseURL != "" {
		cc.HTTPOptions.BaseURL = c.baseURL
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return "", fmt.Errorf("failed to create Gemini client: %w", err)
	}

	parts := []*genai.Part{
		genai.NewPartFromText(prompt),
	}
	for _, frame := range frames {
		data, err := base64.StdEncoding.DecodeString(frame.Image)
		if err != nil {
			log.Printf("Warning: Skipping frame at %.1fs with invalid image data: %v", frame.Timestamp, err)
			continue
		}
		parts = append(parts, genai.NewPartFromBytes(data, "image/jpeg"))
	}

	contents := []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}

	result, err := client.Models.GenerateContent(ctx, c.model, contents, nil)
	if err != nil {
		return "", classifyError(err)
	}

	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil ||
		len(result.Candidates[0].Content.Parts) == 0 {
		return "", ErrUnexpectedResponseShape
	}
	// An empty first part is treated like a missing one: the popup has nothing to render.
	text := result.Candidates[0].Content.Parts[0].Text
	if text == "" {
		return "", ErrUnexpectedResponseShape
	}
	return text, nil
}

func classifyError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Code == http.StatusTooManyRequests {
			return ErrQuotaExceeded
		}
		msg := apiErr.Message
		if msg == "" {
			msg = apiErr.Status
		}
		return &ProviderError{Code: apiErr.Code, Message: msg}
	}
	return fmt.Errorf("failed to generate content: %w", err)
}
