package gemini

import (
	"context"
	"errors"

	"github.com/fwojciec/ragjudge"
	"google.golang.org/genai"
)

// APIKeyEnv names the environment variable holding the Gemini API key.
const APIKeyEnv = "GEMINI_API_KEY"

var _ TextGenerator = (*Client)(nil)

// Client generates text with the Gemini API.
type Client struct {
	client *genai.Client
}

// NewClient creates a Client authenticated with apiKey.
func NewClient(ctx context.Context, apiKey string) (*Client, error) {
	if apiKey == "" {
		return nil, &ragjudge.ConfigError{Field: APIKeyEnv, Reason: "not set"}
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	return &Client{client: client}, nil
}

// GenerateText sends prompt as one user message.
func (c *Client) GenerateText(ctx context.Context, model, prompt string, s Sampling) (string, error) {
	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}
	result, err := c.client.Models.GenerateContent(ctx, model, contents, &genai.GenerateContentConfig{
		Temperature: genai.Ptr(s.Temperature),
		TopP:        genai.Ptr(s.TopP),
	})
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			return "", &APIError{StatusCode: apiErr.Code, Message: apiErr.Message}
		}
		var apiErrPtr *genai.APIError
		if errors.As(err, &apiErrPtr) {
			return "", &APIError{StatusCode: apiErrPtr.Code, Message: apiErrPtr.Message}
		}
		return "", err
	}
	return result.Text(), nil
}
