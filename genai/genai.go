// Package genai wraps the text-generation backend. The backend is treated as
// pure and stateless: (user text, system instruction) in, free text out.
// Structured content (trivia, challenges, the daily word) is parsed out of
// the reply, which may carry extra prose around the JSON fragment.
package genai

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

type Client interface {
	Generate(userText, systemMessage string) (string, error)
}

type HTTPClient struct {
	BaseURL string
	Client  *http.Client
}

func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: 60 * time.Second},
	}
}

type generateRequest struct {
	UserText      string `json:"userText"`
	SystemMessage string `json:"systemMessage"`
}

type generateResponse struct {
	Response string `json:"response"`
	Error    string `json:"error"`
}

func (c *HTTPClient) Generate(userText, systemMessage string) (string, error) {
	payload, err := json.Marshal(generateRequest{UserText: userText, SystemMessage: systemMessage})
	if err != nil {
		return "", err
	}

	resp, err := c.Client.Post(c.BaseURL+"/generate-chatbot-response", "application/json", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		if out.Error != "" {
			return "", errors.New(out.Error)
		}
		return "", fmt.Errorf("text backend returned %d", resp.StatusCode)
	}
	return strings.TrimSpace(out.Response), nil
}

// ExtractJSONObject pulls the first {...} span out of s and unmarshals it
// into v.
func ExtractJSONObject(s string, v any) error {
	return extract(s, '{', '}', v)
}

// ExtractJSONArray pulls the first [...] span out of s and unmarshals it
// into v.
func ExtractJSONArray(s string, v any) error {
	return extract(s, '[', ']', v)
}

func extract(s string, open, close byte, v any) error {
	start := strings.IndexByte(s, open)
	end := strings.LastIndexByte(s, close)
	if start == -1 || end == -1 || end < start {
		return fmt.Errorf("no JSON fragment in response: %.80s", s)
	}
	return json.Unmarshal([]byte(s[start:end+1]), v)
}
