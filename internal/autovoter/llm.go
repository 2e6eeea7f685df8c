package autovoter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrNoAPIKey is returned when no OpenAI credential is configured in
// either auto_creator_settings or the environment.
var ErrNoAPIKey = errors.New("OpenAI APIキーが設定されていません")

// Completer produces comment text for a rendered prompt. Satisfied by
// ChatClient; tests substitute fakes.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// ChatClient is a thin client for the chat-completions endpoint. Each
// prompt goes out as a single user-role message with temperature 0.9.
type ChatClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
}

func NewChatClient(apiKey, model, baseURL string) *ChatClient {
	if model == "" {
		model = "gpt-4o-mini"
	}
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1/chat/completions"
	}
	return &ChatClient{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		baseURL:    baseURL,
		apiKey:     apiKey,
		model:      model,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error json.RawMessage `json:"error,omitempty"`
}

// Complete sends the prompt and returns the trimmed completion text.
// A non-2xx status, an error field in the body, an empty choices array
// and an empty trimmed string are all failures; the caller records the
// error against the post and abandons only that comment action.
func (c *ChatClient) Complete(ctx context.Context, prompt string) (string, error) {
	if c.apiKey == "" {
		return "", ErrNoAPIKey
	}

	body, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: 0.9,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("OpenAI APIエラー: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("OpenAI APIエラー: %w", err)
	}

	var data chatResponse
	// A malformed body falls through with zero choices and is reported
	// through the status/choices checks below.
	_ = json.Unmarshal(raw, &data)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || len(data.Error) > 0 {
		detail := string(data.Error)
		if detail == "" {
			detail = string(raw)
		}
		return "", fmt.Errorf("OpenAI APIエラー (status: %d): %s", resp.StatusCode, detail)
	}

	if len(data.Choices) == 0 {
		return "", errors.New("OpenAI APIレスポンスにchoicesがありません")
	}

	text := strings.TrimSpace(data.Choices[0].Message.Content)
	if text == "" {
		return "", errors.New("コメントテキストが空です")
	}

	return text, nil
}

// RenderCommentPrompt fills the new-comment template. Substitution
// replaces only the first occurrence of each tag, same as the
// JavaScript String.replace the templates were written against.
func RenderCommentPrompt(tmpl, title, content, choices string) string {
	out := strings.Replace(tmpl, "{$question}", title, 1)
	out = strings.Replace(out, "{$content}", content, 1)
	out = strings.Replace(out, "{$choices}", choices, 1)
	return out
}

// RenderReplyPrompt fills the reply template, which additionally gets
// the target comment's text.
func RenderReplyPrompt(tmpl, comment, title, content, choices string) string {
	out := strings.Replace(tmpl, "{$comment}", comment, 1)
	out = strings.Replace(out, "{$question}", title, 1)
	out = strings.Replace(out, "{$content}", content, 1)
	out = strings.Replace(out, "{$choices}", choices, 1)
	return out
}

// ChoicesText renders vote choice labels for prompt interpolation:
// each label in kagi brackets, joined with an ideographic comma.
func ChoicesText(labels []string) string {
	quoted := make([]string, len(labels))
	for i, l := range labels {
		quoted[i] = "「" + l + "」"
	}
	return strings.Join(quoted, "、")
}
