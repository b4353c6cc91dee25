package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

const maxChatResponseBytes = 4 << 20

type chatClient interface {
	generate(ctx context.Context, message string) (string, error)
}

// geminiClient calls the Gemini generateContent endpoint. The API key is
// looked up on every call so it can be rotated without a restart.
type geminiClient struct {
	http    *http.Client
	baseURL string
	model   string
	apiKey  func() string
}

func newGeminiClient(baseURL, model string, timeout time.Duration) *geminiClient {
	return &geminiClient{
		http:    &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		apiKey: func() string {
			return os.Getenv("GEMINI_API_KEY")
		},
	}
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

func (c *geminiClient) generate(ctx context.Context, message string) (string, error) {
	key := c.apiKey()
	if key == "" {
		return "", fmt.Errorf("%w: GEMINI_API_KEY is not set", errConfig)
	}

	payload, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: message}}}},
	})
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", key)

	resp, err := c.http.Do(req)
	if err != nil {
		if isTimeout(err) {
			return "", &externalServiceError{kind: externalTimeout, err: err}
		}
		return "", &externalServiceError{kind: externalUnavailable, err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxChatResponseBytes))
	if err != nil {
		if isTimeout(err) {
			return "", &externalServiceError{kind: externalTimeout, err: err}
		}
		return "", &externalServiceError{kind: externalUnavailable, err: err}
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return "", &externalServiceError{kind: externalAuth, err: fmt.Errorf("status %d", resp.StatusCode)}
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", &externalServiceError{kind: externalQuota, err: fmt.Errorf("status %d", resp.StatusCode)}
	case resp.StatusCode >= http.StatusBadRequest:
		return "", &externalServiceError{kind: externalUnavailable, err: fmt.Errorf("status %d: %s", resp.StatusCode, gjson.GetBytes(body, "error.message").String())}
	}

	if !gjson.ValidBytes(body) {
		return "", &externalServiceError{kind: externalMalformed, err: errors.New("response is not valid JSON")}
	}
	answer := gjson.GetBytes(body, "candidates.0.content.parts.0.text")
	if answer.Type != gjson.String {
		return "", &externalServiceError{kind: externalMalformed, err: errors.New("response has no candidate text")}
	}
	return answer.String(), nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// chatOutcome labels a chat result for metrics.
func chatOutcome(err error) string {
	var extErr *externalServiceError
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, errBadRequest):
		return "bad_request"
	case errors.Is(err, errConfig):
		return "config"
	case errors.As(err, &extErr):
		return string(extErr.kind)
	default:
		return "error"
	}
}

// askAssistant relays message to the chat client and returns its answer.
func (app *application) askAssistant(ctx context.Context, message string) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", fmt.Errorf("%w: no message provided", errBadRequest)
	}
	answer, err := app.chat.generate(ctx, message)
	app.metrics.chatResults.WithLabelValues(chatOutcome(err)).Inc()
	return answer, err
}
