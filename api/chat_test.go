package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func newTestGemini(t *testing.T, handler http.HandlerFunc) *geminiClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := newGeminiClient(srv.URL+"/", "gemini-test", time.Second)
	c.apiKey = func() string { return "test-key" }
	return c
}

func TestGeminiGenerate(t *testing.T) {
	c := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1beta/models/gemini-test:generateContent", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))

		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.Equal(t, "hello there", gjson.GetBytes(body, "contents.0.parts.0.text").String())

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"candidates":[{"content":{"parts":[{"text":"General Kenobi"}],"role":"model"}}]}`)
	})

	answer, err := c.generate(context.Background(), "hello there")
	require.NoError(t, err)
	assert.Equal(t, "General Kenobi", answer)
}

func TestGeminiMissingKey(t *testing.T) {
	called := false
	c := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})
	c.apiKey = func() string { return "" }

	_, err := c.generate(context.Background(), "hi")
	assert.ErrorIs(t, err, errConfig)
	assert.False(t, called)
}

func TestGeminiFailureKinds(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   externalErrorKind
	}{
		{"unauthorized", http.StatusUnauthorized, `{"error":{"message":"bad key"}}`, externalAuth},
		{"forbidden", http.StatusForbidden, `{"error":{"message":"bad key"}}`, externalAuth},
		{"quota", http.StatusTooManyRequests, `{"error":{"message":"quota"}}`, externalQuota},
		{"server error", http.StatusInternalServerError, `{"error":{"message":"boom"}}`, externalUnavailable},
		{"not json", http.StatusOK, `<html>`, externalMalformed},
		{"no candidates", http.StatusOK, `{"candidates":[]}`, externalMalformed},
		{"non text part", http.StatusOK, `{"candidates":[{"content":{"parts":[{"inlineData":{}}]}}]}`, externalMalformed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			})

			_, err := c.generate(context.Background(), "hi")
			var extErr *externalServiceError
			require.ErrorAs(t, err, &extErr)
			assert.Equal(t, tt.want, extErr.kind)
		})
	}
}

func TestGeminiTimeout(t *testing.T) {
	c := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})
	c.http.Timeout = 50 * time.Millisecond

	_, err := c.generate(context.Background(), "hi")
	var extErr *externalServiceError
	require.ErrorAs(t, err, &extErr)
	assert.Equal(t, externalTimeout, extErr.kind)
}

func TestGeminiUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := newGeminiClient(url, "gemini-test", time.Second)
	c.apiKey = func() string { return "test-key" }

	_, err := c.generate(context.Background(), "hi")
	var extErr *externalServiceError
	require.ErrorAs(t, err, &extErr)
	assert.Equal(t, externalUnavailable, extErr.kind)
}

func TestAskAssistant(t *testing.T) {
	app := newTestApplication(t)
	fake := &fakeChat{answer: "42"}
	app.chat = fake

	_, err := app.askAssistant(context.Background(), "   ")
	assert.ErrorIs(t, err, errBadRequest)
	assert.Zero(t, fake.calls)

	answer, err := app.askAssistant(context.Background(), "meaning of life?")
	require.NoError(t, err)
	assert.Equal(t, "42", answer)
	assert.Equal(t, 1, fake.calls)
	assert.Equal(t, float64(1), testutil.ToFloat64(app.metrics.chatResults.WithLabelValues("ok")))

	fake.err = &externalServiceError{kind: externalQuota, err: io.EOF}
	_, err = app.askAssistant(context.Background(), "again")
	assert.Error(t, err)
	assert.Equal(t, float64(1), testutil.ToFloat64(app.metrics.chatResults.WithLabelValues("quota")))
}
