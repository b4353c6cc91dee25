package main

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestApplication(t *testing.T) *application {
	t.Helper()

	var cfg config
	cfg.env = "test"
	cfg.db.driver = "sqlite"
	cfg.db.dsn = "file::memory:"
	cfg.session.secret = "test-session-secret"
	cfg.session.ttl = time.Hour

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	db, err := openDB(cfg, logger)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	app, err := newApplication(cfg, logger, db, bcrypt.MinCost)
	require.NoError(t, err)
	app.chat = &fakeChat{answer: "42"}
	return app
}

type fakeChat struct {
	mu       sync.Mutex
	calls    int
	messages []string
	answer   string
	err      error
}

func (f *fakeChat) generate(_ context.Context, message string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.messages = append(f.messages, message)
	return f.answer, f.err
}

type fakeMailer struct {
	mu      sync.Mutex
	sent    []*account
	err     error
	release chan struct{}
}

func (f *fakeMailer) sendWelcome(a *account) error {
	if f.release != nil {
		<-f.release
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, a)
	return f.err
}

func (f *fakeMailer) sentTo() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var to []string
	for _, a := range f.sent {
		to = append(to, a.Email)
	}
	return to
}

func mustRegister(t *testing.T, app *application, email, name string) *account {
	t.Helper()
	a, err := app.accounts.register(context.Background(), email, name, "secret123", "secret123")
	require.NoError(t, err)
	return a
}

func countRows(t *testing.T, app *application, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, app.storage.db.Model(model).Count(&n).Error)
	return n
}

// testClient is a browser-like client: it keeps cookies and does not follow
// redirects so tests can assert on them.
type testClient struct {
	t      *testing.T
	srv    *httptest.Server
	client *http.Client
}

func newTestServer(t *testing.T, app *application) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(composeRoutes(app))
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(t *testing.T, srv *httptest.Server) *testClient {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &testClient{
		t:   t,
		srv: srv,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func (c *testClient) do(req *http.Request) (*http.Response, string) {
	c.t.Helper()
	resp, err := c.client.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	return resp, string(body)
}

func (c *testClient) get(path string) (*http.Response, string) {
	c.t.Helper()
	req, err := http.NewRequest(http.MethodGet, c.srv.URL+path, nil)
	require.NoError(c.t, err)
	return c.do(req)
}

func (c *testClient) postForm(path string, form url.Values) (*http.Response, string) {
	c.t.Helper()
	req, err := http.NewRequest(http.MethodPost, c.srv.URL+path, strings.NewReader(form.Encode()))
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

func (c *testClient) postJSON(path, body string) (*http.Response, string) {
	c.t.Helper()
	req, err := http.NewRequest(http.MethodPost, c.srv.URL+path, strings.NewReader(body))
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *testClient) signUp(email, name string) {
	c.t.Helper()
	resp, _ := c.postForm("/sign-up", url.Values{
		"email":    {email},
		"Name":     {name},
		"password": {"secret123"},
		"conpass":  {"secret123"},
	})
	require.Equal(c.t, http.StatusSeeOther, resp.StatusCode)
}

func sessionCookie(resp *http.Response) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == sessionCookieName {
			return c
		}
	}
	return nil
}
