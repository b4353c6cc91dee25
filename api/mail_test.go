package main

import (
	"bytes"
	"errors"
	"net/http"
	"net/url"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMailerComposeWelcome(t *testing.T) {
	m := newMailer("smtp.example.com", 587, "user", "pass", "Notebook <no-reply@example.com>")

	msg, err := m.compose("ann@example.com", welcomeTemplate, &account{Email: "ann@example.com", Name: "Ann"})
	require.NoError(t, err)

	assert.Equal(t, []string{"ann@example.com"}, msg.GetHeader("To"))
	assert.Equal(t, []string{"Notebook <no-reply@example.com>"}, msg.GetHeader("From"))
	assert.Equal(t, []string{"Welcome to Notebook, Ann!"}, msg.GetHeader("Subject"))

	var buf bytes.Buffer
	_, err = msg.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "text/plain")
	assert.Contains(t, buf.String(), "text/html")
}

func TestSignUpSendsWelcomeMail(t *testing.T) {
	app := newTestApplication(t)
	fake := &fakeMailer{}
	app.mailer = fake
	c := newTestClient(t, newTestServer(t, app))

	c.signUp("a@b.com", "Ann")
	app.wg.Wait()

	assert.Equal(t, []string{"a@b.com"}, fake.sentTo())
}

func TestSignUpDoesNotWaitForMail(t *testing.T) {
	app := newTestApplication(t)
	fake := &fakeMailer{release: make(chan struct{})}
	app.mailer = fake
	c := newTestClient(t, newTestServer(t, app))

	// the mailer stays blocked until the sign-up response is back
	c.signUp("a@b.com", "Ann")
	assert.Empty(t, fake.sentTo())

	close(fake.release)
	app.wg.Wait()
	assert.Equal(t, []string{"a@b.com"}, fake.sentTo())
}

func TestBackgroundRecoversPanic(t *testing.T) {
	app := newTestApplication(t)
	logger, hook := logtest.NewNullLogger()
	app.logger = logger

	app.background(func() { panic("boom") })
	app.wg.Wait()

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.ErrorLevel, entry.Level)
	assert.Equal(t, "boom", entry.Data["panic"])
}

func TestSignUpSucceedsWhenMailFails(t *testing.T) {
	app := newTestApplication(t)
	app.mailer = &fakeMailer{err: errors.New("smtp down")}
	c := newTestClient(t, newTestServer(t, app))

	resp, _ := c.postForm("/sign-up", url.Values{
		"email":    {"a@b.com"},
		"Name":     {"Ann"},
		"password": {"secret123"},
		"conpass":  {"secret123"},
	})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.EqualValues(t, 1, countRows(t, app, &account{}))
	app.wg.Wait()
}
