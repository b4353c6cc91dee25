package main

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/go-mail/mail/v2"
)

var welcomeTemplate = template.Must(template.ParseFS(templateFS, "templates/mail/welcome.tmpl"))

type welcomeSender interface {
	sendWelcome(a *account) error
}

type mailer struct {
	dailer *mail.Dialer
	sender string
}

func newMailer(host string, port int, username string, password string, sender string) *mailer {
	dailer := mail.NewDialer(host, port, username, password)
	dailer.Timeout = 10 * time.Second
	return &mailer{
		dailer: dailer,
		sender: sender,
	}
}

func (m *mailer) sendWelcome(a *account) error {
	return m.send(a.Email, welcomeTemplate, a)
}

func (m *mailer) compose(to string, tmpl *template.Template, data any) (*mail.Message, error) {
	var subject bytes.Buffer
	err := tmpl.ExecuteTemplate(&subject, "subject", data)
	if err != nil {
		return nil, err
	}
	var plainBody bytes.Buffer
	err = tmpl.ExecuteTemplate(&plainBody, "plainBody", data)
	if err != nil {
		return nil, err
	}
	var htmlBody bytes.Buffer
	err = tmpl.ExecuteTemplate(&htmlBody, "htmlBody", data)
	if err != nil {
		return nil, err
	}

	msg := mail.NewMessage()
	msg.SetHeader("To", to)
	msg.SetHeader("From", m.sender)
	msg.SetHeader("Subject", subject.String())
	msg.SetBody("text/plain", plainBody.String())
	msg.AddAlternative("text/html", htmlBody.String())
	return msg, nil
}

// send makes a single delivery attempt.
func (m *mailer) send(to string, tmpl *template.Template, data any) error {
	msg, err := m.compose(to, tmpl, data)
	if err != nil {
		return err
	}
	return m.dailer.DialAndSend(msg)
}

// welcome sends the sign-up greeting in the background when mail is
// configured. Delivery failures are logged and never fail the registration.
func (app *application) welcome(a *account) {
	if app.mailer == nil {
		return
	}
	app.background(func() {
		if err := app.mailer.sendWelcome(a); err != nil {
			app.logger.WithError(err).WithField("account_id", a.ID).Warn("could not send welcome mail")
		}
	})
}

// background runs fn outside the request. Shutdown waits on app.wg so
// queued mail is not dropped.
func (app *application) background(fn func()) {
	app.wg.Add(1)
	go func() {
		defer app.wg.Done()
		defer func() {
			if err := recover(); err != nil {
				app.logger.WithField("panic", fmt.Sprint(err)).Error("background task panicked")
			}
		}()
		fn()
	}()
}
