package main

import (
	"errors"
	"net/http"
)

const loginFailedMessage = "Incorrect email or password, try again."

func (app *application) loginFormHandler(w http.ResponseWriter, r *http.Request) {
	acct, err := app.currentAccount(r)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	app.render(w, r, http.StatusOK, "login.html", templateData{Account: acct})
}

func (app *application) loginHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	email := r.PostForm.Get("email")
	password := r.PostForm.Get("password")

	acct, err := app.accounts.login(r.Context(), email, password)
	if err != nil {
		if errors.Is(err, errAuth) {
			app.requestLogger(r).WithError(err).Info("login failed")
			app.pushFlash(w, r, flashError, loginFailedMessage)
			app.render(w, r, http.StatusUnauthorized, "login.html", templateData{
				Form: map[string]string{"email": email},
			})
			return
		}
		app.serverError(w, r, err)
		return
	}

	if err := app.sessions.issue(w, acct.ID); err != nil {
		app.serverError(w, r, err)
		return
	}
	app.pushFlash(w, r, flashSuccess, "Logged in successfully!")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (app *application) logoutHandler(w http.ResponseWriter, r *http.Request, acct *account) {
	app.sessions.clear(w)
	app.requestLogger(r).WithField("account_id", acct.ID).Info("logged out")
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (app *application) signUpFormHandler(w http.ResponseWriter, r *http.Request) {
	acct, err := app.currentAccount(r)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	app.render(w, r, http.StatusOK, "sign_up.html", templateData{Account: acct})
}

func (app *application) signUpHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	email := r.PostForm.Get("email")
	name := r.PostForm.Get("Name")

	acct, err := app.accounts.register(r.Context(), email, name, r.PostForm.Get("password"), r.PostForm.Get("conpass"))
	if err != nil {
		var vErr *validationError
		if errors.As(err, &vErr) {
			app.pushFlash(w, r, flashError, vErr.first())
			app.render(w, r, http.StatusUnprocessableEntity, "sign_up.html", templateData{
				Form: map[string]string{"email": email, "name": name},
			})
			return
		}
		app.serverError(w, r, err)
		return
	}

	if err := app.sessions.issue(w, acct.ID); err != nil {
		app.serverError(w, r, err)
		return
	}
	app.welcome(acct)
	app.pushFlash(w, r, flashSuccess, "Account created!")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
