package main

import (
	"errors"
	"mime"
	"net/http"
)

func (app *application) homeHandler(w http.ResponseWriter, r *http.Request, acct *account) {
	app.renderHome(w, r, http.StatusOK, acct, nil)
}

func (app *application) createNoteHandler(w http.ResponseWriter, r *http.Request, acct *account) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	subject := r.PostForm.Get("subject")
	content := r.PostForm.Get("note")

	_, err := app.notes.create(r.Context(), subject, content, acct.ID)
	if err != nil {
		var vErr *validationError
		if errors.As(err, &vErr) {
			app.pushFlash(w, r, flashError, vErr.first())
			app.renderHome(w, r, http.StatusUnprocessableEntity, acct, map[string]string{"subject": subject, "note": content})
			return
		}
		app.serverError(w, r, err)
		return
	}

	app.pushFlash(w, r, flashSuccess, "Note added!")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (app *application) renderHome(w http.ResponseWriter, r *http.Request, status int, acct *account, form map[string]string) {
	notes, err := app.notes.listFor(r.Context(), acct.ID)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	tasks, err := app.tasks.listFor(r.Context(), acct.ID)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	app.render(w, r, status, "home.html", templateData{
		Account: acct,
		Notes:   notes,
		Tasks:   tasks,
		Form:    form,
	})
}

func (app *application) dashboardHandler(w http.ResponseWriter, r *http.Request, acct *account) {
	notes, err := app.notes.listFor(r.Context(), acct.ID)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	tasks, err := app.tasks.listFor(r.Context(), acct.ID)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	app.render(w, r, http.StatusOK, "dashboard.html", templateData{
		Account: acct,
		Notes:   notes,
		Tasks:   tasks,
	})
}

func (app *application) downloadNoteHandler(w http.ResponseWriter, r *http.Request, acct *account) {
	id, ok := pathID(r)
	if !ok {
		app.notFound(w)
		return
	}

	export, err := app.notes.export(r.Context(), id, acct)
	if err != nil {
		app.resourceError(w, r, err, "You do not have permission to download this note.", "/")
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": export.filename}))
	w.Write([]byte(export.body))
}

func (app *application) deleteNoteHandler(w http.ResponseWriter, r *http.Request, acct *account) {
	id, ok := pathID(r)
	if !ok {
		app.notFound(w)
		return
	}

	if err := app.notes.delete(r.Context(), id, acct.ID); err != nil {
		app.resourceError(w, r, err, "You do not have permission to delete this note.", "/")
		return
	}

	app.pushFlash(w, r, flashSuccess, "Note deleted!")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (app *application) editNoteFormHandler(w http.ResponseWriter, r *http.Request, acct *account) {
	id, ok := pathID(r)
	if !ok {
		app.notFound(w)
		return
	}

	n, err := app.notes.get(r.Context(), id, acct.ID)
	if err != nil {
		app.resourceError(w, r, err, "You do not have permission to edit this note.", "/")
		return
	}
	app.render(w, r, http.StatusOK, "note.html", templateData{Account: acct, Note: n})
}

func (app *application) editNoteHandler(w http.ResponseWriter, r *http.Request, acct *account) {
	id, ok := pathID(r)
	if !ok {
		app.notFound(w)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	n, err := app.notes.update(r.Context(), id, r.PostForm.Get("note"), acct.ID)
	if err != nil {
		var vErr *validationError
		if errors.As(err, &vErr) {
			app.pushFlash(w, r, flashError, vErr.first())
			app.render(w, r, http.StatusUnprocessableEntity, "note.html", templateData{Account: acct, Note: n})
			return
		}
		app.resourceError(w, r, err, "You do not have permission to edit this note.", "/")
		return
	}

	app.pushFlash(w, r, flashSuccess, "Note updated!")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
