package main

import (
	"errors"
	"net/http"
)

func (app *application) tasksHandler(w http.ResponseWriter, r *http.Request, acct *account) {
	app.renderTasks(w, r, http.StatusOK, acct, nil)
}

func (app *application) createTaskHandler(w http.ResponseWriter, r *http.Request, acct *account) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	description := r.PostForm.Get("description")

	if _, err := app.tasks.create(r.Context(), description, acct.ID); err != nil {
		var vErr *validationError
		if errors.As(err, &vErr) {
			app.pushFlash(w, r, flashError, vErr.first())
			app.renderTasks(w, r, http.StatusUnprocessableEntity, acct, map[string]string{"description": description})
			return
		}
		app.serverError(w, r, err)
		return
	}

	app.pushFlash(w, r, flashSuccess, "Task added!")
	http.Redirect(w, r, "/tasks", http.StatusSeeOther)
}

func (app *application) renderTasks(w http.ResponseWriter, r *http.Request, status int, acct *account, form map[string]string) {
	tasks, err := app.tasks.listFor(r.Context(), acct.ID)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	app.render(w, r, status, "tasks.html", templateData{
		Account: acct,
		Tasks:   tasks,
		Form:    form,
	})
}

func (app *application) toggleTaskHandler(w http.ResponseWriter, r *http.Request, acct *account) {
	id, ok := pathID(r)
	if !ok {
		app.notFound(w)
		return
	}

	if _, err := app.tasks.toggle(r.Context(), id, acct.ID); err != nil {
		app.resourceError(w, r, err, "You do not have permission to update this task.", "/tasks")
		return
	}
	http.Redirect(w, r, "/tasks", http.StatusSeeOther)
}

func (app *application) deleteTaskHandler(w http.ResponseWriter, r *http.Request, acct *account) {
	id, ok := pathID(r)
	if !ok {
		app.notFound(w)
		return
	}

	if err := app.tasks.delete(r.Context(), id, acct.ID); err != nil {
		app.resourceError(w, r, err, "You do not have permission to delete this task.", "/tasks")
		return
	}

	app.pushFlash(w, r, flashSuccess, "Task deleted!")
	http.Redirect(w, r, "/tasks", http.StatusSeeOther)
}
