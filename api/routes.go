package main

import (
	"net/http"
)

func composeRoutes(app *application) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthcheck", app.healthCheckHandler)
	mux.Handle("GET /metrics", app.metrics.handler())

	mux.HandleFunc("GET /login", app.loginFormHandler)
	mux.HandleFunc("POST /login", app.loginHandler)
	mux.HandleFunc("GET /sign-up", app.signUpFormHandler)
	mux.HandleFunc("POST /sign-up", app.signUpHandler)
	mux.HandleFunc("GET /logout", app.requireAuth(app.logoutHandler))

	mux.HandleFunc("GET /{$}", app.requireAuth(app.homeHandler))
	mux.HandleFunc("POST /{$}", app.requireAuth(app.createNoteHandler))
	mux.HandleFunc("GET /dashboard", app.requireAuth(app.dashboardHandler))
	mux.HandleFunc("GET /download-note/{id}", app.requireAuth(app.downloadNoteHandler))
	mux.HandleFunc("POST /delete-note/{id}", app.requireAuth(app.deleteNoteHandler))
	mux.HandleFunc("GET /edit-note/{id}", app.requireAuth(app.editNoteFormHandler))
	mux.HandleFunc("POST /edit-note/{id}", app.requireAuth(app.editNoteHandler))

	mux.HandleFunc("GET /tasks", app.requireAuth(app.tasksHandler))
	mux.HandleFunc("POST /tasks", app.requireAuth(app.createTaskHandler))
	mux.HandleFunc("POST /toggle-task/{id}", app.requireAuth(app.toggleTaskHandler))
	mux.HandleFunc("POST /delete-task/{id}", app.requireAuth(app.deleteTaskHandler))

	mux.HandleFunc("POST /chat", app.requireAuthJSON(app.chatHandler))

	return app.standardMiddleware(mux)
}

// standardMiddleware wraps the mux. logRequest is outermost so a recovered
// panic is still logged with its request id and final status.
func (app *application) standardMiddleware(mux http.Handler) http.Handler {
	return app.logRequest(app.recoverPanic(app.loadFlashes(secureHeaders(app.metrics.instrument(mux)))))
}
