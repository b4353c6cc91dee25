package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
)

func (app *application) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	heathCheck := struct {
		Status      string `json:"status"`
		Environment string `json:"environment"`
		Version     string `json:"version"`
	}{
		Status:      "available",
		Environment: app.config.env,
		Version:     version,
	}
	app.writeJSON(w, r, http.StatusOK, heathCheck)
}

func (app *application) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		app.requestLogger(r).WithError(err).Error("could not encode response")
		writeError(w, errors.New("internal server error"), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}

func composeJSONError(err error) string {
	jsonError := map[string]string{
		"error": err.Error(),
	}
	result, err := json.Marshal(jsonError)
	if err != nil {
		return `{"error":"internal server error"}`
	}
	return string(result)
}

func writeError(w http.ResponseWriter, err error, statusCode int) {
	h := w.Header()
	h.Del("Content-Length")
	h.Set("Content-Type", "application/json")
	h.Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(statusCode)
	fmt.Fprintln(w, composeJSONError(err))
}

// serverError logs the real cause and sends a bare 500.
func (app *application) serverError(w http.ResponseWriter, r *http.Request, err error) {
	app.requestLogger(r).WithError(err).Error("internal server error")
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func (app *application) notFound(w http.ResponseWriter) {
	http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
}

// pathID reads the numeric {id} wildcard. Anything else is reported as not
// found, like an unknown id.
func pathID(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}

// resourceError answers a failed note or task lookup. Ownership violations
// become a flash notice and a redirect to fallback.
func (app *application) resourceError(w http.ResponseWriter, r *http.Request, err error, denied, fallback string) {
	switch {
	case errors.Is(err, errNotFound):
		app.notFound(w)
	case errors.Is(err, errForbidden):
		app.requestLogger(r).WithError(err).Warn("ownership check failed")
		app.pushFlash(w, r, flashError, denied)
		http.Redirect(w, r, fallback, http.StatusSeeOther)
	default:
		app.serverError(w, r, err)
	}
}
