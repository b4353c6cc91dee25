package main

import (
	"encoding/json"
	"errors"
	"net/http"
)

const (
	maxChatRequestBytes = 1 << 20
	chatUnavailable     = "Sorry, the AI assistant is temporarily unavailable."
)

func (app *application) chatHandler(w http.ResponseWriter, r *http.Request, acct *account) {
	var input struct {
		Message string `json:"message"`
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxChatRequestBytes)
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, errors.New("No message provided"), http.StatusBadRequest)
		return
	}

	answer, err := app.askAssistant(r.Context(), input.Message)
	if err != nil {
		log := app.requestLogger(r).WithError(err).WithField("account_id", acct.ID)
		var extErr *externalServiceError
		switch {
		case errors.Is(err, errBadRequest):
			writeError(w, errors.New("No message provided"), http.StatusBadRequest)
		case errors.Is(err, errConfig):
			log.Error("chat assistant is not configured")
			writeError(w, errors.New(chatUnavailable), http.StatusServiceUnavailable)
		case errors.As(err, &extErr):
			log.WithField("kind", extErr.kind).Error("chat assistant call failed")
			writeError(w, errors.New(chatUnavailable), http.StatusInternalServerError)
		default:
			log.Error("chat assistant call failed")
			writeError(w, errors.New(chatUnavailable), http.StatusInternalServerError)
		}
		return
	}

	app.writeJSON(w, r, http.StatusOK, map[string]string{"answer": answer})
}
