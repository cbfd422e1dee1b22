package api

import (
	"github.com/the-lightning-land/portald/network"
	"io"
	"net/http"
)

const usage = "Use /check-connectivity or /list-connections\n"

func (a *Api) handleUsage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)

		_, err := io.WriteString(w, usage)
		if err != nil {
			a.log.Errorf("Could not write usage: %v", err)
		}
	}
}

func (a *Api) handleCommand(command network.Command) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a.respond(w, r, command)
	}
}

func (a *Api) handleShutdown() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a.respond(w, r, network.Shutdown)
		a.requestShutdown()
	}
}

func (a *Api) respond(w http.ResponseWriter, r *http.Request, command network.Command) {
	res, err := a.commander.Send(r.Context(), command)
	if err != nil {
		a.commandError(w, command, err)
		return
	}

	a.jsonResponse(w, res, http.StatusOK)
}
