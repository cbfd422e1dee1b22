package api

import (
	"encoding/json"
	"github.com/the-lightning-land/portald/network"
	"net/http"
)

type errorResponse struct {
	Errors []string `json:"errors"`
}

func (a *Api) jsonResponse(w http.ResponseWriter, v interface{}, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		a.log.Errorf("Could not respond with JSON: %v", err)
	}
}

// commandError responds with the chain of err, led by the failed action.
func (a *Api) commandError(w http.ResponseWriter, command network.Command, err error) {
	a.log.Warnf("Failed to %v: %v", command, err)

	errs := append([]string{"Failed to " + command.String()}, network.ErrorChain(err)...)

	a.jsonResponse(w, &errorResponse{Errors: errs}, http.StatusInternalServerError)
}
