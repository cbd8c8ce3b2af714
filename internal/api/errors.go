package api

import (
	"encoding/json"
	"errors"
	"net/http"
)

// ErrInvalidRequest is returned by ParseSetRequest for any body that is not a
// well-formed set request.
var ErrInvalidRequest = errors.New("api: invalid request")

// statusResponse is the body of every set reply.
type statusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// Prebuilt set replies. Clients compare these byte for byte.
var (
	bodyOK             = mustMarshal(statusResponse{Status: "ok"})
	bodyInvalidRequest = mustMarshal(statusResponse{Status: "error", Message: "invalid request"})
	bodyInternalError  = mustMarshal(statusResponse{Status: "error", Message: "internal error"})
)

func mustMarshal(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}

// writeJSON marshals v and writes it without a trailing newline.
func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		writeInternalError(w)
		return
	}
	writeBody(w, status, body)
}

// writeBody writes a prepared JSON body.
func writeBody(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck // best-effort write; the client may have gone
	w.Write(body)
}

// writeInternalError writes a 500 response.
func writeInternalError(w http.ResponseWriter) {
	writeBody(w, http.StatusInternalServerError, bodyInternalError)
}
