package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/nerrad567/relay-core/internal/outputs"
)

// maxSetBodyBytes is how much of a set request body is read. Anything past
// it is ignored.
const maxSetBodyBytes = 32

// Set request outcomes reported to metrics.
const (
	setResultOK          = "ok"
	setResultInvalid     = "invalid"
	setResultOutOfRange  = "out_of_range"
	setResultAborted     = "aborted"
	setResultDriverError = "driver_error"
)

// SetRequest is a decoded POST /output body.
type SetRequest struct {
	Output int
	State  int
}

// On reports whether the request turns the line on.
func (r SetRequest) On() bool {
	return r.State != 0
}

// outputsResponse is the GET /outputs body.
type outputsResponse struct {
	Outputs []int `json:"outputs"`
}

// handleGetOutputs returns every line level in index order as 0 or 1, read
// back from the driver. A driver read failure aborts the connection.
func (s *Server) handleGetOutputs(w http.ResponseWriter, r *http.Request) {
	levels, err := s.bank.Snapshot()
	if err != nil {
		s.logger.Error("output read failed",
			"error", err,
			"request_id", r.Context().Value(ctxKeyRequestID),
		)
		panic(http.ErrAbortHandler)
	}
	writeJSON(w, http.StatusOK, outputsResponse{Outputs: encodeLevels(levels)})
}

func encodeLevels(levels []bool) []int {
	values := make([]int, len(levels))
	for i, on := range levels {
		values[i] = outputs.LevelValue(on)
	}
	return values
}

// handleSetOutput drives one line.
//
// An empty or unreadable body, or a driver failure, aborts the connection
// without a response. A malformed body or an index outside the bank gets the
// generic error reply with status 200.
func (s *Server) handleSetOutput(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxSetBodyBytes))
	if err != nil || len(body) == 0 {
		s.logger.Warn("aborting set request: no body",
			"error", err,
			"request_id", r.Context().Value(ctxKeyRequestID),
		)
		s.observeSet(setResultAborted)
		panic(http.ErrAbortHandler)
	}

	req, err := ParseSetRequest(body)
	if err != nil {
		s.logger.Debug("rejecting set request", "body", string(body), "error", err)
		s.observeSet(setResultInvalid)
		writeBody(w, http.StatusOK, bodyInvalidRequest)
		return
	}

	if !s.bank.Valid(req.Output) {
		s.logger.Debug("rejecting set request: output out of range", "output", req.Output)
		s.observeSet(setResultOutOfRange)
		writeBody(w, http.StatusOK, bodyInvalidRequest)
		return
	}

	if err := s.bank.Write(req.Output, req.On()); err != nil {
		s.logger.Error("output write failed",
			"output", req.Output,
			"state", outputs.LevelValue(req.On()),
			"error", err,
		)
		s.observeSet(setResultDriverError)
		panic(http.ErrAbortHandler)
	}

	s.logger.Info("output set", "output", req.Output, "state", outputs.LevelValue(req.On()))
	s.observeSet(setResultOK)
	writeBody(w, http.StatusOK, bodyOK)
}

func (s *Server) observeSet(result string) {
	if s.metrics != nil {
		s.metrics.ObserveSetResult(result)
	}
}

// ParseSetRequest decodes a set request body.
//
// The preferred form is a JSON object with exactly the keys "output" and
// "state", both integers, in any order with any whitespace. For devices in
// the field the compact legacy form is also accepted by prefix: the body
// must begin with {"output":<int>,"state":<int> and whatever follows the
// second integer is ignored. That covers bodies cut short by the read limit
// and bodies with trailing bytes.
//
// Returns:
//   - SetRequest: decoded request; the index is not range-checked
//   - error: ErrInvalidRequest
func ParseSetRequest(body []byte) (SetRequest, error) {
	if req, ok := parseStrict(body); ok {
		return req, nil
	}
	if req, ok := parseLegacy(body); ok {
		return req, nil
	}
	return SetRequest{}, ErrInvalidRequest
}

// parseStrict accepts a complete object with exactly the two keys. A repeated
// key fails here so the legacy prefix parse decides, which keeps the first
// occurrence.
func parseStrict(body []byte) (SetRequest, bool) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	if tok, err := dec.Token(); err != nil || tok != json.Delim('{') {
		return SetRequest{}, false
	}
	fields := make(map[string]json.RawMessage, 2)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return SetRequest{}, false
		}
		key, ok := tok.(string)
		if !ok {
			return SetRequest{}, false
		}
		if _, seen := fields[key]; seen {
			return SetRequest{}, false
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return SetRequest{}, false
		}
		fields[key] = raw
	}
	if tok, err := dec.Token(); err != nil || tok != json.Delim('}') {
		return SetRequest{}, false
	}
	if _, err := dec.Token(); err != io.EOF {
		return SetRequest{}, false // trailing data
	}
	if len(fields) != 2 {
		return SetRequest{}, false
	}

	output, ok := decodeInt(fields["output"])
	if !ok {
		return SetRequest{}, false
	}
	state, ok := decodeInt(fields["state"])
	if !ok {
		return SetRequest{}, false
	}
	return SetRequest{Output: output, State: state}, true
}

// decodeInt accepts a JSON integer literal that fits in int.
func decodeInt(raw json.RawMessage) (int, bool) {
	if raw == nil {
		return 0, false
	}
	var v int64
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, false
	}
	if int64(int(v)) != v {
		return 0, false
	}
	return int(v), true
}

// legacySetFormat is the fixed layout older clients send.
const legacySetFormat = `{"output":%d,"state":%d`

func parseLegacy(body []byte) (SetRequest, bool) {
	var req SetRequest
	n, _ := fmt.Sscanf(string(body), legacySetFormat, &req.Output, &req.State) //nolint:errcheck // n carries the result
	if n != 2 {
		return SetRequest{}, false
	}
	return req, true
}
