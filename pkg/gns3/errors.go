package gns3

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/newtron-network/gns3lab/pkg/util"
)

// StatusError is returned when the controller answers with anything other
// than the single status expected for a call.
type StatusError struct {
	Call     string // e.g. "create project"
	Method   string
	Path     string
	Status   int
	Expected int
	Message  string // controller-supplied message, if any
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("gns3: %s: %s %s returned HTTP %d (expected %d)",
		e.Call, e.Method, e.Path, e.Status, e.Expected)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

func (e *StatusError) Unwrap() error {
	return util.ErrUnexpectedStatus
}

// errorMessage extracts a one-line message from a controller error body.
// GNS3 answers errors with {"message": "...", "status": N}; other bodies are
// reduced to their first line.
func errorMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		return firstLine(payload.Message)
	}
	return firstLine(string(body))
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}
