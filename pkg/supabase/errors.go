package supabase

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	srvErrors "github.com/querydesk/querydesk/pkg/errors"
)

// codeFunctionNotFound is returned by PostgREST when no function matches the call.
const codeFunctionNotFound = "PGRST202"

// RPCError is the error body PostgREST sends for a failed call. Code is a SQLSTATE
// for errors raised by Postgres and a PGRSTxxx code for PostgREST's own.
type RPCError struct {
	Function   string `json:"-"`
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	Hint       string `json:"hint"`
	Details    string `json:"details"`
}

func newRPCError(fn string, status int, body []byte) *RPCError {
	e := &RPCError{Function: fn, StatusCode: status}
	var raw struct {
		Code    string          `json:"code"`
		Message string          `json:"message"`
		Hint    *string         `json:"hint"`
		Details json.RawMessage `json:"details"`
	}
	if err := json.Unmarshal(body, &raw); err != nil || raw.Message == "" {
		e.Message = http.StatusText(status)
		if len(body) > 0 {
			e.Message = string(body)
		}
		return e
	}
	e.Code = raw.Code
	e.Message = raw.Message
	if raw.Hint != nil {
		e.Hint = *raw.Hint
	}
	e.Details = detailsText(raw.Details)
	return e
}

func detailsText(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc %s failed (%d %s): %s", e.Function, e.StatusCode, e.Code, e.Message)
}

// FunctionMissing reports whether the error says the called function does not
// exist. Postgres raises 42883 for any unknown function or operator, including
// type mismatches inside the executed statement, so only a message naming the
// called function counts.
func (e *RPCError) FunctionMissing() bool {
	if e.Code == codeFunctionNotFound {
		return true
	}
	if e.Function == "" || !srvErrors.IsFunctionMissingMessage(e.Message) {
		return false
	}
	msg := strings.ToLower(e.Message)
	fn := strings.ToLower(e.Function)
	return strings.Contains(msg, fn+"(") || strings.Contains(msg, "function "+fn) || strings.Contains(msg, "."+fn+" ")
}

func AsRPCError(err error) (*RPCError, bool) {
	var e *RPCError
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
