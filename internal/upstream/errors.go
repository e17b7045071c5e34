package upstream

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Kind classifies how an upstream call failed.
type Kind int

const (
	// KindTransport: the request never produced a response (DNS, refused,
	// timeout). Distinguished from server-returned errors everywhere.
	KindTransport Kind = iota
	// KindHTTP: an error status with a structured JSON error body.
	KindHTTP
	// KindOpaque: an error status with a non-JSON body (HTML error page).
	KindOpaque
	// KindRejected: a 2xx response whose payload says success=false or is
	// missing the expected field.
	KindRejected
)

// Code is the stable error vocabulary the gateway exposes instead of the
// upstream's human-readable message strings.
type Code string

const (
	CodeUnauthorized     Code = "unauthorized"
	CodeForbidden        Code = "forbidden"
	CodeNotFound         Code = "not_found"
	CodeAlreadySubmitted Code = "already_submitted"
	CodeValidation       Code = "validation"
	CodeServer           Code = "server_error"
	CodeUnavailable      Code = "unavailable"
	CodeUnknown          Code = "unknown"
)

// phraseCodes is the one place upstream message phrases are matched. The
// upstream has no structured error-code contract, so known phrases are mapped
// here and nowhere else.
var phraseCodes = []struct {
	phrase string
	code   Code
}{
	{"not authorized", CodeUnauthorized},
	{"unauthorized", CodeUnauthorized},
	{"invalid token", CodeUnauthorized},
	{"token expired", CodeUnauthorized},
	{"forbidden", CodeForbidden},
	{"not found", CodeNotFound},
	{"no demand", CodeNotFound},
	{"already submitted", CodeAlreadySubmitted},
	{"already exists", CodeAlreadySubmitted},
	{"already started", CodeAlreadySubmitted},
	{"validation", CodeValidation},
	{"invalid", CodeValidation},
	{"required", CodeValidation},
}

// Error is the single error type upstream calls return. It carries enough to
// pick a user-facing string without any caller inspecting raw messages.
type Error struct {
	Op         string
	Kind       Kind
	HTTPStatus int
	Code       Code
	Message    string
	Err        error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindTransport:
		return fmt.Sprintf("upstream %s: transport failure: %v", e.Op, e.Err)
	case KindRejected:
		return fmt.Sprintf("upstream %s: rejected payload: %s", e.Op, e.Message)
	default:
		return fmt.Sprintf("upstream %s: status %d code=%s: %s", e.Op, e.HTTPStatus, e.Code, e.Message)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// AsError extracts an *Error from an error chain.
func AsError(err error) (*Error, bool) {
	var ue *Error
	if errors.As(err, &ue) {
		return ue, true
	}
	return nil, false
}

// IsCode reports whether err is an upstream error with the given code.
func IsCode(err error, code Code) bool {
	ue, ok := AsError(err)
	return ok && ue.Code == code
}

func transportError(op string, err error) *Error {
	return &Error{Op: op, Kind: KindTransport, Code: CodeUnavailable, Err: err}
}

func rejectedError(op, message string) *Error {
	if message == "" {
		message = "response payload missing expected fields"
	}
	return &Error{Op: op, Kind: KindRejected, Code: codeForPhrase(message, 200), Message: message}
}

// translateStatus builds an Error from an upstream error response body. The
// body may be a JSON envelope with a message/error field or an opaque HTML
// page; both shapes are handled here.
func translateStatus(op string, status int, body []byte) *Error {
	msg, structured := extractMessage(body)

	kind := KindHTTP
	if !structured {
		kind = KindOpaque
	}

	return &Error{
		Op:         op,
		Kind:       kind,
		HTTPStatus: status,
		Code:       codeForPhrase(msg, status),
		Message:    msg,
	}
}

func extractMessage(body []byte) (string, bool) {
	var envelope struct {
		Message string `json:"message"`
		Error   string `json:"error"`
		Msg     string `json:"msg"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		// Non-JSON body (HTML error page). Keep a trimmed sample for logs.
		s := strings.TrimSpace(string(body))
		if len(s) > 120 {
			s = s[:120]
		}
		return s, false
	}

	for _, m := range []string{envelope.Message, envelope.Error, envelope.Msg} {
		if strings.TrimSpace(m) != "" {
			return m, true
		}
	}
	return "", true
}

func codeForPhrase(message string, status int) Code {
	lower := strings.ToLower(message)
	for _, pc := range phraseCodes {
		if strings.Contains(lower, pc.phrase) {
			return pc.code
		}
	}

	switch status {
	case 400:
		return CodeValidation
	case 401:
		return CodeUnauthorized
	case 403:
		return CodeForbidden
	case 404:
		return CodeNotFound
	}
	if status >= 500 {
		return CodeServer
	}
	return CodeUnknown
}
