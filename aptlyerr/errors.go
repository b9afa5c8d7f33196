package aptlyerr

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// ParseError reports a malformed aptly key, direct reference, Debian
// version, or control file.
type ParseError struct {
	Kind  string // e.g. "version", "aptly key", "direct reference", "control file"
	Input string
	Msg   string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Kind, e.Input, e.Msg)
}

// LocalIOError reports a package file that is missing, unreadable, not a
// .deb, or has no control member.
type LocalIOError struct {
	Path string
	Msg  string
	Err  error
}

func (e *LocalIOError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Path, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Msg)
}

func (e *LocalIOError) Unwrap() error { return e.Err }

// ErrorDetail is one {error, meta} entry as reported by the server.
type ErrorDetail struct {
	Error string
	Meta  string
}

// APIError is a structured failure returned by the Aptly server: an HTTP
// status paired with zero or more {error, meta} entries parsed from the
// response body. Its Error() method formats the message by case:
//
//   - no errors, no message: "{code} {phrase}"
//   - no errors, raw message: "{code} {phrase}: {message}"
//   - exactly one error: "{error} ({meta})" when meta is non-empty, else
//     "{error}"
//   - more than one error: "Multiple errors: e1 (m1); e2; ..."
type APIError struct {
	Status int
	Errors []ErrorDetail
	RawMsg string
}

// NewAPIError parses a server response body into an APIError. The body may
// be a single JSON object with an "error" key (optionally "meta"), a JSON
// list of such objects, or anything else (kept verbatim as RawMsg).
func NewAPIError(status int, body []byte) *APIError {
	e := &APIError{Status: status, RawMsg: string(body)}
	if len(body) == 0 {
		return e
	}

	var single map[string]any
	var list []map[string]any

	if err := json.Unmarshal(body, &single); err == nil {
		list = []map[string]any{single}
	} else if err := json.Unmarshal(body, &list); err != nil {
		return e
	}

	details := make([]ErrorDetail, 0, len(list))
	for _, m := range list {
		rawErr, ok := m["error"]
		if !ok {
			return e
		}
		errStr, ok := rawErr.(string)
		if !ok {
			return e
		}
		meta := ""
		if rawMeta, ok := m["meta"]; ok {
			switch v := rawMeta.(type) {
			case string:
				meta = v
			default:
				if b, err := json.Marshal(v); err == nil {
					meta = string(b)
				}
			}
		}
		details = append(details, ErrorDetail{Error: errStr, Meta: meta})
	}
	e.Errors = details
	return e
}

func (e *APIError) Error() string {
	phrase := http.StatusText(e.Status)
	if len(e.Errors) == 0 {
		if e.RawMsg == "" {
			return fmt.Sprintf("%d %s", e.Status, phrase)
		}
		return fmt.Sprintf("%d %s: %s", e.Status, phrase, e.RawMsg)
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].format()
	}
	s := "Multiple errors: "
	for i, d := range e.Errors {
		if i > 0 {
			s += "; "
		}
		s += d.format()
	}
	return s
}

func (d ErrorDetail) format() string {
	if d.Meta != "" {
		return fmt.Sprintf("%s (%s)", d.Error, d.Meta)
	}
	return d.Error
}

// IsNotFound reports whether err is an APIError with status 404.
func IsNotFound(err error) bool { return hasStatus(err, http.StatusNotFound) }

// IsInvalidRequest reports whether err is an APIError with status 400.
func IsInvalidRequest(err error) bool { return hasStatus(err, http.StatusBadRequest) }

// IsConflict reports whether err is an APIError with status 409.
func IsConflict(err error) bool { return hasStatus(err, http.StatusConflict) }

// IsServerError reports whether err is an APIError with a 5xx status.
func IsServerError(err error) bool {
	var apiErr *APIError
	if !asAPIError(err, &apiErr) {
		return false
	}
	return apiErr.Status >= 500 && apiErr.Status < 600
}

func hasStatus(err error, status int) bool {
	var apiErr *APIError
	if !asAPIError(err, &apiErr) {
		return false
	}
	return apiErr.Status == status
}

func asAPIError(err error, target **APIError) bool {
	for err != nil {
		if e, ok := err.(*APIError); ok {
			*target = e
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// TransportError reports connection refused, DNS failure, timeout, TLS
// failure, or cancellation at the HTTP transport level.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error during %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ConfigurationError reports a missing URL, invalid signing configuration,
// unknown profile, or ambiguous profile selection.
type ConfigurationError struct {
	Msg string
}

func (e *ConfigurationError) Error() string { return e.Msg }
