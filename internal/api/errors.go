package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/matheus3301/wtox/internal/errs"
)

// Error is a non-2xx response. Code and Message come from the service's
// {"code", "message"} body when it sent one.
type Error struct {
	Path    string
	Status  int
	Code    string
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s (%d %s)", e.Path, e.Message, e.Status, e.Code)
	}
	return fmt.Sprintf("%s: status %d", e.Path, e.Status)
}

// Is maps 401 responses to errs.ErrUnauthorized.
func (e *Error) Is(target error) bool {
	return target == errs.ErrUnauthorized && e.Status == http.StatusUnauthorized
}

func newError(path string, resp *http.Response) *Error {
	e := &Error{Path: path, Status: resp.StatusCode}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return e
	}
	var body struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if json.Unmarshal([]byte(strings.TrimSpace(string(data))), &body) == nil {
		e.Code = body.Code
		e.Message = body.Message
	}
	return e
}

// ErrorMessage returns the text to show a user for err: the service's own
// message when present, the error string otherwise.
func ErrorMessage(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return err.Error()
}
