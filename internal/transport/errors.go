package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

// Error codes carried by *Error.
const (
	CodeNativeCommand     = "NATIVE_COMMAND_ERROR"
	CodeHTTP              = "HTTP_ERROR"
	CodeNetwork           = "NETWORK_ERROR"
	CodeTimeout           = "TIMEOUT"
	CodeBridgeUnavailable = "BRIDGE_UNAVAILABLE"
	CodeInvalidRequest    = "INVALID_REQUEST"
)

// ErrorName is the renderer-visible error class for native bridge failures.
const ErrorName = "NativeCommandError"

// ErrBridgeUnavailable is returned when no native bridge or backend is reachable.
var ErrBridgeUnavailable = errors.New("native bridge unavailable")

// Error is the single normalized error shape handed back to the renderer.
type Error struct {
	Name       string `json:"name"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"statusCode"`
	Command    string `json:"command,omitempty"`
	Kind       string `json:"kind,omitempty"`

	Err error `json:"-"`
}

func (e *Error) Error() string {
	if e.Command != "" {
		return fmt.Sprintf("%s (%s): %s", e.Code, e.Command, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// kinded is implemented by backend errors that report their error kind.
type kinded interface {
	ErrorKind() string
}

// Backend error kinds.
const (
	KindDatabase        = "Database"
	KindStudentNotFound = "StudentNotFound"
	KindUserNotFound    = "UserNotFound"
	KindNotFound        = "NotFound"
	KindAuth            = "Auth"
	KindUnauthorized    = "Unauthorized"
	KindInvalidPassword = "InvalidPassword"
	KindValidation      = "Validation"
	KindAIService       = "AiService"
	KindFile            = "File"
	KindSerialization   = "Serialization"
	KindConfig          = "Config"
	KindNetwork         = "Network"
	KindInternal        = "Internal"
)

// KindStatus maps a backend error kind to an HTTP-like status.
func KindStatus(kind string) int {
	switch kind {
	case KindStudentNotFound, KindUserNotFound, KindNotFound:
		return 404
	case KindAuth, KindUnauthorized:
		return 401
	case KindInvalidPassword, KindValidation:
		return 400
	case KindNetwork:
		return 503
	default:
		return 500
	}
}

// NormalizeError converts any error from a transport into *Error.
// An *Error passes through unchanged, with command filled in if missing.
func NormalizeError(command string, err error) *Error {
	if err == nil {
		return nil
	}

	var te *Error
	if errors.As(err, &te) {
		if te.Command == "" {
			te.Command = command
		}
		return te
	}

	e := &Error{
		Name:    ErrorName,
		Command: command,
		Message: err.Error(),
		Err:     err,
	}

	var k kinded
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		e.Code = CodeTimeout
		e.StatusCode = 408
		e.Message = "request timed out"
	case errors.Is(err, ErrBridgeUnavailable):
		e.Code = CodeBridgeUnavailable
		e.StatusCode = 503
	case errors.As(err, &k):
		e.Code = CodeNativeCommand
		e.Kind = k.ErrorKind()
		e.StatusCode = KindStatus(e.Kind)
	case errors.As(err, &netErr):
		e.Code = CodeNetwork
		e.StatusCode = 0
	default:
		e.Code = CodeNativeCommand
		e.StatusCode = 500
	}
	return e
}

// IsNotFound reports whether err is a normalized 404.
func IsNotFound(err error) bool {
	return statusOf(err) == 404
}

// IsUnauthorized reports whether err is a normalized 401.
func IsUnauthorized(err error) bool {
	return statusOf(err) == 401
}

// IsBridgeUnavailable reports whether the request failed because no bridge was reachable.
func IsBridgeUnavailable(err error) bool {
	var te *Error
	if errors.As(err, &te) {
		return te.Code == CodeBridgeUnavailable
	}
	return errors.Is(err, ErrBridgeUnavailable)
}

func statusOf(err error) int {
	var te *Error
	if errors.As(err, &te) {
		return te.StatusCode
	}
	return 0
}

// UserMessage returns the text shown in an error toast.
func UserMessage(err error) string {
	var te *Error
	if errors.As(err, &te) {
		switch te.Code {
		case CodeBridgeUnavailable:
			return "Sunucuya bağlanılamadı"
		case CodeTimeout:
			return "İstek zaman aşımına uğradı"
		}
		if msg := strings.TrimSpace(te.Message); msg != "" {
			return msg
		}
	}
	if err != nil {
		return err.Error()
	}
	return ""
}
