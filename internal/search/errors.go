package search

import (
	"errors"
	"fmt"
	"time"
)

// Error taxonomy of a search call. Every failure returned by Searcher.Search
// wraps exactly one of these.
var (
	ErrUnsupportedEngine = errors.New("unsupported search engine")
	ErrProcessSpawn      = errors.New("failed to launch search engine")
	ErrEngineExecution   = errors.New("search engine failed")
	ErrTimeout           = errors.New("search timeout")
	ErrInvalidRequest    = errors.New("invalid search request")
)

// Error is a search failure with its operation context.
type Error struct {
	Op      string        // operation name, e.g. "search.run"
	Engine  string        // engine identifier as requested
	Err     error         // one of the sentinels above
	Detail  string        // stderr text, OS error text or validation message
	Timeout time.Duration // configured budget, set for ErrTimeout only
}

func (e *Error) Error() string {
	switch {
	case errors.Is(e.Err, ErrTimeout):
		return fmt.Sprintf("%s: operation took longer than %s", e.Err, e.Timeout)
	case e.Engine != "" && e.Detail != "":
		return fmt.Sprintf("%s %s: %s", e.Engine, e.Err, e.Detail)
	case e.Engine != "":
		return fmt.Sprintf("%s: %s", e.Err, e.Engine)
	case e.Detail != "":
		return fmt.Sprintf("%s: %s", e.Err, e.Detail)
	default:
		return e.Err.Error()
	}
}

func (e *Error) Unwrap() error { return e.Err }

func newError(op, engine string, err error, detail string) *Error {
	return &Error{Op: op, Engine: engine, Err: err, Detail: detail}
}

func timeoutError(op, engine string, timeout time.Duration) *Error {
	return &Error{Op: op, Engine: engine, Err: ErrTimeout, Timeout: timeout}
}

// Code is a machine-readable error category, suitable for JSON output.
type Code string

const (
	CodeUnknown           Code = "UNKNOWN"
	CodeUnsupportedEngine Code = "UNSUPPORTED_ENGINE"
	CodeProcessSpawn      Code = "PROCESS_SPAWN_FAILED"
	CodeEngineExecution   Code = "ENGINE_EXECUTION_FAILED"
	CodeTimeout           Code = "TIMEOUT"
	CodeInvalidRequest    Code = "INVALID_REQUEST"
)

var codes = []struct {
	err  error
	code Code
}{
	{ErrUnsupportedEngine, CodeUnsupportedEngine},
	{ErrProcessSpawn, CodeProcessSpawn},
	{ErrEngineExecution, CodeEngineExecution},
	{ErrTimeout, CodeTimeout},
	{ErrInvalidRequest, CodeInvalidRequest},
}

// CodeOf returns the Code for err, or CodeUnknown when err is not a search error.
func CodeOf(err error) Code {
	if err == nil {
		return CodeUnknown
	}
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return CodeUnknown
}

// IsTimeout reports whether err is a wall-clock budget violation.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}
