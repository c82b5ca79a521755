package search

import (
	"strconv"
	"strings"
)

// Grep drives POSIX-style grep with path:line:content output.
//
// grep's command line has no portable equivalent of depth limits, type
// filters or exclude globs, so those request fields are dropped for this
// engine. Capabilities reflects that.
type Grep struct{}

// NewGrep creates the line-oriented engine.
func NewGrep() *Grep {
	return &Grep{}
}

func (e *Grep) Name() string { return EngineGrep }

func (e *Grep) Executable() string { return "grep" }

func (e *Grep) Capabilities() Capabilities {
	return NewCapabilities(CapCaseInsensitive, CapWholeWord, CapLiteral)
}

func (e *Grep) BuildArgs(req Request) []string {
	args := []string{
		"--recursive",
		"--line-number",
		"--with-filename",
		"--max-count", strconv.Itoa(req.MaxResults),
	}

	if !req.CaseSensitive {
		args = append(args, "--ignore-case")
	}
	if req.WholeWord {
		args = append(args, "--word-regexp")
	}
	if req.UseRegex {
		args = append(args, "--extended-regexp")
	} else {
		args = append(args, "--fixed-strings")
	}

	return append(args, "--", req.Pattern, req.Path)
}

// ParseLine splits on the first colon for the path and the next one for the
// line number. A path containing a colon therefore mis-parses; such lines
// usually fail the line number check and are dropped.
func (e *Grep) ParseLine(line string) (Result, bool) {
	path, rest, ok := strings.Cut(line, ":")
	if !ok {
		return Result{}, false
	}
	num, content, ok := strings.Cut(rest, ":")
	if !ok {
		return Result{}, false
	}
	n, err := strconv.ParseUint(num, 10, 32)
	if err != nil || n == 0 {
		return Result{}, false
	}
	return Result{Path: path, LineNumber: uint32(n), Content: content}, true
}
