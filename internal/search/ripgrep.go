package search

import (
	"encoding/json"
	"math"
	"strconv"

	"github.com/hession/searchmate/internal/logger"
)

// Ripgrep drives rg in --json mode.
type Ripgrep struct{}

// NewRipgrep creates the structured-output engine.
func NewRipgrep() *Ripgrep {
	return &Ripgrep{}
}

func (e *Ripgrep) Name() string { return EngineRipgrep }

func (e *Ripgrep) Executable() string { return "rg" }

func (e *Ripgrep) Capabilities() Capabilities {
	return NewCapabilities(CapCaseInsensitive, CapWholeWord, CapLiteral,
		CapDepthLimit, CapTypeFilter, CapExcludeGlob)
}

func (e *Ripgrep) BuildArgs(req Request) []string {
	args := []string{
		"--json",
		"--line-number",
		"--max-count", strconv.Itoa(req.MaxResults),
	}

	if !req.CaseSensitive {
		args = append(args, "-i")
	}
	if req.WholeWord {
		args = append(args, "-w")
	}
	if !req.UseRegex {
		args = append(args, "--fixed-strings")
	}
	if req.MaxDepth != nil {
		args = append(args, "--max-depth", strconv.FormatUint(uint64(*req.MaxDepth), 10))
	}
	for _, ft := range req.FileTypes {
		args = append(args, "-g", ft)
	}
	for _, ex := range req.ExcludePatterns {
		args = append(args, "--glob", "!"+ex)
	}

	return append(args, "--", req.Pattern, req.Path)
}

// rgEvent is one line of rg --json output. Only "match" and "summary" are
// recognized; begin, end and context events are skipped.
type rgEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// rgMatch fields are pointers so that a missing field is a decode failure
// rather than a zero value. rg reports non-UTF-8 paths and lines under
// "bytes" instead of "text"; those matches are skipped.
type rgMatch struct {
	Path       *rgText `json:"path"`
	Lines      *rgText `json:"lines"`
	LineNumber *uint64 `json:"line_number"`
}

type rgText struct {
	Text *string `json:"text"`
}

type rgSummary struct {
	ElapsedTotal rgElapsed `json:"elapsed_total"`
	Stats        rgStats   `json:"stats"`
}

type rgStats struct {
	Elapsed           rgElapsed `json:"elapsed"`
	Searches          uint64    `json:"searches"`
	SearchesWithMatch uint64    `json:"searches_with_match"`
	BytesSearched     uint64    `json:"bytes_searched"`
	BytesPrinted      uint64    `json:"bytes_printed"`
	MatchedLines      uint64    `json:"matched_lines"`
	Matches           uint64    `json:"matches"`
}

type rgElapsed struct {
	Secs  uint64 `json:"secs"`
	Nanos uint64 `json:"nanos"`
	Human string `json:"human"`
}

func (e *Ripgrep) ParseLine(line string) (Result, bool) {
	var ev rgEvent
	if err := json.Unmarshal([]byte(line), &ev); err != nil {
		return Result{}, false
	}

	switch ev.Type {
	case "match":
		var m rgMatch
		if err := json.Unmarshal(ev.Data, &m); err != nil {
			return Result{}, false
		}
		if m.Path == nil || m.Path.Text == nil || m.Lines == nil || m.Lines.Text == nil || m.LineNumber == nil {
			return Result{}, false
		}
		if *m.LineNumber == 0 || *m.LineNumber > math.MaxUint32 {
			return Result{}, false
		}
		return Result{
			Path:       *m.Path.Text,
			LineNumber: uint32(*m.LineNumber),
			Content:    *m.Lines.Text,
		}, true
	case "summary":
		// end-of-stream bookkeeping only, never a result
		var s rgSummary
		if err := json.Unmarshal(ev.Data, &s); err == nil {
			logger.Debug("rg summary: %d matched lines in %d/%d files, %s",
				s.Stats.MatchedLines, s.Stats.SearchesWithMatch, s.Stats.Searches, s.ElapsedTotal.Human)
		}
		return Result{}, false
	default:
		return Result{}, false
	}
}
