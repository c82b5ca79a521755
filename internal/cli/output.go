package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/hession/searchmate/internal/history"
	"github.com/hession/searchmate/internal/search"
)

const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorCyan   = "\033[36m"
	colorRed    = "\033[31m"
	colorGray   = "\033[90m"
)

// Report is the JSON form of one search
type Report struct {
	Engine  string          `json:"engine"`
	Pattern string          `json:"pattern"`
	Path    string          `json:"path"`
	Count   int             `json:"count"`
	Results []search.Result `json:"results"`
	Error   *ReportError    `json:"error,omitempty"`
}

// ReportError carries the error code and message of a failed search
type ReportError struct {
	Code    search.Code `json:"code"`
	Message string      `json:"message"`
}

func writeJSON(out io.Writer, req search.Request, results []search.Result, err error) error {
	if results == nil {
		results = []search.Result{}
	}
	report := Report{
		Engine:  req.Engine,
		Pattern: req.Pattern,
		Path:    req.Path,
		Count:   len(results),
		Results: results,
	}
	if err != nil {
		report.Error = &ReportError{Code: search.CodeOf(err), Message: err.Error()}
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

func (s *Session) printResults(out io.Writer, results []search.Result, max int, elapsed time.Duration) {
	if len(results) == 0 {
		fmt.Fprintln(out, s.paint(colorGray, "No matches found"))
		return
	}

	for _, r := range results {
		content := strings.TrimRight(r.Content, "\r\n")
		fmt.Fprintf(out, "%s:%s: %s\n",
			s.paint(colorCyan, r.Path),
			s.paint(colorGreen, fmt.Sprint(r.LineNumber)),
			content)
	}

	summary := fmt.Sprintf("%d %s in %s", len(results), plural(len(results), "result", "results"), FormatDuration(elapsed))
	if len(results) >= max {
		summary += " (limit reached)"
	}
	fmt.Fprintln(out, s.paint(colorGray, summary))
}

func (s *Session) printHistory(out io.Writer, entries []*history.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(out, s.paint(colorGray, "No search history"))
		return
	}

	for _, e := range entries {
		status := fmt.Sprintf("%d %s", e.ResultCount, plural(e.ResultCount, "result", "results"))
		color := colorGreen
		if e.Failed() {
			status = e.ErrorCode
			color = colorRed
		}
		fmt.Fprintf(out, "%s  %-8s %-40s %s  %s  %s\n",
			s.paint(colorGray, formatTime(e.CreatedAt)),
			e.Engine,
			truncateForDisplay(e.Pattern, 37),
			e.Root,
			s.paint(color, status),
			s.paint(colorGray, FormatDuration(e.Duration)))
	}
}

func (s *Session) printEngines(out io.Writer) {
	for _, e := range s.searcher.Engines() {
		marker := " "
		if e.Name() == s.req.Engine {
			marker = "*"
		}
		fmt.Fprintf(out, "%s %-8s %s\n", marker, s.paint(colorCyan, e.Name()), s.searcher.Executable(e))
		fmt.Fprintf(out, "    %s\n", s.paint(colorGray, "supports: "+e.Capabilities().String()))
	}
}

func (s *Session) printSettings(out io.Writer) {
	depth := "unlimited"
	if s.req.MaxDepth != nil {
		depth = fmt.Sprint(*s.req.MaxDepth)
	}
	fmt.Fprintf(out, `%s
  Engine:        %s
  Root:          %s
  Case:          %s
  Whole Word:    %s
  Regex:         %s
  Max Depth:     %s
  File Types:    %s
  Exclude:       %s
  Max Results:   %d
  Timeout:       %s
  JSON:          %s
`,
		s.paint(colorYellow, "Search Settings:"),
		s.req.Engine,
		s.req.Path,
		onOff(s.req.CaseSensitive, "sensitive", "insensitive"),
		onOff(s.req.WholeWord, "on", "off"),
		onOff(s.req.UseRegex, "on", "off"),
		depth,
		listOrNone(s.req.FileTypes),
		listOrNone(s.req.ExcludePatterns),
		s.req.MaxResults,
		s.req.Timeout,
		onOff(s.JSON, "on", "off"),
	)
}

// truncateForDisplay flattens text to one line and cuts it at maxLen
func truncateForDisplay(text string, maxLen int) string {
	text = strings.ReplaceAll(text, "\n", " ")
	text = strings.ReplaceAll(text, "\r", "")
	text = strings.TrimSpace(text)

	if len(text) <= maxLen {
		return text
	}
	return text[:maxLen] + "..."
}

// FormatDuration renders a search duration compactly
func FormatDuration(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return fmt.Sprintf("%dµs", d.Microseconds())
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	default:
		return d.Round(time.Second).String()
	}
}

func formatTime(t time.Time) string {
	return t.Local().Format("2006-01-02 15:04:05")
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

func onOff(v bool, on, off string) string {
	if v {
		return on
	}
	return off
}

func listOrNone(items []string) string {
	if len(items) == 0 {
		return "(none)"
	}
	return strings.Join(items, ", ")
}
