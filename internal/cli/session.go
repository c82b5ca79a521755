package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/hession/searchmate/internal/config"
	"github.com/hession/searchmate/internal/history"
	"github.com/hession/searchmate/internal/logger"
	"github.com/hession/searchmate/internal/search"
)

// Searcher is the search surface a session drives
type Searcher interface {
	Search(ctx context.Context, req search.Request) ([]search.Result, error)
	Engines() []search.Engine
	Executable(e search.Engine) string
}

// Session holds the request settings shared by one-shot and interactive use
type Session struct {
	searcher Searcher
	store    history.Store // nil disables history
	cfg      *config.Config
	req      search.Request

	JSON  bool // emit machine-readable reports
	Color bool // ANSI colors in text output

	exited bool
}

// DefaultRequest builds the request template from configuration
func DefaultRequest(cfg *config.Config) search.Request {
	return search.Request{
		Path:            ".",
		Engine:          cfg.Search.Engine,
		CaseSensitive:   cfg.Search.CaseSensitive,
		UseRegex:        false,
		ExcludePatterns: append([]string(nil), cfg.Search.ExcludePatterns...),
		MaxResults:      cfg.Search.MaxResults,
		Timeout:         cfg.Search.Timeout(),
	}
}

// NewSession creates a session with settings taken from cfg
func NewSession(searcher Searcher, store history.Store, cfg *config.Config) *Session {
	return &Session{
		searcher: searcher,
		store:    store,
		cfg:      cfg,
		req:      DefaultRequest(cfg),
		Color:    true,
	}
}

// Request returns the current request template
func (s *Session) Request() search.Request {
	return s.req
}

// SetRequest replaces the request template; the pattern is ignored
func (s *Session) SetRequest(req search.Request) {
	req.Pattern = ""
	s.req = req
}

// Search runs pattern with the current settings and writes the outcome to out.
// It returns the number of results; errors are returned after being reported
// in JSON mode.
func (s *Session) Search(ctx context.Context, pattern string, out io.Writer) (int, error) {
	req := s.req
	req.Pattern = pattern

	start := time.Now()
	results, err := s.searcher.Search(ctx, req)
	elapsed := time.Since(start)

	s.record(req, results, elapsed, err)

	if s.JSON {
		if werr := writeJSON(out, req, results, err); werr != nil {
			return 0, werr
		}
		return len(results), err
	}
	if err != nil {
		return 0, err
	}

	s.printResults(out, results, req.Normalize().MaxResults, elapsed)
	return len(results), nil
}

// Handle processes one line of interactive input. It returns false when the
// session should end.
func (s *Session) Handle(ctx context.Context, line string, out io.Writer) bool {
	input := strings.TrimSpace(line)
	if input == "" {
		return true
	}

	if strings.HasPrefix(input, "/") {
		if !s.handleCommand(input, out) {
			s.exited = true
			return false
		}
		return true
	}

	if _, err := s.Search(ctx, input, out); err != nil && !s.JSON {
		fmt.Fprintln(out, s.paint(colorRed, fmt.Sprintf("❌ Error: %v", err)))
	}
	return true
}

// Exited reports whether an exit command was handled
func (s *Session) Exited() bool {
	return s.exited
}

func (s *Session) record(req search.Request, results []search.Result, elapsed time.Duration, err error) {
	if s.store == nil {
		return
	}

	entry := &history.Entry{
		Engine:      req.Engine,
		Pattern:     req.Pattern,
		Root:        req.Path,
		ResultCount: len(results),
		Duration:    elapsed,
	}
	if err != nil {
		entry.ErrorCode = string(search.CodeOf(err))
		entry.Error = err.Error()
	}

	if rerr := s.store.Record(entry); rerr != nil {
		logger.Warn("failed to record search history: %v", rerr)
	}
}

func (s *Session) paint(color, text string) string {
	if !s.Color {
		return text
	}
	return color + text + colorReset
}
