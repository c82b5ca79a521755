package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/hession/searchmate/internal/config"
	"github.com/hession/searchmate/internal/history"
	"github.com/hession/searchmate/internal/search"
)

type fakeSearcher struct {
	requests []search.Request
	results  []search.Result
	err      error
}

func (f *fakeSearcher) Search(ctx context.Context, req search.Request) ([]search.Result, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

func (f *fakeSearcher) Engines() []search.Engine {
	return []search.Engine{search.NewGrep(), search.NewRipgrep()}
}

func (f *fakeSearcher) Executable(e search.Engine) string {
	return e.Executable()
}

type fakeStore struct {
	entries []*history.Entry
	cleared bool
}

func (f *fakeStore) Record(e *history.Entry) error {
	e.ID = "id"
	e.CreatedAt = time.Now()
	f.entries = append([]*history.Entry{e}, f.entries...)
	return nil
}

func (f *fakeStore) Get(id string) (*history.Entry, error) { return nil, nil }

func (f *fakeStore) List(limit int) ([]*history.Entry, error) {
	if limit < len(f.entries) {
		return f.entries[:limit], nil
	}
	return f.entries, nil
}

func (f *fakeStore) Clear() error {
	f.entries = nil
	f.cleared = true
	return nil
}

func (f *fakeStore) Close() error { return nil }

func newTestSession(fs *fakeSearcher, store history.Store) *Session {
	s := NewSession(fs, store, config.DefaultConfig())
	s.Color = false
	return s
}

func TestVersion(t *testing.T) {
	if Version != "0.1.0" {
		t.Errorf("Expected Version to be '0.1.0', got '%s'", Version)
	}
}

func TestDefaultRequest(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Search.Engine = "grep"
	cfg.Search.ExcludePatterns = []string{"vendor"}

	req := DefaultRequest(cfg)

	if req.Engine != "grep" || req.Path != "." {
		t.Errorf("unexpected engine/path: %s %s", req.Engine, req.Path)
	}
	if req.MaxResults != 100 || req.Timeout != 60*time.Second {
		t.Errorf("unexpected limits: %d %s", req.MaxResults, req.Timeout)
	}
	if !req.CaseSensitive || req.UseRegex {
		t.Error("expected case sensitive literal search by default")
	}

	req.ExcludePatterns[0] = "changed"
	if cfg.Search.ExcludePatterns[0] != "vendor" {
		t.Error("DefaultRequest must copy exclude patterns")
	}
}

func TestSessionSearchText(t *testing.T) {
	fs := &fakeSearcher{results: []search.Result{
		{Path: "src/main.go", LineNumber: 42, Content: "fmt.Println(x)\n"},
	}}
	store := &fakeStore{}
	s := newTestSession(fs, store)

	var out bytes.Buffer
	n, err := s.Search(context.Background(), "Println", &out)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if n != 1 {
		t.Errorf("Expected 1 result, got %d", n)
	}
	if !strings.Contains(out.String(), "src/main.go:42: fmt.Println(x)\n") {
		t.Errorf("unexpected output:\n%s", out.String())
	}
	if fs.requests[0].Pattern != "Println" {
		t.Errorf("pattern not forwarded: %+v", fs.requests[0])
	}

	if len(store.entries) != 1 {
		t.Fatalf("Expected one history entry, got %d", len(store.entries))
	}
	e := store.entries[0]
	if e.Pattern != "Println" || e.ResultCount != 1 || e.Failed() {
		t.Errorf("unexpected history entry: %+v", e)
	}
}

func TestSessionSearchNoMatches(t *testing.T) {
	s := newTestSession(&fakeSearcher{results: []search.Result{}}, nil)

	var out bytes.Buffer
	n, err := s.Search(context.Background(), "zzz", &out)
	if err != nil || n != 0 {
		t.Fatalf("Search() = %d, %v", n, err)
	}
	if !strings.Contains(out.String(), "No matches found") {
		t.Errorf("unexpected output: %s", out.String())
	}
}

func TestSessionSearchJSON(t *testing.T) {
	fs := &fakeSearcher{results: []search.Result{{Path: "a.go", LineNumber: 1, Content: "x"}}}
	s := newTestSession(fs, nil)
	s.JSON = true

	var out bytes.Buffer
	if _, err := s.Search(context.Background(), "x", &out); err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	var report Report
	if err := json.Unmarshal(out.Bytes(), &report); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out.String())
	}
	if report.Count != 1 || report.Results[0].LineNumber != 1 || report.Error != nil {
		t.Errorf("unexpected report: %+v", report)
	}
	if !strings.Contains(out.String(), `"line_number": 1`) {
		t.Errorf("expected snake_case keys: %s", out.String())
	}
}

func TestSessionSearchJSONError(t *testing.T) {
	fs := &fakeSearcher{err: search.ErrTimeout}
	store := &fakeStore{}
	s := newTestSession(fs, store)
	s.JSON = true

	var out bytes.Buffer
	_, err := s.Search(context.Background(), "x", &out)
	if err == nil {
		t.Fatal("Expected error to be returned")
	}

	var report Report
	if err := json.Unmarshal(out.Bytes(), &report); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if report.Error == nil || report.Error.Code != search.CodeTimeout {
		t.Errorf("unexpected error report: %+v", report.Error)
	}
	if report.Results == nil || len(report.Results) != 0 {
		t.Errorf("failed report should carry an empty result list")
	}
	if store.entries[0].ErrorCode != "TIMEOUT" {
		t.Errorf("history should record the error code, got %q", store.entries[0].ErrorCode)
	}
}

func TestHandleSearchError(t *testing.T) {
	s := newTestSession(&fakeSearcher{err: search.ErrEngineExecution}, nil)

	var out bytes.Buffer
	if !s.Handle(context.Background(), "pattern", &out) {
		t.Fatal("search errors must not end the session")
	}
	if !strings.Contains(out.String(), "Error: search engine failed") {
		t.Errorf("unexpected output: %s", out.String())
	}
}

func TestHandleCommands(t *testing.T) {
	s := newTestSession(&fakeSearcher{}, nil)
	ctx := context.Background()

	lines := []string{
		"/engine grep",
		"/root ./src",
		"/case off",
		"/word on",
		"/regex on",
		"/depth 3",
		"/type *.go *.rs",
		"/exclude vendor",
		"/max 5",
		"/timeout 10",
		"/json on",
	}
	for _, line := range lines {
		var out bytes.Buffer
		if !s.Handle(ctx, line, &out) {
			t.Fatalf("%s ended the session", line)
		}
		if strings.Contains(out.String(), "❌") {
			t.Fatalf("%s failed: %s", line, out.String())
		}
	}

	req := s.Request()
	if req.Engine != "grep" || req.Path != "./src" {
		t.Errorf("engine/root not applied: %+v", req)
	}
	if req.CaseSensitive || !req.WholeWord || !req.UseRegex {
		t.Errorf("flags not applied: %+v", req)
	}
	if req.MaxDepth == nil || *req.MaxDepth != 3 {
		t.Errorf("depth not applied: %v", req.MaxDepth)
	}
	if len(req.FileTypes) != 2 || req.ExcludePatterns[0] != "vendor" {
		t.Errorf("globs not applied: %+v", req)
	}
	if req.MaxResults != 5 || req.Timeout != 10*time.Second || !s.JSON {
		t.Errorf("limits not applied: %+v", req)
	}

	var out bytes.Buffer
	s.Handle(ctx, "/depth off", &out)
	s.Handle(ctx, "/type", &out)
	if s.Request().MaxDepth != nil || len(s.Request().FileTypes) != 0 {
		t.Error("expected depth and types to be cleared")
	}
}

func TestHandleCommandErrors(t *testing.T) {
	tests := []string{
		"/engine ack",
		"/case maybe",
		"/depth -1",
		"/max 0",
		"/timeout abc",
		"/root",
		"/history",
	}

	for _, line := range tests {
		t.Run(line, func(t *testing.T) {
			s := newTestSession(&fakeSearcher{}, nil)
			before := s.Request()

			var out bytes.Buffer
			s.Handle(context.Background(), line, &out)

			if !strings.Contains(out.String(), "❌") {
				t.Errorf("expected error output, got: %s", out.String())
			}
			if s.Request().Engine != before.Engine || s.Request().MaxResults != before.MaxResults {
				t.Error("failed command must not change settings")
			}
		})
	}
}

func TestHandleExit(t *testing.T) {
	for _, cmd := range []string{"/exit", "/quit", "/q"} {
		s := newTestSession(&fakeSearcher{}, nil)
		var out bytes.Buffer
		if s.Handle(context.Background(), cmd, &out) {
			t.Errorf("%s should end the session", cmd)
		}
		if !s.Exited() {
			t.Errorf("%s should mark the session exited", cmd)
		}
	}
}

func TestHandleUnknownCommand(t *testing.T) {
	s := newTestSession(&fakeSearcher{}, nil)
	var out bytes.Buffer
	if !s.Handle(context.Background(), "/frobnicate", &out) {
		t.Fatal("unknown commands must not end the session")
	}
	if !strings.Contains(out.String(), "Unknown command") {
		t.Errorf("unexpected output: %s", out.String())
	}
}

func TestHandleEmptyLine(t *testing.T) {
	fs := &fakeSearcher{}
	s := newTestSession(fs, nil)
	var out bytes.Buffer
	if !s.Handle(context.Background(), "   ", &out) {
		t.Fatal("empty input must not end the session")
	}
	if len(fs.requests) != 0 || out.Len() != 0 {
		t.Error("empty input should do nothing")
	}
}

func TestHistoryCommands(t *testing.T) {
	store := &fakeStore{}
	s := newTestSession(&fakeSearcher{results: []search.Result{}}, store)
	ctx := context.Background()

	var out bytes.Buffer
	s.Handle(ctx, "first", &out)
	s.Handle(ctx, "second", &out)

	out.Reset()
	s.Handle(ctx, "/history 1", &out)
	if !strings.Contains(out.String(), "second") || strings.Contains(out.String(), "first") {
		t.Errorf("expected only the newest entry:\n%s", out.String())
	}

	out.Reset()
	s.Handle(ctx, "/history clear", &out)
	if !store.cleared {
		t.Error("history was not cleared")
	}

	out.Reset()
	s.Handle(ctx, "/history", &out)
	if !strings.Contains(out.String(), "No search history") {
		t.Errorf("unexpected output: %s", out.String())
	}
}

func TestPrintEngines(t *testing.T) {
	s := newTestSession(&fakeSearcher{}, nil)
	var out bytes.Buffer
	s.Handle(context.Background(), "/engines", &out)

	text := out.String()
	if !strings.Contains(text, "* ripgrep") {
		t.Errorf("current engine should be marked:\n%s", text)
	}
	if !strings.Contains(text, "case-insensitive,whole-word,literal") {
		t.Errorf("capabilities should be listed:\n%s", text)
	}
}

func TestSetRequestDropsPattern(t *testing.T) {
	s := newTestSession(&fakeSearcher{}, nil)
	s.SetRequest(search.Request{Path: "x", Engine: "grep", Pattern: "leftover"})
	if s.Request().Pattern != "" {
		t.Error("pattern should not be kept in the template")
	}
}

func TestTruncateForDisplay(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		maxLen   int
		expected string
	}{
		{name: "short text", text: "Hello", maxLen: 10, expected: "Hello"},
		{name: "exact length", text: "Hello", maxLen: 5, expected: "Hello"},
		{name: "truncate", text: "Hello World", maxLen: 5, expected: "Hello..."},
		{name: "with newlines", text: "Hello\nWorld", maxLen: 20, expected: "Hello World"},
		{name: "with carriage return", text: "Hello\r\nWorld", maxLen: 20, expected: "Hello World"},
		{name: "empty string", text: "", maxLen: 10, expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncateForDisplay(tt.text, tt.maxLen)
			if got != tt.expected {
				t.Errorf("truncateForDisplay(%q, %d) = %q, want %q", tt.text, tt.maxLen, got, tt.expected)
			}
		})
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{500 * time.Microsecond, "500µs"},
		{42 * time.Millisecond, "42ms"},
		{1500 * time.Millisecond, "1.5s"},
		{90 * time.Second, "1m30s"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.d); got != tt.want {
			t.Errorf("FormatDuration(%s) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestCompleter(t *testing.T) {
	if len(suggestions()) != len(CommandSuggestions()) {
		t.Error("every command should be offered for completion")
	}
	for _, c := range CommandSuggestions() {
		if !strings.HasPrefix(c.Text, "/") {
			t.Errorf("command %q should start with /", c.Text)
		}
	}
}
