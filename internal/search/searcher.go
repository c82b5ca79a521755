package search

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"sort"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/hession/searchmate/internal/logger"
	"github.com/hession/searchmate/internal/tracer"
)

// Searcher dispatches requests to registered engines. It holds no per-call
// state, so one Searcher serves concurrent calls.
type Searcher struct {
	mu          sync.RWMutex
	engines     map[string]Engine
	executables map[string]string

	exec          Executor
	now           func() time.Time
	killOnTimeout bool
}

// Option configures a Searcher.
type Option func(*Searcher)

// WithExecutor replaces the process executor, mainly for tests.
func WithExecutor(x Executor) Option {
	return func(s *Searcher) { s.exec = x }
}

// WithClock replaces the wall clock used by the timeout guard.
func WithClock(now func() time.Time) Option {
	return func(s *Searcher) { s.now = now }
}

// WithKillOnTimeout kills the engine process once the budget is spent instead
// of waiting for it to finish on its own.
func WithKillOnTimeout(kill bool) Option {
	return func(s *Searcher) { s.killOnTimeout = kill }
}

// WithExecutable runs engine through path instead of its default program name.
func WithExecutable(engine, path string) Option {
	return func(s *Searcher) {
		if strings.TrimSpace(path) != "" {
			s.executables[engine] = path
		}
	}
}

// New creates a Searcher with the ripgrep and grep engines registered.
func New(opts ...Option) *Searcher {
	s := NewEmpty(opts...)
	for _, e := range []Engine{NewRipgrep(), NewGrep()} {
		_ = s.Register(e) // built-in names never collide
	}
	return s
}

// NewEmpty creates a Searcher without engines.
func NewEmpty(opts ...Option) *Searcher {
	s := &Searcher{
		engines:     make(map[string]Engine),
		executables: make(map[string]string),
		exec:        NewProcessExecutor(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register adds an engine under its Name.
func (s *Searcher) Register(e Engine) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := e.Name()
	if _, exists := s.engines[name]; exists {
		return fmt.Errorf("engine %s already registered", name)
	}
	s.engines[name] = e
	return nil
}

// Engine looks up a registered engine.
func (s *Searcher) Engine(name string) (Engine, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.engines[name]
	return e, ok
}

// Engines lists registered engines sorted by name.
func (s *Searcher) Engines() []Engine {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]Engine, 0, len(s.engines))
	for _, e := range s.engines {
		list = append(list, e)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name() < list[j].Name() })
	return list
}

// Executable returns the program run for e, honoring overrides.
func (s *Searcher) Executable(e Engine) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if path, ok := s.executables[e.Name()]; ok {
		return path
	}
	return e.Executable()
}

// Available reports whether the program for e can be found.
func (s *Searcher) Available(e Engine) bool {
	_, err := exec.LookPath(s.Executable(e))
	return err == nil
}

// Search runs req through its engine and returns at most req.MaxResults
// matches in the order the engine emitted them. Either the full result list
// or a single error is returned, never both.
func (s *Searcher) Search(ctx context.Context, req Request) ([]Result, error) {
	ctx, span := tracer.StartSpan(ctx, "search.Search", trace.WithAttributes(
		tracer.StringAttr("search.engine", req.Engine),
		tracer.StringAttr("search.path", req.Path),
	))
	defer span.End()

	results, err := s.search(ctx, req)
	if err != nil {
		tracer.RecordError(span, err)
		logger.Warn("search failed: engine=%s pattern=%q: %v", req.Engine, req.Pattern, err)
		return nil, err
	}

	span.SetAttributes(tracer.IntAttr("search.results", len(results)))
	tracer.SetOK(span)
	return results, nil
}

func (s *Searcher) search(ctx context.Context, req Request) ([]Result, error) {
	engine, ok := s.Engine(req.Engine)
	if !ok {
		return nil, newError("search.dispatch", req.Engine, ErrUnsupportedEngine, "")
	}

	req = req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if ignored := engine.Capabilities().Ignored(req); len(ignored) > 0 {
		logger.Warn("engine %s ignores requested features: %s", engine.Name(), NewCapabilities(ignored...))
	}

	name := s.Executable(engine)
	args := engine.BuildArgs(req)
	logger.Debug("executing command: %s %s", name, strings.Join(args, " "))

	guard := NewGuard(req.Timeout, s.now)
	runCtx := ctx
	if s.killOnTimeout {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	out, err := s.exec.Run(runCtx, name, args)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, fmt.Errorf("search cancelled: %w", ctxErr)
	}
	if err != nil {
		return nil, newError("search.spawn", engine.Name(), ErrProcessSpawn, err.Error())
	}
	if guard.Check() || errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return nil, timeoutError("search.run", engine.Name(), req.Timeout)
	}

	switch out.ExitCode {
	case 0:
	case 1:
		logger.Info("%s found no matches in %s", engine.Name(), out.Elapsed)
		return []Result{}, nil
	default:
		detail := strings.TrimSpace(strings.ToValidUTF8(string(out.Stderr), "\uFFFD"))
		if detail == "" {
			detail = fmt.Sprintf("exit status %d", out.ExitCode)
		}
		return nil, newError("search.run", engine.Name(), ErrEngineExecution, detail)
	}

	lines := guard.Watch(Lines(out.Stdout))
	results := collect(Take(Decode(lines, engine.ParseLine), req.MaxResults), req.MaxResults)
	if guard.Expired() {
		return nil, timeoutError("search.parse", engine.Name(), req.Timeout)
	}

	logger.Info("%s returned %d results in %s", engine.Name(), len(results), guard.Elapsed())
	return results, nil
}
