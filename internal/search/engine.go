package search

import "strings"

// Engine identifiers accepted in Request.Engine.
const (
	EngineRipgrep = "ripgrep"
	EngineGrep    = "grep"
)

// Result is one normalized match.
type Result struct {
	Path       string `json:"path"`
	LineNumber uint32 `json:"line_number"`
	Content    string `json:"content"`
}

// Engine pairs the command builder and output parser of one external search
// tool. Adding an engine means adding an implementation and registering it
// with a Searcher; callers do not change.
type Engine interface {
	// Name is the identifier callers put in Request.Engine.
	Name() string
	// Executable is the default program name, resolved through PATH.
	Executable() string
	// Capabilities reports which request features the command line honors.
	Capabilities() Capabilities
	// BuildArgs maps a normalized request to an argument vector. The order of
	// arguments is stable for a given request.
	BuildArgs(req Request) []string
	// ParseLine decodes one line of stdout. ok is false for lines that carry
	// no match; they are skipped, not reported.
	ParseLine(line string) (r Result, ok bool)
}

// Capability is one request feature an engine may or may not honor.
type Capability uint8

const (
	CapCaseInsensitive Capability = 1 << iota
	CapWholeWord
	CapLiteral
	CapDepthLimit
	CapTypeFilter
	CapExcludeGlob
)

var capabilityNames = []struct {
	c    Capability
	name string
}{
	{CapCaseInsensitive, "case-insensitive"},
	{CapWholeWord, "whole-word"},
	{CapLiteral, "literal"},
	{CapDepthLimit, "depth-limit"},
	{CapTypeFilter, "type-filter"},
	{CapExcludeGlob, "exclude-glob"},
}

func (c Capability) String() string {
	for _, n := range capabilityNames {
		if n.c == c {
			return n.name
		}
	}
	return "unknown"
}

// Capabilities is a set of Capability values.
type Capabilities uint8

// NewCapabilities builds a set from individual capabilities.
func NewCapabilities(cs ...Capability) Capabilities {
	var set Capabilities
	for _, c := range cs {
		set |= Capabilities(c)
	}
	return set
}

// Has reports whether c is in the set.
func (s Capabilities) Has(c Capability) bool {
	return s&Capabilities(c) != 0
}

// List returns the members of the set in declaration order.
func (s Capabilities) List() []Capability {
	var out []Capability
	for _, n := range capabilityNames {
		if s.Has(n.c) {
			out = append(out, n.c)
		}
	}
	return out
}

func (s Capabilities) String() string {
	list := s.List()
	names := make([]string, len(list))
	for i, c := range list {
		names[i] = c.String()
	}
	return strings.Join(names, ",")
}

// Ignored lists the features req asks for that an engine with capability set
// s silently drops.
func (s Capabilities) Ignored(req Request) []Capability {
	var wanted []Capability
	if !req.CaseSensitive {
		wanted = append(wanted, CapCaseInsensitive)
	}
	if req.WholeWord {
		wanted = append(wanted, CapWholeWord)
	}
	if !req.UseRegex {
		wanted = append(wanted, CapLiteral)
	}
	if req.MaxDepth != nil {
		wanted = append(wanted, CapDepthLimit)
	}
	if len(req.FileTypes) > 0 {
		wanted = append(wanted, CapTypeFilter)
	}
	if len(req.ExcludePatterns) > 0 {
		wanted = append(wanted, CapExcludeGlob)
	}

	var ignored []Capability
	for _, c := range wanted {
		if !s.Has(c) {
			ignored = append(ignored, c)
		}
	}
	return ignored
}
