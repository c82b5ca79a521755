package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGrepBuildArgs(t *testing.T) {
	tests := []struct {
		name string
		req  Request
		want []string
	}{
		{
			name: "literal case insensitive whole word",
			req:  Request{Path: "src", Pattern: "a.b", WholeWord: true, MaxResults: 10},
			want: []string{
				"--recursive", "--line-number", "--with-filename", "--max-count", "10",
				"--ignore-case", "--word-regexp", "--fixed-strings",
				"--", "a.b", "src",
			},
		},
		{
			name: "regex case sensitive",
			req:  Request{Path: ".", Pattern: "^func [A-Z]", CaseSensitive: true, UseRegex: true, MaxResults: 100},
			want: []string{
				"--recursive", "--line-number", "--with-filename", "--max-count", "100",
				"--extended-regexp",
				"--", "^func [A-Z]", ".",
			},
		},
		{
			name: "filters are dropped",
			req: Request{
				Path: ".", Pattern: "x", CaseSensitive: true, MaxResults: 1,
				MaxDepth: Depth(1), FileTypes: []string{"*.go"}, ExcludePatterns: []string{"vendor"},
			},
			want: []string{
				"--recursive", "--line-number", "--with-filename", "--max-count", "1",
				"--fixed-strings",
				"--", "x", ".",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewGrep().BuildArgs(tt.req))
		})
	}
}

func TestGrepParseLine(t *testing.T) {
	tests := []struct {
		name string
		line string
		want Result
		ok   bool
	}{
		{
			name: "plain",
			line: "src/main.go:42:fmt.Println(x)",
			want: Result{Path: "src/main.go", LineNumber: 42, Content: "fmt.Println(x)"},
			ok:   true,
		},
		{
			name: "content with colons",
			line: "cfg.yaml:3:url: http://x:80",
			want: Result{Path: "cfg.yaml", LineNumber: 3, Content: "url: http://x:80"},
			ok:   true,
		},
		{
			name: "empty content",
			line: "a.txt:7:",
			want: Result{Path: "a.txt", LineNumber: 7, Content: ""},
			ok:   true,
		},
		{
			name: "content keeps whitespace",
			line: "a.txt:1:  indented  ",
			want: Result{Path: "a.txt", LineNumber: 1, Content: "  indented  "},
			ok:   true,
		},
		{name: "non numeric line number", line: "a:b:c"},
		{name: "single colon", line: "a.txt:12"},
		{name: "no colon", line: "Binary file x.bin matches"},
		{name: "empty", line: ""},
		{name: "negative line number", line: "a.txt:-1:x"},
		{name: "zero line number", line: "a.txt:0:x"},
		{name: "line number overflow", line: "a.txt:99999999999:x"},
		{name: "windows drive path", line: `C:\src\main.go:42:x`},
	}

	e := NewGrep()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := e.ParseLine(tt.line)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGrepCapabilities(t *testing.T) {
	caps := NewGrep().Capabilities()

	assert.True(t, caps.Has(CapCaseInsensitive))
	assert.True(t, caps.Has(CapWholeWord))
	assert.True(t, caps.Has(CapLiteral))
	assert.False(t, caps.Has(CapDepthLimit))
	assert.False(t, caps.Has(CapTypeFilter))
	assert.False(t, caps.Has(CapExcludeGlob))
}

func TestLiteralFlagForEveryEngine(t *testing.T) {
	req := Request{Path: ".", Pattern: `(a|b)+$`, CaseSensitive: true, MaxResults: 3}
	for _, e := range []Engine{NewRipgrep(), NewGrep()} {
		t.Run(e.Name(), func(t *testing.T) {
			args := e.BuildArgs(req)
			assert.Contains(t, args, "--fixed-strings")
			assert.NotContains(t, args, "--extended-regexp")
			assert.Equal(t, `(a|b)+$`, args[len(args)-2])
		})
	}
}
