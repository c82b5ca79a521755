package search

import (
	"iter"
	"strings"
)

// Lines splits engine stdout into lines without their terminators. Invalid
// UTF-8 is replaced rather than rejected. The sequence can be ranged over
// more than once.
func Lines(stdout []byte) iter.Seq[string] {
	text := strings.ToValidUTF8(string(stdout), "\uFFFD")
	return func(yield func(string) bool) {
		for line := range strings.Lines(text) {
			line = strings.TrimSuffix(line, "\n")
			line = strings.TrimSuffix(line, "\r")
			if !yield(line) {
				return
			}
		}
	}
}

// Decode maps lines through parse and drops the ones that carry no result.
func Decode(lines iter.Seq[string], parse func(string) (Result, bool)) iter.Seq[Result] {
	return func(yield func(Result) bool) {
		for line := range lines {
			r, ok := parse(line)
			if !ok {
				continue
			}
			if !yield(r) {
				return
			}
		}
	}
}

// Take stops seq after n values. Upstream work stops with it, so no further
// lines are read once the cap is reached.
func Take[T any](seq iter.Seq[T], n int) iter.Seq[T] {
	return func(yield func(T) bool) {
		if n <= 0 {
			return
		}
		count := 0
		for v := range seq {
			if !yield(v) {
				return
			}
			count++
			if count >= n {
				return
			}
		}
	}
}

// collect drains results in emission order, preallocating for the common
// small cap.
func collect(seq iter.Seq[Result], max int) []Result {
	results := make([]Result, 0, min(max, 64))
	for r := range seq {
		results = append(results, r)
	}
	return results
}
