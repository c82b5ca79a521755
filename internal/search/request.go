package search

import (
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	// DefaultMaxResults is used when a request leaves MaxResults unset.
	DefaultMaxResults = 100
	// DefaultTimeout is used when a request leaves Timeout unset.
	DefaultTimeout = 60 * time.Second
)

// Request describes one search. It is passed by value and never mutated by
// the search layer.
type Request struct {
	Path            string        `json:"path" validate:"required"`
	Engine          string        `json:"engine"`
	Pattern         string        `json:"pattern" validate:"required"`
	CaseSensitive   bool          `json:"case_sensitive"`
	WholeWord       bool          `json:"whole_word"`
	UseRegex        bool          `json:"use_regex"`
	MaxDepth        *uint         `json:"max_depth,omitempty"`
	FileTypes       []string      `json:"file_types,omitempty" validate:"dive,required"`
	ExcludePatterns []string      `json:"exclude_patterns,omitempty" validate:"dive,required"`
	MaxResults      int           `json:"max_results" validate:"gt=0"`
	Timeout         time.Duration `json:"timeout" validate:"gt=0"`
}

// Depth is a helper for building a Request with a depth limit.
func Depth(n uint) *uint { return &n }

// Normalize returns a copy of r with defaults applied to zero-valued limits.
// Slices and the depth pointer are copied so the caller's values stay untouched.
func (r Request) Normalize() Request {
	out := r
	if out.MaxResults == 0 {
		out.MaxResults = DefaultMaxResults
	}
	if out.Timeout == 0 {
		out.Timeout = DefaultTimeout
	}
	if r.MaxDepth != nil {
		out.MaxDepth = Depth(*r.MaxDepth)
	}
	out.FileTypes = slices.Clone(r.FileTypes)
	out.ExcludePatterns = slices.Clone(r.ExcludePatterns)
	return out
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func requestValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate checks the request invariants: non-empty pattern and path,
// positive result cap and timeout.
func (r Request) Validate() error {
	if err := requestValidator().Struct(r); err != nil {
		return newError("search.validate", r.Engine, ErrInvalidRequest, describeValidation(err))
	}
	return nil
}

func describeValidation(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fe.Field()+" cannot be empty")
		case "gt":
			msgs = append(msgs, fe.Field()+" must be greater than "+fe.Param())
		default:
			msgs = append(msgs, fe.Field()+" failed "+fe.Tag())
		}
	}
	return strings.Join(msgs, "; ")
}
