package history

import (
	"time"
)

// Store search history storage interface
type Store interface {
	Record(entry *Entry) error
	Get(id string) (*Entry, error)
	List(limit int) ([]*Entry, error)
	Clear() error

	// Close connection
	Close() error
}

// Entry one executed search
type Entry struct {
	ID          string
	Engine      string
	Pattern     string
	Root        string
	ResultCount int
	Duration    time.Duration
	ErrorCode   string // empty on success
	Error       string
	CreatedAt   time.Time
}

// Failed reports whether the search ended with an error
func (e *Entry) Failed() bool {
	return e.ErrorCode != "" || e.Error != ""
}
