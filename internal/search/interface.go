package search

import "github.com/pders01/hackers/internal/hn"

// MinQueryLength is the shortest query that produces results.
const MinQueryLength = 2

// Searcher defines the minimal search API used by the TUI.
type Searcher interface {
	// Index replaces the searchable posts.
	Index(posts []hn.Post) error
	Search(query string, limit int) ([]*Result, error)
}

// Result is one matching post.
type Result struct {
	Post    hn.Post
	Score   float64
	Matches []Match
}

// Match records which field of a post matched.
type Match struct {
	Field  string // "title", "domain", "by"
	Text   string
	Weight float64
}

// DebugStatser provides lightweight stats for visibility/debugging.
type DebugStatser interface {
	DocCount() (int, error)
}

// New returns the bleve engine, or the in-memory scorer when the index
// cannot be created.
func New() Searcher {
	if s, err := NewBleveEngine(); err == nil {
		return s
	}
	return NewEngine()
}
