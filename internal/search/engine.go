package search

import (
	"math"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/pders01/hackers/internal/hn"
)

// Engine scores posts by substring and word matches without an index.
type Engine struct {
	mu    sync.RWMutex
	posts []hn.Post
}

func NewEngine() *Engine {
	return &Engine{}
}

func (e *Engine) Index(posts []hn.Post) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.posts = append([]hn.Post(nil), posts...)
	return nil
}

func (e *Engine) DocCount() (int, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.posts), nil
}

// Search ranks the indexed posts against query, best first.
func (e *Engine) Search(query string, limit int) ([]*Result, error) {
	if len(strings.TrimSpace(query)) < MinQueryLength {
		return []*Result{}, nil
	}

	terms := tokenize(query)
	if len(terms) == 0 {
		return []*Result{}, nil
	}

	e.mu.RLock()
	posts := e.posts
	e.mu.RUnlock()

	var results []*Result
	for _, post := range posts {
		if r := searchPost(post, terms); r != nil {
			results = append(results, r)
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func searchPost(post hn.Post, terms []string) *Result {
	fields := []struct {
		name   string
		text   string
		weight float64
	}{
		{"title", post.Title, 3.0},
		{"domain", post.Domain(), 1.5},
		{"by", post.By, 1.0},
	}

	var total float64
	var matches []Match
	for _, f := range fields {
		if score := scoreField(f.text, terms, f.weight); score > 0 {
			total += score
			matches = append(matches, Match{Field: f.name, Text: f.text, Weight: score})
		}
	}
	if total == 0 {
		return nil
	}
	return &Result{Post: post, Score: total, Matches: matches}
}

// scoreField calculates relevance score for a field
func scoreField(text string, terms []string, weight float64) float64 {
	if text == "" {
		return 0
	}

	lower := strings.ToLower(text)
	words := tokenize(text)
	if len(words) == 0 {
		return 0
	}

	var score float64
	matchedTerms := 0

	for _, term := range terms {
		if strings.Contains(lower, term) {
			score += 2.0
			matchedTerms++
		}

		for _, word := range words {
			switch {
			case word == term:
				score += 1.5
				matchedTerms++
			case strings.HasPrefix(word, term) || strings.HasSuffix(word, term):
				score += 1.0
				matchedTerms++
			case strings.Contains(word, term):
				score += 0.5
				matchedTerms++
			}
		}
	}

	if len(terms) > 1 && matchedTerms > 1 {
		score *= 1.0 + float64(matchedTerms)/float64(len(terms))
	}

	tf := float64(matchedTerms) / float64(len(words))
	score *= 1.0 + math.Log(1.0+tf)

	return score * weight
}

// tokenize lowercases text and splits it into terms of two or more
// letters or digits.
func tokenize(text string) []string {
	var terms []string
	current := strings.Builder{}

	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			current.WriteRune(unicode.ToLower(r))
		} else if current.Len() > 0 {
			if term := current.String(); len(term) > 1 {
				terms = append(terms, term)
			}
			current.Reset()
		}
	}

	if current.Len() > 1 {
		terms = append(terms, current.String())
	}

	return terms
}
