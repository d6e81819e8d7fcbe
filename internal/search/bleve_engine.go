package search

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	bleveQuery "github.com/blevesearch/bleve/v2/search/query"

	"github.com/pders01/hackers/internal/debuglog"
	"github.com/pders01/hackers/internal/hn"
)

type bleveEngine struct {
	mu    sync.RWMutex
	idx   bleve.Index
	posts map[string]hn.Post
}

// NewBleveEngine creates an in-memory index. Posts only live for one
// session, so nothing is written to disk.
func NewBleveEngine() (Searcher, error) {
	idx, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("creating search index: %w", err)
	}
	return &bleveEngine{idx: idx, posts: map[string]hn.Post{}}, nil
}

func buildIndexMapping() mapping.IndexMapping {
	im := bleve.NewIndexMapping()
	im.DefaultAnalyzer = standard.Name

	dm := bleve.NewDocumentMapping()

	title := bleve.NewTextFieldMapping()
	title.Analyzer = standard.Name
	title.Store = false
	title.IncludeTermVectors = true

	domain := bleve.NewTextFieldMapping()
	domain.Analyzer = standard.Name
	domain.Store = false

	by := bleve.NewTextFieldMapping()
	by.Analyzer = keyword.Name
	by.Store = false

	dm.AddFieldMappingsAt("title", title)
	dm.AddFieldMappingsAt("domain", domain)
	dm.AddFieldMappingsAt("by", by)

	im.DefaultMapping = dm
	return im
}

func docID(p hn.Post) string { return strconv.FormatInt(p.ID, 10) }

// Index swaps the indexed posts for posts.
func (b *bleveEngine) Index(posts []hn.Post) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	batch := b.idx.NewBatch()
	for id := range b.posts {
		batch.Delete(id)
	}
	next := make(map[string]hn.Post, len(posts))
	for _, p := range posts {
		id := docID(p)
		next[id] = p
		if err := batch.Index(id, map[string]any{
			"title":  p.Title,
			"domain": p.Domain(),
			"by":     strings.ToLower(p.By),
		}); err != nil {
			return fmt.Errorf("indexing post %d: %w", p.ID, err)
		}
	}
	if err := b.idx.Batch(batch); err != nil {
		return fmt.Errorf("updating search index: %w", err)
	}
	b.posts = next
	debuglog.Debugf("search index holds %d posts", len(next))
	return nil
}

func (b *bleveEngine) Search(query string, limit int) ([]*Result, error) {
	if len(strings.TrimSpace(query)) < MinQueryLength {
		return []*Result{}, nil
	}
	tokens := tokenize(query)
	var qs []bleveQuery.Query
	for _, tok := range tokens {
		// title^4
		qt := bleve.NewMatchQuery(tok)
		qt.SetField("title")
		qt.SetBoost(4.0)
		qs = append(qs, qt)
		qtp := bleve.NewPrefixQuery(tok)
		qtp.SetField("title")
		qtp.SetBoost(3.5)
		qs = append(qs, qtp)
		// domain^1.5
		qd := bleve.NewMatchQuery(tok)
		qd.SetField("domain")
		qd.SetBoost(1.5)
		qs = append(qs, qd)
		qdp := bleve.NewPrefixQuery(tok)
		qdp.SetField("domain")
		qdp.SetBoost(1.2)
		qs = append(qs, qdp)
		// by^1
		qb := bleve.NewPrefixQuery(tok)
		qb.SetField("by")
		qs = append(qs, qb)
	}
	if len(qs) == 0 {
		return []*Result{}, nil
	}
	if limit <= 0 {
		limit = 50
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	req := bleve.NewSearchRequestOptions(bleve.NewDisjunctionQuery(qs...), limit, 0, false)
	res, err := b.idx.Search(req)
	if err != nil {
		return nil, fmt.Errorf("searching: %w", err)
	}

	out := make([]*Result, 0, len(res.Hits))
	for _, h := range res.Hits {
		post, ok := b.posts[h.ID]
		if !ok {
			continue
		}
		out = append(out, &Result{Post: post, Score: h.Score})
	}
	return out, nil
}

// DocCount reports total documents in the index.
func (b *bleveEngine) DocCount() (int, error) {
	n, err := b.idx.DocCount()
	return int(n), err
}
