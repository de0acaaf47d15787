package search

import (
	"context"
	"fmt"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"

	"github.com/mvp-joe/rescribe/internal/commands"
)

const (
	defaultLimit = 15
	maxLimit     = 100
)

// Hit is one keyword search result.
type Hit struct {
	Definition commands.Definition `json:"definition"`
	Score      float64             `json:"score"`
}

// Index is an in-memory keyword index over command names and code. Queries
// use bleve query-string syntax, e.g. "name:make*" or "code:class".
type Index struct {
	index bleve.Index
	store *commands.Store
	mu    sync.RWMutex
}

// NewIndex indexes every command in store.
func NewIndex(ctx context.Context, store *commands.Store) (*Index, error) {
	idx, err := bleve.NewMemOnly(buildMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create bleve index: %w", err)
	}

	ix := &Index{index: idx}
	if err := ix.Rebuild(ctx, store); err != nil {
		idx.Close()
		return nil, err
	}
	return ix, nil
}

// buildMapping analyzes code with the standard analyzer and keeps a keyword
// copy of the name for exact-term filters.
func buildMapping() *mapping.IndexMappingImpl {
	indexMapping := bleve.NewIndexMapping()

	nameMapping := bleve.NewTextFieldMapping()
	nameMapping.Analyzer = "standard"
	nameMapping.Store = true

	exactNameMapping := bleve.NewTextFieldMapping()
	exactNameMapping.Analyzer = "keyword"
	exactNameMapping.Store = false

	codeMapping := bleve.NewTextFieldMapping()
	codeMapping.Analyzer = "standard"
	codeMapping.Store = true
	codeMapping.IncludeTermVectors = true

	docMapping := bleve.NewDocumentMapping()
	docMapping.AddFieldMappingsAt("name", nameMapping)
	docMapping.AddFieldMappingsAt("exact_name", exactNameMapping)
	docMapping.AddFieldMappingsAt("code", codeMapping)

	indexMapping.DefaultMapping = docMapping
	return indexMapping
}

// Rebuild replaces the indexed documents with the contents of store.
func (ix *Index) Rebuild(ctx context.Context, store *commands.Store) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	batch := ix.index.NewBatch()
	if ix.store != nil {
		for _, name := range ix.store.Names() {
			batch.Delete(name)
		}
	}
	for name, def := range store.Entries() {
		if err := ctx.Err(); err != nil {
			return err
		}
		doc := map[string]interface{}{
			"name":       def.Name,
			"exact_name": def.Name,
			"code":       def.Code,
		}
		if err := batch.Index(name, doc); err != nil {
			return fmt.Errorf("failed to index command %s: %w", name, err)
		}
	}
	if err := ix.index.Batch(batch); err != nil {
		return fmt.Errorf("failed to execute index batch: %w", err)
	}
	ix.store = store
	return nil
}

// Search runs a keyword query. limit is clamped to [1, 100]; zero or less
// selects the default of 15.
func (ix *Index) Search(ctx context.Context, queryStr string, limit int) ([]Hit, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	req := bleve.NewSearchRequestOptions(bleve.NewQueryStringQuery(queryStr), limit, 0, false)
	res, err := ix.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	hits := make([]Hit, 0, len(res.Hits))
	for _, h := range res.Hits {
		def, ok := ix.store.Lookup(h.ID)
		if !ok {
			continue
		}
		hits = append(hits, Hit{Definition: def, Score: h.Score})
	}
	return hits, nil
}

// Close releases the index.
func (ix *Index) Close() error {
	return ix.index.Close()
}

// Sync rebuilds the index only when store is not the snapshot it was built
// from. Callers holding a reloading source pass its current snapshot.
func (ix *Index) Sync(ctx context.Context, store *commands.Store) error {
	ix.mu.RLock()
	same := ix.store == store
	ix.mu.RUnlock()
	if same {
		return nil
	}
	return ix.Rebuild(ctx, store)
}
