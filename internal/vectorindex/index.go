package vectorindex

import (
	"fmt"
	"sort"
	"sync"

	"github.com/ternarybob/arbor"

	"docask/internal/domain"
)

// Index is a durable flat inner-product vector index. Vectors, ids, metadata
// and raw texts are held in parallel slices that always have equal length;
// position p in each slice refers to the same logical entry.
//
// Callers supply unit-normalized vectors so the inner-product score equals
// cosine similarity. The index is append-only: entries are never updated or
// deleted, and id uniqueness is the caller's responsibility.
//
// Concurrency follows a single-writer discipline: Add and its snapshot run
// under the write lock, queries and text lookups under the read lock.
type Index struct {
	mu     sync.RWMutex
	dir    string
	dim    int
	logger arbor.ILogger

	vectors [][]float32
	ids     []string
	metas   []domain.ChunkMeta
	texts   []string
	byID    map[string]int
}

// Open restores an index from dir, or starts empty when nothing usable is
// persisted there. A missing or corrupt snapshot is logged and not fatal;
// a non-positive dimension is a configuration error.
func Open(dir string, dimension int, logger arbor.ILogger) (*Index, error) {
	if dimension <= 0 {
		return nil, fmt.Errorf("%w: index dimension must be positive, got %d", domain.ErrValidation, dimension)
	}
	idx := &Index{
		dir:    dir,
		dim:    dimension,
		logger: logger,
		byID:   make(map[string]int),
	}
	if err := idx.load(); err != nil {
		logger.Warn().Err(err).Str("dir", dir).Msg("Vector index restore failed, starting empty")
		idx.reset()
	} else if len(idx.ids) > 0 {
		logger.Info().Str("dir", dir).Int("entries", len(idx.ids)).Msg("Vector index restored")
	}
	return idx, nil
}

// Dimension returns the fixed embedding dimension of this index.
func (x *Index) Dimension() int { return x.dim }

// Len returns the number of stored entries.
func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.ids)
}

// Add appends entries to the parallel sequences and snapshots the index to
// disk. Every vector is checked against the fixed dimension before anything
// is appended, so a mismatch leaves the index untouched. When texts is
// supplied it is authoritative for the metadata Text field.
func (x *Index) Add(ids []string, vectors [][]float32, metas []domain.ChunkMeta, texts []string) error {
	if len(ids) != len(vectors) || len(ids) != len(metas) {
		return fmt.Errorf("%w: ids/vectors/metadata lengths differ (%d/%d/%d)",
			domain.ErrValidation, len(ids), len(vectors), len(metas))
	}
	if texts != nil && len(texts) != len(ids) {
		return fmt.Errorf("%w: texts length %d does not match ids length %d",
			domain.ErrValidation, len(texts), len(ids))
	}
	for i, v := range vectors {
		if len(v) != x.dim {
			return fmt.Errorf("%w: vector %d has dimension %d, index requires %d",
				domain.ErrDimensionMismatch, i, len(v), x.dim)
		}
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	for i := range ids {
		meta := metas[i]
		text := meta.Text
		if texts != nil {
			text = texts[i]
			meta.Text = text
		}
		x.byID[ids[i]] = len(x.ids)
		x.ids = append(x.ids, ids[i])
		x.metas = append(x.metas, meta)
		x.texts = append(x.texts, text)
		x.vectors = append(x.vectors, vectors[i])
	}

	if err := x.snapshot(); err != nil {
		// Data-loss risk on crash; the index keeps serving from memory.
		x.logger.Error().Err(err).Str("dir", x.dir).Msg("Vector index snapshot failed, continuing in memory")
	}
	return nil
}

// Query scores every stored vector by inner product against the query vector
// and returns at most topK hits, best first. An exhausted index yields fewer
// hits, never padding.
func (x *Index) Query(vector []float32, topK int) ([]domain.QueryHit, error) {
	if len(vector) != x.dim {
		return nil, fmt.Errorf("%w: query vector has dimension %d, index requires %d",
			domain.ErrDimensionMismatch, len(vector), x.dim)
	}
	if topK <= 0 {
		return nil, nil
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	scores := make([]float32, len(x.vectors))
	for i := range x.vectors {
		scores[i] = dot(x.vectors[i], vector)
	}
	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	// Stable so equal scores keep insertion order.
	sort.SliceStable(order, func(a, b int) bool { return scores[order[a]] > scores[order[b]] })

	if topK > len(order) {
		topK = len(order)
	}
	hits := make([]domain.QueryHit, 0, topK)
	for _, p := range order[:topK] {
		hits = append(hits, domain.QueryHit{ID: x.ids[p], Score: scores[p], Meta: x.metas[p]})
	}
	return hits, nil
}

// Text resolves a stored chunk's raw text through the id side table.
func (x *Index) Text(id string) (string, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	p, ok := x.byID[id]
	if !ok || x.texts[p] == "" {
		return "", false
	}
	return x.texts[p], true
}

func (x *Index) reset() {
	x.vectors = nil
	x.ids = nil
	x.metas = nil
	x.texts = nil
	x.byID = make(map[string]int)
}

func dot(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
