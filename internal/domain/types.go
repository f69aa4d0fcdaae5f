package domain

// ChunkMeta describes where a stored chunk came from. It travels with the
// chunk's vector through the index and back out in query hits.
type ChunkMeta struct {
	Source     string `json:"source"`
	DocID      string `json:"doc_id"`
	ChunkIndex int    `json:"chunk_index"`
	Text       string `json:"text,omitempty"`
}

// QueryHit is a single similarity match returned by the vector index,
// in the index's native best-first order.
type QueryHit struct {
	ID    string
	Score float32
	Meta  ChunkMeta
}

// RankedHit is a QueryHit that survived score filtering and descending-score
// ranking in the retrieval engine.
type RankedHit struct {
	ID    string
	Score float32
	Meta  ChunkMeta
}

// Source attributes part of an answer to a stored chunk.
type Source struct {
	Source     string  `json:"source"`
	Score      float32 `json:"score"`
	ChunkIndex int     `json:"chunk_index"`
}

// Answer is the final result of the question pipeline. Sources is empty for
// the fixed fallback answers.
type Answer struct {
	Answer  string   `json:"answer"`
	Sources []Source `json:"sources"`
}
