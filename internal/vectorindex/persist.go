package vectorindex

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"

	"docask/internal/domain"
)

// Persisted layout: two gob files per index directory, written together.
// vectors.gob holds the similarity structure, records.gob the parallel
// id/metadata/text sequences. A reload requires both to be present and
// length-matched, otherwise the caller falls back to an empty index.
const (
	vectorsFile = "vectors.gob"
	recordsFile = "records.gob"
)

type vectorsSnapshot struct {
	Dimension int
	Vectors   [][]float32
}

type recordsSnapshot struct {
	Dimension int
	IDs       []string
	Metas     []domain.ChunkMeta
	Texts     []string
}

// snapshot serializes the index under the caller-held write lock. Each file
// is written to a temp name and renamed so a crash never leaves a torn file.
func (x *Index) snapshot() error {
	if err := os.MkdirAll(x.dir, 0o755); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	vs := vectorsSnapshot{Dimension: x.dim, Vectors: x.vectors}
	if err := writeGob(filepath.Join(x.dir, vectorsFile), &vs); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	rs := recordsSnapshot{Dimension: x.dim, IDs: x.ids, Metas: x.metas, Texts: x.texts}
	if err := writeGob(filepath.Join(x.dir, recordsFile), &rs); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	return nil
}

func (x *Index) load() error {
	var vs vectorsSnapshot
	if err := readGob(filepath.Join(x.dir, vectorsFile), &vs); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	var rs recordsSnapshot
	if err := readGob(filepath.Join(x.dir, recordsFile), &rs); err != nil {
		return err
	}

	if vs.Dimension != x.dim || rs.Dimension != x.dim {
		return fmt.Errorf("persisted dimension %d does not match configured %d", vs.Dimension, x.dim)
	}
	n := len(rs.IDs)
	if len(vs.Vectors) != n || len(rs.Metas) != n || len(rs.Texts) != n {
		return fmt.Errorf("persisted sequences are not length-matched (%d/%d/%d/%d)",
			len(vs.Vectors), n, len(rs.Metas), len(rs.Texts))
	}
	for i, v := range vs.Vectors {
		if len(v) != x.dim {
			return fmt.Errorf("persisted vector %d has dimension %d, expected %d", i, len(v), x.dim)
		}
	}

	x.vectors = vs.Vectors
	x.ids = rs.IDs
	x.metas = rs.Metas
	x.texts = rs.Texts
	x.byID = make(map[string]int, n)
	for i, id := range rs.IDs {
		x.byID[id] = i
	}
	return nil
}

func writeGob(path string, v any) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := gob.NewEncoder(f).Encode(v); err != nil {
		f.Close()
		return err
	}
	// Sync before rename; a rename alone does not guarantee the data
	// reached disk, and a crash could leave a torn snapshot behind it.
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		return err
	}
	return syncDir(filepath.Dir(path))
}

func syncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer d.Close()
	return d.Sync()
}

func readGob(path string, v any) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gob.NewDecoder(f).Decode(v)
}
