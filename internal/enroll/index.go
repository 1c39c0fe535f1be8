package enroll

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/coder/hnsw"

	"github.com/kozaktomas/punchclock/internal/identity"
)

const indexMaxNeighbors = 16

// Match is one approximate-nearest-neighbor hit.
type Match struct {
	Name     string
	Distance float64
}

// Index wraps an HNSW graph over the enrolled embeddings, keyed by identity
// name. Enrollment sets are small, so the graph is rebuilt from the store at
// startup; the optional disk snapshot only skips that rebuild.
type Index struct {
	graph *hnsw.Graph[string]
	mu    sync.RWMutex
}

// NewIndex creates an empty index.
func NewIndex() *Index {
	return &Index{}
}

// Build replaces the graph with one over the given enrollment set.
func (ix *Index) Build(enrolled []identity.Enrolled) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if len(enrolled) == 0 {
		ix.graph = nil
		return nil
	}

	g := hnsw.NewGraph[string]()
	g.M = indexMaxNeighbors
	g.Ml = 1.0 / float64(indexMaxNeighbors)
	g.Distance = hnsw.CosineDistance

	for _, e := range enrolled {
		if len(e.Embedding) == 0 {
			continue
		}
		g.Add(hnsw.MakeNode(e.Name, e.Embedding))
	}

	ix.graph = g
	return nil
}

// Nearest returns up to k closest identities to the query embedding.
func (ix *Index) Nearest(query []float32, k int) ([]Match, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if ix.graph == nil {
		return nil, errors.New("index not initialized")
	}

	neighbors := ix.graph.Search(query, k)
	matches := make([]Match, len(neighbors))
	for i, n := range neighbors {
		matches[i] = Match{
			Name: n.Key,
			// Recompute the exact distance from the node's own embedding.
			Distance: identity.CosineDistance(query, n.Value),
		}
	}
	return matches, nil
}

// Len returns the number of indexed identities.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if ix.graph == nil {
		return 0
	}
	return ix.graph.Len()
}

// Save writes the graph snapshot to disk. An empty index removes a stale file.
func (ix *Index) Save(path string) error {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if ix.graph == nil {
		_ = os.Remove(path)
		return nil
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create index file: %w", err)
	}
	defer f.Close()

	if err := ix.graph.Export(f); err != nil {
		return fmt.Errorf("export index: %w", err)
	}
	return nil
}

// Load reads a graph snapshot written by Save. A missing file is not an
// error; the caller falls back to Build.
func (ix *Index) Load(path string) (bool, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return false, nil
	}

	saved, err := hnsw.LoadSavedGraph[string](path)
	if err != nil {
		return false, fmt.Errorf("load index: %w", err)
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.graph = saved.Graph
	return true, nil
}
