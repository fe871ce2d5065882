// Package vectorindex holds labeled pokemon embeddings in memory and answers
// nearest-neighbour queries by exhaustive L2 search.
package vectorindex

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
)

// ErrDimension is returned when a vector does not match the index dimension
var ErrDimension = errors.New("vector dimension mismatch")

// Match is one search hit
type Match struct {
	Label    string
	Distance float64
}

// Index is a flat L2 index. It is safe for concurrent use.
type Index struct {
	mu      sync.RWMutex
	dim     int
	labels  []string
	vectors [][]float32
}

// New creates an empty index of the given dimension
func New(dim int) *Index {
	return &Index{dim: dim}
}

// Dim returns the vector dimension
func (ix *Index) Dim() int {
	return ix.dim
}

// Len returns the number of stored vectors
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.vectors)
}

// Add stores a labeled vector
func (ix *Index) Add(label string, vec []float32) error {
	if len(vec) != ix.dim {
		return fmt.Errorf("%w: got %d, want %d", ErrDimension, len(vec), ix.dim)
	}
	v := make([]float32, len(vec))
	copy(v, vec)

	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.labels = append(ix.labels, label)
	ix.vectors = append(ix.vectors, v)
	return nil
}

// Search returns the k nearest labels, closest first. The distance is the
// plain Euclidean distance.
func (ix *Index) Search(vec []float32, k int) ([]Match, error) {
	if len(vec) != ix.dim {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrDimension, len(vec), ix.dim)
	}

	ix.mu.RLock()
	matches := make([]Match, len(ix.vectors))
	for i, v := range ix.vectors {
		matches[i] = Match{Label: ix.labels[i], Distance: l2(vec, v)}
	}
	ix.mu.RUnlock()

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Distance < matches[j].Distance })
	if k < len(matches) {
		matches = matches[:k]
	}
	return matches, nil
}

// Nearest returns the closest label when it lies within maxDistance
func (ix *Index) Nearest(vec []float32, maxDistance float64) (string, bool, error) {
	matches, err := ix.Search(vec, 1)
	if err != nil {
		return "", false, err
	}
	if len(matches) == 0 || matches[0].Distance >= maxDistance {
		return "", false, nil
	}
	return matches[0].Label, true, nil
}

func l2(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}

// Row is one stored embedding
type Row struct {
	Label  string
	Vector []byte
}

// RowSource yields stored embeddings
type RowSource interface {
	Embeddings(ctx context.Context) ([]Row, error)
}

// Load builds an index from stored rows
func Load(ctx context.Context, src RowSource, dim int) (*Index, error) {
	rows, err := src.Embeddings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load embeddings: %w", err)
	}
	ix := New(dim)
	for _, r := range rows {
		vec, err := Decode(r.Vector)
		if err != nil {
			return nil, fmt.Errorf("embedding %q: %w", r.Label, err)
		}
		if err := ix.Add(r.Label, vec); err != nil {
			return nil, fmt.Errorf("embedding %q: %w", r.Label, err)
		}
	}
	return ix, nil
}

// Encode packs a vector as little-endian float32s
func Encode(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, f := range vec {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(f))
	}
	return buf
}

// Decode unpacks a vector written by Encode
func Decode(buf []byte) ([]float32, error) {
	if len(buf)%4 != 0 {
		return nil, fmt.Errorf("embedding blob of %d bytes is not a float32 vector", len(buf))
	}
	vec := make([]float32, len(buf)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[4*i:]))
	}
	return vec, nil
}
