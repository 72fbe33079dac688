// Package registry implements the enrolled-face registry: a durable mapping
// from identity name to face embedding samples, plus the nearest-neighbor
// matcher used to answer recognition queries.
//
// The registry is two index-aligned sequences (names and embeddings): the
// i-th name belongs to the i-th embedding. A name may appear more than once,
// one entry per enrolled sample. Every mutation updates both sequences in
// lock-step so they are never observed with different lengths.
package registry

import "sync"

// Registry is the in-memory source of truth between persists. It is safe for
// concurrent use; readers always observe a consistent snapshot, never a
// registry mid-mutation.
type Registry struct {
	mu        sync.RWMutex
	names     []string
	encodings [][]float64
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{}
}

// Enrollment is one identity with its enrolled sample count.
type Enrollment struct {
	Name    string
	Samples int
}

// Append adds one (name, embedding) entry. The embedding is copied so later
// caller mutations cannot corrupt the registry. Append does not persist;
// the caller persists explicitly after the mutation completes.
func (r *Registry) Append(name string, embedding []float64) {
	enc := make([]float64, len(embedding))
	copy(enc, embedding)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.names = append(r.names, name)
	r.encodings = append(r.encodings, enc)
}

// RemoveByName removes every entry whose name equals the given name
// (case-sensitive exact match) and returns how many entries were removed.
// Zero removals is not an error.
func (r *Registry) RemoveByName(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	names := r.names[:0]
	encodings := r.encodings[:0]
	for i, n := range r.names {
		if n == name {
			removed++
			continue
		}
		names = append(names, n)
		encodings = append(encodings, r.encodings[i])
	}
	r.names = names
	r.encodings = encodings
	return removed
}

// Len returns the number of entries.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.names)
}

// Snapshot returns copies of both sequences, suitable for persistence or
// iteration without holding the registry lock.
func (r *Registry) Snapshot() ([]string, [][]float64) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(r.names))
	copy(names, r.names)

	encodings := make([][]float64, len(r.encodings))
	for i, enc := range r.encodings {
		c := make([]float64, len(enc))
		copy(c, enc)
		encodings[i] = c
	}
	return names, encodings
}

// Enrolled returns the distinct enrolled identities in first-enrolled order,
// each with its sample count.
func (r *Registry) Enrolled() []Enrollment {
	r.mu.RLock()
	defer r.mu.RUnlock()

	index := make(map[string]int, len(r.names))
	var out []Enrollment
	for _, n := range r.names {
		if i, ok := index[n]; ok {
			out[i].Samples++
			continue
		}
		index[n] = len(out)
		out = append(out, Enrollment{Name: n, Samples: 1})
	}
	return out
}

// replace swaps in freshly loaded sequences. Only the store uses this,
// at load time, before the registry is shared.
func (r *Registry) replace(names []string, encodings [][]float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.names = names
	r.encodings = encodings
}
