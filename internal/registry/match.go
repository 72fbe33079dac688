package registry

import "math"

// EuclideanDistance computes the Euclidean distance between two embeddings,
// matching the embedder's native comparison semantics. Lower means more
// similar. Vectors of different lengths are maximally distant.
func EuclideanDistance(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return math.Inf(1)
	}
	var sum float64
	for i := range a {
		diff := a[i] - b[i]
		sum += diff * diff
	}
	return math.Sqrt(sum)
}

// Match answers whether the query embedding belongs to a known identity.
// It scans every stored embedding, selects the minimum distance, and accepts
// iff that minimum is <= tolerance. Exact distance ties are broken by the
// lowest index: the first-enrolled entry wins, which keeps matching fully
// deterministic for a fixed registry and query.
//
// Returns the matched name, the winning distance, and whether the match was
// accepted. An empty registry never matches.
func (r *Registry) Match(query []float64, tolerance float64) (string, float64, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	best := -1
	bestDist := math.Inf(1)
	for i, enc := range r.encodings {
		// Strict less-than keeps the earliest index on equal distances.
		if d := EuclideanDistance(enc, query); d < bestDist {
			best = i
			bestDist = d
		}
	}

	if best < 0 || bestDist > tolerance {
		return "", bestDist, false
	}
	return r.names[best], bestDist, true
}
