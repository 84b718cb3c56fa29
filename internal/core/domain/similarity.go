package domain

import (
	"fmt"
	"math"
)

// CosineSimilarity computes the cosine similarity between two vectors of
// equal length: dot(a, b) / (|a| * |b|), in [-1, 1].
// If either vector has zero norm the similarity is defined as 0.
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", ErrDimensionMismatch, len(a), len(b))
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0, nil
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}

// Match is the result of a similarity search over a group.
type Match struct {
	// Record is the best-matching indexed chunk.
	Record EmbeddingRecord

	// Similarity is the cosine similarity of the record to the query.
	Similarity float64
}

// FindBest scans the group's records and returns the single record with the
// highest cosine similarity to the query vector.
//
// A candidate replaces the current best only on strictly greater similarity,
// so ties keep the earliest-appended record. Any vector whose length differs
// from the query's is a fatal error for the whole call, never skipped: it
// signals the group was built with a different embedding model.
//
// An empty group returns found=false with no error; "no match" is a valid
// outcome, not a failure.
func (g Group) FindBest(query []float32) (Match, bool, error) {
	var best Match
	found := false

	for i := range g.Embeddings {
		score, err := CosineSimilarity(query, g.Embeddings[i].Embedding)
		if err != nil {
			return Match{}, false, fmt.Errorf("group %q record %d: %w", g.Name, i, err)
		}
		if !found || score > best.Similarity {
			best = Match{Record: g.Embeddings[i], Similarity: score}
			found = true
		}
	}

	return best, found, nil
}
