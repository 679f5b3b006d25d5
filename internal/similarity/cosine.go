package similarity

import "math"

// Cosine returns the cosine similarity of two vectors in [-1, 1]. Mismatched
// lengths and zero vectors yield 0 rather than an error; the scorers treat
// both as "no measurable similarity".
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Scaled maps a cosine similarity onto the 0-100 score range, clamping
// negative similarities to 0.
func Scaled(similarity float64) float64 {
	score := similarity * 100
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
