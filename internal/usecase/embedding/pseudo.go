package embedding

import (
	"context"
	"math"

	"github.com/kailas-cloud/mindvault/internal/domain"
	"github.com/kailas-cloud/mindvault/internal/domain/vector"
)

// DefaultDimensions matches the reference sentence model.
const DefaultDimensions = 384

// Pseudo derives a stable unit vector from a 32-bit string hash. It keeps
// cosine math valid when no model is available but carries no semantics:
// equal texts score 1, different texts score arbitrarily.
type Pseudo struct {
	dims int
}

// NewPseudo creates a pseudo embedder producing dims-length vectors.
func NewPseudo(dims int) *Pseudo {
	if dims <= 0 {
		dims = DefaultDimensions
	}
	return &Pseudo{dims: dims}
}

// Embed implements domain.Embedder. It never fails.
func (p *Pseudo) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	return domain.EmbeddingResult{Embedding: p.Vector(text), Mode: domain.EmbeddingModePseudo}, nil
}

// Vector computes sin(hash+i)*0.1 for each component, then normalizes.
func (p *Pseudo) Vector(text string) []float32 {
	h := float64(hashString(text))
	v := make([]float32, p.dims)
	for i := range v {
		v[i] = float32(math.Sin(h+float64(i)) * 0.1)
	}
	return vector.Normalize(v)
}

// hashString is the classic h*31+c over UTF-16 code units with int32 wraparound.
func hashString(s string) int32 {
	var h int32
	for _, r := range s {
		if r >= 0x10000 {
			r -= 0x10000
			h = h*31 + int32(0xD800+(r>>10))
			h = h*31 + int32(0xDC00+(r&0x3FF))
			continue
		}
		h = h*31 + int32(r)
	}
	return h
}
