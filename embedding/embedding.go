// Package embedding maps raw text to fixed-dimension dense vectors. The
// embedder is a frozen feature extractor: the mapping depends only on
// the text and the configured dimension, never on training.
package embedding

import (
	"hash/fnv"

	"gonum.org/v1/gonum/floats"

	"github.com/oarkflow/newsml/textnorm"
	"github.com/oarkflow/newsml/tokenizer"
)

// DefaultDim is the embedding width used when none is configured.
const DefaultDim = 256

// Hasher embeds text by signed feature hashing of word unigrams and
// bigrams, L2-normalized. Deterministic for a given dimension.
type Hasher struct {
	dim int
}

func NewHasher(dim int) *Hasher {
	if dim <= 0 {
		dim = DefaultDim
	}
	return &Hasher{dim: dim}
}

func (h *Hasher) Dim() int { return h.dim }

// Embed returns the vector for text. Text that normalizes to nothing
// yields the zero vector.
func (h *Hasher) Embed(text string) []float64 {
	vec := make([]float64, h.dim)
	toks := textnorm.NormalizeTokens(tokenizer.Words(text))
	for i, tok := range toks {
		h.add(vec, tok)
		if i+1 < len(toks) {
			h.add(vec, tok+" "+toks[i+1])
		}
	}
	if n := floats.Norm(vec, 2); n > 0 {
		floats.Scale(1/n, vec)
	}
	return vec
}

// EmbedAll embeds a batch, one vector per record, order preserved.
func (h *Hasher) EmbedAll(texts []string) [][]float64 {
	out := make([][]float64, len(texts))
	for i, t := range texts {
		out[i] = h.Embed(t)
	}
	return out
}

// add folds one feature into the vector: the hash picks the slot, its
// top bit picks the sign.
func (h *Hasher) add(vec []float64, feature string) {
	hs := fnv.New64a()
	hs.Write([]byte(feature))
	sum := hs.Sum64()
	idx := int(sum % uint64(h.dim))
	if sum&(1<<63) != 0 {
		vec[idx]--
	} else {
		vec[idx]++
	}
}
