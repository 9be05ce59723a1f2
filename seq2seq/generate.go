package seq2seq

import (
	"github.com/oarkflow/newsml/tokenizer"
)

// Generator produces a summary token sequence for a tokenized article.
// The evaluator depends on this, not on Model, so tests can stub it.
type Generator interface {
	Generate(inputIDs, mask []int, maxLen int) []int
}

// Generate decodes greedily: at each step the highest-scoring
// non-special token, stopping at <eos> or maxLen. Greedy argmax keeps
// evaluation deterministic for a given checkpoint.
func (m *Model) Generate(inputIDs, mask []int, maxLen int) []int {
	ctx := m.Encode(inputIDs, mask)
	prev := tokenizer.BosID
	var out []int
	for len(out) < maxLen {
		logits, _, _ := m.Logits(ctx, prev)
		next := argmaxToken(logits)
		if next == tokenizer.EosID {
			break
		}
		out = append(out, next)
		prev = next
	}
	return out
}

// argmaxToken picks the best next token, never emitting padding, <bos>,
// or <unk>; <eos> stays eligible so decoding can stop.
func argmaxToken(logits []float64) int {
	best := tokenizer.EosID
	for i, l := range logits {
		switch i {
		case tokenizer.PadID, tokenizer.BosID, tokenizer.UnkID:
			continue
		}
		if l > logits[best] {
			best = i
		}
	}
	return best
}
