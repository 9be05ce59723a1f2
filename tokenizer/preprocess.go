package tokenizer

import (
	"github.com/oarkflow/newsml/textnorm"
)

// Example is a tokenized (input, target) pair ready for training or
// evaluation. InputIDs is always exactly the configured max length, with
// AttentionMask marking real tokens. TargetIDs is unpadded and ends with
// <eos>.
type Example struct {
	InputIDs      []int
	AttentionMask []int
	TargetIDs     []int
}

// Preprocessor turns raw records into fixed-length tokenized examples.
// It holds no global state: behavior is a function of the record, the
// vocabulary, and the configured limits.
type Preprocessor struct {
	vocab     *Vocab
	maxLength int
	maxTarget int

	truncated int
	skipped   int
}

func NewPreprocessor(v *Vocab, maxLength, maxTarget int) *Preprocessor {
	return &Preprocessor{vocab: v, maxLength: maxLength, maxTarget: maxTarget}
}

// Pair tokenizes an (article, summary) record. ok is false when either
// side is empty after normalization; such records are counted and must
// not travel downstream.
func (p *Preprocessor) Pair(article, summary string) (Example, bool) {
	in, inTrunc := p.encode(article, p.maxLength)
	tgt, tgtTrunc := p.encode(summary, p.maxTarget)
	if in == nil || tgt == nil {
		p.skipped++
		return Example{}, false
	}
	if inTrunc || tgtTrunc {
		p.truncated++
	}
	mask := make([]int, p.maxLength)
	for i := range in {
		mask[i] = 1
	}
	for len(in) < p.maxLength {
		in = append(in, PadID)
	}
	return Example{InputIDs: in, AttentionMask: mask, TargetIDs: tgt}, true
}

// Input tokenizes a bare article for inference-side use, padded to the
// configured max length.
func (p *Preprocessor) Input(article string) ([]int, []int, bool) {
	in, _ := p.encode(article, p.maxLength)
	if in == nil {
		p.skipped++
		return nil, nil, false
	}
	mask := make([]int, p.maxLength)
	for i := range in {
		mask[i] = 1
	}
	for len(in) < p.maxLength {
		in = append(in, PadID)
	}
	return in, mask, true
}

// encode produces <bos> tokens... <eos>, head-truncated to limit.
// Over-length input truncates rather than erroring. Returns nil for text
// that is empty after normalization.
func (p *Preprocessor) encode(text string, limit int) ([]int, bool) {
	toks := textnorm.NormalizeTokens(Words(text))
	if len(toks) == 0 {
		return nil, false
	}
	ids := make([]int, 0, len(toks)+2)
	ids = append(ids, BosID)
	for _, t := range toks {
		ids = append(ids, p.vocab.ID(t))
	}
	ids = append(ids, EosID)
	if len(ids) > limit {
		ids = append(ids[:limit-1:limit-1], EosID)
		return ids, true
	}
	return ids, false
}

// Decode maps generated IDs back to a space-joined string, dropping
// special tokens.
func (p *Preprocessor) Decode(ids []int) string {
	out := ""
	for _, id := range ids {
		if id == PadID || id == BosID || id == EosID || id == UnkID {
			continue
		}
		if out != "" {
			out += " "
		}
		out += p.vocab.Token(id)
	}
	return out
}

// Stats reports how many records were truncated or skipped so far.
func (p *Preprocessor) Stats() (truncated, skipped int) {
	return p.truncated, p.skipped
}
