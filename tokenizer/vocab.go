package tokenizer

import (
	"fmt"
	"sort"

	"github.com/oarkflow/newsml/textnorm"
)

// Special token IDs. These occupy the first vocabulary slots in every
// vocabulary this package builds or restores.
const (
	PadID = 0
	UnkID = 1
	BosID = 2
	EosID = 3
)

var specials = []string{"<pad>", "<unk>", "<bos>", "<eos>"}

// Vocab maps tokens to dense integer IDs and back.
type Vocab struct {
	tokens []string
	index  map[string]int
}

// Build constructs a vocabulary from normalized corpus text, keeping the
// maxSize most frequent tokens after the specials. Ties break
// lexicographically so the same corpus always yields the same vocabulary.
func Build(texts []string, maxSize int) *Vocab {
	freq := make(map[string]int)
	for _, text := range texts {
		for _, tok := range textnorm.NormalizeTokens(Words(text)) {
			freq[tok]++
		}
	}
	type tf struct {
		tok string
		n   int
	}
	ranked := make([]tf, 0, len(freq))
	for tok, n := range freq {
		ranked = append(ranked, tf{tok, n})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].n != ranked[j].n {
			return ranked[i].n > ranked[j].n
		}
		return ranked[i].tok < ranked[j].tok
	})
	if maxSize > 0 && len(ranked) > maxSize {
		ranked = ranked[:maxSize]
	}
	v := empty(len(ranked))
	for _, e := range ranked {
		v.index[e.tok] = len(v.tokens)
		v.tokens = append(v.tokens, e.tok)
	}
	return v
}

// FromTokens restores a vocabulary from a checkpointed token list. The
// list must start with the special tokens in their fixed order.
func FromTokens(tokens []string) (*Vocab, error) {
	if len(tokens) < len(specials) {
		return nil, fmt.Errorf("vocab: token list too short (%d)", len(tokens))
	}
	for i, s := range specials {
		if tokens[i] != s {
			return nil, fmt.Errorf("vocab: token %d is %q, want %q", i, tokens[i], s)
		}
	}
	v := &Vocab{tokens: make([]string, 0, len(tokens)), index: make(map[string]int, len(tokens))}
	for _, tok := range tokens {
		if _, dup := v.index[tok]; dup {
			return nil, fmt.Errorf("vocab: duplicate token %q", tok)
		}
		v.index[tok] = len(v.tokens)
		v.tokens = append(v.tokens, tok)
	}
	return v, nil
}

func empty(capHint int) *Vocab {
	v := &Vocab{
		tokens: make([]string, 0, capHint+len(specials)),
		index:  make(map[string]int, capHint+len(specials)),
	}
	for _, s := range specials {
		v.index[s] = len(v.tokens)
		v.tokens = append(v.tokens, s)
	}
	return v
}

// ID returns the token's ID, or UnkID for out-of-vocabulary tokens.
func (v *Vocab) ID(tok string) int {
	if id, ok := v.index[tok]; ok {
		return id
	}
	return UnkID
}

// Token returns the token for id, or "<unk>" for out-of-range IDs.
func (v *Vocab) Token(id int) string {
	if id < 0 || id >= len(v.tokens) {
		return v.tokens[UnkID]
	}
	return v.tokens[id]
}

func (v *Vocab) Len() int { return len(v.tokens) }

// Tokens returns the ID-ordered token list for checkpointing.
func (v *Vocab) Tokens() []string {
	out := make([]string, len(v.tokens))
	copy(out, v.tokens)
	return out
}
