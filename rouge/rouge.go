// Package rouge computes ROUGE-1, ROUGE-2, and ROUGE-L overlap between a
// candidate and a reference summary. Scores are F1 (harmonic mean of
// n-gram precision and recall), which is what the reported scalar is.
package rouge

import (
	"strings"

	"github.com/oarkflow/newsml/textnorm"
	"github.com/oarkflow/newsml/tokenizer"
)

// Scores holds the three overlap metrics for one candidate/reference pair
// or an average over a set.
type Scores struct {
	Rouge1 float64 `json:"rouge1"`
	Rouge2 float64 `json:"rouge2"`
	RougeL float64 `json:"rougeL"`
}

// Score computes all three metrics over raw text. Both sides are
// normalized the same way the training data was.
func Score(candidate, reference string) Scores {
	c := Tokens(candidate)
	r := Tokens(reference)
	return ScoreTokens(c, r)
}

// ScoreTokens computes the metrics over pre-tokenized text.
func ScoreTokens(candidate, reference []string) Scores {
	return Scores{
		Rouge1: ngramF1(candidate, reference, 1),
		Rouge2: ngramF1(candidate, reference, 2),
		RougeL: lcsF1(candidate, reference),
	}
}

// Tokens normalizes text the way the pipeline tokenizes it.
func Tokens(text string) []string {
	return textnorm.NormalizeTokens(tokenizer.Words(strings.TrimSpace(text)))
}

// Average returns the element-wise mean of scores over a held-out set.
func Average(all []Scores) Scores {
	if len(all) == 0 {
		return Scores{}
	}
	var sum Scores
	for _, s := range all {
		sum.Rouge1 += s.Rouge1
		sum.Rouge2 += s.Rouge2
		sum.RougeL += s.RougeL
	}
	n := float64(len(all))
	return Scores{Rouge1: sum.Rouge1 / n, Rouge2: sum.Rouge2 / n, RougeL: sum.RougeL / n}
}

// ngrams returns the frequency map of n-grams, space-joined.
func ngrams(tokens []string, n int) map[string]int {
	counts := make(map[string]int)
	for i := 0; i <= len(tokens)-n; i++ {
		gram := tokens[i]
		for j := 1; j < n; j++ {
			gram += " " + tokens[i+j]
		}
		counts[gram]++
	}
	return counts
}

func ngramF1(candidate, reference []string, n int) float64 {
	cg := ngrams(candidate, n)
	rg := ngrams(reference, n)
	cTotal, rTotal := 0, 0
	for _, v := range cg {
		cTotal += v
	}
	for _, v := range rg {
		rTotal += v
	}
	if cTotal == 0 || rTotal == 0 {
		return 0
	}
	overlap := 0
	for g, cv := range cg {
		if rv, ok := rg[g]; ok {
			overlap += min(cv, rv)
		}
	}
	return f1(float64(overlap)/float64(cTotal), float64(overlap)/float64(rTotal))
}

func lcsF1(candidate, reference []string) float64 {
	if len(candidate) == 0 || len(reference) == 0 {
		return 0
	}
	l := lcs(candidate, reference)
	return f1(float64(l)/float64(len(candidate)), float64(l)/float64(len(reference)))
}

// lcs is the classic dynamic-programming longest common subsequence,
// rolling a single row to keep memory linear in the reference length.
func lcs(a, b []string) int {
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				cur[j] = prev[j-1] + 1
			} else if prev[j] >= cur[j-1] {
				cur[j] = prev[j]
			} else {
				cur[j] = cur[j-1]
			}
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}

func f1(p, r float64) float64 {
	if p+r == 0 {
		return 0
	}
	return 2 * p * r / (p + r)
}
