package seq2seq

import (
	"context"

	"github.com/oarkflow/newsml/corpus"
	"github.com/oarkflow/newsml/metrics"
	"github.com/oarkflow/newsml/rouge"
	"github.com/oarkflow/newsml/tokenizer"
)

// Evaluator scores a generator against held-out (article, reference)
// pairs. Scoring is deterministic: same generator, same pairs, same
// report.
type Evaluator struct {
	gen           Generator
	vocab         *tokenizer.Vocab
	prep          *tokenizer.Preprocessor
	maxSummaryLen int
}

func NewEvaluator(gen Generator, vocab *tokenizer.Vocab, prep *tokenizer.Preprocessor, maxSummaryLen int) *Evaluator {
	if maxSummaryLen <= 0 {
		maxSummaryLen = 64
	}
	return &Evaluator{gen: gen, vocab: vocab, prep: prep, maxSummaryLen: maxSummaryLen}
}

// Evaluate decodes a candidate summary per article and averages
// ROUGE-1/2/L against the references.
func (e *Evaluator) Evaluate(ctx context.Context, heldOut []corpus.Article) (metrics.SummaryReport, error) {
	var scores []rouge.Scores
	for _, art := range heldOut {
		if err := ctx.Err(); err != nil {
			return metrics.SummaryReport{}, err
		}
		ids, mask, ok := e.prep.Input(art.RawText)
		if !ok {
			continue
		}
		generated := e.gen.Generate(ids, mask, e.maxSummaryLen)
		candidate := make([]string, 0, len(generated))
		for _, id := range generated {
			switch id {
			case tokenizer.PadID, tokenizer.BosID, tokenizer.EosID, tokenizer.UnkID:
				continue
			}
			candidate = append(candidate, e.vocab.Token(id))
		}
		scores = append(scores, rouge.ScoreTokens(candidate, rouge.Tokens(art.ReferenceSummary)))
	}

	report := metrics.SummaryReport{Examples: len(scores)}
	report.FromRouge(rouge.Average(scores))
	report.Truncated, report.Skipped = e.prep.Stats()
	return report, nil
}
