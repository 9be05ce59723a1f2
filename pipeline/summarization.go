package pipeline

import (
	"context"
	"fmt"
	"log"

	"github.com/oarkflow/newsml/corpus"
	"github.com/oarkflow/newsml/metrics"
	"github.com/oarkflow/newsml/seq2seq"
	"github.com/oarkflow/newsml/tokenizer"
)

// RunSummarization fine-tunes the summarizer on the dataset at
// trainPath and evaluates it on the held-out split. initCheckpoint is
// the pretrained checkpoint to start from; empty means fresh weights
// (used by the pretrain command itself).
func (p *Pipeline) RunSummarization(ctx context.Context, trainPath, initCheckpoint string) (metrics.SummaryReport, error) {
	runID := p.startRun("summarization")
	report, err := p.runSummarization(ctx, runID, trainPath, initCheckpoint)
	p.finishRun(runID, err)
	if err != nil {
		return metrics.SummaryReport{}, err
	}
	return report, nil
}

func (p *Pipeline) runSummarization(ctx context.Context, runID, trainPath, initCheckpoint string) (metrics.SummaryReport, error) {
	var empty metrics.SummaryReport
	scfg := p.cfg.Summarizer

	articles, stats, err := p.loader.LoadArticles(trainPath)
	if err != nil {
		return empty, err
	}
	if len(articles) == 0 {
		return empty, fmt.Errorf("pipeline: %s yielded no usable articles", trainPath)
	}
	log.Printf("pipeline: run %s loaded %d articles (%d malformed, %d filtered)",
		runID, stats.Loaded, stats.Malformed, stats.FilteredEmpty+stats.FilteredLabel+stats.FilteredLanguage)

	var model *seq2seq.Model
	var vocab *tokenizer.Vocab
	if initCheckpoint != "" {
		model, vocab, err = seq2seq.LoadCheckpoint(initCheckpoint)
		if err != nil {
			return empty, err
		}
	} else {
		texts := make([]string, 0, len(articles)*2)
		for _, a := range articles {
			texts = append(texts, a.RawText, a.ReferenceSummary)
		}
		vocab = tokenizer.Build(texts, scfg.VocabSize)
		model = seq2seq.NewModel(seq2seq.ModelConfig{
			VocabSize: vocab.Len(),
			EmbedDim:  scfg.EmbedDim,
			HiddenDim: scfg.HiddenDim,
		}, scfg.Seed)
	}

	trainIdx, heldIdx := splitIndexes(len(articles), scfg.HoldoutFraction, scfg.Seed)
	prep := tokenizer.NewPreprocessor(vocab, scfg.MaxLength, scfg.MaxSummaryLength)
	examples := make([]tokenizer.Example, 0, len(trainIdx))
	for _, i := range trainIdx {
		if ex, ok := prep.Pair(articles[i].RawText, articles[i].ReferenceSummary); ok {
			examples = append(examples, ex)
		}
	}
	truncated, skipped := prep.Stats()
	log.Printf("pipeline: run %s tokenized %d examples (%d truncated, %d skipped)", runID, len(examples), truncated, skipped)

	trainer := seq2seq.NewTrainer(model, seq2seq.TrainConfig{
		Epochs:       scfg.Epochs,
		BatchSize:    scfg.BatchSize,
		LearningRate: scfg.LearningRate,
		LRDecay:      scfg.LRDecay,
		Seed:         scfg.Seed,
	})
	loss, err := trainer.Train(ctx, examples)
	if err != nil {
		// diverged or cancelled: no checkpoint may be written
		return empty, err
	}
	p.recordMetric(runID, "final_loss", loss)

	ckPath, err := p.artifactPath("summarizer-" + runID + ".json")
	if err != nil {
		return empty, err
	}
	if err := seq2seq.SaveCheckpoint(ckPath, runID, model, vocab); err != nil {
		return empty, err
	}
	p.recordArtifact(runID, "checkpoint", ckPath)

	held := make([]corpus.Article, 0, len(heldIdx))
	for _, i := range heldIdx {
		held = append(held, articles[i])
	}
	evalPrep := tokenizer.NewPreprocessor(vocab, scfg.MaxLength, scfg.MaxSummaryLength)
	report, err := seq2seq.NewEvaluator(model, vocab, evalPrep, scfg.MaxSummaryLength).Evaluate(ctx, held)
	if err != nil {
		return empty, err
	}
	report.RunID = runID

	p.recordMetric(runID, "rouge1", report.Rouge1)
	p.recordMetric(runID, "rouge2", report.Rouge2)
	p.recordMetric(runID, "rougeL", report.RougeL)

	reportPath, err := p.artifactPath("summary-report-" + runID + ".json")
	if err != nil {
		return empty, err
	}
	if err := metrics.WriteJSON(reportPath, report); err != nil {
		return empty, err
	}
	p.recordArtifact(runID, "report", reportPath)
	log.Printf("pipeline: run %s rouge1=%.4f rouge2=%.4f rougeL=%.4f over %d held-out articles",
		runID, report.Rouge1, report.Rouge2, report.RougeL, report.Examples)
	return report, nil
}

// Pretrain builds a next-token objective from the articles alone
// (each article paired with its own head) and trains fresh weights,
// producing the checkpoint later fine-tuning runs initialize from.
func (p *Pipeline) Pretrain(ctx context.Context, textsPath string) (string, error) {
	runID := p.startRun("pretrain")
	path, err := p.pretrain(ctx, runID, textsPath)
	p.finishRun(runID, err)
	return path, err
}

func (p *Pipeline) pretrain(ctx context.Context, runID, textsPath string) (string, error) {
	scfg := p.cfg.Summarizer
	texts, _, err := p.loader.LoadTexts(textsPath)
	if err != nil {
		return "", err
	}
	if len(texts) == 0 {
		return "", fmt.Errorf("pipeline: %s yielded no usable articles", textsPath)
	}
	vocab := tokenizer.Build(texts, scfg.VocabSize)
	model := seq2seq.NewModel(seq2seq.ModelConfig{
		VocabSize: vocab.Len(),
		EmbedDim:  scfg.EmbedDim,
		HiddenDim: scfg.HiddenDim,
	}, scfg.Seed)

	prep := tokenizer.NewPreprocessor(vocab, scfg.MaxLength, scfg.MaxSummaryLength)
	var examples []tokenizer.Example
	for _, text := range texts {
		if ex, ok := prep.Pair(text, headWords(text, scfg.MaxSummaryLength/2)); ok {
			examples = append(examples, ex)
		}
	}

	trainer := seq2seq.NewTrainer(model, seq2seq.TrainConfig{
		Epochs:       scfg.Epochs,
		BatchSize:    scfg.BatchSize,
		LearningRate: scfg.LearningRate,
		LRDecay:      scfg.LRDecay,
		Seed:         scfg.Seed,
	})
	if _, err := trainer.Train(ctx, examples); err != nil {
		return "", err
	}

	path, err := p.artifactPath("pretrained-" + runID + ".json")
	if err != nil {
		return "", err
	}
	if err := seq2seq.SaveCheckpoint(path, runID, model, vocab); err != nil {
		return "", err
	}
	p.recordArtifact(runID, "checkpoint", path)
	return path, nil
}

func headWords(text string, n int) string {
	words := tokenizer.Words(text)
	if len(words) > n {
		words = words[:n]
	}
	out := ""
	for i, w := range words {
		if i > 0 {
			out += " "
		}
		out += w
	}
	return out
}
