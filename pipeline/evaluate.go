package pipeline

import (
	"context"
	"fmt"
	"log"

	"github.com/oarkflow/newsml/embedding"
	"github.com/oarkflow/newsml/metrics"
	"github.com/oarkflow/newsml/seq2seq"
	"github.com/oarkflow/newsml/svm"
	"github.com/oarkflow/newsml/tokenizer"
)

// EvaluateSummarizer scores an existing checkpoint against the full
// dataset at dataPath without any training.
func (p *Pipeline) EvaluateSummarizer(ctx context.Context, checkpointPath, dataPath string) (metrics.SummaryReport, error) {
	runID := p.startRun("eval-summarization")
	report, err := p.evaluateSummarizer(ctx, runID, checkpointPath, dataPath)
	p.finishRun(runID, err)
	if err != nil {
		return metrics.SummaryReport{}, err
	}
	return report, nil
}

func (p *Pipeline) evaluateSummarizer(ctx context.Context, runID, checkpointPath, dataPath string) (metrics.SummaryReport, error) {
	var empty metrics.SummaryReport
	scfg := p.cfg.Summarizer

	model, vocab, err := seq2seq.LoadCheckpoint(checkpointPath)
	if err != nil {
		return empty, err
	}
	articles, _, err := p.loader.LoadArticles(dataPath)
	if err != nil {
		return empty, err
	}
	if len(articles) == 0 {
		return empty, fmt.Errorf("pipeline: %s yielded no usable articles", dataPath)
	}

	prep := tokenizer.NewPreprocessor(vocab, scfg.MaxLength, scfg.MaxSummaryLength)
	report, err := seq2seq.NewEvaluator(model, vocab, prep, scfg.MaxSummaryLength).Evaluate(ctx, articles)
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
	log.Printf("pipeline: run %s rouge1=%.4f rouge2=%.4f rougeL=%.4f over %d articles",
		runID, report.Rouge1, report.Rouge2, report.RougeL, report.Examples)
	return report, nil
}

// EvaluateCategorizer scores an existing classifier artifact against
// the full labeled dataset at dataPath.
func (p *Pipeline) EvaluateCategorizer(ctx context.Context, artifactPath, dataPath string) (metrics.ClassificationReport, error) {
	runID := p.startRun("eval-categorization")
	report, err := p.evaluateCategorizer(ctx, runID, artifactPath, dataPath)
	p.finishRun(runID, err)
	if err != nil {
		return metrics.ClassificationReport{}, err
	}
	return report, nil
}

func (p *Pipeline) evaluateCategorizer(ctx context.Context, runID, artifactPath, dataPath string) (metrics.ClassificationReport, error) {
	var empty metrics.ClassificationReport

	clf, err := svm.Load(artifactPath)
	if err != nil {
		return empty, err
	}
	records, _, err := p.loader.LoadCategories(dataPath)
	if err != nil {
		return empty, err
	}
	if len(records) == 0 {
		return empty, fmt.Errorf("pipeline: %s yielded no usable records", dataPath)
	}
	if err := ctx.Err(); err != nil {
		return empty, err
	}

	hasher := embedding.NewHasher(clf.Dim())
	vectors := make([][]float64, len(records))
	labels := make([]string, len(records))
	for i, r := range records {
		vectors[i] = hasher.Embed(r.RawText)
		labels[i] = r.Label
	}

	predicted := clf.PredictAll(vectors)
	accuracy := metrics.Accuracy(predicted, labels)
	macro, perClass := metrics.MacroF1(predicted, labels, clf.Classes())

	report := metrics.ClassificationReport{
		RunID:    runID,
		Examples: len(labels),
		Accuracy: accuracy,
		MacroF1:  macro,
		PerClass: perClass,
	}
	p.recordMetric(runID, "accuracy", accuracy)
	p.recordMetric(runID, "macro_f1", macro)

	reportPath, err := p.artifactPath("classification-report-" + runID + ".json")
	if err != nil {
		return empty, err
	}
	if err := metrics.WriteJSON(reportPath, report); err != nil {
		return empty, err
	}
	p.recordArtifact(runID, "report", reportPath)
	log.Printf("pipeline: run %s accuracy=%.4f macro_f1=%.4f over %d records",
		runID, accuracy, macro, report.Examples)
	return report, nil
}
