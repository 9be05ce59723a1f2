package pipeline

import (
	"context"
	"fmt"
	"log"

	"github.com/oarkflow/newsml/embedding"
	"github.com/oarkflow/newsml/metrics"
	"github.com/oarkflow/newsml/svm"
)

// RunCategorization embeds the labeled dataset at dataPath, fits the
// classifier on the training split, and scores accuracy and macro F1
// on the held-out split.
func (p *Pipeline) RunCategorization(ctx context.Context, dataPath string) (metrics.ClassificationReport, error) {
	runID := p.startRun("categorization")
	report, err := p.runCategorization(ctx, runID, dataPath)
	p.finishRun(runID, err)
	if err != nil {
		return metrics.ClassificationReport{}, err
	}
	return report, nil
}

func (p *Pipeline) runCategorization(ctx context.Context, runID, dataPath string) (metrics.ClassificationReport, error) {
	var empty metrics.ClassificationReport
	kcfg := p.cfg.Categorizer

	records, stats, err := p.loader.LoadCategories(dataPath)
	if err != nil {
		return empty, err
	}
	if len(records) == 0 {
		return empty, fmt.Errorf("pipeline: %s yielded no usable records", dataPath)
	}
	log.Printf("pipeline: run %s loaded %d labeled records (%d out-of-set labels filtered)",
		runID, stats.Loaded, stats.FilteredLabel)

	if err := ctx.Err(); err != nil {
		return empty, err
	}
	hasher := embedding.NewHasher(kcfg.EmbeddingDim)
	vectors := make([][]float64, len(records))
	labels := make([]string, len(records))
	for i, r := range records {
		vectors[i] = hasher.Embed(r.RawText)
		labels[i] = r.Label
	}

	trainIdx, heldIdx := splitIndexes(len(records), kcfg.HoldoutFraction, kcfg.Seed)
	trainVec, trainLab := pick(vectors, labels, trainIdx)
	heldVec, heldLab := pick(vectors, labels, heldIdx)

	clf := svm.NewLinear(svm.Config{
		Strategy:        svm.Strategy(kcfg.Strategy),
		Epochs:          kcfg.Epochs,
		LearningRate:    kcfg.LearningRate,
		C:               kcfg.C,
		MinClassSamples: kcfg.MinClassSamples,
		Seed:            kcfg.Seed,
	})
	if err := clf.Fit(trainVec, trainLab); err != nil {
		return empty, err
	}
	for _, w := range clf.Warnings() {
		p.recordMetric(runID, "imbalance_"+w.Label, float64(w.Count))
	}

	artPath, err := p.artifactPath("classifier-" + runID + ".json")
	if err != nil {
		return empty, err
	}
	if err := clf.Save(artPath); err != nil {
		return empty, err
	}
	p.recordArtifact(runID, "classifier", artPath)

	if len(heldVec) == 0 {
		return empty, fmt.Errorf("pipeline: empty held-out split for %s", dataPath)
	}
	predicted := clf.PredictAll(heldVec)
	accuracy := metrics.Accuracy(predicted, heldLab)
	macro, perClass := metrics.MacroF1(predicted, heldLab, clf.Classes())

	report := metrics.ClassificationReport{
		RunID:    runID,
		Examples: len(heldLab),
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
	log.Printf("pipeline: run %s accuracy=%.4f macro_f1=%.4f over %d held-out records",
		runID, accuracy, macro, report.Examples)
	return report, nil
}

func pick(vectors [][]float64, labels []string, idx []int) ([][]float64, []string) {
	v := make([][]float64, 0, len(idx))
	l := make([]string, 0, len(idx))
	for _, i := range idx {
		v = append(v, vectors[i])
		l = append(l, labels[i])
	}
	return v, l
}
