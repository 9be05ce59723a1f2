// Package metrics holds the evaluation reports both task pipelines emit
// and the classification metrics the categorizer is scored with.
package metrics

import (
	"fmt"
	"os"

	"github.com/oarkflow/json"

	"github.com/oarkflow/newsml/rouge"
)

// SummaryReport is the summarization evaluator's output.
type SummaryReport struct {
	RunID     string  `json:"run_id"`
	Examples  int     `json:"examples"`
	Rouge1    float64 `json:"rouge1"`
	Rouge2    float64 `json:"rouge2"`
	RougeL    float64 `json:"rougeL"`
	Truncated int     `json:"truncated"`
	Skipped   int     `json:"skipped"`
}

// FromRouge fills the three overlap fields from averaged scores.
func (r *SummaryReport) FromRouge(s rouge.Scores) {
	r.Rouge1, r.Rouge2, r.RougeL = s.Rouge1, s.Rouge2, s.RougeL
}

// ClassificationReport is the categorization evaluator's output.
type ClassificationReport struct {
	RunID    string             `json:"run_id"`
	Examples int                `json:"examples"`
	Accuracy float64            `json:"accuracy"`
	MacroF1  float64            `json:"macro_f1"`
	PerClass map[string]float64 `json:"per_class_f1"`
}

// Accuracy is the fraction of correctly labeled examples.
func Accuracy(predicted, actual []string) float64 {
	if len(predicted) == 0 || len(predicted) != len(actual) {
		return 0
	}
	correct := 0
	for i := range predicted {
		if predicted[i] == actual[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(predicted))
}

// MacroF1 is the unweighted mean of per-class F1 over labels, each F1
// the harmonic mean of that class's precision and recall. Classes with
// no predictions and no actuals contribute zero, matching the
// no-class-weighting default.
func MacroF1(predicted, actual, labels []string) (float64, map[string]float64) {
	perClass := make(map[string]float64, len(labels))
	if len(predicted) != len(actual) || len(labels) == 0 {
		return 0, perClass
	}
	sum := 0.0
	for _, label := range labels {
		tp, fp, fn := 0, 0, 0
		for i := range predicted {
			switch {
			case predicted[i] == label && actual[i] == label:
				tp++
			case predicted[i] == label:
				fp++
			case actual[i] == label:
				fn++
			}
		}
		f1 := 0.0
		if 2*tp+fp+fn > 0 {
			f1 = 2 * float64(tp) / float64(2*tp+fp+fn)
		}
		perClass[label] = f1
		sum += f1
	}
	return sum / float64(len(labels)), perClass
}

// WriteJSON persists a report atomically so a failed write never leaves
// a partial file behind.
func WriteJSON(path string, report any) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("metrics: marshal report: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("metrics: write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("metrics: rename %s: %w", tmp, err)
	}
	return nil
}
