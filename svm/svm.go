// Package svm fits linear support-vector classifiers over embedding
// vectors. The Classifier interface keeps the pipeline independent of
// the concrete classifier family.
package svm

import (
	"fmt"
	"log"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// Classifier is the capability the categorization pipeline depends on.
// Linear is the one variant shipped; alternatives slot in without
// touching pipeline code.
type Classifier interface {
	Fit(vectors [][]float64, labels []string) error
	Predict(vec []float64) string
	PredictAll(vectors [][]float64) []string
}

// Strategy selects how the multi-class problem decomposes into binary
// machines.
type Strategy string

const (
	OneVsRest Strategy = "ovr"
	OneVsOne  Strategy = "ovo"
)

// Config holds the fitting hyperparameters. Zero values fall back to the
// defaults at construction.
type Config struct {
	Strategy        Strategy
	Epochs          int
	LearningRate    float64
	C               float64
	MinClassSamples int
	Seed            int64
}

func (c Config) withDefaults() Config {
	if c.Strategy == "" {
		c.Strategy = OneVsRest
	}
	if c.Epochs <= 0 {
		c.Epochs = 50
	}
	if c.LearningRate <= 0 {
		c.LearningRate = 0.1
	}
	if c.C <= 0 {
		c.C = 1
	}
	if c.MinClassSamples <= 0 {
		c.MinClassSamples = 10
	}
	if c.Seed == 0 {
		c.Seed = 42
	}
	return c
}

// ClassImbalanceWarning is non-fatal: fitting proceeds, the caller logs it.
type ClassImbalanceWarning struct {
	Label string
	Count int
	Min   int
}

func (w ClassImbalanceWarning) String() string {
	return fmt.Sprintf("svm: class %q has %d samples, below the configured minimum %d", w.Label, w.Count, w.Min)
}

// binary is one hyperplane: score = w·x + b.
type binary struct {
	W []float64 `json:"w"`
	B float64   `json:"b"`
}

// Linear is a multi-class linear SVM fitted by hinge-loss SGD.
type Linear struct {
	cfg      Config
	classes  []string
	machines []binary
	pairs    [][2]int
	dim      int
	warnings []ClassImbalanceWarning
}

func NewLinear(cfg Config) *Linear {
	return &Linear{cfg: cfg.withDefaults()}
}

// Warnings reports the imbalance warnings raised by the last Fit.
func (l *Linear) Warnings() []ClassImbalanceWarning { return l.warnings }

// Classes returns the fitted label order.
func (l *Linear) Classes() []string {
	out := make([]string, len(l.classes))
	copy(out, l.classes)
	return out
}

// Dim returns the feature dimension the classifier was fitted on.
func (l *Linear) Dim() int { return l.dim }

// Fit trains one machine per class (one-vs-rest) or per class pair
// (one-vs-one). Class order is sorted so fitting is deterministic.
func (l *Linear) Fit(vectors [][]float64, labels []string) error {
	if len(vectors) == 0 || len(vectors) != len(labels) {
		return fmt.Errorf("svm: %d vectors for %d labels", len(vectors), len(labels))
	}
	l.dim = len(vectors[0])
	counts := make(map[string]int)
	for _, lab := range labels {
		counts[lab]++
	}
	l.classes = l.classes[:0]
	for lab := range counts {
		l.classes = append(l.classes, lab)
	}
	sort.Strings(l.classes)

	l.warnings = l.warnings[:0]
	for _, lab := range l.classes {
		if counts[lab] < l.cfg.MinClassSamples {
			w := ClassImbalanceWarning{Label: lab, Count: counts[lab], Min: l.cfg.MinClassSamples}
			l.warnings = append(l.warnings, w)
			log.Print(w.String())
		}
	}

	classIdx := make(map[string]int, len(l.classes))
	for i, lab := range l.classes {
		classIdx[lab] = i
	}
	y := make([]int, len(labels))
	for i, lab := range labels {
		y[i] = classIdx[lab]
	}

	rng := rand.New(rand.NewSource(l.cfg.Seed))
	switch l.cfg.Strategy {
	case OneVsOne:
		l.fitOneVsOne(vectors, y, rng)
	default:
		l.fitOneVsRest(vectors, y, rng)
	}
	return nil
}

func (l *Linear) fitOneVsRest(vectors [][]float64, y []int, rng *rand.Rand) {
	l.pairs = nil
	l.machines = make([]binary, len(l.classes))
	for c := range l.classes {
		targets := make([]float64, len(y))
		for i, yi := range y {
			if yi == c {
				targets[i] = 1
			} else {
				targets[i] = -1
			}
		}
		l.machines[c] = l.fitBinary(vectors, targets, rng)
	}
}

func (l *Linear) fitOneVsOne(vectors [][]float64, y []int, rng *rand.Rand) {
	l.pairs = l.pairs[:0]
	l.machines = l.machines[:0]
	for a := 0; a < len(l.classes); a++ {
		for b := a + 1; b < len(l.classes); b++ {
			var subset [][]float64
			var targets []float64
			for i, yi := range y {
				switch yi {
				case a:
					subset = append(subset, vectors[i])
					targets = append(targets, 1)
				case b:
					subset = append(subset, vectors[i])
					targets = append(targets, -1)
				}
			}
			l.pairs = append(l.pairs, [2]int{a, b})
			l.machines = append(l.machines, l.fitBinary(subset, targets, rng))
		}
	}
}

// fitBinary runs hinge-loss SGD with L2 regularization strength
// lambda = 1/(C*n), the usual soft-margin parameterization.
func (l *Linear) fitBinary(vectors [][]float64, targets []float64, rng *rand.Rand) binary {
	n := len(vectors)
	m := binary{W: make([]float64, l.dim)}
	if n == 0 {
		return m
	}
	lambda := 1 / (l.cfg.C * float64(n))
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	lr := l.cfg.LearningRate
	for epoch := 0; epoch < l.cfg.Epochs; epoch++ {
		rng.Shuffle(n, func(i, j int) { order[i], order[j] = order[j], order[i] })
		for _, i := range order {
			x, t := vectors[i], targets[i]
			margin := t * (floats.Dot(m.W, x) + m.B)
			// shrink toward the origin, then correct on margin violations
			floats.Scale(1-lr*lambda, m.W)
			if margin < 1 {
				floats.AddScaled(m.W, lr*t, x)
				m.B += lr * t
			}
		}
	}
	return m
}

// Predict labels one vector. One-vs-rest takes the highest hyperplane
// score; one-vs-one takes the majority vote with score sum as the
// tiebreak.
func (l *Linear) Predict(vec []float64) string {
	if len(l.classes) == 0 {
		return ""
	}
	if len(l.pairs) > 0 {
		return l.predictOneVsOne(vec)
	}
	best, bestScore := 0, floats.Dot(l.machines[0].W, vec)+l.machines[0].B
	for c := 1; c < len(l.machines); c++ {
		if s := floats.Dot(l.machines[c].W, vec) + l.machines[c].B; s > bestScore {
			best, bestScore = c, s
		}
	}
	return l.classes[best]
}

func (l *Linear) predictOneVsOne(vec []float64) string {
	votes := make([]int, len(l.classes))
	scores := make([]float64, len(l.classes))
	for i, p := range l.pairs {
		s := floats.Dot(l.machines[i].W, vec) + l.machines[i].B
		if s >= 0 {
			votes[p[0]]++
			scores[p[0]] += s
		} else {
			votes[p[1]]++
			scores[p[1]] -= s
		}
	}
	best := 0
	for c := 1; c < len(l.classes); c++ {
		if votes[c] > votes[best] || (votes[c] == votes[best] && scores[c] > scores[best]) {
			best = c
		}
	}
	return l.classes[best]
}

// PredictAll labels a batch, order preserved.
func (l *Linear) PredictAll(vectors [][]float64) []string {
	out := make([]string, len(vectors))
	for i, v := range vectors {
		out[i] = l.Predict(v)
	}
	return out
}
