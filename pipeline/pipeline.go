// Package pipeline wires the stages of the two task pipelines:
// Load -> Preprocess -> Train -> Evaluate, strictly linear, fail-fast.
// A failed stage halts that run; nothing partial is ever published.
package pipeline

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/oarkflow/newsml/config"
	"github.com/oarkflow/newsml/corpus"
	"github.com/oarkflow/newsml/langdetect"
	"github.com/oarkflow/newsml/runstore"
)

// Pipeline owns one configuration and, optionally, a run store. With a
// nil store runs still execute; they just are not recorded.
type Pipeline struct {
	cfg      config.Config
	store    *runstore.Store
	loader   *corpus.Loader
	detector *langdetect.Detector
}

func New(cfg config.Config, store *runstore.Store) *Pipeline {
	detector := langdetect.New(cfg.LanguageThreshold)
	return &Pipeline{
		cfg:      cfg,
		store:    store,
		loader:   corpus.NewLoader(detector, cfg.MaxSkipRate),
		detector: detector,
	}
}

func (p *Pipeline) startRun(task string) string {
	id := uuid.NewString()
	if p.store != nil {
		if err := p.store.StartRun(id, task); err != nil {
			// the run proceeds; only bookkeeping is degraded
			fmt.Fprintf(os.Stderr, "pipeline: %v\n", err)
		}
	}
	return id
}

func (p *Pipeline) finishRun(id string, runErr error) {
	if p.store == nil {
		return
	}
	status, msg := runstore.StatusPassed, ""
	if runErr != nil {
		status, msg = runstore.StatusFailed, runErr.Error()
	}
	if err := p.store.FinishRun(id, status, msg); err != nil {
		fmt.Fprintf(os.Stderr, "pipeline: %v\n", err)
	}
}

func (p *Pipeline) recordMetric(runID, name string, value float64) {
	if p.store == nil {
		return
	}
	if err := p.store.RecordMetric(runID, name, value); err != nil {
		fmt.Fprintf(os.Stderr, "pipeline: %v\n", err)
	}
}

func (p *Pipeline) recordArtifact(runID, kind, path string) {
	if p.store == nil {
		return
	}
	if err := p.store.RecordArtifact(runID, kind, path); err != nil {
		fmt.Fprintf(os.Stderr, "pipeline: %v\n", err)
	}
}

func (p *Pipeline) artifactPath(name string) (string, error) {
	if err := os.MkdirAll(p.cfg.ArtifactDir, 0o755); err != nil {
		return "", fmt.Errorf("pipeline: create artifact dir: %w", err)
	}
	return filepath.Join(p.cfg.ArtifactDir, name), nil
}

// splitIndexes deterministically shuffles 0..n-1 and splits off the
// held-out fraction.
func splitIndexes(n int, holdout float64, seed int64) (train, held []int) {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(n, func(i, j int) { order[i], order[j] = order[j], order[i] })
	cut := int(float64(n) * holdout)
	if cut < 1 && holdout > 0 && n > 1 {
		cut = 1
	}
	return order[cut:], order[:cut]
}
