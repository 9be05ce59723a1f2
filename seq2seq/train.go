package seq2seq

import (
	"context"
	"log"
	"math"
	"math/rand"

	"github.com/oarkflow/newsml/tokenizer"
)

// TrainConfig holds the fine-tuning hyperparameters. Zero values fall
// back to defaults at construction.
type TrainConfig struct {
	Epochs       int
	BatchSize    int
	LearningRate float64
	LRDecay      float64
	Seed         int64
}

func (c TrainConfig) withDefaults() TrainConfig {
	if c.Epochs <= 0 {
		c.Epochs = 3
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 8
	}
	if c.LearningRate <= 0 {
		c.LearningRate = 0.05
	}
	if c.LRDecay < 0 || c.LRDecay >= 1 {
		c.LRDecay = 0
	}
	if c.Seed == 0 {
		c.Seed = 42
	}
	return c
}

// Trainer fine-tunes a model over tokenized (article, summary) examples
// with teacher-forced cross-entropy and mini-batch SGD.
type Trainer struct {
	model *Model
	cfg   TrainConfig
}

func NewTrainer(model *Model, cfg TrainConfig) *Trainer {
	return &Trainer{model: model, cfg: cfg.withDefaults()}
}

// Train runs the configured epochs and returns the final epoch's mean
// per-token loss. A non-finite loss halts immediately with
// *TrainingDivergedError; the caller must not checkpoint after that.
func (t *Trainer) Train(ctx context.Context, examples []tokenizer.Example) (float64, error) {
	if len(examples) == 0 {
		return 0, nil
	}
	rng := rand.New(rand.NewSource(t.cfg.Seed))
	order := make([]int, len(examples))
	for i := range order {
		order[i] = i
	}

	lr := t.cfg.LearningRate
	epochLoss := 0.0
	for epoch := 1; epoch <= t.cfg.Epochs; epoch++ {
		rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

		sumLoss, sumTokens := 0.0, 0
		for start := 0; start < len(order); start += t.cfg.BatchSize {
			if err := ctx.Err(); err != nil {
				return 0, err
			}
			end := min(start+t.cfg.BatchSize, len(order))
			g := newGrads(t.model.cfg)
			batchLoss, batchTokens := 0.0, 0
			for _, i := range order[start:end] {
				l, n := t.model.backprop(examples[i], g)
				batchLoss += l
				batchTokens += n
			}
			if batchTokens == 0 {
				continue
			}
			mean := batchLoss / float64(batchTokens)
			if math.IsNaN(mean) || math.IsInf(mean, 0) {
				return 0, &TrainingDivergedError{Epoch: epoch, Batch: start / t.cfg.BatchSize, Loss: mean}
			}
			t.model.apply(g, lr, batchTokens)
			sumLoss += batchLoss
			sumTokens += batchTokens
		}

		if sumTokens > 0 {
			epochLoss = sumLoss / float64(sumTokens)
		}
		log.Printf("seq2seq: epoch %d/%d loss %.4f lr %.5f", epoch, t.cfg.Epochs, epochLoss, lr)
		if math.IsNaN(epochLoss) || math.IsInf(epochLoss, 0) {
			return 0, &TrainingDivergedError{Epoch: epoch, Loss: epochLoss}
		}
		lr *= 1 - t.cfg.LRDecay
	}
	return epochLoss, nil
}
