package seq2seq

import "fmt"

// TrainingDivergedError is fatal: the run halts and no checkpoint is
// written for it.
type TrainingDivergedError struct {
	Epoch int
	Batch int
	Loss  float64
}

func (e *TrainingDivergedError) Error() string {
	return fmt.Sprintf("seq2seq: training diverged at epoch %d batch %d (loss %v)", e.Epoch, e.Batch, e.Loss)
}
