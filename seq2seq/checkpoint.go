package seq2seq

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/oarkflow/newsml/artifact"
	"github.com/oarkflow/newsml/tokenizer"
)

// checkpointV1 is the on-disk layout: model weights plus the tokenizer
// vocabulary, so the inference side loads both from one file. JSON keeps
// float64 values exactly through Go's shortest round-trip encoding.
type checkpointV1 struct {
	Version   int         `json:"version"`
	RunID     string      `json:"run_id"`
	CreatedAt time.Time   `json:"created_at"`
	Config    ModelConfig `json:"config"`
	Vocab     []string    `json:"vocab"`
	Emb       []float64   `json:"emb"`
	W1        []float64   `json:"w1"`
	B1        []float64   `json:"b1"`
	W2        []float64   `json:"w2"`
	B2        []float64   `json:"b2"`
}

// SaveCheckpoint writes the model and its vocabulary. Failures are
// fatal for the run; the atomic write never publishes a partial file.
func SaveCheckpoint(path, runID string, m *Model, vocab *tokenizer.Vocab) error {
	if vocab.Len() != m.cfg.VocabSize {
		return fmt.Errorf("seq2seq: vocab size %d does not match model %d", vocab.Len(), m.cfg.VocabSize)
	}
	cp := checkpointV1{
		Version:   1,
		RunID:     runID,
		CreatedAt: time.Now().UTC(),
		Config:    m.cfg,
		Vocab:     vocab.Tokens(),
		Emb:       flat(m.emb),
		W1:        flat(m.w1),
		B1:        append([]float64(nil), m.b1...),
		W2:        flat(m.w2),
		B2:        append([]float64(nil), m.b2...),
	}
	return artifact.WriteJSON(path, cp)
}

// LoadCheckpoint restores a model and vocabulary saved by
// SaveCheckpoint.
func LoadCheckpoint(path string) (*Model, *tokenizer.Vocab, error) {
	var cp checkpointV1
	if err := artifact.ReadJSON(path, &cp); err != nil {
		return nil, nil, err
	}
	if cp.Version != 1 {
		return nil, nil, fmt.Errorf("seq2seq: unsupported checkpoint version %d", cp.Version)
	}
	cfg := cp.Config
	if len(cp.Vocab) != cfg.VocabSize {
		return nil, nil, fmt.Errorf("seq2seq: checkpoint vocab has %d tokens, config says %d", len(cp.Vocab), cfg.VocabSize)
	}
	if err := checkLen("emb", cp.Emb, cfg.VocabSize*cfg.EmbedDim); err != nil {
		return nil, nil, err
	}
	if err := checkLen("w1", cp.W1, cfg.HiddenDim*2*cfg.EmbedDim); err != nil {
		return nil, nil, err
	}
	if err := checkLen("b1", cp.B1, cfg.HiddenDim); err != nil {
		return nil, nil, err
	}
	if err := checkLen("w2", cp.W2, cfg.VocabSize*cfg.HiddenDim); err != nil {
		return nil, nil, err
	}
	if err := checkLen("b2", cp.B2, cfg.VocabSize); err != nil {
		return nil, nil, err
	}
	vocab, err := tokenizer.FromTokens(cp.Vocab)
	if err != nil {
		return nil, nil, err
	}
	m := &Model{
		cfg: cfg,
		emb: mat.NewDense(cfg.VocabSize, cfg.EmbedDim, cp.Emb),
		w1:  mat.NewDense(cfg.HiddenDim, 2*cfg.EmbedDim, cp.W1),
		b1:  cp.B1,
		w2:  mat.NewDense(cfg.VocabSize, cfg.HiddenDim, cp.W2),
		b2:  cp.B2,
	}
	return m, vocab, nil
}

func flat(d *mat.Dense) []float64 {
	raw := d.RawMatrix()
	out := make([]float64, len(raw.Data))
	copy(out, raw.Data)
	return out
}

func checkLen(name string, data []float64, want int) error {
	if len(data) != want {
		return fmt.Errorf("seq2seq: checkpoint %s has %d values, want %d", name, len(data), want)
	}
	return nil
}
