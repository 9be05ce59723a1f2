// Package seq2seq implements the summarization model: an embedding
// encoder with a feed-forward next-token decoder, trained by
// teacher-forced cross-entropy and decoded greedily. Weights live in
// gonum dense matrices; gradients are computed in closed form.
package seq2seq

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/oarkflow/newsml/tokenizer"
)

// ModelConfig fixes the model dimensions. It travels with every
// checkpoint so a loaded model always matches its weights.
type ModelConfig struct {
	VocabSize int `json:"vocab_size"`
	EmbedDim  int `json:"embed_dim"`
	HiddenDim int `json:"hidden_dim"`
}

// Model parameters. The encoder is the mean of input token embeddings;
// the decoder predicts the next token from the context vector and the
// previous token's embedding through one tanh layer.
type Model struct {
	cfg ModelConfig

	emb *mat.Dense // VocabSize x EmbedDim
	w1  *mat.Dense // HiddenDim x 2*EmbedDim
	b1  []float64
	w2  *mat.Dense // VocabSize x HiddenDim
	b2  []float64
}

// NewModel initializes weights from the given seed so two models built
// from the same seed and config are identical.
func NewModel(cfg ModelConfig, seed int64) *Model {
	rng := rand.New(rand.NewSource(seed))
	m := &Model{
		cfg: cfg,
		emb: randomDense(rng, cfg.VocabSize, cfg.EmbedDim),
		w1:  randomDense(rng, cfg.HiddenDim, 2*cfg.EmbedDim),
		b1:  make([]float64, cfg.HiddenDim),
		w2:  randomDense(rng, cfg.VocabSize, cfg.HiddenDim),
		b2:  make([]float64, cfg.VocabSize),
	}
	return m
}

func randomDense(rng *rand.Rand, rows, cols int) *mat.Dense {
	data := make([]float64, rows*cols)
	scale := 1 / math.Sqrt(float64(cols))
	for i := range data {
		data[i] = rng.NormFloat64() * scale
	}
	return mat.NewDense(rows, cols, data)
}

func (m *Model) Config() ModelConfig { return m.cfg }

// Encode mean-pools the embeddings of unmasked input tokens into the
// context vector.
func (m *Model) Encode(inputIDs, mask []int) []float64 {
	ctx := make([]float64, m.cfg.EmbedDim)
	n := 0
	for i, id := range inputIDs {
		if i < len(mask) && mask[i] == 0 {
			continue
		}
		floats.Add(ctx, m.emb.RawRowView(id))
		n++
	}
	if n > 0 {
		floats.Scale(1/float64(n), ctx)
	}
	return ctx
}

// Logits runs one decoder step: next-token scores given the context and
// the previous token. The returned hidden activation is needed for the
// backward pass.
func (m *Model) Logits(ctx []float64, prev int) (logits, hidden, x []float64) {
	x = make([]float64, 2*m.cfg.EmbedDim)
	copy(x, ctx)
	copy(x[m.cfg.EmbedDim:], m.emb.RawRowView(prev))

	hidden = make([]float64, m.cfg.HiddenDim)
	for i := range hidden {
		hidden[i] = math.Tanh(floats.Dot(m.w1.RawRowView(i), x) + m.b1[i])
	}
	logits = make([]float64, m.cfg.VocabSize)
	for j := range logits {
		logits[j] = floats.Dot(m.w2.RawRowView(j), hidden) + m.b2[j]
	}
	return logits, hidden, x
}

// softmax is numerically stabilized in place.
func softmax(logits []float64) []float64 {
	p := make([]float64, len(logits))
	max := floats.Max(logits)
	sum := 0.0
	for i, l := range logits {
		p[i] = math.Exp(l - max)
		sum += p[i]
	}
	floats.Scale(1/sum, p)
	return p
}

// grads accumulates parameter gradients across a mini-batch.
type grads struct {
	emb *mat.Dense
	w1  *mat.Dense
	b1  []float64
	w2  *mat.Dense
	b2  []float64
}

func newGrads(cfg ModelConfig) *grads {
	return &grads{
		emb: mat.NewDense(cfg.VocabSize, cfg.EmbedDim, nil),
		w1:  mat.NewDense(cfg.HiddenDim, 2*cfg.EmbedDim, nil),
		b1:  make([]float64, cfg.HiddenDim),
		w2:  mat.NewDense(cfg.VocabSize, cfg.HiddenDim, nil),
		b2:  make([]float64, cfg.VocabSize),
	}
}

// backprop runs teacher forcing over one example, adds its gradients to
// g, and returns the summed cross-entropy and the number of predicted
// tokens.
func (m *Model) backprop(ex tokenizer.Example, g *grads) (float64, int) {
	if len(ex.TargetIDs) < 2 {
		return 0, 0
	}
	ctx := m.Encode(ex.InputIDs, ex.AttentionMask)
	dctx := make([]float64, m.cfg.EmbedDim)
	loss := 0.0
	steps := 0

	for t := 0; t+1 < len(ex.TargetIDs); t++ {
		prev, next := ex.TargetIDs[t], ex.TargetIDs[t+1]
		logits, hidden, x := m.Logits(ctx, prev)
		p := softmax(logits)
		loss += -math.Log(math.Max(p[next], 1e-12))
		steps++

		// dL/dlogits = p - onehot(next)
		p[next]--

		dh := make([]float64, m.cfg.HiddenDim)
		for j, dl := range p {
			if dl == 0 {
				continue
			}
			floats.AddScaled(g.w2.RawRowView(j), dl, hidden)
			g.b2[j] += dl
			floats.AddScaled(dh, dl, m.w2.RawRowView(j))
		}
		for i := range dh {
			dh[i] *= 1 - hidden[i]*hidden[i]
		}

		dx := make([]float64, 2*m.cfg.EmbedDim)
		for i, d := range dh {
			floats.AddScaled(g.w1.RawRowView(i), d, x)
			g.b1[i] += d
			floats.AddScaled(dx, d, m.w1.RawRowView(i))
		}
		floats.Add(g.emb.RawRowView(prev), dx[m.cfg.EmbedDim:])
		floats.Add(dctx, dx[:m.cfg.EmbedDim])
	}

	// spread the context gradient over the pooled input embeddings
	n := 0
	for i := range ex.InputIDs {
		if i < len(ex.AttentionMask) && ex.AttentionMask[i] == 0 {
			continue
		}
		n++
	}
	if n > 0 {
		floats.Scale(1/float64(n), dctx)
		for i, id := range ex.InputIDs {
			if i < len(ex.AttentionMask) && ex.AttentionMask[i] == 0 {
				continue
			}
			floats.Add(g.emb.RawRowView(id), dctx)
		}
	}
	return loss, steps
}

// apply takes one SGD step: param -= lr * grad / tokens.
func (m *Model) apply(g *grads, lr float64, tokens int) {
	if tokens == 0 {
		return
	}
	step := -lr / float64(tokens)
	addScaledDense(m.emb, step, g.emb)
	addScaledDense(m.w1, step, g.w1)
	addScaledDense(m.w2, step, g.w2)
	floats.AddScaled(m.b1, step, g.b1)
	floats.AddScaled(m.b2, step, g.b2)
}

func addScaledDense(dst *mat.Dense, alpha float64, src *mat.Dense) {
	floats.AddScaled(dst.RawMatrix().Data, alpha, src.RawMatrix().Data)
}
