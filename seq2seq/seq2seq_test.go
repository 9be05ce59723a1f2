package seq2seq

import (
	"context"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oarkflow/newsml/corpus"
	"github.com/oarkflow/newsml/tokenizer"
)

func testVocab(t *testing.T, texts ...string) *tokenizer.Vocab {
	t.Helper()
	return tokenizer.Build(texts, 0)
}

func testModel(v *tokenizer.Vocab) *Model {
	return NewModel(ModelConfig{VocabSize: v.Len(), EmbedDim: 8, HiddenDim: 12}, 7)
}

func buildExamples(t *testing.T, v *tokenizer.Vocab, pairs [][2]string, maxLen, maxTarget int) []tokenizer.Example {
	t.Helper()
	prep := tokenizer.NewPreprocessor(v, maxLen, maxTarget)
	var out []tokenizer.Example
	for _, p := range pairs {
		ex, ok := prep.Pair(p[0], p[1])
		require.True(t, ok)
		out = append(out, ex)
	}
	return out
}

func TestTrain_LossDecreasesOnTinyCorpus(t *testing.T) {
	v := testVocab(t, "the cat sat on the mat", "the cat sat")
	m := testModel(v)
	examples := buildExamples(t, v, [][2]string{
		{"the cat sat on the mat", "the cat sat"},
		{"the cat sat on the mat", "the cat sat"},
	}, 16, 8)

	first, err := NewTrainer(m, TrainConfig{Epochs: 1, BatchSize: 2, LearningRate: 0.1}).Train(context.Background(), examples)
	require.NoError(t, err)
	after, err := NewTrainer(m, TrainConfig{Epochs: 20, BatchSize: 2, LearningRate: 0.1}).Train(context.Background(), examples)
	require.NoError(t, err)
	assert.Less(t, after, first, "loss should fall when overfitting one example")
}

func TestTrain_DivergenceHalts(t *testing.T) {
	v := testVocab(t, "the cat sat")
	m := testModel(v)
	m.b2[0] = math.NaN()
	examples := buildExamples(t, v, [][2]string{{"the cat sat", "the cat"}}, 8, 8)

	_, err := NewTrainer(m, TrainConfig{Epochs: 1}).Train(context.Background(), examples)
	var diverged *TrainingDivergedError
	require.ErrorAs(t, err, &diverged)
	assert.Equal(t, 1, diverged.Epoch)
}

func TestTrain_ContextCancellation(t *testing.T) {
	v := testVocab(t, "the cat sat")
	m := testModel(v)
	examples := buildExamples(t, v, [][2]string{{"the cat sat", "the cat"}}, 8, 8)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewTrainer(m, TrainConfig{Epochs: 5}).Train(ctx, examples)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTrain_EmptyInputIsNoop(t *testing.T) {
	v := testVocab(t, "the cat")
	m := testModel(v)
	loss, err := NewTrainer(m, TrainConfig{}).Train(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, loss)
}

func TestCheckpoint_RoundTripIdenticalLogits(t *testing.T) {
	v := testVocab(t, "the cat sat on the mat")
	m := testModel(v)
	path := filepath.Join(t.TempDir(), "checkpoint.json")
	require.NoError(t, SaveCheckpoint(path, "run-1", m, v))

	loaded, loadedVocab, err := LoadCheckpoint(path)
	require.NoError(t, err)
	assert.Equal(t, v.Tokens(), loadedVocab.Tokens())

	prep := tokenizer.NewPreprocessor(v, 16, 8)
	ids, mask, ok := prep.Input("the cat sat on the mat")
	require.True(t, ok)

	ctxVec := m.Encode(ids, mask)
	wantLogits, _, _ := m.Logits(ctxVec, tokenizer.BosID)
	gotLogits, _, _ := loaded.Logits(loaded.Encode(ids, mask), tokenizer.BosID)
	assert.Equal(t, wantLogits, gotLogits, "reloaded model must produce bit-identical logits")
}

func TestCheckpoint_VocabModelMismatch(t *testing.T) {
	small := testVocab(t, "the cat")
	big := testVocab(t, "the cat sat on a mat")
	m := testModel(big)
	err := SaveCheckpoint(filepath.Join(t.TempDir(), "x.json"), "run-1", m, small)
	assert.Error(t, err)
}

func TestGenerate_Deterministic(t *testing.T) {
	v := testVocab(t, "the cat sat on the mat")
	m := testModel(v)
	prep := tokenizer.NewPreprocessor(v, 16, 8)
	ids, mask, ok := prep.Input("the cat sat")
	require.True(t, ok)

	a := m.Generate(ids, mask, 10)
	b := m.Generate(ids, mask, 10)
	assert.Equal(t, a, b)
	assert.LessOrEqual(t, len(a), 10)
}

// echoGen echoes the first n real input tokens as the "summary".
type echoGen struct{ n int }

func (g echoGen) Generate(inputIDs, mask []int, maxLen int) []int {
	var out []int
	for i, id := range inputIDs {
		if mask[i] == 0 || id == tokenizer.BosID || id == tokenizer.EosID {
			continue
		}
		out = append(out, id)
		if len(out) == g.n {
			break
		}
	}
	return out
}

func TestEvaluator_EchoStubMatchesHandComputedRouge(t *testing.T) {
	v := testVocab(t, "the cat sat on the mat", "dogs bark loudly at night", "cats sleep")
	heldOut := []corpus.Article{
		{RawText: "the cat sat on the mat", ReferenceSummary: "the cat sat"},
		{RawText: "dogs bark loudly at night", ReferenceSummary: "cats sleep"},
	}

	prep := tokenizer.NewPreprocessor(v, 16, 8)
	ev := NewEvaluator(echoGen{n: 3}, v, prep, 8)
	report, err := ev.Evaluate(context.Background(), heldOut)
	require.NoError(t, err)

	// Article 1 echoes "the cat sat" against reference "the cat sat":
	// ROUGE-1 = 1. Article 2 echoes "dogs bark loudly" against
	// "cats sleep": ROUGE-1 = 0. Average = 0.5.
	assert.Equal(t, 2, report.Examples)
	assert.InDelta(t, 0.5, report.Rouge1, 1e-9)
	assert.InDelta(t, 0.5, report.RougeL, 1e-9)
}

func TestEvaluator_Idempotent(t *testing.T) {
	v := testVocab(t, "the cat sat on the mat")
	m := testModel(v)
	heldOut := []corpus.Article{
		{RawText: "the cat sat on the mat", ReferenceSummary: "the cat sat"},
	}

	r1, err := NewEvaluator(m, v, tokenizer.NewPreprocessor(v, 16, 8), 8).Evaluate(context.Background(), heldOut)
	require.NoError(t, err)
	r2, err := NewEvaluator(m, v, tokenizer.NewPreprocessor(v, 16, 8), 8).Evaluate(context.Background(), heldOut)
	require.NoError(t, err)
	assert.Equal(t, r1, r2, "same checkpoint and held-out set must yield identical metrics")
}
