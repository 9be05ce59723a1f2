package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oarkflow/newsml/config"
	"github.com/oarkflow/newsml/seq2seq"
)

func writeLines(t *testing.T, path string, lines []string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Defaults()
	cfg.DataDir = filepath.Join(dir, "data")
	cfg.ArtifactDir = filepath.Join(dir, "artifacts")
	cfg.Summarizer.Epochs = 2
	cfg.Summarizer.BatchSize = 4
	cfg.Summarizer.MaxLength = 32
	cfg.Summarizer.MaxSummaryLength = 8
	cfg.Summarizer.VocabSize = 200
	cfg.Summarizer.EmbedDim = 8
	cfg.Summarizer.HiddenDim = 8
	cfg.Summarizer.HoldoutFraction = 0.2
	cfg.Categorizer.EmbeddingDim = 64
	cfg.Categorizer.MinClassSamples = 2
	return cfg
}

func TestSplitIndexes(t *testing.T) {
	train, held := splitIndexes(20, 0.2, 7)
	assert.Len(t, held, 4)
	assert.Len(t, train, 16)

	seen := make(map[int]bool)
	for _, i := range append(append([]int{}, train...), held...) {
		assert.False(t, seen[i], "index %d appears twice", i)
		seen[i] = true
	}
	assert.Len(t, seen, 20)

	train2, held2 := splitIndexes(20, 0.2, 7)
	assert.Equal(t, train, train2)
	assert.Equal(t, held, held2)
}

func TestSplitIndexesMinimumHoldout(t *testing.T) {
	train, held := splitIndexes(5, 0.1, 1)
	assert.Len(t, held, 1)
	assert.Len(t, train, 4)
}

func TestRunCategorizationEndToEnd(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.MkdirAll(cfg.DataDir, 0o755))

	sports := `{"text":"The home team clinched the championship after a dramatic overtime victory on Saturday evening","label":"Sports"}`
	business := `{"text":"Quarterly earnings beat analyst expectations as the retailer expanded into new overseas markets","label":"Business"}`
	var lines []string
	for i := 0; i < 12; i++ {
		lines = append(lines, sports, business)
	}
	dataPath := filepath.Join(cfg.DataDir, "categories.jsonl")
	writeLines(t, dataPath, lines)

	p := New(cfg, nil)
	report, err := p.RunCategorization(context.Background(), dataPath)
	require.NoError(t, err)

	assert.Equal(t, 1.0, report.Accuracy)
	assert.Equal(t, 4, report.Examples)
	assert.NotEmpty(t, report.PerClass)
	assert.NotEmpty(t, report.RunID)

	matches, err := filepath.Glob(filepath.Join(cfg.ArtifactDir, "classifier-*.json"))
	require.NoError(t, err)
	assert.Len(t, matches, 1)
	matches, err = filepath.Glob(filepath.Join(cfg.ArtifactDir, "classification-report-*.json"))
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestRunCategorizationMissingFile(t *testing.T) {
	cfg := testConfig(t)
	p := New(cfg, nil)
	_, err := p.RunCategorization(context.Background(), filepath.Join(cfg.DataDir, "nope.jsonl"))
	assert.Error(t, err)
}

func articleLines() []string {
	texts := []string{
		"The city council approved the new transit budget after weeks of public hearings and debate among residents",
		"Scientists announced a promising result in battery research that could extend the range of electric vehicles",
		"The national museum reopened its modern art wing with an exhibition of paintings from the last century",
		"Heavy rainfall across the region caused delays on major highways during the morning commute on Monday",
		"The local bakery celebrated fifty years in business with a street festival attended by hundreds of neighbors",
	}
	summaries := []string{
		"Council approves transit budget",
		"Battery research extends vehicle range",
		"Museum reopens modern art wing",
		"Rainfall delays morning commute",
		"Bakery celebrates fifty years",
	}
	var lines []string
	for round := 0; round < 2; round++ {
		for i := range texts {
			lines = append(lines, `{"text":"`+texts[i]+`","summary":"`+summaries[i]+`"}`)
		}
	}
	return lines
}

func TestRunSummarizationEndToEnd(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.MkdirAll(cfg.DataDir, 0o755))
	dataPath := filepath.Join(cfg.DataDir, "articles.jsonl")
	writeLines(t, dataPath, articleLines())

	p := New(cfg, nil)
	report, err := p.RunSummarization(context.Background(), dataPath, "")
	require.NoError(t, err)

	assert.Equal(t, 2, report.Examples)
	assert.NotEmpty(t, report.RunID)
	assert.GreaterOrEqual(t, report.Rouge1, 0.0)
	assert.LessOrEqual(t, report.Rouge1, 1.0)
	assert.GreaterOrEqual(t, report.RougeL, 0.0)
	assert.LessOrEqual(t, report.RougeL, 1.0)

	matches, err := filepath.Glob(filepath.Join(cfg.ArtifactDir, "summarizer-*.json"))
	require.NoError(t, err)
	assert.Len(t, matches, 1)
	matches, err = filepath.Glob(filepath.Join(cfg.ArtifactDir, "summary-report-*.json"))
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestPretrainProducesLoadableCheckpoint(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.MkdirAll(cfg.DataDir, 0o755))
	dataPath := filepath.Join(cfg.DataDir, "texts.jsonl")
	writeLines(t, dataPath, articleLines())

	p := New(cfg, nil)
	path, err := p.Pretrain(context.Background(), dataPath)
	require.NoError(t, err)
	require.FileExists(t, path)

	model, vocab, err := seq2seq.LoadCheckpoint(path)
	require.NoError(t, err)
	assert.NotNil(t, model)
	assert.Greater(t, vocab.Len(), 4)
}

func TestSummarizationCancelled(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.MkdirAll(cfg.DataDir, 0o755))
	dataPath := filepath.Join(cfg.DataDir, "articles.jsonl")
	writeLines(t, dataPath, articleLines())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := New(cfg, nil)
	_, err := p.RunSummarization(ctx, dataPath, "")
	require.Error(t, err)

	matches, globErr := filepath.Glob(filepath.Join(cfg.ArtifactDir, "summarizer-*.json"))
	require.NoError(t, globErr)
	assert.Empty(t, matches, "no checkpoint may exist after a cancelled run")
}