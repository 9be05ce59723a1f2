package runstore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRunLifecycle(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.StartRun("run-1", "summarization"))

	r, err := s.GetRun("run-1")
	require.NoError(t, err)
	assert.Equal(t, StatusRunning, r.Status)
	assert.NotZero(t, r.StartedAt)

	require.NoError(t, s.FinishRun("run-1", StatusPassed, ""))
	r, err = s.GetRun("run-1")
	require.NoError(t, err)
	assert.Equal(t, StatusPassed, r.Status)
	assert.NotZero(t, r.FinishedAt)
}

func TestFailedRunKeepsError(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.StartRun("run-2", "categorization"))
	require.NoError(t, s.FinishRun("run-2", StatusFailed, "training diverged"))

	r, err := s.GetRun("run-2")
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, r.Status)
	assert.Equal(t, "training diverged", r.Error)
}

func TestMetricsUpsert(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.StartRun("run-3", "summarization"))
	require.NoError(t, s.RecordMetric("run-3", "rouge1", 0.31))
	require.NoError(t, s.RecordMetric("run-3", "rouge1", 0.33))
	require.NoError(t, s.RecordMetric("run-3", "rouge2", 0.12))

	m, err := s.Metrics("run-3")
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"rouge1": 0.33, "rouge2": 0.12}, m)
}

func TestRecordArtifact(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.StartRun("run-4", "summarization"))
	require.NoError(t, s.RecordArtifact("run-4", "checkpoint", "/tmp/ck.json"))
	require.NoError(t, s.RecordArtifact("run-4", "checkpoint", "/tmp/ck2.json"))
}

func TestGetRun_Missing(t *testing.T) {
	s := openTestStore(t)
	_, err := s.GetRun("nope")
	assert.Error(t, err)
}
