package metrics

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestAccuracy(t *testing.T) {
	pred := []string{"Sports", "World", "World", "Business"}
	act := []string{"Sports", "World", "Business", "Business"}
	if got := Accuracy(pred, act); got != 0.75 {
		t.Errorf("Accuracy = %v, want 0.75", got)
	}
}

func TestAccuracy_LengthMismatch(t *testing.T) {
	if got := Accuracy([]string{"a"}, []string{"a", "b"}); got != 0 {
		t.Errorf("Accuracy = %v, want 0", got)
	}
}

func TestMacroF1_HandComputed(t *testing.T) {
	labels := []string{"A", "B"}
	pred := []string{"A", "A", "B", "B"}
	act := []string{"A", "B", "B", "B"}
	// A: tp=1 fp=1 fn=0 -> F1 = 2/(2+1) = 2/3
	// B: tp=2 fp=0 fn=1 -> F1 = 4/(4+1) = 4/5
	macro, perClass := MacroF1(pred, act, labels)
	want := (2.0/3.0 + 4.0/5.0) / 2
	if math.Abs(macro-want) > 1e-9 {
		t.Errorf("MacroF1 = %v, want %v", macro, want)
	}
	if math.Abs(perClass["A"]-2.0/3.0) > 1e-9 {
		t.Errorf("perClass[A] = %v", perClass["A"])
	}
}

func TestMacroF1_AbsentClassScoresZero(t *testing.T) {
	labels := []string{"A", "B", "C"}
	pred := []string{"A", "A"}
	act := []string{"A", "A"}
	macro, perClass := MacroF1(pred, act, labels)
	if perClass["C"] != 0 {
		t.Errorf("perClass[C] = %v, want 0", perClass["C"])
	}
	if math.Abs(macro-1.0/3.0) > 1e-9 {
		t.Errorf("MacroF1 = %v, want 1/3", macro)
	}
}

func TestWriteJSON_Atomic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	report := SummaryReport{RunID: "r1", Examples: 2, Rouge1: 0.5}
	if err := WriteJSON(path, report); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("report not written: %v", err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temp file left behind")
	}
}
