package embedding

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/floats"
)

func TestEmbed_Deterministic(t *testing.T) {
	h := NewHasher(128)
	a := h.Embed("The market closed higher on strong earnings.")
	b := h.Embed("The market closed higher on strong earnings.")
	if !floats.Equal(a, b) {
		t.Error("same text must embed to the same vector")
	}
}

func TestEmbed_UnitNorm(t *testing.T) {
	h := NewHasher(128)
	v := h.Embed("Parliament passed the budget late last night.")
	if math.Abs(floats.Norm(v, 2)-1) > 1e-9 {
		t.Errorf("norm = %v, want 1", floats.Norm(v, 2))
	}
}

func TestEmbed_EmptyTextZeroVector(t *testing.T) {
	h := NewHasher(64)
	v := h.Embed("   ")
	if floats.Norm(v, 2) != 0 {
		t.Error("empty text must embed to the zero vector")
	}
	if len(v) != 64 {
		t.Errorf("dim = %d, want 64", len(v))
	}
}

func TestEmbed_DistinctTextsDiffer(t *testing.T) {
	h := NewHasher(256)
	a := h.Embed("The striker scored twice in the second half.")
	b := h.Embed("The central bank raised interest rates again.")
	if floats.Equal(a, b) {
		t.Error("unrelated texts should not collide entirely")
	}
}

func TestNewHasher_DefaultDim(t *testing.T) {
	if NewHasher(0).Dim() != DefaultDim {
		t.Error("zero dim must fall back to the default")
	}
}

func TestEmbedAll_PreservesOrder(t *testing.T) {
	h := NewHasher(64)
	texts := []string{"first story", "second story"}
	all := h.EmbedAll(texts)
	if len(all) != 2 {
		t.Fatalf("len = %d", len(all))
	}
	if !floats.Equal(all[0], h.Embed("first story")) {
		t.Error("order not preserved")
	}
}
