package rouge

import (
	"math"
	"testing"
)

func almost(t *testing.T, got, want float64, name string) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func TestScore_IdenticalText(t *testing.T) {
	s := Score("the cat sat on the mat", "the cat sat on the mat")
	almost(t, s.Rouge1, 1, "rouge1")
	almost(t, s.Rouge2, 1, "rouge2")
	almost(t, s.RougeL, 1, "rougeL")
}

func TestScore_NoOverlap(t *testing.T) {
	s := Score("alpha beta gamma", "delta epsilon zeta")
	almost(t, s.Rouge1, 0, "rouge1")
	almost(t, s.Rouge2, 0, "rouge2")
	almost(t, s.RougeL, 0, "rougeL")
}

func TestScore_HandComputedUnigrams(t *testing.T) {
	// candidate: [the, cat, sat] reference: [the, cat, ran, home]
	// overlap 2, precision 2/3, recall 2/4, F1 = 2*(2/3)*(1/2)/(2/3+1/2) = 4/7
	s := Score("the cat sat", "the cat ran home")
	almost(t, s.Rouge1, 4.0/7.0, "rouge1")
	// bigrams: cand {the cat, cat sat}, ref {the cat, cat ran, ran home};
	// overlap 1, p 1/2, r 1/3, F1 = 2*(1/6)/(5/6) = 2/5
	almost(t, s.Rouge2, 2.0/5.0, "rouge2")
	// LCS = [the, cat] length 2, p 2/3, r 1/2, F1 = 4/7
	almost(t, s.RougeL, 4.0/7.0, "rougeL")
}

func TestScore_RepeatedTokensClipped(t *testing.T) {
	// candidate repeats "the" three times but the reference has it once;
	// clipped overlap counts it once.
	s := Score("the the the", "the end")
	// p 1/3, r 1/2 -> F1 = 2*(1/6)/(5/6) = 2/5
	almost(t, s.Rouge1, 2.0/5.0, "rouge1")
}

func TestAverage(t *testing.T) {
	avg := Average([]Scores{
		{Rouge1: 1, Rouge2: 0.5, RougeL: 1},
		{Rouge1: 0, Rouge2: 0.5, RougeL: 0.5},
	})
	almost(t, avg.Rouge1, 0.5, "rouge1")
	almost(t, avg.Rouge2, 0.5, "rouge2")
	almost(t, avg.RougeL, 0.75, "rougeL")
}

func TestAverage_Empty(t *testing.T) {
	avg := Average(nil)
	almost(t, avg.Rouge1, 0, "rouge1")
}
