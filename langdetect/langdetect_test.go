package langdetect

import "testing"

func TestIsEnglish_English(t *testing.T) {
	d := New(0.9)
	text := "The quick brown fox jumps over the lazy dog and then runs far away into the nearby woods before sunset."
	if !d.IsEnglish(text) {
		t.Error("expected English text to pass")
	}
}

func TestIsEnglish_Cyrillic(t *testing.T) {
	d := New(0.9)
	text := "Это новости о политике и экономике страны сегодня вечером, передает наш корреспондент из столицы."
	if d.IsEnglish(text) {
		t.Error("expected Cyrillic text to be rejected")
	}
}

func TestIsEnglish_Empty(t *testing.T) {
	d := New(0.9)
	if d.IsEnglish("   ") {
		t.Error("expected blank text to be rejected")
	}
}

func TestNew_BadThresholdFallsBack(t *testing.T) {
	d := New(-1)
	if d.threshold != DefaultThreshold {
		t.Errorf("threshold = %v, want %v", d.threshold, DefaultThreshold)
	}
}
