package langdetect

import (
	"regexp"
	"strings"

	"github.com/endeveit/guesslanguage"
)

var reASCIIWord = regexp.MustCompile(`\b[a-zA-Z]+\b`)

// DefaultThreshold is the minimum ratio of plain-ASCII words for a text
// to count as English when the trigram guesser is inconclusive.
const DefaultThreshold = 0.9

// Detector gates records on language. Zero value is not usable; use New.
type Detector struct {
	threshold float64
}

func New(threshold float64) *Detector {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultThreshold
	}
	return &Detector{threshold: threshold}
}

// IsEnglish reports whether text is English. The trigram guesser decides
// when it recognizes the text; otherwise the ASCII-word ratio does.
func (d *Detector) IsEnglish(text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}
	if lang, err := guesslanguage.Guess(text); err == nil && lang != "" && lang != "UNKNOWN" {
		return lang == "en"
	}
	return d.asciiRatio(text) >= d.threshold
}

func (d *Detector) asciiRatio(text string) float64 {
	words := strings.Fields(text)
	if len(words) == 0 {
		return 0
	}
	ascii := reASCIIWord.FindAllString(text, -1)
	return float64(len(ascii)) / float64(len(words))
}
