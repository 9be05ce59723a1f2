package textnorm

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	reTimestamp    = regexp.MustCompile(`\d{1,2}:\d{2}\s*\(UTC[^)]+\)`)
	reMediaMarker  = regexp.MustCompile(`(?i)\(PHOTO(?:/VIDEO)?\)`)
	reSubscription = regexp.MustCompile(`(?s)Access to paid information is limited.*?Subscription to paid content`)
	reURL          = regexp.MustCompile(`https?://\S+`)
	reEntity       = regexp.MustCompile(`&[#A-Za-z0-9]+;`)
	reDotRun       = regexp.MustCompile(`\.{2,}`)
	reSpaces       = regexp.MustCompile(`\s+`)
	reWord         = regexp.MustCompile(`^[a-zA-Z]+(?:'[a-zA-Z]+)?$`)
	rePunct        = regexp.MustCompile(`^[.,!?;:'"()-]+$`)
	reSpacePunct   = regexp.MustCompile(`\s+([.,!?;:)])`)
)

// Clean strips noise that news feeds carry (timestamps, media markers,
// subscription walls, links, emojis, HTML entities) and reassembles the
// remainder as well-formed English text. Returns "" when nothing survives.
func Clean(text string) string {
	text = reTimestamp.ReplaceAllString(text, "")
	text = reMediaMarker.ReplaceAllString(text, "")
	text = reSubscription.ReplaceAllString(text, "")
	text = reURL.ReplaceAllString(text, "")
	text = stripEmoji(text)
	text = reEntity.ReplaceAllString(text, "")
	text = reDotRun.ReplaceAllString(text, ".")
	text = strings.TrimSpace(reSpaces.ReplaceAllString(text, " "))

	var kept []string
	for _, tok := range fieldsWithPunct(text) {
		if reWord.MatchString(tok) || rePunct.MatchString(tok) {
			kept = append(kept, tok)
		}
	}
	out := strings.Join(kept, " ")
	out = reSpacePunct.ReplaceAllString(out, "$1")
	return capitalizeSentences(out)
}

// fieldsWithPunct splits on whitespace but keeps trailing/leading
// punctuation as separate tokens so the word filter sees clean words.
func fieldsWithPunct(text string) []string {
	var out []string
	for _, f := range strings.Fields(text) {
		start := 0
		for start < len(f) && isPunctByte(f[start]) {
			start++
		}
		end := len(f)
		for end > start && isPunctByte(f[end-1]) {
			end--
		}
		if start > 0 {
			out = append(out, f[:start])
		}
		if end > start {
			out = append(out, f[start:end])
		}
		if end < len(f) {
			out = append(out, f[end:])
		}
	}
	return out
}

func isPunctByte(b byte) bool {
	switch b {
	case '.', ',', '!', '?', ';', ':', '"', '(', ')', '-':
		return true
	}
	return false
}

func stripEmoji(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 0x1F600 && r <= 0x1F64F, // emoticons
			r >= 0x1F300 && r <= 0x1F5FF, // symbols & pictographs
			r >= 0x1F680 && r <= 0x1F6FF, // transport & map symbols
			r >= 0x1F1E0 && r <= 0x1F1FF: // flags
			return -1
		}
		return r
	}, s)
}

func capitalizeSentences(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	upperNext := true
	for i, r := range runes {
		if upperNext && unicode.IsLetter(r) {
			runes[i] = unicode.ToUpper(r)
			upperNext = false
		}
		switch r {
		case '.', '!', '?':
			upperNext = true
		}
	}
	return string(runes)
}

// RemoveDiacritics decomposes and strips combining marks.
func RemoveDiacritics(s string) string {
	t := norm.NFD.String(s)
	return strings.Map(func(r rune) rune {
		if unicode.Is(unicode.Mn, r) {
			return -1
		}
		return r
	}, t)
}

// NormalizeTokens applies lowercase and diacritics removal, dropping
// tokens that end up empty.
func NormalizeTokens(tokens []string) []string {
	var out []string
	for _, t := range tokens {
		t = RemoveDiacritics(strings.ToLower(t))
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}
