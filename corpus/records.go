package corpus

import "strings"

// Article is a raw (text, reference summary) pair. Immutable once loaded.
type Article struct {
	RawText          string `json:"text"`
	ReferenceSummary string `json:"summary"`
}

// CategoryRecord is a labeled text for the categorization task.
type CategoryRecord struct {
	RawText string `json:"text"`
	Label   string `json:"label"`
}

// FetchedArticle is an article pulled by the acquisition tool before it
// is turned into dataset records.
type FetchedArticle struct {
	Date  string `json:"date"`
	Title string `json:"title"`
	Text  string `json:"text"`
	URL   string `json:"url"`
}

// The fixed label space. Records with any other label never leave the
// loader.
var categories = []string{
	"World", "Politics", "Business", "Sci/Tech", "Sports", "Entertainment", "Others",
}

var labelAliases = map[string]string{
	"world":         "World",
	"politics":      "Politics",
	"business":      "Business",
	"sci/tech":      "Sci/Tech",
	"science":       "Sci/Tech",
	"tech":          "Sci/Tech",
	"technology":    "Sci/Tech",
	"sports":        "Sports",
	"sport":         "Sports",
	"entertainment": "Entertainment",
	"others":        "Others",
	"other":         "Others",
}

// Categories returns the 7-label space in fixed order.
func Categories() []string {
	out := make([]string, len(categories))
	copy(out, categories)
	return out
}

// CanonicalLabel maps dataset-specific label spellings onto the fixed
// label space. ok is false for labels outside it.
func CanonicalLabel(raw string) (string, bool) {
	c, ok := labelAliases[strings.ToLower(strings.TrimSpace(raw))]
	return c, ok
}
