package corpus

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/oarkflow/json"

	"github.com/oarkflow/newsml/langdetect"
	"github.com/oarkflow/newsml/textnorm"
)

// Stats counts what a load kept and what it dropped, per reason.
type Stats struct {
	Loaded           int
	Malformed        int
	FilteredEmpty    int
	FilteredLabel    int
	FilteredLanguage int
}

func (s Stats) total() int {
	return s.Loaded + s.Malformed + s.FilteredEmpty + s.FilteredLabel + s.FilteredLanguage
}

// Loader reads raw datasets and emits cleaned, language-gated records.
// Behavior is fixed at construction; nothing is process-global.
type Loader struct {
	detector    *langdetect.Detector
	maxSkipRate float64
}

func NewLoader(detector *langdetect.Detector, maxSkipRate float64) *Loader {
	return &Loader{detector: detector, maxSkipRate: maxSkipRate}
}

// LoadArticles reads (article, highlights) pairs from a CSV file with an
// "article,highlights" header, or from JSONL when the path ends in
// ".jsonl". Malformed records are skipped and counted.
func (l *Loader) LoadArticles(path string) ([]Article, Stats, error) {
	if strings.HasSuffix(path, ".jsonl") {
		return l.loadArticlesJSONL(path)
	}
	return l.loadArticlesCSV(path)
}

func (l *Loader) loadArticlesCSV(path string) ([]Article, Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("corpus: open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if err != nil {
		return nil, Stats{}, &DataFormatError{Path: path, Line: 1, Reason: "missing header"}
	}
	textCol, sumCol := columnIndexes(header, "article", "highlights")
	if textCol < 0 || sumCol < 0 {
		return nil, Stats{}, &DataFormatError{Path: path, Line: 1, Reason: "header lacks article/highlights columns"}
	}

	var out []Article
	var stats Stats
	line := 1
	for {
		line++
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			stats.Malformed++
			log.Printf("corpus: skipping %s line %d: %v", path, line, err)
			continue
		}
		if len(row) <= textCol || len(row) <= sumCol {
			stats.Malformed++
			continue
		}
		l.acceptArticle(row[textCol], row[sumCol], &out, &stats)
	}
	return out, stats, l.checkSkipRate(path, stats)
}

func (l *Loader) loadArticlesJSONL(path string) ([]Article, Stats, error) {
	var out []Article
	var stats Stats
	err := l.eachLine(path, func(line int, data []byte) {
		var rec Article
		if err := json.Unmarshal(data, &rec); err != nil {
			stats.Malformed++
			log.Printf("corpus: skipping %s line %d: %v", path, line, err)
			return
		}
		l.acceptArticle(rec.RawText, rec.ReferenceSummary, &out, &stats)
	})
	if err != nil {
		return nil, stats, err
	}
	return out, stats, l.checkSkipRate(path, stats)
}

func (l *Loader) acceptArticle(text, summary string, out *[]Article, stats *Stats) {
	text = textnorm.Clean(text)
	summary = textnorm.Clean(summary)
	if text == "" || summary == "" {
		stats.FilteredEmpty++
		return
	}
	if !l.detector.IsEnglish(text) {
		stats.FilteredLanguage++
		return
	}
	stats.Loaded++
	*out = append(*out, Article{RawText: text, ReferenceSummary: summary})
}

// LoadCategories reads (label, text) records from JSONL
// ({"text":..., "label":...}) or CSV (label,text header optional).
// Records outside the 7-category label space are filtered, never loaded.
func (l *Loader) LoadCategories(path string) ([]CategoryRecord, Stats, error) {
	if strings.HasSuffix(path, ".jsonl") {
		return l.loadCategoriesJSONL(path)
	}
	return l.loadCategoriesCSV(path)
}

func (l *Loader) loadCategoriesJSONL(path string) ([]CategoryRecord, Stats, error) {
	var out []CategoryRecord
	var stats Stats
	err := l.eachLine(path, func(line int, data []byte) {
		var rec CategoryRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			stats.Malformed++
			log.Printf("corpus: skipping %s line %d: %v", path, line, err)
			return
		}
		l.acceptCategory(rec.RawText, rec.Label, &out, &stats)
	})
	if err != nil {
		return nil, stats, err
	}
	return out, stats, l.checkSkipRate(path, stats)
}

func (l *Loader) loadCategoriesCSV(path string) ([]CategoryRecord, Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("corpus: open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	var out []CategoryRecord
	var stats Stats
	line := 0
	for {
		line++
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			stats.Malformed++
			log.Printf("corpus: skipping %s line %d: %v", path, line, err)
			continue
		}
		if line == 1 && strings.EqualFold(strings.TrimSpace(row[0]), "label") {
			continue
		}
		if len(row) < 2 {
			stats.Malformed++
			continue
		}
		l.acceptCategory(strings.Join(row[1:], " "), row[0], &out, &stats)
	}
	return out, stats, l.checkSkipRate(path, stats)
}

func (l *Loader) acceptCategory(text, label string, out *[]CategoryRecord, stats *Stats) {
	canon, ok := CanonicalLabel(label)
	if !ok {
		stats.FilteredLabel++
		return
	}
	text = textnorm.Clean(text)
	if text == "" {
		stats.FilteredEmpty++
		return
	}
	if !l.detector.IsEnglish(text) {
		stats.FilteredLanguage++
		return
	}
	stats.Loaded++
	*out = append(*out, CategoryRecord{RawText: text, Label: canon})
}

// LoadTexts reads bare article texts from a JSONL file, accepting both
// dataset pair records and fetched-article records (anything with a
// "text" field). Used by pretraining, which needs no summaries.
func (l *Loader) LoadTexts(path string) ([]string, Stats, error) {
	var out []string
	var stats Stats
	err := l.eachLine(path, func(line int, data []byte) {
		var rec struct {
			Text string `json:"text"`
		}
		if err := json.Unmarshal(data, &rec); err != nil {
			stats.Malformed++
			log.Printf("corpus: skipping %s line %d: %v", path, line, err)
			return
		}
		text := textnorm.Clean(rec.Text)
		if text == "" {
			stats.FilteredEmpty++
			return
		}
		if !l.detector.IsEnglish(text) {
			stats.FilteredLanguage++
			return
		}
		stats.Loaded++
		out = append(out, text)
	})
	if err != nil {
		return nil, stats, err
	}
	return out, stats, l.checkSkipRate(path, stats)
}

func (l *Loader) eachLine(path string, fn func(line int, data []byte)) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("corpus: open %s: %w", path, err)
	}
	defer f.Close()

	scan := bufio.NewScanner(f)
	scan.Buffer(make([]byte, 0, 1<<20), 1<<24)
	line := 0
	for scan.Scan() {
		line++
		data := strings.TrimSpace(scan.Text())
		if data == "" {
			continue
		}
		fn(line, []byte(data))
	}
	if err := scan.Err(); err != nil {
		return &DataFormatError{Path: path, Line: line, Reason: err.Error()}
	}
	return nil
}

// checkSkipRate fails the whole load when malformed records exceed the
// configured share of the file.
func (l *Loader) checkSkipRate(path string, stats Stats) error {
	total := stats.total()
	if total == 0 || stats.Malformed == 0 {
		return nil
	}
	rate := float64(stats.Malformed) / float64(total)
	if rate > l.maxSkipRate {
		return &DataFormatError{
			Path:   path,
			Reason: fmt.Sprintf("malformed rate %.2f exceeds limit %.2f (%d of %d records)", rate, l.maxSkipRate, stats.Malformed, total),
		}
	}
	return nil
}

func columnIndexes(header []string, a, b string) (int, int) {
	ai, bi := -1, -1
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case a:
			ai = i
		case b:
			bi = i
		}
	}
	return ai, bi
}
