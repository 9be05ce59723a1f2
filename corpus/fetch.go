package corpus

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/oarkflow/json"
	"golang.org/x/time/rate"

	"github.com/oarkflow/newsml/langdetect"
	"github.com/oarkflow/newsml/textnorm"
)

// FetchConfig drives a corpus acquisition pass.
type FetchConfig struct {
	APIBaseURL string
	APIKey     string
	Query      string
	Language   string
	PageSize   int
	Feeds      []string
	RatePerSec float64
}

// Fetcher pulls fresh articles from a news HTTP API and RSS feeds,
// cleans and deduplicates them, and appends them to a JSONL dataset.
type Fetcher struct {
	cfg      FetchConfig
	client   *http.Client
	parser   *gofeed.Parser
	limiter  *rate.Limiter
	detector *langdetect.Detector

	seenTitles map[string]struct{}
	seenTexts  map[string]struct{}
}

func NewFetcher(cfg FetchConfig, detector *langdetect.Detector) *Fetcher {
	if cfg.PageSize <= 0 {
		cfg.PageSize = 30
	}
	if cfg.RatePerSec <= 0 {
		cfg.RatePerSec = 1
	}
	return &Fetcher{
		cfg:        cfg,
		client:     &http.Client{Timeout: 30 * time.Second},
		parser:     gofeed.NewParser(),
		limiter:    rate.NewLimiter(rate.Limit(cfg.RatePerSec), 1),
		detector:   detector,
		seenTitles: make(map[string]struct{}),
		seenTexts:  make(map[string]struct{}),
	}
}

type apiResponse struct {
	Articles []struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		URL         string `json:"url"`
	} `json:"articles"`
}

// FetchAPI pulls one date window of top articles from the configured
// news API.
func (f *Fetcher) FetchAPI(ctx context.Context, date string) ([]FetchedArticle, error) {
	if f.cfg.APIBaseURL == "" {
		return nil, nil
	}
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	q := url.Values{}
	q.Set("q", f.cfg.Query)
	q.Set("language", f.cfg.Language)
	q.Set("from", date)
	q.Set("sortBy", "popular")
	q.Set("pageSize", strconv.Itoa(f.cfg.PageSize))
	q.Set("apiKey", f.cfg.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.cfg.APIBaseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("corpus: fetch news api: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("corpus: news api returned %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("corpus: read news api response: %w", err)
	}
	var body apiResponse
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, &DataFormatError{Path: f.cfg.APIBaseURL, Reason: err.Error()}
	}

	var out []FetchedArticle
	for _, a := range body.Articles {
		f.accept(a.Title, a.Description, a.URL, date, &out)
	}
	log.Printf("corpus: api %s date=%s kept %d of %d", f.cfg.APIBaseURL, date, len(out), len(body.Articles))
	return out, nil
}

// FetchFeeds pulls every configured RSS feed. A failing feed is logged
// and skipped; the pass continues with the rest.
func (f *Fetcher) FetchFeeds(ctx context.Context) ([]FetchedArticle, error) {
	var out []FetchedArticle
	date := time.Now().Format("2006-01-02")
	for _, feedURL := range f.cfg.Feeds {
		if err := f.limiter.Wait(ctx); err != nil {
			return out, err
		}
		feed, err := f.parser.ParseURLWithContext(feedURL, ctx)
		if err != nil {
			log.Printf("corpus: feed %s: %v", feedURL, err)
			continue
		}
		before := len(out)
		for _, item := range feed.Items {
			text := item.Description
			if text == "" {
				text = item.Content
			}
			f.accept(item.Title, text, item.Link, date, &out)
		}
		log.Printf("corpus: feed %s kept %d of %d", feedURL, len(out)-before, len(feed.Items))
	}
	return out, nil
}

// accept cleans, dedupes, and language-gates one candidate article. An
// article is redundant only when both its title and cleaned text repeat.
func (f *Fetcher) accept(title, text, link, date string, out *[]FetchedArticle) {
	title = strings.TrimSpace(title)
	cleaned := textnorm.Clean(text)
	if title == "" || cleaned == "" {
		return
	}
	titleKey := strings.ToLower(title)
	textKey := strings.ToLower(cleaned)
	_, t1 := f.seenTitles[titleKey]
	_, t2 := f.seenTexts[textKey]
	if t1 && t2 {
		return
	}
	f.seenTitles[titleKey] = struct{}{}
	f.seenTexts[textKey] = struct{}{}
	if !f.detector.IsEnglish(cleaned) {
		return
	}
	*out = append(*out, FetchedArticle{Date: date, Title: title, Text: cleaned, URL: link})
}

// AppendJSONL appends fetched articles to a JSONL dataset file.
func AppendJSONL(path string, articles []FetchedArticle) error {
	if len(articles) == 0 {
		return nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("corpus: open %s: %w", path, err)
	}
	defer f.Close()
	for _, a := range articles {
		data, err := json.Marshal(a)
		if err != nil {
			return fmt.Errorf("corpus: marshal article: %w", err)
		}
		if _, err := f.Write(append(data, '\n')); err != nil {
			return fmt.Errorf("corpus: write %s: %w", path, err)
		}
	}
	return nil
}
