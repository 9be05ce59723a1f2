package pipeline

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/oarkflow/newsml/corpus"
)

// Fetch pulls fresh articles from the configured feeds and news API
// (one date window per day, newest first) and appends them to the
// fetched dataset under the data directory. Returns how many articles
// were appended.
func (p *Pipeline) Fetch(ctx context.Context, apiKey string, days int) (int, error) {
	if days <= 0 {
		days = 1
	}
	fcfg := p.cfg.Fetch
	fetcher := corpus.NewFetcher(corpus.FetchConfig{
		APIBaseURL: fcfg.APIBaseURL,
		APIKey:     apiKey,
		Query:      fcfg.Query,
		Language:   fcfg.Language,
		PageSize:   fcfg.PageSize,
		Feeds:      fcfg.Feeds,
		RatePerSec: fcfg.RatePerSec,
	}, p.detector)

	articles, err := fetcher.FetchFeeds(ctx)
	if err != nil {
		return 0, err
	}
	for d := 0; d < days; d++ {
		date := time.Now().AddDate(0, 0, -d).Format("2006-01-02")
		batch, err := fetcher.FetchAPI(ctx, date)
		if err != nil {
			log.Printf("pipeline: fetch for %s: %v", date, err)
			continue
		}
		articles = append(articles, batch...)
	}

	if err := os.MkdirAll(p.cfg.DataDir, 0o755); err != nil {
		return 0, err
	}
	path := filepath.Join(p.cfg.DataDir, "fetched.jsonl")
	if err := corpus.AppendJSONL(path, articles); err != nil {
		return 0, err
	}
	log.Printf("pipeline: appended %d articles to %s", len(articles), path)
	return len(articles), nil
}
