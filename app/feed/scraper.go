package feed

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/ThedeveloperBilal1/DevelopersmatrixWebApp/app/ai"
)

const maxFeedSize = 10 << 20

// NewHTTPClient returns the client shared by feed and page fetches. It has
// no overall timeout: every request carries its own deadline, so a source
// may allow more time than the default.
func NewHTTPClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			MaxIdleConnsPerHost:   4,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: time.Second,
		},
	}
}

type Extractor interface {
	Run(ctx context.Context, pageURL string) Extraction
}

type ScraperOptions struct {
	UserAgent string
	Timeout   time.Duration // per feed fetch, unless the source overrides it
	Delay     time.Duration // pause between entries
	MaxItems  int           // entries per feed, unless the source overrides it
}

// Scraper pulls the configured feeds and turns their newest entries into
// articles. Sources and entries are processed one at a time.
type Scraper struct {
	httpClient *http.Client
	parser     *Parser
	extractor  Extractor
	summarizer ai.Summarizer
	opts       ScraperOptions
	now        func() time.Time
}

func NewScraper(httpClient *http.Client, parser *Parser, extractor Extractor, summarizer ai.Summarizer, opts ScraperOptions) *Scraper {
	if summarizer == nil {
		summarizer = ai.Fallback{}
	}
	return &Scraper{
		httpClient: httpClient,
		parser:     parser,
		extractor:  extractor,
		summarizer: summarizer,
		opts:       opts,
		now:        time.Now,
	}
}

// Run scrapes every source in order. A source that cannot be fetched or
// parsed is logged and skipped. Cancelling ctx stops the run and returns
// the articles produced so far.
func (s *Scraper) Run(ctx context.Context, sources []*Config) []Article {
	var articles []Article
	processed := 0

	for _, source := range sources {
		if ctx.Err() != nil {
			break
		}

		metadata, entries, err := s.fetchEntries(ctx, source)
		if err != nil {
			slog.Error("Failed to scrape feed", "feed", source.Name, "url", source.URL, "error", err)
			continue
		}

		sourceCount := 0
		for _, entry := range entries {
			if entry.Title == "" || entry.Link == "" {
				continue
			}

			if processed > 0 && !s.pause(ctx) {
				break
			}

			articles = append(articles, s.buildArticle(ctx, source, entry))
			processed++
			sourceCount++
		}

		slog.Info("Feed scraped", "feed", source.Name, "title", metadata.Title, "entries", len(entries), "articles", sourceCount)
	}

	return articles
}

func (s *Scraper) fetchEntries(ctx context.Context, source *Config) (*Metadata, []Entry, error) {
	timeout := s.opts.Timeout
	if source.Settings.Timeout > 0 {
		timeout = time.Duration(source.Settings.Timeout) * time.Second
	}

	slog.Debug("Fetching feed", "feed", source.Name, "url", source.URL)

	data, err := s.fetchFeed(ctx, source.URL, timeout)
	if err != nil {
		return nil, nil, err
	}

	metadata, entries, err := s.parser.Run(data)
	if err != nil {
		return nil, nil, err
	}

	limit := cmp.Or(source.Settings.MaxItems, s.opts.MaxItems)
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}

	return metadata, entries, nil
}

func (s *Scraper) fetchFeed(ctx context.Context, url string, timeout time.Duration) ([]byte, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", s.opts.UserAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}

func (s *Scraper) buildArticle(ctx context.Context, source *Config, entry Entry) Article {
	extraction := s.extractor.Run(ctx, entry.Link)

	imageURL := cmp.Or(entry.ImageURL, extraction.ImageURL)

	text := entry.Snippet
	content := entry.Snippet
	if !extraction.Empty() {
		text = extraction.Text
		content = extraction.Content
	}

	summary := s.summarizer.Summarize(ctx, entry.Title, text)

	publishedAt := s.now()
	if entry.PublishedAt != nil {
		publishedAt = *entry.PublishedAt
	}

	return Article{
		Title:       entry.Title,
		Excerpt:     summary.Excerpt,
		Summary:     summary.Summary,
		Content:     content,
		ImageURL:    imageURL,
		SourceURL:   entry.Link,
		SourceName:  source.Name,
		Category:    Categorize(entry.Title, text),
		PublishedAt: publishedAt,
	}
}

func (s *Scraper) pause(ctx context.Context) bool {
	if s.opts.Delay <= 0 {
		return ctx.Err() == nil
	}

	timer := time.NewTimer(s.opts.Delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
