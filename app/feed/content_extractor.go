package feed

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html/charset"
)

const (
	// A region must carry more text than this to count as the article body.
	MinContentLength = 200

	maxPageSize = 5 << 20
)

const (
	noiseSelector    = "script, style, nav, header, footer, aside, .advertisement, .ads, .social-share, .comments"
	fragmentSelector = "script, style, iframe, nav, header, footer, aside"
)

// Page is a fetched article page handed to extraction strategies.
type Page struct {
	Doc *goquery.Document
	Raw []byte
	URL *url.URL
}

// Strategy returns the HTML of the main content region, or false when it
// finds nothing usable.
type Strategy struct {
	Name    string
	Extract func(page *Page) (string, bool)
}

// DefaultStrategies are probed in order; the first success wins.
var DefaultStrategies = []Strategy{
	SelectorStrategy("article"),
	SelectorStrategy(`[class*="article-content"]`),
	SelectorStrategy(`[class*="post-content"]`),
	SelectorStrategy(`[class*="entry-content"]`),
	SelectorStrategy("main"),
	SelectorStrategy(".content"),
	SelectorStrategy("#content"),
	ReadabilityStrategy(),
}

type imageProbe struct {
	selector string
	attr     string
}

var imageProbes = []imageProbe{
	{`meta[property="og:image"]`, "content"},
	{`meta[name="twitter:image"]`, "content"},
	{"article img", "src"},
	{".featured-image img", "src"},
	{"img", "src"},
}

type ContentExtractor struct {
	httpClient *http.Client
	userAgent  string
	timeout    time.Duration
	strategies []Strategy
	policy     *bluemonday.Policy
}

func NewContentExtractor(httpClient *http.Client, userAgent string, timeout time.Duration) *ContentExtractor {
	return &ContentExtractor{
		httpClient: httpClient,
		userAgent:  userAgent,
		timeout:    timeout,
		strategies: DefaultStrategies,
		policy:     bluemonday.UGCPolicy(),
	}
}

// Run fetches pageURL and extracts its main content. It never fails: any
// fetch or parse problem is logged and an empty Extraction is returned.
func (e *ContentExtractor) Run(ctx context.Context, pageURL string) Extraction {
	extraction, err := e.extract(ctx, pageURL)
	if err != nil {
		slog.Warn("Failed to fetch content", "url", pageURL, "error", err)
		return Extraction{}
	}

	slog.Debug("Content extracted successfully",
		"url", pageURL,
		"content_length", len(extraction.Content),
		"image", extraction.ImageURL)

	return extraction
}

func (e *ContentExtractor) extract(ctx context.Context, pageURL string) (Extraction, error) {
	parsedURL, err := url.Parse(pageURL)
	if err != nil {
		return Extraction{}, fmt.Errorf("invalid URL: %w", err)
	}

	data, err := e.fetchPage(ctx, pageURL)
	if err != nil {
		return Extraction{}, err
	}

	return e.Parse(data, parsedURL)
}

func (e *ContentExtractor) fetchPage(ctx context.Context, pageURL string) ([]byte, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", e.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	body, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, fmt.Errorf("failed to decode response body: %w", err)
	}

	data, err := io.ReadAll(io.LimitReader(body, maxPageSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}

// Parse extracts the main content and a representative image from an HTML
// page. pageURL may be nil.
func (e *ContentExtractor) Parse(data []byte, pageURL *url.URL) (Extraction, error) {
	if len(data) == 0 {
		return Extraction{}, fmt.Errorf("HTML data is empty")
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return Extraction{}, fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find(noiseSelector).Remove()

	page := &Page{Doc: doc, Raw: data, URL: pageURL}

	content := ""
	for _, strategy := range e.strategies {
		if html, ok := strategy.Extract(page); ok {
			slog.Debug("Content region selected", "strategy", strategy.Name)
			content = html
			break
		}
	}

	if content == "" {
		content, _ = doc.Find("body").Html()
	}

	cleaned, text, err := e.cleanFragment(content)
	if err != nil {
		return Extraction{}, err
	}

	return Extraction{
		Content:  cleaned,
		Text:     text,
		ImageURL: findImage(doc),
	}, nil
}

func (e *ContentExtractor) cleanFragment(content string) (string, string, error) {
	fragment, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return "", "", fmt.Errorf("failed to parse content fragment: %w", err)
	}

	fragment.Find(fragmentSelector).Remove()

	body := fragment.Find("body")
	html, err := body.Html()
	if err != nil {
		return "", "", fmt.Errorf("failed to render content fragment: %w", err)
	}

	return strings.TrimSpace(e.policy.Sanitize(html)), normalizeSpace(body.Text()), nil
}

func findImage(doc *goquery.Document) string {
	for _, probe := range imageProbes {
		src, ok := doc.Find(probe.selector).First().Attr(probe.attr)
		if !ok {
			continue
		}
		if usableImage(src) {
			return src
		}
	}
	return ""
}

func usableImage(src string) bool {
	return src != "" &&
		strings.HasPrefix(src, "http") &&
		!strings.Contains(src, "avatar") &&
		!strings.Contains(src, "logo")
}

func SelectorStrategy(selector string) Strategy {
	return Strategy{
		Name: selector,
		Extract: func(page *Page) (string, bool) {
			selection := page.Doc.Find(selector).First()
			if selection.Length() == 0 {
				return "", false
			}
			if utf8.RuneCountInString(selection.Text()) <= MinContentLength {
				return "", false
			}
			html, err := selection.Html()
			if err != nil || html == "" {
				return "", false
			}
			return html, true
		},
	}
}

// ReadabilityStrategy runs the readability algorithm on the raw page. It is
// only used when no selector matched.
func ReadabilityStrategy() Strategy {
	return Strategy{
		Name: "readability",
		Extract: func(page *Page) (string, bool) {
			if page.URL == nil || len(page.Raw) == 0 {
				return "", false
			}
			article, err := readability.FromReader(bytes.NewReader(page.Raw), page.URL)
			if err != nil {
				return "", false
			}
			if utf8.RuneCountInString(strings.TrimSpace(article.TextContent)) <= MinContentLength {
				return "", false
			}
			return article.Content, true
		},
	}
}

func htmlToText(fragment string) string {
	if fragment == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return normalizeSpace(fragment)
	}
	return normalizeSpace(doc.Text())
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
