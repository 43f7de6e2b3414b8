package feed

import (
	"bytes"
	"cmp"
	"fmt"
	"strings"

	"github.com/mmcdole/gofeed"
)

type Metadata struct {
	Title string
	Link  string
}

type Parser struct {
	gofeedParser *gofeed.Parser
}

func NewParser() *Parser {
	return &Parser{
		gofeedParser: gofeed.NewParser(),
	}
}

func (p *Parser) Run(data []byte) (*Metadata, []Entry, error) {
	feed, err := p.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	metadata := &Metadata{
		Title: feed.Title,
		Link:  feed.Link,
	}

	entries := make([]Entry, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil {
			continue
		}
		entries = append(entries, p.normalizeItem(item))
	}

	return metadata, entries, nil
}

func (p *Parser) normalizeItem(item *gofeed.Item) Entry {
	entry := Entry{
		GUID:     cmp.Or(item.GUID, item.Link),
		Title:    strings.TrimSpace(item.Title),
		Link:     strings.TrimSpace(item.Link),
		Snippet:  htmlToText(cmp.Or(item.Description, item.Content)),
		ImageURL: p.extractImage(item),
	}

	if item.PublishedParsed != nil {
		entry.PublishedAt = item.PublishedParsed
	}

	return entry
}

// extractImage prefers media:content, then the first enclosure, then
// whatever image gofeed attached to the item.
func (p *Parser) extractImage(item *gofeed.Item) string {
	if media, ok := item.Extensions["media"]; ok {
		for _, content := range media["content"] {
			if url := content.Attrs["url"]; url != "" {
				return url
			}
		}
	}

	if len(item.Enclosures) > 0 && item.Enclosures[0] != nil && item.Enclosures[0].URL != "" {
		return item.Enclosures[0].URL
	}

	if item.Image != nil {
		return item.Image.URL
	}

	return ""
}
