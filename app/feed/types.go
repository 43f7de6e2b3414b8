package feed

import (
	"time"
)

// Feed processing types

type Category string

const (
	CategoryAI       Category = "ai"
	CategoryCoding   Category = "coding"
	CategoryGaming   Category = "gaming"
	CategoryGadgets  Category = "gadgets"
	CategorySoftware Category = "software"
	CategoryGeneral  Category = "general"
)

// Entry is a normalized feed item, before any page fetching.
type Entry struct {
	GUID        string
	Title       string
	Link        string
	Snippet     string // plain text from description/content
	ImageURL    string // media:content, enclosure or item image
	PublishedAt *time.Time
}

// Article is produced by a scrape run and is not yet persisted.
type Article struct {
	Title       string
	Excerpt     string
	Summary     string
	Content     string
	ImageURL    string
	SourceURL   string
	SourceName  string
	Category    Category
	PublishedAt time.Time
}

// Extraction is the outcome of fetching an article page. The zero value
// means nothing could be extracted.
type Extraction struct {
	Content  string // cleaned HTML of the main region
	Text     string // plain text of Content
	ImageURL string
}

func (e Extraction) Empty() bool {
	return e.Content == "" && e.Text == ""
}

// Configuration types

type Config struct {
	Name     string         `yaml:"name"`
	URL      string         `yaml:"url"`
	Priority int            `yaml:"priority"`
	Settings ConfigSettings `yaml:"settings"`
	// Key is derived from the filename (without .yml extension)
	Key string `yaml:"-"`
}

type ConfigSettings struct {
	Enabled  *bool `yaml:"enabled"`
	MaxItems int   `yaml:"max_items"`
	Timeout  int   `yaml:"timeout"` // seconds
}

func (c *Config) IsEnabled() bool {
	return c.Settings.Enabled == nil || *c.Settings.Enabled
}
