package feed

import (
	"encoding/xml"
	"strings"
	"testing"
	"time"

	"github.com/ThedeveloperBilal1/DevelopersmatrixWebApp/app/database"
)

func testArticles() []database.Article {
	return []database.Article{
		{
			Title:       "GPT-5 Launches",
			Slug:        "gpt-5-launches",
			Excerpt:     "OpenAI ships a new model.",
			Content:     "<p>Body with ]]> marker</p>",
			ImageURL:    "https://cdn.example.com/gpt5.png?w=800",
			SourceURL:   "https://techcrunch.com/gpt-5",
			SourceName:  "TechCrunch",
			Category:    "ai",
			PublishedAt: time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC),
		},
		{
			Title:       "Tom & Jerry's <Console>",
			Slug:        "tom-jerry-s-console",
			SourceURL:   "https://example.com/console",
			SourceName:  "Example",
			Category:    "gaming",
			PublishedAt: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		},
	}
}

func TestGenerateRSS(t *testing.T) {
	generator := NewGenerator("https://devmatrix.example/", "1.2.3")

	rss, err := generator.Run(testArticles())
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	expectedContent := []string{
		`<rss version="2.0"`,
		"<title>DevelopersMatrix</title>",
		"<link>https://devmatrix.example</link>",
		`<atom:link href="https://devmatrix.example/feed.xml" rel="self" type="application/rss+xml" />`,
		"<generator>DevelopersMatrix/1.2.3</generator>",
		"<lastBuildDate>Thu, 02 May 2024 10:00:00 +0000</lastBuildDate>",
		`<guid isPermaLink="false">gpt-5-launches</guid>`,
		"<link>https://devmatrix.example/article/gpt-5-launches</link>",
		"<description>OpenAI ships a new model.</description>",
		"<category>ai</category>",
		`<source url="https://techcrunch.com/gpt-5">TechCrunch</source>`,
		`<enclosure url="https://cdn.example.com/gpt5.png?w=800" length="0" type="image/png" />`,
		"<title>Tom &amp; Jerry&#39;s &lt;Console&gt;</title>",
		"<description>No description available</description>",
	}

	for _, expected := range expectedContent {
		if !strings.Contains(rss, expected) {
			t.Errorf("Expected RSS to contain '%s'", expected)
		}
	}

	if strings.Count(rss, "<item>") != 2 {
		t.Errorf("Expected 2 items, got %d", strings.Count(rss, "<item>"))
	}
}

func TestGenerateRSSIsWellFormed(t *testing.T) {
	rss, err := NewGenerator("https://devmatrix.example", "dev").Run(testArticles())
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	var parsed struct {
		Channel struct {
			Items []struct {
				Title   string `xml:"title"`
				Content string `xml:"http://purl.org/rss/1.0/modules/content/ encoded"`
			} `xml:"item"`
		} `xml:"channel"`
	}
	if err := xml.Unmarshal([]byte(rss), &parsed); err != nil {
		t.Fatalf("Expected well-formed XML, got: %v", err)
	}

	if len(parsed.Channel.Items) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(parsed.Channel.Items))
	}
	if parsed.Channel.Items[0].Content != "<p>Body with ]]> marker</p>" {
		t.Errorf("Expected CDATA content to round-trip, got '%s'", parsed.Channel.Items[0].Content)
	}
	if parsed.Channel.Items[1].Title != "Tom & Jerry's <Console>" {
		t.Errorf("Expected escaped title to round-trip, got '%s'", parsed.Channel.Items[1].Title)
	}
}

func TestGenerateRSSWithoutBaseURL(t *testing.T) {
	rss, err := NewGenerator("", "dev").Run(testArticles())
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if strings.Contains(rss, "atom:link href") {
		t.Error("Expected no self link without a base URL")
	}
	if !strings.Contains(rss, "<link>https://techcrunch.com/gpt-5</link>") {
		t.Error("Expected items to link to their source without a base URL")
	}
}

func TestGenerateRSSEmpty(t *testing.T) {
	rss, err := NewGenerator("https://devmatrix.example", "dev").Run(nil)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if strings.Contains(rss, "<item>") {
		t.Error("Expected no items")
	}
	if !strings.HasSuffix(rss, "</channel>\n</rss>") {
		t.Error("Expected document to be closed")
	}
}

func TestImageType(t *testing.T) {
	testCases := map[string]string{
		"https://x.example/a.PNG":      "image/png",
		"https://x.example/a.gif#frag": "image/gif",
		"https://x.example/a.webp":     "image/webp",
		"https://x.example/a":          "image/jpeg",
	}

	for input, expected := range testCases {
		if got := imageType(input); got != expected {
			t.Errorf("Expected %s for %s, got %s", expected, input, got)
		}
	}
}
