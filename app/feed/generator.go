package feed

import (
	"bytes"
	"cmp"
	"encoding/xml"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/ThedeveloperBilal1/DevelopersmatrixWebApp/app/database"
)

const (
	channelTitle       = "DevelopersMatrix"
	channelDescription = "Latest technology news, categorized and summarized"
)

// Generator renders stored articles as an RSS 2.0 document.
type Generator struct {
	baseURL string
	version string
}

// NewGenerator returns a generator that links items to baseURL/article/<slug>.
// With an empty baseURL items link to their source instead.
func NewGenerator(baseURL, version string) *Generator {
	return &Generator{
		baseURL: strings.TrimRight(baseURL, "/"),
		version: version,
	}
}

func (g *Generator) Run(articles []database.Article) (string, error) {
	var buf bytes.Buffer

	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	buf.WriteString("\n")
	buf.WriteString(`<rss version="2.0" xmlns:content="http://purl.org/rss/1.0/modules/content/" xmlns:atom="http://www.w3.org/2005/Atom">`)
	buf.WriteString("\n  <channel>\n")

	g.writeElement(&buf, "title", channelTitle, 4)
	g.writeElement(&buf, "link", g.baseURL, 4)
	g.writeElement(&buf, "description", channelDescription, 4)

	if g.baseURL != "" {
		buf.WriteString(fmt.Sprintf("    <atom:link href=\"%s\" rel=\"self\" type=\"application/rss+xml\" />\n",
			html.EscapeString(g.baseURL+"/feed.xml")))
	}

	lastBuildDate := time.Now().UTC()
	if len(articles) > 0 {
		lastBuildDate = cmp.Or(articles[0].PublishedAt, articles[0].CreatedAt, lastBuildDate)
	}

	g.writeElement(&buf, "lastBuildDate", lastBuildDate.Format(time.RFC1123Z), 4)
	g.writeElement(&buf, "generator", fmt.Sprintf("%s/%s", channelTitle, g.version), 4)
	g.writeElement(&buf, "language", "en", 4)

	for _, article := range articles {
		g.writeItem(&buf, article)
	}

	buf.WriteString("  </channel>\n</rss>")

	return buf.String(), nil
}

func (g *Generator) writeItem(buf *bytes.Buffer, article database.Article) {
	buf.WriteString("    <item>\n")

	link := article.SourceURL
	if g.baseURL != "" {
		link = g.baseURL + "/article/" + article.Slug
	}

	buf.WriteString("      <guid isPermaLink=\"false\">")
	xml.EscapeText(buf, []byte(article.Slug))
	buf.WriteString("</guid>\n")

	g.writeElement(buf, "title", article.Title, 6)
	g.writeElement(buf, "link", link, 6)
	g.writeElement(buf, "description", cmp.Or(article.Excerpt, "No description available"), 6)

	if article.Content != "" {
		buf.WriteString("      <content:encoded><![CDATA[")
		buf.WriteString(strings.ReplaceAll(article.Content, "]]>", "]]]]><![CDATA[>"))
		buf.WriteString("]]></content:encoded>\n")
	}

	g.writeElement(buf, "pubDate", article.PublishedAt.Format(time.RFC1123Z), 6)
	g.writeElement(buf, "category", article.Category, 6)

	if article.SourceName != "" {
		buf.WriteString(fmt.Sprintf("      <source url=\"%s\">", html.EscapeString(article.SourceURL)))
		xml.EscapeText(buf, []byte(article.SourceName))
		buf.WriteString("</source>\n")
	}

	if g.isURL(article.ImageURL) {
		buf.WriteString(fmt.Sprintf("      <enclosure url=\"%s\" length=\"0\" type=\"%s\" />\n",
			html.EscapeString(article.ImageURL),
			imageType(article.ImageURL)))
	}

	buf.WriteString("    </item>\n")
}

func (g *Generator) writeElement(buf *bytes.Buffer, tag, content string, indent int) {
	if content == "" {
		return
	}

	for i := 0; i < indent; i++ {
		buf.WriteByte(' ')
	}

	buf.WriteString("<")
	buf.WriteString(tag)
	buf.WriteString(">")
	xml.EscapeText(buf, []byte(content))
	buf.WriteString("</")
	buf.WriteString(tag)
	buf.WriteString(">\n")
}

func (g *Generator) isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func imageType(imageURL string) string {
	path := strings.ToLower(imageURL)
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}

	switch {
	case strings.HasSuffix(path, ".png"):
		return "image/png"
	case strings.HasSuffix(path, ".gif"):
		return "image/gif"
	case strings.HasSuffix(path, ".webp"):
		return "image/webp"
	default:
		return "image/jpeg"
	}
}
