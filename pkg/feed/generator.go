// Package feed renders ingested messages as an RSS 2.0 feed.
package feed

import (
	"encoding/xml"
	"fmt"
	"mime"
	"path"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dustin/go-humanize"

	"github.com/umputun/tradescope/pkg/domain"
)

const maxTitleLen = 100

// Generator creates RSS feeds from messages
type Generator struct {
	baseURL string
	now     func() time.Time
}

// NewGenerator creates a new feed generator
func NewGenerator(baseURL string) *Generator {
	return &Generator{
		baseURL: strings.TrimRight(baseURL, "/"),
		now:     time.Now,
	}
}

// GenerateRSS creates an RSS 2.0 feed from messages, an empty platform means all platforms
func (g *Generator) GenerateRSS(msgs []domain.Message, platform domain.Platform) (string, error) {
	title := "Tradescope - all sources"
	selfLink := g.baseURL + "/rss"
	if platform != "" {
		title = fmt.Sprintf("Tradescope - %s", platform)
		selfLink = fmt.Sprintf("%s/rss/%s", g.baseURL, platform)
	}

	rssItems := make([]*RSSItem, 0, len(msgs))
	for _, msg := range msgs {
		rssItems = append(rssItems, g.convertToRSSItem(msg))
	}

	feed := &RSS{
		Version: "2.0",
		Atom:    "http://www.w3.org/2005/Atom",
		Channel: &RSSChannel{
			Title:         title,
			Link:          g.baseURL + "/",
			Description:   "Latest market news ingested by tradescope",
			AtomLink:      &AtomLink{Href: selfLink, Rel: "self", Type: "application/rss+xml"},
			LastBuildDate: g.now().Format(time.RFC1123Z),
			Items:         rssItems,
		},
	}

	output, err := xml.MarshalIndent(feed, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal RSS: %w", err)
	}
	return xml.Header + string(output), nil
}

// convertToRSSItem converts a message to an RSS item
func (g *Generator) convertToRSSItem(msg domain.Message) *RSSItem {
	desc := msg.Body
	if stats := engagement(msg.Engagement); stats != "" {
		desc += "\n\n" + stats
	}

	categories := []string{string(msg.Platform)}
	if msg.Lang != "" {
		categories = append(categories, msg.Lang)
	}

	item := &RSSItem{
		Title:       itemTitle(msg),
		Link:        msg.Link,
		GUID:        RSSGUID{Value: string(msg.Platform) + ":" + msg.ExternalID},
		Description: desc,
		Author:      msg.Author,
		PubDate:     msg.Published.Format(time.RFC1123Z),
		Categories:  categories,
	}
	if msg.MediaURL != "" {
		item.Enclosure = &RSSEnclosure{URL: msg.MediaURL, Type: mediaType(msg.MediaURL)}
	}
	return item
}

// itemTitle is the author and the first line of the body, shortened
func itemTitle(msg domain.Message) string {
	line, _, _ := strings.Cut(msg.Body, "\n")
	line = strings.TrimSpace(line)
	if utf8.RuneCountInString(line) > maxTitleLen {
		runes := []rune(line)
		line = strings.TrimSpace(string(runes[:maxTitleLen])) + "…"
	}
	if msg.Author == "" {
		return line
	}
	return msg.Author + ": " + line
}

func engagement(e domain.Engagement) string {
	var parts []string
	add := func(name string, v *int64) {
		if v != nil {
			parts = append(parts, fmt.Sprintf("%s: %s", name, humanize.Comma(*v)))
		}
	}
	add("views", e.Views)
	add("likes", e.Likes)
	add("shares", e.Shares)
	add("replies", e.Replies)
	return strings.Join(parts, ", ")
}

func mediaType(u string) string {
	if i := strings.IndexAny(u, "?#"); i >= 0 {
		u = u[:i]
	}
	if t := mime.TypeByExtension(path.Ext(u)); t != "" {
		return t
	}
	return "image/jpeg"
}
