package sharehub

import (
	"encoding/xml"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eringen/sharehub/content"
	"github.com/eringen/sharehub/meta"
)

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string        `xml:"title"`
	Link        string        `xml:"link"`
	Description string        `xml:"description,omitempty"`
	PubDate     string        `xml:"pubDate,omitempty"`
	GUID        string        `xml:"guid"`
	Enclosure   *rssEnclosure `xml:"enclosure,omitempty"`
}

type rssEnclosure struct {
	URL    string `xml:"url,attr"`
	Type   string `xml:"type,attr"`
	Length int    `xml:"length,attr"`
}

// renderRSS lists the latest links with the same title, description and
// preview image their landing pages advertise.
func (a *App) renderRSS(c echo.Context, links []content.GeneratedLink) error {
	rc := meta.RequestContextFrom(c.Request())
	base := a.Resolver.ResolveCurrentDomain(rc).Value
	items := make([]rssItem, 0, len(links))
	for _, l := range links {
		if l.Post == nil {
			continue
		}
		md := a.Resolver.ResolveDisplayMetadata(*l.Post, l.LinkID, rc)
		item := rssItem{
			Title:       md.Title,
			Link:        md.URL,
			Description: md.Description,
			GUID:        md.URL,
			Enclosure:   &rssEnclosure{URL: md.Image, Type: "image/jpeg"},
		}
		if !l.CreatedAt.IsZero() {
			item.PubDate = l.CreatedAt.UTC().Format(time.RFC1123Z)
		}
		items = append(items, item)
	}
	feed := rssXML{
		Version: "2.0",
		Channel: rssChannel{
			Title:       a.Config.Name,
			Link:        BuildURL(base),
			Description: a.Config.Description,
			Items:       items,
		},
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/rss+xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Write([]byte(xml.Header))
	return xml.NewEncoder(c.Response()).Encode(feed)
}
