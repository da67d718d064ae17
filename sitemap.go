package sharehub

import (
	"encoding/xml"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eringen/sharehub/content"
	"github.com/eringen/sharehub/meta"
)

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

func (a *App) renderSitemap(c echo.Context, links []content.GeneratedLink) error {
	base := a.Resolver.ResolveCurrentDomain(meta.RequestContextFrom(c.Request())).Value
	urls := []sitemapURL{
		{Loc: BuildURL(base), LastMod: time.Now().UTC().Format("2006-01-02"), ChangeFreq: "daily", Priority: "1.0"},
	}
	for _, l := range links {
		u := sitemapURL{
			Loc:        meta.JoinURL(base, "post/"+l.LinkID),
			ChangeFreq: "weekly",
			Priority:   "0.8",
		}
		if !l.CreatedAt.IsZero() {
			u.LastMod = l.CreatedAt.UTC().Format("2006-01-02")
		}
		urls = append(urls, u)
	}
	sitemap := sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Write([]byte(xml.Header))
	return xml.NewEncoder(c.Response()).Encode(sitemap)
}
