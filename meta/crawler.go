package meta

import (
	"regexp"
	"strings"
)

var crawlerRe = regexp.MustCompile(`(?i)facebookexternalhit|twitterbot|linkedinbot|whatsapp|telegram|discordbot`)

// IsCrawler reports whether ua belongs to a social-network link-preview
// fetcher. The result is for diagnostics only and must not change what a page
// serves.
func IsCrawler(ua string) bool {
	return crawlerRe.MatchString(ua)
}

var crawlerNames = []struct {
	pattern string
	name    string
}{
	{"facebookexternalhit", "Facebook"},
	{"twitterbot", "Twitter"},
	{"linkedinbot", "LinkedIn"},
	{"whatsapp", "WhatsApp"},
	{"telegram", "Telegram"},
	{"discordbot", "Discord"},
}

// CrawlerName returns a display name for a link-preview crawler, or "" when
// ua is not one.
func CrawlerName(ua string) string {
	ua = strings.ToLower(ua)
	for _, c := range crawlerNames {
		if strings.Contains(ua, c.pattern) {
			return c.name
		}
	}
	return ""
}
