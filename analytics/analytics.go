// Package analytics records landing-page hits, separating social crawlers
// from human visitors, and aggregates them for the admin stats endpoint.
package analytics

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/eringen/sharehub/meta"
)

// salt holds the per-installation random salt for IP hashing.
var salt struct {
	once  sync.Once
	value string
}

// InitSalt loads or generates a persistent salt for IP hashing.
// Must be called once at startup before any hits are recorded.
func InitSalt(store *Store) error {
	var initErr error
	salt.once.Do(func() {
		s, err := store.GetSetting("hash_salt")
		if err != nil {
			initErr = fmt.Errorf("read hash salt: %w", err)
			return
		}
		if s == "" {
			b := make([]byte, 32)
			if _, err := rand.Read(b); err != nil {
				initErr = fmt.Errorf("generate salt: %w", err)
				return
			}
			s = hex.EncodeToString(b)
			if err := store.SetSetting("hash_salt", s); err != nil {
				initErr = fmt.Errorf("store hash salt: %w", err)
				return
			}
		}
		salt.value = s
	})
	return initErr
}

// Hit is a single landing-page request.
type Hit struct {
	LinkID      string    `json:"link_id"`
	VisitorID   string    `json:"-"`
	IPHash      string    `json:"-"`
	Crawler     bool      `json:"crawler"`
	CrawlerName string    `json:"crawler_name,omitempty"`
	Browser     string    `json:"browser"`
	OS          string    `json:"os"`
	Device      string    `json:"device"`
	Referrer    string    `json:"referrer"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewHit classifies a request for linkID. Crawler detection uses the same
// user-agent rules the page handler uses.
func NewHit(linkID, ip, userAgent, referrer string, now time.Time) Hit {
	h := Hit{
		LinkID:    linkID,
		VisitorID: GenerateVisitorID(ip, userAgent),
		IPHash:    HashIP(ip),
		Referrer:  CleanReferrer(referrer),
		Timestamp: now.UTC(),
	}
	if name := meta.CrawlerName(userAgent); name != "" {
		h.Crawler = true
		h.CrawlerName = name
		return h
	}
	h.Browser, h.OS, h.Device = ParseUserAgent(userAgent)
	return h
}

// Stats holds aggregated hits for a period.
type Stats struct {
	Period         string          `json:"period"`
	TotalViews     int             `json:"total_views"`
	UniqueVisitors int             `json:"unique_visitors"`
	CrawlerHits    int             `json:"crawler_hits"`
	TopLinks       []LinkStat      `json:"top_links"`
	Crawlers       []DimensionStat `json:"crawlers"`
	Browsers       []DimensionStat `json:"browsers"`
	Devices        []DimensionStat `json:"devices"`
	Referrers      []DimensionStat `json:"referrers"`
	DailyViews     []DailyView     `json:"daily_views"`
}

// LinkStat is the human view count of one link.
type LinkStat struct {
	LinkID string `json:"link_id"`
	Views  int    `json:"views"`
}

// DimensionStat represents a dimension breakdown (browser, crawler, etc.).
type DimensionStat struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// DailyView represents views per day, hour or month depending on the period.
type DailyView struct {
	Date  string `json:"date"`
	Views int    `json:"views"`
}

// HashIP creates a salted SHA-256 hash of an IP address.
func HashIP(ip string) string {
	h := sha256.New()
	h.Write([]byte(salt.value + ip))
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// GenerateVisitorID creates a salted visitor ID from IP and User-Agent.
func GenerateVisitorID(ip, userAgent string) string {
	h := sha256.New()
	h.Write([]byte(salt.value + ip + "|" + userAgent))
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// ParseUserAgent extracts browser, OS, and device from a User-Agent string.
func ParseUserAgent(ua string) (browser, os, device string) {
	ua = strings.ToLower(ua)

	// in-app browsers first; their UAs also contain chrome/safari
	switch {
	case strings.Contains(ua, "fban") || strings.Contains(ua, "fbav"):
		browser = "Facebook App"
	case strings.Contains(ua, "instagram"):
		browser = "Instagram App"
	case strings.Contains(ua, "firefox"):
		browser = "Firefox"
	case strings.Contains(ua, "opera") || strings.Contains(ua, "opr"):
		browser = "Opera"
	case strings.Contains(ua, "edg"):
		browser = "Edge"
	case strings.Contains(ua, "chrome"):
		browser = "Chrome"
	case strings.Contains(ua, "safari"):
		browser = "Safari"
	default:
		browser = "Other"
	}

	// Android before Linux since Android UAs contain "linux"
	switch {
	case strings.Contains(ua, "windows"):
		os = "Windows"
	case strings.Contains(ua, "android"):
		os = "Android"
	case strings.Contains(ua, "iphone") || strings.Contains(ua, "ipad"):
		os = "iOS"
	case strings.Contains(ua, "macintosh") || strings.Contains(ua, "mac os"):
		os = "macOS"
	case strings.Contains(ua, "linux"):
		os = "Linux"
	default:
		os = "Other"
	}

	// iPad UAs contain "mobile"; check tablet first
	switch {
	case strings.Contains(ua, "tablet") || strings.Contains(ua, "ipad"):
		device = "Tablet"
	case strings.Contains(ua, "mobile"):
		device = "Mobile"
	default:
		device = "Desktop"
	}

	return
}

var referrerDomainRegex = regexp.MustCompile(`^https?://(?:www\.|m\.|l\.|lm\.)?([^/]+)`)

// CleanReferrer reduces a referrer URL to a source name.
func CleanReferrer(ref string) string {
	if ref == "" {
		return "Direct"
	}

	refLower := strings.ToLower(ref)
	switch {
	case strings.Contains(refLower, "facebook.com") || strings.Contains(refLower, "fb.com"):
		return "Facebook"
	case strings.Contains(refLower, "://t.co/") || strings.Contains(refLower, "twitter.com") || strings.Contains(refLower, "://x.com/"):
		return "Twitter"
	case strings.Contains(refLower, "instagram.com"):
		return "Instagram"
	case strings.Contains(refLower, "linkedin.com") || strings.Contains(refLower, "lnkd.in"):
		return "LinkedIn"
	case strings.Contains(refLower, "whatsapp"):
		return "WhatsApp"
	case strings.Contains(refLower, "://t.me/") || strings.Contains(refLower, "telegram"):
		return "Telegram"
	case strings.Contains(refLower, "google."):
		return "Google"
	}

	if m := referrerDomainRegex.FindStringSubmatch(ref); len(m) > 1 {
		return m[1]
	}
	return "Other"
}
