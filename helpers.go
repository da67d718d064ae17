package sharehub

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"
	"net/url"
	"path"
	"strings"
)

const (
	linkIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	linkIDLength   = 6
)

// GenerateLinkID returns a random 6-character alphanumeric link id.
func GenerateLinkID() (string, error) {
	var b strings.Builder
	max := big.NewInt(int64(len(linkIDAlphabet)))
	for i := 0; i < linkIDLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generate link id: %w", err)
		}
		b.WriteByte(linkIDAlphabet[n.Int64()])
	}
	return b.String(), nil
}

// ValidLinkID reports whether id has the shape GenerateLinkID produces.
// Longer ids are accepted for links imported from elsewhere.
func ValidLinkID(id string) bool {
	if len(id) < linkIDLength || len(id) > 64 {
		return false
	}
	for i := 0; i < len(id); i++ {
		if !strings.ContainsRune(linkIDAlphabet, rune(id[i])) {
			return false
		}
	}
	return true
}

// BuildURL joins a base URL with path segments.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	if u.Path == "" {
		u.Path = "/"
	}
	return u.String()
}

// visitorKey identifies an anonymous visitor for like de-duplication without
// storing the raw IP.
func visitorKey(ip, userAgent string) string {
	h := sha256.Sum256([]byte(ip + "|" + userAgent))
	return hex.EncodeToString(h[:])[:24]
}

// anonymousUserName returns the display name given to a commenter.
func anonymousUserName() string {
	n, err := rand.Int(rand.Reader, big.NewInt(1000))
	if err != nil {
		return "User"
	}
	return fmt.Sprintf("User%d", n.Int64())
}
