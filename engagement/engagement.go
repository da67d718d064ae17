// Package engagement produces the engagement figures shown under a post.
//
// The figures are presentation only. A synthetic base derived from the post
// id is added to the persisted counts so a fresh post does not render with
// zeros; nothing in metadata resolution reads these values. The base is a
// deterministic function of the seed, so the same post always renders the
// same numbers.
package engagement

import (
	"fmt"
	"hash/fnv"
	"math/rand"
	"strings"
	"time"

	"github.com/eringen/sharehub/content"
)

// Stats is what the engagement bar renders.
type Stats struct {
	Likes    int `json:"likes"`
	Comments int `json:"comments"`
	Shares   int `json:"shares"`
	Views    int `json:"views"`
}

// Ranges of the synthetic base, as [min, min+span).
const (
	likesMin, likesSpan       = 100, 10000
	commentsMin, commentsSpan = 500, 1500
	sharesMin, sharesSpan     = 5, 1000
	viewsMin, viewsSpan       = 1000, 100000
)

func rng(seed string) *rand.Rand {
	h := fnv.New64a()
	h.Write([]byte(seed))
	return rand.New(rand.NewSource(int64(h.Sum64())))
}

// Display returns the stats for the post identified by seed with the
// persisted counts added on top.
func Display(seed string, persisted content.Counts) Stats {
	r := rng(seed)
	return Stats{
		Likes:    likesMin + r.Intn(likesSpan) + persisted.Likes,
		Comments: commentsMin + r.Intn(commentsSpan) + persisted.Comments,
		Shares:   sharesMin + r.Intn(sharesSpan) + persisted.Shares,
		Views:    viewsMin + r.Intn(viewsSpan),
	}
}

var profileNames = []string{
	"Viral Hub", "Trending Now", "Buzz Central", "Viral Zone", "Hot Topics",
	"Trend Master", "Viral Feed", "Buzz Station", "Trend Hub", "Viral Point",
	"Hot Buzz", "Trend Zone", "Viral Stream", "Buzz Hub", "Trend Wave",
}

// ProfileName picks the display name of the account the post appears to come
// from.
func ProfileName(seed string) string {
	return profileNames[rng("profile:"+seed).Intn(len(profileNames))]
}

// Initials returns up to two upper-case initials of name.
func Initials(name string) string {
	var b strings.Builder
	n := 0
	for _, w := range strings.Fields(name) {
		b.WriteString(strings.ToUpper(string([]rune(w)[0])))
		if n++; n == 2 {
			break
		}
	}
	return b.String()
}

// PostedAgo is the "posted N hours ago" label under the profile name, between
// 2h and 6h59m.
func PostedAgo(seed string) string {
	r := rng("posted:" + seed)
	return fmt.Sprintf("%dh %dm ago", 2+r.Intn(5), r.Intn(60))
}

// TimeAgo formats the age of t relative to now in the short form used for
// comments.
func TimeAgo(t, now time.Time) string {
	mins := int(now.Sub(t) / time.Minute)
	switch {
	case mins < 1:
		return "Just now"
	case mins < 60:
		return fmt.Sprintf("%dm ago", mins)
	case mins < 24*60:
		return fmt.Sprintf("%dh ago", mins/60)
	}
	return fmt.Sprintf("%dd ago", mins/(24*60))
}

// CommentView is a comment ready for display.
type CommentView struct {
	User     string
	Initials string
	Text     string
	Time     string
	Real     bool
}

var featured = []CommentView{
	{User: "Sarah Chen", Text: "Exactly what I was looking for! 🔥", Time: "33 minutes ago"},
	{User: "Emily Davis", Text: "Love this! Keep it up! 💯", Time: "12 hours ago"},
	{User: "Mike Johnson", Text: "This is amazing content! Thanks for sharing 👏", Time: "2 hours ago"},
	{User: "Alex Rodriguez", Text: "Wow! This is incredible! 😍", Time: "1 hour ago"},
	{User: "Jessica Kim", Text: "Thanks for sharing this! Very helpful 🙏", Time: "45 minutes ago"},
}

// Comments merges persisted comments, newest first, with four or five
// featured comments chosen by seed.
func Comments(seed string, persisted []content.Comment, now time.Time) []CommentView {
	out := make([]CommentView, 0, len(persisted)+len(featured))
	for _, c := range persisted {
		out = append(out, CommentView{
			User:     c.UserName,
			Initials: Initials(c.UserName),
			Text:     c.Text,
			Time:     TimeAgo(c.CreatedAt, now),
			Real:     true,
		})
	}
	r := rng("comments:" + seed)
	n := 4 + r.Intn(2)
	for _, i := range r.Perm(len(featured))[:n] {
		c := featured[i]
		c.Initials = Initials(c.User)
		out = append(out, c)
	}
	return out
}
