package sharehub

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/eringen/sharehub/content"
)

func setupTestStore(t *testing.T) (*Store, func()) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "test.db")

	s, err := NewStore(DriverSQLite, path)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	return s, func() { s.Close() }
}

func createTestLink(t *testing.T, s *Store, linkID string, p content.Post) content.GeneratedLink {
	t.Helper()
	l := content.GeneratedLink{LinkID: linkID, Title: p.Title}
	if err := s.CreatePost(context.Background(), &p, &l); err != nil {
		t.Fatalf("CreatePost(%s) failed: %v", linkID, err)
	}
	return l
}

func TestNewStore(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	if s.db == nil {
		t.Fatal("db should not be nil")
	}
	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("Ping failed: %v", err)
	}
}

func TestNewStoreUnknownDriver(t *testing.T) {
	if _, err := NewStore("oracle", "x"); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestCreateAndGetLink(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	post := content.Post{
		Title:        "Test Post",
		Description:  "A description",
		VideoURL:     "https://youtu.be/dQw4w9WgXcQ",
		MediaURL:     "/public/uploads/posts/a.jpg",
		MediaType:    content.MediaTypeImage,
		RedirectLink: "https://offer.example.com",
	}
	created := createTestLink(t, s, "Ab12Cd", post)
	if created.ID == "" || created.PostID == "" {
		t.Fatalf("ids not assigned: %+v", created)
	}

	got, err := s.GetLink(context.Background(), "Ab12Cd")
	if err != nil {
		t.Fatalf("GetLink failed: %v", err)
	}
	if got.Post == nil {
		t.Fatal("Post should be joined")
	}
	if got.Post.ID != created.PostID {
		t.Errorf("Post.ID = %q, want %q", got.Post.ID, created.PostID)
	}
	if got.Post.Title != post.Title {
		t.Errorf("Title = %q, want %q", got.Post.Title, post.Title)
	}
	if got.Post.MediaType != content.MediaTypeImage {
		t.Errorf("MediaType = %q, want image", got.Post.MediaType)
	}
	if got.Post.RedirectLink != post.RedirectLink {
		t.Errorf("RedirectLink = %q, want %q", got.Post.RedirectLink, post.RedirectLink)
	}
	if got.Path() != "/post/Ab12Cd" {
		t.Errorf("Path = %q", got.Path())
	}
	if time.Since(got.Post.CreatedAt) > time.Minute {
		t.Errorf("CreatedAt not round-tripped: %v", got.Post.CreatedAt)
	}
}

func TestGetLinkNotFound(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	_, err := s.GetLink(context.Background(), "nope00")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCreatePostDuplicateLinkID(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	createTestLink(t, s, "dup123", content.Post{Title: "first"})

	p := content.Post{Title: "second"}
	l := content.GeneratedLink{LinkID: "dup123"}
	err := s.CreatePost(context.Background(), &p, &l)
	if !errors.Is(err, ErrDuplicateLinkID) {
		t.Fatalf("expected ErrDuplicateLinkID, got %v", err)
	}

	links, err := s.ListLinks(context.Background(), 0)
	if err != nil {
		t.Fatalf("ListLinks failed: %v", err)
	}
	if len(links) != 1 {
		t.Errorf("failed insert should roll back, got %d links", len(links))
	}
}

func TestListLinksOrderAndLimit(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"aaaaa1", "aaaaa2", "aaaaa3"} {
		p := content.Post{Title: id, CreatedAt: base.Add(time.Duration(i) * time.Hour)}
		l := content.GeneratedLink{LinkID: id, Title: id, CreatedAt: p.CreatedAt}
		if err := s.CreatePost(context.Background(), &p, &l); err != nil {
			t.Fatalf("CreatePost failed: %v", err)
		}
	}

	links, err := s.ListLinks(context.Background(), 2)
	if err != nil {
		t.Fatalf("ListLinks failed: %v", err)
	}
	if len(links) != 2 {
		t.Fatalf("len = %d, want 2", len(links))
	}
	if links[0].LinkID != "aaaaa3" || links[1].LinkID != "aaaaa2" {
		t.Errorf("order = %s, %s; want newest first", links[0].LinkID, links[1].LinkID)
	}

	exists, err := s.LinkIDExists(context.Background(), "aaaaa1")
	if err != nil || !exists {
		t.Errorf("LinkIDExists(aaaaa1) = %v, %v", exists, err)
	}
	exists, _ = s.LinkIDExists(context.Background(), "zzzzzz")
	if exists {
		t.Error("LinkIDExists(zzzzzz) should be false")
	}
}

func TestEngagementCounts(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	l := createTestLink(t, s, "eng001", content.Post{Title: "engage"})

	added, err := s.AddLike(ctx, l.PostID, "visitor-a")
	if err != nil || !added {
		t.Fatalf("AddLike = %v, %v", added, err)
	}
	added, err = s.AddLike(ctx, l.PostID, "visitor-a")
	if err != nil || added {
		t.Fatalf("second AddLike = %v, %v; want idempotent", added, err)
	}
	if _, err := s.AddLike(ctx, l.PostID, "visitor-b"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.AddComment(ctx, l.PostID, "User1", "nice"); err != nil {
		t.Fatal(err)
	}
	if err := s.AddShare(ctx, l.PostID, "facebook"); err != nil {
		t.Fatal(err)
	}

	c, err := s.Counts(ctx, l.PostID)
	if err != nil {
		t.Fatalf("Counts failed: %v", err)
	}
	if c != (content.Counts{Likes: 2, Comments: 1, Shares: 1}) {
		t.Errorf("Counts = %+v", c)
	}

	removed, err := s.RemoveLike(ctx, l.PostID, "visitor-b")
	if err != nil || !removed {
		t.Fatalf("RemoveLike = %v, %v", removed, err)
	}
	c, _ = s.Counts(ctx, l.PostID)
	if c.Likes != 1 {
		t.Errorf("Likes after unlike = %d, want 1", c.Likes)
	}
}

func TestListComments(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	l := createTestLink(t, s, "cmt001", content.Post{Title: "comments"})
	for _, text := range []string{"one", "two", "three"} {
		if _, err := s.AddComment(ctx, l.PostID, "User", text); err != nil {
			t.Fatal(err)
		}
		time.Sleep(2 * time.Millisecond)
	}

	got, err := s.ListComments(ctx, l.PostID, 2)
	if err != nil {
		t.Fatalf("ListComments failed: %v", err)
	}
	if len(got) != 2 || got[0].Text != "three" || got[1].Text != "two" {
		t.Errorf("ListComments = %+v", got)
	}
}

func TestDeleteLinkCascades(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	l := createTestLink(t, s, "del001", content.Post{Title: "bye", MediaURL: "/public/uploads/posts/x.jpg"})
	s.AddLike(ctx, l.PostID, "v")
	s.AddComment(ctx, l.PostID, "u", "c")
	s.AddShare(ctx, l.PostID, "")
	keep := createTestLink(t, s, "keep01", content.Post{Title: "stay"})

	deleted, err := s.DeleteLink(ctx, "del001")
	if err != nil {
		t.Fatalf("DeleteLink failed: %v", err)
	}
	if deleted.MediaURL != "/public/uploads/posts/x.jpg" {
		t.Errorf("deleted post MediaURL = %q", deleted.MediaURL)
	}

	if _, err := s.GetLink(ctx, "del001"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	c, err := s.Counts(ctx, l.PostID)
	if err != nil {
		t.Fatal(err)
	}
	if c != (content.Counts{}) {
		t.Errorf("engagement rows left behind: %+v", c)
	}
	if _, err := s.GetLink(ctx, keep.LinkID); err != nil {
		t.Errorf("unrelated link removed: %v", err)
	}
	if _, err := s.DeleteLink(ctx, "del001"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete: expected ErrNotFound, got %v", err)
	}
}

func TestRebind(t *testing.T) {
	pg := &Store{driver: DriverPostgres}
	got := pg.rebind(`SELECT a FROM t WHERE x = ? AND y = ?`)
	if got != `SELECT a FROM t WHERE x = $1 AND y = $2` {
		t.Errorf("rebind = %q", got)
	}
	lite := &Store{driver: DriverSQLite}
	if q := `x = ?`; lite.rebind(q) != q {
		t.Error("sqlite queries should be unchanged")
	}
}
