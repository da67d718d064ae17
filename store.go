package sharehub

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/eringen/sharehub/content"
)

// Supported database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "pgx"
)

// ErrDuplicateLinkID is returned by CreatePost when the link id is taken.
var ErrDuplicateLinkID = errors.New("sharehub: link id already exists")

const timeLayout = "2006-01-02T15:04:05.000000Z07:00"

// Store persists posts, their short links, and visitor engagement. The same
// SQL runs on SQLite and PostgreSQL; placeholders are written as ? and
// rebound for the pgx driver.
type Store struct {
	db     *sql.DB
	driver string
}

// NewStore opens the database for driver and ensures the schema exists. For
// SQLite, dsn is a file path whose directory is created if needed.
func NewStore(driver, dsn string) (*Store, error) {
	switch driver {
	case DriverSQLite:
		if dir := filepath.Dir(dsn); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, err
			}
		}
	case DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	if driver == DriverSQLite {
		// WAL lets readers proceed during writes; busy_timeout makes writers
		// wait instead of failing with SQLITE_BUSY.
		if _, err := db.Exec(`
			PRAGMA journal_mode=WAL;
			PRAGMA busy_timeout=5000;
			PRAGMA synchronous=NORMAL;
			PRAGMA cache_size=-8000;
		`); err != nil {
			db.Close()
			return nil, err
		}
		db.SetMaxOpenConns(4)
		db.SetMaxIdleConns(4)
	} else {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(time.Hour)
	}

	s := &Store{db: db, driver: driver}
	if err := s.ensureSchema(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS posts (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		embed_code TEXT NOT NULL DEFAULT '',
		video_url TEXT NOT NULL DEFAULT '',
		media_url TEXT NOT NULL DEFAULT '',
		media_type TEXT NOT NULL DEFAULT '',
		thumbnail_url TEXT NOT NULL DEFAULT '',
		redirect_link TEXT NOT NULL DEFAULT '',
		popunder_ad TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS generated_links (
		id TEXT PRIMARY KEY,
		post_id TEXT NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
		link_id TEXT NOT NULL UNIQUE,
		title TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS post_comments (
		id TEXT PRIMARY KEY,
		post_id TEXT NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
		user_name TEXT NOT NULL,
		comment_text TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS post_likes (
		id TEXT PRIMARY KEY,
		post_id TEXT NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
		visitor_id TEXT NOT NULL,
		created_at TEXT NOT NULL,
		UNIQUE (post_id, visitor_id)
	)`,
	`CREATE TABLE IF NOT EXISTS post_shares (
		id TEXT PRIMARY KEY,
		post_id TEXT NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
		platform TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_links_created_at ON generated_links(created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_comments_post ON post_comments(post_id, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_shares_post ON post_shares(post_id)`,
}

func (s *Store) ensureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// rebind rewrites ? placeholders to $n for PostgreSQL.
func (s *Store) rebind(q string) string {
	if s.driver != DriverPostgres {
		return q
	}
	var b strings.Builder
	n := 0
	for i := 0; i < len(q); i++ {
		if q[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(q[i])
	}
	return b.String()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) exec(ctx context.Context, e execer, q string, args ...any) (sql.Result, error) {
	return e.ExecContext(ctx, s.rebind(q), args...)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(v string) time.Time {
	t, _ := time.Parse(timeLayout, v)
	return t
}

func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate key")
}

// CreatePost inserts p and its short link in one transaction. Empty ids and
// timestamps are filled in.
func (s *Store) CreatePost(ctx context.Context, p *content.Post, l *content.GeneratedLink) error {
	now := time.Now().UTC()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = now
	}
	l.PostID = p.ID

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := s.exec(ctx, tx, `INSERT INTO posts (id, title, description, embed_code, video_url, media_url, media_type, thumbnail_url, redirect_link, popunder_ad, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Title, p.Description, p.EmbedCode, p.VideoURL, p.MediaURL, string(p.MediaType),
		p.ThumbnailURL, p.RedirectLink, p.PopunderAd, formatTime(p.CreatedAt)); err != nil {
		return fmt.Errorf("insert post: %w", err)
	}
	if _, err := s.exec(ctx, tx, `INSERT INTO generated_links (id, post_id, link_id, title, created_at) VALUES (?, ?, ?, ?, ?)`,
		l.ID, l.PostID, l.LinkID, l.Title, formatTime(l.CreatedAt)); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateLinkID
		}
		return fmt.Errorf("insert link: %w", err)
	}
	return tx.Commit()
}

const linkColumns = `l.id, l.post_id, l.link_id, l.title, l.created_at,
	p.title, p.description, p.embed_code, p.video_url, p.media_url, p.media_type,
	p.thumbnail_url, p.redirect_link, p.popunder_ad, p.created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanLink(row scanner) (content.GeneratedLink, error) {
	var (
		l                    content.GeneratedLink
		p                    content.Post
		mediaType            string
		linkCreated, created string
	)
	err := row.Scan(&l.ID, &l.PostID, &l.LinkID, &l.Title, &linkCreated,
		&p.Title, &p.Description, &p.EmbedCode, &p.VideoURL, &p.MediaURL, &mediaType,
		&p.ThumbnailURL, &p.RedirectLink, &p.PopunderAd, &created)
	if err != nil {
		return content.GeneratedLink{}, err
	}
	p.ID = l.PostID
	p.MediaType = content.MediaType(mediaType)
	p.CreatedAt = parseTime(created)
	l.CreatedAt = parseTime(linkCreated)
	l.Post = &p
	return l, nil
}

// GetLink returns the link with linkID and its post. It returns ErrNotFound
// when no such link exists.
func (s *Store) GetLink(ctx context.Context, linkID string) (content.GeneratedLink, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(`SELECT `+linkColumns+`
		FROM generated_links l JOIN posts p ON p.id = l.post_id
		WHERE l.link_id = ?`), linkID)
	return scanLink(row)
}

// ListLinks returns up to limit links, newest first. A limit <= 0 returns all.
func (s *Store) ListLinks(ctx context.Context, limit int) ([]content.GeneratedLink, error) {
	q := `SELECT ` + linkColumns + `
		FROM generated_links l JOIN posts p ON p.id = l.post_id
		ORDER BY l.created_at DESC`
	var args []any
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, s.rebind(q), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var links []content.GeneratedLink
	for rows.Next() {
		l, err := scanLink(rows)
		if err != nil {
			return nil, err
		}
		links = append(links, l)
	}
	return links, rows.Err()
}

// LinkIDExists reports whether linkID is already in use.
func (s *Store) LinkIDExists(ctx context.Context, linkID string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, s.rebind(`SELECT COUNT(*) FROM generated_links WHERE link_id = ?`), linkID).Scan(&n)
	return n > 0, err
}

// DeleteLink removes a link together with its post and everything attached
// to the post. It returns the deleted post, or ErrNotFound.
func (s *Store) DeleteLink(ctx context.Context, linkID string) (content.Post, error) {
	l, err := s.GetLink(ctx, linkID)
	if err != nil {
		return content.Post{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return content.Post{}, err
	}
	defer tx.Rollback()

	for _, q := range []string{
		`DELETE FROM post_comments WHERE post_id = ?`,
		`DELETE FROM post_likes WHERE post_id = ?`,
		`DELETE FROM post_shares WHERE post_id = ?`,
		`DELETE FROM generated_links WHERE post_id = ?`,
		`DELETE FROM posts WHERE id = ?`,
	} {
		if _, err := s.exec(ctx, tx, q, l.PostID); err != nil {
			return content.Post{}, fmt.Errorf("delete link %s: %w", linkID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return content.Post{}, err
	}
	return *l.Post, nil
}

// AddComment stores a comment on a post.
func (s *Store) AddComment(ctx context.Context, postID, userName, text string) (content.Comment, error) {
	c := content.Comment{
		ID:        uuid.NewString(),
		PostID:    postID,
		UserName:  userName,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}
	_, err := s.exec(ctx, s.db, `INSERT INTO post_comments (id, post_id, user_name, comment_text, created_at) VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.PostID, c.UserName, c.Text, formatTime(c.CreatedAt))
	if err != nil {
		return content.Comment{}, err
	}
	return c, nil
}

// ListComments returns up to limit comments on a post, newest first.
func (s *Store) ListComments(ctx context.Context, postID string, limit int) ([]content.Comment, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, s.rebind(`SELECT id, post_id, user_name, comment_text, created_at
		FROM post_comments WHERE post_id = ? ORDER BY created_at DESC LIMIT ?`), postID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []content.Comment
	for rows.Next() {
		var c content.Comment
		var created string
		if err := rows.Scan(&c.ID, &c.PostID, &c.UserName, &c.Text, &created); err != nil {
			return nil, err
		}
		c.CreatedAt = parseTime(created)
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// AddLike records a like from visitorID. It reports false when the visitor
// already liked the post.
func (s *Store) AddLike(ctx context.Context, postID, visitorID string) (bool, error) {
	res, err := s.exec(ctx, s.db, `INSERT INTO post_likes (id, post_id, visitor_id, created_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (post_id, visitor_id) DO NOTHING`,
		uuid.NewString(), postID, visitorID, formatTime(time.Now()))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// RemoveLike withdraws a like. It reports false when there was none.
func (s *Store) RemoveLike(ctx context.Context, postID, visitorID string) (bool, error) {
	res, err := s.exec(ctx, s.db, `DELETE FROM post_likes WHERE post_id = ? AND visitor_id = ?`, postID, visitorID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// AddShare records a share of a post.
func (s *Store) AddShare(ctx context.Context, postID, platform string) error {
	_, err := s.exec(ctx, s.db, `INSERT INTO post_shares (id, post_id, platform, created_at) VALUES (?, ?, ?, ?)`,
		uuid.NewString(), postID, platform, formatTime(time.Now()))
	return err
}

// Counts returns the persisted engagement totals of a post.
func (s *Store) Counts(ctx context.Context, postID string) (content.Counts, error) {
	var c content.Counts
	err := s.db.QueryRowContext(ctx, s.rebind(`SELECT
		(SELECT COUNT(*) FROM post_likes WHERE post_id = ?),
		(SELECT COUNT(*) FROM post_comments WHERE post_id = ?),
		(SELECT COUNT(*) FROM post_shares WHERE post_id = ?)`), postID, postID, postID).
		Scan(&c.Likes, &c.Comments, &c.Shares)
	return c, err
}
