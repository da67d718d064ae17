package analytics

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

const timeLayout = "2006-01-02 15:04:05"

// Store provides database operations for analytics.
type Store struct {
	db *sql.DB
}

// NewStore opens (and creates if needed) the analytics SQLite database.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open analytics db: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}

	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS hits (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			link_id TEXT NOT NULL,
			visitor_id TEXT NOT NULL,
			ip_hash TEXT NOT NULL,
			crawler INTEGER NOT NULL DEFAULT 0,
			crawler_name TEXT NOT NULL DEFAULT '',
			browser TEXT NOT NULL DEFAULT '',
			os TEXT NOT NULL DEFAULT '',
			device TEXT NOT NULL DEFAULT '',
			referrer TEXT NOT NULL DEFAULT '',
			timestamp TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_hits_timestamp ON hits(timestamp);
		CREATE INDEX IF NOT EXISTS idx_hits_link_id ON hits(link_id);
		CREATE INDEX IF NOT EXISTS idx_hits_crawler ON hits(crawler);

		CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`)
	return err
}

// GetSetting retrieves a setting value by key. Returns empty string if not found.
func (s *Store) GetSetting(key string) (string, error) {
	var val string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&val)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return val, err
}

// SetSetting stores a setting value by key (upsert).
func (s *Store) SetSetting(key, value string) error {
	_, err := s.db.Exec(`INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	return err
}

// Record stores a hit.
func (s *Store) Record(ctx context.Context, h Hit) error {
	crawler := 0
	if h.Crawler {
		crawler = 1
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO hits
		(link_id, visitor_id, ip_hash, crawler, crawler_name, browser, os, device, referrer, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		h.LinkID, h.VisitorID, h.IPHash, crawler, h.CrawlerName,
		h.Browser, h.OS, h.Device, h.Referrer, h.Timestamp.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("record hit: %w", err)
	}
	return nil
}

// GetStats returns aggregated statistics for [from, to). Human and crawler
// hits are counted separately; views only count humans.
func (s *Store) GetStats(ctx context.Context, from, to time.Time, hourly, monthly bool) (*Stats, error) {
	f, t := from.UTC().Format(timeLayout), to.UTC().Format(timeLayout)
	stats := &Stats{
		Period:     from.Format("2006-01-02") + " to " + to.Format("2006-01-02"),
		TopLinks:   []LinkStat{},
		Crawlers:   []DimensionStat{},
		Browsers:   []DimensionStat{},
		Devices:    []DimensionStat{},
		Referrers:  []DimensionStat{},
		DailyViews: []DailyView{},
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	var firstErr error

	setErr := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
	}

	count := func(dst *int, what, query string) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var n int
			if err := s.db.QueryRowContext(ctx, query, f, t).Scan(&n); err != nil {
				setErr(fmt.Errorf("%s: %w", what, err))
				return
			}
			mu.Lock()
			*dst = n
			mu.Unlock()
		}()
	}
	dimension := func(dst *[]DimensionStat, what, column string, crawler int) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rows, err := s.namedCounts(ctx, `SELECT `+column+`, COUNT(*) FROM hits
				WHERE timestamp >= ? AND timestamp < ? AND crawler = ?
				GROUP BY `+column+` ORDER BY COUNT(*) DESC LIMIT 10`, f, t, crawler)
			if err != nil {
				setErr(fmt.Errorf("%s: %w", what, err))
				return
			}
			result := make([]DimensionStat, len(rows))
			for i, r := range rows {
				result[i] = DimensionStat{Name: r.name, Count: r.count}
			}
			mu.Lock()
			*dst = result
			mu.Unlock()
		}()
	}

	count(&stats.TotalViews, "count views",
		`SELECT COUNT(*) FROM hits WHERE timestamp >= ? AND timestamp < ? AND crawler = 0`)
	count(&stats.UniqueVisitors, "count unique visitors",
		`SELECT COUNT(DISTINCT visitor_id) FROM hits WHERE timestamp >= ? AND timestamp < ? AND crawler = 0`)
	count(&stats.CrawlerHits, "count crawler hits",
		`SELECT COUNT(*) FROM hits WHERE timestamp >= ? AND timestamp < ? AND crawler = 1`)

	dimension(&stats.Crawlers, "crawler stats", "crawler_name", 1)
	dimension(&stats.Browsers, "browser stats", "browser", 0)
	dimension(&stats.Devices, "device stats", "device", 0)
	dimension(&stats.Referrers, "referrer stats", "referrer", 0)

	// Top links
	wg.Add(1)
	go func() {
		defer wg.Done()
		rows, err := s.namedCounts(ctx, `SELECT link_id, COUNT(*) FROM hits
			WHERE timestamp >= ? AND timestamp < ? AND crawler = 0
			GROUP BY link_id ORDER BY COUNT(*) DESC LIMIT 10`, f, t)
		if err != nil {
			setErr(fmt.Errorf("top links: %w", err))
			return
		}
		links := make([]LinkStat, len(rows))
		for i, r := range rows {
			links[i] = LinkStat{LinkID: r.name, Views: r.count}
		}
		mu.Lock()
		stats.TopLinks = links
		mu.Unlock()
	}()

	// Daily/hourly/monthly views
	wg.Add(1)
	go func() {
		defer wg.Done()
		bucket := "%Y-%m-%d"
		if hourly {
			bucket = "%H:00"
		} else if monthly {
			bucket = "%Y-%m"
		}
		rows, err := s.namedCounts(ctx, `SELECT strftime('`+bucket+`', timestamp) AS d, COUNT(*) FROM hits
			WHERE timestamp >= ? AND timestamp < ? AND crawler = 0
			GROUP BY d ORDER BY MIN(timestamp)`, f, t)
		if err != nil {
			setErr(fmt.Errorf("views over time: %w", err))
			return
		}
		result := make([]DailyView, len(rows))
		for i, r := range rows {
			result[i] = DailyView{Date: r.name, Views: r.count}
		}
		mu.Lock()
		stats.DailyViews = result
		mu.Unlock()
	}()

	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return stats, nil
}

type namedCount struct {
	name  string
	count int
}

func (s *Store) namedCounts(ctx context.Context, query string, args ...any) ([]namedCount, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []namedCount
	for rows.Next() {
		var r namedCount
		if err := rows.Scan(&r.name, &r.count); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// LinkViews returns the number of human hits recorded for linkID.
func (s *Store) LinkViews(ctx context.Context, linkID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM hits WHERE link_id = ? AND crawler = 0`, linkID).Scan(&n)
	return n, err
}

// RealtimeVisitors returns the number of unique visitors in the last 5 minutes.
func (s *Store) RealtimeVisitors(ctx context.Context) (int, error) {
	cutoff := time.Now().UTC().Add(-5 * time.Minute).Format(timeLayout)
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT visitor_id) FROM hits WHERE timestamp >= ? AND crawler = 0`, cutoff).Scan(&n)
	return n, err
}

// CleanupOldHits removes hits older than the retention period.
func (s *Store) CleanupOldHits(retentionDays int) error {
	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays).Format(timeLayout)
	if _, err := s.db.Exec(`DELETE FROM hits WHERE timestamp < ?`, cutoff); err != nil {
		return fmt.Errorf("cleanup hits: %w", err)
	}
	return nil
}

// StartCleanupScheduler runs periodic cleanup of old data. Returns a stop function.
func (s *Store) StartCleanupScheduler(retentionDays int, interval time.Duration) func() {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})
	var once sync.Once

	go func() {
		for {
			select {
			case <-ticker.C:
				if err := s.CleanupOldHits(retentionDays); err != nil {
					log.Printf("analytics: %v", err)
				}
			case <-done:
				ticker.Stop()
				return
			}
		}
	}()

	return func() { once.Do(func() { close(done) }) }
}
