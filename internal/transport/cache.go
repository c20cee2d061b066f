package transport

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"
)

// DefaultRetention is how long cached responses stay valid.
const DefaultRetention = 6 * 24 * time.Hour

const lockRetryDelay = 50 * time.Millisecond

//go:embed migrations/*.sql
var migrationFS embed.FS

// Cache stores raw response bodies in a SQLite database.
type Cache struct {
	db        *sql.DB
	path      string
	retention time.Duration
	lock      *flock.Flock
	now       func() time.Time
}

// Entry is a cached response.
type Entry struct {
	Status   int
	Body     []byte
	StoredAt time.Time
}

// CacheStats summarises the cache contents.
type CacheStats struct {
	Entries int64
	Expired int64
	Oldest  time.Time
	Newest  time.Time
}

// OpenCache opens or creates the cache database at path. A non-positive
// retention uses DefaultRetention.
func OpenCache(ctx context.Context, path string, retention time.Duration) (*Cache, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("cache path required")
	}
	if retention <= 0 {
		retention = DefaultRetention
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	cache := &Cache{
		db:        db,
		path:      path,
		retention: retention,
		lock:      flock.New(path + ".lock"),
		now:       time.Now,
	}
	if err := cache.withLock(ctx, cache.applyMigrations); err != nil {
		_ = db.Close()
		return nil, err
	}
	return cache, nil
}

// Path returns the database location.
func (c *Cache) Path() string { return c.path }

// Retention returns how long entries stay valid.
func (c *Cache) Retention() time.Duration { return c.retention }

// Close closes the underlying database connection.
func (c *Cache) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Get returns the entry stored under key when it has not expired.
func (c *Cache) Get(ctx context.Context, key string) (Entry, bool, error) {
	row := c.db.QueryRowContext(ctx,
		"SELECT status, body, stored_at FROM responses WHERE key = ? AND stored_at >= ?",
		key, c.cutoff())
	var (
		entry    Entry
		storedAt int64
	)
	if err := row.Scan(&entry.Status, &entry.Body, &storedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Entry{}, false, nil
		}
		return Entry{}, false, fmt.Errorf("read cached response: %w", err)
	}
	entry.StoredAt = time.Unix(storedAt, 0)
	return entry, true, nil
}

// Put stores or replaces the entry under key.
func (c *Cache) Put(ctx context.Context, key, method, rawURL string, status int, body []byte) error {
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO responses (key, method, url, status, body, stored_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET
		   status = excluded.status,
		   body = excluded.body,
		   stored_at = excluded.stored_at`,
		key, method, rawURL, status, body, c.now().Unix())
	if err != nil {
		return fmt.Errorf("write cached response: %w", err)
	}
	return nil
}

// Prune deletes expired entries and returns how many were removed.
func (c *Cache) Prune(ctx context.Context) (int64, error) {
	var removed int64
	err := c.withLock(ctx, func(ctx context.Context) error {
		result, err := c.db.ExecContext(ctx, "DELETE FROM responses WHERE stored_at < ?", c.cutoff())
		if err != nil {
			return fmt.Errorf("prune cache: %w", err)
		}
		removed, _ = result.RowsAffected()
		return nil
	})
	return removed, err
}

// Clear deletes every entry and returns how many were removed.
func (c *Cache) Clear(ctx context.Context) (int64, error) {
	var removed int64
	err := c.withLock(ctx, func(ctx context.Context) error {
		result, err := c.db.ExecContext(ctx, "DELETE FROM responses")
		if err != nil {
			return fmt.Errorf("clear cache: %w", err)
		}
		removed, _ = result.RowsAffected()
		return nil
	})
	return removed, err
}

// Stats reports entry counts and the stored time range.
func (c *Cache) Stats(ctx context.Context) (CacheStats, error) {
	row := c.db.QueryRowContext(ctx,
		`SELECT COUNT(1),
		        COALESCE(SUM(CASE WHEN stored_at < ? THEN 1 ELSE 0 END), 0),
		        COALESCE(MIN(stored_at), 0),
		        COALESCE(MAX(stored_at), 0)
		 FROM responses`, c.cutoff())
	var (
		stats          CacheStats
		oldest, newest int64
	)
	if err := row.Scan(&stats.Entries, &stats.Expired, &oldest, &newest); err != nil {
		return CacheStats{}, fmt.Errorf("read cache stats: %w", err)
	}
	if stats.Entries > 0 {
		stats.Oldest = time.Unix(oldest, 0)
		stats.Newest = time.Unix(newest, 0)
	}
	return stats, nil
}

func (c *Cache) cutoff() int64 {
	return c.now().Add(-c.retention).Unix()
}

func (c *Cache) withLock(ctx context.Context, fn func(context.Context) error) error {
	ok, err := c.lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("acquire cache lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("acquire cache lock: %s is held by another process", c.lock.Path())
	}
	defer func() {
		_ = c.lock.Unlock()
	}()
	return fn(ctx)
}

type migration struct {
	version string
	sql     string
}

func loadMigrations() ([]migration, error) {
	entries, err := migrationFS.ReadDir("migrations")
	if err != nil {
		return nil, fmt.Errorf("read migrations dir: %w", err)
	}
	versions := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			versions = append(versions, entry.Name())
		}
	}
	sort.Strings(versions)

	migrations := make([]migration, 0, len(versions))
	for _, name := range versions {
		data, err := migrationFS.ReadFile("migrations/" + name)
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", name, err)
		}
		migrations = append(migrations, migration{version: strings.TrimSuffix(name, ".sql"), sql: string(data)})
	}
	return migrations, nil
}

func (c *Cache) applyMigrations(ctx context.Context) error {
	migrations, err := loadMigrations()
	if err != nil {
		return err
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, "CREATE TABLE IF NOT EXISTS schema_migrations (version TEXT PRIMARY KEY)"); err != nil {
		return fmt.Errorf("ensure schema_migrations: %w", err)
	}
	for _, m := range migrations {
		var count int
		if err := tx.QueryRowContext(ctx, "SELECT COUNT(1) FROM schema_migrations WHERE version = ?", m.version).Scan(&count); err != nil {
			return fmt.Errorf("scan migration version: %w", err)
		}
		if count > 0 {
			continue
		}
		if _, err := tx.ExecContext(ctx, m.sql); err != nil {
			return fmt.Errorf("apply migration %s: %w", m.version, err)
		}
		if _, err := tx.ExecContext(ctx, "INSERT INTO schema_migrations (version) VALUES (?)", m.version); err != nil {
			return fmt.Errorf("record migration %s: %w", m.version, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migrations: %w", err)
	}
	return nil
}

// cacheKeyHeaders are the request headers that change a response's content.
var cacheKeyHeaders = []string{"accept-language", "content-type"}

// CacheKey hashes the parts of a request that determine its response.
// Authorization and User-Agent never take part in the key, so a cached
// response is found before a session token exists.
func CacheKey(method, rawURL string, params url.Values, body []byte, headers map[string]string) string {
	h := xxhash.New()
	_, _ = h.WriteString(strings.ToUpper(method))
	_, _ = h.WriteString("\n")
	_, _ = h.WriteString(rawURL)
	_, _ = h.WriteString("\n")
	_, _ = h.WriteString(params.Encode())
	_, _ = h.WriteString("\n")
	_, _ = h.Write(body)
	_, _ = h.WriteString("\n")

	lowered := make(map[string]string, len(headers))
	for name, value := range headers {
		lowered[strings.ToLower(name)] = value
	}
	for _, name := range cacheKeyHeaders {
		if value, ok := lowered[name]; ok {
			_, _ = h.WriteString(name)
			_, _ = h.WriteString(":")
			_, _ = h.WriteString(value)
			_, _ = h.WriteString("\n")
		}
	}
	return strconv.FormatUint(h.Sum64(), 16)
}
