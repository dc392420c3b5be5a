package articles

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/agrihope/backend/internal/domain"
)

const selectArticles = `
SELECT id, title, COALESCE(content, ''), COALESCE(price, 0), COALESCE(discount, 0)
FROM articles
ORDER BY created_at DESC
LIMIT $1`

// PostgresSource reads knowledge articles from the marketplace database
type PostgresSource struct {
	db    *sql.DB
	limit int
}

// NewPostgresSource creates a source over an open database. limit bounds
// how many of the newest articles are loaded per request.
func NewPostgresSource(db *sql.DB, limit int) *PostgresSource {
	if limit <= 0 {
		limit = 50
	}
	return &PostgresSource{db: db, limit: limit}
}

// OpenDB opens a pgx-backed pool and verifies connectivity
func OpenDB(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

// EnsureSchema creates the articles table when missing
func (s *PostgresSource) EnsureSchema(ctx context.Context) error {
	const query = `
CREATE TABLE IF NOT EXISTS articles (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	content TEXT,
	price NUMERIC(10,2) DEFAULT 0,
	discount NUMERIC(5,2) DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_articles_created_at ON articles(created_at DESC);
`
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}
	return nil
}

// FetchAll returns the newest articles first
func (s *PostgresSource) FetchAll(ctx context.Context) ([]domain.Article, error) {
	rows, err := s.db.QueryContext(ctx, selectArticles, s.limit)
	if err != nil {
		return nil, fmt.Errorf("%w: query articles: %v", domain.ErrArticleSourceFailure, err)
	}
	defer rows.Close()

	var out []domain.Article
	for rows.Next() {
		var a domain.Article
		if err := rows.Scan(&a.ID, &a.Title, &a.Content, &a.Price, &a.Discount); err != nil {
			return nil, fmt.Errorf("%w: scan article: %v", domain.ErrArticleSourceFailure, err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate articles: %v", domain.ErrArticleSourceFailure, err)
	}

	return out, nil
}
