package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"

	"sjsage522/jobcrawler/internal/models"
)

// querier is satisfied by both *sql.DB and *sql.Tx
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// FoldKey is the dedup key used for case-insensitive title and company matches.
// Empty and absent values fold to the same key.
func FoldKey(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

// HasBeenRequested reports whether a detail request was already issued for url
func (s *Store) HasBeenRequested(ctx context.Context, url string) (bool, error) {
	return exists(ctx, s.db, `SELECT 1 FROM requested WHERE url = ? LIMIT 1;`, url)
}

// MarkRequested records that a detail request is being issued for url.
// Marking the same url twice keeps the first mark.
func (s *Store) MarkRequested(ctx context.Context, url, title string) error {
	_, err := s.db.ExecContext(ctx, `
INSERT OR IGNORE INTO requested (url, title, requested_at)
VALUES (?, ?, ?);`,
		url, title, time.Now().UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("mark requested: %w", err)
	}
	return nil
}

// GetRequested returns the mark for url, or nil when there is none
func (s *Store) GetRequested(ctx context.Context, url string) (*models.RequestedMark, error) {
	var m models.RequestedMark
	var ts string
	err := s.db.QueryRowContext(ctx, `SELECT url, title, requested_at FROM requested WHERE url = ?;`, url).
		Scan(&m.URL, &m.Title, &ts)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	m.Timestamp, _ = time.Parse(timeLayout, ts)
	return &m, nil
}

// CountRequested returns the number of requested marks
func (s *Store) CountRequested(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM requested;`).Scan(&n)
	return n, err
}

// JobExistsByURL reports whether a job with url was already saved
func (s *Store) JobExistsByURL(ctx context.Context, url string) (bool, error) {
	return jobExistsByURL(ctx, s.db, url)
}

// JobExistsByTitleCompany reports whether a job with the same title and company
// (case-insensitive) was already saved
func (s *Store) JobExistsByTitleCompany(ctx context.Context, title, company string) (bool, error) {
	return jobExistsByTitleCompany(ctx, s.db, title, company)
}

func jobExistsByURL(ctx context.Context, q querier, url string) (bool, error) {
	return exists(ctx, q, `SELECT 1 FROM jobs WHERE url = ? LIMIT 1;`, url)
}

func jobExistsByTitleCompany(ctx context.Context, q querier, title, company string) (bool, error) {
	return exists(ctx, q, `
SELECT 1 FROM jobs
WHERE title_key = ? AND company_key = ?
LIMIT 1;`, FoldKey(title), FoldKey(company))
}

func exists(ctx context.Context, q querier, query string, args ...any) (bool, error) {
	var one int
	err := q.QueryRowContext(ctx, query, args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
