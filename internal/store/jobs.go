package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"sjsage522/jobcrawler/internal/models"
)

// JobTx is the view of the store a persister gets inside a batch
type JobTx interface {
	JobExistsByURL(ctx context.Context, url string) (bool, error)
	JobExistsByTitleCompany(ctx context.Context, title, company string) (bool, error)
	CreateJob(ctx context.Context, rec *models.JobRecord) error
}

// Batch is one transaction spanning a persister batch
type Batch struct {
	tx  *sql.Tx
	seq int
}

// WithBatch runs fn inside one transaction and commits when fn returns nil.
// Items created through Batch.CreateJob each run in their own savepoint, so a
// failing item is undone alone and the rest of the batch still commits.
func (s *Store) WithBatch(ctx context.Context, fn func(JobTx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin batch: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(&Batch{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}
	return nil
}

// JobExistsByURL sees jobs created earlier in the same batch
func (b *Batch) JobExistsByURL(ctx context.Context, url string) (bool, error) {
	return jobExistsByURL(ctx, b.tx, url)
}

// JobExistsByTitleCompany sees jobs created earlier in the same batch
func (b *Batch) JobExistsByTitleCompany(ctx context.Context, title, company string) (bool, error) {
	return jobExistsByTitleCompany(ctx, b.tx, title, company)
}

// CreateJob inserts rec inside a savepoint and sets rec.ID.
// A zero ScrapedDate is replaced by the current time.
func (b *Batch) CreateJob(ctx context.Context, rec *models.JobRecord) (err error) {
	b.seq++
	sp := fmt.Sprintf("job_%d", b.seq)
	if _, err := b.tx.ExecContext(ctx, "SAVEPOINT "+sp+";"); err != nil {
		return fmt.Errorf("savepoint: %w", err)
	}
	defer func() {
		if err != nil {
			if _, rbErr := b.tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT "+sp+";"); rbErr != nil {
				err = errors.Join(err, rbErr)
			}
		}
		_, _ = b.tx.ExecContext(ctx, "RELEASE SAVEPOINT "+sp+";")
	}()

	return insertJob(ctx, b.tx, rec)
}

func insertJob(ctx context.Context, q querier, rec *models.JobRecord) error {
	if rec.ScrapedDate.IsZero() {
		rec.ScrapedDate = time.Now().UTC()
	}
	skills := rec.Skills
	if skills == nil {
		skills = map[string]string{}
	}
	skillsJSON, err := json.Marshal(skills)
	if err != nil {
		return fmt.Errorf("marshal skills: %w", err)
	}

	res, err := q.ExecContext(ctx, `
INSERT INTO jobs (title, title_key, company, company_key, location, operating_mode,
                  experience, salary, description, skills, summary, url, scraped_date, source)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`,
		rec.Title, FoldKey(rec.Title),
		nullIfEmpty(rec.Company), FoldKey(rec.Company),
		nullIfEmpty(rec.Location),
		nullIfEmpty(rec.OperatingMode),
		nullIfEmpty(rec.Experience),
		nullIfEmpty(rec.Salary),
		rec.Description,
		string(skillsJSON),
		rec.Summary,
		rec.URL,
		rec.ScrapedDate.UTC().Format(timeLayout),
		rec.Source,
	)
	if err != nil {
		return fmt.Errorf("insert job: %w", err)
	}
	rec.ID, _ = res.LastInsertId()
	return nil
}

// CreateJob inserts a single job outside of a batch
func (s *Store) CreateJob(ctx context.Context, rec *models.JobRecord) error {
	return insertJob(ctx, s.db, rec)
}

// GetJobByURL returns the first job saved with url, or nil
func (s *Store) GetJobByURL(ctx context.Context, url string) (*models.JobRecord, error) {
	rows, err := s.db.QueryContext(ctx, selectJobs+` WHERE url = ? ORDER BY id LIMIT 1;`, url)
	if err != nil {
		return nil, err
	}
	jobs, err := scanJobs(rows)
	if err != nil || len(jobs) == 0 {
		return nil, err
	}
	return &jobs[0], nil
}

// CountJobs returns the number of saved jobs
func (s *Store) CountJobs(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM jobs;`).Scan(&n)
	return n, err
}

// JobFilter mirrors the filters the API layer offers on stored jobs
type JobFilter struct {
	Title         string // contains, case-insensitive
	Location      string // contains, case-insensitive
	Experience    string // exact
	OperatingMode string // exact
	Source        string // exact
	ScrapedAfter  time.Time
	Skills        []string // every name must be a key of skills
	Limit         int
}

// ListJobs returns saved jobs matching f, newest first
func (s *Store) ListJobs(ctx context.Context, f JobFilter) ([]models.JobRecord, error) {
	var where []string
	var args []any

	if f.Title != "" {
		where = append(where, "title LIKE ?")
		args = append(args, "%"+f.Title+"%")
	}
	if f.Location != "" {
		where = append(where, "location LIKE ?")
		args = append(args, "%"+f.Location+"%")
	}
	if f.Experience != "" {
		where = append(where, "experience = ?")
		args = append(args, f.Experience)
	}
	if f.OperatingMode != "" {
		where = append(where, "operating_mode = ?")
		args = append(args, f.OperatingMode)
	}
	if f.Source != "" {
		where = append(where, "source = ?")
		args = append(args, f.Source)
	}
	if !f.ScrapedAfter.IsZero() {
		where = append(where, "scraped_date > ?")
		args = append(args, f.ScrapedAfter.UTC().Format(timeLayout))
	}
	for _, skill := range f.Skills {
		where = append(where, "EXISTS (SELECT 1 FROM json_each(jobs.skills) WHERE json_each.key = ?)")
		args = append(args, skill)
	}

	query := selectJobs
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY scraped_date DESC, id DESC"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query+";", args...)
	if err != nil {
		return nil, err
	}
	return scanJobs(rows)
}

const selectJobs = `
SELECT id, title, company, location, operating_mode, experience, salary,
       description, skills, summary, url, scraped_date, source
FROM jobs`

func scanJobs(rows *sql.Rows) ([]models.JobRecord, error) {
	defer rows.Close()

	var out []models.JobRecord
	for rows.Next() {
		var j models.JobRecord
		var company, location, mode, experience, salary sql.NullString
		var skillsJSON, scraped string
		if err := rows.Scan(
			&j.ID,
			&j.Title,
			&company,
			&location,
			&mode,
			&experience,
			&salary,
			&j.Description,
			&skillsJSON,
			&j.Summary,
			&j.URL,
			&scraped,
			&j.Source,
		); err != nil {
			return nil, err
		}
		j.Company = company.String
		j.Location = location.String
		j.OperatingMode = mode.String
		j.Experience = experience.String
		j.Salary = salary.String
		_ = json.Unmarshal([]byte(skillsJSON), &j.Skills)
		j.ScrapedDate, _ = time.Parse(timeLayout, scraped)
		out = append(out, j)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func nullIfEmpty(s string) sql.NullString {
	s = strings.TrimSpace(s)
	return sql.NullString{String: s, Valid: s != ""}
}
