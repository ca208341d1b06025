package persister

import (
	"context"
	"encoding/json"
	"time"

	"sjsage522/jobcrawler/internal/models"
	"sjsage522/jobcrawler/internal/store"
	"sjsage522/jobcrawler/logger"
	crawlerrors "sjsage522/jobcrawler/pkg/errors"
	"sjsage522/jobcrawler/services/publisher"
	"sjsage522/jobcrawler/services/summarizer"
)

// Store is the transactional side of the job store
type Store interface {
	WithBatch(ctx context.Context, fn func(store.JobTx) error) error
}

// Persister is the only writer of job records. It summarizes descriptions,
// drops duplicates and saves a run's jobs in one transaction.
type Persister struct {
	store      Store
	summarizer summarizer.Summarizer
	publisher  publisher.Publisher
	now        func() time.Time
}

// New creates a persister. summ and pub may be nil.
func New(st Store, summ summarizer.Summarizer, pub publisher.Publisher) *Persister {
	if pub == nil {
		pub = publisher.Nop{}
	}
	return &Persister{
		store:      st,
		summarizer: summ,
		publisher:  pub,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Persist saves jobs in order and returns how many records were created.
// Duplicates by URL or by title and company are skipped, including duplicates
// within jobs itself. A failing item is rolled back alone and logged.
func (p *Persister) Persist(ctx context.Context, jobs []models.ExtractedJob) int {
	log := logger.ForPersister()
	if len(jobs) == 0 {
		return 0
	}

	// summaries are computed before the transaction opens so a slow summarizer
	// does not hold the database
	summaries := make([]string, len(jobs))
	for i, job := range jobs {
		summaries[i] = p.summarize(ctx, job)
	}

	var created []*models.JobRecord
	err := p.store.WithBatch(ctx, func(tx store.JobTx) error {
		for i, job := range jobs {
			rec, out := p.saveOne(ctx, tx, job, summaries[i])
			switch out.Action {
			case crawlerrors.Proceed:
				created = append(created, rec)
				log.Info().Str("source", job.Source).Str("title", job.Title).Msg("Created job")
			case crawlerrors.Skip:
				if crawlerrors.Is(out.Err, crawlerrors.ErrorTypePersistenceConflict) {
					log.Info().Str("source", job.Source).Str("title", job.Title).Msg("Skipping duplicate job")
				} else {
					log.Error().Err(out.Err).Str("source", job.Source).Str("title", job.Title).Msg("Error saving job")
				}
			}
		}
		return nil
	})
	if err != nil {
		log.Error().Err(err).Int("jobs", len(jobs)).Msg("Batch transaction failed")
		return 0
	}

	p.publish(created)
	return len(created)
}

func (p *Persister) summarize(ctx context.Context, job models.ExtractedJob) string {
	if job.Description == "" || p.summarizer == nil {
		return ""
	}

	summary, err := p.summarizer.Summarize(ctx, job.Description)
	if err != nil {
		// the job is kept without a summary
		logger.ForPersister().Warn().
			Err(crawlerrors.NewSummarize(job.Source, job.Title, err)).
			Msg("Summarizer failed")
		return ""
	}
	return summary
}

func (p *Persister) saveOne(ctx context.Context, tx store.JobTx, job models.ExtractedJob, summary string) (*models.JobRecord, crawlerrors.Outcome) {
	exists, err := tx.JobExistsByURL(ctx, job.Link)
	if err != nil {
		return nil, crawlerrors.SkipWith(crawlerrors.NewStorage(job.Source, "check url", err))
	}
	if !exists {
		exists, err = tx.JobExistsByTitleCompany(ctx, job.Title, job.Company)
		if err != nil {
			return nil, crawlerrors.SkipWith(crawlerrors.NewStorage(job.Source, "check title and company", err))
		}
	}
	if exists {
		return nil, crawlerrors.SkipWith(crawlerrors.NewPersistenceConflict(job.Source, job.Link))
	}

	rec := &models.JobRecord{
		Title:         job.Title,
		Company:       job.Company,
		Location:      job.Location,
		OperatingMode: job.OperatingMode,
		Experience:    job.Experience,
		Salary:        job.Salary,
		Description:   job.Description,
		Skills:        job.Skills,
		Summary:       summary,
		URL:           job.Link,
		ScrapedDate:   p.now(),
		Source:        job.Source,
	}
	if rec.Skills == nil {
		rec.Skills = map[string]string{}
	}

	if err := tx.CreateJob(ctx, rec); err != nil {
		return nil, crawlerrors.SkipWith(crawlerrors.NewStorage(job.Source, "create job", err))
	}
	return rec, crawlerrors.Ok()
}

// publish announces created records. Failures are logged only, the records are already saved.
func (p *Persister) publish(records []*models.JobRecord) {
	for _, rec := range records {
		data, err := json.Marshal(rec)
		if err != nil {
			logger.LogError("persister", err, "marshal job %d", rec.ID)
			continue
		}
		if err := p.publisher.Publish(rec.Source, data); err != nil {
			logger.ForPublisher().Error().Err(err).Int64("id", rec.ID).Str("source", rec.Source).Msg("Failed to publish job")
		}
	}
}
