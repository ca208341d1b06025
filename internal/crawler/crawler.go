package crawler

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"

	"sjsage522/jobcrawler/internal/models"
	"sjsage522/jobcrawler/logger"
	crawlerrors "sjsage522/jobcrawler/pkg/errors"
)

// Crawler drives one source through fetch, discovery, detail extraction and
// persistence. A Crawler holds no per-run state and may run several sources
// at once; everything a run mutates lives in that run.
type Crawler struct {
	fetcher   Fetcher
	seen      SeenStore
	persister Persister
	minDelay  time.Duration
}

// New creates a crawler. minDelay is the pause between detail page requests.
func New(fetcher Fetcher, seen SeenStore, persister Persister, minDelay time.Duration) *Crawler {
	return &Crawler{
		fetcher:   fetcher,
		seen:      seen,
		persister: persister,
		minDelay:  minDelay,
	}
}

var defaultCrawler atomic.Pointer[Crawler]

// SetDefault installs the crawler used by RunCrawl
func SetDefault(c *Crawler) {
	defaultCrawler.Store(c)
}

// RunCrawl runs adapter with the default crawler and returns the number of saved jobs
func RunCrawl(ctx context.Context, adapter SiteAdapter, listingsURL string, requestLimit int) int {
	c := defaultCrawler.Load()
	if c == nil {
		logger.ForCrawler(adapter.Name()).Error().Msg("No default crawler configured")
		return 0
	}
	return c.Run(ctx, adapter, listingsURL, requestLimit)
}

// runStats is reported once at the end of every run
type runStats struct {
	discovered      int
	skipped         int
	fetched         int
	failed          int
	budgetExhausted bool
	saved           int
}

// run is the state of a single Run call
type run struct {
	*Crawler
	adapter  SiteAdapter
	log      *logger.Logger
	throttle *Throttle
	stats    runStats
}

// Run crawls one source and returns the number of jobs saved. Failures are
// logged at the smallest scope possible; only a failed listings fetch ends the
// run early, with 0.
func (c *Crawler) Run(ctx context.Context, adapter SiteAdapter, listingsURL string, requestLimit int) int {
	start := time.Now()
	r := &run{
		Crawler:  c,
		adapter:  adapter,
		log:      logger.ForCrawler(adapter.Name()).WithField("run_id", uuid.NewString()),
		throttle: NewThrottle(requestLimit, c.minDelay),
	}
	defer r.summarize(start)

	doc, out := r.fetchListings(ctx, listingsURL)
	if out.Action == crawlerrors.Abort {
		r.log.Error().Err(out.Err).Str("url", listingsURL).Msg("Listings fetch failed, aborting run")
		return 0
	}

	stubs, containers := r.discover(doc)
	if containers == 0 {
		r.log.Warn().Str("url", listingsURL).Msg("No job listings found on the page")
		return 0
	}
	r.stats.discovered = len(stubs)

	var jobs []models.ExtractedJob
loop:
	for _, stub := range stubs {
		job, out := r.processStub(ctx, stub)
		switch out.Action {
		case crawlerrors.Proceed:
			jobs = append(jobs, job)
		case crawlerrors.Skip:
			if out.Err != nil {
				r.stats.failed++
				r.log.Warn().Err(out.Err).Str("title", stub.Title).Str("url", stub.Link).Msg("Skipping listing")
			} else {
				r.stats.skipped++
			}
		case crawlerrors.Stop:
			r.log.Info().Err(out.Err).Msg("Stopping detail fetches")
			break loop
		case crawlerrors.Abort:
			r.log.Error().Err(out.Err).Msg("Aborting run")
			return 0
		}
	}

	if len(jobs) == 0 {
		return 0
	}

	// persist what was collected even when the run was cancelled mid-loop
	r.stats.saved = c.persister.Persist(context.WithoutCancel(ctx), jobs)
	return r.stats.saved
}

func (r *run) fetchListings(ctx context.Context, url string) (*goquery.Document, crawlerrors.Outcome) {
	body, err := r.fetcher.FetchListings(ctx, r.adapter.Name(), url)
	if err != nil {
		return nil, crawlerrors.AbortWith(crawlerrors.NewFatalFetch(r.adapter.Name(), "fetch listings page", err))
	}

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, crawlerrors.AbortWith(crawlerrors.NewFatalFetch(r.adapter.Name(), "parse listings page", err))
	}
	return doc, crawlerrors.Ok()
}

// discover returns the listing stubs in discovery order together with the number
// of containers found. Stubs are keyed by title: a repeated title keeps the
// position of its first occurrence and takes the link of its last one.
func (r *run) discover(doc *goquery.Document) ([]models.ListingStub, int) {
	containers := r.safeSelection(func() *goquery.Selection { return r.adapter.ListingsContainers(doc) })
	if containers.Length() == 0 {
		return nil, 0
	}

	var stubs []models.ListingStub
	index := make(map[string]int)

	containers.Each(func(i int, container *goquery.Selection) {
		listings := r.safeSelection(func() *goquery.Selection { return r.adapter.Listings(container) })
		listings.Each(func(_ int, listing *goquery.Selection) {
			stub, out := r.stubOf(listing)
			if out.Action != crawlerrors.Proceed {
				if out.Err != nil {
					r.log.Warn().Err(out.Err).Int("container", i).Msg("Skipping listing")
				}
				return
			}

			if pos, dup := index[stub.Title]; dup {
				stubs[pos].Link = stub.Link
				return
			}
			index[stub.Title] = len(stubs)
			stubs = append(stubs, stub)
		})
	})

	return stubs, containers.Length()
}

func (r *run) stubOf(listing *goquery.Selection) (stub models.ListingStub, out crawlerrors.Outcome) {
	defer func() {
		if p := recover(); p != nil {
			out = crawlerrors.SkipWith(crawlerrors.NewParsing(r.adapter.Name(), "extract listing", fmt.Errorf("%v", p)))
		}
	}()

	stub, ok := r.adapter.ListingTitleAndLink(listing)
	if !ok {
		return stub, crawlerrors.SkipWith(nil)
	}
	return stub, crawlerrors.Ok()
}

// safeSelection runs an adapter lookup, turning a panic into an empty selection
func (r *run) safeSelection(fn func() *goquery.Selection) (sel *goquery.Selection) {
	defer func() {
		if p := recover(); p != nil {
			r.log.Error().Interface("panic", p).Msg("Adapter failed to locate elements")
			sel = &goquery.Selection{}
		}
	}()

	sel = fn()
	if sel == nil {
		sel = &goquery.Selection{}
	}
	return sel
}

// processStub runs the seen, budget, fetch and extract stages for one listing
func (r *run) processStub(ctx context.Context, stub models.ListingStub) (models.ExtractedJob, crawlerrors.Outcome) {
	if out := r.checkSeen(ctx, stub); out.Action != crawlerrors.Proceed {
		return models.ExtractedJob{}, out
	}

	doc, out := r.fetchDetail(ctx, stub)
	if out.Action != crawlerrors.Proceed {
		return models.ExtractedJob{}, out
	}

	return r.extract(doc, stub)
}

func (r *run) checkSeen(ctx context.Context, stub models.ListingStub) crawlerrors.Outcome {
	exists, err := r.seen.JobExistsByURL(ctx, stub.Link)
	if err != nil {
		return crawlerrors.SkipWith(crawlerrors.NewStorage(r.adapter.Name(), "check saved jobs", err))
	}
	if exists {
		r.log.Debug().Str("url", stub.Link).Msg("Job already saved")
		return crawlerrors.SkipWith(nil)
	}

	requested, err := r.seen.HasBeenRequested(ctx, stub.Link)
	if err != nil {
		return crawlerrors.SkipWith(crawlerrors.NewStorage(r.adapter.Name(), "check requested marks", err))
	}
	if requested {
		r.log.Debug().Str("url", stub.Link).Msg("Detail page already requested")
		return crawlerrors.SkipWith(nil)
	}
	return crawlerrors.Ok()
}

func (r *run) fetchDetail(ctx context.Context, stub models.ListingStub) (*goquery.Document, crawlerrors.Outcome) {
	granted, err := r.throttle.TryAcquire(ctx)
	if err != nil {
		return nil, crawlerrors.StopWith(err)
	}
	if !granted {
		r.stats.budgetExhausted = true
		return nil, crawlerrors.StopWith(crawlerrors.NewBudgetExhausted(r.adapter.Name(), r.throttle.Limit()))
	}

	// the mark is written before the request so a failed fetch is not retried next run
	if err := r.seen.MarkRequested(ctx, stub.Link, stub.Title); err != nil {
		r.log.Error().Err(err).Str("url", stub.Link).Msg("Failed to mark detail page as requested")
	}

	body, err := r.fetcher.FetchDetail(ctx, stub.Link)
	if err != nil {
		return nil, crawlerrors.SkipWith(crawlerrors.NewFetch(r.adapter.Name(), "fetch detail page", err))
	}
	r.stats.fetched++
	r.log.Info().Str("title", stub.Title).Msg("Requested")

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, crawlerrors.SkipWith(crawlerrors.NewParsing(r.adapter.Name(), "parse detail page", err))
	}
	return doc, crawlerrors.Ok()
}

func (r *run) extract(doc *goquery.Document, stub models.ListingStub) (job models.ExtractedJob, out crawlerrors.Outcome) {
	defer func() {
		if p := recover(); p != nil {
			job = models.ExtractedJob{}
			out = crawlerrors.SkipWith(crawlerrors.NewParsing(r.adapter.Name(), "extract job details", fmt.Errorf("%v", p)))
		}
	}()

	experience := r.adapter.Experience(doc)
	job = models.ExtractedJob{
		Title:         stub.Title,
		Company:       r.adapter.Company(doc),
		Location:      r.adapter.Location(doc),
		OperatingMode: r.adapter.OperatingMode(doc),
		Experience:    experience,
		Salary:        r.adapter.Salary(doc),
		Description:   r.adapter.Description(doc),
		Skills:        ExtractSkills(r.adapter, doc, experience),
		Link:          stub.Link,
		Source:        r.adapter.Name(),
	}
	return job, crawlerrors.Ok()
}

func (r *run) summarize(start time.Time) {
	r.log.Info().
		Int("discovered", r.stats.discovered).
		Int("skipped", r.stats.skipped).
		Int("fetched", r.stats.fetched).
		Int("failed", r.stats.failed).
		Int("requests", r.throttle.Issued()).
		Bool("budget_exhausted", r.stats.budgetExhausted).
		Int("saved", r.stats.saved).
		Dur("duration", time.Since(start)).
		Msg("Crawl run finished")
}
