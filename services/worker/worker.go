package worker

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"sjsage522/jobcrawler/internal/crawler"
	"sjsage522/jobcrawler/logger"
	"sjsage522/jobcrawler/services/publisher"
)

// Runner runs one source and returns the number of jobs saved
type Runner interface {
	Run(ctx context.Context, adapter crawler.SiteAdapter, listingsURL string, requestLimit int) int
}

// Worker handles the crawling passes over all configured sources
type Worker struct {
	runner        Runner
	sources       []crawler.Source
	publisher     publisher.Publisher
	crawlInterval time.Duration
	parallel      int
}

// NewWorker creates a new worker. parallel caps how many sources run at once.
func NewWorker(
	runner Runner,
	sources []crawler.Source,
	pub publisher.Publisher,
	crawlInterval time.Duration,
	parallel int,
) *Worker {
	if pub == nil {
		pub = publisher.Nop{}
	}
	if parallel <= 0 {
		parallel = 1
	}
	return &Worker{
		runner:        runner,
		sources:       sources,
		publisher:     pub,
		crawlInterval: crawlInterval,
		parallel:      parallel,
	}
}

// Start runs a pass every crawl interval until ctx is cancelled
func (w *Worker) Start(ctx context.Context) error {
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-timer.C:
		}

		w.RunOnce(ctx)
		timer.Reset(w.crawlInterval)
	}
}

// RunOnce runs every source once, each in its own independent run, and then
// trims the streams. It returns the total number of saved jobs.
func (w *Worker) RunOnce(ctx context.Context) int {
	log := logger.ForWorker()
	start := time.Now()

	var total atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.parallel)

	for _, src := range w.sources {
		src := src
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			saved := w.runner.Run(gctx, src.Adapter, src.ListingsURL, src.RequestLimit)
			total.Add(int64(saved))
			return nil
		})
	}
	_ = g.Wait()

	// Trim all streams after crawling
	if err := w.publisher.TrimStreams(); err != nil {
		logger.LogError("worker", err, "Failed to trim streams")
	}

	log.Info().
		Int("sources", len(w.sources)).
		Int64("saved", total.Load()).
		Dur("elapsed", time.Since(start)).
		Msg("Crawl pass finished")

	return int(total.Load())
}
