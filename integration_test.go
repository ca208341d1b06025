package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sjsage522/jobcrawler/config"
	"sjsage522/jobcrawler/helpers"
	"sjsage522/jobcrawler/internal/crawler"
	"sjsage522/jobcrawler/internal/models"
	"sjsage522/jobcrawler/internal/persister"
	"sjsage522/jobcrawler/internal/store"
	"sjsage522/jobcrawler/services/cache"
	"sjsage522/jobcrawler/services/summarizer"
	"sjsage522/jobcrawler/services/worker"
)

const listingsHTML = `
<!DOCTYPE html>
<html>
<body>
    <main class="offers">
        <article class="offer"><a href="/offers/1"><h2>Go Developer <small>new</small></h2></a></article>
        <article class="offer"><a href="/offers/2"><h2>Platform Engineer</h2></a></article>
    </main>
</body>
</html>
`

const detailHTML = `
<!DOCTYPE html>
<html>
<body>
    <h1 class="company">%s</h1>
    <span class="location">Remote, PL</span>
    <span class="experience">Senior</span>
    <div class="description">%s</div>
    <ul class="stack">
        <li class="skill"><b>Go</b><i>advanced</i></li>
        <li class="skill"><b>Terraform</b><i>regular</i></li>
    </ul>
</body>
</html>
`

// memoryCache implements cache.CacheService for testing
type memoryCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (m *memoryCache) Get(key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return nil, cache.ErrMiss
}

func (m *memoryCache) Set(key string, value []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *memoryCache) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// recordingPublisher keeps every published job
type recordingPublisher struct {
	mu   sync.Mutex
	jobs []models.JobRecord
}

func (p *recordingPublisher) Publish(_ string, message []byte) error {
	var rec models.JobRecord
	if err := json.Unmarshal(message, &rec); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.jobs = append(p.jobs, rec)
	return nil
}

func (p *recordingPublisher) TrimStreams() error { return nil }
func (p *recordingPublisher) Close() error       { return nil }

func TestIntegration(t *testing.T) {
	var mu sync.Mutex
	hits := map[string]int{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		hits[r.URL.Path]++
		mu.Unlock()

		if r.URL.Path == "/limited" {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		switch r.URL.Path {
		case "/offers":
			fmt.Fprint(w, listingsHTML)
		case "/offers/1":
			fmt.Fprintf(w, detailHTML, "Acme", "Write Go services. Operate them.")
		case "/offers/2":
			fmt.Fprintf(w, detailHTML, "Globex", "")
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	dir := t.TempDir()
	sourcesFile := filepath.Join(dir, "sources.yaml")
	require.NoError(t, os.WriteFile(sourcesFile, []byte(fmt.Sprintf(`
sources:
  - name: TestBoard
    listings_url: %[1]s/offers
    base_url: %[1]s
    request_limit: 5
    selectors:
      listings_container: main.offers
      listing: article.offer
      listing_title: h2
      skills_container: ul.stack
      skill_item: li.skill
      skill_name: b
      skill_level: i
    fields:
      company: h1.company
      location: span.location
      experience: span.experience
      description: div.description
  - name: Limited Board
    listings_url: %[1]s/limited
    base_url: %[1]s
    selectors:
      listings_container: main.offers
      listing: article.offer
      listing_title: h2
`, server.URL)), 0o644))

	cfg := &config.Config{
		DatabasePath:       filepath.Join(dir, "jobs.db"),
		SourcesFile:        sourcesFile,
		RequestLimit:       1,
		MaxParallelSources: 2,
	}
	sources, err := crawler.CreateSources(cfg)
	require.NoError(t, err)
	require.Len(t, sources, 2)

	st, err := store.Open(cfg.DatabasePath)
	require.NoError(t, err)
	defer st.Close()

	blockCache := &memoryCache{data: map[string][]byte{}}
	pub := &recordingPublisher{}
	c := crawler.New(
		crawler.NewHTTPFetcher(helpers.NewClient(5*time.Second), blockCache, time.Minute),
		st,
		persister.New(st, summarizer.NewExtractive(1, 100), pub),
		5*time.Millisecond,
	)
	w := worker.NewWorker(c, sources, pub, time.Hour, cfg.MaxParallelSources)

	// First pass: TestBoard saves both offers, Limited Board answers 429
	saved := w.RunOnce(context.Background())
	assert.Equal(t, 2, saved)

	ctx := context.Background()
	rec, err := st.GetJobByURL(ctx, server.URL+"/offers/1")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "Go Developer", rec.Title)
	assert.Equal(t, "Acme", rec.Company)
	assert.Equal(t, "Write Go services.", rec.Summary)
	assert.Equal(t, "TestBoard", rec.Source)
	assert.Equal(t, map[string]string{"Go": "advanced", "Terraform": "regular"}, rec.Skills)

	rec, err = st.GetJobByURL(ctx, server.URL+"/offers/2")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "", rec.Summary)

	pub.mu.Lock()
	assert.Len(t, pub.jobs, 2)
	pub.mu.Unlock()

	// the rate limited board got blocked
	_, err = blockCache.Get(crawler.CacheKey("Limited Board"))
	assert.NoError(t, err)

	// Second pass: nothing new, no detail page is fetched again and the blocked
	// board is not asked at all
	assert.Equal(t, 0, w.RunOnce(context.Background()))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, hits["/offers/1"])
	assert.Equal(t, 1, hits["/offers/2"])
	assert.Equal(t, 1, hits["/limited"])
	assert.Equal(t, 2, hits["/offers"])
}
