package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	// Test with default values
	config := LoadConfig()
	assert.Equal(t, "./data", config.DataDir)
	assert.Equal(t, filepath.Join("data", "jobs.db"), filepath.Clean(config.DatabasePath))
	assert.Equal(t, 20, config.RequestLimit)
	assert.Equal(t, time.Second, config.RequestDelay)
	assert.Equal(t, 30*time.Second, config.FetchTimeout)
	assert.Equal(t, time.Hour, config.CrawlInterval)
	assert.Equal(t, 2, config.MaxParallelSources)
	assert.Equal(t, 500*time.Second, config.BlockTime)
	assert.Equal(t, "", config.MemcacheAddr)
	assert.Equal(t, "", config.RedisAddr)
	assert.Equal(t, "jobs", config.RedisStream)
	assert.Equal(t, 1, config.RedisStreamCount)
	assert.Equal(t, "extractive", config.Summarizer)
	assert.Equal(t, DefaultNoFluffJobsURL, config.NoFluffJobsURL)
	assert.False(t, config.RunOnce)
	assert.NoError(t, config.Validate())

	// Test with environment variables
	t.Setenv("DATA_DIR", "/var/lib/jobcrawler")
	t.Setenv("REDIS_ADDR", "redis.example.com:6379")
	t.Setenv("REDIS_DB", "1")
	t.Setenv("MEMCACHE_ADDR", "memcache.example.com:11211")
	t.Setenv("CRAWL_INTERVAL_SECONDS", "30")
	t.Setenv("REQUEST_DELAY_MS", "250")
	t.Setenv("RUN_ONCE", "true")
	t.Setenv("JUSTJOINIT_URL", "")

	config = LoadConfig()
	assert.Equal(t, "/var/lib/jobcrawler/jobs.db", config.DatabasePath)
	assert.Equal(t, "redis.example.com:6379", config.RedisAddr)
	assert.Equal(t, 1, config.RedisDB)
	assert.Equal(t, "memcache.example.com:11211", config.MemcacheAddr)
	assert.Equal(t, 30*time.Second, config.CrawlInterval)
	assert.Equal(t, 250*time.Millisecond, config.RequestDelay)
	assert.True(t, config.RunOnce)
	assert.Equal(t, "", config.JustJoinITURL, "set but empty disables the source")
}

func TestLoadConfigIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("REQUEST_LIMIT", "many")
	assert.Equal(t, 20, LoadConfig().RequestLimit)
}

func TestValidate(t *testing.T) {
	cfg := LoadConfig()
	cfg.Summarizer = "llm"
	assert.ErrorContains(t, cfg.Validate(), "SUMMARIZER_API_KEY")

	cfg = LoadConfig()
	cfg.Summarizer = "magic"
	assert.ErrorContains(t, cfg.Validate(), "unknown SUMMARIZER")

	cfg = LoadConfig()
	cfg.MaxParallelSources = 0
	cfg.FetchTimeout = 0
	err := cfg.Validate()
	assert.ErrorContains(t, err, "MAX_PARALLEL_SOURCES")
	assert.ErrorContains(t, err, "FETCH_TIMEOUT_SECONDS")
}

func TestLoadSources(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sources.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
sources:
  - name: ExampleJobs
    listings_url: https://jobs.example.com/go
    base_url: https://jobs.example.com
    request_limit: 5
    sectioned: true
    selectors:
      listings_container: ul.offers
      listing: li
      listing_title: h3
      skills_container: section.skills
      required_skills: div.must
      nice_to_have_skills: div.nice
      skill_item: li
    fields:
      company: .company
      description: article
`), 0o644))

	sources, err := LoadSources(path)
	require.NoError(t, err)
	require.Len(t, sources, 1)
	assert.Equal(t, "ExampleJobs", sources[0].Name)
	assert.Equal(t, 5, sources[0].RequestLimit)
	assert.True(t, sources[0].Sectioned)
	assert.Equal(t, "div.nice", sources[0].Selectors.NiceToHaveSkills)
	assert.Equal(t, ".company", sources[0].Fields.Company)
}

func TestLoadSourcesRejectsIncompleteEntries(t *testing.T) {
	dir := t.TempDir()

	cases := map[string]string{
		"missing name":     "sources:\n  - listings_url: https://x\n",
		"missing url":      "sources:\n  - name: A\n",
		"missing selector": "sources:\n  - name: A\n    listings_url: https://x\n",
		"duplicate name": `sources:
  - {name: A, listings_url: "https://x", selectors: {listings_container: a, listing: b, listing_title: c}}
  - {name: A, listings_url: "https://y", selectors: {listings_container: a, listing: b, listing_title: c}}
`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, "sources.yaml")
			require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
			_, err := LoadSources(path)
			assert.Error(t, err)
		})
	}

	_, err := LoadSources(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
