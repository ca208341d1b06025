package crawler

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sjsage522/jobcrawler/config"
)

func TestCreateSourcesBuiltins(t *testing.T) {
	cfg := &config.Config{
		RequestLimit:   7,
		NoFluffJobsURL: "https://nofluffjobs.com/pl/golang",
		JustJoinITURL:  "",
	}

	sources, err := CreateSources(cfg)
	require.NoError(t, err)
	require.Len(t, sources, 1)
	assert.Equal(t, "NoFluffJobs", sources[0].Adapter.Name())
	assert.Equal(t, "https://nofluffjobs.com/pl/golang", sources[0].ListingsURL)
	assert.Equal(t, 7, sources[0].RequestLimit)
}

func TestCreateSourcesFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sources.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
sources:
  - name: ExampleJobs
    listings_url: https://jobs.example.com/go
    base_url: https://jobs.example.com
    selectors:
      listings_container: ul.offers
      listing: li
      listing_title: h3
      skills_container: div.stack
      skill_item: div.item
      skill_name: h4
      skill_level: span
    fields:
      company: .company
  - name: LimitedJobs
    listings_url: https://limited.example.com
    request_limit: 3
    selectors: {listings_container: main, listing: article, listing_title: h2}
`), 0o644))

	cfg := &config.Config{
		RequestLimit:  20,
		JustJoinITURL: config.DefaultJustJoinITURL,
		SourcesFile:   path,
	}

	sources, err := CreateSources(cfg)
	require.NoError(t, err)
	require.Len(t, sources, 3)
	assert.Equal(t, "JustJoinIT", sources[0].Adapter.Name())
	assert.Equal(t, "ExampleJobs", sources[1].Adapter.Name())
	assert.Equal(t, 20, sources[1].RequestLimit)
	assert.False(t, sources[1].Adapter.HasSkillSections())
	assert.Equal(t, "LimitedJobs", sources[2].Adapter.Name())
	assert.Equal(t, 3, sources[2].RequestLimit)

	doc := docFrom(t, `
		<ul class="offers"><li><a href="/o/1"><h3>Go Developer</h3></a></li></ul>
		<div class="company">Acme</div>
		<div class="stack"><div class="item"><h4>Go</h4><span>senior</span></div></div>`)
	adapter := sources[1].Adapter
	stub, ok := adapter.ListingTitleAndLink(adapter.Listings(adapter.ListingsContainers(doc)).First())
	require.True(t, ok)
	assert.Equal(t, "https://jobs.example.com/o/1", stub.Link)
	assert.Equal(t, "Acme", adapter.Company(doc))
	assert.Equal(t, map[string]string{"Go": "senior"}, ExtractSkills(adapter, doc, ""))
}

func TestCreateSourcesRejectsNameClash(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sources.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
sources:
  - name: NoFluffJobs
    listings_url: https://example.com
    selectors: {listings_container: main, listing: article, listing_title: h2}
`), 0o644))

	_, err := CreateSources(&config.Config{
		NoFluffJobsURL: config.DefaultNoFluffJobsURL,
		SourcesFile:    path,
	})
	assert.Error(t, err)
}
