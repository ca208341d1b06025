package crawler

import (
	"context"
	"io"

	"github.com/PuerkitoBio/goquery"

	"sjsage522/jobcrawler/internal/models"
)

// SiteAdapter is the per-site extraction strategy. Every method is a pure query
// over an already parsed document. An empty selection, an empty string or a false
// ok flag means "absent"; none of them is an error.
type SiteAdapter interface {
	// Name is recorded as the source of every job the adapter produces
	Name() string

	ListingsContainers(doc *goquery.Document) *goquery.Selection
	Listings(container *goquery.Selection) *goquery.Selection
	// ListingTitleAndLink returns false when the listing has no title text
	ListingTitleAndLink(listing *goquery.Selection) (models.ListingStub, bool)

	Company(doc *goquery.Document) string
	Location(doc *goquery.Document) string
	OperatingMode(doc *goquery.Document) string
	Experience(doc *goquery.Document) string
	Salary(doc *goquery.Document) string
	Description(doc *goquery.Document) string

	// HasSkillSections selects sectioned (required / nice to have) or flat skill extraction
	HasSkillSections() bool
	SkillsContainer(doc *goquery.Document) *goquery.Selection
	SkillItems(section *goquery.Selection) *goquery.Selection

	// Sectioned mode
	RequiredSkillsSection(container *goquery.Selection) *goquery.Selection
	NiceToHaveSection(container *goquery.Selection) *goquery.Selection
	SectionedSkillName(item *goquery.Selection) (string, bool)

	// Flat mode
	SkillName(item *goquery.Selection) (string, bool)
	SkillLevel(item *goquery.Selection) (string, bool)
}

// ElementHandler overrides the default selector lookup for one field
type ElementHandler func(*goquery.Selection) string

// Handler keys understood by SelectorAdapter
const (
	FieldCompany       = "company"
	FieldLocation      = "location"
	FieldOperatingMode = "operatingMode"
	FieldExperience    = "experience"
	FieldSalary        = "salary"
	FieldDescription   = "description"
	FieldSkillName     = "skillName"
	FieldSkillLevel    = "skillLevel"
	FieldLink          = "link"
)

// SiteSelectors contains the CSS selectors for listings pages and skill lists
type SiteSelectors struct {
	ListingsContainer string
	Listing           string
	ListingTitle      string
	ListingLink       string // empty uses the listing itself when it is an anchor, else its first anchor
	LinkAttr          string // defaults to href

	SkillsContainer  string
	RequiredSkills   string
	NiceToHaveSkills string
	SkillItem        string
	SectionedName    string // defaults to span
	SkillName        string
	SkillLevel       string
}

// FieldSelectors contains the CSS selectors of the detail page fields
type FieldSelectors struct {
	Company       string
	Location      string
	OperatingMode string
	Experience    string
	Salary        string
	Description   string
}

// AdapterConfig contains everything needed to build a SelectorAdapter
type AdapterConfig struct {
	Name      string
	BaseURL   string
	Sectioned bool
	Selectors SiteSelectors
	Fields    FieldSelectors
	Handlers  map[string]ElementHandler
}

// Source is one configured job board: its adapter, where its listings live and
// how many detail pages a single run may fetch
type Source struct {
	Adapter      SiteAdapter
	ListingsURL  string
	RequestLimit int
}

// Fetcher performs the blocking network calls of a run
type Fetcher interface {
	// FetchListings fetches a source's listings page
	FetchListings(ctx context.Context, source, url string) (io.Reader, error)
	// FetchDetail fetches one job detail page
	FetchDetail(ctx context.Context, url string) (io.Reader, error)
}

// SeenStore is the durable memory of what earlier runs already requested or saved
type SeenStore interface {
	HasBeenRequested(ctx context.Context, url string) (bool, error)
	MarkRequested(ctx context.Context, url, title string) error
	JobExistsByURL(ctx context.Context, url string) (bool, error)
}

// Persister saves a run's extracted jobs and returns how many were created
type Persister interface {
	Persist(ctx context.Context, jobs []models.ExtractedJob) int
}
