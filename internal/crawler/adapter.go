package crawler

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"sjsage522/jobcrawler/helpers"
	"sjsage522/jobcrawler/internal/models"
)

// SelectorAdapter is a SiteAdapter driven entirely by CSS selectors, with
// optional per-field handlers for markup a selector cannot express
type SelectorAdapter struct {
	name      string
	baseURL   string
	sectioned bool
	selectors SiteSelectors
	fields    FieldSelectors
	handlers  map[string]ElementHandler
}

// NewSelectorAdapter creates a new selector-driven adapter
func NewSelectorAdapter(cfg AdapterConfig) *SelectorAdapter {
	sel := cfg.Selectors
	if sel.LinkAttr == "" {
		sel.LinkAttr = "href"
	}
	if sel.SectionedName == "" {
		sel.SectionedName = "span"
	}

	handlers := make(map[string]ElementHandler, len(cfg.Handlers))
	for k, h := range cfg.Handlers {
		if h != nil {
			handlers[k] = h
		}
	}

	return &SelectorAdapter{
		name:      cfg.Name,
		baseURL:   cfg.BaseURL,
		sectioned: cfg.Sectioned,
		selectors: sel,
		fields:    cfg.Fields,
		handlers:  handlers,
	}
}

func (a *SelectorAdapter) Name() string { return a.name }

func (a *SelectorAdapter) HasSkillSections() bool { return a.sectioned }

func (a *SelectorAdapter) ListingsContainers(doc *goquery.Document) *goquery.Selection {
	return find(doc.Selection, a.selectors.ListingsContainer)
}

func (a *SelectorAdapter) Listings(container *goquery.Selection) *goquery.Selection {
	return find(container, a.selectors.Listing)
}

// ListingTitleAndLink reads the title from the title element's own text nodes, so
// badges or counters nested inside the element do not leak into the title.
func (a *SelectorAdapter) ListingTitleAndLink(listing *goquery.Selection) (models.ListingStub, bool) {
	titleSel := find(listing, a.selectors.ListingTitle).First()
	if titleSel.Length() == 0 {
		return models.ListingStub{}, false
	}

	title := ownText(titleSel)
	if title == "" {
		return models.ListingStub{}, false
	}

	var link string
	if handler, ok := a.handlers[FieldLink]; ok {
		link = handler(listing)
	} else {
		link = a.linkOf(listing)
	}

	link = helpers.ResolveURL(a.baseURL, link)
	if link == "" {
		return models.ListingStub{}, false
	}

	return models.ListingStub{Title: title, Link: link}, true
}

func (a *SelectorAdapter) linkOf(listing *goquery.Selection) string {
	var linkSel *goquery.Selection
	switch {
	case a.selectors.ListingLink != "":
		linkSel = listing.Find(a.selectors.ListingLink).First()
	case goquery.NodeName(listing) == "a":
		linkSel = listing
	default:
		linkSel = listing.Find("a").First()
	}

	href, _ := linkSel.Attr(a.selectors.LinkAttr)
	return strings.TrimSpace(href)
}

func (a *SelectorAdapter) Company(doc *goquery.Document) string {
	return a.field(doc.Selection, FieldCompany, a.fields.Company)
}

func (a *SelectorAdapter) Location(doc *goquery.Document) string {
	return a.field(doc.Selection, FieldLocation, a.fields.Location)
}

func (a *SelectorAdapter) OperatingMode(doc *goquery.Document) string {
	return a.field(doc.Selection, FieldOperatingMode, a.fields.OperatingMode)
}

func (a *SelectorAdapter) Experience(doc *goquery.Document) string {
	return a.field(doc.Selection, FieldExperience, a.fields.Experience)
}

func (a *SelectorAdapter) Salary(doc *goquery.Document) string {
	return a.field(doc.Selection, FieldSalary, a.fields.Salary)
}

func (a *SelectorAdapter) Description(doc *goquery.Document) string {
	return a.field(doc.Selection, FieldDescription, a.fields.Description)
}

func (a *SelectorAdapter) SkillsContainer(doc *goquery.Document) *goquery.Selection {
	return find(doc.Selection, a.selectors.SkillsContainer).First()
}

func (a *SelectorAdapter) RequiredSkillsSection(container *goquery.Selection) *goquery.Selection {
	return find(container, a.selectors.RequiredSkills).First()
}

func (a *SelectorAdapter) NiceToHaveSection(container *goquery.Selection) *goquery.Selection {
	return find(container, a.selectors.NiceToHaveSkills).First()
}

func (a *SelectorAdapter) SkillItems(section *goquery.Selection) *goquery.Selection {
	return find(section, a.selectors.SkillItem)
}

func (a *SelectorAdapter) SectionedSkillName(item *goquery.Selection) (string, bool) {
	return present(helpers.CleanText(find(item, a.selectors.SectionedName).First().Text()))
}

func (a *SelectorAdapter) SkillName(item *goquery.Selection) (string, bool) {
	return present(a.field(item, FieldSkillName, a.selectors.SkillName))
}

func (a *SelectorAdapter) SkillLevel(item *goquery.Selection) (string, bool) {
	return present(a.field(item, FieldSkillLevel, a.selectors.SkillLevel))
}

// field extracts text using a custom handler when one is registered for path,
// otherwise the text of the first element matching selector
func (a *SelectorAdapter) field(s *goquery.Selection, path, selector string) string {
	if handler, ok := a.handlers[path]; ok {
		return helpers.CleanText(handler(s))
	}
	return helpers.CleanText(find(s, selector).First().Text())
}

// find is Selection.Find that treats an empty selector as "nothing"
func find(s *goquery.Selection, selector string) *goquery.Selection {
	if s == nil {
		return &goquery.Selection{}
	}
	if selector == "" {
		return s.Slice(0, 0)
	}
	return s.Find(selector)
}

// ownText joins the direct text node children of s, ignoring nested elements
func ownText(s *goquery.Selection) string {
	var b strings.Builder
	s.Contents().Each(func(_ int, c *goquery.Selection) {
		if goquery.NodeName(c) == "#text" {
			b.WriteString(c.Text())
			b.WriteByte(' ')
		}
	})
	return helpers.CleanText(b.String())
}

func present(s string) (string, bool) {
	return s, s != ""
}
