package crawler

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"sjsage522/jobcrawler/helpers"
)

// NewNoFluffJobs creates the NoFluffJobs adapter. NoFluffJobs splits skills
// into "must" and "nice" sections.
func NewNoFluffJobs() *SelectorAdapter {
	return NewSelectorAdapter(AdapterConfig{
		Name:      "NoFluffJobs",
		BaseURL:   "https://nofluffjobs.com",
		Sectioned: true,
		Selectors: SiteSelectors{
			ListingsContainer: "div.list-container",
			Listing:           "a.posting-list-item",
			ListingTitle:      "h3.posting-title__position",
			SkillsContainer:   "#posting-requirements",
			RequiredSkills:    "section[branch='musts']",
			NiceToHaveSkills:  "section[branch='nices']",
			SkillItem:         "li",
			SectionedName:     "span",
		},
		Fields: FieldSelectors{
			Company:     "#postingCompanyUrl",
			Location:    "common-posting-locations span.locations-text",
			Experience:  "#posting-seniority span",
			Salary:      "common-posting-salaries-list h4",
			Description: "section#posting-description",
		},
		Handlers: map[string]ElementHandler{
			FieldOperatingMode: noFluffJobsOperatingMode,
		},
	})
}

// noFluffJobsOperatingMode reads the remote badge next to the locations; offers
// without one are on site
func noFluffJobsOperatingMode(s *goquery.Selection) string {
	badge := helpers.CleanText(s.Find("common-posting-locations .remote-badge, span[data-cy='location_remote']").First().Text())
	switch {
	case badge == "":
		if s.Find("common-posting-locations").Length() == 0 {
			return ""
		}
		return "Office"
	case strings.Contains(strings.ToLower(badge), "hybrid"), strings.Contains(strings.ToLower(badge), "hybryd"):
		return "Hybrid"
	default:
		return "Remote"
	}
}
