package crawler

import (
	"fmt"

	"sjsage522/jobcrawler/config"
)

// CreateSources builds the built-in sources enabled in cfg followed by the
// selector-driven sources of cfg.SourcesFile
func CreateSources(cfg *config.Config) ([]Source, error) {
	var sources []Source

	if cfg.NoFluffJobsURL != "" {
		sources = append(sources, Source{
			Adapter:      NewNoFluffJobs(),
			ListingsURL:  cfg.NoFluffJobsURL,
			RequestLimit: cfg.RequestLimit,
		})
	}
	if cfg.JustJoinITURL != "" {
		sources = append(sources, Source{
			Adapter:      NewJustJoinIT(),
			ListingsURL:  cfg.JustJoinITURL,
			RequestLimit: cfg.RequestLimit,
		})
	}

	if cfg.SourcesFile != "" {
		configured, err := config.LoadSources(cfg.SourcesFile)
		if err != nil {
			return nil, err
		}

		names := make(map[string]bool, len(sources))
		for _, s := range sources {
			names[s.Adapter.Name()] = true
		}

		for _, sc := range configured {
			if names[sc.Name] {
				return nil, fmt.Errorf("source %q is already defined", sc.Name)
			}
			names[sc.Name] = true

			limit := sc.RequestLimit
			if limit == 0 {
				limit = cfg.RequestLimit
			}
			sources = append(sources, Source{
				Adapter:      NewAdapterFromConfig(sc),
				ListingsURL:  sc.ListingsURL,
				RequestLimit: limit,
			})
		}
	}

	return sources, nil
}

// NewAdapterFromConfig creates a SelectorAdapter from a sources file entry
func NewAdapterFromConfig(sc config.SourceConfig) *SelectorAdapter {
	return NewSelectorAdapter(AdapterConfig{
		Name:      sc.Name,
		BaseURL:   sc.BaseURL,
		Sectioned: sc.Sectioned,
		Selectors: SiteSelectors{
			ListingsContainer: sc.Selectors.ListingsContainer,
			Listing:           sc.Selectors.Listing,
			ListingTitle:      sc.Selectors.ListingTitle,
			ListingLink:       sc.Selectors.ListingLink,
			LinkAttr:          sc.Selectors.LinkAttr,
			SkillsContainer:   sc.Selectors.SkillsContainer,
			RequiredSkills:    sc.Selectors.RequiredSkills,
			NiceToHaveSkills:  sc.Selectors.NiceToHaveSkills,
			SkillItem:         sc.Selectors.SkillItem,
			SectionedName:     sc.Selectors.SectionedName,
			SkillName:         sc.Selectors.SkillName,
			SkillLevel:        sc.Selectors.SkillLevel,
		},
		Fields: FieldSelectors{
			Company:       sc.Fields.Company,
			Location:      sc.Fields.Location,
			OperatingMode: sc.Fields.OperatingMode,
			Experience:    sc.Fields.Experience,
			Salary:        sc.Fields.Salary,
			Description:   sc.Fields.Description,
		},
	})
}
