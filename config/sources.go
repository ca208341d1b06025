package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SourcesFile is the YAML document listing extra job boards
type SourcesFile struct {
	Sources []SourceConfig `yaml:"sources"`
}

// SourceConfig describes one selector-driven job board
type SourceConfig struct {
	Name         string          `yaml:"name"`
	ListingsURL  string          `yaml:"listings_url"`
	BaseURL      string          `yaml:"base_url"`
	RequestLimit int             `yaml:"request_limit"`
	Sectioned    bool            `yaml:"sectioned"`
	Selectors    SelectorsConfig `yaml:"selectors"`
	Fields       FieldsConfig    `yaml:"fields"`
}

// SelectorsConfig holds the CSS selectors used on listings pages and skill lists
type SelectorsConfig struct {
	ListingsContainer string `yaml:"listings_container"`
	Listing           string `yaml:"listing"`
	ListingTitle      string `yaml:"listing_title"`
	ListingLink       string `yaml:"listing_link"`
	LinkAttr          string `yaml:"link_attr"`
	SkillsContainer   string `yaml:"skills_container"`
	RequiredSkills    string `yaml:"required_skills"`
	NiceToHaveSkills  string `yaml:"nice_to_have_skills"`
	SkillItem         string `yaml:"skill_item"`
	SectionedName     string `yaml:"sectioned_name"`
	SkillName         string `yaml:"skill_name"`
	SkillLevel        string `yaml:"skill_level"`
}

// FieldsConfig holds the CSS selectors of detail page fields
type FieldsConfig struct {
	Company       string `yaml:"company"`
	Location      string `yaml:"location"`
	OperatingMode string `yaml:"operating_mode"`
	Experience    string `yaml:"experience"`
	Salary        string `yaml:"salary"`
	Description   string `yaml:"description"`
}

// LoadSources reads and validates a sources file
func LoadSources(path string) ([]SourceConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sources file: %w", err)
	}

	var sf SourcesFile
	if err := yaml.Unmarshal(b, &sf); err != nil {
		return nil, fmt.Errorf("parse sources file: %w", err)
	}

	seen := make(map[string]bool, len(sf.Sources))
	for i, s := range sf.Sources {
		switch {
		case s.Name == "":
			return nil, fmt.Errorf("source #%d: name is required", i+1)
		case seen[s.Name]:
			return nil, fmt.Errorf("source %q: duplicate name", s.Name)
		case s.ListingsURL == "":
			return nil, fmt.Errorf("source %q: listings_url is required", s.Name)
		case s.Selectors.ListingsContainer == "" || s.Selectors.Listing == "" || s.Selectors.ListingTitle == "":
			return nil, fmt.Errorf("source %q: listings_container, listing and listing_title selectors are required", s.Name)
		case s.RequestLimit < 0:
			return nil, fmt.Errorf("source %q: request_limit must not be negative", s.Name)
		}
		seen[s.Name] = true
	}

	return sf.Sources, nil
}
