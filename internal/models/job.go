package models

import "time"

// SkillLevel is the level attached to each skill name in JobRecord.Skills
type SkillLevel string

const (
	LevelSenior  SkillLevel = "senior"
	LevelRegular SkillLevel = "regular"
	LevelJunior  SkillLevel = "junior"
	// LevelNiceToHave is written with spaces, downstream filters match on it
	LevelNiceToHave SkillLevel = "nice to have"
)

// ListingStub is a (title, link) pair read off a listings page
type ListingStub struct {
	Title string
	Link  string
}

// ExtractedJob is everything read off one detail page, before persistence
type ExtractedJob struct {
	Title         string
	Company       string
	Location      string
	OperatingMode string
	Experience    string
	Salary        string
	Description   string
	Skills        map[string]string
	Link          string
	Source        string
}

// JobRecord is the persisted job
type JobRecord struct {
	ID            int64             `json:"id"`
	Title         string            `json:"title"`
	Company       string            `json:"company,omitempty"`
	Location      string            `json:"location,omitempty"`
	OperatingMode string            `json:"operating_mode,omitempty"`
	Salary        string            `json:"salary,omitempty"`
	Experience    string            `json:"experience,omitempty"`
	Description   string            `json:"description,omitempty"`
	Skills        map[string]string `json:"skills"`
	URL           string            `json:"url"`
	ScrapedDate   time.Time         `json:"scraped_date"`
	Summary       string            `json:"summary,omitempty"`
	Source        string            `json:"source,omitempty"`
}

// RequestedMark records that a detail page request was issued for URL
type RequestedMark struct {
	URL       string    `json:"url"`
	Title     string    `json:"title"`
	Timestamp time.Time `json:"timestamp"`
}
