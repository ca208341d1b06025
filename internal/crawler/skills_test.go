package crawler

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sjsage522/jobcrawler/internal/models"
)

func TestStandardizeExperience(t *testing.T) {
	testCases := []struct {
		input    string
		expected models.SkillLevel
	}{
		{"", models.LevelRegular},
		{"Senior", models.LevelSenior},
		{"Tech Lead", models.LevelSenior},
		{"PRINCIPAL engineer", models.LevelSenior},
		{"Mid", models.LevelRegular},
		{"Intermediate", models.LevelRegular},
		{"Junior", models.LevelJunior},
		{"Internship", models.LevelJunior},
		{"Entry level", models.LevelJunior},
		{"Trainee", models.LevelJunior},
		// senior keywords win over later groups
		{"Junior / Senior", models.LevelSenior},
		{"Mid / Junior", models.LevelRegular},
		{"C-level", models.LevelRegular},
		{"👩‍💻", models.LevelRegular},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, StandardizeExperience(tc.input), tc.input)
	}
}

func docFrom(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func sectionedAdapter() *SelectorAdapter {
	return NewSelectorAdapter(AdapterConfig{
		Name:      "Sectioned",
		Sectioned: true,
		Selectors: SiteSelectors{
			SkillsContainer:  "section.skills",
			RequiredSkills:   "div.must",
			NiceToHaveSkills: "div.nice",
			SkillItem:        "li",
		},
	})
}

func flatAdapter() *SelectorAdapter {
	return NewSelectorAdapter(AdapterConfig{
		Name: "Flat",
		Selectors: SiteSelectors{
			SkillsContainer: "div.stack",
			SkillItem:       "div.item",
			SkillName:       "h4",
			SkillLevel:      "span",
		},
	})
}

func TestSectionedSkillsNiceToHaveWinsCollision(t *testing.T) {
	doc := docFrom(t, `
		<section class="skills">
			<div class="must"><ul><li><span>A</span></li></ul></div>
			<div class="nice"><ul><li><span>A</span></li><li><span>B</span></li></ul></div>
		</section>`)

	skills := ExtractSkills(sectionedAdapter(), doc, "Senior")
	assert.Equal(t, map[string]string{"A": "nice to have", "B": "nice to have"}, skills)
}

func TestSectionedSkillsUseExperienceLevel(t *testing.T) {
	doc := docFrom(t, `
		<section class="skills">
			<div class="must"><ul><li><span>Go</span></li><li><span>SQL</span></li><li>no span</li></ul></div>
		</section>`)

	skills := ExtractSkills(sectionedAdapter(), doc, "Junior developer")
	assert.Equal(t, map[string]string{"Go": "junior", "SQL": "junior"}, skills)

	skills = ExtractSkills(sectionedAdapter(), doc, "")
	assert.Equal(t, map[string]string{"Go": "regular", "SQL": "regular"}, skills)
}

func TestFlatSkillsDropIncompleteItems(t *testing.T) {
	doc := docFrom(t, `
		<div class="stack">
			<div class="item"><h4>Go</h4><span>senior</span></div>
			<div class="item"><h4>Kotlin</h4></div>
			<div class="item"><span>junior</span></div>
			<div class="item"><h4>Rust</h4><span>junior</span></div>
		</div>`)

	skills := ExtractSkills(flatAdapter(), doc, "Senior")
	assert.Equal(t, map[string]string{"Go": "senior", "Rust": "junior"}, skills)
}

func TestFlatSkillsLastWriteWins(t *testing.T) {
	doc := docFrom(t, `
		<div class="stack">
			<div class="item"><h4>Go</h4><span>junior</span></div>
			<div class="item"><h4>Go</h4><span>senior</span></div>
		</div>`)

	assert.Equal(t, map[string]string{"Go": "senior"}, ExtractSkills(flatAdapter(), doc, ""))
}

func TestSkillsWithoutContainerAreEmpty(t *testing.T) {
	doc := docFrom(t, `<div>nothing here</div>`)
	assert.Empty(t, ExtractSkills(sectionedAdapter(), doc, "Senior"))
	assert.Empty(t, ExtractSkills(flatAdapter(), doc, "Senior"))
}
