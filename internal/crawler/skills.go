package crawler

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"sjsage522/jobcrawler/internal/models"
)

// experience keyword groups, checked in this order
var experienceKeywords = []struct {
	level    models.SkillLevel
	keywords []string
}{
	{models.LevelSenior, []string{"senior", "lead", "expert", "principal"}},
	{models.LevelRegular, []string{"mid", "regular", "intermediate"}},
	{models.LevelJunior, []string{"junior", "intern", "trainee", "entry"}},
}

// StandardizeExperience maps free-form experience text onto senior, regular or
// junior. Empty or unrecognized text is regular.
func StandardizeExperience(text string) models.SkillLevel {
	text = strings.ToLower(text)
	if text == "" {
		return models.LevelRegular
	}

	for _, group := range experienceKeywords {
		for _, kw := range group.keywords {
			if strings.Contains(text, kw) {
				return group.level
			}
		}
	}
	return models.LevelRegular
}

// ExtractSkills returns skill name to level for a detail page, using the
// adapter's sectioned or flat layout
func ExtractSkills(adapter SiteAdapter, doc *goquery.Document, experience string) map[string]string {
	skills := make(map[string]string)

	container := adapter.SkillsContainer(doc)
	if container == nil || container.Length() == 0 {
		return skills
	}

	if adapter.HasSkillSections() {
		extractSectionedSkills(adapter, container, experience, skills)
	} else {
		extractFlatSkills(adapter, container, skills)
	}
	return skills
}

// extractSectionedSkills processes the required section before the nice-to-have
// one, so a skill listed in both ends up as nice to have
func extractSectionedSkills(adapter SiteAdapter, container *goquery.Selection, experience string, skills map[string]string) {
	level := string(StandardizeExperience(experience))

	collect := func(section *goquery.Selection, level string) {
		if section == nil || section.Length() == 0 {
			return
		}
		adapter.SkillItems(section).Each(func(_ int, item *goquery.Selection) {
			if name, ok := adapter.SectionedSkillName(item); ok {
				skills[name] = level
			}
		})
	}

	collect(adapter.RequiredSkillsSection(container), level)
	collect(adapter.NiceToHaveSection(container), string(models.LevelNiceToHave))
}

func extractFlatSkills(adapter SiteAdapter, container *goquery.Selection, skills map[string]string) {
	adapter.SkillItems(container).Each(func(_ int, item *goquery.Selection) {
		name, ok := adapter.SkillName(item)
		if !ok {
			return
		}
		level, ok := adapter.SkillLevel(item)
		if !ok {
			return
		}
		skills[name] = level
	})
}
