package crawler

// NewJustJoinIT creates the JustJoinIT adapter. JustJoinIT lists every skill in
// one block, each with its own level label.
func NewJustJoinIT() *SelectorAdapter {
	return NewSelectorAdapter(AdapterConfig{
		Name:    "JustJoinIT",
		BaseURL: "https://justjoin.it",
		Selectors: SiteSelectors{
			ListingsContainer: "div[data-test-id='virtuoso-item-list']",
			Listing:           "div[data-index]",
			ListingTitle:      "h3",
			ListingLink:       "a.offer_list_offer_link",
			SkillsContainer:   "div.tech-stack",
			SkillItem:         "div.tech-stack__item",
			SkillName:         "h4",
			SkillLevel:        "span.tech-stack__level",
		},
		Fields: FieldSelectors{
			Company:       "div.offer-company a",
			Location:      "div.offer-location span",
			OperatingMode: "div.offer-work-mode",
			Experience:    "div.offer-experience",
			Salary:        "div.offer-salary",
			Description:   "div.offer-description",
		},
	})
}
