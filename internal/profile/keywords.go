package profile

import "strings"

// maxSearchKeywords bounds the keyword list handed to ingestion collaborators
// so a broad thesis does not fan out into dozens of upstream searches.
const maxSearchKeywords = 12

// focusAreaVariations expands a declared focus area into the search terms
// ingestion sources actually understand.
var focusAreaVariations = map[string][]string{
	"ai/ml":      {"AI", "machine learning", "artificial intelligence"},
	"fintech":    {"fintech", "financial technology", "payments", "banking"},
	"saas":       {"SaaS", "software as a service", "enterprise", "B2B"},
	"healthcare": {"healthcare", "digital health", "telemedicine", "medtech"},
	"consumer":   {"consumer", "B2C", "marketplace", "ecommerce"},
	"enterprise": {"enterprise", "B2B", "SaaS", "software"},
	"technology": {"software", "AI", "machine learning", "platform", "tech"},
}

// SearchKeywords derives deduplicated search keywords from the organization's
// declared focus areas. Order follows the declared areas so repeated runs
// produce the same list.
func SearchKeywords(org *OrganizationProfile) []string {
	if org == nil {
		return nil
	}

	seen := make(map[string]struct{})
	keywords := make([]string, 0, maxSearchKeywords)

	add := func(keyword string) {
		keyword = strings.TrimSpace(keyword)
		if keyword == "" || len(keywords) >= maxSearchKeywords {
			return
		}
		lower := strings.ToLower(keyword)
		if _, ok := seen[lower]; ok {
			return
		}
		seen[lower] = struct{}{}
		keywords = append(keywords, keyword)
	}

	for _, area := range org.Industries {
		add(area)
		for _, variation := range focusAreaVariations[strings.ToLower(strings.TrimSpace(area))] {
			add(variation)
		}
	}

	return keywords
}
