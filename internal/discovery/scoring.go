package discovery

import (
	"strings"

	"github.com/helmwise/helmwise-backend/internal/catalog"
)

// Confidence scoring weights for scripted search results. Kept as named
// constants so the formula is testable and reviewable in one place.
const (
	scoreBase          = 0.50
	scoreBrandMatch    = 0.20
	scoreModelMatch    = 0.20
	scoreHelmetMention = 0.05
	scoreMIPSMatch     = 0.05
	scoreCeiling       = 0.95

	// positionPenalty lowers the base per search-result position after
	// the first, down to baseFloor.
	positionPenalty = 0.05
	baseFloor       = 0.10
)

// ScoreSearchResult computes a 0-1 confidence that a search result title
// at the given zero-based rank refers to the product.
func ScoreSearchResult(p catalog.Product, title string, position int) float64 {
	base := scoreBase - positionPenalty*float64(position)
	if base < baseFloor {
		base = baseFloor
	}

	titleUpper := strings.ToUpper(title)
	score := base

	if p.Brand != "" && strings.Contains(titleUpper, strings.ToUpper(p.Brand)) {
		score += scoreBrandMatch
	}
	if modelTokensMatch(p, titleUpper) {
		score += scoreModelMatch
	}
	if strings.Contains(titleUpper, "HELMET") {
		score += scoreHelmetMention
	}
	if strings.Contains(strings.ToUpper(p.Name), "MIPS") && strings.Contains(titleUpper, "MIPS") {
		score += scoreMIPSMatch
	}

	if score > scoreCeiling {
		score = scoreCeiling
	}
	if score < 0 {
		score = 0
	}
	return score
}

// modelTokensMatch checks whether the product's model tokens (the name
// minus brand and generic words) all appear in the title.
func modelTokensMatch(p catalog.Product, titleUpper string) bool {
	name := strings.ToUpper(p.Name)
	name = strings.ReplaceAll(name, strings.ToUpper(p.Brand), "")

	matched := false
	for _, tok := range strings.Fields(name) {
		switch tok {
		case "MIPS", "HELMET", "BIKE", "BICYCLE":
			continue
		}
		if !strings.Contains(titleUpper, tok) {
			return false
		}
		matched = true
	}
	return matched
}

// SearchQueries builds the ordered search queries used to discover ASIN
// candidates for a product. More specific queries come first.
func SearchQueries(p catalog.Product) []string {
	queries := []string{p.Name}
	if !strings.Contains(strings.ToLower(p.Name), "helmet") {
		queries = append(queries, p.Name+" helmet")
	}
	queries = append(queries, p.Brand+" "+strings.TrimSpace(strings.ReplaceAll(p.Name, p.Brand, ""))+" bike helmet")
	return queries
}
