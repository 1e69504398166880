package prompts

import "strings"

// suggestionRules maps keyword groups to the framework IDs they imply.
// Regional keywords come first, then framework-specific ones; rules are
// evaluated in order and every matching rule contributes.
var suggestionRules = []struct {
	Keywords   []string
	Frameworks []string
}{
	{[]string{"eu", "european", "europe"}, []string{"csrd", "esrs", "sfdr"}},
	{[]string{"us", "united states", "america", "american"}, []string{"sasb", "sec-climate", "california-sb253"}},
	{[]string{"uk", "united kingdom", "british"}, []string{"uk-tcfd", "uk-sdr"}},
	{[]string{"canada", "canadian"}, []string{"canada-tcfd", "canada-esg"}},
	{[]string{"australia", "australian"}, []string{"australia-climate", "australia-esg"}},
	{[]string{"japan", "japanese"}, []string{"japan-tcfd", "japan-esg"}},
	{[]string{"gri", "global reporting"}, []string{"gri"}},
	{[]string{"sasb", "sustainability accounting"}, []string{"sasb"}},
	{[]string{"tcfd", "climate-related", "climate risk"}, []string{"tcfd"}},
	{[]string{"csrd", "corporate sustainability reporting"}, []string{"csrd"}},
	{[]string{"ifrs", "international financial reporting"}, []string{"ifrs-s1", "ifrs-s2"}},
}

// genericESGKeywords trigger the global default suggestion when no rule
// matched at all.
var genericESGKeywords = []string{"esg", "sustainability", "environmental", "social", "governance"}

// SuggestFrameworks returns framework IDs implied by the keywords of a
// free-text prompt, deduplicated in rule order. A prompt that mentions no
// region or framework but is recognizably about ESG falls back to the
// global defaults; anything else yields no suggestions.
func SuggestFrameworks(prompt string) []string {
	lower := strings.ToLower(prompt)

	var suggestions []string
	seen := make(map[string]bool)
	add := func(frameworks ...string) {
		for _, fw := range frameworks {
			if !seen[fw] {
				seen[fw] = true
				suggestions = append(suggestions, fw)
			}
		}
	}

	for _, rule := range suggestionRules {
		for _, keyword := range rule.Keywords {
			if strings.Contains(lower, keyword) {
				add(rule.Frameworks...)
				break
			}
		}
	}

	if len(suggestions) == 0 {
		for _, keyword := range genericESGKeywords {
			if strings.Contains(lower, keyword) {
				add("gri", "tcfd")
				break
			}
		}
	}

	return suggestions
}
