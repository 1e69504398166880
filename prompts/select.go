package prompts

import (
	"fmt"
	"strings"
)

// Selection is the outcome of prompt selection: the chosen template ID, the
// rendered system prompt, and the recognized frameworks (for the combined
// case).
type Selection struct {
	ID         TemplateID
	System     string
	Frameworks []string
}

// Select picks a system prompt template for a query. Rules in priority
// order: exactly one recognized framework in focus returns its specialized
// template; several recognized frameworks return a synthesized combined
// template that wraps the base template and enumerates all of them (the
// per-framework templates encode conflicting emphases, so one coherent
// system role listing the joint scope beats concatenation); otherwise the
// intent keyword families decide; otherwise the base template.
//
// Select is pure: identical inputs always produce an identical selection.
func Select(query, frameworkFocus string) Selection {
	recognized := recognizedFrameworks(frameworkFocus)

	if len(recognized) > 1 {
		return Selection{
			ID:         TemplateCombined,
			System:     combinedTemplate(recognized),
			Frameworks: recognized,
		}
	}
	if len(recognized) == 1 {
		id := frameworkTemplates[recognized[0]]
		return Selection{
			ID:         id,
			System:     Text(id),
			Frameworks: recognized,
		}
	}

	if intent := DetectIntent(query); intent != IntentNone {
		id := templateForIntent(intent)
		return Selection{ID: id, System: Text(id)}
	}

	return Selection{ID: TemplateBase, System: Text(TemplateBase)}
}

// DetectIntent scans the lower-cased query against the intent keyword
// families in their fixed order and returns the first match.
func DetectIntent(query string) Intent {
	lower := strings.ToLower(query)
	for _, family := range intentFamilies {
		for _, keyword := range family.Keywords {
			if strings.Contains(lower, keyword) {
				return family.Intent
			}
		}
	}
	return IntentNone
}

// MatchingIntents returns every intent family the query matches, in family
// order. Used for follow-up action selection, where multiple families may
// each contribute candidates.
func MatchingIntents(query string) []Intent {
	lower := strings.ToLower(query)
	var matched []Intent
	for _, family := range intentFamilies {
		for _, keyword := range family.Keywords {
			if strings.Contains(lower, keyword) {
				matched = append(matched, family.Intent)
				break
			}
		}
	}
	return matched
}

func templateForIntent(intent Intent) TemplateID {
	for _, family := range intentFamilies {
		if family.Intent == intent {
			return family.Template
		}
	}
	return TemplateBase
}

// recognizedFrameworks parses a comma-separated framework focus and keeps
// the entries with a known specialized template, upper-cased, in input
// order.
func recognizedFrameworks(focus string) []string {
	if focus == "" {
		return nil
	}

	var recognized []string
	for _, part := range strings.Split(focus, ",") {
		fw := strings.ToUpper(strings.TrimSpace(part))
		if fw == "" {
			continue
		}
		if _, ok := frameworkTemplates[fw]; ok {
			recognized = append(recognized, fw)
		}
	}
	return recognized
}

// combinedTemplate wraps the base template with an enumeration of every
// framework in scope.
func combinedTemplate(frameworks []string) string {
	list := strings.Join(frameworks, ", ")
	return fmt.Sprintf(`You are an expert ESG consultant with expertise in multiple frameworks: %s.

%s

When providing guidance, consider the requirements and best practices from all relevant frameworks: %s.`, list, Text(TemplateBase), list)
}
