package rag

import "github.com/esglens/esglens/prompts"

// maxSuggestedActions caps the follow-up suggestions in a response.
const maxSuggestedActions = 3

// intentActions maps intent families to their candidate follow-up actions.
// Every matching family contributes; the combined list is capped.
var intentActions = map[prompts.Intent][]string{
	prompts.IntentReport: {
		"Review the generated content for accuracy",
		"Add specific company data and metrics",
		"Align with your company's sustainability strategy",
	},
	prompts.IntentCompliance: {
		"Verify requirements with your legal team",
		"Check for updates to the relevant framework",
		"Schedule a compliance review meeting",
	},
	prompts.IntentRisk: {
		"Conduct a detailed risk assessment",
		"Review your supply chain policies",
		"Update your risk management procedures",
	},
}

// genericActions are suggested when no intent family matches.
var genericActions = []string{
	"Ask follow-up questions for more specific guidance",
	"Upload additional documents for context",
	"Request a detailed analysis of your ESG data",
}

// degradedAction is the single suggestion attached to a degraded response.
const degradedAction = "Please try rephrasing your question or contact support if the issue persists."

// suggestActions derives follow-up suggestions by matching the query
// against the same intent families prompt selection uses.
func suggestActions(query string) []string {
	var suggestions []string
	for _, intent := range prompts.MatchingIntents(query) {
		suggestions = append(suggestions, intentActions[intent]...)
	}

	if len(suggestions) == 0 {
		suggestions = append(suggestions, genericActions...)
	}
	if len(suggestions) > maxSuggestedActions {
		suggestions = suggestions[:maxSuggestedActions]
	}
	return suggestions
}
