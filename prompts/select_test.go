package prompts

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelect_SingleFramework(t *testing.T) {
	tests := []struct {
		name  string
		focus string
		want  TemplateID
	}{
		{name: "TCFD", focus: "TCFD", want: TemplateTCFD},
		{name: "lowercase normalized", focus: "gri", want: TemplateGRI},
		{name: "ESRS maps to CSRD", focus: "ESRS", want: TemplateCSRD},
		{name: "SEC climate maps to SASB", focus: "sec-climate", want: TemplateSASB},
		{name: "IFRS S2 maps to IFRS", focus: "IFRS-S2", want: TemplateIFRS},
		{name: "CDP maps to TCFD", focus: "CDP", want: TemplateTCFD},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel := Select("What are the governance requirements?", tt.focus)
			assert.Equal(t, tt.want, sel.ID)
			assert.Equal(t, Text(tt.want), sel.System)
		})
	}
}

func TestSelect_MultipleFrameworks(t *testing.T) {
	sel := Select("How do disclosure requirements differ?", "GRI,TCFD")

	assert.Equal(t, TemplateCombined, sel.ID)
	assert.Equal(t, []string{"GRI", "TCFD"}, sel.Frameworks)
	assert.Contains(t, sel.System, "GRI, TCFD")
	assert.Contains(t, sel.System, Text(TemplateBase))
}

func TestSelect_UnrecognizedFrameworkFallsThrough(t *testing.T) {
	// An unknown focus falls through to intent detection.
	sel := Select("Draft a report section on emissions", "NOT-A-FRAMEWORK")
	assert.Equal(t, TemplateReportGeneration, sel.ID)
}

func TestSelect_IntentFamilies(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  TemplateID
	}{
		{name: "report", query: "Please draft our annual sustainability report", want: TemplateReportGeneration},
		{name: "compliance", query: "What are the compliance requirements for CSRD?", want: TemplateCompliance},
		{name: "risk", query: "Assess our supply chain exposure", want: TemplateRiskManagement},
		{name: "benchmark", query: "How do we compare against peers?", want: TemplateBenchmarking},
		{name: "no match", query: "Hello there", want: TemplateBase},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel := Select(tt.query, "")
			assert.Equal(t, tt.want, sel.ID)
		})
	}
}

func TestSelect_FamilyOrderIsFixed(t *testing.T) {
	// "generate a risk report" matches both the report and risk families;
	// the report family is checked first.
	sel := Select("generate a risk report", "")
	assert.Equal(t, TemplateReportGeneration, sel.ID)
}

func TestSelect_Deterministic(t *testing.T) {
	queries := []string{
		"What are TCFD governance requirements?",
		"Draft a report",
		"benchmark against peers",
		"",
	}
	focuses := []string{"", "TCFD", "GRI,TCFD", "unknown"}

	for _, q := range queries {
		for _, f := range focuses {
			first := Select(q, f)
			second := Select(q, f)
			assert.Equal(t, first, second, "query=%q focus=%q", q, f)
		}
	}
}

func TestDetectIntent(t *testing.T) {
	assert.Equal(t, IntentReport, DetectIntent("WRITE a summary"))
	assert.Equal(t, IntentRisk, DetectIntent("schedule an audit"))
	assert.Equal(t, IntentNone, DetectIntent("good morning"))
}

func TestText_UnknownFallsBackToBase(t *testing.T) {
	assert.Equal(t, Text(TemplateBase), Text(TemplateID("nope")))
}

func TestSuggestFrameworks(t *testing.T) {
	tests := []struct {
		name   string
		prompt string
		want   []string
	}{
		{
			name:   "EU region",
			prompt: "We need to comply with European rules",
			want:   []string{"csrd", "esrs", "sfdr"},
		},
		{
			name:   "framework keyword",
			prompt: "questions about the Global Reporting initiative",
			want:   []string{"gri"},
		},
		{
			name:   "generic ESG fallback",
			prompt: "improve our ESG posture",
			want:   []string{"gri", "tcfd"},
		},
		{
			name:   "nothing matches",
			prompt: "what is the weather",
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SuggestFrameworks(tt.prompt))
		})
	}
}

func TestSuggestFrameworks_Deduplicates(t *testing.T) {
	got := SuggestFrameworks("TCFD climate risk and tcfd again")
	count := 0
	for _, fw := range got {
		if fw == "tcfd" {
			count++
		}
	}
	assert.Equal(t, 1, count)
	assert.False(t, strings.Contains(strings.Join(got, " "), "  "))
}
