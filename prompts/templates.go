// Package prompts holds the system prompt templates and the deterministic
// rules that pick one for a query. Precedence is data, not control flow:
// framework aliases and intent keyword families are ordered tables so the
// resolution order is visible and independently testable.
package prompts

// TemplateID identifies a system prompt template.
type TemplateID string

// Template identifiers. TemplateCombined is synthesized per call when more
// than one recognized framework is in focus.
const (
	TemplateBase             TemplateID = "base"
	TemplateGRI              TemplateID = "gri"
	TemplateSASB             TemplateID = "sasb"
	TemplateTCFD             TemplateID = "tcfd"
	TemplateCSRD             TemplateID = "csrd"
	TemplateIFRS             TemplateID = "ifrs"
	TemplateReportGeneration TemplateID = "report_generation"
	TemplateCompliance       TemplateID = "compliance"
	TemplateRiskManagement   TemplateID = "risk_management"
	TemplateBenchmarking     TemplateID = "benchmarking"
	TemplateCombined         TemplateID = "combined"
)

// templates maps template IDs to system prompt text.
var templates = map[TemplateID]string{
	TemplateBase: "ESG consultant expert. Provide accurate, practical advice on sustainability reporting frameworks (GRI, SASB, TCFD, CSRD, IFRS). Cite specific standards when relevant. Be professional and concise.",

	TemplateGRI: "GRI Standards expert. Focus on materiality, stakeholder inclusiveness, sustainability context, and completeness. Reference specific GRI disclosures clearly.",

	TemplateSASB: "SASB Standards expert. Focus on industry-specific, financially material sustainability topics. Emphasize investor perspective and quantitative metrics.",

	TemplateTCFD: "TCFD expert. Cover governance, strategy, risk management, and metrics/targets for climate-related financial disclosures.",

	TemplateCSRD: "CSRD expert. Cover double materiality, ESG reporting, third-party assurance, digital tagging, and ESRS alignment for EU compliance.",

	TemplateIFRS: "IFRS Sustainability Standards expert. Cover S1 (general requirements) and S2 (climate disclosures) including governance, strategy, risk management, metrics, targets, and GHG emissions.",

	TemplateReportGeneration: "Sustainability report writer. Use clear, professional language with specific data and metrics. Follow framework requirements, structure logically, provide context, and avoid greenwashing.",

	TemplateCompliance: "ESG compliance expert. Identify requirements, deadlines, scope, framework differences, implementation steps, compliance gaps, and risk mitigation strategies.",

	TemplateRiskManagement: "ESG risk management expert. Consider physical/transition climate risks, social/governance risks, supply chain vulnerabilities, regulatory/reputational risks, and provide mitigation strategies.",

	TemplateBenchmarking: "ESG benchmarking expert. Compare performance metrics, disclosure practices, best practices, performance gaps, industry challenges, and provide actionable recommendations.",
}

// Text returns the system prompt for a template ID, falling back to the base
// template for unknown IDs.
func Text(id TemplateID) string {
	if text, ok := templates[id]; ok {
		return text
	}
	return templates[TemplateBase]
}

// frameworkTemplates maps recognized framework labels (upper case) to their
// specialized template. Regional regimes map onto the framework they align
// with: ESRS is part of CSRD, the SEC climate rule aligns with SASB, the
// regional TCFD adoptions share the TCFD template.
var frameworkTemplates = map[string]TemplateID{
	"GRI":               TemplateGRI,
	"SASB":              TemplateSASB,
	"TCFD":              TemplateTCFD,
	"CSRD":              TemplateCSRD,
	"ESRS":              TemplateCSRD,
	"IFRS-S1":           TemplateIFRS,
	"IFRS-S2":           TemplateIFRS,
	"UK-TCFD":           TemplateTCFD,
	"CANADA-TCFD":       TemplateTCFD,
	"AUSTRALIA-CLIMATE": TemplateTCFD,
	"JAPAN-TCFD":        TemplateTCFD,
	"SEC-CLIMATE":       TemplateSASB,
	"CALIFORNIA-SB253":  TemplateSASB,
	"SFDR":              TemplateCSRD,
	"UK-SDR":            TemplateTCFD,
	"CANADA-ESG":        TemplateGRI,
	"AUSTRALIA-ESG":     TemplateGRI,
	"JAPAN-ESG":         TemplateGRI,
	"CDP":               TemplateTCFD,
}

// Intent is a query intent family used for template and follow-up action
// selection.
type Intent string

// Intent families, checked in the fixed order of intentFamilies.
const (
	IntentReport     Intent = "report"
	IntentCompliance Intent = "compliance"
	IntentRisk       Intent = "risk"
	IntentBenchmark  Intent = "benchmark"
	IntentNone       Intent = ""
)

// intentFamilies is the ordered intent rule table. The first family whose
// keywords match the lower-cased query wins, so overlapping keyword sets
// resolve deterministically.
var intentFamilies = []struct {
	Intent   Intent
	Keywords []string
	Template TemplateID
}{
	{IntentReport, []string{"report", "draft", "write", "generate"}, TemplateReportGeneration},
	{IntentCompliance, []string{"compliance", "requirement", "standard"}, TemplateCompliance},
	{IntentRisk, []string{"risk", "audit", "supply chain"}, TemplateRiskManagement},
	{IntentBenchmark, []string{"benchmark", "compare", "peer"}, TemplateBenchmarking},
}
