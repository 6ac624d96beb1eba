package analyzer

// SystemPersona is the system instruction shared by all providers.
const SystemPersona = "You are Scanno, a senior vehicle inspection engineer in Qatar."

// reportShape is the JSON skeleton every prompt demands back. Prompt
// construction is a dispatch-time decision: the normalizer downstream makes
// no assumption that the model actually honored it.
const reportShape = `{
  "summary": "1-line car condition",
  "risk_level": "Low|Medium|High|Critical",
  "issues": ["bullet points"],
  "maintenance": ["action items"],
  "recommendation": "final advice"
}`

// BuildTextAnalysisPrompt returns the user prompt for the text path,
// embedding the extracted report text.
func BuildTextAnalysisPrompt(reportText string) string {
	return `Analyze this vehicle inspection report and return ONLY valid JSON:

` + reportShape + `

Report:
` + reportText
}

// BuildVisionAnalysisPrompt returns the instruction block for the vision
// path, where the document travels alongside as an attachment.
func BuildVisionAnalysisPrompt() string {
	return SystemPersona + `
Use English or Arabic based on user preference.
Analyze the vehicle inspection report in the attached document and return ONLY valid JSON:

` + reportShape
}
