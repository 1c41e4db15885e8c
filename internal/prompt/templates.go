package prompt

import "datastory/domain/story"

// audienceProfiles describe the reader the model should write for.
// Keyed by the full audience enum; the builder rejects unknown values
// before lookup.
var audienceProfiles = map[story.Audience]string{
	story.AudienceExecutive: "Business decision-makers who care about bottom-line impact and strategic " +
		"insight. Prefer business value and actionable takeaways over technical detail.",
	story.AudienceMarketing: "Marketing professionals interested in customer behavior, segments, campaign " +
		"performance, and market trends. Prefer strategic marketing insight framed around business value.",
	story.AudienceTechnical: "Data and engineering specialists who want depth: statistical significance, " +
		"methodology, and data quality caveats belong in the story.",
	story.AudienceGeneral: "Readers without analytics expertise. Explain findings in everyday language " +
		"and avoid technical jargon.",
}

// focusDirectives instruct the model which signal family to emphasize
var focusDirectives = map[story.Focus]string{
	story.FocusTrend: "Identify and explain the major trends: growth or decline over time, " +
		"recurring cycles, and inflection points.",
	story.FocusOutlier: "Identify and explain unusual patterns, outliers, and values that deviate " +
		"from expectations or deserve special attention.",
	story.FocusCorrelation: "Analyze relationships between variables: correlations, their strength, " +
		"and plausible (not asserted) causal explanations.",
	story.FocusAction: "Derive business-relevant conclusions and propose concrete action items " +
		"grounded in the findings.",
}

// lengthDirectives instruct the model about story size
var lengthDirectives = map[story.Length]string{
	story.LengthShort: "Keep it brief: three to four key insights with one-line explanations each.",
	story.LengthMedium: "Balance insight and explanation: cover the main findings with enough detail " +
		"and an example where it helps.",
	story.LengthLong: "Provide an in-depth narrative: thorough analysis of each finding, supporting " +
		"detail, and additional context.",
}

// responseContract is the strict output shape appended to every prompt.
// The narrative client rejects anything that deviates from it.
const responseContract = `Respond with a JSON object having exactly these keys:
{
  "summary": "one-paragraph overview of what the data says",
  "key_findings": ["ordered list of the most important findings"],
  "action_items": ["ordered list of recommended next steps"]
}
Do not include any other keys, commentary, or markdown fences.`
