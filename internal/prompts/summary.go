package prompts

import "fmt"

// SummarySystem primes the model as a meeting summarizer. Shared by both
// summary formats.
const SummarySystem = "You are an expert executive assistant specializing in meeting summaries and strategic analysis. Provide clear, well-structured summaries that highlight key business insights."

// executiveSummaryTemplate asks for a compact, decision-focused digest.
// The single format verb is the conversation transcript.
const executiveSummaryTemplate = `Please provide an executive summary of this AI boardroom conversation. Focus on:
- Key decisions made
- Main recommendations from advisors
- Action items identified
- Strategic insights

Keep it concise and business-focused (max 300 words).

Conversation:
%s`

// detailedSummaryTemplate asks for a full walkthrough of the conversation.
const detailedSummaryTemplate = `Please provide a detailed summary of this AI boardroom conversation including:
- Overview of topics discussed
- Key insights from each advisor
- Recommendations and strategic advice given
- Important decisions or conclusions reached
- Next steps or action items mentioned

Conversation:
%s`

// ExecutiveSummary returns the executive-format summary prompt for a
// conversation transcript.
func ExecutiveSummary(transcript string) string {
	return fmt.Sprintf(executiveSummaryTemplate, transcript)
}

// DetailedSummary returns the detailed-format summary prompt for a
// conversation transcript.
func DetailedSummary(transcript string) string {
	return fmt.Sprintf(detailedSummaryTemplate, transcript)
}
