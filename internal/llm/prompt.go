package llm

import "strings"

const defaultInstructions = `You will receive an English transcript produced by speech recognition.

Tasks:
- Read the whole text and understand it
- Split it into paragraphs that follow the logic of the content

Rules:
- Do not add titles, headings or explanations to the paragraphs
- Keep the original wording: do not translate, add, remove or change anything
- Keep passages that look like source attributions
- Output ONLY the paragraphed text, nothing else`

// BuildSystemPrompt returns the instructions sent with every request.
// A non-empty custom prompt replaces the default.
func BuildSystemPrompt(custom string) string {
	if custom = strings.TrimSpace(custom); custom != "" {
		return custom
	}
	return defaultInstructions
}

// BuildUserPrompt wraps the text to process
func BuildUserPrompt(text string) string {
	return "Text to process:\n" + text
}
