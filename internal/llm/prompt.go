package llm

import (
	"strings"

	"doc-analyzer/internal/shared/util"
)

// DefaultPromptMaxChars bounds the document text embedded in a prompt.
const DefaultPromptMaxChars = 100_000

const promptHeader = `You are an assistant that analyzes PDF documents.

Document text:
"""`

const promptBody = `"""

Provide:
1) Summary (3-6 sentences)
2) 6-10 bullet key points
3) 10-15 keywords
4) Tone: Positive / Neutral / Negative
5) Short recommendations
`

// StructuredInstruction is appended only to structured prompts.
const StructuredInstruction = `
Return ONLY a JSON object, with no surrounding prose or code fences, exactly matching:
{
  "summary": "...",
  "keyPoints": ["..."],
  "keywords": ["..."],
  "sentiment": "Positive|Neutral|Negative",
  "notes": "short recommendations"
}
The sentiment value must be exactly one of Positive, Neutral or Negative.
`

// BuildPrompt embeds text, cut to maxChars code points, in the analysis
// template. maxChars <= 0 selects DefaultPromptMaxChars.
func BuildPrompt(text string, structured bool, maxChars int) string {
	if maxChars <= 0 {
		maxChars = DefaultPromptMaxChars
	}
	text = util.TruncateRunes(text, maxChars)

	var b strings.Builder
	b.Grow(len(promptHeader) + len(text) + len(promptBody) + len(StructuredInstruction))
	b.WriteString(promptHeader)
	b.WriteString(text)
	b.WriteString(promptBody)
	if structured {
		b.WriteString(StructuredInstruction)
	}
	return b.String()
}
