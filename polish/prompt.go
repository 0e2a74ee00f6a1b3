package polish

import (
	"strings"

	"github.com/botirk38/embedcache/types"
)

const basePrompt = "You are an editor for a content management system. " +
	"Rewrite the text you are given so it reads clearly and correctly. " +
	"Keep its meaning, facts and language. Reply with the rewritten text only."

var fieldInstructions = map[types.FieldType]string{
	types.FieldBrief:    "The text is a short brief. Keep it to one or two tight sentences.",
	types.FieldAnalysis: "The text is an analysis. Keep its structure and reasoning, tighten wording and fix logical gaps.",
	types.FieldSuggest:  "The text is a suggestion. Make it concrete and actionable, written as a recommendation.",
	types.FieldGeneric:  "Improve grammar, flow and word choice without changing the length much.",
}

func systemPrompt(fieldType types.FieldType) string {
	var b strings.Builder
	b.WriteString(basePrompt)
	b.WriteString("\n\n")
	b.WriteString(fieldInstructions[fieldType])
	return b.String()
}

func userPrompt(reference, text string) string {
	var b strings.Builder
	if reference != "" {
		b.WriteString("### REFERENCE EXCERPTS\n")
		b.WriteString("Similar texts already in the system. Match their tone and terminology; do not copy them.\n")
		b.WriteString(reference)
		b.WriteString("\n\n")
	}
	b.WriteString("### TEXT TO POLISH\n")
	b.WriteString(text)
	return b.String()
}
