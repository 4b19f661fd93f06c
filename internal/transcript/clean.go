// Package transcript normalizes recognized speech-to-text output before
// persistence.
package transcript

import "strings"

// Clean collapses whitespace and applies sentence casing to raw engine
// output. Empty or whitespace-only text cleans to "".
func Clean(text string) string {
	normalized := strings.Join(strings.Fields(text), " ")
	if normalized == "" {
		return ""
	}

	normalized = capitalizeSentenceStarts(normalized)
	normalized = pronounIContractionPattern.ReplaceAllStringFunc(normalized, func(match string) string {
		return "I" + match[1:]
	})
	return capitalizeStandalonePronounI(normalized)
}
