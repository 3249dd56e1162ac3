package utils

import "unicode"

// SplitSymbols splits raw observation text into single-rune symbols.
// Whitespace only separates symbols and is never emitted itself.
func SplitSymbols(text string) []string {
	observed := make([]string, 0, len(text))
	for _, r := range text {
		if unicode.IsSpace(r) {
			continue
		}
		observed = append(observed, string(r))
	}
	return observed
}
