package classifier

import "regexp"

// Extractor finds the JSON array inside model text. ok is false when no
// candidate is found, in which case the whole text is parsed.
type Extractor func(text string) (candidate string, ok bool)

var bracketSpan = regexp.MustCompile(`(?s)\[.*\]`)

// BracketSpan returns the span from the first '[' to the last ']'. It
// tolerates prose and code fences around the array.
func BracketSpan(text string) (string, bool) {
	m := bracketSpan.FindString(text)
	return m, m != ""
}
