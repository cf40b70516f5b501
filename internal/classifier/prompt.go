package classifier

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/teemow/inboxsort/internal/email"
)

const instructions = `You will be given a list of emails. For each email return an object with keys:
"id" (string), "from" (string), "snippet" (string), "category" (one of Important, Promotions, Social, Marketing, Spam, General).
Return ONLY a JSON array (no other text). Example:
[
  {"id":"1","from":"Alice <a@x.com>","snippet":"...","category":"Important"},
  ...
]

Classify based on the content and sender.`

// Instructions returns the fixed preamble of every classification prompt.
func Instructions() string {
	return instructions
}

var newlines = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// BuildPrompt renders the instruction block followed by the records as a
// JSON array literal, one object per line.
func BuildPrompt(records []email.Record) string {
	fragments := make([]string, 0, len(records))
	for _, r := range records {
		fragments = append(fragments, Fragment(r))
	}

	var b strings.Builder
	b.WriteString(instructions)
	b.WriteString("\n\nEmails:\n[")
	b.WriteString(strings.Join(fragments, ",\n"))
	b.WriteString("]")
	return b.String()
}

// Fragment renders one record as a JSON object. Line breaks in the values
// become single spaces; the result is valid JSON for any input.
func Fragment(r email.Record) string {
	return `{"id": ` + quote(r.ID) +
		`, "from": ` + quote(r.From) +
		`, "snippet": ` + quote(r.Snippet) + `}`
}

// quote returns s with line breaks collapsed, as a JSON string literal.
func quote(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	// encoding a string cannot fail
	_ = enc.Encode(newlines.Replace(s))
	return strings.TrimSuffix(buf.String(), "\n")
}
