package gmail

import (
	gmail "google.golang.org/api/gmail/v1"

	"github.com/teemow/inboxsort/internal/email"
)

// HeaderValue extracts a header value from a Gmail message. The name match
// is exact and case-sensitive; the first matching header wins.
func HeaderValue(m *gmail.Message, header string) string {
	if m == nil || m.Payload == nil {
		return ""
	}
	for _, mph := range m.Payload.Headers {
		if mph.Name == header {
			return mph.Value
		}
	}
	return ""
}

// ToRecord reduces a Gmail message to a Record. id is the id returned by the
// listing call, not the one echoed in the message body.
func ToRecord(id string, m *gmail.Message) email.Record {
	r := email.Record{
		ID:   id,
		From: HeaderValue(m, "From"),
	}
	if m != nil {
		r.Snippet = m.Snippet
	}
	return r
}
