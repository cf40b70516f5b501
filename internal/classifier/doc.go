// Package classifier assigns a category to each email record with a single
// chat-completion call.
//
// The records are serialised into one prompt, the model is asked for a JSON
// array, and the answer is parsed leniently: the array may be wrapped in
// prose or a code fence, and missing or mistyped fields fall back to
// defaults. Text that contains no parseable JSON array is a hard failure and
// the raw model text is returned with the error.
//
// The result always has one entry per input record, in input order, with the
// input ids.
package classifier
