// Package email defines the message records that flow through the fetch and
// classify pipeline.
//
// A Record is created by the Gmail fetcher from a message's "From" header and
// snippet. A Classified record is the same Record with a category assigned by
// the language model. Both are transient: they are built per request and never
// persisted.
package email
