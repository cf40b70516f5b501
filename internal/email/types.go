package email

// Record is a fetched Gmail message reduced to the fields used for classification.
type Record struct {
	// ID is the provider-assigned message ID, unique within one fetch.
	ID string `json:"id"`
	// From is the raw From header value; empty when the header is absent.
	From string `json:"from"`
	// Snippet is the provider-computed preview text; may be empty.
	Snippet string `json:"snippet"`
}

// Classified is a Record with the category assigned by the model.
type Classified struct {
	Record
	Category string `json:"category"`
}
