// Package llm calls OpenAI-compatible chat-completion endpoints through the
// langchaingo OpenAI provider.
//
// One call sends one user message at temperature 0 and returns the text of the
// first choice. The caller's API key is passed per call and never stored.
// Requests are not retried. Non-2xx answers surface as *APIError with the
// status code and the provider's message.
package llm
