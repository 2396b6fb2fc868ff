// Package llm talks to the Gemini text-generation API.
//
// [Client] sends one system instruction plus one user turn to the
// generateContent endpoint and returns the concatenated text of the first
// candidate. Transient failures (network errors, 429 and 5xx responses) are
// retried with exponential backoff through [httputil.Retry].
//
// The helpers [ExtractJSON] and [StripFences] clean up model replies, which
// often wrap their payload in Markdown code fences or surround it with prose.
//
// Callers that only need text generation should depend on [Generator] so
// tests can substitute a fake.
package llm
