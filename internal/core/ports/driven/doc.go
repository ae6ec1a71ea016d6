// Package driven provides interfaces for infrastructure adapters
// (secondary/outbound ports): the LLM service, the Gmail fetcher, the
// Notion publisher, the digest archive and configuration stores.
package driven
