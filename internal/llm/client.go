// Package llm provides completion service clients.
package llm

import "context"

// Client is the interface all completion providers must implement.
// It is deliberately narrow: submit role-tagged messages plus generation
// parameters, receive generated text or an error. Clients are stateless
// and safe for concurrent use.
type Client interface {
	// Complete sends a single completion request and returns the response.
	Complete(ctx context.Context, req Request) (*Completion, error)

	// Ping checks if the provider is reachable.
	Ping(ctx context.Context) error
}
