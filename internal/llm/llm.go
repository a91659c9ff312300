package llm

import "context"

// Provider generates answer text from a fully assembled prompt. Transient
// failures are retried internally; a returned error means retries are
// exhausted and the whole answer attempt has failed.
type Provider interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
