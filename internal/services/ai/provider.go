package ai

import (
	"context"
	"errors"
	"sort"
)

var (
	// ErrNotConfigured is returned by the Unconfigured completer
	ErrNotConfigured = errors.New("completion provider is not configured")
	// ErrEmptyCompletion is returned when a provider answers without any text
	ErrEmptyCompletion = errors.New("completion returned no text")
)

// Unconfigured stands in when no provider credentials are set. Every call fails with
// ErrNotConfigured so history and stats stay available while reviews are refused.
var Unconfigured Completer = CompleterFunc(func(ctx context.Context, systemPrompt, userPrompt string, maxTokens int) (string, error) {
	return "", ErrNotConfigured
})

// Completer produces a text completion for a system and user prompt pair
type Completer interface {
	// Complete returns the model's answer, bounded to roughly maxTokens output tokens
	Complete(ctx context.Context, systemPrompt, userPrompt string, maxTokens int) (string, error)
}

// CompleterFunc adapts a plain function to the Completer interface
type CompleterFunc func(ctx context.Context, systemPrompt, userPrompt string, maxTokens int) (string, error)

// Complete implements Completer
func (f CompleterFunc) Complete(ctx context.Context, systemPrompt, userPrompt string, maxTokens int) (string, error) {
	return f(ctx, systemPrompt, userPrompt, maxTokens)
}

// ProviderFactory creates a completer from provider-specific settings
type ProviderFactory func(config map[string]string) (Completer, error)

// ProviderRegistry stores available completion providers
type ProviderRegistry struct {
	providers map[string]ProviderFactory
}

// NewProviderRegistry creates a new provider registry
func NewProviderRegistry() *ProviderRegistry {
	return &ProviderRegistry{
		providers: make(map[string]ProviderFactory),
	}
}

// Register registers a provider factory
func (r *ProviderRegistry) Register(name string, factory ProviderFactory) {
	r.providers[name] = factory
}

// GetProvider builds the provider registered under name
func (r *ProviderRegistry) GetProvider(name string, config map[string]string) (Completer, error) {
	factory, ok := r.providers[name]
	if !ok {
		return nil, &ErrProviderNotFound{Name: name}
	}

	return factory(config)
}

// Names lists registered provider names, sorted
func (r *ProviderRegistry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ErrProviderNotFound is returned when a provider is not found
type ErrProviderNotFound struct {
	Name string
}

func (e *ErrProviderNotFound) Error() string {
	return "AI provider not found: " + e.Name
}
