// Package ai abstracts the text generation and embedding backends behind
// a provider registry. Providers self-register from init so adding a
// backend is a single file.
package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// ErrUnavailable marks a provider that is reachable in code but not
// configured (missing key, missing host). Callers map it to a degraded
// response rather than a hard failure.
var ErrUnavailable = errors.New("ai provider not configured")

// IProvider is one backend capable of text generation and embedding.
type IProvider interface {
	Name() string
	Generate(ctx context.Context, model string, prompt string) (string, error)
	Embed(ctx context.Context, model string, text string, taskType string) ([]float32, error)
}

// IGenerator binds a provider to a generation model.
type IGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// IEmbedder binds a provider to an embedding model.
type IEmbedder interface {
	Embed(ctx context.Context, text string, taskType string) ([]float32, error)
	ModelName() string
}

type ProviderFactory func(args interface{}) (IProvider, error)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]ProviderFactory)
)

func Register(name string, factory ProviderFactory) {
	key := normalizeName(name)
	if key == "" || factory == nil {
		return
	}
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[key] = factory
}

func NewProvider(name string, args interface{}) (IProvider, error) {
	key := normalizeName(name)
	if key == "" {
		return nil, fmt.Errorf("provider name is required")
	}
	registryMu.RLock()
	factory, ok := registry[key]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unsupported ai provider: %s", name)
	}
	return factory(args)
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// NewGenerator fixes the model a provider generates with.
func NewGenerator(p IProvider, model string) IGenerator {
	return &boundModel{provider: p, model: model}
}

// NewEmbedder fixes the model a provider embeds with.
func NewEmbedder(p IProvider, model string) IEmbedder {
	return &boundModel{provider: p, model: model}
}

// boundModel pairs a provider with a fixed model so callers pass only the
// input. The same binding serves both interfaces.
type boundModel struct {
	provider IProvider
	model    string
}

func (b *boundModel) Generate(ctx context.Context, prompt string) (string, error) {
	return b.provider.Generate(ctx, b.model, prompt)
}

func (b *boundModel) Embed(ctx context.Context, text string, taskType string) ([]float32, error) {
	return b.provider.Embed(ctx, b.model, text, taskType)
}

func (b *boundModel) ModelName() string {
	return b.model
}

// decodeConfig round-trips loosely typed config args into a provider's
// concrete config struct.
func decodeConfig(args interface{}, dst interface{}) error {
	if args == nil {
		return fmt.Errorf("ai provider config is required")
	}
	data, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("encode ai provider config: %w", err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decode ai provider config: %w", err)
	}
	return nil
}
