package llm

import (
	"fmt"
	"sync"

	"labparse/internal/config"
	"labparse/internal/logging"
	"labparse/internal/port"
)

// ProviderFactory creates a MarkerExtractor from a provider config.
type ProviderFactory func(cfg *config.ProviderConfig, log logging.Logger) (port.MarkerExtractor, error)

var (
	providersMu sync.RWMutex
	providers   = map[string]ProviderFactory{}
)

// RegisterProvider registers an extraction provider factory by name.
func RegisterProvider(name string, factory ProviderFactory) {
	providersMu.Lock()
	defer providersMu.Unlock()
	providers[name] = factory
}

// NewExtractor creates a MarkerExtractor using the factory registered for
// cfg.Provider.
func NewExtractor(cfg *config.ProviderConfig, log logging.Logger) (port.MarkerExtractor, error) {
	providersMu.RLock()
	factory, ok := providers[cfg.Provider]
	providersMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown extraction provider: %s", cfg.Provider)
	}
	return factory(cfg, log)
}

// NewChain builds an extractor over every configured provider, in order.
// It returns nil when none are configured, a single extractor for one, and
// a FallbackExtractor otherwise.
func NewChain(cfgs []*config.ProviderConfig, log logging.Logger) (port.MarkerExtractor, error) {
	if len(cfgs) == 0 {
		return nil, nil
	}
	extractors := make([]port.MarkerExtractor, 0, len(cfgs))
	names := make([]string, 0, len(cfgs))
	for _, cfg := range cfgs {
		e, err := NewExtractor(cfg, log)
		if err != nil {
			return nil, fmt.Errorf("creating %s extractor: %w", cfg.Provider, err)
		}
		extractors = append(extractors, e)
		names = append(names, cfg.Provider)
	}
	if len(extractors) == 1 {
		return extractors[0], nil
	}
	return NewFallbackExtractor(extractors, names, log), nil
}
