package sources

import (
	"fmt"
	"sort"
	"sync"

	"verdict-lab/internal/config"
	"verdict-lab/internal/domain/models"
	"verdict-lab/pkg/logger"
)

// Registry manages all source adapters
type Registry struct {
	adapters map[string]Adapter
	mu       sync.RWMutex
	logger   *logger.Logger
}

// NewRegistry creates a new adapter registry
func NewRegistry(log *logger.Logger) *Registry {
	return &Registry{
		adapters: make(map[string]Adapter),
		logger:   log.WithComponent("source-registry"),
	}
}

// Register registers an adapter
func (r *Registry) Register(adapter Adapter) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	slug := adapter.Slug()
	if _, exists := r.adapters[slug]; exists {
		return fmt.Errorf("source already registered: %s", slug)
	}

	r.adapters[slug] = adapter
	r.logger.Debug().
		Str("slug", slug).
		Str("name", adapter.Name()).
		Str("category", string(adapter.Category())).
		Msg("registered source")

	return nil
}

// Get returns an adapter by slug
func (r *Registry) Get(slug string) (Adapter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.adapters[slug]
	return a, ok
}

// List returns all registered adapters ordered by slug
func (r *Registry) List() []Adapter {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Adapter, 0, len(r.adapters))
	for _, a := range r.adapters {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug() < out[j].Slug() })
	return out
}

// Configure configures an adapter by slug
func (r *Registry) Configure(slug string, cfg ConnectorConfig) error {
	a, ok := r.Get(slug)
	if !ok {
		return fmt.Errorf("source not found: %s", slug)
	}
	return a.Configure(cfg)
}

// ConfigureFromSourcesConfig applies configuration from the config file
func (r *Registry) ConfigureFromSourcesConfig(cfg config.SourcesConfig) {
	for slug, srcCfg := range cfg.BySlug() {
		connCfg := ConnectorConfig{
			Enabled: srcCfg.Enabled,
			APIURL:  srcCfg.APIURL,
			APIKey:  srcCfg.APIKey,
			Timeout: srcCfg.Timeout,
		}

		log := r.logger.WithSource(slug)
		if err := r.Configure(slug, connCfg); err != nil {
			log.Debug().Msg("source not registered, skipping config")
			continue
		}

		a, _ := r.Get(slug)
		if srcCfg.Enabled && !a.IsConfigured() {
			log.Warn().Msg("source enabled but API key missing, lookups will be skipped")
		}
	}
}

// SourceInfoProvider is implemented by adapters embedding BaseConnector
type SourceInfoProvider interface {
	Info() models.SourceInfo
}

// RegistryStats summarizes the registered adapters
type RegistryStats struct {
	Total      int                 `json:"total"`
	Configured int                 `json:"configured"`
	Sources    []models.SourceInfo `json:"sources"`
}

// Stats returns registry statistics
func (r *Registry) Stats() RegistryStats {
	adapters := r.List()
	stats := RegistryStats{
		Total:   len(adapters),
		Sources: make([]models.SourceInfo, 0, len(adapters)),
	}

	for _, a := range adapters {
		if a.IsConfigured() {
			stats.Configured++
		}
		if p, ok := a.(SourceInfoProvider); ok {
			stats.Sources = append(stats.Sources, p.Info())
			continue
		}
		stats.Sources = append(stats.Sources, models.SourceInfo{
			Slug:     a.Slug(),
			Name:     a.Name(),
			Category: a.Category(),
		})
	}

	return stats
}
