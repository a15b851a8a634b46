package sources

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"verdict-lab/internal/domain/models"
)

var (
	// ErrNotConfigured is returned when an adapter needs an API key it does not have
	ErrNotConfigured = errors.New("source not configured")
	// ErrDisabled is returned when an adapter was switched off in config
	ErrDisabled = errors.New("source disabled")
	// ErrNotApplicable is returned when the target kind is not supported by the adapter
	ErrNotApplicable = errors.New("target not supported by source")
)

// Adapter is the common surface of every intelligence source. Lookup
// methods are defined per source family in the domain services package.
type Adapter interface {
	// Slug returns the unique identifier for this source
	Slug() string

	// Name returns the human-readable name of this source
	Name() string

	// Category returns the category of this source
	Category() models.SourceCategory

	// RequiresAPIKey reports whether lookups need a credential
	RequiresAPIKey() bool

	// IsEnabled returns whether this source is enabled
	IsEnabled() bool

	// IsConfigured reports whether the source can serve lookups right now
	IsConfigured() bool

	// Configure configures the adapter with the given config
	Configure(cfg ConnectorConfig) error
}

// ConnectorConfig holds configuration for an adapter
type ConnectorConfig struct {
	Enabled bool          `json:"enabled"`
	APIURL  string        `json:"api_url,omitempty"`
	APIKey  string        `json:"api_key,omitempty"`
	Timeout time.Duration `json:"timeout,omitempty"`
}

// DefaultConfig returns default adapter configuration
func DefaultConfig() ConnectorConfig {
	return ConnectorConfig{
		Enabled: true,
		Timeout: 5 * time.Second,
	}
}

// BaseConnector provides common functionality for adapters
type BaseConnector struct {
	slug        string
	name        string
	category    models.SourceCategory
	requiresKey bool
	defaultURL  string

	mu     sync.RWMutex
	config ConnectorConfig
	client *http.Client
}

// NewBaseConnector creates a new base connector. defaultURL is used when
// the config does not override the API endpoint.
func NewBaseConnector(slug, name string, category models.SourceCategory, requiresKey bool, defaultURL string) *BaseConnector {
	cfg := DefaultConfig()
	return &BaseConnector{
		slug:        slug,
		name:        name,
		category:    category,
		requiresKey: requiresKey,
		defaultURL:  defaultURL,
		config:      cfg,
		client:      &http.Client{Timeout: cfg.Timeout},
	}
}

// Slug returns the unique identifier for this source
func (c *BaseConnector) Slug() string {
	return c.slug
}

// Name returns the human-readable name of this source
func (c *BaseConnector) Name() string {
	return c.name
}

// Category returns the category of this source
func (c *BaseConnector) Category() models.SourceCategory {
	return c.category
}

func (c *BaseConnector) RequiresAPIKey() bool {
	return c.requiresKey
}

// IsEnabled returns whether this source is enabled
func (c *BaseConnector) IsEnabled() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.config.Enabled
}

func (c *BaseConnector) IsConfigured() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.config.Enabled && (!c.requiresKey || c.config.APIKey != "")
}

// Configure replaces the adapter config and rebuilds its HTTP client
func (c *BaseConnector) Configure(cfg ConnectorConfig) error {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.config = cfg
	c.client = &http.Client{Timeout: cfg.Timeout}
	return nil
}

// Config returns the current configuration
func (c *BaseConnector) Config() ConnectorConfig {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.config
}

// APIKey returns the configured credential
func (c *BaseConnector) APIKey() string {
	return c.Config().APIKey
}

// BaseURL returns the configured endpoint or the adapter default
func (c *BaseConnector) BaseURL() string {
	if u := c.Config().APIURL; u != "" {
		return u
	}
	return c.defaultURL
}

// HTTPClient returns the client bound to the current timeout
func (c *BaseConnector) HTTPClient() *http.Client {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.client
}

// Ready returns ErrDisabled or ErrNotConfigured when the adapter cannot serve
// a lookup. Adapters call it first in every lookup method.
func (c *BaseConnector) Ready() error {
	cfg := c.Config()
	if !cfg.Enabled {
		return ErrDisabled
	}
	if c.requiresKey && cfg.APIKey == "" {
		return ErrNotConfigured
	}
	return nil
}

// Info describes the adapter for status endpoints
func (c *BaseConnector) Info() models.SourceInfo {
	cfg := c.Config()
	status := models.SourceStatusActive
	switch {
	case !cfg.Enabled:
		status = models.SourceStatusDisabled
	case c.requiresKey && cfg.APIKey == "":
		status = models.SourceStatusUnconfigured
	}
	return models.SourceInfo{
		Slug:           c.slug,
		Name:           c.name,
		Category:       c.category,
		Status:         status,
		RequiresAPIKey: c.requiresKey,
		HasAPIKey:      cfg.APIKey != "",
	}
}
