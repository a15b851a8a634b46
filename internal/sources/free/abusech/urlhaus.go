package abusech

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"verdict-lab/internal/domain/models"
	"verdict-lab/internal/sources"
	"verdict-lab/pkg/logger"
)

const (
	urlhausAPIURL = "https://urlhaus-api.abuse.ch/v1"
	urlhausSlug   = "urlhaus"
)

// URLhausConnector queries Abuse.ch URLhaus for a host
type URLhausConnector struct {
	*sources.BaseConnector
	logger *logger.Logger
}

// NewURLhausConnector creates a new URLhaus connector
func NewURLhausConnector(log *logger.Logger) *URLhausConnector {
	return &URLhausConnector{
		BaseConnector: sources.NewBaseConnector(
			urlhausSlug,
			"URLhaus",
			models.SourceCategoryAbuseCH,
			false,
			urlhausAPIURL,
		),
		logger: log.WithComponent("urlhaus"),
	}
}

type urlhausHostResponse struct {
	QueryStatus      string `json:"query_status"`
	URLhausReference string `json:"urlhaus_reference"`
	URLCount         string `json:"url_count"`
	URLs             []struct {
		URL       string   `json:"url"`
		URLStatus string   `json:"url_status"`
		Threat    string   `json:"threat"`
		Tags      []string `json:"tags"`
	} `json:"urls"`
}

// CheckHost reports whether URLhaus tracks malware URLs on host
func (c *URLhausConnector) CheckHost(ctx context.Context, host string) (*models.DetectionEngineResult, error) {
	if err := c.Ready(); err != nil {
		return nil, err
	}

	form := url.Values{}
	form.Set("host", host)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL()+"/host/", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if key := c.APIKey(); key != "" {
		req.Header.Set("Auth-Key", key)
	}

	var resp urlhausHostResponse
	if err := sources.DoJSON(c.HTTPClient(), c.Name(), req, &resp); err != nil {
		return nil, err
	}

	result := &models.DetectionEngineResult{Engine: c.Name()}
	switch resp.QueryStatus {
	case "no_results":
		return result, nil
	case "ok":
	default:
		return nil, fmt.Errorf("URLhaus query failed: %s", resp.QueryStatus)
	}

	result.Reference = resp.URLhausReference
	online := 0
	for _, u := range resp.URLs {
		if result.ThreatType == "" && u.Threat != "" {
			result.ThreatType = u.Threat
		}
		if u.URLStatus == "online" {
			online++
		}
	}
	result.Detected = len(resp.URLs) > 0
	if result.Detected {
		// Hosts with live payloads rank above historical listings.
		result.Confidence = 75
		if online > 0 {
			result.Confidence = 100
		}
	}

	c.logger.Debug().
		Str("host", host).
		Int("urls", len(resp.URLs)).
		Int("online", online).
		Msg("URLhaus host lookup completed")

	return result, nil
}
