package abusech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"verdict-lab/internal/domain/models"
	"verdict-lab/internal/sources"
	"verdict-lab/pkg/logger"
)

const (
	threatFoxAPIURL = "https://threatfox-api.abuse.ch/api/v1"
	threatFoxSlug   = "threatfox"
)

// ThreatFoxConnector searches Abuse.ch ThreatFox IOCs
type ThreatFoxConnector struct {
	*sources.BaseConnector
	logger *logger.Logger
}

// NewThreatFoxConnector creates a new ThreatFox connector
func NewThreatFoxConnector(log *logger.Logger) *ThreatFoxConnector {
	return &ThreatFoxConnector{
		BaseConnector: sources.NewBaseConnector(
			threatFoxSlug,
			"ThreatFox",
			models.SourceCategoryAbuseCH,
			false,
			threatFoxAPIURL,
		),
		logger: log.WithComponent("threatfox"),
	}
}

type threatFoxIOC struct {
	ID               string `json:"id"`
	IOC              string `json:"ioc"`
	ThreatType       string `json:"threat_type"`
	MalwarePrintable string `json:"malware_printable"`
	ConfidenceLevel  int    `json:"confidence_level"`
	Reference        string `json:"reference"`
}

// SearchIOC looks up an indicator (IP or domain) in ThreatFox
func (c *ThreatFoxConnector) SearchIOC(ctx context.Context, term string) (*models.DetectionEngineResult, error) {
	if err := c.Ready(); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(map[string]any{
		"query":       "search_ioc",
		"search_term": term,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL()+"/", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if key := c.APIKey(); key != "" {
		req.Header.Set("Auth-Key", key)
	}

	// ThreatFox returns a string in "data" when nothing matched, so decode
	// only the status first.
	var raw struct {
		QueryStatus string          `json:"query_status"`
		Data        json.RawMessage `json:"data"`
	}
	if err := sources.DoJSON(c.HTTPClient(), c.Name(), req, &raw); err != nil {
		return nil, err
	}

	result := &models.DetectionEngineResult{Engine: c.Name()}
	switch raw.QueryStatus {
	case "no_result":
		return result, nil
	case "ok":
	default:
		return nil, fmt.Errorf("ThreatFox query failed: %s", raw.QueryStatus)
	}

	var iocs []threatFoxIOC
	if err := json.Unmarshal(raw.Data, &iocs); err != nil {
		return nil, fmt.Errorf("failed to parse ThreatFox data: %w", err)
	}
	for _, ioc := range iocs {
		if ioc.ConfidenceLevel >= result.Confidence {
			result.Detected = true
			result.Confidence = ioc.ConfidenceLevel
			result.ThreatType = ioc.ThreatType
			result.Malware = ioc.MalwarePrintable
			result.Reference = ioc.Reference
		}
	}

	return result, nil
}
