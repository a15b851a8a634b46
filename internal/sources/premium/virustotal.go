package premium

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"verdict-lab/internal/domain/models"
	"verdict-lab/internal/sources"
	"verdict-lab/pkg/logger"
)

const (
	virusTotalAPIURL = "https://www.virustotal.com/api/v3"
	virusTotalGUIURL = "https://www.virustotal.com/gui"
	virusTotalSlug   = "virustotal"
)

// Object kinds accepted by Lookup
const (
	KindIP     = "ip"
	KindDomain = "domain"
	KindURL    = "url"
)

// VirusTotalConnector looks up IPs, domains and URLs in VirusTotal
// Note: Free API has rate limits (4 requests/min).
type VirusTotalConnector struct {
	*sources.BaseConnector
	logger *logger.Logger
}

// NewVirusTotalConnector creates a new VirusTotal connector
func NewVirusTotalConnector(log *logger.Logger) *VirusTotalConnector {
	return &VirusTotalConnector{
		BaseConnector: sources.NewBaseConnector(
			virusTotalSlug,
			"VirusTotal",
			models.SourceCategoryPremium,
			true,
			virusTotalAPIURL,
		),
		logger: log.WithComponent("virustotal"),
	}
}

type vtObjectResponse struct {
	Data *struct {
		ID         string `json:"id"`
		Type       string `json:"type"`
		Attributes struct {
			LastAnalysisStats vtAnalysisStats `json:"last_analysis_stats"`
			LastAnalysisDate  int64           `json:"last_analysis_date"`
			Reputation        int             `json:"reputation"`
		} `json:"attributes"`
	} `json:"data"`
}

type vtAnalysisStats struct {
	Malicious  int `json:"malicious"`
	Suspicious int `json:"suspicious"`
	Undetected int `json:"undetected"`
	Harmless   int `json:"harmless"`
}

// urlID encodes a URL the way the v3 API identifies it
func urlID(target string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(target))
}

// Lookup fetches the last analysis summary for target. kind is one of
// KindIP, KindDomain or KindURL.
func (c *VirusTotalConnector) Lookup(ctx context.Context, target, kind string) (*models.MalwareScan, error) {
	if err := c.Ready(); err != nil {
		return nil, err
	}

	var path, guiID string
	switch kind {
	case KindIP:
		path, guiID = "ip_addresses/"+url.PathEscape(target), target
	case KindDomain:
		path, guiID = "domains/"+url.PathEscape(target), target
	case KindURL:
		path, guiID = "urls/"+urlID(target), urlID(target)
	default:
		return nil, sources.ErrNotApplicable
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL()+"/"+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("x-apikey", c.APIKey())

	var resp vtObjectResponse
	if err := sources.DoJSON(c.HTTPClient(), c.Name(), req, &resp); err != nil {
		if errors.Is(err, sources.ErrNotFound) {
			c.logger.Debug().Str("target", target).Str("kind", kind).Msg("target unknown to VirusTotal")
		}
		return nil, err
	}
	if resp.Data == nil {
		return nil, fmt.Errorf("VirusTotal returned no data for %s", target)
	}

	attrs := resp.Data.Attributes
	scan := &models.MalwareScan{
		Target:     target,
		Kind:       kind,
		Malicious:  attrs.LastAnalysisStats.Malicious,
		Suspicious: attrs.LastAnalysisStats.Suspicious,
		Harmless:   attrs.LastAnalysisStats.Harmless,
		Undetected: attrs.LastAnalysisStats.Undetected,
		Reputation: attrs.Reputation,
		Permalink:  fmt.Sprintf("%s/%s/%s", virusTotalGUIURL, kind, guiID),
	}
	if attrs.LastAnalysisDate > 0 {
		t := time.Unix(attrs.LastAnalysisDate, 0).UTC()
		scan.LastAnalysis = &t
	}

	return scan, nil
}
