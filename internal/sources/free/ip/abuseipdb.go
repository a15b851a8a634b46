package ip

import (
	"context"
	"fmt"
	"net/http"
	"net/netip"
	"net/url"
	"time"

	"verdict-lab/internal/domain/models"
	"verdict-lab/internal/sources"
	"verdict-lab/pkg/logger"
)

const (
	abuseIPDBAPIURL = "https://api.abuseipdb.com/api/v2"
	abuseIPDBSlug   = "abuseipdb"
)

// AbuseIPDBConnector checks single IPs against AbuseIPDB
type AbuseIPDBConnector struct {
	*sources.BaseConnector
	logger *logger.Logger
}

// NewAbuseIPDBConnector creates a new AbuseIPDB connector
func NewAbuseIPDBConnector(log *logger.Logger) *AbuseIPDBConnector {
	return &AbuseIPDBConnector{
		BaseConnector: sources.NewBaseConnector(
			abuseIPDBSlug,
			"AbuseIPDB",
			models.SourceCategoryIPRep,
			true,
			abuseIPDBAPIURL,
		),
		logger: log.WithComponent("abuseipdb"),
	}
}

type abuseIPDBResponse struct {
	Data struct {
		IPAddress            string `json:"ipAddress"`
		IsPublic             bool   `json:"isPublic"`
		IsWhitelisted        bool   `json:"isWhitelisted"`
		AbuseConfidenceScore int    `json:"abuseConfidenceScore"`
		CountryCode          string `json:"countryCode"`
		UsageType            string `json:"usageType"`
		ISP                  string `json:"isp"`
		Domain               string `json:"domain"`
		IsTor                bool   `json:"isTor"`
		TotalReports         int    `json:"totalReports"`
		NumDistinctUsers     int    `json:"numDistinctUsers"`
		LastReportedAt       string `json:"lastReportedAt"`
	} `json:"data"`
}

// CheckIP returns the abuse report for a single address
func (c *AbuseIPDBConnector) CheckIP(ctx context.Context, ip string) (*models.AbuseReport, error) {
	if err := c.Ready(); err != nil {
		return nil, err
	}
	if _, err := netip.ParseAddr(ip); err != nil {
		return nil, sources.ErrNotApplicable
	}

	params := url.Values{}
	params.Set("ipAddress", ip)
	params.Set("maxAgeInDays", "90")
	params.Set("verbose", "true")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL()+"/check?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Key", c.APIKey())

	var resp abuseIPDBResponse
	if err := sources.DoJSON(c.HTTPClient(), c.Name(), req, &resp); err != nil {
		return nil, err
	}

	d := resp.Data
	report := &models.AbuseReport{
		IPAddress:            d.IPAddress,
		IsPublic:             d.IsPublic,
		IsWhitelisted:        d.IsWhitelisted,
		AbuseConfidenceScore: d.AbuseConfidenceScore,
		CountryCode:          d.CountryCode,
		UsageType:            d.UsageType,
		ISP:                  d.ISP,
		Domain:               d.Domain,
		IsTor:                d.IsTor,
		TotalReports:         d.TotalReports,
		NumDistinctUsers:     d.NumDistinctUsers,
	}
	if t, err := time.Parse(time.RFC3339, d.LastReportedAt); err == nil {
		report.LastReportedAt = &t
	}

	c.logger.Debug().
		Str("ip", ip).
		Int("abuse_confidence", report.AbuseConfidenceScore).
		Int("reports", report.TotalReports).
		Msg("AbuseIPDB check completed")

	return report, nil
}
