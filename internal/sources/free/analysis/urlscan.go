package analysis

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"verdict-lab/internal/domain/models"
	"verdict-lab/internal/sources"
	"verdict-lab/pkg/logger"
)

const (
	urlscanAPIURL = "https://urlscan.io/api/v1"
	urlscanSlug   = "urlscan"
)

// URLScanConnector finds existing public scans on urlscan.io
type URLScanConnector struct {
	*sources.BaseConnector
	logger *logger.Logger
}

// NewURLScanConnector creates a new urlscan.io connector
func NewURLScanConnector(log *logger.Logger) *URLScanConnector {
	return &URLScanConnector{
		BaseConnector: sources.NewBaseConnector(
			urlscanSlug,
			"URLScan.io",
			models.SourceCategoryAnalysis,
			true,
			urlscanAPIURL,
		),
		logger: log.WithComponent("urlscan"),
	}
}

type urlscanSearchResponse struct {
	Results []urlscanResult `json:"results"`
	Total   int             `json:"total"`
}

type urlscanResult struct {
	ID     string `json:"_id"`
	Result string `json:"result"`
	Task   struct {
		UUID   string    `json:"uuid"`
		URL    string    `json:"url"`
		Domain string    `json:"domain"`
		Time   time.Time `json:"time"`
	} `json:"task"`
	Page struct {
		URL     string `json:"url"`
		Domain  string `json:"domain"`
		IP      string `json:"ip"`
		Country string `json:"country"`
		Server  string `json:"server"`
	} `json:"page"`
	Screenshot string `json:"screenshot"`
	Verdicts   struct {
		Overall struct {
			Malicious bool `json:"malicious"`
			Score     int  `json:"score"`
		} `json:"overall"`
	} `json:"verdicts"`
}

// Search returns the most recent scan of rawURL, or ErrNotFound
func (c *URLScanConnector) Search(ctx context.Context, rawURL string) (*models.URLScanResult, error) {
	if err := c.Ready(); err != nil {
		return nil, err
	}

	query := fmt.Sprintf("url:%q", rawURL)
	searchURL := fmt.Sprintf("%s/search/?q=%s&size=1", c.BaseURL(), url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("API-Key", c.APIKey())

	var resp urlscanSearchResponse
	if err := sources.DoJSON(c.HTTPClient(), c.Name(), req, &resp); err != nil {
		return nil, err
	}
	if len(resp.Results) == 0 {
		return nil, sources.ErrNotFound
	}

	r := resp.Results[0]
	scanURL := r.Task.URL
	if scanURL == "" {
		scanURL = r.Page.URL
	}
	domain := r.Page.Domain
	if domain == "" {
		domain = r.Task.Domain
	}

	out := &models.URLScanResult{
		ScanID:     r.Task.UUID,
		URL:        scanURL,
		Domain:     domain,
		IP:         r.Page.IP,
		Country:    r.Page.Country,
		Server:     r.Page.Server,
		ResultURL:  r.Result,
		Screenshot: r.Screenshot,
		Malicious:  r.Verdicts.Overall.Malicious,
		Score:      r.Verdicts.Overall.Score,
	}
	if !r.Task.Time.IsZero() {
		t := r.Task.Time
		out.ScannedAt = &t
	}
	return out, nil
}
