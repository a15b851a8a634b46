package ip

import (
	"context"
	"fmt"
	"net/http"
	"net/netip"

	"verdict-lab/internal/domain/models"
	"verdict-lab/internal/sources"
	"verdict-lab/pkg/logger"
)

const (
	ipAPIURL    = "http://ip-api.com/json"
	ipAPISlug   = "ipapi"
	ipAPIFields = "status,message,country,countryCode,regionName,city,zip,lat,lon,timezone,isp,org,as,mobile,proxy,hosting"
)

// IPAPIConnector resolves IP geolocation via ip-api.com (no key required)
type IPAPIConnector struct {
	*sources.BaseConnector
	logger *logger.Logger
}

// NewIPAPIConnector creates a new ip-api connector
func NewIPAPIConnector(log *logger.Logger) *IPAPIConnector {
	return &IPAPIConnector{
		BaseConnector: sources.NewBaseConnector(
			ipAPISlug,
			"ip-api.com",
			models.SourceCategoryGeolocation,
			false,
			ipAPIURL,
		),
		logger: log.WithComponent("ipapi"),
	}
}

type ipAPIResponse struct {
	Status      string  `json:"status"`
	Message     string  `json:"message"`
	Country     string  `json:"country"`
	CountryCode string  `json:"countryCode"`
	RegionName  string  `json:"regionName"`
	City        string  `json:"city"`
	Zip         string  `json:"zip"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	Timezone    string  `json:"timezone"`
	ISP         string  `json:"isp"`
	Org         string  `json:"org"`
	AS          string  `json:"as"`
	Mobile      bool    `json:"mobile"`
	Proxy       bool    `json:"proxy"`
	Hosting     bool    `json:"hosting"`
}

// Locate returns geolocation details for ip
func (c *IPAPIConnector) Locate(ctx context.Context, ip string) (*models.GeoLocation, error) {
	if err := c.Ready(); err != nil {
		return nil, err
	}
	if _, err := netip.ParseAddr(ip); err != nil {
		return nil, sources.ErrNotApplicable
	}

	endpoint := fmt.Sprintf("%s/%s?fields=%s", c.BaseURL(), ip, ipAPIFields)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	var resp ipAPIResponse
	if err := sources.DoJSON(c.HTTPClient(), c.Name(), req, &resp); err != nil {
		return nil, err
	}
	if resp.Status != "success" {
		return nil, fmt.Errorf("ip-api lookup failed: %s", resp.Message)
	}

	return &models.GeoLocation{
		Country:     resp.Country,
		CountryCode: resp.CountryCode,
		Region:      resp.RegionName,
		City:        resp.City,
		Zip:         resp.Zip,
		Lat:         resp.Lat,
		Lon:         resp.Lon,
		Timezone:    resp.Timezone,
		ISP:         resp.ISP,
		Org:         resp.Org,
		AS:          resp.AS,
		Mobile:      resp.Mobile,
		Proxy:       resp.Proxy,
		Hosting:     resp.Hosting,
	}, nil
}
