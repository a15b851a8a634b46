package phishing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"verdict-lab/internal/domain/models"
	"verdict-lab/internal/sources"
	"verdict-lab/pkg/logger"
)

const (
	safeBrowsingSlug   = "google_safebrowsing"
	safeBrowsingAPIURL = "https://safebrowsing.googleapis.com/v4"
)

// ThreatType represents Google Safe Browsing threat types
type ThreatType string

const (
	ThreatTypeMalware       ThreatType = "MALWARE"
	ThreatTypeSocialEng     ThreatType = "SOCIAL_ENGINEERING"
	ThreatTypeUnwantedSW    ThreatType = "UNWANTED_SOFTWARE"
	ThreatTypePotentialHarm ThreatType = "POTENTIALLY_HARMFUL_APPLICATION"
)

// PlatformType represents platform types for Safe Browsing
type PlatformType string

const (
	PlatformAnyPlatform  PlatformType = "ANY_PLATFORM"
	PlatformWindows      PlatformType = "WINDOWS"
	PlatformLinux        PlatformType = "LINUX"
	PlatformAndroid      PlatformType = "ANDROID"
	PlatformOSX          PlatformType = "OSX"
	PlatformIOS          PlatformType = "IOS"
	PlatformAllPlatforms PlatformType = "ALL_PLATFORMS"
)

// SafeBrowsingConnector checks hosts and URLs against Google Safe Browsing v4
type SafeBrowsingConnector struct {
	*sources.BaseConnector
	logger *logger.Logger
}

// NewSafeBrowsingConnector creates a new Google Safe Browsing connector
func NewSafeBrowsingConnector(log *logger.Logger) *SafeBrowsingConnector {
	return &SafeBrowsingConnector{
		BaseConnector: sources.NewBaseConnector(
			safeBrowsingSlug,
			"Google Safe Browsing",
			models.SourceCategoryPhishing,
			true,
			safeBrowsingAPIURL,
		),
		logger: log.WithComponent("google-safebrowsing"),
	}
}

type urlLookupRequest struct {
	Client struct {
		ClientID      string `json:"clientId"`
		ClientVersion string `json:"clientVersion"`
	} `json:"client"`
	ThreatInfo threatInfo `json:"threatInfo"`
}

type threatInfo struct {
	ThreatTypes      []ThreatType     `json:"threatTypes"`
	PlatformTypes    []PlatformType   `json:"platformTypes"`
	ThreatEntryTypes []string         `json:"threatEntryTypes"`
	ThreatEntries    []threatEntryURL `json:"threatEntries"`
}

type threatEntryURL struct {
	URL string `json:"url"`
}

type urlLookupResponse struct {
	Matches []struct {
		ThreatType   ThreatType     `json:"threatType"`
		PlatformType PlatformType   `json:"platformType"`
		Threat       threatEntryURL `json:"threat"`
	} `json:"matches"`
}

// CheckHost looks up the site root of host over both schemes
func (c *SafeBrowsingConnector) CheckHost(ctx context.Context, host string) ([]models.URLThreatMatch, error) {
	host = strings.TrimSuffix(host, "/")
	return c.LookupURLs(ctx, []string{"http://" + host + "/", "https://" + host + "/"})
}

// LookupURLs checks if URLs are in Google Safe Browsing threat lists.
// An empty, non-nil slice means the lookup succeeded with no matches.
func (c *SafeBrowsingConnector) LookupURLs(ctx context.Context, urls []string) ([]models.URLThreatMatch, error) {
	if err := c.Ready(); err != nil {
		return nil, err
	}
	if len(urls) == 0 {
		return []models.URLThreatMatch{}, nil
	}

	reqBody := urlLookupRequest{
		ThreatInfo: threatInfo{
			ThreatTypes: []ThreatType{
				ThreatTypeMalware,
				ThreatTypeSocialEng,
				ThreatTypeUnwantedSW,
				ThreatTypePotentialHarm,
			},
			PlatformTypes:    []PlatformType{PlatformAnyPlatform},
			ThreatEntryTypes: []string{"URL"},
		},
	}
	reqBody.Client.ClientID = "verdict-lab"
	reqBody.Client.ClientVersion = "1.0.0"
	for _, u := range urls {
		reqBody.ThreatInfo.ThreatEntries = append(reqBody.ThreatInfo.ThreatEntries, threatEntryURL{URL: u})
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/threatMatches:find?key=%s", c.BaseURL(), c.APIKey())
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var resp urlLookupResponse
	if err := sources.DoJSON(c.HTTPClient(), c.Name(), req, &resp); err != nil {
		return nil, err
	}

	matches := make([]models.URLThreatMatch, 0, len(resp.Matches))
	for _, m := range resp.Matches {
		matches = append(matches, models.URLThreatMatch{
			URL:          m.Threat.URL,
			ThreatType:   string(m.ThreatType),
			PlatformType: string(m.PlatformType),
			Description:  describe(m.ThreatType, m.PlatformType),
		})
	}
	return matches, nil
}

func describe(tt ThreatType, pt PlatformType) string {
	threatDesc := "Threat"
	switch tt {
	case ThreatTypeMalware:
		threatDesc = "Malware distribution"
	case ThreatTypeSocialEng:
		threatDesc = "Social engineering/Phishing"
	case ThreatTypeUnwantedSW:
		threatDesc = "Unwanted software distribution"
	case ThreatTypePotentialHarm:
		threatDesc = "Potentially harmful application"
	}

	platformDesc := ""
	switch pt {
	case PlatformAndroid:
		platformDesc = " targeting Android"
	case PlatformIOS:
		platformDesc = " targeting iOS"
	case PlatformWindows:
		platformDesc = " targeting Windows"
	case PlatformOSX:
		platformDesc = " targeting macOS"
	case PlatformLinux:
		platformDesc = " targeting Linux"
	case PlatformAnyPlatform, PlatformAllPlatforms:
		platformDesc = " (cross-platform)"
	}

	return fmt.Sprintf("%s%s detected by Google Safe Browsing", threatDesc, platformDesc)
}
