package archive

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"verdict-lab/internal/domain/models"
	"verdict-lab/internal/sources"
	"verdict-lab/pkg/logger"
)

const (
	waybackAPIURL = "https://archive.org/wayback"
	waybackSlug   = "wayback"

	// Asking for the snapshot closest to the archive's start returns the
	// earliest capture rather than the latest.
	earliestTimestamp = "19960101"
)

// WaybackConnector checks Internet Archive presence for a host
type WaybackConnector struct {
	*sources.BaseConnector
	logger *logger.Logger
}

// NewWaybackConnector creates a new Wayback Machine connector
func NewWaybackConnector(log *logger.Logger) *WaybackConnector {
	return &WaybackConnector{
		BaseConnector: sources.NewBaseConnector(
			waybackSlug,
			"Wayback Machine",
			models.SourceCategoryArchive,
			false,
			waybackAPIURL,
		),
		logger: log.WithComponent("wayback"),
	}
}

type waybackAvailableResponse struct {
	ArchivedSnapshots struct {
		Closest *struct {
			Available bool   `json:"available"`
			URL       string `json:"url"`
			Timestamp string `json:"timestamp"`
			Status    string `json:"status"`
		} `json:"closest"`
	} `json:"archived_snapshots"`
}

// History reports whether host has archived snapshots
func (c *WaybackConnector) History(ctx context.Context, host string) (*models.ArchiveHistory, error) {
	if err := c.Ready(); err != nil {
		return nil, err
	}

	endpoint := c.BaseURL() + "/available?url=" + url.QueryEscape(host) + "&timestamp=" + earliestTimestamp
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	var resp waybackAvailableResponse
	if err := sources.DoJSON(c.HTTPClient(), c.Name(), req, &resp); err != nil {
		return nil, err
	}

	closest := resp.ArchivedSnapshots.Closest
	if closest == nil || closest.Timestamp == "" {
		return &models.ArchiveHistory{
			HasHistory: false,
			Message:    "No historical record found. This domain might be extremely new or never crawled.",
		}, nil
	}

	h := &models.ArchiveHistory{
		HasHistory:  true,
		FirstSeen:   closest.Timestamp,
		SnapshotURL: closest.URL,
	}
	h.Message = fmt.Sprintf("Domain first seen in global archives in %d.", h.FirstSeenYear())
	return h, nil
}
