package ip

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"verdict-lab/internal/sources"
	"verdict-lab/pkg/logger"
)

func TestAbuseIPDB_CheckIP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/check", r.URL.Path)
		assert.Equal(t, "203.0.113.7", r.URL.Query().Get("ipAddress"))
		assert.Equal(t, "test-key", r.Header.Get("Key"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":{"ipAddress":"203.0.113.7","isPublic":true,"abuseConfidenceScore":90,
			"countryCode":"NL","usageType":"Data Center/Web Hosting/Transit","isp":"Example Hosting",
			"isTor":false,"totalReports":42,"numDistinctUsers":7,"lastReportedAt":"2024-05-01T10:00:00+00:00"}}`))
	}))
	defer srv.Close()

	c := NewAbuseIPDBConnector(logger.Nop())
	require.NoError(t, c.Configure(sources.ConnectorConfig{Enabled: true, APIURL: srv.URL, APIKey: "test-key"}))

	report, err := c.CheckIP(context.Background(), "203.0.113.7")
	require.NoError(t, err)
	assert.Equal(t, 90, report.AbuseConfidenceScore)
	assert.Equal(t, 42, report.TotalReports)
	assert.Equal(t, "Example Hosting", report.ISP)
	require.NotNil(t, report.LastReportedAt)
	assert.Equal(t, 2024, report.LastReportedAt.Year())
}

func TestAbuseIPDB_NotReady(t *testing.T) {
	c := NewAbuseIPDBConnector(logger.Nop())

	_, err := c.CheckIP(context.Background(), "203.0.113.7")
	assert.ErrorIs(t, err, sources.ErrNotConfigured)

	require.NoError(t, c.Configure(sources.ConnectorConfig{Enabled: false, APIKey: "k"}))
	_, err = c.CheckIP(context.Background(), "203.0.113.7")
	assert.ErrorIs(t, err, sources.ErrDisabled)

	require.NoError(t, c.Configure(sources.ConnectorConfig{Enabled: true, APIKey: "k"}))
	_, err = c.CheckIP(context.Background(), "example.com")
	assert.ErrorIs(t, err, sources.ErrNotApplicable)
}

func TestAbuseIPDB_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"errors":[{"detail":"rate limited"}]}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewAbuseIPDBConnector(logger.Nop())
	require.NoError(t, c.Configure(sources.ConnectorConfig{Enabled: true, APIURL: srv.URL, APIKey: "k"}))

	_, err := c.CheckIP(context.Background(), "203.0.113.7")
	var statusErr *sources.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusTooManyRequests, statusErr.StatusCode)
}

func TestIPAPI_Locate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/8.8.8.8":
			w.Write([]byte(`{"status":"success","country":"United States","countryCode":"US","city":"Mountain View",
				"isp":"Google LLC","as":"AS15169 Google LLC","hosting":true}`))
		default:
			w.Write([]byte(`{"status":"fail","message":"reserved range"}`))
		}
	}))
	defer srv.Close()

	c := NewIPAPIConnector(logger.Nop())
	require.NoError(t, c.Configure(sources.ConnectorConfig{Enabled: true, APIURL: srv.URL}))
	assert.True(t, c.IsConfigured())

	geo, err := c.Locate(context.Background(), "8.8.8.8")
	require.NoError(t, err)
	assert.Equal(t, "US", geo.CountryCode)
	assert.Equal(t, "Google LLC", geo.ISP)
	assert.True(t, geo.Hosting)

	_, err = c.Locate(context.Background(), "10.0.0.1")
	assert.ErrorContains(t, err, "reserved range")
}
