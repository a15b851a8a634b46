package premium

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"verdict-lab/internal/sources"
	"verdict-lab/pkg/logger"
)

func TestURLID(t *testing.T) {
	// unpadded base64url of the full URL
	assert.Equal(t, "aHR0cDovL2V4YW1wbGUuY29tLw", urlID("http://example.com/"))
}

func TestVirusTotal_Lookup(t *testing.T) {
	var (
		mu    sync.Mutex
		paths []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		paths = append(paths, r.URL.Path)
		mu.Unlock()
		assert.Equal(t, "vt-key", r.Header.Get("x-apikey"))
		w.Write([]byte(`{"data":{"id":"x","type":"url","attributes":{
			"last_analysis_stats":{"malicious":7,"suspicious":1,"undetected":60,"harmless":10},
			"last_analysis_date":1717200000,"reputation":-12}}}`))
	}))
	defer srv.Close()

	c := NewVirusTotalConnector(logger.Nop())
	require.NoError(t, c.Configure(sources.ConnectorConfig{Enabled: true, APIURL: srv.URL, APIKey: "vt-key"}))

	scan, err := c.Lookup(context.Background(), "http://example.com/", KindURL)
	require.NoError(t, err)
	assert.Equal(t, 7, scan.Malicious)
	assert.Equal(t, 1, scan.Suspicious)
	assert.Equal(t, -12, scan.Reputation)
	require.NotNil(t, scan.LastAnalysis)
	assert.Equal(t, "https://www.virustotal.com/gui/url/aHR0cDovL2V4YW1wbGUuY29tLw", scan.Permalink)

	_, err = c.Lookup(context.Background(), "8.8.8.8", KindIP)
	require.NoError(t, err)
	_, err = c.Lookup(context.Background(), "example.com", KindDomain)
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{
		"/urls/aHR0cDovL2V4YW1wbGUuY29tLw",
		"/ip_addresses/8.8.8.8",
		"/domains/example.com",
	}, paths)
}

func TestVirusTotal_Errors(t *testing.T) {
	c := NewVirusTotalConnector(logger.Nop())

	_, err := c.Lookup(context.Background(), "example.com", KindDomain)
	assert.ErrorIs(t, err, sources.ErrNotConfigured)

	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()
	require.NoError(t, c.Configure(sources.ConnectorConfig{Enabled: true, APIURL: srv.URL, APIKey: "k"}))

	_, err = c.Lookup(context.Background(), "example.com", "file")
	assert.ErrorIs(t, err, sources.ErrNotApplicable)

	_, err = c.Lookup(context.Background(), "unknown.example", KindDomain)
	assert.ErrorIs(t, err, sources.ErrNotFound)
}
