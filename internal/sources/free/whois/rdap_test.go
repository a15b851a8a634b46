package whois

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"verdict-lab/internal/sources"
	"verdict-lab/pkg/logger"
)

const rdapBody = `{
  "ldhName": "EXAMPLE.COM",
  "events": [
    {"eventAction": "registration", "eventDate": "2024-05-20T00:00:00Z"},
    {"eventAction": "expiration", "eventDate": "2025-05-20T00:00:00Z"}
  ],
  "entities": [
    {"roles": ["registrar"], "vcardArray": ["vcard", [["version", {}, "text", "4.0"], ["fn", {}, "text", "Example Registrar, Inc."]]]}
  ]
}`

func TestRDAP_Lookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/domain/example.com", r.URL.Path)
		w.Write([]byte(rdapBody))
	}))
	defer srv.Close()

	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	c := NewRDAPConnector(logger.Nop()).WithClock(func() time.Time { return now })
	require.NoError(t, c.Configure(sources.ConnectorConfig{Enabled: true, APIURL: srv.URL}))

	record, err := c.Lookup(context.Background(), "login.secure.Example.com.")
	require.NoError(t, err)
	assert.Equal(t, "example.com", record.Domain)
	assert.Equal(t, "Example Registrar, Inc.", record.Registrar)
	assert.Equal(t, 12, record.AgeDays)
	require.NotNil(t, record.ExpiresAt)
	assert.Equal(t, 2025, record.ExpiresAt.Year())
}

func TestRDAP_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	c := NewRDAPConnector(logger.Nop())
	require.NoError(t, c.Configure(sources.ConnectorConfig{Enabled: true, APIURL: srv.URL}))

	_, err := c.Lookup(context.Background(), "unregistered.example")
	assert.ErrorIs(t, err, sources.ErrNotFound)
}

func TestRDAP_MissingRegistration(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ldhName":"example.org","events":[]}`))
	}))
	defer srv.Close()

	c := NewRDAPConnector(logger.Nop())
	require.NoError(t, c.Configure(sources.ConnectorConfig{Enabled: true, APIURL: srv.URL}))

	_, err := c.Lookup(context.Background(), "example.org")
	assert.ErrorContains(t, err, "no registration event")
}
