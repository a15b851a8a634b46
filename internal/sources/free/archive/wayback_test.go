package archive

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

func TestWayback_History(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/available", r.URL.Path)
		assert.Equal(t, "19960101", r.URL.Query().Get("timestamp"))
		switch r.URL.Query().Get("url") {
		case "example.com":
			w.Write([]byte(`{"archived_snapshots":{"closest":{"available":true,"status":"200",
				"url":"http://web.archive.org/web/20020120142510/http://example.com:80/","timestamp":"20020120142510"}}}`))
		default:
			w.Write([]byte(`{"archived_snapshots":{}}`))
		}
	}))
	defer srv.Close()

	c := NewWaybackConnector(logger.Nop())
	require.NoError(t, c.Configure(sources.ConnectorConfig{Enabled: true, APIURL: srv.URL}))

	h, err := c.History(context.Background(), "example.com")
	require.NoError(t, err)
	assert.True(t, h.HasHistory)
	assert.Equal(t, 2002, h.FirstSeenYear())
	assert.Equal(t, "Domain first seen in global archives in 2002.", h.Message)

	h, err = c.History(context.Background(), "brand-new.example")
	require.NoError(t, err)
	assert.False(t, h.HasHistory)
	assert.Zero(t, h.FirstSeenYear())
}

func TestWayback_Disabled(t *testing.T) {
	c := NewWaybackConnector(logger.Nop())
	require.NoError(t, c.Configure(sources.ConnectorConfig{Enabled: false}))

	_, err := c.History(context.Background(), "example.com")
	assert.ErrorIs(t, err, sources.ErrDisabled)
}

func TestWayback_RequestsEarliestSnapshot(t *testing.T) {
	var gotTimestamp string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotTimestamp = r.URL.Query().Get("timestamp")
		if gotTimestamp != "19960101" {
			w.Write([]byte(`{"archived_snapshots":{"closest":{"available":true,"status":"200",
				"url":"http://web.archive.org/web/20250101000000/http://example.com/","timestamp":"20250101000000"}}}`))
			return
		}
		w.Write([]byte(`{"archived_snapshots":{"closest":{"available":true,"status":"200",
			"url":"http://web.archive.org/web/19970101000000/http://example.com/","timestamp":"19970101000000"}}}`))
	}))
	defer srv.Close()

	c := NewWaybackConnector(logger.Nop())
	require.NoError(t, c.Configure(sources.ConnectorConfig{Enabled: true, APIURL: srv.URL}))

	h, err := c.History(context.Background(), "example.com")
	require.NoError(t, err)
	assert.Equal(t, "19960101", gotTimestamp)
	assert.Equal(t, 1997, h.FirstSeenYear())
}
