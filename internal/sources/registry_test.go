package sources

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"verdict-lab/internal/config"
	"verdict-lab/internal/domain/models"
	"verdict-lab/pkg/logger"
)

func TestRegistry_RegisterAndStats(t *testing.T) {
	r := NewRegistry(logger.Nop())
	require.NoError(t, r.Register(NewBaseConnector("wayback", "Wayback Machine", models.SourceCategoryArchive, false, "")))
	require.NoError(t, r.Register(NewBaseConnector("abuseipdb", "AbuseIPDB", models.SourceCategoryIPRep, true, "")))
	assert.Error(t, r.Register(NewBaseConnector("wayback", "dup", models.SourceCategoryArchive, false, "")))

	stats := r.Stats()
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.Configured)
	require.Len(t, stats.Sources, 2)
	assert.Equal(t, "abuseipdb", stats.Sources[0].Slug)
}

func TestRegistry_ConfigureFromSourcesConfig_TagsSource(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Level: "warn", Format: "json", Output: &buf})

	r := NewRegistry(log)
	vt := NewBaseConnector("virustotal", "VirusTotal", models.SourceCategoryPremium, true, "")
	require.NoError(t, r.Register(vt))

	r.ConfigureFromSourcesConfig(config.SourcesConfig{
		VirusTotal: config.SourceConfig{Enabled: true, Timeout: time.Second},
	})

	assert.True(t, vt.IsEnabled())
	assert.False(t, vt.IsConfigured())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "virustotal", entry["source"])
	assert.Equal(t, "source-registry", entry["component"])
	assert.Equal(t, "warn", entry["level"])
}
