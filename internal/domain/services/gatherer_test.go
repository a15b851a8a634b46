package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"verdict-lab/internal/domain/models"
	"verdict-lab/pkg/logger"
)

func TestGather_PlanPerInputType(t *testing.T) {
	sources := failingSources()
	g := NewGatherer(sources, time.Second, logger.Nop())

	tests := []struct {
		typ    models.InputType
		target string
		want   []string
	}{
		{models.InputTypeIP, "198.51.100.1", []string{"abuse_db", "malware_scan", "geolocation", "detection_engines"}},
		{models.InputTypeDomain, "example.com", []string{"whois", "malware_scan", "url_intelligence", "detection_engines", "archive_history"}},
		{models.InputTypeURL, "https://example.com/x", []string{"whois", "malware_scan", "url_intelligence", "detection_engines", "archive_history", "url_scan"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.typ), func(t *testing.T) {
			res := g.Gather(context.Background(), tt.typ, tt.target)
			assert.Equal(t, tt.want, res.Queried)
			assert.Empty(t, res.Completed)
		})
	}
}

func TestGather_NilSourcesAreSkipped(t *testing.T) {
	g := NewGatherer(IntelligenceSources{}, time.Second, logger.Nop())

	res := g.Gather(context.Background(), models.InputTypeIP, "198.51.100.1")
	assert.Empty(t, res.Queried)
	assert.Equal(t, models.NewIntelligenceBag(), res.Bag)
	assert.False(t, res.DeadlineExceeded)
}

func TestGather_HangingSourceIsCutOffAtDeadline(t *testing.T) {
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })

	const deadline = 100 * time.Millisecond
	g := NewGatherer(IntelligenceSources{
		AbuseDB:     hangingAbuse{release: release},
		Geolocation: geoFake{geo: &models.GeoLocation{CountryCode: "DE"}},
	}, deadline, logger.Nop())

	start := time.Now()
	res := g.Gather(context.Background(), models.InputTypeIP, "198.51.100.1")
	elapsed := time.Since(start)

	assert.Less(t, elapsed, deadline+time.Second)
	assert.True(t, res.DeadlineExceeded)
	assert.Nil(t, res.Bag.AbuseDB)
	require.NotNil(t, res.Bag.Geolocation)
	assert.Equal(t, "DE", res.Bag.Geolocation.CountryCode)
	assert.Equal(t, []string{"abuse_db", "geolocation"}, res.Queried)
	assert.Equal(t, []string{"geolocation"}, res.Completed)
}

func TestGather_LateResultNeverReachesReturnedBag(t *testing.T) {
	release := make(chan struct{})
	g := NewGatherer(IntelligenceSources{
		AbuseDB: hangingAbuse{release: release},
	}, 50*time.Millisecond, logger.Nop())

	res := g.Gather(context.Background(), models.InputTypeIP, "198.51.100.1")
	require.True(t, res.DeadlineExceeded)

	close(release)
	time.Sleep(50 * time.Millisecond)
	assert.Nil(t, res.Bag.AbuseDB)
}

func TestGather_ParentCancellation(t *testing.T) {
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })

	g := NewGatherer(IntelligenceSources{
		AbuseDB: hangingAbuse{release: release},
	}, time.Minute, logger.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	res := g.Gather(ctx, models.InputTypeIP, "198.51.100.1")
	assert.False(t, res.DeadlineExceeded, "cancellation is not a deadline")
	assert.Nil(t, res.Bag.AbuseDB)
}
