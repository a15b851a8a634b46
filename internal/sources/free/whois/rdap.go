package whois

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"

	"verdict-lab/internal/domain/models"
	"verdict-lab/internal/sources"
	"verdict-lab/pkg/logger"
)

const (
	rdapAPIURL = "https://rdap.org"
	rdapSlug   = "rdap"
)

// RDAPConnector resolves domain registration data over RDAP
type RDAPConnector struct {
	*sources.BaseConnector
	logger *logger.Logger
	now    func() time.Time
}

// NewRDAPConnector creates a new RDAP connector
func NewRDAPConnector(log *logger.Logger) *RDAPConnector {
	return &RDAPConnector{
		BaseConnector: sources.NewBaseConnector(
			rdapSlug,
			"RDAP",
			models.SourceCategoryRegistry,
			false,
			rdapAPIURL,
		),
		logger: log.WithComponent("rdap"),
		now:    time.Now,
	}
}

// WithClock overrides the clock used for domain age
func (c *RDAPConnector) WithClock(now func() time.Time) *RDAPConnector {
	c.now = now
	return c
}

type rdapDomainResponse struct {
	LDHName string `json:"ldhName"`
	Events  []struct {
		EventAction string `json:"eventAction"`
		EventDate   string `json:"eventDate"`
	} `json:"events"`
	Entities []struct {
		Roles      []string `json:"roles"`
		VCardArray []any    `json:"vcardArray"`
	} `json:"entities"`
}

// Lookup returns registration data for the registrable part of host
func (c *RDAPConnector) Lookup(ctx context.Context, host string) (*models.WhoisRecord, error) {
	if err := c.Ready(); err != nil {
		return nil, err
	}

	host = strings.TrimSuffix(strings.ToLower(host), ".")
	domain, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		domain = host
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL()+"/domain/"+url.PathEscape(domain), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/rdap+json")

	var resp rdapDomainResponse
	if err := sources.DoJSON(c.HTTPClient(), c.Name(), req, &resp); err != nil {
		return nil, err
	}

	record := &models.WhoisRecord{Domain: domain, Registrar: registrarName(resp)}
	for _, ev := range resp.Events {
		t, err := time.Parse(time.RFC3339, ev.EventDate)
		if err != nil {
			continue
		}
		switch ev.EventAction {
		case "registration":
			record.RegisteredAt = t.UTC()
		case "expiration":
			exp := t.UTC()
			record.ExpiresAt = &exp
		}
	}
	if record.RegisteredAt.IsZero() {
		return nil, fmt.Errorf("RDAP record for %s has no registration event", domain)
	}

	record.AgeDays = int(c.now().Sub(record.RegisteredAt).Hours() / 24)
	if record.AgeDays < 0 {
		record.AgeDays = 0
	}

	c.logger.Debug().Str("domain", domain).Int("age_days", record.AgeDays).Msg("RDAP lookup completed")
	return record, nil
}

// registrarName pulls the "fn" property out of the registrar's jCard
func registrarName(resp rdapDomainResponse) string {
	for _, e := range resp.Entities {
		isRegistrar := false
		for _, r := range e.Roles {
			if r == "registrar" {
				isRegistrar = true
			}
		}
		if !isRegistrar || len(e.VCardArray) < 2 {
			continue
		}
		props, ok := e.VCardArray[1].([]any)
		if !ok {
			continue
		}
		for _, p := range props {
			fields, ok := p.([]any)
			if !ok || len(fields) < 4 {
				continue
			}
			if name, _ := fields[0].(string); name == "fn" {
				if v, ok := fields[3].(string); ok {
					return v
				}
			}
		}
	}
	return ""
}
