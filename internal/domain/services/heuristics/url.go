package heuristics

import (
	"context"
	"fmt"
	"net/netip"
	"strings"

	"verdict-lab/internal/domain/models"
	"verdict-lab/internal/domain/services"
)

const maxURLLength = 200

// EvaluateURL checks scheme, embedded credentials and overall shape of a URL
func (s *Suite) EvaluateURL(ctx context.Context, rawURL string) (models.Evaluation, error) {
	var ev models.Evaluation
	if err := ctx.Err(); err != nil {
		return ev, err
	}

	u, err := services.ParseTargetURL(rawURL)
	if err != nil {
		return ev, fmt.Errorf("parse url: %w", err)
	}

	switch strings.ToLower(u.Scheme) {
	case "https":
		ev.Add(models.Pass("Secure Protocol", "URL uses HTTPS", 0))
	case "http":
		ev.Add(models.Warn("Insecure Protocol", "URL uses plain HTTP", 10))
	default:
		ev.Add(models.Warn("Unusual Scheme", fmt.Sprintf("URL uses the %q scheme", u.Scheme), 10))
	}

	if u.User != nil {
		ev.Add(models.Fail(
			"Credentials in URL",
			fmt.Sprintf("Text before @ (%q) hides the real host %s", u.User.Username(), u.Hostname()),
			25,
		))
	}

	if _, err := netip.ParseAddr(u.Hostname()); err == nil {
		ev.Add(models.Fail("IP Address URL", "URL points at a raw IP address instead of a domain", 20))
	}

	if n := len(rawURL); n > maxURLLength {
		ev.Add(models.Warn("Long URL", fmt.Sprintf("URL is %d characters long", n), 10))
	}

	if strings.Count(rawURL, "//") > 1 {
		ev.Add(models.Warn("Nested URL", "URL contains another URL after the host", 10))
	}

	return ev, nil
}
