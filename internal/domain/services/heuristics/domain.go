package heuristics

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net"
	"net/netip"
	"strings"

	"verdict-lab/internal/domain/models"
)

const (
	maxSubdomainLabels = 4
	maxDomainLength    = 50
	maxHyphens         = 3
	entropyThreshold   = 3.5
	entropyMinLength   = 10
)

// EvaluateDomain checks the host structure and that it resolves
func (s *Suite) EvaluateDomain(ctx context.Context, host string) (models.Evaluation, error) {
	var ev models.Evaluation
	host = strings.ToLower(strings.TrimSuffix(host, "."))

	if addr, err := netip.ParseAddr(strings.Trim(host, "[]")); err == nil {
		ev.Add(models.Warn("IP Address as Host", fmt.Sprintf("%s is used instead of a domain name", addr), 20))
		return ev, nil
	}

	s.evaluateStructure(&ev, host)

	addrs, err := s.lookupHost(ctx, host)
	if err != nil {
		if ctx.Err() != nil {
			return ev, fmt.Errorf("resolve %s: %w", host, ctx.Err())
		}
		var dnsErr *net.DNSError
		if errors.As(err, &dnsErr) && dnsErr.IsNotFound {
			ev.Add(models.Fail("Unresolvable Domain", "Host has no A or AAAA records", 20))
		} else {
			s.logger.Debug().Err(err).Str("host", host).Msg("dns lookup failed")
		}
		return ev, nil
	}

	for _, a := range addrs {
		addr, err := netip.ParseAddr(a)
		if err != nil {
			continue
		}
		if addr = addr.Unmap(); addr.IsPrivate() || addr.IsLoopback() || addr.IsUnspecified() {
			ev.Add(models.Fail(
				"Resolves to Private Address",
				fmt.Sprintf("Public name points at internal address %s", addr),
				20,
			))
			return ev, nil
		}
	}
	ev.Add(models.Pass("DNS Resolution", fmt.Sprintf("Resolves to %d address(es)", len(addrs)), 0))

	return ev, nil
}

func (s *Suite) evaluateStructure(ev *models.Evaluation, host string) {
	labels := strings.Split(host, ".")
	if len(labels) > maxSubdomainLabels {
		ev.Add(models.Warn("Excessive Subdomains", fmt.Sprintf("Host has %d labels", len(labels)), 10))
	}
	if len(host) > maxDomainLength {
		ev.Add(models.Warn("Long Domain Name", fmt.Sprintf("Host is %d characters long", len(host)), 10))
	}
	if n := strings.Count(host, "-"); n >= maxHyphens {
		ev.Add(models.Warn("Excessive Hyphens", fmt.Sprintf("Host contains %d hyphens", n), 10))
	}

	label, _, _ := strings.Cut(registrableDomain(host), ".")
	if len(label) >= entropyMinLength {
		if e := shannonEntropy(label); e > entropyThreshold {
			ev.Add(models.Warn(
				"High Entropy Domain",
				fmt.Sprintf("Label %q looks machine generated (entropy %.2f)", label, e),
				15,
			))
		}
	}

	var found []string
	for _, kw := range phishingKeywords {
		if strings.Contains(host, kw) {
			found = append(found, kw)
		}
	}
	if len(found) > 0 {
		ev.Add(models.Warn(
			"Phishing Keywords",
			fmt.Sprintf("Host contains %s", strings.Join(found, ", ")),
			10,
		))
	}
}

// shannonEntropy returns the per-character entropy of s in bits
func shannonEntropy(s string) float64 {
	if s == "" {
		return 0
	}
	counts := make(map[rune]int)
	total := 0
	for _, r := range s {
		counts[r]++
		total++
	}
	var e float64
	for _, c := range counts {
		p := float64(c) / float64(total)
		e -= p * math.Log2(p)
	}
	return e
}
