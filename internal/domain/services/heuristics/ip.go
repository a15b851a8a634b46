package heuristics

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"strings"

	"verdict-lab/internal/domain/models"
)

var (
	sharedAddressSpace = netip.MustParsePrefix("100.64.0.0/10")
	benchmarkingRange  = netip.MustParsePrefix("198.18.0.0/15")

	documentationRanges = []netip.Prefix{
		netip.MustParsePrefix("192.0.2.0/24"),
		netip.MustParsePrefix("198.51.100.0/24"),
		netip.MustParsePrefix("203.0.113.0/24"),
		netip.MustParsePrefix("2001:db8::/32"),
	}
)

// residential PTR name fragments
var dynamicPTRMarkers = []string{"dsl", "dynamic", "dyn-", "pool", "dhcp", "cable", "ppp", "broadband", "customer", "client"}

// EvaluateIP checks the address structure and its reverse DNS
func (s *Suite) EvaluateIP(ctx context.Context, ip string) (models.Evaluation, error) {
	var ev models.Evaluation

	addr, err := netip.ParseAddr(strings.TrimSpace(ip))
	if err != nil {
		ev.Add(models.Fail("Invalid IP Address", fmt.Sprintf("%q is not a valid IPv4 or IPv6 address", ip), 20))
		return ev, nil
	}
	addr = addr.Unmap()

	if h, special := classifyAddress(addr); special {
		ev.Add(h)
		return ev, nil
	}
	ev.Add(models.Pass("Valid IP Format", fmt.Sprintf("Public IPv%d address", version(addr)), 0))

	names, err := s.lookupAddr(ctx, addr.String())
	switch {
	case err != nil:
		if ctx.Err() != nil {
			return ev, fmt.Errorf("reverse dns for %s: %w", addr, ctx.Err())
		}
		var dnsErr *net.DNSError
		if errors.As(err, &dnsErr) && dnsErr.IsNotFound {
			ev.Add(models.Warn("No Reverse DNS", "Address has no PTR record", 5))
		} else {
			s.logger.Debug().Err(err).Str("ip", addr.String()).Msg("reverse dns lookup failed")
		}
	case len(names) == 0:
		ev.Add(models.Warn("No Reverse DNS", "Address has no PTR record", 5))
	default:
		ptr := strings.TrimSuffix(strings.ToLower(names[0]), ".")
		if marker := dynamicMarker(ptr); marker != "" {
			ev.Add(models.Warn("Residential Address",
				fmt.Sprintf("PTR %s looks like a dynamic or consumer range (%s)", ptr, marker), 5))
		} else {
			ev.Add(models.Pass("Reverse DNS", fmt.Sprintf("Resolves back to %s", ptr), 0))
		}
	}

	return ev, nil
}

// classifyAddress reports non-public address classes
func classifyAddress(addr netip.Addr) (models.HeuristicResult, bool) {
	switch {
	case addr.IsUnspecified():
		return models.Fail("Unspecified Address", "The unspecified address cannot be a real endpoint", 15), true
	case addr.IsLoopback():
		return models.Warn("Loopback Address", "Address refers to the local host", 10), true
	case addr.IsPrivate():
		return models.Warn("Private Network Address", "Address belongs to a private (RFC 1918 / ULA) range", 10), true
	case addr.IsLinkLocalUnicast(), addr.IsLinkLocalMulticast():
		return models.Warn("Link-Local Address", "Address is only valid on the local link", 10), true
	case addr.IsMulticast():
		return models.Warn("Multicast Address", "Address is a multicast group, not a host", 10), true
	case sharedAddressSpace.Contains(addr):
		return models.Warn("Carrier-Grade NAT Address", "Address belongs to the shared 100.64.0.0/10 range", 5), true
	case benchmarkingRange.Contains(addr):
		return models.Warn("Reserved Address", "Address belongs to the benchmarking range", 10), true
	}
	for _, p := range documentationRanges {
		if p.Contains(addr) {
			return models.Warn("Reserved Address", fmt.Sprintf("Address belongs to documentation range %s", p), 10), true
		}
	}
	return models.HeuristicResult{}, false
}

func version(addr netip.Addr) int {
	if addr.Is4() {
		return 4
	}
	return 6
}

func dynamicMarker(ptr string) string {
	for _, m := range dynamicPTRMarkers {
		if strings.Contains(ptr, m) {
			return m
		}
	}
	return ""
}
