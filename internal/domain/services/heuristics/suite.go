// Package heuristics holds the local evaluators the accumulator sequences for
// ip, domain and url inputs. Pure evaluators look only at the text they are
// given; the context-taking ones may resolve DNS or consult the web archive.
package heuristics

import (
	"context"
	"net"
	"time"

	"verdict-lab/internal/domain/services"
	"verdict-lab/pkg/logger"
)

const defaultDNSTimeout = 3 * time.Second

// Resolver is the subset of *net.Resolver the evaluators use
type Resolver interface {
	LookupHost(ctx context.Context, host string) ([]string, error)
	LookupAddr(ctx context.Context, addr string) ([]string, error)
}

// Suite implements services.HeuristicSuite
type Suite struct {
	resolver   Resolver
	archive    services.ArchiveLookup
	now        func() time.Time
	dnsTimeout time.Duration
	logger     *logger.Logger
}

var _ services.HeuristicSuite = (*Suite)(nil)

// Option configures a Suite
type Option func(*Suite)

// WithResolver replaces the system resolver
func WithResolver(r Resolver) Option {
	return func(s *Suite) { s.resolver = r }
}

// WithArchive sets the archive used when no history was gathered
func WithArchive(a services.ArchiveLookup) Option {
	return func(s *Suite) { s.archive = a }
}

// WithClock overrides time.Now, mainly for archive age tests
func WithClock(now func() time.Time) Option {
	return func(s *Suite) { s.now = now }
}

// WithDNSTimeout bounds each DNS lookup
func WithDNSTimeout(d time.Duration) Option {
	return func(s *Suite) { s.dnsTimeout = d }
}

// New creates the evaluator suite
func New(log *logger.Logger, opts ...Option) *Suite {
	s := &Suite{
		resolver:   net.DefaultResolver,
		now:        time.Now,
		dnsTimeout: defaultDNSTimeout,
		logger:     log.WithComponent("heuristics"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// lookupHost resolves host under the suite's DNS timeout
func (s *Suite) lookupHost(ctx context.Context, host string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.dnsTimeout)
	defer cancel()
	return s.resolver.LookupHost(ctx, host)
}

func (s *Suite) lookupAddr(ctx context.Context, addr string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.dnsTimeout)
	defer cancel()
	return s.resolver.LookupAddr(ctx, addr)
}
