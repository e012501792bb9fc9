package resolver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/miekg/dns"
	"go.uber.org/zap"
)

// ErrResolveFailed means no address could be determined by any method,
// including the degraded-cache fallback.
var ErrResolveFailed = errors.New("unable to resolve host")

const (
	// multicastSuffix marks names resolved over mDNS instead of unicast DNS.
	multicastSuffix = ".local"
	// mdnsAddress is the well-known IPv4 mDNS group.
	mdnsAddress = "224.0.0.251:5353"
	// mdnsTimeout bounds one multicast query.
	mdnsTimeout = 5 * time.Second
)

type cacheEntry struct {
	ip         string
	resolvedAt time.Time
}

// Resolver turns a configured host identifier (literal IPv4, plain hostname
// or .local name) into an IPv4 address. Successful mDNS answers are cached
// per hostname; when a live lookup fails the cached address is returned as a
// degraded fallback regardless of age. Each device instance owns its own
// Resolver so caches are never shared.
type Resolver struct {
	mu     sync.Mutex
	cache  map[string]cacheEntry
	logger *zap.Logger

	// swapped out in tests
	lookupHost      func(ctx context.Context, host string) ([]string, error)
	lookupMulticast func(ctx context.Context, host string) (string, error)
}

func New() *Resolver {
	r := &Resolver{
		cache:  make(map[string]cacheEntry),
		logger: zap.L(),
	}
	r.lookupHost = func(ctx context.Context, host string) ([]string, error) {
		return net.DefaultResolver.LookupHost(ctx, host)
	}
	r.lookupMulticast = queryMulticast
	return r
}

// Resolve implements the resolution order from the device documentation:
// literal IPv4 as-is, unicast DNS for ordinary hostnames, one-shot mDNS for
// .local names with the cache as fallback. IPv6 answers are discarded, the
// controller only speaks IPv4.
func (r *Resolver) Resolve(ctx context.Context, host string) (string, error) {
	if ip := net.ParseIP(host); ip != nil {
		if ip.To4() == nil {
			return "", fmt.Errorf("%w: %s is not an IPv4 address", ErrResolveFailed, host)
		}
		return host, nil
	}

	if !hasMulticastSuffix(host) {
		addrs, err := r.lookupHost(ctx, host)
		if err != nil {
			return "", fmt.Errorf("%w: %s: %v", ErrResolveFailed, host, err)
		}
		for _, addr := range addrs {
			if ip := net.ParseIP(addr); ip != nil && ip.To4() != nil {
				return addr, nil
			}
		}
		return "", fmt.Errorf("%w: %s has no IPv4 address", ErrResolveFailed, host)
	}

	// Serialize mDNS resolution per instance: one in-flight query per
	// hostname, and the cache is only touched under the lock.
	r.mu.Lock()
	defer r.mu.Unlock()

	mctx, cancel := context.WithTimeout(ctx, mdnsTimeout)
	defer cancel()

	ip, err := r.lookupMulticast(mctx, host)
	if err == nil {
		r.cache[host] = cacheEntry{ip: ip, resolvedAt: time.Now()}
		r.logger.Debug("resolved multicast name", zap.String("host", host), zap.String("ip", ip))
		return ip, nil
	}

	if entry, ok := r.cache[host]; ok {
		r.logger.Warn("multicast resolution failed, using cached address",
			zap.String("host", host), zap.String("ip", entry.ip),
			zap.Time("resolved_at", entry.resolvedAt), zap.Error(err))
		return entry.ip, nil
	}
	return "", fmt.Errorf("%w: %s: %v", ErrResolveFailed, host, err)
}

// Invalidate drops the cache entry for host. The poll coordinator calls this
// when repeated connection failures suggest the cached address went stale.
func (r *Resolver) Invalidate(host string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.cache, host)
}

func hasMulticastSuffix(host string) bool {
	return len(host) > len(multicastSuffix) && host[len(host)-len(multicastSuffix):] == multicastSuffix
}

// queryMulticast sends a one-shot mDNS A query to the IPv4 multicast group
// and returns the first IPv4 answer.
func queryMulticast(ctx context.Context, host string) (string, error) {
	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(host), dns.TypeA)
	msg.RecursionDesired = false

	client := &dns.Client{Net: "udp"}
	in, _, err := client.ExchangeContext(ctx, msg, mdnsAddress)
	if err != nil {
		return "", err
	}
	for _, answer := range in.Answer {
		if a, ok := answer.(*dns.A); ok {
			if v4 := a.A.To4(); v4 != nil {
				return v4.String(), nil
			}
		}
	}
	return "", fmt.Errorf("no A record for %s", host)
}
