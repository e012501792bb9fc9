package resolver

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestResolver(t *testing.T) *Resolver {
	t.Helper()
	r := New()
	r.lookupHost = func(ctx context.Context, host string) ([]string, error) {
		t.Fatalf("unexpected DNS lookup for %s", host)
		return nil, nil
	}
	r.lookupMulticast = func(ctx context.Context, host string) (string, error) {
		t.Fatalf("unexpected mDNS lookup for %s", host)
		return "", nil
	}
	return r
}

func TestLiteralIPv4ReturnedWithoutLookup(t *testing.T) {
	r := newTestResolver(t)

	ip, err := r.Resolve(context.Background(), "192.168.1.50")
	require.NoError(t, err)
	assert.Equal(t, "192.168.1.50", ip)
}

func TestLiteralIPv6Rejected(t *testing.T) {
	r := newTestResolver(t)

	_, err := r.Resolve(context.Background(), "fe80::1")
	assert.ErrorIs(t, err, ErrResolveFailed)
}

func TestPlainHostnameUsesDNS(t *testing.T) {
	r := newTestResolver(t)
	r.lookupHost = func(ctx context.Context, host string) ([]string, error) {
		assert.Equal(t, "sauna.lan", host)
		return []string{"fe80::1", "10.0.0.7"}, nil
	}

	ip, err := r.Resolve(context.Background(), "sauna.lan")
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.7", ip, "IPv6 answers must be filtered out")
}

func TestPlainHostnameOnlyIPv6Fails(t *testing.T) {
	r := newTestResolver(t)
	r.lookupHost = func(ctx context.Context, host string) ([]string, error) {
		return []string{"fe80::1"}, nil
	}

	_, err := r.Resolve(context.Background(), "sauna.lan")
	assert.ErrorIs(t, err, ErrResolveFailed)
}

func TestMulticastNameResolvedAndCached(t *testing.T) {
	r := newTestResolver(t)
	calls := 0
	r.lookupMulticast = func(ctx context.Context, host string) (string, error) {
		calls++
		assert.Equal(t, "ffes.local", host)
		return "192.168.1.60", nil
	}

	ip, err := r.Resolve(context.Background(), "ffes.local")
	require.NoError(t, err)
	assert.Equal(t, "192.168.1.60", ip)
	require.Equal(t, 1, calls)

	// Failure after a success falls back to the cached address.
	r.lookupMulticast = func(ctx context.Context, host string) (string, error) {
		return "", errors.New("no answer")
	}
	ip, err = r.Resolve(context.Background(), "ffes.local")
	require.NoError(t, err)
	assert.Equal(t, "192.168.1.60", ip)
}

func TestMulticastFailureWithoutCacheFails(t *testing.T) {
	r := newTestResolver(t)
	r.lookupMulticast = func(ctx context.Context, host string) (string, error) {
		return "", errors.New("no answer")
	}

	_, err := r.Resolve(context.Background(), "ffes.local")
	assert.ErrorIs(t, err, ErrResolveFailed)
}

func TestInvalidateDropsCacheEntry(t *testing.T) {
	r := newTestResolver(t)
	r.lookupMulticast = func(ctx context.Context, host string) (string, error) {
		return "192.168.1.60", nil
	}
	_, err := r.Resolve(context.Background(), "ffes.local")
	require.NoError(t, err)

	r.Invalidate("ffes.local")
	r.lookupMulticast = func(ctx context.Context, host string) (string, error) {
		return "", errors.New("no answer")
	}
	_, err = r.Resolve(context.Background(), "ffes.local")
	assert.ErrorIs(t, err, ErrResolveFailed, "invalidated entry must not be used as fallback")
}

func TestMulticastLookupBounded(t *testing.T) {
	r := newTestResolver(t)
	r.lookupMulticast = func(ctx context.Context, host string) (string, error) {
		deadline, ok := ctx.Deadline()
		require.True(t, ok, "mDNS lookup must carry a deadline")
		assert.NotZero(t, deadline)
		return "192.168.1.60", nil
	}

	_, err := r.Resolve(context.Background(), "ffes.local")
	require.NoError(t, err)
}
