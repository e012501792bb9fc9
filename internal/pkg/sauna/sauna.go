package sauna

import (
	"context"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/mattstasch/ffes-sauna-homeassistant/internal/pkg/config"
	"github.com/mattstasch/ffes-sauna-homeassistant/internal/pkg/model"
)

// transport is the register-level device connection the service drives.
type transport interface {
	Connect(address string)
	ReadHoldingRegisters(start, count uint16) ([]uint16, error)
	WriteRegister(address, value uint16) error
}

// addressResolver turns the configured host identifier into an IPv4 address.
type addressResolver interface {
	Resolve(ctx context.Context, host string) (string, error)
	Invalidate(host string)
}

type service struct {
	cfg       *config.SaunaConfig
	transport transport
	resolver  addressResolver
	logger    *zap.Logger
	errChan   chan error

	// snapshot is exclusively owned by the poll path; everyone else gets
	// copies through Snapshot().
	mu       sync.RWMutex
	snapshot model.Snapshot

	// polling enforces at-most-one in-flight cycle. A cycle that comes due
	// while the previous one runs is skipped, never queued.
	polling atomic.Bool

	// addrMu guards the resolved-address bookkeeping shared between the poll
	// path and command dispatch.
	addrMu           sync.Mutex
	address          string
	addressValidated bool
	failures         int
}

func New(cfg *config.SaunaConfig, transport transport, resolver addressResolver, errChan chan error) *service {
	return &service{
		cfg:       cfg,
		transport: transport,
		resolver:  resolver,
		logger:    zap.L(),
		errChan:   errChan,
		snapshot: model.Snapshot{
			ControllerStatus: model.StatusUnknown,
			ControllerModel:  defaultControllerModel,
		},
	}
}

// controllerModel is not readable over the wire; 2 is what the vendor ships.
const defaultControllerModel = 2

func (s *service) sendIfErr(err error) {
	if err != nil {
		s.errChan <- err
	}
}

// Snapshot returns a copy of the last known device state.
func (s *service) Snapshot() model.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// Device identifies this controller instance for publishing.
func (s *service) Device() model.Device {
	return model.Device{
		ID:           s.cfg.Host,
		Model:        "Controller Model " + strconv.Itoa(defaultControllerModel),
		Manufacturer: "FFES",
	}
}

// Run polls the controller at the configured interval until ctx is cancelled.
// An in-flight cycle is allowed to finish or time out naturally; the ticker
// simply stops firing.
func (s *service) Run(ctx context.Context) error {
	if err := s.PollOnce(ctx); err != nil {
		s.logger.Warn("initial poll failed", zap.Error(err))
	}

	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("poll loop stopped")
			return ctx.Err()
		case <-ticker.C:
			if err := s.PollOnce(ctx); err != nil {
				s.logger.Warn("poll cycle failed", zap.Error(err))
			}
		}
	}
}

// ensureAddress returns the ip:port to talk to, resolving when there is no
// address yet, the current one has never served a successful poll, or the
// consecutive-failure counter says the address may have gone stale.
func (s *service) ensureAddress(ctx context.Context) (string, error) {
	s.addrMu.Lock()
	defer s.addrMu.Unlock()

	forced := s.failures > 0 && s.failures%s.cfg.FailureThreshold == 0
	if s.address == "" || !s.addressValidated || forced {
		if forced {
			// Connection failures mean the cached address cannot be
			// trusted; force a fresh lookup.
			s.resolver.Invalidate(s.cfg.Host)
			s.logger.Info("forcing re-resolution after repeated failures",
				zap.String("host", s.cfg.Host), zap.Int("failures", s.failures))
		}
		ip, err := s.resolver.Resolve(ctx, s.cfg.Host)
		if err != nil {
			return "", err
		}
		if ip != s.address {
			s.addressValidated = false
		}
		s.address = ip
	}
	return net.JoinHostPort(s.address, strconv.Itoa(s.cfg.Port)), nil
}

func (s *service) markSuccess() {
	s.addrMu.Lock()
	s.failures = 0
	s.addressValidated = true
	s.addrMu.Unlock()
}

func (s *service) markFailure() int {
	s.addrMu.Lock()
	defer s.addrMu.Unlock()
	s.failures++
	return s.failures
}
