package sauna

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/mattstasch/ffes-sauna-homeassistant/internal/pkg/contxt"
	"github.com/mattstasch/ffes-sauna-homeassistant/internal/pkg/publisher"
	"github.com/mattstasch/ffes-sauna-homeassistant/internal/pkg/registry"
)

// PollOnce runs a single poll cycle. If a cycle is already in flight the call
// is skipped: overlapping reads against one physical connection are never
// allowed.
func (s *service) PollOnce(ctx context.Context) error {
	if !s.polling.CompareAndSwap(false, true) {
		s.logger.Debug("poll cycle already in flight, skipping")
		return nil
	}
	defer s.polling.Store(false)

	if err := s.poll(ctx); err != nil {
		s.degrade(err)
		return err
	}
	return nil
}

func (s *service) poll(ctx context.Context) error {
	address, err := s.ensureAddress(ctx)
	if err != nil {
		return err
	}
	s.transport.Connect(address)

	start, count := registry.Span()
	regs, err := s.transport.ReadHoldingRegisters(start, count)
	if err != nil {
		return err
	}

	s.mu.Lock()
	snap := s.snapshot
	for field, entry := range registry.Map {
		raw := regs[entry.Address-start]
		if err := entry.Decode(raw, &snap); err != nil {
			// One bad register never blocks the rest; the field keeps
			// its previous value.
			s.logger.Debug("field decode failed",
				zap.String("field", string(field)), zap.Uint16("raw", raw), zap.Error(err))
		}
	}
	snap.LastUpdated = time.Now()
	snap.Available = true
	s.snapshot = snap
	s.mu.Unlock()

	s.markSuccess()
	s.logger.Debug("poll cycle complete", zap.String("address", address))

	s.sendIfErr(publisher.PublishSnapshot(contxt.New(5*time.Second), s.Device(), snap))
	return nil
}

// degrade flags the snapshot stale after a failed cycle. The previous values
// are retained so consumers keep the last good state instead of going blank.
func (s *service) degrade(cause error) {
	failures := s.markFailure()

	s.mu.Lock()
	s.snapshot.Available = false
	snap := s.snapshot
	s.mu.Unlock()

	s.logger.Warn("poll cycle degraded",
		zap.Int("consecutive_failures", failures), zap.Error(cause))

	s.sendIfErr(publisher.PublishSnapshot(contxt.New(5*time.Second), s.Device(), snap))
}
