package sauna

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mattstasch/ffes-sauna-homeassistant/internal/pkg/contxt"
	"github.com/mattstasch/ffes-sauna-homeassistant/internal/pkg/model"
	"github.com/mattstasch/ffes-sauna-homeassistant/internal/pkg/publisher"
	"github.com/mattstasch/ffes-sauna-homeassistant/internal/pkg/registry"
)

// Command dispatch. Every action validates its parameters before the first
// register write; transport failures surface to the caller with the failed
// step so partial application is visible, never hidden. Writes are confirmed
// by the next poll cycle, not read back here.

// SendStatusCommand sets the controller status register (0-3).
func (s *service) SendStatusCommand(status model.ControllerStatus) error {
	raw, err := registry.Encode(registry.FieldStatus, status)
	if err != nil {
		return err
	}
	return s.writeField(registry.FieldStatus, raw)
}

// SendTemperatureCommand sets the target temperature (20-110 degrees C).
func (s *service) SendTemperatureCommand(temperature int) error {
	raw, err := registry.Encode(registry.FieldSetTemp, temperature)
	if err != nil {
		return err
	}
	return s.writeField(registry.FieldSetTemp, raw)
}

// SendProfileCommand selects an operating profile (1-7).
func (s *service) SendProfileCommand(profile model.Profile) error {
	raw, err := registry.Encode(registry.FieldProfile, profile)
	if err != nil {
		return err
	}
	return s.writeField(registry.FieldProfile, raw)
}

// SendLightCommand switches the cabin light. This controller model exposes no
// light register over Modbus, so the state is tracked host-side and published
// with the snapshot.
func (s *service) SendLightCommand(on bool) error {
	s.setLocalSwitch(func(snap *model.Snapshot) { snap.Light = on })
	return nil
}

// SendAuxCommand switches the auxiliary output. Host-side like the light.
func (s *service) SendAuxCommand(on bool) error {
	s.setLocalSwitch(func(snap *model.Snapshot) { snap.Aux = on })
	return nil
}

// SendStartSessionCommand programs a full session and starts heating. All
// operating parameters are written before the status register so the
// controller never heats with stale settings; a mid-sequence failure reports
// the failed step and leaves already-written registers in place.
func (s *service) SendStartSessionCommand(params model.SessionParams) error {
	steps := []struct {
		field registry.Field
		value any
	}{
		{registry.FieldProfile, params.Profile},
		{registry.FieldSetTemp, params.Temperature},
		{registry.FieldSessionTime, params.SessionTime},
		{registry.FieldVentilationTime, params.VentilationTime},
		{registry.FieldAromaValue, params.Aroma},
		{registry.FieldHumidityValue, params.Humidity},
		{registry.FieldStatus, model.StatusHeating},
	}

	// Validate everything up front; the first invalid field aborts before
	// any register is touched.
	encoded := make([]uint16, len(steps))
	for i, step := range steps {
		raw, err := registry.Encode(step.field, step.value)
		if err != nil {
			return err
		}
		encoded[i] = raw
	}

	for i, step := range steps {
		if err := s.writeField(step.field, encoded[i]); err != nil {
			return fmt.Errorf("start_session aborted at step %d/%d: %w", i+1, len(steps), err)
		}
	}
	s.logger.Info("session started",
		zap.String("profile", params.Profile.String()), zap.Int("temperature", params.Temperature))
	return nil
}

// SendStopSessionCommand turns the controller off.
func (s *service) SendStopSessionCommand() error {
	return s.SendStatusCommand(model.StatusOff)
}

func (s *service) writeField(field registry.Field, raw uint16) error {
	address, err := s.ensureAddress(context.Background())
	if err != nil {
		return err
	}
	s.transport.Connect(address)

	entry := registry.Map[field]
	if err := s.transport.WriteRegister(entry.Address, raw); err != nil {
		return fmt.Errorf("write %s (register %d): %w", field, entry.Address, err)
	}
	s.logger.Debug("register written",
		zap.String("field", string(field)), zap.Uint16("register", entry.Address), zap.Uint16("value", raw))
	return nil
}

func (s *service) setLocalSwitch(apply func(*model.Snapshot)) {
	s.mu.Lock()
	apply(&s.snapshot)
	snap := s.snapshot
	s.mu.Unlock()

	s.sendIfErr(publisher.PublishSnapshot(contxt.New(5*time.Second), s.Device(), snap))
}
