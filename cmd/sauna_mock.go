package cmd

import (
	"context"

	"github.com/mattstasch/ffes-sauna-homeassistant/internal/pkg/model"
)

// MockSaunaService is a mock implementation of the SaunaService interface.
type MockSaunaService struct {
	RunFunc      func(ctx context.Context) error
	SnapshotFunc func() model.Snapshot
	DeviceFunc   func() model.Device

	SendStatusCommandFunc       func(status model.ControllerStatus) error
	SendLightCommandFunc        func(on bool) error
	SendAuxCommandFunc          func(on bool) error
	SendTemperatureCommandFunc  func(temperature int) error
	SendProfileCommandFunc      func(profile model.Profile) error
	SendStartSessionCommandFunc func(params model.SessionParams) error
	SendStopSessionCommandFunc  func() error
}

func (m *MockSaunaService) Run(ctx context.Context) error {
	if m.RunFunc != nil {
		return m.RunFunc(ctx)
	}
	<-ctx.Done()
	return ctx.Err()
}

func (m *MockSaunaService) Snapshot() model.Snapshot {
	if m.SnapshotFunc != nil {
		return m.SnapshotFunc()
	}
	return model.Snapshot{}
}

func (m *MockSaunaService) Device() model.Device {
	if m.DeviceFunc != nil {
		return m.DeviceFunc()
	}
	return model.Device{ID: "ffes.local", Model: "Controller Model 2", Manufacturer: "FFES"}
}

func (m *MockSaunaService) SendStatusCommand(status model.ControllerStatus) error {
	if m.SendStatusCommandFunc != nil {
		return m.SendStatusCommandFunc(status)
	}
	return nil
}

func (m *MockSaunaService) SendLightCommand(on bool) error {
	if m.SendLightCommandFunc != nil {
		return m.SendLightCommandFunc(on)
	}
	return nil
}

func (m *MockSaunaService) SendAuxCommand(on bool) error {
	if m.SendAuxCommandFunc != nil {
		return m.SendAuxCommandFunc(on)
	}
	return nil
}

func (m *MockSaunaService) SendTemperatureCommand(temperature int) error {
	if m.SendTemperatureCommandFunc != nil {
		return m.SendTemperatureCommandFunc(temperature)
	}
	return nil
}

func (m *MockSaunaService) SendProfileCommand(profile model.Profile) error {
	if m.SendProfileCommandFunc != nil {
		return m.SendProfileCommandFunc(profile)
	}
	return nil
}

func (m *MockSaunaService) SendStartSessionCommand(params model.SessionParams) error {
	if m.SendStartSessionCommandFunc != nil {
		return m.SendStartSessionCommandFunc(params)
	}
	return nil
}

func (m *MockSaunaService) SendStopSessionCommand() error {
	if m.SendStopSessionCommandFunc != nil {
		return m.SendStopSessionCommandFunc()
	}
	return nil
}
