package cmd

import (
	"context"

	"github.com/mattstasch/ffes-sauna-homeassistant/internal/pkg/model"
)

// SaunaService defines the interface that cmd.run expects from the sauna
// controller service.
type SaunaService interface {
	Run(ctx context.Context) error
	Snapshot() model.Snapshot
	Device() model.Device
	SendStatusCommand(status model.ControllerStatus) error
	SendLightCommand(on bool) error
	SendAuxCommand(on bool) error
	SendTemperatureCommand(temperature int) error
	SendProfileCommand(profile model.Profile) error
	SendStartSessionCommand(params model.SessionParams) error
	SendStopSessionCommand() error
}
