package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/mattstasch/ffes-sauna-homeassistant/internal/pkg/model"
	"github.com/mattstasch/ffes-sauna-homeassistant/internal/pkg/modbus"
	"github.com/mattstasch/ffes-sauna-homeassistant/internal/pkg/registry"
	"github.com/mattstasch/ffes-sauna-homeassistant/internal/pkg/resolver"
)

type saunaService interface {
	Snapshot() model.Snapshot
	SendStatusCommand(status model.ControllerStatus) error
	SendLightCommand(on bool) error
	SendAuxCommand(on bool) error
	SendTemperatureCommand(temperature int) error
	SendProfileCommand(profile model.Profile) error
	SendStartSessionCommand(params model.SessionParams) error
	SendStopSessionCommand() error
}

// SaunaData serves the latest snapshot, stale or not; the available flag
// tells the caller which it is.
func SaunaData(sauna saunaService) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(sauna.Snapshot()); err != nil {
			handleError(w, err)
		}
	}
}

// SaunaControl dispatches one control action against the device.
func SaunaControl(sauna saunaService) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := io.ReadAll(r.Body)
		if err != nil {
			handleError(w, err)
			return
		}

		controlRequest := ControlRequest{}
		if err := json.Unmarshal(data, &controlRequest); err != nil {
			writeResponse(w, http.StatusBadRequest, ControlResponse{Message: err.Error()})
			return
		}
		handleControlRequest(w, sauna, controlRequest)
	}
}

func handleControlRequest(w http.ResponseWriter, sauna saunaService, req ControlRequest) {
	logger := zap.L()
	var err error

	switch req.Action {
	case StatusAction:
		logger.Info("switching controller status", zap.Int("status", req.Value))
		err = sauna.SendStatusCommand(model.ControllerStatus(req.Value))
	case LightAction:
		err = sauna.SendLightCommand(req.On != nil && *req.On)
	case AuxAction:
		err = sauna.SendAuxCommand(req.On != nil && *req.On)
	case SetTempAction:
		logger.Info("setting target temperature", zap.Int("temperature", req.Value))
		err = sauna.SendTemperatureCommand(req.Value)
	case SetProfileAction:
		logger.Info("setting profile", zap.Int("profile", req.Value))
		err = sauna.SendProfileCommand(model.Profile(req.Value))
	case StartSessionAction:
		logger.Info("starting session", zap.Int("profile", req.Profile), zap.Int("temperature", req.Temperature))
		err = sauna.SendStartSessionCommand(model.SessionParams{
			Profile:         model.Profile(req.Profile),
			Temperature:     req.Temperature,
			SessionTime:     req.SessionTime,
			VentilationTime: req.VentilationTime,
			Aroma:           req.Aroma,
			Humidity:        req.Humidity,
		})
	case StopSessionAction:
		logger.Info("stopping session")
		err = sauna.SendStopSessionCommand()
	default:
		writeResponse(w, http.StatusBadRequest, ControlResponse{Message: "unknown action: " + req.Action.String()})
		return
	}

	if err != nil {
		writeResponse(w, statusFor(err), ControlResponse{Message: err.Error()})
		return
	}
	writeResponse(w, http.StatusOK, ControlResponse{Success: true})
}

// statusFor keeps "bad input" distinguishable from "device unreachable".
func statusFor(err error) int {
	var verr *registry.ValidationError
	if errors.As(err, &verr) {
		return http.StatusBadRequest
	}
	if errors.Is(err, modbus.ErrTransport) || errors.Is(err, modbus.ErrConnect) || errors.Is(err, resolver.ErrResolveFailed) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func writeResponse(w http.ResponseWriter, status int, res ControlResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(res)
}

func handleError(w http.ResponseWriter, err error) {
	w.WriteHeader(http.StatusInternalServerError)
	_, _ = w.Write([]byte(err.Error()))
}
