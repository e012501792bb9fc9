package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattstasch/ffes-sauna-homeassistant/internal/pkg/model"
	"github.com/mattstasch/ffes-sauna-homeassistant/internal/pkg/modbus"
	"github.com/mattstasch/ffes-sauna-homeassistant/internal/pkg/registry"
)

type mockSauna struct {
	SnapshotFunc                func() model.Snapshot
	SendStatusCommandFunc       func(status model.ControllerStatus) error
	SendLightCommandFunc        func(on bool) error
	SendAuxCommandFunc          func(on bool) error
	SendTemperatureCommandFunc  func(temperature int) error
	SendProfileCommandFunc      func(profile model.Profile) error
	SendStartSessionCommandFunc func(params model.SessionParams) error
	SendStopSessionCommandFunc  func() error
}

func (m *mockSauna) Snapshot() model.Snapshot {
	if m.SnapshotFunc != nil {
		return m.SnapshotFunc()
	}
	return model.Snapshot{}
}

func (m *mockSauna) SendStatusCommand(status model.ControllerStatus) error {
	if m.SendStatusCommandFunc != nil {
		return m.SendStatusCommandFunc(status)
	}
	return nil
}

func (m *mockSauna) SendLightCommand(on bool) error {
	if m.SendLightCommandFunc != nil {
		return m.SendLightCommandFunc(on)
	}
	return nil
}

func (m *mockSauna) SendAuxCommand(on bool) error {
	if m.SendAuxCommandFunc != nil {
		return m.SendAuxCommandFunc(on)
	}
	return nil
}

func (m *mockSauna) SendTemperatureCommand(temperature int) error {
	if m.SendTemperatureCommandFunc != nil {
		return m.SendTemperatureCommandFunc(temperature)
	}
	return nil
}

func (m *mockSauna) SendProfileCommand(profile model.Profile) error {
	if m.SendProfileCommandFunc != nil {
		return m.SendProfileCommandFunc(profile)
	}
	return nil
}

func (m *mockSauna) SendStartSessionCommand(params model.SessionParams) error {
	if m.SendStartSessionCommandFunc != nil {
		return m.SendStartSessionCommandFunc(params)
	}
	return nil
}

func (m *mockSauna) SendStopSessionCommand() error {
	if m.SendStopSessionCommandFunc != nil {
		return m.SendStopSessionCommandFunc()
	}
	return nil
}

func postControl(t *testing.T, sauna saunaService, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/sauna-control", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	SaunaControl(sauna)(rec, req)
	return rec
}

func decodeControl(t *testing.T, rec *httptest.ResponseRecorder) ControlResponse {
	t.Helper()
	var res ControlResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	return res
}

func TestSaunaDataReturnsSnapshot(t *testing.T) {
	temp := 85
	sauna := &mockSauna{
		SnapshotFunc: func() model.Snapshot {
			return model.Snapshot{
				ControllerStatus: model.StatusHeating,
				ActualTemp:       72,
				SetTemp:          &temp,
				LastUpdated:      time.Date(2025, 3, 14, 18, 0, 0, 0, time.UTC),
				Available:        true,
			}
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/sauna-data", nil)
	rec := httptest.NewRecorder()
	SaunaData(sauna)(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, float64(model.StatusHeating), body["controllerStatus"])
	assert.Equal(t, float64(72), body["actualTemp"])
	assert.Equal(t, float64(85), body["setTemp"])
	assert.Equal(t, true, body["available"])
}

func TestControlStatusAction(t *testing.T) {
	var got model.ControllerStatus
	sauna := &mockSauna{
		SendStatusCommandFunc: func(status model.ControllerStatus) error {
			got = status
			return nil
		},
	}

	rec := postControl(t, sauna, `{"action":"set_controller_status","value":2}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decodeControl(t, rec).Success)
	assert.Equal(t, model.StatusVentilation, got)
}

func TestControlLightAction(t *testing.T) {
	var got *bool
	sauna := &mockSauna{
		SendLightCommandFunc: func(on bool) error {
			got = &on
			return nil
		},
	}

	rec := postControl(t, sauna, `{"action":"light","on":true}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, got)
	assert.True(t, *got)

	// omitted "on" means off
	rec = postControl(t, sauna, `{"action":"light"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, *got)
}

func TestControlStartSessionAction(t *testing.T) {
	var got model.SessionParams
	sauna := &mockSauna{
		SendStartSessionCommandFunc: func(params model.SessionParams) error {
			got = params
			return nil
		},
	}

	rec := postControl(t, sauna, `{
		"action": "start_session",
		"profile": 3,
		"temperature": 60,
		"session_time": "01:30",
		"ventilation_time": "00:15",
		"aroma": 40,
		"humidity": 55
	}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.SessionParams{
		Profile:         model.ProfileWetSauna,
		Temperature:     60,
		SessionTime:     "01:30",
		VentilationTime: "00:15",
		Aroma:           40,
		Humidity:        55,
	}, got)
}

func TestControlStopSessionAction(t *testing.T) {
	called := false
	sauna := &mockSauna{
		SendStopSessionCommandFunc: func() error {
			called = true
			return nil
		},
	}

	rec := postControl(t, sauna, `{"action":"stop_session"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, called)
}

func TestControlUnknownAction(t *testing.T) {
	rec := postControl(t, &mockSauna{}, `{"action":"defrost"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeControl(t, rec).Message, "unknown action")
}

func TestControlMalformedBody(t *testing.T) {
	rec := postControl(t, &mockSauna{}, `{"action":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestControlValidationErrorMapsTo400(t *testing.T) {
	sauna := &mockSauna{
		SendTemperatureCommandFunc: func(temperature int) error {
			return &registry.ValidationError{Field: registry.FieldSetTemp, Reason: "must be 20-110, got 150"}
		},
	}

	rec := postControl(t, sauna, `{"action":"set_temp","value":150}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	res := decodeControl(t, rec)
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "must be 20-110")
}

func TestControlTransportErrorMapsTo502(t *testing.T) {
	sauna := &mockSauna{
		SendStatusCommandFunc: func(status model.ControllerStatus) error {
			return fmt.Errorf("write controllerStatus (register 20): %w", modbus.ErrTransport)
		},
	}

	rec := postControl(t, sauna, `{"action":"set_controller_status","value":1}`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestControlUnclassifiedErrorMapsTo500(t *testing.T) {
	sauna := &mockSauna{
		SendAuxCommandFunc: func(on bool) error {
			return fmt.Errorf("boom")
		},
	}

	rec := postControl(t, sauna, `{"action":"aux","on":true}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
