package registry

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattstasch/ffes-sauna-homeassistant/internal/pkg/model"
)

func TestPackedTimeRoundTrip(t *testing.T) {
	for _, s := range []string{"00:00", "00:40", "01:30", "02:59", "10:05"} {
		raw, err := PackTime(s)
		require.NoError(t, err, s)
		out, err := FormatTime(raw)
		require.NoError(t, err, s)
		assert.Equal(t, s, out)
	}
}

func TestPackTimeRejectsBadMinutes(t *testing.T) {
	for _, s := range []string{"01:60", "00:99", "1:75"} {
		_, err := PackTime(s)
		assert.Error(t, err, s)
	}
}

func TestPackTimeRejectsGarbage(t *testing.T) {
	for _, s := range []string{"", "90", "one:30", "01:-5", ":"} {
		_, err := PackTime(s)
		assert.Error(t, err, s)
	}
}

func TestFormatTimeRejectsMalformedRegister(t *testing.T) {
	_, err := FormatTime(175) // 01:75
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestDecodeScenario(t *testing.T) {
	// Raw registers {1:95, 2:29, 4:2, 5:40, 20:3}.
	snap := model.Snapshot{}
	require.NoError(t, Decode(FieldSetTemp, 95, &snap))
	require.NoError(t, Decode(FieldActualTemp, 29, &snap))
	require.NoError(t, Decode(FieldProfile, 2, &snap))
	require.NoError(t, Decode(FieldSessionTime, 40, &snap))
	require.NoError(t, Decode(FieldStatus, 3, &snap))

	require.NotNil(t, snap.SetTemp)
	assert.Equal(t, 95, *snap.SetTemp)
	assert.Equal(t, 29, snap.ActualTemp)
	require.NotNil(t, snap.Profile)
	assert.Equal(t, model.ProfileDrySauna, *snap.Profile)
	require.NotNil(t, snap.SessionTime)
	assert.Equal(t, "00:40", *snap.SessionTime)
	assert.Equal(t, model.StatusStandby, snap.ControllerStatus)
}

func TestDecodeOutOfRangeEnumLeavesSnapshotUntouched(t *testing.T) {
	snap := model.Snapshot{ControllerStatus: model.StatusHeating}
	err := Decode(FieldStatus, 7, &snap)
	assert.ErrorIs(t, err, ErrMalformed)
	assert.Equal(t, model.StatusHeating, snap.ControllerStatus)

	err = Decode(FieldProfile, 9, &snap)
	assert.ErrorIs(t, err, ErrMalformed)
	assert.Nil(t, snap.Profile)
}

func TestEncodeTemperatureRange(t *testing.T) {
	raw, err := Encode(FieldSetTemp, 80)
	require.NoError(t, err)
	assert.Equal(t, uint16(80), raw)

	for _, temp := range []int{19, 111, -4, 500} {
		_, err := Encode(FieldSetTemp, temp)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr, "temp %d", temp)
		assert.Equal(t, FieldSetTemp, verr.Field)
	}
}

func TestEncodePercentageRange(t *testing.T) {
	for _, field := range []Field{FieldAromaValue, FieldHumidityValue} {
		raw, err := Encode(field, 100)
		require.NoError(t, err)
		assert.Equal(t, uint16(100), raw)

		_, err = Encode(field, 101)
		var verr *ValidationError
		assert.ErrorAs(t, err, &verr)
	}
}

func TestEncodeReadOnlyField(t *testing.T) {
	_, err := Encode(FieldActualTemp, 50)
	assert.ErrorIs(t, err, ErrReadOnly)
	_, err = Encode(FieldHumidity, 50)
	assert.ErrorIs(t, err, ErrReadOnly)
}

func TestEncodeStatus(t *testing.T) {
	raw, err := Encode(FieldStatus, model.StatusHeating)
	require.NoError(t, err)
	assert.Equal(t, uint16(1), raw)

	_, err = Encode(FieldStatus, model.ControllerStatus(4))
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestSpanCoversWholeMap(t *testing.T) {
	start, count := Span()
	assert.Equal(t, uint16(1), start)
	assert.Equal(t, uint16(20), count)

	for field, entry := range Map {
		assert.GreaterOrEqual(t, entry.Address, start, field)
		assert.Less(t, entry.Address, start+count, field)
	}
}

func TestWritableFieldsHaveEncoders(t *testing.T) {
	writable := []Field{FieldSetTemp, FieldProfile, FieldSessionTime, FieldVentilationTime, FieldAromaValue, FieldHumidityValue, FieldStatus}
	for _, field := range writable {
		assert.NotNil(t, Map[field].Encode, field)
	}
	readOnly := []Field{FieldActualTemp, FieldHumidity, FieldErrorCode}
	for _, field := range readOnly {
		assert.Nil(t, Map[field].Encode, field)
	}
}

func TestUnknownField(t *testing.T) {
	snap := model.Snapshot{}
	assert.Error(t, Decode(Field("bogus"), 1, &snap))
	_, err := Encode(Field("bogus"), 1)
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrReadOnly))
}
