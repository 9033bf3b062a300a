package device

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thatsimonsguy/airzone-cloud/internal/entity"
	"github.com/thatsimonsguy/airzone-cloud/internal/model"
)

func newTestDevice(t *testing.T, data map[string]any) *Device {
	t.Helper()
	if data == nil {
		data = map[string]any{}
	}
	if _, ok := data[APIDeviceID]; !ok {
		data[APIDeviceID] = "dev1"
	}
	d, err := New("inst1", "ws1", data)
	require.NoError(t, err)
	return d
}

func fullUpdate() map[string]any {
	return map[string]any{
		APIIsConnected:    true,
		APIWSConnected:    true,
		APIAQActive:       true,
		APIAQPM1:          3.0,
		APIAQPM2p5:        "5",
		APIAQPM10:         8.0,
		APIAQCO2:          612.0,
		APIAQTVOC:         120.0,
		APIAQHumidity:     41.0,
		APIAQTemp:         map[string]any{APICelsius: 21.5, "fah": 70.7},
		APIAQPresent:      true,
		APIAQQuality:      "good",
		APIAQScore:        87.0,
		APIAutoMode:       2.0,
		APIDoubleSetPoint: false,
		APIDualSPConf:     true,
		APIErrors:         []any{"E01"},
		APIModeAvail:      []any{1.0, 2.0, 3.0},
		APIMode:           3.0,
		APISimulatorMode:  false,
		APIWarnings:       []any{"W02"},
	}
}

func TestNew_Defaults(t *testing.T) {
	d := newTestDevice(t, nil)

	assert.Equal(t, "dev1", d.ID())
	assert.Equal(t, "inst1", d.Installation())
	assert.Equal(t, "ws1", d.WebServer())
	assert.Equal(t, "Device", d.Name())
	assert.True(t, d.IsConnected())
	assert.True(t, d.WSConnected())
	assert.True(t, d.Available())
	assert.False(t, d.Problems())
	assert.False(t, d.DoubleSetPoint())
	assert.Nil(t, d.Mode())
	assert.Empty(t, d.Modes())
}

func TestNew_FromPayload(t *testing.T) {
	d := newTestDevice(t, map[string]any{
		APIDeviceID:    42.0,
		APIName:        "Salon",
		APIIsConnected: false,
	})

	assert.Equal(t, "42", d.ID())
	assert.Equal(t, "Salon", d.Name())
	assert.False(t, d.IsConnected())
	assert.False(t, d.Available())
}

func TestNew_MissingID(t *testing.T) {
	_, err := New("inst1", "ws1", map[string]any{APIName: "x"})
	assert.ErrorIs(t, err, ErrMissingID)
}

func TestUpdateData_AppliesAllFields(t *testing.T) {
	d := newTestDevice(t, nil)
	d.UpdateData(entity.NewUpdate(fullUpdate()))

	require.NotNil(t, d.AQActive())
	assert.True(t, *d.AQActive())
	assert.Equal(t, 3, *d.AQPM1())
	assert.Equal(t, 5, *d.AQPM2p5())
	assert.Equal(t, 8, *d.AQPM10())
	assert.Equal(t, 612, *d.AQCO2())
	assert.Equal(t, 120, *d.AQTVOC())
	assert.Equal(t, 41, *d.AQHumidity())
	assert.Equal(t, 21.5, *d.AQTemp())
	assert.True(t, *d.AQPresent())
	assert.Equal(t, "good", *d.AQQuality())
	assert.Equal(t, 87, *d.AQScore())
	assert.Equal(t, model.ModeCooling, *d.AutoMode())
	assert.False(t, d.DoubleSetPoint())
	assert.True(t, *d.DualSPConf())
	assert.Equal(t, []string{"E01"}, d.Errors())
	assert.Equal(t, []model.OperationMode{model.ModeAuto, model.ModeCooling, model.ModeHeating}, d.Modes())
	assert.Equal(t, model.ModeHeating, *d.Mode())
	assert.False(t, *d.SimulatorMode())
	assert.Equal(t, []string{"W02"}, d.Warnings())
	assert.True(t, d.Problems())
}

func TestUpdateData_Idempotent(t *testing.T) {
	once := newTestDevice(t, nil)
	twice := newTestDevice(t, nil)

	update := entity.NewUpdate(fullUpdate())
	once.UpdateData(update)
	twice.UpdateData(update)
	twice.UpdateData(update)

	assert.Equal(t, once.Data(), twice.Data())
}

func TestUpdateData_Stickiness(t *testing.T) {
	d := newTestDevice(t, nil)
	d.UpdateData(entity.NewUpdate(fullUpdate()))
	before := d.Data()

	// absent keys
	d.UpdateData(entity.NewUpdate(map[string]any{}))
	assert.Equal(t, before, d.Data())

	// present but unparsable
	d.UpdateData(entity.NewUpdate(map[string]any{
		APIIsConnected:   "sometimes",
		APIAQPM1:         "lots",
		APIAQTemp:        map[string]any{APICelsius: "warm"},
		APIAQQuality:     map[string]any{},
		APIAutoMode:      99.0,
		APIMode:          "heat",
		APIModeAvail:     []any{1.0, 77.0},
		APIErrors:        "E99",
		APISimulatorMode: []any{},
	}))
	assert.Equal(t, before, d.Data())
}

func TestUpdateData_NullValuesRetain(t *testing.T) {
	d := newTestDevice(t, nil)
	d.UpdateData(entity.NewUpdate(fullUpdate()))

	d.UpdateData(entity.NewUpdate(map[string]any{
		APIAQPM1:     nil,
		APIMode:      nil,
		APIModeAvail: nil,
		APIErrors:    nil,
	}))

	assert.Equal(t, 3, *d.AQPM1())
	assert.Equal(t, model.ModeHeating, *d.Mode())
	assert.Len(t, d.Modes(), 3)
	assert.Equal(t, []string{"E01"}, d.Errors())
}

func TestUpdateData_ListReplacement(t *testing.T) {
	d := newTestDevice(t, nil)
	d.UpdateData(entity.NewUpdate(map[string]any{APIErrors: []any{"E01", "E02"}}))
	require.Len(t, d.Errors(), 2)

	d.UpdateData(entity.NewUpdate(map[string]any{APIWarnings: []any{"W01"}}))
	assert.Len(t, d.Errors(), 2, "missing errors key keeps the list")

	d.UpdateData(entity.NewUpdate(map[string]any{APIErrors: []any{}}))
	assert.Empty(t, d.Errors(), "empty errors list replaces the old one")
	assert.True(t, d.Problems(), "warnings still present")

	d.UpdateData(entity.NewUpdate(map[string]any{APIWarnings: []any{}}))
	assert.False(t, d.Problems())
}

func TestUpdateData_CurrentModeBypassesGuard(t *testing.T) {
	d := newTestDevice(t, nil)
	d.UpdateData(entity.NewUpdate(map[string]any{
		APIModeAvail: []any{1.0, 2.0},
	}))

	d.UpdateData(entity.NewUpdate(map[string]any{APIMode: 5.0}))
	assert.Equal(t, model.ModeDry, *d.Mode())
}

func TestSetMode_Guard(t *testing.T) {
	d := newTestDevice(t, nil)
	d.UpdateData(entity.NewUpdate(map[string]any{
		APIModeAvail: []any{float64(model.ModeAuto), float64(model.ModeCooling)},
		APIMode:      float64(model.ModeAuto),
	}))

	d.SetMode(model.ModeHeating)
	assert.Equal(t, model.ModeAuto, *d.Mode())

	d.SetMode(model.ModeCooling)
	assert.Equal(t, model.ModeCooling, *d.Mode())

	d.SetMode("not a mode")
	assert.Equal(t, model.ModeCooling, *d.Mode())
}

func TestSetParam_Mode(t *testing.T) {
	d := newTestDevice(t, nil)
	d.UpdateData(entity.NewUpdate(map[string]any{APIModeAvail: []any{1.0, 3.0}}))

	d.SetParam(APIMode, map[string]any{APIValue: 3.0})
	assert.Equal(t, model.ModeHeating, *d.Mode())

	d.SetParam(APIMode, map[string]any{APIValue: 2.0})
	assert.Equal(t, model.ModeHeating, *d.Mode())

	d.SetParam("setpoint", map[string]any{APIValue: 21.0})
	assert.Equal(t, model.ModeHeating, *d.Mode())
}

func TestDelegation_PrefersAirQuality(t *testing.T) {
	d := newTestDevice(t, nil)
	d.UpdateData(entity.NewUpdate(map[string]any{APIAQPM1: 40.0, APIAQCO2: 900.0}))

	aq := newTestAirQuality(t, nil)
	aq.UpdateData(entity.NewUpdate(map[string]any{APIAQPM1: 12.0}))

	d.SetAirQuality(aq)
	assert.Equal(t, 12, *d.AQPM1())
	assert.Nil(t, d.AQCO2(), "local value is shadowed even when the sensor has none")

	d.UpdateData(entity.NewUpdate(map[string]any{APIAQPM1: 55.0}))
	assert.Equal(t, 12, *d.AQPM1())

	d.SetAirQuality(nil)
	assert.Equal(t, 55, *d.AQPM1(), "local readings kept while shadowed")
	assert.Equal(t, 900, *d.AQCO2())
}

func TestData_UnconditionalKeys(t *testing.T) {
	d := newTestDevice(t, nil)
	data := d.Data()

	assert.Equal(t, map[string]any{
		KeyAvailable:      true,
		KeyDoubleSetPoint: false,
		KeyID:             "dev1",
		KeyInstallation:   "inst1",
		KeyIsConnected:    true,
		KeyName:           "Device",
		KeyProblems:       false,
		KeyWebServer:      "ws1",
		KeyWSConnected:    true,
	}, data)

	for key := range data {
		assert.NotContains(t, key, "aq-")
	}
}

func TestData_ReturnsNewMap(t *testing.T) {
	d := newTestDevice(t, nil)
	first := d.Data()
	first[KeyName] = "mutated"
	assert.Equal(t, "Device", d.Data()[KeyName])
}

func TestData_QualityLevels(t *testing.T) {
	tests := []struct {
		raw      string
		expected string
		present  bool
	}{
		{"good", "good", true},
		{"regular", "fair", true},
		{"bad", "poor", true},
		{"excellent", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			d := newTestDevice(t, nil)
			d.UpdateData(entity.NewUpdate(map[string]any{APIAQQuality: tt.raw}))

			level, ok := d.Data()[KeyAQQuality]
			assert.Equal(t, tt.present, ok)
			if tt.present {
				assert.Equal(t, tt.expected, level)
			}
		})
	}
}

func TestData_FullSnapshot(t *testing.T) {
	d := newTestDevice(t, nil)
	d.UpdateData(entity.NewUpdate(fullUpdate()))
	data := d.Data()

	assert.Equal(t, 21.5, data[KeyAQTemp])
	assert.Equal(t, 3, data[KeyAQPM1])
	assert.Equal(t, "good", data[KeyAQQuality])
	assert.Equal(t, model.ModeHeating, data[KeyMode])
	assert.Equal(t, model.ModeCooling, data[KeyModeAuto])
	assert.Equal(t, []string{"E01"}, data[KeyErrors])
	assert.Equal(t, []string{"W02"}, data[KeyWarnings])
	assert.Equal(t, true, data[KeyProblems])
	assert.Equal(t, true, data[KeyDualSPConf])
	assert.Equal(t, false, data[KeySimulatorMode])
}

func TestSubData(t *testing.T) {
	meta := map[string]any{APISystemNumber: 1.0}
	config := map[string]any{APISystemNumber: 2.0}

	assert.Equal(t, meta, SubData(map[string]any{APIMeta: meta, APIConfig: config}))
	assert.Equal(t, config, SubData(map[string]any{APIMeta: map[string]any{"x": 1.0}, APIConfig: config}))

	top := map[string]any{APIMeta: nil, APISystemNumber: 3.0}
	assert.Equal(t, top, SubData(top))
}
