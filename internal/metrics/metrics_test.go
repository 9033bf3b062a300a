package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thatsimonsguy/airzone-cloud/internal/device"
	"github.com/thatsimonsguy/airzone-cloud/internal/model"
)

type staticSource []map[string]any

func (s staticSource) Snapshots() []map[string]any { return s }

func TestCollector(t *testing.T) {
	source := staticSource{
		{
			device.KeyID:           "z1",
			device.KeyName:         "Salon",
			device.KeyInstallation: "inst1",
			device.KeyWebServer:    "ws1",
			device.KeyAvailable:    true,
			device.KeyProblems:     false,
			device.KeyMode:         model.ModeCooling,
			device.KeyAQPM2p5:      7,
			device.KeyAQTemp:       21.5,
			device.KeyAQQuality:    "good",
		},
		{
			device.KeyID:        "z2",
			device.KeyName:      "Kitchen",
			device.KeyAvailable: false,
			device.KeyProblems:  true,
		},
	}

	expected := `
# HELP airzone_aq_pm2_5_ugm3 PM2.5 concentration (ug/m3)
# TYPE airzone_aq_pm2_5_ugm3 gauge
airzone_aq_pm2_5_ugm3{device="z1"} 7
# HELP airzone_device_available 1 if the device is connected to the cloud
# TYPE airzone_device_available gauge
airzone_device_available{device="z1"} 1
airzone_device_available{device="z2"} 0
# HELP airzone_device_mode Current operation mode code
# TYPE airzone_device_mode gauge
airzone_device_mode{device="z1"} 2
# HELP airzone_devices Number of tracked devices
# TYPE airzone_devices gauge
airzone_devices 2
`
	err := testutil.CollectAndCompare(NewCollector(source), strings.NewReader(expected),
		"airzone_aq_pm2_5_ugm3", "airzone_device_available", "airzone_device_mode", "airzone_devices")
	require.NoError(t, err)
}

func TestCollector_DropsRemovedDevices(t *testing.T) {
	source := &staticSource{{device.KeyID: "z1", device.KeyAvailable: true}}
	c := NewCollector(source)

	assert.Equal(t, 1, testutil.CollectAndCount(c, "airzone_device_available"))

	*source = staticSource{}
	assert.Equal(t, 0, testutil.CollectAndCount(c, "airzone_device_available"))
}

func TestRegistry(t *testing.T) {
	registry := Registry(staticSource{{device.KeyID: "z1", device.KeyName: "Salon"}})

	families, err := registry.Gather()
	require.NoError(t, err)

	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "airzone_device_info")
	assert.Contains(t, names, "airzone_devices")
}

func TestValue(t *testing.T) {
	tests := []struct {
		in   any
		want float64
		ok   bool
	}{
		{true, 1, true},
		{false, 0, true},
		{12, 12, true},
		{21.5, 21.5, true},
		{model.ModeDry, 5, true},
		{"good", 0, false},
		{nil, 0, false},
	}
	for _, tt := range tests {
		got, ok := Value(tt.in)
		assert.Equal(t, tt.ok, ok, "%v", tt.in)
		assert.Equal(t, tt.want, got, "%v", tt.in)
	}
}
