package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thatsimonsguy/airzone-cloud/internal/device"
)

func zonePayload(id string, system, zone float64) map[string]any {
	return map[string]any{
		device.APIDeviceID: id,
		device.APIType:     device.TypeZone,
		device.APIMeta:     map[string]any{device.APISystemNumber: system, device.APIZoneNumber: zone},
		device.APIName:     "Zone " + id,
	}
}

func sensorPayload(id string, system, zone float64) map[string]any {
	return map[string]any{
		device.APIDeviceID:  id,
		device.APIType:      device.TypeAirQuality,
		device.APIConfig:    map[string]any{device.APISystemNumber: system, device.APIZoneNumber: zone},
		device.APIAQPM1:     12.0,
		device.APIAQQuality: "good",
	}
}

func TestApply_CreatesAndUpdates(t *testing.T) {
	c := NewCatalog()

	created, err := c.Apply("inst1", "ws1", zonePayload("z1", 1, 1))
	require.NoError(t, err)
	assert.True(t, created)

	created, err = c.Apply("inst1", "ws1", map[string]any{
		device.APIDeviceID: "z1",
		device.APIErrors:   []any{"E01"},
	})
	require.NoError(t, err)
	assert.False(t, created)

	snap, ok := c.Snapshot("z1")
	require.True(t, ok)
	assert.Equal(t, "Zone z1", snap[device.KeyName])
	assert.Equal(t, true, snap[device.KeyProblems])
	assert.Equal(t, 1, c.Len())
}

func TestApply_Errors(t *testing.T) {
	c := NewCatalog()

	_, err := c.Apply("inst1", "ws1", map[string]any{device.APIName: "nameless"})
	assert.ErrorIs(t, err, device.ErrMissingID)

	_, err = c.Apply("inst1", "ws1", map[string]any{
		device.APIDeviceID: "aq1",
		device.APIType:     device.TypeAirQuality,
	})
	assert.ErrorIs(t, err, device.ErrMissingSystemNumber)
	assert.Equal(t, 0, c.Len())
}

func TestApply_LinksAirQuality(t *testing.T) {
	c := NewCatalog()

	_, err := c.Apply("inst1", "ws1", zonePayload("z1", 1, 1))
	require.NoError(t, err)
	_, err = c.Apply("inst1", "ws1", zonePayload("z2", 1, 2))
	require.NoError(t, err)
	_, err = c.Apply("inst1", "ws1", map[string]any{
		device.APIDeviceID: "s1",
		device.APIType:     device.TypeSystem,
		device.APIMeta:     map[string]any{device.APISystemNumber: 1.0},
	})
	require.NoError(t, err)
	_, err = c.Apply("inst1", "ws1", sensorPayload("aq1", 1, 1))
	require.NoError(t, err)

	z1, _ := c.Snapshot("z1")
	assert.Equal(t, 12, z1[device.KeyAQPM1])
	assert.Equal(t, "good", z1[device.KeyAQQuality])

	z2, _ := c.Snapshot("z2")
	assert.NotContains(t, z2, device.KeyAQPM1)

	aqSnap, _ := c.Snapshot("aq1")
	assert.Equal(t, "Air Quality 1:1", aqSnap[device.KeyName])

	// sensor readings flow through to the zone on later updates
	_, err = c.Apply("inst1", "ws1", map[string]any{device.APIDeviceID: "aq1", device.APIAQPM1: 30.0})
	require.NoError(t, err)
	z1, _ = c.Snapshot("z1")
	assert.Equal(t, 30, z1[device.KeyAQPM1])

	aq := c.devices["aq1"].(*device.AirQuality)
	assert.Contains(t, aq.Systems(), "s1")
	assert.Contains(t, aq.Zones(), "z1")
	assert.NotContains(t, aq.Zones(), "z2")
}

func TestRemove_UnlinksSensor(t *testing.T) {
	c := NewCatalog()
	_, err := c.Apply("inst1", "ws1", sensorPayload("aq1", 1, 1))
	require.NoError(t, err)
	_, err = c.Apply("inst1", "ws1", zonePayload("z1", 1, 1))
	require.NoError(t, err)

	z1, _ := c.Snapshot("z1")
	require.Equal(t, 12, z1[device.KeyAQPM1])

	assert.True(t, c.Remove("aq1"))
	assert.False(t, c.Remove("aq1"))

	z1, _ = c.Snapshot("z1")
	assert.NotContains(t, z1, device.KeyAQPM1)
	assert.Equal(t, []string{"z1"}, c.IDs())
}

func TestRemove_DropsSensorAssociations(t *testing.T) {
	c := NewCatalog()
	_, err := c.Apply("inst1", "ws1", sensorPayload("aq1", 1, 2))
	require.NoError(t, err)
	_, err = c.Apply("inst1", "ws1", zonePayload("z1", 1, 2))
	require.NoError(t, err)
	_, err = c.Apply("inst1", "ws1", map[string]any{
		device.APIDeviceID: "s1",
		device.APIType:     device.TypeSystem,
		device.APIMeta:     map[string]any{device.APISystemNumber: 1.0},
	})
	require.NoError(t, err)

	aq, ok := c.devices["aq1"].(*device.AirQuality)
	require.True(t, ok)
	require.Contains(t, aq.Zones(), "z1")
	require.Contains(t, aq.Systems(), "s1")

	assert.True(t, c.Remove("z1"))
	assert.Empty(t, aq.Zones())
	assert.Contains(t, aq.Systems(), "s1")

	assert.True(t, c.Remove("s1"))
	assert.Empty(t, aq.Systems())
}

func TestSetParam(t *testing.T) {
	c := NewCatalog()
	payload := zonePayload("z1", 1, 1)
	payload[device.APIModeAvail] = []any{1.0, 2.0}
	_, err := c.Apply("inst1", "ws1", payload)
	require.NoError(t, err)

	require.NoError(t, c.SetParam("z1", device.APIMode, map[string]any{device.APIValue: 2.0}))
	snap, _ := c.Snapshot("z1")
	assert.EqualValues(t, 2, snap[device.KeyMode])

	assert.Error(t, c.SetParam("missing", device.APIMode, nil))
}

func TestSnapshots_Ordered(t *testing.T) {
	c := NewCatalog()
	for _, id := range []string{"c", "a", "b"} {
		_, err := c.Apply("inst1", "ws1", map[string]any{device.APIDeviceID: id})
		require.NoError(t, err)
	}

	snaps := c.Snapshots()
	require.Len(t, snaps, 3)
	assert.Equal(t, "a", snaps[0][device.KeyID])
	assert.Equal(t, "c", snaps[2][device.KeyID])
}
