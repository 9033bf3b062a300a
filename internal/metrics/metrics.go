package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/thatsimonsguy/airzone-cloud/internal/device"
	"github.com/thatsimonsguy/airzone-cloud/internal/model"
)

// Source yields the current device snapshots.
type Source interface {
	Snapshots() []map[string]any
}

// Collector exposes device snapshots as Prometheus gauges, one series per
// device and reading.
type Collector struct {
	source Source

	devices  prometheus.Gauge
	info     *prometheus.GaugeVec
	readings map[string]*prometheus.GaugeVec
}

var readingGauges = []struct {
	key  string
	name string
	help string
}{
	{device.KeyAvailable, "airzone_device_available", "1 if the device is connected to the cloud"},
	{device.KeyProblems, "airzone_device_problems", "1 if the device reports errors or warnings"},
	{device.KeyWSConnected, "airzone_device_ws_connected", "1 if the device webserver is connected"},
	{device.KeyMode, "airzone_device_mode", "Current operation mode code"},
	{device.KeyAQCO2, "airzone_aq_co2_ppm", "CO2 concentration (ppm)"},
	{device.KeyAQPM1, "airzone_aq_pm1_ugm3", "PM1.0 concentration (ug/m3)"},
	{device.KeyAQPM2p5, "airzone_aq_pm2_5_ugm3", "PM2.5 concentration (ug/m3)"},
	{device.KeyAQPM10, "airzone_aq_pm10_ugm3", "PM10 concentration (ug/m3)"},
	{device.KeyAQTVOC, "airzone_aq_tvoc_ppb", "TVOC concentration (ppb)"},
	{device.KeyAQHumidity, "airzone_aq_humidity_percent", "Relative humidity (%)"},
	{device.KeyAQTemp, "airzone_aq_temperature_celsius", "Air quality sensor temperature"},
	{device.KeyAQPressure, "airzone_aq_pressure_hpa", "Barometric pressure (hPa)"},
	{device.KeyAQScore, "airzone_aq_score", "Air quality score"},
	{device.KeyAQActive, "airzone_aq_active", "1 if air quality control is active"},
	{device.KeyAQVentActive, "airzone_aq_vent_active", "1 if ventilation is running for air quality"},
}

func NewCollector(source Source) *Collector {
	labels := []string{"device"}
	c := &Collector{
		source: source,
		devices: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "airzone_devices",
			Help: "Number of tracked devices",
		}),
		info: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "airzone_device_info",
			Help: "Device info",
		}, []string{"device", "name", "installation", "web_server", "quality"}),
		readings: map[string]*prometheus.GaugeVec{},
	}
	for _, g := range readingGauges {
		c.readings[g.key] = prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: g.name,
			Help: g.help,
		}, labels)
	}
	return c
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	c.devices.Describe(ch)
	c.info.Describe(ch)
	for _, g := range readingGauges {
		c.readings[g.key].Describe(ch)
	}
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	snaps := c.source.Snapshots()

	c.devices.Set(float64(len(snaps)))
	c.info.Reset()
	for _, vec := range c.readings {
		vec.Reset()
	}

	for _, snap := range snaps {
		id := str(snap[device.KeyID])
		c.info.With(prometheus.Labels{
			"device":       id,
			"name":         str(snap[device.KeyName]),
			"installation": str(snap[device.KeyInstallation]),
			"web_server":   str(snap[device.KeyWebServer]),
			"quality":      str(snap[device.KeyAQQuality]),
		}).Set(1)

		labels := prometheus.Labels{"device": id}
		for key, vec := range c.readings {
			if v, ok := Value(snap[key]); ok {
				vec.With(labels).Set(v)
			}
		}
	}

	c.devices.Collect(ch)
	c.info.Collect(ch)
	for _, g := range readingGauges {
		c.readings[g.key].Collect(ch)
	}
}

// Registry returns a registry holding the collector.
func Registry(source Source) *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(NewCollector(source))
	return registry
}

// Value converts a snapshot value to a gauge reading.
func Value(v any) (float64, bool) {
	switch t := v.(type) {
	case bool:
		if t {
			return 1, true
		}
		return 0, true
	case int:
		return float64(t), true
	case float64:
		return t, true
	case model.OperationMode:
		return float64(t), true
	}
	return 0, false
}

func str(v any) string {
	s, _ := v.(string)
	return s
}
