package datadog

import (
	"github.com/DataDog/datadog-go/statsd"
	"github.com/rs/zerolog/log"

	"github.com/thatsimonsguy/airzone-cloud/internal/device"
	"github.com/thatsimonsguy/airzone-cloud/internal/env"
	"github.com/thatsimonsguy/airzone-cloud/internal/metrics"
)

var dogstatsd statsd.ClientInterface

// snapshot keys reported as gauges, by metric name
var gauges = map[string]string{
	"device.available":    device.KeyAvailable,
	"device.problems":     device.KeyProblems,
	"device.ws_connected": device.KeyWSConnected,
	"aq.pm1":              device.KeyAQPM1,
	"aq.pm2_5":            device.KeyAQPM2p5,
	"aq.pm10":             device.KeyAQPM10,
	"aq.co2":              device.KeyAQCO2,
	"aq.tvoc":             device.KeyAQTVOC,
	"aq.humidity":         device.KeyAQHumidity,
	"aq.temperature":      device.KeyAQTemp,
	"aq.pressure":         device.KeyAQPressure,
	"aq.score":            device.KeyAQScore,
	"device.mode":         device.KeyMode,
}

func InitMetrics() {
	if !env.Cfg.EnableDatadog {
		log.Info().Msg("Datadog metrics disabled")
		return
	}

	client, err := statsd.New(env.Cfg.DDAgentAddr)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to create DogStatsD client")
		return
	}

	client.Namespace = env.Cfg.DDNamespace
	client.Tags = env.Cfg.DDTags
	dogstatsd = client

	log.Info().
		Str("addr", env.Cfg.DDAgentAddr).
		Str("namespace", env.Cfg.DDNamespace).
		Strs("tags", env.Cfg.DDTags).
		Msg("Datadog metrics initialized")
}

func Gauge(name string, value float64, tags ...string) {
	if dogstatsd != nil {
		err := dogstatsd.Gauge(name, value, tags, 1)
		if err != nil {
			log.Warn().Err(err).Str("metric", name).Msg("Failed to emit gauge metric")
		}
	}
}

// ReportSnapshot emits the numeric and boolean readings of one device snapshot.
func ReportSnapshot(snap map[string]any) {
	if dogstatsd == nil {
		return
	}
	id, _ := snap[device.KeyID].(string)
	tags := []string{"device:" + id}
	for name, key := range gauges {
		if v, ok := metrics.Value(snap[key]); ok {
			Gauge(name, v, tags...)
		}
	}
}
