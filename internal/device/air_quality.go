package device

import (
	"errors"
	"fmt"
	"maps"

	"github.com/thatsimonsguy/airzone-cloud/internal/entity"
	"github.com/thatsimonsguy/airzone-cloud/internal/parse"
)

var (
	ErrMissingSystemNumber = errors.New("air quality system number missing")
	ErrMissingZoneNumber   = errors.New("air quality zone number missing")
)

// System and Zone are the collaborators a sensor is associated with. They are
// owned elsewhere; the sensor only keeps them by id.
type System interface {
	ID() string
}

type Zone interface {
	ID() string
}

// AirQuality is a standalone air quality sensor.
type AirQuality struct {
	Device

	systemNumber int
	zoneNumber   int
	sensorFW     *string

	systems map[string]System
	zones   map[string]Zone
}

var _ Variant = (*AirQuality)(nil)

func NewAirQuality(installationID, webserverID string, data map[string]any) (*AirQuality, error) {
	aq := &AirQuality{
		systems: map[string]System{},
		zones:   map[string]Zone{},
	}
	if err := aq.Device.init(installationID, webserverID, data); err != nil {
		return nil, err
	}

	sub := SubData(data)
	systemNumber := parse.Int(sub[APISystemNumber])
	if systemNumber == nil {
		return nil, fmt.Errorf("device %s: %w", aq.id, ErrMissingSystemNumber)
	}
	zoneNumber := parse.Int(sub[APIZoneNumber])
	if zoneNumber == nil {
		return nil, fmt.Errorf("device %s: %w", aq.id, ErrMissingZoneNumber)
	}
	aq.systemNumber = *systemNumber
	aq.zoneNumber = *zoneNumber

	if name := parse.Str(data[APIName]); name == nil {
		aq.name = fmt.Sprintf("Air Quality %d:%d", aq.systemNumber, aq.zoneNumber)
	}
	return aq, nil
}

// UpdateData merges the shared device keys, then the sensor-only ones.
func (a *AirQuality) UpdateData(update *entity.Update) {
	a.Device.UpdateData(update)

	data := update.Data()
	setIfParsed(&a.readings.ventActive, parse.Bool(data[APIAQVentActive]))
	setIfParsed(&a.readings.pressure, parse.Float(data[APIAQPressure]))
	setIfParsed(&a.sensorFW, parse.Str(data[APIAQSensorFW]))
}

func (a *AirQuality) Data() map[string]any {
	data := a.Device.Data()

	putIfSet(data, KeyAQVentActive, a.AQVentActive())
	putIfSet(data, KeyAQPressure, a.AQPressure())
	data[KeySystem] = a.SystemNumber()
	data[KeyZone] = a.ZoneNumber()
	putIfSet(data, KeyFirmware, a.SensorFW())

	return data
}

// SetParam is a no-op: sensors accept no writes.
func (a *AirQuality) SetParam(string, map[string]any) {}

func (a *AirQuality) AddSystem(s System) {
	if _, ok := a.systems[s.ID()]; !ok {
		a.systems[s.ID()] = s
	}
}

func (a *AirQuality) AddZone(z Zone) {
	if _, ok := a.zones[z.ID()]; !ok {
		a.zones[z.ID()] = z
	}
}

func (a *AirQuality) RemoveSystem(id string) {
	delete(a.systems, id)
}

func (a *AirQuality) RemoveZone(id string) {
	delete(a.zones, id)
}

func (a *AirQuality) Systems() map[string]System {
	return maps.Clone(a.systems)
}

func (a *AirQuality) Zones() map[string]Zone {
	return maps.Clone(a.zones)
}

func (a *AirQuality) AQVentActive() *bool  { return clone(a.aq().ventActive) }
func (a *AirQuality) AQPressure() *float64 { return clone(a.aq().pressure) }
func (a *AirQuality) SensorFW() *string    { return clone(a.sensorFW) }
func (a *AirQuality) SystemNumber() int    { return a.systemNumber }
func (a *AirQuality) ZoneNumber() int      { return a.zoneNumber }
