package device

import (
	"errors"
	"fmt"
	"slices"

	"github.com/rs/zerolog/log"

	"github.com/thatsimonsguy/airzone-cloud/internal/entity"
	"github.com/thatsimonsguy/airzone-cloud/internal/model"
	"github.com/thatsimonsguy/airzone-cloud/internal/parse"
)

var ErrMissingID = errors.New("device id missing")

const defaultName = "Device"

// readings is the air quality facet shared by devices and sensors.
type readings struct {
	active     *bool
	co2        *int
	humidity   *int
	pm1        *int
	pm2p5      *int
	pm10       *int
	present    *bool
	pressure   *float64
	quality    *string
	score      *int
	temp       *float64
	tvoc       *int
	ventActive *bool
}

// merge writes the air quality keys every device may report.
func (r *readings) merge(data map[string]any) {
	setIfParsed(&r.active, parse.Bool(data[APIAQActive]))
	setIfParsed(&r.pm1, parse.Int(data[APIAQPM1]))
	setIfParsed(&r.pm2p5, parse.Int(data[APIAQPM2p5]))
	setIfParsed(&r.pm10, parse.Int(data[APIAQPM10]))
	setIfParsed(&r.co2, parse.Int(data[APIAQCO2]))
	setIfParsed(&r.tvoc, parse.Int(data[APIAQTVOC]))
	setIfParsed(&r.humidity, parse.Int(data[APIAQHumidity]))
	if temp := parse.Map(data[APIAQTemp]); temp != nil {
		setIfParsed(&r.temp, parse.Float(temp[APICelsius]))
	}
	setIfParsed(&r.present, parse.Bool(data[APIAQPresent]))
	setIfParsed(&r.quality, parse.Str(data[APIAQQuality]))
	setIfParsed(&r.score, parse.Int(data[APIAQScore]))
}

// Variant is implemented by every device kind the cloud reports.
type Variant interface {
	entity.Entity
	Name() string
	Available() bool
	Problems() bool
	SetParam(param string, data map[string]any)
}

var _ Variant = (*Device)(nil)

// Device is one Airzone Cloud device as reported under a webserver.
// Not safe for concurrent use: readers must not overlap UpdateData.
type Device struct {
	id             string
	installationID string
	webserverID    string
	name           string

	isConnected bool
	wsConnected bool

	autoMode       *model.OperationMode
	mode           *model.OperationMode
	modes          []model.OperationMode
	doubleSetPoint *bool
	dualSPConf     *bool
	simulatorMode  *bool
	errors         []string
	warnings       []string

	readings   readings
	airQuality *AirQuality
}

func New(installationID, webserverID string, data map[string]any) (*Device, error) {
	d := &Device{}
	if err := d.init(installationID, webserverID, data); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Device) init(installationID, webserverID string, data map[string]any) error {
	id := parse.Str(data[APIDeviceID])
	if id == nil || *id == "" {
		return ErrMissingID
	}

	d.id = *id
	d.installationID = installationID
	d.webserverID = webserverID
	d.name = defaultName
	d.isConnected = true
	d.wsConnected = true
	d.errors = []string{}
	d.warnings = []string{}

	if name := parse.Str(data[APIName]); name != nil {
		d.name = *name
	}
	if connected := parse.Bool(data[APIIsConnected]); connected != nil {
		d.isConnected = *connected
	}
	return nil
}

// SubData finds the object holding the system and zone numbers: meta first,
// then config, then the payload itself.
func SubData(data map[string]any) map[string]any {
	for _, key := range []string{APIMeta, APIConfig} {
		if sub := parse.Map(data[key]); sub != nil {
			if _, ok := sub[APISystemNumber]; ok {
				return sub
			}
		}
	}
	return data
}

// UpdateData merges one fragment into the device. Keys that are missing or
// fail to parse leave the current value in place.
func (d *Device) UpdateData(update *entity.Update) {
	data := update.Data()

	if v := parse.Bool(data[APIIsConnected]); v != nil {
		d.isConnected = *v
	}
	if v := parse.Bool(data[APIWSConnected]); v != nil {
		d.wsConnected = *v
	}

	d.readings.merge(data)

	if raw, ok := data[APIAutoMode]; ok && raw != nil {
		if m, err := model.ParseOperationMode(raw); err == nil {
			d.autoMode = &m
		} else {
			log.Warn().Err(err).Str("device", d.id).Msg("Ignoring auto mode")
		}
	}

	setIfParsed(&d.doubleSetPoint, parse.Bool(data[APIDoubleSetPoint]))
	setIfParsed(&d.dualSPConf, parse.Bool(data[APIDualSPConf]))

	if errs, ok := parse.Strs(data[APIErrors]); ok {
		d.errors = errs
	}

	// available modes before the current mode
	if raw, ok := data[APIModeAvail]; ok && raw != nil {
		if modes, err := model.ParseOperationModes(raw); err == nil {
			d.modes = modes
		} else {
			log.Warn().Err(err).Str("device", d.id).Msg("Ignoring available modes")
		}
	}

	// current mode comes from the cloud and is not checked against modes
	if raw, ok := data[APIMode]; ok && raw != nil {
		if m, err := model.ParseOperationMode(raw); err == nil {
			d.mode = &m
		} else {
			log.Warn().Err(err).Str("device", d.id).Msg("Ignoring mode")
		}
	}

	setIfParsed(&d.simulatorMode, parse.Bool(data[APISimulatorMode]))

	if warnings, ok := parse.Strs(data[APIWarnings]); ok {
		d.warnings = warnings
	}
}

// Data returns a new flat snapshot of the device.
func (d *Device) Data() map[string]any {
	data := map[string]any{
		KeyAvailable:      d.Available(),
		KeyDoubleSetPoint: d.DoubleSetPoint(),
		KeyID:             d.ID(),
		KeyInstallation:   d.Installation(),
		KeyIsConnected:    d.IsConnected(),
		KeyName:           d.Name(),
		KeyProblems:       d.Problems(),
		KeyWebServer:      d.WebServer(),
		KeyWSConnected:    d.WSConnected(),
	}

	putIfSet(data, KeyAQActive, d.AQActive())
	if q := d.AQQuality(); q != nil {
		if level, ok := QualityLevels[*q]; ok {
			data[KeyAQQuality] = level
		}
	}
	putIfSet(data, KeyAQScore, d.AQScore())
	putIfSet(data, KeyAQPM1, d.AQPM1())
	putIfSet(data, KeyAQPM2p5, d.AQPM2p5())
	putIfSet(data, KeyAQPM10, d.AQPM10())
	putIfSet(data, KeyAQCO2, d.AQCO2())
	putIfSet(data, KeyAQTVOC, d.AQTVOC())
	putIfSet(data, KeyAQHumidity, d.AQHumidity())
	putIfSet(data, KeyAQTemp, d.AQTemp())
	putIfSet(data, KeyAQPresent, d.AQPresent())

	putIfSet(data, KeyDualSPConf, d.DualSPConf())
	if errs := d.Errors(); len(errs) > 0 {
		data[KeyErrors] = errs
	}
	putIfSet(data, KeyMode, d.Mode())
	putIfSet(data, KeyModeAuto, d.AutoMode())
	if modes := d.Modes(); len(modes) > 0 {
		data[KeyModes] = modes
	}
	putIfSet(data, KeySimulatorMode, d.SimulatorMode())
	if warnings := d.Warnings(); len(warnings) > 0 {
		data[KeyWarnings] = warnings
	}

	return data
}

// SetMode assigns the mode only when the device reports it as available.
func (d *Device) SetMode(v any) {
	m, err := model.ParseOperationMode(v)
	if err != nil {
		log.Error().Err(err).Str("device", d.id).Msg("Rejected mode")
		return
	}
	if !slices.Contains(d.modes, m) {
		log.Error().
			Str("device", d.id).
			Stringer("mode", m).
			Str("modes", fmt.Sprint(d.modes)).
			Msg("Rejected mode not in available modes")
		return
	}
	d.mode = &m
}

// SetParam applies a parameter write coming from the application side.
func (d *Device) SetParam(param string, data map[string]any) {
	switch param {
	case APIMode:
		d.SetMode(data[APIValue])
	default:
		log.Debug().Str("device", d.id).Str("param", param).Msg("Unsupported parameter")
	}
}

// SetAirQuality links the sensor whose readings shadow the device's own.
func (d *Device) SetAirQuality(aq *AirQuality) {
	d.airQuality = aq
}

func (d *Device) AirQuality() *AirQuality {
	return d.airQuality
}

// aq resolves where air quality readings come from.
func (d *Device) aq() *readings {
	if d.airQuality != nil {
		return &d.airQuality.readings
	}
	return &d.readings
}

func (d *Device) AQActive() *bool      { return clone(d.aq().active) }
func (d *Device) AQCO2() *int          { return clone(d.aq().co2) }
func (d *Device) AQHumidity() *int     { return clone(d.aq().humidity) }
func (d *Device) AQPM1() *int          { return clone(d.aq().pm1) }
func (d *Device) AQPM2p5() *int        { return clone(d.aq().pm2p5) }
func (d *Device) AQPM10() *int         { return clone(d.aq().pm10) }
func (d *Device) AQPresent() *bool     { return clone(d.aq().present) }
func (d *Device) AQQuality() *string   { return clone(d.aq().quality) }
func (d *Device) AQScore() *int        { return clone(d.aq().score) }
func (d *Device) AQTemp() *float64     { return clone(d.aq().temp) }
func (d *Device) AQTVOC() *int         { return clone(d.aq().tvoc) }
func (d *Device) ID() string           { return d.id }
func (d *Device) Installation() string { return d.installationID }
func (d *Device) WebServer() string    { return d.webserverID }
func (d *Device) Name() string         { return d.name }
func (d *Device) IsConnected() bool    { return d.isConnected }
func (d *Device) WSConnected() bool    { return d.wsConnected }

func (d *Device) Available() bool {
	return d.isConnected && d.wsConnected
}

func (d *Device) Problems() bool {
	return len(d.errors) > 0 || len(d.warnings) > 0
}

func (d *Device) DoubleSetPoint() bool {
	return d.doubleSetPoint != nil && *d.doubleSetPoint
}

func (d *Device) DualSPConf() *bool              { return clone(d.dualSPConf) }
func (d *Device) SimulatorMode() *bool           { return clone(d.simulatorMode) }
func (d *Device) Mode() *model.OperationMode     { return clone(d.mode) }
func (d *Device) AutoMode() *model.OperationMode { return clone(d.autoMode) }
func (d *Device) Modes() []model.OperationMode   { return slices.Clone(d.modes) }
func (d *Device) Errors() []string               { return slices.Clone(d.errors) }
func (d *Device) Warnings() []string             { return slices.Clone(d.warnings) }

func setIfParsed[T any](dst **T, v *T) {
	if v != nil {
		*dst = v
	}
}

func clone[T any](v *T) *T {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func putIfSet[T any](data map[string]any, key string, v *T) {
	if v != nil {
		data[key] = *v
	}
}
