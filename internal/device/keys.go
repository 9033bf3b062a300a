package device

// Airzone Cloud payload keys.
const (
	APIAutoMode       = "auto_mode"
	APIAQActive       = "aq_active"
	APIAQCO2          = "aq_co2"
	APIAQHumidity     = "aq_hum"
	APIAQPM1          = "aqpm1_0"
	APIAQPM2p5        = "aqpm2_5"
	APIAQPM10         = "aqpm10"
	APIAQPresent      = "aq_present"
	APIAQPressure     = "aq_pressure"
	APIAQQuality      = "aq_quality"
	APIAQScore        = "aq_score"
	APIAQSensorFW     = "aq_sensor_fw"
	APIAQTemp         = "aq_temp"
	APIAQTVOC         = "aq_tvoc"
	APIAQVentActive   = "aq_vent_active"
	APICelsius        = "celsius"
	APIConfig         = "config"
	APIDeviceID       = "device_id"
	APIDoubleSetPoint = "double_sp"
	APIDualSPConf     = "dualsp_conf"
	APIErrors         = "errors"
	APIIsConnected    = "isConnected"
	APIMeta           = "meta"
	APIMode           = "mode"
	APIModeAvail      = "mode_available"
	APIName           = "name"
	APISimulatorMode  = "simulator_mode"
	APISystemNumber   = "system_number"
	APIType           = "type"
	APIValue          = "value"
	APIWarnings       = "warnings"
	APIWSConnected    = "ws_connected"
	APIZoneNumber     = "zone_number"
)

// Device types reported in the payload type key.
const (
	TypeAirQuality = "az_airqsensor"
	TypeSystem     = "az_system"
	TypeZone       = "az_zone"
)

// Snapshot keys produced by Data.
const (
	KeyAQActive       = "aq-active"
	KeyAQCO2          = "aq-co2"
	KeyAQHumidity     = "aq-humidity"
	KeyAQPM1          = "aq-pm-1"
	KeyAQPM2p5        = "aq-pm-2.5"
	KeyAQPM10         = "aq-pm-10"
	KeyAQPresent      = "aq-present"
	KeyAQPressure     = "aq-pressure"
	KeyAQQuality      = "aq-quality"
	KeyAQScore        = "aq-score"
	KeyAQTemp         = "aq-temperature"
	KeyAQTVOC         = "aq-tvoc"
	KeyAQVentActive   = "aq-vent-active"
	KeyAvailable      = "available"
	KeyDoubleSetPoint = "double-set-point"
	KeyDualSPConf     = "dual-set-point-conf"
	KeyErrors         = "errors"
	KeyFirmware       = "firmware"
	KeyID             = "id"
	KeyInstallation   = "installation"
	KeyIsConnected    = "is-connected"
	KeyMode           = "mode"
	KeyModeAuto       = "mode-auto"
	KeyModes          = "modes"
	KeyName           = "name"
	KeyProblems       = "problems"
	KeySimulatorMode  = "simulator-mode"
	KeySystem         = "system"
	KeyWarnings       = "warnings"
	KeyWebServer      = "web-server"
	KeyWSConnected    = "ws-connected"
	KeyZone           = "zone"
)

// QualityLevels maps the vendor air quality codes to level names. Codes
// missing here are dropped from snapshots.
var QualityLevels = map[string]string{
	"good":    "good",
	"regular": "fair",
	"bad":     "poor",
}
