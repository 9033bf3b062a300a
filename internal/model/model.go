package model

import (
	"errors"
	"fmt"

	"github.com/thatsimonsguy/airzone-cloud/internal/parse"
)

var ErrInvalidMode = errors.New("invalid operation mode")

// OperationMode is an Airzone Cloud HVAC operating mode code.
type OperationMode int

const (
	ModeStop OperationMode = iota
	ModeAuto
	ModeCooling
	ModeHeating
	ModeVentilation
	ModeDry
	ModeEmergencyHeating
	ModeHeatAir
	ModeHeatRadiant
	ModeHeatCombined
	ModeCoolingAir
	ModeCoolingRadiant
	ModeCoolingCombined
	ModeBypass
	ModeRecovery
	ModeRegulationTemp
	ModePurification
	ModeFanEnergy
)

var modeNames = map[OperationMode]string{
	ModeStop:             "stop",
	ModeAuto:             "auto",
	ModeCooling:          "cooling",
	ModeHeating:          "heating",
	ModeVentilation:      "ventilation",
	ModeDry:              "dry",
	ModeEmergencyHeating: "emergency-heating",
	ModeHeatAir:          "heat-air",
	ModeHeatRadiant:      "heat-radiant",
	ModeHeatCombined:     "heat-combined",
	ModeCoolingAir:       "cooling-air",
	ModeCoolingRadiant:   "cooling-radiant",
	ModeCoolingCombined:  "cooling-combined",
	ModeBypass:           "bypass",
	ModeRecovery:         "recovery",
	ModeRegulationTemp:   "regulation-temp",
	ModePurification:     "purification",
	ModeFanEnergy:        "fan-energy",
}

func (m OperationMode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", int(m))
}

func (m OperationMode) Valid() bool {
	_, ok := modeNames[m]
	return ok
}

// ParseOperationMode accepts an OperationMode or any raw value parse.Int
// understands. Codes outside the enumeration are rejected.
func ParseOperationMode(v any) (OperationMode, error) {
	if m, ok := v.(OperationMode); ok {
		if !m.Valid() {
			return ModeStop, fmt.Errorf("%w: %d", ErrInvalidMode, int(m))
		}
		return m, nil
	}
	code := parse.Int(v)
	if code == nil {
		return ModeStop, fmt.Errorf("%w: %v", ErrInvalidMode, v)
	}
	m := OperationMode(*code)
	if !m.Valid() {
		return ModeStop, fmt.Errorf("%w: %d", ErrInvalidMode, *code)
	}
	return m, nil
}

// ParseOperationModes parses a mode list. Any invalid entry fails the whole list.
func ParseOperationModes(v any) ([]OperationMode, error) {
	raw, ok := v.([]any)
	if !ok {
		if typed, ok := v.([]OperationMode); ok {
			raw = make([]any, len(typed))
			for i, m := range typed {
				raw[i] = m
			}
		} else {
			return nil, fmt.Errorf("%w: mode list is %T", ErrInvalidMode, v)
		}
	}
	modes := make([]OperationMode, 0, len(raw))
	for _, r := range raw {
		m, err := ParseOperationMode(r)
		if err != nil {
			return nil, err
		}
		modes = append(modes, m)
	}
	return modes, nil
}
