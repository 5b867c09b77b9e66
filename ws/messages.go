package ws

import (
	"encoding/json"
	"fmt"
)

// Inbound message types. A connection never declares its role; the type of
// each message implies it.
const (
	TypeRegister             = "REGISTER"
	TypeSensorInfo           = "SENSOR_INFO"
	TypeMotionDetected       = "MOTION_DETECTED"
	TypeTogglePump           = "TOGGLE_PUMP"
	TypeToggleFan            = "TOGGLE_FAN"
	TypeToggleMotionDetector = "TOGGLE_MOTION_DETECTOR"
	TypeSetACMode            = "SET_AC_MODE"
)

// Outbound message types.
const (
	TypePumpStatus           = "PUMP_STATUS"
	TypeFanStatus            = "FAN_STATUS"
	TypeMotionDetectorStatus = "MOTION_DETECTOR_STATUS"
	TypeSetFanMode           = "SET_FAN_MODE"
	TypeThresholds           = "THRESHOLDS"
	TypeAlert                = "ALERT"
)

// DecodeError marks a payload that parsed as JSON but failed validation, or
// did not parse at all. The routing engine drops the message and keeps the
// connection open.
type DecodeError struct {
	Reason string
}

func (e *DecodeError) Error() string { return "decode: " + e.Reason }

func decodeErrf(format string, args ...interface{}) error {
	return &DecodeError{Reason: fmt.Sprintf(format, args...)}
}

// ErrUnknownType is returned for a well-formed envelope whose type is not in
// the protocol; such messages are ignored, not treated as malformed.
var ErrUnknownType = &DecodeError{Reason: "unknown message type"}

// Message is the closed union of inbound payloads.
type Message interface{ isMessage() }

// Register binds the connection to an owner session.
type Register struct {
	UID string
}

// SensorInfo is the canonical field-unit telemetry payload. Value carries
// the raw, untrusted sample map; normalization happens downstream.
type SensorInfo struct {
	EspID string
	Value map[string]interface{}
}

// MotionDetected is the push-style motion event some firmware revisions
// send instead of a polled pir flag.
type MotionDetected struct {
	EspID string
	Value bool
}

// Toggle is an owner-originated on/off command for one field-unit actuator.
type Toggle struct {
	Type  string // TOGGLE_PUMP, TOGGLE_FAN or TOGGLE_MOTION_DETECTOR
	UID   string
	EspID string
	Value bool
}

// SetACMode is the owner-originated air-conditioning mode switch.
type SetACMode struct {
	UID   string
	EspID string
	Mode  bool
}

func (Register) isMessage()       {}
func (SensorInfo) isMessage()     {}
func (MotionDetected) isMessage() {}
func (Toggle) isMessage()         {}
func (SetACMode) isMessage()      {}

// envelope covers every field any inbound message may carry. Devices have
// historically sent both esp_id and espId; both spellings are accepted.
type envelope struct {
	Type     string          `json:"type"`
	UID      string          `json:"uid"`
	EspID    string          `json:"espId"`
	EspIDAlt string          `json:"esp_id"`
	Value    json.RawMessage `json:"value"`
	Mode     *bool           `json:"mode"`
}

func (e *envelope) espID() string {
	if e.EspID != "" {
		return e.EspID
	}
	return e.EspIDAlt
}

// Decode classifies a raw frame into the message union. It fails with a
// DecodeError on unparseable JSON or missing required fields, and with
// ErrUnknownType for types outside the protocol.
func Decode(raw []byte) (Message, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, decodeErrf("invalid json: %v", err)
	}

	switch env.Type {
	case TypeRegister:
		if env.UID == "" {
			return nil, decodeErrf("REGISTER without uid")
		}
		return Register{UID: env.UID}, nil

	case TypeSensorInfo:
		espID := env.espID()
		if espID == "" {
			return nil, decodeErrf("SENSOR_INFO without esp id")
		}
		value := map[string]interface{}{}
		if len(env.Value) > 0 {
			if err := json.Unmarshal(env.Value, &value); err != nil {
				return nil, decodeErrf("SENSOR_INFO value not an object: %v", err)
			}
		}
		return SensorInfo{EspID: espID, Value: value}, nil

	case TypeMotionDetected:
		espID := env.espID()
		if espID == "" {
			return nil, decodeErrf("MOTION_DETECTED without esp id")
		}
		var v bool
		if len(env.Value) > 0 {
			if err := json.Unmarshal(env.Value, &v); err != nil {
				return nil, decodeErrf("MOTION_DETECTED value not a boolean: %v", err)
			}
		}
		return MotionDetected{EspID: espID, Value: v}, nil

	case TypeTogglePump, TypeToggleFan, TypeToggleMotionDetector:
		if env.UID == "" || env.espID() == "" {
			return nil, decodeErrf("%s without uid or espId", env.Type)
		}
		var v bool
		if len(env.Value) > 0 {
			if err := json.Unmarshal(env.Value, &v); err != nil {
				return nil, decodeErrf("%s value not a boolean: %v", env.Type, err)
			}
		}
		return Toggle{Type: env.Type, UID: env.UID, EspID: env.espID(), Value: v}, nil

	case TypeSetACMode:
		if env.UID == "" || env.espID() == "" {
			return nil, decodeErrf("SET_AC_MODE without uid or espId")
		}
		mode := false
		if env.Mode != nil {
			mode = *env.Mode
		}
		return SetACMode{UID: env.UID, EspID: env.espID(), Mode: mode}, nil
	}
	return nil, ErrUnknownType
}

// StatusType maps an owner toggle to the status message its target device
// expects.
func StatusType(toggleType string) string {
	switch toggleType {
	case TypeTogglePump:
		return TypePumpStatus
	case TypeToggleFan:
		return TypeFanStatus
	case TypeToggleMotionDetector:
		return TypeMotionDetectorStatus
	}
	return ""
}
