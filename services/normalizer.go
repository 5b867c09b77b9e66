package services

import (
	"math"

	"farm-hub/entities"
)

// Normalize turns a raw device sample map into a canonical Reading, minus
// the timestamp which the caller stamps on arrival. Numeric channels floor
// to integers and become nil on anything non-numeric; the wet/dry soil
// boolean collapses to the 0/50 scalar. Never fails, whatever the device
// sent.
func Normalize(value map[string]interface{}) entities.Reading {
	r := entities.Reading{SoilMoisture: entities.SoilDry}
	r.Temperature = floorNumeric(value["temperature"])
	r.Humidity = floorNumeric(value["humidity"])
	r.GasValue = floorNumeric(value["gas_value"])
	if wet, ok := value["soil_moisture"].(bool); ok && wet {
		r.SoilMoisture = entities.SoilWet
	}
	return r
}

// BoolSample extracts an optional boolean channel from the raw sample map.
// The second result is false when the channel is absent or not a boolean.
func BoolSample(value map[string]interface{}, key string) (bool, bool) {
	v, ok := value[key].(bool)
	return v, ok
}

func floorNumeric(v interface{}) *int {
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return nil
		}
		i := int(math.Floor(n))
		return &i
	case int:
		i := n
		return &i
	}
	return nil
}
