package entities

// Soil moisture is reported by the hardware as a wet/dry boolean and mapped
// onto a scalar so sliders and graphs can reuse the percentage code path.
// Downstream display logic depends on the exact value 50; do not change it.
const (
	SoilDry = 0
	SoilWet = 50
)

// Reading is one normalized snapshot of a field unit's sensors. Numeric
// fields are nil when the device omitted the sample or sent garbage.
type Reading struct {
	Temperature  *int  `json:"temperature"`
	Humidity     *int  `json:"humidity"`
	SoilMoisture int   `json:"soil_moisture"`
	GasValue     *int  `json:"gas_value"`
	Timestamp    int64 `json:"timestamp"` // unix milliseconds
}

// Signal returns the named sensor value, nil when absent. Soil moisture is
// always present (the scalar defaults to dry).
func (r *Reading) Signal(name string) *int {
	switch name {
	case "temperature":
		return r.Temperature
	case "humidity":
		return r.Humidity
	case "gas_value":
		return r.GasValue
	case "soil_moisture":
		v := r.SoilMoisture
		return &v
	}
	return nil
}
