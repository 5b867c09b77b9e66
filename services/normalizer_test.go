package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"farm-hub/entities"
)

func TestNormalizeFloorsNumericChannels(t *testing.T) {
	r := Normalize(map[string]interface{}{
		"temperature": 21.9,
		"humidity":    float64(55),
		"gas_value":   299.99,
	})

	require.NotNil(t, r.Temperature)
	assert.Equal(t, 21, *r.Temperature)
	require.NotNil(t, r.Humidity)
	assert.Equal(t, 55, *r.Humidity)
	require.NotNil(t, r.GasValue)
	assert.Equal(t, 299, *r.GasValue)
}

func TestNormalizeNonNumericBecomesNil(t *testing.T) {
	r := Normalize(map[string]interface{}{
		"temperature": "hot",
		"humidity":    nil,
		"gas_value":   true,
	})

	assert.Nil(t, r.Temperature)
	assert.Nil(t, r.Humidity)
	assert.Nil(t, r.GasValue)
}

func TestNormalizeSoilMoistureScalar(t *testing.T) {
	cases := []struct {
		name  string
		value interface{}
		want  int
	}{
		{"wet boolean", true, entities.SoilWet},
		{"dry boolean", false, entities.SoilDry},
		{"missing", nil, entities.SoilDry},
		{"numeric junk", 0.7, entities.SoilDry},
		{"string junk", "wet", entities.SoilDry},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			value := map[string]interface{}{}
			if tc.value != nil {
				value["soil_moisture"] = tc.value
			}
			r := Normalize(value)
			assert.Equal(t, tc.want, r.SoilMoisture)
		})
	}
}

func TestNormalizeEmptyPayload(t *testing.T) {
	r := Normalize(map[string]interface{}{})
	assert.Nil(t, r.Temperature)
	assert.Nil(t, r.Humidity)
	assert.Nil(t, r.GasValue)
	assert.Equal(t, entities.SoilDry, r.SoilMoisture)
}

func TestBoolSample(t *testing.T) {
	value := map[string]interface{}{"pir_status": true, "soil_moisture": "junk"}

	v, ok := BoolSample(value, "pir_status")
	assert.True(t, ok)
	assert.True(t, v)

	_, ok = BoolSample(value, "soil_moisture")
	assert.False(t, ok)

	_, ok = BoolSample(value, "water_level")
	assert.False(t, ok)
}
