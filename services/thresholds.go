package services

import (
	"sync"
	"time"

	"farm-hub/entities"
)

// Safety bands. Alerts are edge-triggered on leaving a band and re-arm when
// the signal returns inside it.
const (
	TempLowThreshold      = 10
	TempHighThreshold     = 35
	HumidityLowThreshold  = 40
	HumidityHighThreshold = 85
	GasThreshold          = 300

	// Device-side soil probe and water tank calibration values, announced to
	// each field unit once per connection.
	DryThreshold   = 30
	WaterThreshold = 20

	// A persistently dry soil probe re-alerts at most this often.
	SoilAlertCooldown = 5 * time.Minute
)

const (
	AlertTempLow     = "Temperature too low"
	AlertTempHigh    = "Temperature too high"
	AlertHumidityLow = "Humidity too low"
	AlertHumidityHi  = "Humidity too high"
	AlertGasHigh     = "Gas level too high"
	AlertSoilDry     = "Soil is dry"
	AlertMotion      = "Motion detected"
)

// ThresholdSet is the THRESHOLDS announcement payload. Key casing is part of
// the device firmware contract.
type ThresholdSet struct {
	Temperature int `json:"TEMPERATURE_THRESHOLD"`
	Dry         int `json:"DRY_THRESHOLD"`
	Water       int `json:"WATER_THRESHOLD"`
	Gas         int `json:"GAS_THRESHOLD"`
}

func DefaultThresholds() ThresholdSet {
	return ThresholdSet{
		Temperature: TempHighThreshold,
		Dry:         DryThreshold,
		Water:       WaterThreshold,
		Gas:         GasThreshold,
	}
}

// unitLatch carries the per-signal alert state of one field unit.
type unitLatch struct {
	temp          bool
	humidity      bool
	gas           bool
	motion        bool
	lastSoilAlert time.Time
}

// AlertEvaluator turns readings into alert strings with hysteresis so a
// signal hovering outside its band does not flood the owner. The clock is
// injected for the soil cooldown.
type AlertEvaluator struct {
	mu      sync.Mutex
	latches map[string]*unitLatch
	now     func() time.Time
}

func NewAlertEvaluator(now func() time.Time) *AlertEvaluator {
	if now == nil {
		now = time.Now
	}
	return &AlertEvaluator{latches: make(map[string]*unitLatch), now: now}
}

// Evaluate runs one reading of one field unit through every threshold rule
// and returns the alerts that fired. soilWet and pir are the raw boolean
// channels; nil means the device did not sample them. A nil reading
// short-circuits without touching latch state.
func (e *AlertEvaluator) Evaluate(espID string, r *entities.Reading, soilWet, pir *bool) []string {
	if r == nil {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	latch, ok := e.latches[espID]
	if !ok {
		latch = &unitLatch{}
		e.latches[espID] = latch
	}

	var alerts []string

	if r.Temperature != nil {
		v := *r.Temperature
		if v < TempLowThreshold || v > TempHighThreshold {
			if !latch.temp {
				latch.temp = true
				if v < TempLowThreshold {
					alerts = append(alerts, AlertTempLow)
				} else {
					alerts = append(alerts, AlertTempHigh)
				}
			}
		} else {
			latch.temp = false
		}
	}

	if r.Humidity != nil {
		v := *r.Humidity
		if v < HumidityLowThreshold || v > HumidityHighThreshold {
			if !latch.humidity {
				latch.humidity = true
				if v < HumidityLowThreshold {
					alerts = append(alerts, AlertHumidityLow)
				} else {
					alerts = append(alerts, AlertHumidityHi)
				}
			}
		} else {
			latch.humidity = false
		}
	}

	if r.GasValue != nil {
		if *r.GasValue > GasThreshold {
			if !latch.gas {
				latch.gas = true
				alerts = append(alerts, AlertGasHigh)
			}
		} else {
			latch.gas = false
		}
	}

	if soilWet != nil {
		if !*soilWet {
			now := e.now()
			if latch.lastSoilAlert.IsZero() || now.Sub(latch.lastSoilAlert) >= SoilAlertCooldown {
				latch.lastSoilAlert = now
				alerts = append(alerts, AlertSoilDry)
			}
		} else {
			latch.lastSoilAlert = time.Time{}
		}
	}

	if pir != nil {
		if *pir {
			if !latch.motion {
				latch.motion = true
				alerts = append(alerts, AlertMotion)
			}
		} else {
			latch.motion = false
		}
	}

	return alerts
}
