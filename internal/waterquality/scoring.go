// File: internal/waterquality/scoring.go
package waterquality

// Parameter weights for the overall quality score. Dissolved oxygen and BOD
// dominate: they track the river's capacity to sustain aquatic life.
var weights = map[string]float64{
	"ph":           0.12,
	"dissolved_o2": 0.20,
	"temperature":  0.08,
	"turbidity":    0.12,
	"conductivity": 0.10,
	"total_solids": 0.10,
	"bod":          0.16,
	"cod":          0.12,
}

const (
	goodThreshold     = 70.0
	moderateThreshold = 40.0
)

// ramp maps value onto a 100..0 scale: full marks at or below best, zero at
// or beyond worst, linear in between.
func ramp(value, best, worst float64) float64 {
	if value <= best {
		return 100
	}
	if value >= worst {
		return 0
	}
	return 100 * (worst - value) / (worst - best)
}

// phSubscore peaks inside the 6.5-8.5 band and falls off linearly toward
// pH 4 and pH 11.
func phSubscore(ph float64) float64 {
	switch {
	case ph >= 6.5 && ph <= 8.5:
		return 100
	case ph < 6.5:
		return ramp(6.5-ph, 0, 2.5)
	default:
		return ramp(ph-8.5, 0, 2.5)
	}
}

// oxygenSubscore rewards saturation: 8 mg/L and above is full marks, 2 mg/L
// and below is uninhabitable.
func oxygenSubscore(do float64) float64 {
	if do >= 8 {
		return 100
	}
	if do <= 2 {
		return 0
	}
	return 100 * (do - 2) / 6
}

// temperatureSubscore is full inside the 10-25C band for a temperate river.
func temperatureSubscore(temp float64) float64 {
	switch {
	case temp >= 10 && temp <= 25:
		return 100
	case temp < 10:
		return ramp(10-temp, 0, 10)
	default:
		return ramp(temp-25, 0, 10)
	}
}

// Score computes the 0-100 quality score for a set of parameters.
func Score(r *Reading) float64 {
	total := weights["ph"]*phSubscore(r.PH) +
		weights["dissolved_o2"]*oxygenSubscore(r.DissolvedO2) +
		weights["temperature"]*temperatureSubscore(r.Temperature) +
		weights["turbidity"]*ramp(r.Turbidity, 5, 50) +
		weights["conductivity"]*ramp(r.Conductivity, 500, 2000) +
		weights["total_solids"]*ramp(r.TotalSolids, 500, 1500) +
		weights["bod"]*ramp(r.BOD, 3, 30) +
		weights["cod"]*ramp(r.COD, 10, 100)
	return total
}

// Classify maps a score to its quality status.
func Classify(score float64) QualityStatus {
	switch {
	case score >= goodThreshold:
		return StatusGood
	case score >= moderateThreshold:
		return StatusModerate
	default:
		return StatusPoor
	}
}
