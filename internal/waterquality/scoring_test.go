// File: internal/waterquality/scoring_test.go
package waterquality

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// pristineReading has every parameter at or better than its full-marks bound.
func pristineReading() *Reading {
	return &Reading{
		PH:           7.2,
		DissolvedO2:  9.5,
		Temperature:  18,
		Turbidity:    2,
		Conductivity: 300,
		TotalSolids:  200,
		BOD:          1,
		COD:          5,
	}
}

// degradedReading has every parameter at or beyond its zero bound.
func degradedReading() *Reading {
	return &Reading{
		PH:           3.5,
		DissolvedO2:  1.0,
		Temperature:  38,
		Turbidity:    80,
		Conductivity: 2500,
		TotalSolids:  2000,
		BOD:          45,
		COD:          150,
	}
}

func TestScoreBounds(t *testing.T) {
	assert.InDelta(t, 100, Score(pristineReading()), 0.001, "pristine water should score full marks")
	assert.InDelta(t, 0, Score(degradedReading()), 0.001, "fully degraded water should score zero")
}

func TestScoreWeightsSumToOne(t *testing.T) {
	var sum float64
	for _, w := range weights {
		sum += w
	}
	assert.InDelta(t, 1.0, sum, 0.0001)
}

func TestPHSubscore(t *testing.T) {
	tests := []struct {
		name string
		ph   float64
		want float64
	}{
		{"neutral", 7.0, 100},
		{"lower band edge", 6.5, 100},
		{"upper band edge", 8.5, 100},
		{"mildly acidic", 5.25, 50},
		{"mildly alkaline", 9.75, 50},
		{"strongly acidic", 4.0, 0},
		{"strongly alkaline", 11.0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, phSubscore(tt.ph), 0.001)
		})
	}
}

func TestOxygenSubscore(t *testing.T) {
	assert.InDelta(t, 100, oxygenSubscore(8), 0.001)
	assert.InDelta(t, 100, oxygenSubscore(12), 0.001)
	assert.InDelta(t, 0, oxygenSubscore(2), 0.001)
	assert.InDelta(t, 50, oxygenSubscore(5), 0.001)
}

func TestTemperatureSubscore(t *testing.T) {
	assert.InDelta(t, 100, temperatureSubscore(10), 0.001)
	assert.InDelta(t, 100, temperatureSubscore(25), 0.001)
	assert.InDelta(t, 50, temperatureSubscore(5), 0.001)
	assert.InDelta(t, 50, temperatureSubscore(30), 0.001)
	assert.InDelta(t, 0, temperatureSubscore(40), 0.001)
}

func TestRamp(t *testing.T) {
	assert.InDelta(t, 100, ramp(5, 5, 50), 0.001, "at best bound")
	assert.InDelta(t, 0, ramp(50, 5, 50), 0.001, "at worst bound")
	assert.InDelta(t, 50, ramp(27.5, 5, 50), 0.001, "midpoint")
	assert.InDelta(t, 100, ramp(-10, 5, 50), 0.001, "below best clamps")
	assert.InDelta(t, 0, ramp(90, 5, 50), 0.001, "beyond worst clamps")
}

func TestClassify(t *testing.T) {
	tests := []struct {
		score float64
		want  QualityStatus
	}{
		{100, StatusGood},
		{70, StatusGood},
		{69.99, StatusModerate},
		{40, StatusModerate},
		{39.99, StatusPoor},
		{0, StatusPoor},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.score), "score %.2f", tt.score)
	}
}

func TestScoreDominatedByOxygenAndBOD(t *testing.T) {
	// Kill only the two heaviest parameters; the score should drop by
	// exactly their combined weight.
	r := pristineReading()
	r.DissolvedO2 = 1.0
	r.BOD = 45
	assert.InDelta(t, 100*(1-weights["dissolved_o2"]-weights["bod"]), Score(r), 0.001)
}
