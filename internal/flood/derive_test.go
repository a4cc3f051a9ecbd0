// File: internal/flood/derive_test.go
package flood

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func floatPtr(v float64) *float64 { return &v }

func TestDeriveTrend(t *testing.T) {
	tests := []struct {
		name     string
		current  float64
		previous *float64
		want     Trend
	}{
		{"no previous reading", 2.0, nil, TrendStable},
		{"clear rise", 2.20, floatPtr(2.00), TrendRising},
		{"clear fall", 1.80, floatPtr(2.00), TrendFalling},
		{"within stable band up", 2.04, floatPtr(2.00), TrendStable},
		{"within stable band down", 1.96, floatPtr(2.00), TrendStable},
		{"exactly at band edge", 2.05, floatPtr(2.00), TrendStable},
		{"just past band edge", 2.06, floatPtr(2.00), TrendRising},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveTrend(tt.current, tt.previous))
		})
	}
}

func TestDeriveRisk(t *testing.T) {
	st := &Station{WarningLevel: 3.0, DangerLevel: 4.0}

	tests := []struct {
		name    string
		current float64
		trend   Trend
		want    Risk
	}{
		{"well below warning", 1.0, TrendStable, RiskLow},
		{"below warning and falling", 2.8, TrendFalling, RiskLow},
		{"approaching warning but stable", 2.8, TrendStable, RiskLow},
		{"approaching warning and rising", 2.8, TrendRising, RiskMedium},
		{"just under approach band and rising", 2.6, TrendRising, RiskLow},
		{"at warning stable", 3.0, TrendStable, RiskMedium},
		{"at warning falling", 3.5, TrendFalling, RiskMedium},
		{"above warning and rising", 3.5, TrendRising, RiskHigh},
		{"at danger", 4.0, TrendFalling, RiskHigh},
		{"above danger", 5.0, TrendStable, RiskHigh},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveRisk(tt.current, st, tt.trend))
		})
	}
}
