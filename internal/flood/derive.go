// File: internal/flood/derive.go
package flood

// stableBandM is the level change below which the trend reads as stable.
const stableBandM = 0.05

// DeriveTrend compares the current level against the previous one. With no
// previous reading the trend is stable.
func DeriveTrend(current float64, previous *float64) Trend {
	if previous == nil {
		return TrendStable
	}
	delta := current - *previous
	switch {
	case delta > stableBandM:
		return TrendRising
	case delta < -stableBandM:
		return TrendFalling
	default:
		return TrendStable
	}
}

// DeriveRisk maps the current level onto the station thresholds. A rising
// level within 10% of the warning threshold already counts as medium: the
// point of a forecast is to warn before the threshold is crossed.
func DeriveRisk(current float64, st *Station, trend Trend) Risk {
	if current >= st.DangerLevel {
		return RiskHigh
	}
	if current >= st.WarningLevel {
		if trend == TrendRising {
			return RiskHigh
		}
		return RiskMedium
	}
	if trend == TrendRising && current >= st.WarningLevel*0.9 {
		return RiskMedium
	}
	return RiskLow
}
