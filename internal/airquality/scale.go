package airquality

// Tier is a band of the PM2.5 scale.
type Tier string

const (
	TierGood      Tier = "good"
	TierModerate  Tier = "moderate"
	TierUnhealthy Tier = "unhealthy"
	TierHazardous Tier = "hazardous"
)

// Color is a CSS hex color used by the map layer.
type Color string

const (
	ColorGreen  Color = "#22c55e"
	ColorYellow Color = "#eab308"
	ColorOrange Color = "#f97316"
	ColorRed    Color = "#ef4444"
)

// PM2.5 breakpoints in µg/m³. Each bound is inclusive for the lower tier.
const (
	PM25GoodMax      = 12.0
	PM25ModerateMax  = 35.4
	PM25UnhealthyMax = 55.4
)

// TierFor maps a PM2.5 concentration onto the canonical scale.
// Negative readings are treated as good.
func TierFor(pm25 float64) Tier {
	switch {
	case pm25 <= PM25GoodMax:
		return TierGood
	case pm25 <= PM25ModerateMax:
		return TierModerate
	case pm25 <= PM25UnhealthyMax:
		return TierUnhealthy
	default:
		return TierHazardous
	}
}

// Color returns the display color of the tier.
func (t Tier) Color() Color {
	switch t {
	case TierGood:
		return ColorGreen
	case TierModerate:
		return ColorYellow
	case TierUnhealthy:
		return ColorOrange
	default:
		return ColorRed
	}
}

// ColorFor is shorthand for TierFor(pm25).Color().
func ColorFor(pm25 float64) Color {
	return TierFor(pm25).Color()
}
