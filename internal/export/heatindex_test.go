package export

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func rothfusz(f, rh float64) float64 {
	return -42.379 + 2.04901523*f + 10.14333127*rh - 0.22475541*f*rh -
		0.00683783*f*f - 0.05481717*rh*rh + 0.00122874*f*f*rh +
		0.00085282*f*rh*rh - 0.00000199*f*f*rh*rh
}

func toC(f float64) float64 {
	return math.Round((f-32)*5/9*10) / 10
}

func TestHeatIndexC_BelowThresholdIsIdentity(t *testing.T) {
	assert.Equal(t, 20.0, HeatIndexC(20, 50))
	assert.Equal(t, 26.6, HeatIndexC(26.6, 95))
	assert.Equal(t, -5.25, HeatIndexC(-5.25, 10))
}

func TestHeatIndexC_Regression(t *testing.T) {
	got := HeatIndexC(35, 70)
	assert.Equal(t, toC(rothfusz(95, 70)), got)
	assert.InDelta(t, 50.3, got, 0.1)
}

func TestHeatIndexC_LowHumidityAdjustment(t *testing.T) {
	f := 38*9.0/5 + 32
	plain := rothfusz(f, 10)
	adj := ((13 - 10.0) / 4) * math.Sqrt((17-math.Abs(f-95))/17)

	assert.Equal(t, toC(plain-adj), HeatIndexC(38, 10))
	assert.Less(t, HeatIndexC(38, 10), toC(plain)+0.05)
}

func TestHeatIndexC_HighHumidityAdjustment(t *testing.T) {
	f := 28*9.0/5 + 32
	plain := rothfusz(f, 90)
	adj := ((90 - 85.0) / 10) * ((87 - f) / 5)

	assert.Equal(t, toC(plain+adj), HeatIndexC(28, 90))
}

func TestHeatIndex_MissingInput(t *testing.T) {
	v := 30.0
	assert.Nil(t, heatIndex(nil, &v))
	assert.Nil(t, heatIndex(&v, nil))
	assert.NotNil(t, heatIndex(&v, &v))
}
