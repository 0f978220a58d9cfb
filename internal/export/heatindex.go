package export

import "math"

// HeatIndexC returns the NWS heat index in °C for a temperature in °C and a
// relative humidity in percent. Below 80°F the temperature is returned
// unchanged; otherwise the Rothfusz regression and its low/high humidity
// adjustments apply, and the result is rounded to one decimal.
func HeatIndexC(tempC, rh float64) float64 {
	f := tempC*9/5 + 32
	if f < 80 {
		return tempC
	}

	hi := -42.379 +
		2.04901523*f +
		10.14333127*rh -
		0.22475541*f*rh -
		0.00683783*f*f -
		0.05481717*rh*rh +
		0.00122874*f*f*rh +
		0.00085282*f*rh*rh -
		0.00000199*f*f*rh*rh

	if rh < 13 && f >= 80 && f <= 112 {
		hi -= ((13 - rh) / 4) * math.Sqrt((17-math.Abs(f-95))/17)
	}
	if rh > 85 && f >= 80 && f <= 87 {
		hi += ((rh - 85) / 10) * ((87 - f) / 5)
	}

	c := (hi - 32) * 5 / 9
	return math.Round(c*10) / 10
}

// heatIndex is HeatIndexC lifted over optional inputs.
func heatIndex(tempC, rh *float64) *float64 {
	if tempC == nil || rh == nil {
		return nil
	}
	v := HeatIndexC(*tempC, *rh)
	return &v
}
