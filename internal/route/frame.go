package route

import "math"

// DefaultCenter frames the map when there is nothing to show.
var DefaultCenter = LatLng{Lat: 13.7563, Lng: 100.5018}

// View is the initial map framing for a set of points.
type View struct {
	Center LatLng `json:"center"`
	Zoom   int    `json:"zoom"`
}

// Frame centers on the mean coordinate and picks a zoom from the larger of
// the latitude and longitude spans. fallback is used for an empty route.
func Frame(points []Point, fallback LatLng) View {
	if len(points) == 0 {
		return View{Center: fallback, Zoom: ZoomForSpan(0)}
	}

	var sumLat, sumLng float64
	minLat, maxLat := math.Inf(1), math.Inf(-1)
	minLng, maxLng := math.Inf(1), math.Inf(-1)
	for _, p := range points {
		sumLat += p.Lat
		sumLng += p.Lng
		minLat = math.Min(minLat, p.Lat)
		maxLat = math.Max(maxLat, p.Lat)
		minLng = math.Min(minLng, p.Lng)
		maxLng = math.Max(maxLng, p.Lng)
	}
	n := float64(len(points))

	return View{
		Center: LatLng{Lat: sumLat / n, Lng: sumLng / n},
		Zoom:   ZoomForSpan(math.Max(maxLat-minLat, maxLng-minLng)),
	}
}

// ZoomForSpan maps a bounding-box span in degrees to a map zoom level.
func ZoomForSpan(span float64) int {
	switch {
	case span > 0.5:
		return 10
	case span > 0.2:
		return 11
	case span > 0.1:
		return 12
	case span > 0.05:
		return 13
	default:
		return 14
	}
}
