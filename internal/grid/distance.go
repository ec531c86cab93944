package grid

import "math"

const earthRadiusMetres float64 = 6371000

// Distance returns the great-circle distance between two points in metres.
// Used for reporting only; cell geometry itself is flat-earth.
func Distance(from Geo, to Geo) float64 {
	var deltaLat = (to.Lat - from.Lat) * (math.Pi / 180)
	var deltaLon = (to.Lon - from.Lon) * (math.Pi / 180)

	var a = math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(from.Lat*(math.Pi/180))*math.Cos(to.Lat*(math.Pi/180))*
			math.Sin(deltaLon/2)*math.Sin(deltaLon/2)
	var c = 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMetres * c
}
