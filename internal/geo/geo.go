package geo

import "math"

const (
	earthRadiusMeters = 6371000
	avgSpeedKmh       = 40
)

// Point is an immutable WGS84 coordinate pair.
type Point struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Valid reports whether the coordinates are inside the WGS84 range.
// Range enforcement belongs to the request boundary; the math helpers
// below trust their callers.
func (p Point) Valid() bool {
	return p.Latitude >= -90 && p.Latitude <= 90 &&
		p.Longitude >= -180 && p.Longitude <= 180
}

// DistanceMeters returns the great-circle distance between a and b using
// the haversine formula on a spherical earth.
func DistanceMeters(a, b Point) float64 {
	phi1 := a.Latitude * math.Pi / 180
	phi2 := b.Latitude * math.Pi / 180
	dPhi := (b.Latitude - a.Latitude) * math.Pi / 180
	dLambda := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusMeters * c
}

// ETAMinutes estimates travel time for the given distance at a fixed
// 40 km/h average speed, rounded to the nearest minute.
func ETAMinutes(distanceMeters float64) int {
	hours := distanceMeters / 1000 / avgSpeedKmh
	return int(math.Round(hours * 60))
}

// Office is the geofence the engine checks arrivals against. It is fixed
// at process start.
type Office struct {
	Center       Point
	RadiusMeters float64
}

// Contains reports geofence membership. The boundary is inclusive.
func (o Office) Contains(p Point) bool {
	return DistanceMeters(p, o.Center) <= o.RadiusMeters
}
