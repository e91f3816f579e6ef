// Package geo provides great-circle distance math and the nearest-authority
// lookup used when routing a detection report to a Wildlife Crime Control
// Bureau office.
package geo

import "math"

// earthRadiusKM is the mean Earth radius used by the haversine formula.
const earthRadiusKM = 6371.0

// HaversineKM returns the great-circle distance in kilometers between two
// coordinate pairs.
func HaversineKM(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKM * c
}

// AuthorityCenter is a Wildlife Crime Control Bureau office that can
// receive detection reports.
type AuthorityCenter struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
	Email     string  `json:"email"`
	Phone     string  `json:"phone"`
}

// NearestAuthority holds a matched center and the distance to it.
type NearestAuthority struct {
	AuthorityCenter
	DistanceKM float64 `json:"distance_km"`
}

// WCCBCenters lists the known Wildlife Crime Control Bureau offices.
var WCCBCenters = []AuthorityCenter{
	{Name: "WCCB Headquarters New Delhi", Latitude: 28.6139, Longitude: 77.2090, Email: "wccb-hq@nic.in", Phone: "+91-11-26567788"},
	{Name: "WCCB Western Regional Office Mumbai", Latitude: 19.0760, Longitude: 72.8777, Email: "wccb-west@nic.in", Phone: "+91-22-26595103"},
	{Name: "WCCB Southern Regional Office Chennai", Latitude: 13.0827, Longitude: 80.2707, Email: "wccb-south@nic.in", Phone: "+91-44-28520321"},
	{Name: "WCCB Eastern Regional Office Kolkata", Latitude: 22.5726, Longitude: 88.3639, Email: "wccb-east@nic.in", Phone: "+91-33-24797700"},
	{Name: "WCCB Northern Regional Office Delhi", Latitude: 28.7041, Longitude: 77.1025, Email: "wccb-north@nic.in", Phone: "+91-11-26567788"},
}

// Nearest returns the closest center to the given coordinates, or nil when
// the center list is empty. Distance is rounded to one decimal for display.
func Nearest(lat, lon float64, centers []AuthorityCenter) *NearestAuthority {
	var best *NearestAuthority
	bestDist := math.Inf(1)
	for _, c := range centers {
		d := HaversineKM(lat, lon, c.Latitude, c.Longitude)
		if d < bestDist {
			bestDist = d
			best = &NearestAuthority{
				AuthorityCenter: c,
				DistanceKM:      math.Round(d*10) / 10,
			}
		}
	}
	return best
}
