package entity

// GeoContext contexto geográfico derivado del prefijo telefónico en cada request.
// Nunca se persiste: se recalcula en cada petición del gateway.
type GeoContext struct {
	Country    string
	Currency   string
	VendorID   string
	UserLat    float64
	UserLon    float64
	VendorLat  float64
	VendorLon  float64
	DistanceKm float64
	InCoverage bool
}
