package geo

import "github.com/taborder/ussd-api/internal/domain/entity"

// pickupPoints tabla estática de puntos de retiro por país.
var pickupPoints = map[string][]entity.PickupPoint{
	"South Africa 🇿🇦": {
		{ID: "PP1001", Name: "Soweto Spaza Hub", Lat: -26.2678, Lon: 27.8585},
		{ID: "PP1002", Name: "Alexandra Pickup Point", Lat: -26.1000, Lon: 28.1100},
		{ID: "PP1003", Name: "Sandton Collection Point", Lat: -26.1076, Lon: 28.0567},
	},
	"Kenya 🇰🇪": {
		{ID: "PP2001", Name: "Kibera Community Hub", Lat: -1.3133, Lon: 36.7897},
		{ID: "PP2002", Name: "Westlands Pickup Point", Lat: -1.2635, Lon: 36.8078},
	},
	"Nigeria 🇳🇬": {
		{ID: "PP3001", Name: "Ikeja Collection Center", Lat: 6.5984, Lon: 3.3384},
		{ID: "PP3002", Name: "Victoria Island Hub", Lat: 6.4317, Lon: 3.4217},
	},
}

// defaultPickup punto de retiro fijo cuando el país no tiene tabla.
var defaultPickup = entity.PickupAssignment{
	ID:         "PP9999",
	Name:       "Default Pickup Point",
	DistanceKm: 3.5,
}

// NearestPickupPoint recorre la tabla del país y devuelve el punto a menor
// distancia haversine de la coordenada del suscriptor (empates: gana el
// primero de la tabla). País sin tabla: punto por defecto.
func NearestPickupPoint(geoCtx entity.GeoContext) entity.PickupAssignment {
	points, ok := pickupPoints[geoCtx.Country]
	if !ok || len(points) == 0 {
		return defaultPickup
	}

	best := points[0]
	bestDist := Haversine(geoCtx.UserLat, geoCtx.UserLon, best.Lat, best.Lon)
	for _, p := range points[1:] {
		d := Haversine(geoCtx.UserLat, geoCtx.UserLon, p.Lat, p.Lon)
		if d < bestDist {
			best, bestDist = p, d
		}
	}

	return entity.PickupAssignment{
		ID:         best.ID,
		Name:       best.Name,
		DistanceKm: round1(bestDist),
	}
}
