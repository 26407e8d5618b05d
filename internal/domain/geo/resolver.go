package geo

import (
	"math"
	"math/rand"
	"strings"

	"github.com/taborder/ussd-api/internal/domain/entity"
)

// CoverageRadiusKm radio de cobertura del vendor asignado.
const CoverageRadiusKm = 25.0

const earthRadiusKm = 6371.0

// CountryEntry entrada de la tabla de prefijos de marcación (CTT): país,
// moneda, vendor local y su coordenada de referencia.
type CountryEntry struct {
	Prefix   string
	Country  string
	Currency string
	VendorID string
	Lat, Lon float64
}

// countryTable tabla ordenada de prefijos. El orden importa: se evalúa de
// arriba hacia abajo y gana la primera coincidencia.
var countryTable = []CountryEntry{
	{"+27", "South Africa 🇿🇦", "R", "1307", -26.2041, 28.0473},
	{"+234", "Nigeria 🇳🇬", "₦", "1308", 6.5244, 3.3792},
	{"+254", "Kenya 🇰🇪", "KSh", "1309", -1.2921, 36.8219},
	{"+233", "Ghana 🇬🇭", "₵", "1310", 5.6037, -0.1870},
	{"+256", "Uganda 🇺🇬", "USh", "1311", 0.3476, 32.5825},
	{"+255", "Tanzania 🇹🇿", "TSh", "1312", -6.7924, 39.2083},
	{"+260", "Zambia 🇿🇲", "ZK", "1313", -15.3875, 28.3228},
}

// defaultCountry fallback cuando ningún prefijo coincide.
var defaultCountry = countryTable[0]

// Haversine distancia de círculo máximo en km entre dos coordenadas.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	rad := func(deg float64) float64 { return deg * math.Pi / 180 }
	lat1, lon1, lat2, lon2 = rad(lat1), rad(lon1), rad(lat2), rad(lon2)

	dlat := lat2 - lat1
	dlon := lon2 - lon1

	a := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dlon/2)*math.Sin(dlon/2)
	c := 2 * math.Asin(math.Sqrt(a))

	return earthRadiusKm * c
}

// Locator deriva la coordenada del suscriptor a partir de la entrada CTT.
// En producción no existe una API de localización del operador: JitterLocator
// simula una ubicación cercana. Un proveedor real reemplaza esta interfaz
// sin tocar la máquina de estados.
type Locator interface {
	Locate(entry CountryEntry) (lat, lon float64)
}

// JitterLocator ubicación simulada: coordenada del vendor ± 0.5° uniforme.
type JitterLocator struct{}

// Locate implementa Locator.
func (JitterLocator) Locate(entry CountryEntry) (float64, float64) {
	return entry.Lat + (rand.Float64()-0.5), entry.Lon + (rand.Float64()-0.5)
}

// FixedLocator devuelve siempre la coordenada del vendor (útil en tests).
type FixedLocator struct{}

// Locate implementa Locator.
func (FixedLocator) Locate(entry CountryEntry) (float64, float64) {
	return entry.Lat, entry.Lon
}

// Resolver deriva el contexto geográfico (CTT) de un número de teléfono.
type Resolver struct {
	loc Locator
}

// NewResolver construye el resolver con el locator dado.
func NewResolver(loc Locator) *Resolver {
	return &Resolver{loc: loc}
}

// Resolve busca el prefijo del número en la tabla, simula la coordenada del
// suscriptor y calcula distancia y cobertura. Sin coincidencia: entrada por
// defecto con distancia cero y dentro de cobertura.
func (r *Resolver) Resolve(phone string) entity.GeoContext {
	for _, entry := range countryTable {
		if strings.HasPrefix(phone, entry.Prefix) {
			userLat, userLon := r.loc.Locate(entry)
			dist := round1(Haversine(userLat, userLon, entry.Lat, entry.Lon))
			return entity.GeoContext{
				Country:    entry.Country,
				Currency:   entry.Currency,
				VendorID:   entry.VendorID,
				UserLat:    userLat,
				UserLon:    userLon,
				VendorLat:  entry.Lat,
				VendorLon:  entry.Lon,
				DistanceKm: dist,
				InCoverage: dist <= CoverageRadiusKm,
			}
		}
	}

	return entity.GeoContext{
		Country:    defaultCountry.Country,
		Currency:   defaultCountry.Currency,
		VendorID:   defaultCountry.VendorID,
		UserLat:    defaultCountry.Lat,
		UserLon:    defaultCountry.Lon,
		VendorLat:  defaultCountry.Lat,
		VendorLon:  defaultCountry.Lon,
		DistanceKm: 0,
		InCoverage: true,
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
