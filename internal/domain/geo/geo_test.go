package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taborder/ussd-api/internal/domain/entity"
)

func TestHaversine(t *testing.T) {
	// Johannesburgo -> Nairobi, alrededor de 2930 km.
	d := Haversine(-26.2041, 28.0473, -1.2921, 36.8219)
	assert.InDelta(t, 2930, d, 50)

	assert.Zero(t, Haversine(-26.2041, 28.0473, -26.2041, 28.0473), "la distancia a sí mismo es cero")
}

func TestResolvePrefixes(t *testing.T) {
	r := NewResolver(FixedLocator{})

	cases := []struct {
		phone    string
		country  string
		currency string
		vendor   string
	}{
		{"+27821234567", "South Africa 🇿🇦", "R", "1307"},
		{"+2348012345678", "Nigeria 🇳🇬", "₦", "1308"},
		{"+254712345678", "Kenya 🇰🇪", "KSh", "1309"},
		{"+233241234567", "Ghana 🇬🇭", "₵", "1310"},
		{"+256701234567", "Uganda 🇺🇬", "USh", "1311"},
		{"+255621234567", "Tanzania 🇹🇿", "TSh", "1312"},
		{"+260951234567", "Zambia 🇿🇲", "ZK", "1313"},
	}
	for _, c := range cases {
		got := r.Resolve(c.phone)
		assert.Equal(t, c.country, got.Country, "país de %s", c.phone)
		assert.Equal(t, c.currency, got.Currency, "moneda de %s", c.phone)
		assert.Equal(t, c.vendor, got.VendorID, "vendor de %s", c.phone)
	}
}

func TestResolveUnknownPrefixFallsBack(t *testing.T) {
	r := NewResolver(FixedLocator{})
	got := r.Resolve("+11234567890")
	assert.Equal(t, "South Africa 🇿🇦", got.Country, "prefijo desconocido cae en la entrada por defecto")
	assert.Zero(t, got.DistanceKm)
	assert.True(t, got.InCoverage)
}

func TestResolveWithFixedLocatorIsInCoverage(t *testing.T) {
	r := NewResolver(FixedLocator{})
	got := r.Resolve("+27821234567")
	assert.Zero(t, got.DistanceKm, "el locator fijo pone al suscriptor sobre el vendor")
	assert.True(t, got.InCoverage)
}

func TestResolveJitterStaysNearVendor(t *testing.T) {
	r := NewResolver(JitterLocator{})
	for i := 0; i < 50; i++ {
		got := r.Resolve("+254712345678")
		// ±0.5 grados son menos de 80 km en cualquier latitud de la tabla.
		assert.Less(t, got.DistanceKm, 80.0)
	}
}

func TestNearestPickupPoint(t *testing.T) {
	// Suscriptor en el centro de Johannesburgo: Sandton es el más cercano.
	got := NearestPickupPoint(entity.GeoContext{
		Country: "South Africa 🇿🇦",
		UserLat: -26.2041,
		UserLon: 28.0473,
	})
	assert.Equal(t, "PP1003", got.ID)
	assert.Equal(t, "Sandton Collection Point", got.Name)
	assert.Greater(t, got.DistanceKm, 0.0)

	// Suscriptor pegado a Soweto.
	got = NearestPickupPoint(entity.GeoContext{
		Country: "South Africa 🇿🇦",
		UserLat: -26.2678,
		UserLon: 27.8585,
	})
	assert.Equal(t, "PP1001", got.ID)
	assert.Zero(t, got.DistanceKm)
}

func TestNearestPickupPointDefaultForUnknownCountry(t *testing.T) {
	got := NearestPickupPoint(entity.GeoContext{Country: "Ghana 🇬🇭"})
	assert.Equal(t, "PP9999", got.ID)
	assert.Equal(t, 3.5, got.DistanceKm, "país sin tabla recibe el punto por defecto")
}
