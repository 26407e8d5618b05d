package entity

// PickupPoint punto de retiro fijo por país (tabla estática).
type PickupPoint struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

// PickupAssignment punto de retiro asignado a un usuario tras el registro,
// con la distancia calculada en el momento de la asignación.
type PickupAssignment struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	DistanceKm float64 `json:"distance"`
}
