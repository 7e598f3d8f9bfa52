package dto

// LocationDTO is a map-selected point with its human-readable address.
type LocationDTO struct {
	Address   string  `json:"address"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// VehicleDTO describes the vehicle to be towed.
type VehicleDTO struct {
	Brand         string `json:"brand"`
	Model         string `json:"model"`
	Accessibility string `json:"accessibility"`
}
