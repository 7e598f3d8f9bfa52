package booking

// Accessibility describes how the vehicle sits at the pickup point.
type Accessibility string

const (
	AccessibilityRoadside   Accessibility = "roadside"
	AccessibilityObstructed Accessibility = "obstructed"
)

// IsValid returns true if the accessibility value is recognized.
func (a Accessibility) IsValid() bool {
	return a == AccessibilityRoadside || a == AccessibilityObstructed
}

// VehicleSizeClass buckets vehicles by the equipment needed to tow them.
type VehicleSizeClass string

const (
	SizeSmall  VehicleSizeClass = "small"
	SizeMedium VehicleSizeClass = "medium"
	SizeLarge  VehicleSizeClass = "large"
)

// TowTruckClass identifies the tow truck equipment category.
type TowTruckClass string

const (
	TruckClassA TowTruckClass = "A"
	TruckClassC TowTruckClass = "C"
	TruckClassD TowTruckClass = "D"
)

// IsValid returns true if the tow truck class is recognized.
func (t TowTruckClass) IsValid() bool {
	return t == TruckClassA || t == TruckClassC || t == TruckClassD
}

// VehicleDescriptor is an immutable value object describing the vehicle to tow.
type VehicleDescriptor struct {
	Brand         string        `json:"brand"`
	Model         string        `json:"model"`
	Accessibility Accessibility `json:"accessibility"`
}

// RequiresManeuver returns true when the vehicle's position needs extra
// recovery effort, which carries a surcharge.
func (d VehicleDescriptor) RequiresManeuver() bool {
	return d.Accessibility == AccessibilityObstructed
}

// largeCarModels maps full-size SUVs and vans to the medium size class.
var largeCarModels = map[string]struct{}{
	"Chevrolet Suburban":     {},
	"Chevrolet Tahoe":        {},
	"Cadillac Escalade":      {},
	"Ford Expedition":        {},
	"GMC Yukon XL":           {},
	"Lincoln Navigator":      {},
	"Toyota Sequoia":         {},
	"Toyota Land Cruiser":    {},
	"Nissan Armada":          {},
	"Mercedes-Benz Sprinter": {},
}

// heavyTruckModels maps heavy-duty pickups and trucks to the large size class.
var heavyTruckModels = map[string]struct{}{
	"Ford F-250":                 {},
	"Ford F-350":                 {},
	"Ford F-450":                 {},
	"Ram 2500":                   {},
	"Ram 3500":                   {},
	"Chevrolet Silverado 2500HD": {},
	"Chevrolet Silverado 3500HD": {},
	"GMC Sierra 2500HD":          {},
	"GMC Sierra 3500HD":          {},
	"Freightliner M2":            {},
}

// ClassifyVehicleSize determines the size class from the vehicle model.
// Models not in either list, including unrecognized ones, classify as small;
// there is deliberately no error state here.
func ClassifyVehicleSize(model string) VehicleSizeClass {
	if _, ok := heavyTruckModels[model]; ok {
		return SizeLarge
	}
	if _, ok := largeCarModels[model]; ok {
		return SizeMedium
	}
	return SizeSmall
}

// SelectTowTruckClass maps a size class to the tow truck class that serves it.
func SelectTowTruckClass(size VehicleSizeClass) TowTruckClass {
	switch size {
	case SizeSmall:
		return TruckClassA
	case SizeMedium:
		return TruckClassC
	case SizeLarge:
		return TruckClassD
	default:
		return TruckClassA
	}
}
