package generator

// AssetType classifies a generation asset. The type drives the synthetic
// generation profile and decides whether fuel-side fields are produced.
type AssetType string

// Supported asset types.
const (
	AssetThermal AssetType = "thermal"
	AssetSolar   AssetType = "solar"
	AssetWind    AssetType = "wind"
	AssetHydro   AssetType = "hydro"
)

// Asset is a static reference entity describing one power plant.
// The registry is immutable and passed explicitly into the generator so
// tests can run against their own fleets.
type Asset struct {
	Name       string    `json:"asset_name"`
	Type       AssetType `json:"asset_type"`
	CapacityMW float64   `json:"capacity_mw"`
	Location   string    `json:"location"`
}

// FuelTypes lists the fuels the demo fleet is allowed to burn. Referenced by
// the scenario simulator and kept here with the rest of the reference data.
var FuelTypes = []string{"Coal_Imported", "Coal_Domestic", "Biomass"}

// DefaultFleet returns the demo asset registry: one plant per asset type.
func DefaultFleet() []Asset {
	return []Asset{
		{Name: "Barmer Thermal", Type: AssetThermal, CapacityMW: 1320, Location: "Rajasthan"},
		{Name: "Karnataka Solar", Type: AssetSolar, CapacityMW: 500, Location: "Karnataka"},
		{Name: "Maharashtra Wind", Type: AssetWind, CapacityMW: 300, Location: "Maharashtra"},
		{Name: "Himachal Hydro", Type: AssetHydro, CapacityMW: 240, Location: "Himachal Pradesh"},
	}
}
