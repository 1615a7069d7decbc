package esg

import (
	"errors"
	"fmt"
	"slices"

	"carbonsense.dev/carbonsense/pkg/generator"
)

// Scenario describes a what-if decarbonization pathway: co-firing part of
// the thermal fuel mix with biomass and adding renewable capacity.
type Scenario struct {
	Name                string  `json:"scenario_name"`
	BiomassCofiringPct  float64 `json:"biomass_cofiring_pct"`
	RenewableAdditionMW float64 `json:"renewable_addition_mw"`
	CofiringFuel        string  `json:"cofiring_fuel,omitempty"`
	TargetYear          int     `json:"target_year"`
	CarbonPricePerTonne float64 `json:"carbon_price_per_tonne"`
}

// Validate checks the scenario inputs against the fleet's reference data.
// An empty CofiringFuel defaults to biomass and is accepted.
func (s Scenario) Validate() error {
	if s.BiomassCofiringPct < 0 || s.BiomassCofiringPct > 100 {
		return errors.New("biomass_cofiring_pct must be within 0-100")
	}
	if s.RenewableAdditionMW < 0 {
		return errors.New("renewable_addition_mw must be non-negative")
	}
	if s.CofiringFuel != "" && !slices.Contains(generator.FuelTypes, s.CofiringFuel) {
		return fmt.Errorf("unknown co-firing fuel %q", s.CofiringFuel)
	}
	return nil
}

// ScenarioResult carries the simulated impact against the table's baseline.
type ScenarioResult struct {
	Name                      string  `json:"scenario_name"`
	BaselineEmissionsTonnes   float64 `json:"baseline_emissions_tonnes"`
	BaselineIntensityPerMWh   float64 `json:"baseline_intensity_tco2_per_mwh"`
	EmissionsReducedTonnes    float64 `json:"emissions_reduced_tonnes"`
	NewRenewableGenerationMWh float64 `json:"new_renewable_generation_mwh"`
	NewIntensityPerMWh        float64 `json:"new_intensity_tco2_per_mwh"`
	IntensityDefined          bool    `json:"intensity_defined"`
	CarbonCreditValue         float64 `json:"carbon_credit_value"`
}

const (
	biomassReductionFactor = 0.7  // CO2 cut per tonne of displaced coal
	renewablePLF           = 0.25 // plant load factor assumed for new capacity
	hoursPerYear           = 8760
)

// SimulateDecarbonization projects the scenario against the table's Scope-1
// baseline. Pure arithmetic over already-aggregated totals.
func (a *Aggregator) SimulateDecarbonization(s Scenario) ScenarioResult {
	var baselineEmissions, baselineGeneration float64
	for _, row := range a.Scope1Emissions("") {
		baselineEmissions += row.EmissionsCO2Tonnes
		baselineGeneration += row.GenerationMWh
	}

	result := ScenarioResult{
		Name:                      s.Name,
		BaselineEmissionsTonnes:   baselineEmissions,
		EmissionsReducedTonnes:    baselineEmissions * (s.BiomassCofiringPct / 100) * biomassReductionFactor,
		NewRenewableGenerationMWh: s.RenewableAdditionMW * hoursPerYear * renewablePLF,
	}
	result.CarbonCreditValue = result.EmissionsReducedTonnes * s.CarbonPricePerTonne

	if baselineGeneration > 0 {
		result.BaselineIntensityPerMWh = baselineEmissions / baselineGeneration
	}
	newGeneration := baselineGeneration + result.NewRenewableGenerationMWh
	if newGeneration > 0 {
		result.NewIntensityPerMWh = (baselineEmissions - result.EmissionsReducedTonnes) / newGeneration
		result.IntensityDefined = true
	}
	return result
}
