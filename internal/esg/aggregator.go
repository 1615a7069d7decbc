// Package esg derives emissions, water and disclosure rollups from the
// generated telemetry table. All queries are pure functions of the table:
// nothing is cached, every call recomputes from the immutable readings.
package esg

import (
	"errors"
	"math/rand"
	"sort"
	"time"

	"carbonsense.dev/carbonsense/pkg/generator"
)

const dateLayout = "2006-01-02"

// ErrUnknownAsset is returned for performance queries on names that never
// appear in the reading table.
var ErrUnknownAsset = errors.New("esg: unknown asset")

// DailyEmissions is one Scope-1 rollup row: thermal generation, fuel and CO2
// summed over a calendar date.
type DailyEmissions struct {
	Date               string  `json:"date"`
	GenerationMWh      float64 `json:"generation_mwh"`
	FuelConsumedTonnes float64 `json:"fuel_consumed_tonnes"`
	EmissionsCO2Tonnes float64 `json:"emissions_co2_tonnes"`
}

// WaterIntensityRow is one (date, asset) bucket with withdrawal per MWh.
// A bucket with zero generation has no meaningful intensity: Defined is
// false and Intensity is zero rather than an arithmetic fault.
type WaterIntensityRow struct {
	Date               string              `json:"date"`
	AssetName          string              `json:"asset_name"`
	AssetType          generator.AssetType `json:"asset_type"`
	GenerationMWh      float64             `json:"generation_mwh"`
	WaterWithdrawalCuM float64             `json:"water_withdrawal_cum"`
	Intensity          float64             `json:"water_intensity"`
	Defined            bool                `json:"intensity_defined"`
}

// DisclosureReport is the BRSR-style summary record. It is a label/value
// summary for a caller-supplied reporting period, not a regulatory schema.
type DisclosureReport struct {
	Period                    string  `json:"reporting_period"`
	Scope1TotalTonnes         float64 `json:"scope1_emissions_total_tco2e"`
	GenerationTotalMWh        float64 `json:"energy_generation_total_mwh"`
	EmissionIntensityKgPerMWh float64 `json:"emission_intensity_kgco2_per_mwh"`
	IntensityDefined          bool    `json:"emission_intensity_defined"`
	WaterWithdrawalTotalCuM   float64 `json:"water_withdrawal_total_m3"`
	MeanWaterIntensity        float64 `json:"water_intensity_m3_per_mwh"`
	RenewablePct              float64 `json:"renewable_energy_percentage"`
	// DataQualityScore is a simulated placeholder in the 95-100 range,
	// not a computed quality metric.
	DataQualityScore float64 `json:"data_quality_score"`
}

// AssetPerformance summarises one asset's behaviour over the whole table.
type AssetPerformance struct {
	AssetName                  string              `json:"asset_name"`
	AssetType                  generator.AssetType `json:"asset_type"`
	CapacityMW                 float64             `json:"capacity_mw"`
	CapacityUtilizationPct     float64             `json:"capacity_utilization_pct"`
	MeanOperatingEfficiencyPct float64             `json:"mean_operating_efficiency_pct"`
	// AvgHeatRateKcalPerKWh is only meaningful for thermal assets.
	AvgHeatRateKcalPerKWh float64 `json:"avg_heat_rate_kcal_per_kwh"`
	HeatRateDefined       bool    `json:"heat_rate_defined"`
}

// Aggregator answers rollup queries over one immutable reading table.
type Aggregator struct {
	readings generator.ReadingTable

	// qualityScore is drawn once per session so repeated disclosure
	// queries stay idempotent.
	qualityScore float64
}

// NewAggregator wraps a reading table for querying. The seed drives the
// simulated quality score so repeated sessions reproduce the same reports;
// a zero seed falls back to the current time.
// Note: Uses math/rand for the simulated quality score, acceptable for demo data.
func NewAggregator(readings generator.ReadingTable, seed int64) *Aggregator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed)) // #nosec G404 - simulated placeholder score
	return &Aggregator{
		readings:     readings,
		qualityScore: 95 + rng.Float64()*5,
	}
}

// Scope1Emissions rolls thermal readings up by calendar date, optionally
// restricted to one asset name. An empty asset name means all thermal
// assets. Filters that match nothing return an empty slice.
func (a *Aggregator) Scope1Emissions(assetName string) []DailyEmissions {
	byDate := make(map[string]*DailyEmissions)
	for _, r := range a.readings {
		if r.AssetType != generator.AssetThermal {
			continue
		}
		if assetName != "" && r.AssetName != assetName {
			continue
		}
		date := r.Timestamp.Format(dateLayout)
		row, ok := byDate[date]
		if !ok {
			row = &DailyEmissions{Date: date}
			byDate[date] = row
		}
		row.GenerationMWh += r.GenerationMW
		row.FuelConsumedTonnes += r.FuelConsumedTonnes
		row.EmissionsCO2Tonnes += r.EmissionsCO2Tonnes
	}

	rows := make([]DailyEmissions, 0, len(byDate))
	for _, row := range byDate {
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Date < rows[j].Date })
	return rows
}

// WaterIntensity rolls all readings up by (date, asset) and computes water
// withdrawn per MWh generated in each bucket. Rows are ordered by date,
// then asset name.
func (a *Aggregator) WaterIntensity() []WaterIntensityRow {
	type bucketKey struct {
		date  string
		asset string
	}
	byBucket := make(map[bucketKey]*WaterIntensityRow)
	for _, r := range a.readings {
		key := bucketKey{date: r.Timestamp.Format(dateLayout), asset: r.AssetName}
		row, ok := byBucket[key]
		if !ok {
			row = &WaterIntensityRow{Date: key.date, AssetName: r.AssetName, AssetType: r.AssetType}
			byBucket[key] = row
		}
		row.GenerationMWh += r.GenerationMW
		row.WaterWithdrawalCuM += r.WaterWithdrawalCuM
	}

	rows := make([]WaterIntensityRow, 0, len(byBucket))
	for _, row := range byBucket {
		if row.GenerationMWh > 0 {
			row.Intensity = row.WaterWithdrawalCuM / row.GenerationMWh
			row.Defined = true
		}
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Date != rows[j].Date {
			return rows[i].Date < rows[j].Date
		}
		return rows[i].AssetName < rows[j].AssetName
	})
	return rows
}

// DisclosureReport combines the two rollups into one summary record for the
// given reporting-period label. The label is echoed back verbatim.
func (a *Aggregator) DisclosureReport(period string) DisclosureReport {
	scope1 := a.Scope1Emissions("")
	water := a.WaterIntensity()

	rep := DisclosureReport{
		Period:           period,
		DataQualityScore: a.qualityScore,
	}

	for _, row := range scope1 {
		rep.Scope1TotalTonnes += row.EmissionsCO2Tonnes
		rep.GenerationTotalMWh += row.GenerationMWh
	}
	if rep.GenerationTotalMWh > 0 {
		rep.EmissionIntensityKgPerMWh = rep.Scope1TotalTonnes * 1000 / rep.GenerationTotalMWh
		rep.IntensityDefined = true
	}

	var intensitySum float64
	var definedBuckets, renewableBuckets int
	for _, row := range water {
		rep.WaterWithdrawalTotalCuM += row.WaterWithdrawalCuM
		if row.Defined {
			intensitySum += row.Intensity
			definedBuckets++
		}
		// Renewable share is decided by the asset-type field, not by
		// matching substrings of asset names.
		if row.AssetType != generator.AssetThermal {
			renewableBuckets++
		}
	}
	if definedBuckets > 0 {
		rep.MeanWaterIntensity = intensitySum / float64(definedBuckets)
	}
	if len(water) > 0 {
		rep.RenewablePct = float64(renewableBuckets) / float64(len(water)) * 100
	}

	return rep
}

// AssetPerformance summarises capacity utilization, efficiency and (for
// thermal assets) the realised heat rate of one asset.
func (a *Aggregator) AssetPerformance(assetName string) (AssetPerformance, error) {
	var (
		perf          AssetPerformance
		rowCount      int
		genSum        float64
		fuelSum       float64
		efficiencySum float64
	)
	for _, r := range a.readings {
		if r.AssetName != assetName {
			continue
		}
		if rowCount == 0 {
			perf.AssetName = r.AssetName
			perf.AssetType = r.AssetType
			perf.CapacityMW = r.CapacityMW
		}
		rowCount++
		genSum += r.GenerationMW
		fuelSum += r.FuelConsumedTonnes
		efficiencySum += r.OperatingEfficiencyPct
	}
	if rowCount == 0 {
		return AssetPerformance{}, ErrUnknownAsset
	}

	perf.CapacityUtilizationPct = genSum / float64(rowCount) / perf.CapacityMW * 100
	perf.MeanOperatingEfficiencyPct = efficiencySum / float64(rowCount)
	if perf.AssetType == generator.AssetThermal && genSum > 0 {
		perf.AvgHeatRateKcalPerKWh = fuelSum * 1000 / genSum
		perf.HeatRateDefined = true
	}
	return perf, nil
}
