package esg_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"carbonsense.dev/carbonsense/internal/esg"
	"carbonsense.dev/carbonsense/pkg/generator"
)

var fixedNow = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

// row builds a handcrafted reading for aggregation tests.
func row(ts time.Time, name string, typ generator.AssetType, gen, fuel, co2, water float64) generator.Reading {
	return generator.Reading{
		Timestamp:          ts,
		AssetName:          name,
		AssetType:          typ,
		CapacityMW:         1000,
		GenerationMW:       gen,
		FuelConsumedTonnes: fuel,
		EmissionsCO2Tonnes: co2,
		WaterWithdrawalCuM: water,
	}
}

// generatedTable produces a full synthetic session for property checks.
func generatedTable() generator.ReadingTable {
	gen, err := generator.New(generator.Config{
		Assets: generator.DefaultFleet(),
		Now:    fixedNow,
		Seed:   42,
	})
	Expect(err).NotTo(HaveOccurred())
	readings, _ := gen.Generate()
	return readings
}

var _ = Describe("Scope1Emissions", func() {
	day1 := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	day2 := time.Date(2024, 3, 2, 8, 0, 0, 0, time.UTC)

	table := generator.ReadingTable{
		row(day1, "Barmer Thermal", generator.AssetThermal, 100, 250, 625, 10),
		row(day1.Add(15*time.Minute), "Barmer Thermal", generator.AssetThermal, 110, 260, 650, 11),
		row(day2, "Barmer Thermal", generator.AssetThermal, 120, 270, 675, 12),
		row(day1, "Karnataka Solar", generator.AssetSolar, 300, 0, 0, 30),
	}

	It("should group thermal rows by calendar date, ascending", func() {
		rows := esg.NewAggregator(table, 42).Scope1Emissions("")
		Expect(rows).To(HaveLen(2))

		Expect(rows[0].Date).To(Equal("2024-03-01"))
		Expect(rows[0].GenerationMWh).To(BeNumerically("~", 210, 1e-9))
		Expect(rows[0].FuelConsumedTonnes).To(BeNumerically("~", 510, 1e-9))
		Expect(rows[0].EmissionsCO2Tonnes).To(BeNumerically("~", 1275, 1e-9))

		Expect(rows[1].Date).To(Equal("2024-03-02"))
		Expect(rows[1].EmissionsCO2Tonnes).To(BeNumerically("~", 675, 1e-9))
	})

	It("should exclude non-thermal rows", func() {
		rows := esg.NewAggregator(table, 42).Scope1Emissions("")
		var total float64
		for _, r := range rows {
			total += r.GenerationMWh
		}
		Expect(total).To(BeNumerically("~", 330, 1e-9))
	})

	It("should honor the asset name filter", func() {
		rows := esg.NewAggregator(table, 42).Scope1Emissions("Barmer Thermal")
		Expect(rows).To(HaveLen(2))
	})

	It("should return an empty slice for filters matching nothing", func() {
		rows := esg.NewAggregator(table, 42).Scope1Emissions("No Such Plant")
		Expect(rows).To(BeEmpty())
	})

	It("should reduce a single thermal reading to its own values", func() {
		single := generator.ReadingTable{
			row(day1, "Barmer Thermal", generator.AssetThermal, 100, 250, 625, 10),
		}
		rows := esg.NewAggregator(single, 42).Scope1Emissions("")
		Expect(rows).To(HaveLen(1))
		Expect(rows[0].Date).To(Equal("2024-03-01"))
		Expect(rows[0].GenerationMWh).To(Equal(100.0))
		Expect(rows[0].FuelConsumedTonnes).To(Equal(250.0))
		Expect(rows[0].EmissionsCO2Tonnes).To(Equal(625.0))
	})

	It("should account for every thermal emission in the source table", func() {
		readings := generatedTable()
		agg := esg.NewAggregator(readings, 42)

		var want float64
		for _, r := range readings {
			if r.AssetType == generator.AssetThermal {
				want += r.EmissionsCO2Tonnes
			}
		}

		var got float64
		for _, r := range agg.Scope1Emissions("") {
			got += r.EmissionsCO2Tonnes
		}
		Expect(got).To(BeNumerically("~", want, 1e-6))
	})
})

var _ = Describe("WaterIntensity", func() {
	day1 := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

	It("should compute withdrawal per MWh for each (date, asset) bucket", func() {
		table := generator.ReadingTable{
			row(day1, "Himachal Hydro", generator.AssetHydro, 100, 0, 0, 8),
			row(day1.Add(15*time.Minute), "Himachal Hydro", generator.AssetHydro, 100, 0, 0, 12),
		}
		rows := esg.NewAggregator(table, 42).WaterIntensity()
		Expect(rows).To(HaveLen(1))
		Expect(rows[0].GenerationMWh).To(BeNumerically("~", 200, 1e-9))
		Expect(rows[0].WaterWithdrawalCuM).To(BeNumerically("~", 20, 1e-9))
		Expect(rows[0].Intensity).To(BeNumerically("~", 0.1, 1e-9))
		Expect(rows[0].Defined).To(BeTrue())
	})

	It("should mark zero-generation buckets as undefined instead of failing", func() {
		table := generator.ReadingTable{
			row(day1, "Karnataka Solar", generator.AssetSolar, 0, 0, 0, 5),
		}
		rows := esg.NewAggregator(table, 42).WaterIntensity()
		Expect(rows).To(HaveLen(1))
		Expect(rows[0].Defined).To(BeFalse())
		Expect(rows[0].Intensity).To(BeZero())
	})

	It("should produce one row per distinct (date, asset) pair", func() {
		readings := generatedTable()
		rows := esg.NewAggregator(readings, 42).WaterIntensity()

		type key struct{ date, asset string }
		distinct := make(map[key]struct{})
		for _, r := range readings {
			distinct[key{r.Timestamp.Format("2006-01-02"), r.AssetName}] = struct{}{}
		}
		Expect(rows).To(HaveLen(len(distinct)))
	})

	It("should order rows by date then asset name", func() {
		rows := esg.NewAggregator(generatedTable(), 42).WaterIntensity()
		for i := 1; i < len(rows); i++ {
			if rows[i-1].Date == rows[i].Date {
				Expect(rows[i-1].AssetName <= rows[i].AssetName).To(BeTrue())
			} else {
				Expect(rows[i-1].Date < rows[i].Date).To(BeTrue())
			}
		}
	})
})

var _ = Describe("DisclosureReport", func() {
	day1 := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

	table := generator.ReadingTable{
		row(day1, "Barmer Thermal", generator.AssetThermal, 100, 250, 625, 10),
		row(day1, "Karnataka Solar", generator.AssetSolar, 300, 0, 0, 30),
	}

	It("should echo the reporting period verbatim", func() {
		rep := esg.NewAggregator(table, 42).DisclosureReport("Q1-2024")
		Expect(rep.Period).To(Equal("Q1-2024"))

		rep = esg.NewAggregator(table, 42).DisclosureReport("FY2024-25")
		Expect(rep.Period).To(Equal("FY2024-25"))
	})

	It("should combine the Scope-1 and water rollups", func() {
		rep := esg.NewAggregator(table, 42).DisclosureReport("Q1-2024")

		Expect(rep.Scope1TotalTonnes).To(BeNumerically("~", 625, 1e-9))
		Expect(rep.GenerationTotalMWh).To(BeNumerically("~", 100, 1e-9))
		Expect(rep.IntensityDefined).To(BeTrue())
		Expect(rep.EmissionIntensityKgPerMWh).To(BeNumerically("~", 6250, 1e-9))
		Expect(rep.WaterWithdrawalTotalCuM).To(BeNumerically("~", 40, 1e-9))
	})

	It("should derive the renewable share from the asset type field", func() {
		// One thermal bucket and one solar bucket: a name-substring match
		// would miss a renewable plant not named after its type.
		oddlyNamed := generator.ReadingTable{
			row(day1, "Barmer Thermal", generator.AssetThermal, 100, 250, 625, 10),
			row(day1, "Pavagada Park", generator.AssetSolar, 300, 0, 0, 30),
		}
		rep := esg.NewAggregator(oddlyNamed, 42).DisclosureReport("Q1-2024")
		Expect(rep.RenewablePct).To(BeNumerically("~", 50, 1e-9))
	})

	It("should keep the simulated data quality score within 95-100", func() {
		rep := esg.NewAggregator(table, 42).DisclosureReport("Q1-2024")
		Expect(rep.DataQualityScore).To(BeNumerically(">=", 95))
		Expect(rep.DataQualityScore).To(BeNumerically("<=", 100))
	})

	It("should reproduce the full report, quality score included, for the same seed", func() {
		first := esg.NewAggregator(table, 42).DisclosureReport("Q1-2024")
		second := esg.NewAggregator(table, 42).DisclosureReport("Q1-2024")
		Expect(second).To(Equal(first))
	})

	It("should draw distinct quality scores for distinct seeds", func() {
		first := esg.NewAggregator(table, 42).DisclosureReport("Q1-2024")
		second := esg.NewAggregator(table, 43).DisclosureReport("Q1-2024")
		Expect(second.DataQualityScore).NotTo(Equal(first.DataQualityScore))
	})

	It("should mark the emission intensity undefined for an empty table", func() {
		rep := esg.NewAggregator(nil, 42).DisclosureReport("Q1-2024")
		Expect(rep.IntensityDefined).To(BeFalse())
		Expect(rep.EmissionIntensityKgPerMWh).To(BeZero())
		Expect(rep.RenewablePct).To(BeZero())
	})
})

var _ = Describe("Idempotence", func() {
	It("should return identical results on repeated queries", func() {
		agg := esg.NewAggregator(generatedTable(), 42)

		Expect(agg.Scope1Emissions("")).To(Equal(agg.Scope1Emissions("")))
		Expect(agg.WaterIntensity()).To(Equal(agg.WaterIntensity()))
		Expect(agg.DisclosureReport("Q1-2024")).To(Equal(agg.DisclosureReport("Q1-2024")))
	})
})

var _ = Describe("AssetPerformance", func() {
	day1 := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

	It("should summarise utilization, efficiency and heat rate", func() {
		table := generator.ReadingTable{
			{
				Timestamp: day1, AssetName: "Barmer Thermal", AssetType: generator.AssetThermal,
				CapacityMW: 1000, GenerationMW: 400, FuelConsumedTonnes: 1000,
				OperatingEfficiencyPct: 90,
			},
			{
				Timestamp: day1.Add(15 * time.Minute), AssetName: "Barmer Thermal", AssetType: generator.AssetThermal,
				CapacityMW: 1000, GenerationMW: 600, FuelConsumedTonnes: 1500,
				OperatingEfficiencyPct: 92,
			},
		}
		perf, err := esg.NewAggregator(table, 42).AssetPerformance("Barmer Thermal")
		Expect(err).NotTo(HaveOccurred())

		Expect(perf.AssetType).To(Equal(generator.AssetThermal))
		Expect(perf.CapacityUtilizationPct).To(BeNumerically("~", 50, 1e-9))
		Expect(perf.MeanOperatingEfficiencyPct).To(BeNumerically("~", 91, 1e-9))
		Expect(perf.HeatRateDefined).To(BeTrue())
		Expect(perf.AvgHeatRateKcalPerKWh).To(BeNumerically("~", 2500, 1e-9))
	})

	It("should leave the heat rate undefined for renewables", func() {
		table := generator.ReadingTable{
			row(day1, "Himachal Hydro", generator.AssetHydro, 120, 0, 0, 8),
		}
		perf, err := esg.NewAggregator(table, 42).AssetPerformance("Himachal Hydro")
		Expect(err).NotTo(HaveOccurred())
		Expect(perf.HeatRateDefined).To(BeFalse())
	})

	It("should fail for unknown assets", func() {
		_, err := esg.NewAggregator(nil, 42).AssetPerformance("No Such Plant")
		Expect(err).To(MatchError(esg.ErrUnknownAsset))
	})
})
