package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"carbonsense.dev/carbonsense/internal/esg"
	"carbonsense.dev/carbonsense/internal/report"
	"carbonsense.dev/carbonsense/pkg/generator"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate a one-shot disclosure export",
	Long: `Generate a one-shot BRSR disclosure export that:
- Generates one synthetic telemetry session
- Computes the disclosure summary for the given reporting period
- Writes the export (XLSX or PDF) named after the period`,
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)

	// Report-specific flags
	reportCmd.Flags().String("period", "Q1-2024", "Reporting period label")
	reportCmd.Flags().String("format", "xlsx", "Export format (xlsx or pdf)")
	reportCmd.Flags().String("output-dir", ".", "Directory to write the export to")
	reportCmd.Flags().Int64("seed", 0, "Random seed for the generated session (0 = random)")

	// Bind flags to viper
	_ = viper.BindPFlag("report.period", reportCmd.Flags().Lookup("period"))
	_ = viper.BindPFlag("report.format", reportCmd.Flags().Lookup("format"))
	_ = viper.BindPFlag("report.output_dir", reportCmd.Flags().Lookup("output-dir"))
	_ = viper.BindPFlag("report.seed", reportCmd.Flags().Lookup("seed"))
}

func runReport(_ *cobra.Command, _ []string) error {
	logger := GetLogger()

	period := viper.GetString("report.period")
	format := viper.GetString("report.format")
	outputDir := viper.GetString("report.output_dir")
	seed := viper.GetInt64("report.seed")

	gen, err := generator.New(generator.Config{
		Assets: generator.DefaultFleet(),
		Seed:   seed,
	})
	if err != nil {
		logger.Error("failed to create generator", "error", err)
		return err
	}
	readings, _ := gen.Generate()

	rep := esg.NewAggregator(readings, seed).DisclosureReport(period)

	var body []byte
	switch format {
	case "xlsx":
		body, err = report.BuildDisclosureXLSX(rep)
	case "pdf":
		body, err = report.BuildDisclosurePDF(rep)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
	if err != nil {
		logger.Error("failed to build disclosure export", "format", format, "error", err)
		return err
	}

	path := filepath.Join(outputDir, report.Filename(period, format))
	if err := os.WriteFile(path, body, 0o644); err != nil {
		logger.Error("failed to write export", "path", path, "error", err)
		return err
	}

	logger.Info("disclosure export written",
		"path", path,
		"period", period,
		"format", format,
		"scope1_total_tco2e", rep.Scope1TotalTonnes,
	)
	return nil
}
