package main

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"carbonsense.dev/carbonsense/internal/dashboard"
	"carbonsense.dev/carbonsense/pkg/metrics"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Run the dashboard API server",
	Long: `Run the dashboard API server that:
- Generates one synthetic telemetry session (readings + audit metadata)
- Serves ESG rollups, disclosure reports and the audit trail as JSON
- Exports disclosure reports as XLSX or PDF downloads
- Exposes Prometheus metrics`,
	RunE: runDashboard,
}

func init() {
	rootCmd.AddCommand(dashboardCmd)

	// Dashboard-specific flags
	dashboardCmd.Flags().Int("http-port", 8080, "HTTP server port")
	dashboardCmd.Flags().Int64("seed", 0, "Random seed for the generated session (0 = random)")
	dashboardCmd.Flags().Int("audit-records", 100, "Number of audit metadata rows to generate")

	// Bind flags to viper
	_ = viper.BindPFlag("dashboard.http.port", dashboardCmd.Flags().Lookup("http-port"))
	_ = viper.BindPFlag("dashboard.seed", dashboardCmd.Flags().Lookup("seed"))
	_ = viper.BindPFlag("dashboard.audit_records", dashboardCmd.Flags().Lookup("audit-records"))
}

func runDashboard(_ *cobra.Command, _ []string) error {
	logger := GetLogger()
	logger.Info("starting dashboard service")

	// Create dashboard configuration from viper
	config := &dashboard.ServerConfig{
		Logger:       logger,
		HTTPPort:     viper.GetInt("dashboard.http.port"),
		Seed:         viper.GetInt64("dashboard.seed"),
		AuditRecords: viper.GetInt("dashboard.audit_records"),
		Pipeline:     metrics.NewPipelineMetrics("carbonsense"),
		HTTP:         metrics.NewDashboardMetrics("carbonsense"),
	}

	// Create and run server
	server, err := dashboard.NewServer(config)
	if err != nil {
		logger.Error("failed to create dashboard server", "error", err)
		return err
	}

	logger.Info("dashboard server configuration",
		"http_port", config.HTTPPort,
		"seed", config.Seed,
		"audit_records", config.AuditRecords,
	)

	if err := server.Run(context.Background()); err != nil {
		logger.Error("dashboard server error", "error", err)
		return err
	}

	logger.Info("dashboard server stopped")
	return nil
}
