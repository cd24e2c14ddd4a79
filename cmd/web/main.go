package main

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/de-tools/data-lens/pkg/handlers/dashboard"
	"github.com/de-tools/data-lens/pkg/server"
	"github.com/de-tools/data-lens/pkg/services/charts"
	"github.com/de-tools/data-lens/pkg/services/config"
	"github.com/de-tools/data-lens/pkg/services/dataset"
	"github.com/de-tools/data-lens/pkg/services/export"
	"github.com/de-tools/data-lens/pkg/services/insight"
	"github.com/de-tools/data-lens/pkg/services/locale"
	"github.com/de-tools/data-lens/pkg/services/report"
	"github.com/de-tools/data-lens/pkg/services/session"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var cfgPath string

func main() {
	var rootCmd = &cobra.Command{
		Use:   "web",
		Short: "Start the web server for Data Lens",
		RunE:  runServer,
	}

	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", "",
		"Path to the configuration file (defaults and DATALENS_* env vars apply without one)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Error loading .env file: %v\n", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	translator := locale.NewLoader(cfg.LocaleDir, cfg.DefaultLocale).Language(cfg.DefaultLocale)

	deps := dashboard.Dependencies{
		Session:        session.New(report.NewStore(logger)),
		Parsers:        dataset.NewRegistry(),
		Renderer:       charts.NewRenderer(cfg.ChartDir),
		Producer:       insight.NewStaticProducer(),
		Assembler:      export.NewAssembler(cfg.ExportDir, translator),
		InsightTimeout: cfg.InsightTimeout,
	}

	addr := net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)
	logger.Info().Str("addr", addr).Str("export_dir", cfg.ExportDir).Msg("configuration loaded")

	api := server.NewWebAPI(logger, server.Config{
		Addr:            addr,
		ShutdownTimeout: 10 * time.Second,
		Dependencies:    deps,
	})

	return api.Start()
}
