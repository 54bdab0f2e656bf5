package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"ta-enrich/internal/app"
	"ta-enrich/internal/enrich"
	"ta-enrich/internal/provider"
	"ta-enrich/internal/slogx"
)

// App holds application dependencies built by Wire.
type App struct {
	Config *app.Config
	DP     provider.DataProvider
	Driver *enrich.Driver
}

func init() {
	slog.SetDefault(slogx.NewDefault("info"))
}

func main() {
	configPath := flag.String("config", "", "optional YAML config file")
	inputPath := flag.String("input", "", "input CSV with ticker and time columns")
	outputPath := flag.String("output", "", "output CSV destination")
	overwrite := flag.Bool("overwrite", false, "overwrite an existing output")
	resume := flag.Bool("resume", false, "skip requests recorded in the progress file and append to the existing output")
	flag.Parse()

	a, err := InitializeApp(*configPath, app.Overrides{
		Input:     *inputPath,
		Output:    *outputPath,
		Overwrite: *overwrite,
		Resume:    *resume,
	})
	if err != nil {
		slog.Error("failed to initialize app", "error", err)
		os.Exit(1)
	}
	defer a.DP.Close()

	slog.SetDefault(slogx.NewDefault(a.Config.LogLevel))
	slog.Info("using data provider", "provider", a.DP.Name())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.RunFlow(ctx, a.Config, a.Driver); err != nil {
		slog.Error("enrichment failed", "error", err)
		os.Exit(1)
	}
}
