package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"totem-kiosk/internal/config"
	"totem-kiosk/internal/importer"
	"totem-kiosk/internal/observability"
)

// importer validates a menu CSV for the fake gateway and optionally prints the
// parsed menu as JSON.
func main() {
	var (
		filePath  string
		printJSON bool
	)
	flag.StringVar(&filePath, "file", "", "Path to menu CSV (defaults to MENU_CSV)")
	flag.BoolVar(&printJSON, "json", false, "Print the parsed menu as JSON on stdout")
	flag.Parse()

	cfg := config.FromEnv()
	if filePath == "" {
		filePath = cfg.Menu.CSVPath
	}
	if filePath == "" {
		flag.Usage()
		os.Exit(2)
	}

	baseLogger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = baseLogger.Sync()
	}()
	logger := baseLogger.Named("importer")

	f, err := os.Open(filePath)
	if err != nil {
		logger.Fatal("open file", zap.Error(err))
	}
	defer f.Close()

	start := time.Now()
	menu, err := importer.NewCSVImporter(f).Run(context.Background())
	if err != nil {
		logger.Fatal("import failed", zap.String("file", filePath), zap.Error(err))
	}

	if printJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(menu); err != nil {
			logger.Fatal("encode menu", zap.Error(err))
		}
	}
	logger.Info("menu parsed",
		zap.String("file", filePath),
		zap.Int("categories", len(menu.Categories)),
		zap.Int("products", len(menu.Products)),
		zap.Duration("took", time.Since(start).Truncate(time.Millisecond)))
}
