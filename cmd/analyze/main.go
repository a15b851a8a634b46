package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	flag "github.com/spf13/pflag"

	"verdict-lab/internal/app"
	"verdict-lab/internal/config"
	"verdict-lab/internal/domain/models"
	"verdict-lab/pkg/logger"
)

func main() {
	inputType := flag.StringP("type", "t", "", "input type: ip, domain or url")
	input := flag.StringP("input", "i", "", "value to analyze")
	configPath := flag.StringP("config", "c", "", "path to config file")
	timeout := flag.Duration("timeout", 30*time.Second, "overall timeout")
	verbose := flag.BoolP("verbose", "v", false, "debug logging")
	flag.Parse()

	if *input == "" {
		fmt.Fprintln(os.Stderr, "usage: analyze --type ip|domain|url --input VALUE [--config FILE]")
		os.Exit(2)
	}

	t, ok := models.ParseInputType(*inputType)
	if !ok {
		fmt.Fprintf(os.Stderr, "unsupported type %q\n", *inputType)
		os.Exit(2)
	}

	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	level := cfg.Logger.Level
	if *verbose {
		level = "debug"
	}
	log := logger.New(logger.Config{
		Level:  level,
		Format: "console",
		Output: os.Stderr,
	})

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	pipeline := app.NewPipeline(cfg, log)

	report, err := pipeline.Analyzer.Analyze(ctx, models.AnalysisRequest{Type: t, Input: *input})
	if err != nil {
		var invalid *models.InvalidInputError
		if errors.As(err, &invalid) {
			fmt.Fprintln(os.Stderr, invalid.Error())
			os.Exit(2)
		}
		log.Fatal().Err(err).Msg("analysis failed")
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		log.Fatal().Err(err).Msg("failed to write report")
	}

	// Malicious verdicts exit non-zero for use in scripts
	if report.RiskLevel == models.RiskLevelMalicious {
		os.Exit(3)
	}
}
