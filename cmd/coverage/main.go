// cmd/coverage/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/tolimahealth/vaccination-ingress/pkg/audit"
	"github.com/tolimahealth/vaccination-ingress/pkg/config"
	"github.com/tolimahealth/vaccination-ingress/pkg/pipeline"
)

func main() {
	// Optional .env for local runs; environment wins in deployment
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "configuration error:", err)
		os.Exit(1)
	}

	logger, err := buildLogger(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger error:", err)
		os.Exit(1)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	recorder, err := audit.NewRecorder(cfg.AuditDSN, logger.Named("audit"))
	if err != nil {
		logger.Fatal("Failed to initialize audit recorder", zap.Error(err))
	}
	defer recorder.Close()

	p, err := pipeline.New(cfg, recorder, pipeline.NewCache(), logger.Named("pipeline"))
	if err != nil {
		logger.Fatal("Failed to initialize pipeline", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := p.Run(ctx)
	if err != nil {
		logger.Fatal("Pipeline run failed", zap.Error(err))
	}

	if err := writeReport(cfg.ReportPath, result); err != nil {
		logger.Fatal("Failed to write report", zap.Error(err))
	}

	logger.Info("Run finished",
		zap.Int("combinedRows", result.Report.CombinedRows),
		zap.Int("coverageMetrics", len(result.Coverage)),
		zap.Int("individualDiscarded", result.Report.IndividualDiscarded))
}

func buildLogger(cfg *config.Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}

	zapCfg := zap.NewProductionConfig()
	if cfg.LogFormat == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	return zapCfg.Build()
}

func writeReport(path string, result *pipeline.Result) error {
	out := os.Stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
