package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"vram_backend/core"
	"vram_backend/estimator"
	"vram_backend/logging"
	"vram_backend/webui"
	"vram_backend/webui/static"
)

func main() {
	// Service management commands (install/uninstall/start/stop) on Windows
	if HandleServiceCommand(os.Args) {
		return
	}

	// When launched by the Windows service manager, hand control to the
	// service lifecycle instead of running in the foreground.
	ranAsService, err := RunAsService()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Service error: %v\n", err)
		os.Exit(core.ExitCodeError)
	}
	if ranAsService {
		return
	}

	os.Exit(run(context.Background()))
}

// run starts the estimator service and blocks until ctx is cancelled or a
// shutdown signal arrives. It returns the process exit code.
func run(ctx context.Context) int {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		// Use fmt here since the logger isn't initialized yet
		fmt.Printf("Warning: .env file not found: %v\n", err)
	}

	isDevelopment := os.Getenv("DEV_MODE") == "true"
	logFile := os.Getenv("LOG_FILE")
	if logFile == "" {
		logFile = core.DefaultLogFile
	}

	logger := logging.NewLogger(isDevelopment, logFile)
	defer logger.Sync()

	logger.Info("VRAM estimator starting",
		zap.String("version", core.GetVersionInfo()),
		zap.Bool("dev_mode", isDevelopment),
	)

	if exitCode := runStartupValidation(logger); exitCode != core.ExitCodeSuccess {
		return exitCode
	}

	config, err := core.LoadConfig()
	if err != nil {
		logger.Error("Failed to load configuration", zap.Error(err))
		return core.ExitCodeError
	}

	logger.Info("Configuration loaded",
		zap.String("addr", config.Addr()),
		zap.String("log_file", config.LogFile),
		zap.Strings("allowed_origins", config.AllowedOrigins),
		zap.Bool("rate_limit_enabled", config.RateLimitEnabled),
		zap.Int("rate_limit_per_minute", config.RateLimitPerMinute),
	)

	server := webui.NewServer(*config, logger)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	exitCode := core.ExitCodeSuccess
	select {
	case sig := <-sigChan:
		logger.Info("Received shutdown signal", zap.String("signal", sig.String()))
		switch sig {
		case syscall.SIGTERM:
			exitCode = core.ExitCodeSIGTERM
		default:
			exitCode = core.ExitCodeSIGINT
		}
	case <-ctx.Done():
		logger.Info("Shutdown requested")
	case err := <-serverErr:
		if err != nil {
			logger.Error("Server failed", zap.Error(err))
			return core.ExitCodeError
		}
		return core.ExitCodeSuccess
	}

	if err := server.Shutdown(context.Background()); err != nil {
		logger.Error("Graceful shutdown failed", zap.Error(err))
		return core.ExitCodeError
	}

	logger.Info("Goodbye", zap.String("exit", core.ExitCodeName(exitCode)))
	return exitCode
}

// runStartupValidation runs the startup checks before the server begins
// listening. Beyond the built-in environment and configuration checks it
// verifies the embedded frontend and the estimator itself.
func runStartupValidation(logger *zap.Logger) int {
	suite := core.NewValidationSuite().
		AddCheck("Frontend Assets", checkFrontendAssets).
		AddCheck("Estimator", checkEstimator)

	result := suite.Validate()
	if !result.Success {
		for _, step := range result.Steps {
			if step.Status == core.StepFailed {
				logger.Error("Validation step failed",
					zap.String("step", step.Name),
					zap.String("message", step.Message),
					zap.Error(step.Error),
				)
			}
		}
		return core.ExitCodeError
	}

	logger.Info("Startup validation passed",
		zap.Int("checks_passed", result.PassedSteps),
		zap.Int("warnings", result.Warnings),
		zap.Duration("duration", result.Duration),
	)
	return core.ExitCodeSuccess
}

// checkFrontendAssets verifies the embedded frontend files are present.
func checkFrontendAssets() (bool, string, error) {
	required := []string{"index.html", "css/style.css", "js/app.js"}
	var totalBytes int64
	for _, name := range required {
		data, err := static.ReadFile(name)
		if err != nil {
			return false, "embedded frontend incomplete", fmt.Errorf("missing %s: %w", name, err)
		}
		totalBytes += int64(len(data))
	}
	return true, fmt.Sprintf("%d embedded files (%s)", len(required), core.FormatBytes(totalBytes)), nil
}

// checkEstimator runs a reference estimate and verifies the result.
func checkEstimator() (bool, string, error) {
	result, err := estimator.Estimate(estimator.EstimateRequest{
		Height:       512,
		Width:        512,
		PromptLength: 77,
		Optimization: true,
	})
	if err != nil {
		return false, "reference estimate failed", err
	}
	if result.PredictedVRAMGB != 2.71 {
		return false, "reference estimate mismatch",
			fmt.Errorf("512x512/77/optimized gave %s, expected 2.71 GB", core.FormatGB(result.PredictedVRAMGB))
	}
	return true, "512x512 reference: " + core.FormatGB(result.PredictedVRAMGB), nil
}
