package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/fatih/color"

	"github.com/ccp-p/session-transcriber/internal/controller"
	"github.com/ccp-p/session-transcriber/pkg/models"
)

var (
	inputDir        = flag.String("input", "", "folder containing the session recordings (required)")
	outputDir       = flag.String("output", "", "output folder (default: sibling \"transcriptions\" folder next to input)")
	configFile      = flag.String("config", "", "optional JSON config file")
	force           = flag.Bool("force", false, "reprocess files already recorded as successful")
	postProcessOnly = flag.Bool("post-process-only", false, "skip the engine and re-run post-processing on existing raw outputs")
	cleanupTemp     = flag.Bool("cleanup-temp", false, "remove transient raw engine outputs after the run")
	watchMode       = flag.Bool("watch", false, "keep running and pick up new recordings")
	logLevel        = flag.String("log-level", "INFO", "log level (DEBUG, INFO, WARN, ERROR)")
	logFile         = flag.String("log-file", "", "log file path (default: <output>/transcriber.log)")
)

func main() {
	flag.Parse()

	printWelcome()

	config := loadConfig()

	ctrl, err := controller.NewController(config)
	if err != nil {
		color.Red("startup failed: %v", err)
		os.Exit(1)
	}
	defer ctrl.Cleanup()

	fmt.Print("checking dependencies... ")
	if err := ctrl.CheckDependencies(); err != nil {
		color.Red("failed")
		color.Red("missing dependency: %v", err)
		os.Exit(1)
	}
	color.Green("ok")

	if err := ctrl.Run(); err != nil {
		color.Red("run failed: %v", err)
		os.Exit(1)
	}

	if config.WatchMode {
		if err := ctrl.StartWatchMode(); err != nil {
			color.Red("watch mode failed: %v", err)
			os.Exit(1)
		}
	}
}

func printWelcome() {
	fmt.Println()
	color.Cyan("==================================")
	color.Cyan("   session transcriber")
	color.Cyan("==================================")
	fmt.Println()
}

func loadConfig() *models.Config {
	config := models.NewDefaultConfig()

	if *configFile != "" {
		if err := config.LoadFromFile(*configFile); err != nil {
			color.Yellow("warning: failed to load config file, using defaults: %v", err)
		}
	}

	// Flags take precedence over the config file.
	if *inputDir != "" {
		config.InputFolder = *inputDir
	}
	if *outputDir != "" {
		config.OutputFolder = *outputDir
	}
	if *force {
		config.Force = true
	}
	if *postProcessOnly {
		config.PostProcessOnly = true
	}
	if *cleanupTemp {
		config.CleanupTemp = true
	}
	if *watchMode {
		config.WatchMode = true
	}
	if *logLevel != "INFO" {
		config.LogLevel = *logLevel
	}
	if *logFile != "" {
		config.LogFile = *logFile
	}

	return config
}
