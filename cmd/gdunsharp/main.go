package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/tehKaiN/gdunsharp/internal/config"
	"github.com/tehKaiN/gdunsharp/internal/pipeline"
	"github.com/tehKaiN/gdunsharp/internal/watcher"
)

var (
	rootCmd = &cobra.Command{
		Use:   "gdunsharp",
		Short: "Transpile Godot C# scripts into godot-cpp compatible C++ headers",
	}
	cfgFile string
	outDir  string
	verbose bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "gdunsharp.yaml", "Path to the configuration file")
	rootCmd.PersistentFlags().StringVarP(&outDir, "out", "o", "", "Output root for generated headers (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(genCmd)
	rootCmd.AddCommand(watchCmd)
}

// loadConfig layers the file, the environment and the CLI on top of the
// defaults. Flags win over everything.
func loadConfig(args []string) (*config.Config, error) {
	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		return nil, err
	}
	if len(args) > 0 {
		cfg.Project.Root = args[0]
	}
	if outDir != "" {
		cfg.Output.Dir = outDir
	}
	return cfg, nil
}

// setupLogger keeps stdout for progress lines; the structured log carries
// diagnostics and, with --verbose, per-stage detail.
func setupLogger() *zap.SugaredLogger {
	level := zapcore.WarnLevel
	if verbose {
		level = zapcore.DebugLevel
	}

	zapCfg := zap.NewDevelopmentConfig()
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	logger, err := zapCfg.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	return logger.Sugar()
}

func printSummary(cfg *config.Config, stats *pipeline.Stats) {
	fmt.Printf("✅ Wrote %d headers from %d files (%d types in %d namespaces) in %v.\n",
		stats.Headers, stats.Files, stats.Types, stats.Namespaces, stats.Duration)
	if stats.Diagnostics > 0 {
		fmt.Printf("⚠️  %d diagnostics recorded; see the log for details.\n", stats.Diagnostics)
	}
}

var genCmd = &cobra.Command{
	Use:   "gen [path]",
	Short: "Transpile the C# project once",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		// 1. Configuration
		cfg, err := loadConfig(args)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		logger := setupLogger()
		defer logger.Sync()

		// 2. Run the pipeline
		fmt.Printf("📂 Transpiling C# sources under %s\n", cfg.Project.Root)
		stats, err := pipeline.New(cfg, logger).Run(context.Background())
		if err != nil {
			log.Fatalf("Transpilation failed: %v", err)
		}

		printSummary(cfg, stats)
		fmt.Printf("🎉 Done! Headers are in %s\n", cfg.Output.Dir)
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch [path]",
	Short: "Transpile once, then rerun whenever a C# source changes",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		// 1. Configuration
		cfg, err := loadConfig(args)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		logger := setupLogger()
		defer logger.Sync()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		go func() {
			<-sigChan
			fmt.Println("\n👋 Stopping watch.")
			cancel()
		}()

		run := func() {
			stats, err := pipeline.New(cfg, logger).Run(ctx)
			if err != nil {
				// Watch mode survives broken sources; the next save
				// gets a fresh run.
				fmt.Printf("⚠️  Transpilation failed: %v\n", err)
				return
			}
			printSummary(cfg, stats)
		}

		// 2. Initial run
		fmt.Printf("📂 Transpiling C# sources under %s\n", cfg.Project.Root)
		run()

		// 3. Watch loop
		w, err := watcher.New(cfg.Project.Root, cfg.Output.Dir, cfg.Debounce(), logger, run)
		if err != nil {
			log.Fatalf("Failed to start watcher: %v", err)
		}
		fmt.Printf("👀 Watching %s for changes (debounce %v)...\n", cfg.Project.Root, cfg.Debounce())
		if err := w.Run(ctx); err != nil {
			log.Fatalf("Watcher failed: %v", err)
		}
	},
}
