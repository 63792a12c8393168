package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/MeKo-Tech/topacc/internal/config"
	"github.com/MeKo-Tech/topacc/internal/evaluator"
	"github.com/MeKo-Tech/topacc/internal/models"
	"github.com/MeKo-Tech/topacc/internal/onnx"
	"github.com/MeKo-Tech/topacc/internal/version"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// Global configuration loader.
	configLoader *config.Loader
	// Global configuration, loaded before every command runs.
	globalConfig *config.Config
	// Configuration file path.
	cfgFile string

	// newRuntime builds the model runtime used by run and classify.
	newRuntime = func() evaluator.Runtime { return onnx.NewRuntime() }
	// logOutput receives structured logs; stdout is reserved for results.
	logOutput io.Writer = os.Stderr
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "topacc",
	Short: "Measure image classifier accuracy against WordNet-labelled images",
	Long: `topacc runs an ONNX image classification model over a directory of images
of one known class and reports how often the model got it right.

Class predictions are mapped to WordNet ids through a training map file and
to readable labels through a WordNet lexical database.

Examples:
  topacc run --model resnet50.onnx --images ./val --id 01440764 --map train_map.txt
  topacc run --images ./val --id n01440764 --strict --format json
  topacc classify cat.jpeg --top 3
  topacc check`,
	Version:       version.String(),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := initConfig(cmd); err != nil {
			return err
		}
		setupLogging(globalConfig)
		return nil
	},
}

// Execute runs the root command. An interrupt cancels a run between images.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	defer func() {
		if err := onnx.DestroyEnvironment(); err != nil {
			slog.Warn("failed to destroy ONNX Runtime environment", "error", err)
		}
	}()
	return rootCmd.ExecuteContext(ctx)
}

// GetRootCommand returns the root command for testing purposes.
func GetRootCommand() *cobra.Command {
	return rootCmd
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default is search in ., $HOME, $HOME/.config/topacc, /etc/topacc)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output (equivalent to --log-level=debug)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("models-dir", models.DefaultModelsDir,
		"directory holding model.onnx, train_map.txt and wordnet.txt (also "+models.EnvModelsDir+")")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("models_dir", rootCmd.PersistentFlags().Lookup("models-dir"))
}

// initConfig reads the config file, environment and bound flags. cmd is the
// command being executed; inherited persistent flags are merged into its flag set.
func initConfig(cmd *cobra.Command) error {
	configLoader = config.NewLoader()

	var err error
	globalConfig, err = configLoader.LoadWithFile(cfgFile)
	if err != nil {
		return fmt.Errorf("error loading configuration: %w", err)
	}
	if !cmd.Flags().Changed("models-dir") && globalConfig.ModelsDir == models.DefaultModelsDir {
		globalConfig.ModelsDir = models.GetModelsDir("")
	}
	return nil
}

func setupLogging(cfg *config.Config) {
	var logLevel slog.Level
	if cfg.Verbose {
		logLevel = slog.LevelDebug
	} else {
		switch cfg.LogLevel {
		case "debug":
			logLevel = slog.LevelDebug
		case "warn":
			logLevel = slog.LevelWarn
		case "error":
			logLevel = slog.LevelError
		default:
			logLevel = slog.LevelInfo
		}
	}

	logger := slog.New(slog.NewJSONHandler(logOutput, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)
}

// GetConfig returns the configuration loaded for the current command.
func GetConfig() *config.Config {
	return globalConfig
}
