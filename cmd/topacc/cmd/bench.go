package cmd

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/MeKo-Tech/topacc/internal/benchmark"
	"github.com/MeKo-Tech/topacc/internal/evaluator"
	"github.com/MeKo-Tech/topacc/internal/utils"
	"github.com/spf13/cobra"
)

// benchCmd represents the bench command.
var benchCmd = &cobra.Command{
	Use:   "bench <image>",
	Short: "Measure preprocessing and inference latency on one image",
	Long: `Repeatedly preprocess and classify one image and print latency percentiles
for each stage.

Examples:
  topacc bench cat.jpeg
  topacc bench cat.jpeg --iterations 50 --warmup 5 --threads 4`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		iterations, _ := cmd.Flags().GetInt("iterations")
		warmup, _ := cmd.Flags().GetInt("warmup")
		threads, _ := cmd.Flags().GetInt("threads")
		if iterations <= 0 {
			return fmt.Errorf("--iterations must be positive, got %d", iterations)
		}
		logger := slog.Default()

		ev, err := evaluator.New(newRuntime(), flagOr(cmd, "model", cfg.ModelPath()), threads,
			evaluator.WithLogger(logger))
		if err != nil {
			return err
		}
		defer func() {
			if err := ev.Close(); err != nil {
				logger.Warn("failed to close model", "error", err)
			}
		}()

		size := cfg.Eval.ImageSize
		if s := ev.InputSize(); s > 0 {
			size = s
		}
		image, meanCenter := args[0], cfg.Eval.MeanCenter
		tensor, err := utils.BuildPixelTensorSize(image, size, meanCenter)
		if err != nil {
			return err
		}

		suite := benchmark.NewSuite(warmup)
		suite.Add("preprocess", func() error {
			_, err := utils.BuildPixelTensorSize(image, size, meanCenter)
			return err
		})
		suite.Add("inference", func() error {
			_, err := ev.Evaluate(tensor)
			return err
		})
		suite.Add("end_to_end", func() error {
			t, err := utils.BuildPixelTensorSize(image, size, meanCenter)
			if err != nil {
				return err
			}
			_, err = ev.Evaluate(t)
			return err
		})

		results := suite.RunAll(iterations)
		suite.PrintResults(cmd.OutOrStdout())

		var errs []error
		for _, r := range results {
			if r.Error != nil {
				errs = append(errs, fmt.Errorf("%s: %w", r.Name, r.Error))
			}
		}
		return errors.Join(errs...)
	},
}

func init() {
	rootCmd.AddCommand(benchCmd)

	benchCmd.Flags().Int("iterations", 20, "measured calls per stage")
	benchCmd.Flags().Int("warmup", 2, "untimed calls per stage before measuring")
	benchCmd.Flags().Int("threads", 0, "intra-op threads for the model runtime (0 = runtime default)")
	benchCmd.Flags().String("model", "", "path to the ONNX classification model")
}
