package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/MeKo-Tech/topacc/internal/evaluator"
	"github.com/MeKo-Tech/topacc/internal/labels"
	"github.com/MeKo-Tech/topacc/internal/metrics"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const strictPrompt = "Run metrics with strict mode (y/N)?"

// runCmd represents the run command.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Measure match percentage over a directory of images",
	Long: `Evaluate every n<id>_*.jpeg image in a directory and report the percentage
whose expected WordNet id the model predicted.

In strict mode only the top prediction counts; otherwise any of the top five
predictions may match.

Images are mean-centered per channel before inference. The config keys
eval.mean_center and eval.top_k (TOPACC_EVAL_MEAN_CENTER, TOPACC_EVAL_TOP_K)
change what is measured; a warning is logged when they differ from true and 5.

Examples:
  topacc run --model model.onnx --images ./val --id 01440764 --map train_map.txt
  topacc run --images ./val --id 01440764 --ask-strict
  topacc run --images ./val --id 01440764 --workers 4 --format yaml --metrics-file run.prom`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := *GetConfig()

		askStrict, _ := cmd.Flags().GetBool("ask-strict")
		if askStrict {
			strict, err := askStrictMode(cmd.InOrStdin(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			cfg.Eval.Strict = strict
		}

		mc := cfg.ToMetricsConfig()
		if mc.ImageDir == "" {
			return errors.New("an image directory is required (--images)")
		}
		if mc.ExpectedID == "" {
			return errors.New("an expected WordNet id is required (--id)")
		}

		logger := slog.Default()
		if !mc.MeanCenter || mc.TopK != evaluator.DefaultTopK {
			logger.Warn("non-standard measurement settings",
				"mean_center", mc.MeanCenter, "top_k", mc.TopK)
		}
		resolver, err := labels.NewResolver(mc.MappingPath, mc.LexiconPath, labels.WithLogger(logger))
		if err != nil {
			return fmt.Errorf("failed to load mapping table: %w", err)
		}

		ev, err := evaluator.New(newRuntime(), mc.ModelPath, mc.Threads,
			evaluator.WithTopK(mc.TopK), evaluator.WithLogger(logger))
		if err != nil {
			return err
		}
		defer func() {
			if err := ev.Close(); err != nil {
				logger.Warn("failed to close model", "error", err)
			}
		}()
		if size := ev.InputSize(); size > 0 {
			mc.ImageSize = size
		}

		runner, err := metrics.NewRunner(mc, ev, resolver,
			metrics.WithLogger(logger),
			metrics.ContinueOnError(cfg.Eval.ContinueOnError))
		if err != nil {
			return err
		}

		res, err := runner.Run(cmd.Context())
		if err != nil {
			return err
		}

		if cfg.Output.MetricsFile != "" {
			if err := runner.WriteMetricsFile(cfg.Output.MetricsFile); err != nil {
				return err
			}
			logger.Info("metrics written", "path", cfg.Output.MetricsFile)
		}
		return res.Write(cmd.OutOrStdout(), cfg.Output.Format)
	},
}

// askStrictMode prints the strict-mode prompt to out and reads one line from
// in. Only an exact "y" enables strict mode.
func askStrictMode(in io.Reader, out io.Writer) (bool, error) {
	if _, err := fmt.Fprintln(out, strictPrompt); err != nil {
		return false, err
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("read strict mode answer: %w", err)
	}
	return strings.TrimRight(line, "\r\n") == "y", nil
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("model", "", "path to the ONNX classification model (default <models-dir>/model.onnx)")
	runCmd.Flags().String("images", "", "directory with the images to evaluate")
	runCmd.Flags().String("id", "", "expected WordNet id, with or without the leading n")
	runCmd.Flags().String("map", "", "mapping table from class offset to WordNet id (default <models-dir>/train_map.txt)")
	runCmd.Flags().String("lexicon", "", "WordNet lexical database (default <models-dir>/wordnet.txt)")
	runCmd.Flags().Bool("strict", false, "only count the top prediction")
	runCmd.Flags().Bool("ask-strict", false, "prompt for strict mode on stdin")
	runCmd.Flags().Int("threads", 0, "intra-op threads for the model runtime (0 = runtime default)")
	runCmd.Flags().Int("workers", 1, "images processed concurrently")
	runCmd.Flags().Bool("continue-on-error", false, "count unreadable images as misses instead of aborting")
	runCmd.Flags().StringP("format", "f", "text", "output format (text, json, yaml, csv)")
	runCmd.Flags().String("metrics-file", "", "write Prometheus textfile metrics to this path")

	_ = viper.BindPFlag("model.path", runCmd.Flags().Lookup("model"))
	_ = viper.BindPFlag("model.threads", runCmd.Flags().Lookup("threads"))
	_ = viper.BindPFlag("data.mapping_path", runCmd.Flags().Lookup("map"))
	_ = viper.BindPFlag("data.lexicon_path", runCmd.Flags().Lookup("lexicon"))
	_ = viper.BindPFlag("eval.image_dir", runCmd.Flags().Lookup("images"))
	_ = viper.BindPFlag("eval.expected_id", runCmd.Flags().Lookup("id"))
	_ = viper.BindPFlag("eval.strict", runCmd.Flags().Lookup("strict"))
	_ = viper.BindPFlag("eval.workers", runCmd.Flags().Lookup("workers"))
	_ = viper.BindPFlag("eval.continue_on_error", runCmd.Flags().Lookup("continue-on-error"))
	_ = viper.BindPFlag("output.format", runCmd.Flags().Lookup("format"))
	_ = viper.BindPFlag("output.metrics_file", runCmd.Flags().Lookup("metrics-file"))
}
