package cmd

import (
	"fmt"
	"log/slog"

	"github.com/MeKo-Tech/topacc/internal/evaluator"
	"github.com/MeKo-Tech/topacc/internal/labels"
	"github.com/MeKo-Tech/topacc/internal/onnx"
	"github.com/MeKo-Tech/topacc/internal/utils"
	"github.com/spf13/cobra"
)

// classifyCmd represents the classify command.
var classifyCmd = &cobra.Command{
	Use:   "classify <image>",
	Short: "Print the top predicted labels for one image",
	Long: `Run the model on a single image and print its highest ranked classes with
their WordNet ids and labels.

Examples:
  topacc classify cat.jpeg
  topacc classify cat.jpeg --top 3 --model resnet50.onnx`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		top, _ := cmd.Flags().GetInt("top")
		if top <= 0 {
			return fmt.Errorf("--top must be positive, got %d", top)
		}
		modelPath := flagOr(cmd, "model", cfg.ModelPath())
		mappingPath := flagOr(cmd, "map", cfg.MappingPath())
		lexiconPath := flagOr(cmd, "lexicon", cfg.LexiconPath())
		logger := slog.Default()

		resolver, err := labels.NewResolver(mappingPath, lexiconPath, labels.WithLogger(logger))
		if err != nil {
			return fmt.Errorf("failed to load mapping table: %w", err)
		}

		ev, err := evaluator.New(newRuntime(), modelPath, cfg.Model.Threads,
			evaluator.WithTopK(top), evaluator.WithLogger(logger))
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
		tensor, err := utils.BuildPixelTensorSize(args[0], size, cfg.Eval.MeanCenter)
		if err != nil {
			return err
		}
		minVal, maxVal, mean := onnx.TensorStats(tensor)
		logger.Debug("input tensor", "size", size, "min", minVal, "max", maxVal, "mean", mean)

		preds, err := ev.EvaluateScores(tensor)
		if err != nil {
			return err
		}

		offsets := make([]int, len(preds))
		for i, p := range preds {
			offsets[i] = p.Offset
		}
		ids := resolver.WordnetIDs(offsets)
		names, err := resolver.Labels(offsets)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for i, p := range preds {
			id, name := ids[i], names[i]
			if id == "" {
				id, name = "-", "(unresolved)"
			}
			_, _ = fmt.Fprintf(out, "%d. n%s %s (offset %d, score %.4f)\n", i+1, id, name, p.Offset, p.Score)
		}
		return nil
	},
}

// flagOr returns the named flag's value when it was set, otherwise fallback.
func flagOr(cmd *cobra.Command, name, fallback string) string {
	if cmd.Flags().Changed(name) {
		v, _ := cmd.Flags().GetString(name)
		return v
	}
	return fallback
}

func init() {
	rootCmd.AddCommand(classifyCmd)

	classifyCmd.Flags().Int("top", evaluator.DefaultTopK, "number of ranked classes to print")
	classifyCmd.Flags().String("model", "", "path to the ONNX classification model")
	classifyCmd.Flags().String("map", "", "mapping table from class offset to WordNet id")
	classifyCmd.Flags().String("lexicon", "", "WordNet lexical database")
}
