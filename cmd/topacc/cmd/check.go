package cmd

import (
	"fmt"

	"github.com/MeKo-Tech/topacc/internal/models"
	"github.com/MeKo-Tech/topacc/internal/onnx"
	"github.com/spf13/cobra"
)

// checkRuntime verifies the model runtime; replaced in tests.
var checkRuntime = onnx.CheckRuntime

// checkCmd represents the check command.
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check ONNX Runtime and model artifacts",
	Long: `Verify that the ONNX Runtime shared library can be loaded and list the
default model artifacts under the models directory.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		cfg := GetConfig()

		_, _ = fmt.Fprintln(out, "Artifacts:")
		for _, a := range models.Artifacts(cfg.ModelsDir) {
			status := "missing"
			if a.Exists {
				status = "ok"
			}
			_, _ = fmt.Fprintf(out, "  %-17s %-8s %s\n", a.Name, status, a.Path)
		}
		_, _ = fmt.Fprintln(out)

		if err := checkRuntime(out); err != nil {
			return fmt.Errorf("ONNX Runtime check failed: %w (set %s to the shared library path)", err, onnx.EnvLibraryPath)
		}
		_, _ = fmt.Fprintln(out, "ONNX Runtime is ready.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
