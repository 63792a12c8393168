package onnx

import (
	"fmt"
	"io"

	onnxrt "github.com/yalue/onnxruntime_go"
)

// CheckRuntime verifies that the ONNX Runtime shared library can be found and
// initialized, writing progress lines to out.
func CheckRuntime(out io.Writer) error {
	libPath, err := FindLibraryPath()
	if err != nil {
		return fmt.Errorf("failed to find ONNX Runtime library: %w", err)
	}
	_, _ = fmt.Fprintf(out, "Using ONNX Runtime library: %s\n", libPath)

	if err := InitializeEnvironment(); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "ONNX Runtime %s initialized\n", onnxrt.GetVersion())
	return nil
}
