package onnx

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	onnxrt "github.com/yalue/onnxruntime_go"
)

const (
	osLinux    = "linux"
	osDarwin   = "darwin"
	osWindows  = "windows"
	libLinux   = "libonnxruntime.so"
	libDarwin  = "libonnxruntime.dylib"
	libWindows = "onnxruntime.dll"
)

// EnvLibraryPath overrides the ONNX Runtime shared library search.
const EnvLibraryPath = "TOPACC_ONNXRUNTIME_LIB"

var envMu sync.Mutex

// systemLibraryPaths returns well-known install locations, in search order.
func systemLibraryPaths() []string {
	return []string{
		"/usr/local/lib/libonnxruntime.so",
		"/usr/lib/libonnxruntime.so",
		"/opt/onnxruntime/cpu/lib/libonnxruntime.so",
	}
}

// libraryNameForOS returns the shared library filename for goos.
func libraryNameForOS(goos string) (string, error) {
	switch goos {
	case osLinux:
		return libLinux, nil
	case osDarwin:
		return libDarwin, nil
	case osWindows:
		return libWindows, nil
	default:
		return "", fmt.Errorf("unsupported operating system: %s", goos)
	}
}

// findProjectRootFrom walks up from dir until it finds go.mod or an
// onnxruntime directory.
func findProjectRootFrom(dir string) (string, error) {
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		if _, err := os.Stat(filepath.Join(dir, "onnxruntime")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("could not find project root")
		}
		dir = parent
	}
}

// FindLibraryPath locates the ONNX Runtime shared library. The environment
// override wins, then system paths, then <project>/onnxruntime/lib.
func FindLibraryPath() (string, error) {
	if p := os.Getenv(EnvLibraryPath); p != "" {
		if _, err := os.Stat(p); err != nil {
			return "", fmt.Errorf("%s points to missing library %s: %w", EnvLibraryPath, p, err)
		}
		return p, nil
	}

	for _, p := range systemLibraryPaths() {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current directory: %w", err)
	}
	root, err := findProjectRootFrom(cwd)
	if err != nil {
		return "", err
	}
	libName, err := libraryNameForOS(runtime.GOOS)
	if err != nil {
		return "", err
	}
	p := filepath.Join(root, "onnxruntime", "lib", libName)
	if _, err := os.Stat(p); err != nil {
		return "", fmt.Errorf("ONNX Runtime library not found at %s", p)
	}
	return p, nil
}

// InitializeEnvironment points onnxruntime_go at the shared library and
// initializes the global environment once per process.
func InitializeEnvironment() error {
	envMu.Lock()
	defer envMu.Unlock()

	if onnxrt.IsInitialized() {
		return nil
	}
	libPath, err := FindLibraryPath()
	if err != nil {
		return fmt.Errorf("onnx lib path: %w", err)
	}
	onnxrt.SetSharedLibraryPath(libPath)
	if err := onnxrt.InitializeEnvironment(); err != nil {
		return fmt.Errorf("init onnx: %w", err)
	}
	return nil
}

// DestroyEnvironment tears down the global environment if it was initialized.
func DestroyEnvironment() error {
	envMu.Lock()
	defer envMu.Unlock()

	if !onnxrt.IsInitialized() {
		return nil
	}
	return onnxrt.DestroyEnvironment()
}
