package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const imageExt = ".jpeg"

// DiscoverImages lists the files directly inside dir named n<expectedID>_*.jpeg,
// sorted by name. The extension is matched case-insensitively.
func DiscoverImages(dir, expectedID string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: image directory %s", ErrInputNotFound, dir)
		}
		return nil, fmt.Errorf("stat image directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrInputNotFound, dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read image directory %s: %w", dir, err)
	}

	prefix := "n" + NormalizeID(expectedID) + "_"
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if matchesImageName(e.Name(), prefix) {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	return files, nil
}

func matchesImageName(name, prefix string) bool {
	ext := filepath.Ext(name)
	if !strings.EqualFold(ext, imageExt) {
		return false
	}
	return strings.HasPrefix(name, prefix)
}
