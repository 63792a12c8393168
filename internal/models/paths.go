package models

import (
	"errors"
	"os"
	"path/filepath"
)

// Default artifact filenames.
const (
	ClassifierModel = "model.onnx"
	MappingTable    = "train_map.txt"
	Lexicon         = "wordnet.txt"
)

// Artifact type directories for the organized layout.
const (
	TypeClassifier = "classifier"
	TypeData       = "data"
)

// Default models directory.
const DefaultModelsDir = "models"

// Environment variable for models directory override.
const EnvModelsDir = "TOPACC_MODELS_DIR"

// findProjectRoot finds the project root by looking for go.mod.
func findProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", errors.New("could not find project root (go.mod not found)")
}

// GetModelsDir returns the models directory path from various sources
// Priority: 1. Explicit modelsDir parameter, 2. Environment variable, 3. Project root + default.
func GetModelsDir(modelsDir string) string {
	if modelsDir != "" {
		return modelsDir
	}
	if envDir := os.Getenv(EnvModelsDir); envDir != "" {
		return envDir
	}
	if projectRoot, err := findProjectRoot(); err == nil {
		return filepath.Join(projectRoot, DefaultModelsDir)
	}
	return DefaultModelsDir
}

// ResolvePath resolves an artifact filename to its full path. The organized
// layout <dir>/<type>/<file> is preferred when it exists, otherwise the flat
// <dir>/<file> path is returned.
func ResolvePath(modelsDir, artifactType, filename string) string {
	baseDir := GetModelsDir(modelsDir)
	if artifactType != "" {
		organized := filepath.Join(baseDir, artifactType, filename)
		if _, err := os.Stat(organized); err == nil {
			return organized
		}
	}
	return filepath.Join(baseDir, filename)
}

// GetModelPath returns the path of the classifier model.
func GetModelPath(modelsDir string) string {
	return ResolvePath(modelsDir, TypeClassifier, ClassifierModel)
}

// GetMappingPath returns the path of the offset-to-id mapping table.
func GetMappingPath(modelsDir string) string {
	return ResolvePath(modelsDir, TypeData, MappingTable)
}

// GetLexiconPath returns the path of the lexical database.
func GetLexiconPath(modelsDir string) string {
	return ResolvePath(modelsDir, TypeData, Lexicon)
}

// Artifact describes one file a run depends on.
type Artifact struct {
	Name   string
	Path   string
	Exists bool
}

// Artifacts resolves every default artifact under modelsDir and reports
// whether each is present.
func Artifacts(modelsDir string) []Artifact {
	list := []Artifact{
		{Name: "model", Path: GetModelPath(modelsDir)},
		{Name: "mapping table", Path: GetMappingPath(modelsDir)},
		{Name: "lexical database", Path: GetLexiconPath(modelsDir)},
	}
	for i := range list {
		info, err := os.Stat(list[i].Path)
		list[i].Exists = err == nil && !info.IsDir()
	}
	return list
}
