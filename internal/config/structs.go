//nolint:lll
package config

// Config represents the complete configuration for the topacc accuracy tool.
// It is loaded from configuration files, environment variables and
// command-line flags.
type Config struct {
	// Global settings
	ModelsDir string `mapstructure:"models_dir" yaml:"models_dir" json:"models_dir"`
	LogLevel  string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Verbose   bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`

	Model  ModelConfig  `mapstructure:"model" yaml:"model" json:"model"`
	Data   DataConfig   `mapstructure:"data" yaml:"data" json:"data"`
	Eval   EvalConfig   `mapstructure:"eval" yaml:"eval" json:"eval"`
	Output OutputConfig `mapstructure:"output" yaml:"output" json:"output"`
}

// ModelConfig locates the classifier and tunes its runtime.
type ModelConfig struct {
	Path    string `mapstructure:"path" yaml:"path" json:"path"`
	Threads int    `mapstructure:"threads" yaml:"threads" json:"threads"`
}

// DataConfig locates the label databases.
type DataConfig struct {
	MappingPath string `mapstructure:"mapping_path" yaml:"mapping_path" json:"mapping_path"`
	LexiconPath string `mapstructure:"lexicon_path" yaml:"lexicon_path" json:"lexicon_path"`
}

// EvalConfig describes the accuracy run.
type EvalConfig struct {
	ImageDir        string `mapstructure:"image_dir" yaml:"image_dir" json:"image_dir"`
	ExpectedID      string `mapstructure:"expected_id" yaml:"expected_id" json:"expected_id"`
	Strict          bool   `mapstructure:"strict" yaml:"strict" json:"strict"`
	ImageSize       int    `mapstructure:"image_size" yaml:"image_size" json:"image_size"`
	MeanCenter      bool   `mapstructure:"mean_center" yaml:"mean_center" json:"mean_center"`
	TopK            int    `mapstructure:"top_k" yaml:"top_k" json:"top_k"`
	Workers         int    `mapstructure:"workers" yaml:"workers" json:"workers"`
	ContinueOnError bool   `mapstructure:"continue_on_error" yaml:"continue_on_error" json:"continue_on_error"`
}

// OutputConfig controls result rendering.
type OutputConfig struct {
	Format      string `mapstructure:"format" yaml:"format" json:"format"`
	MetricsFile string `mapstructure:"metrics_file" yaml:"metrics_file" json:"metrics_file"`
}
