package config

// Config holds the resolved settings for one conversion run.
type Config struct {
	InputFile  string `mapstructure:"input"`
	OutputFile string `mapstructure:"output"`

	// Region forces the key oracle to a specific candidate instead of
	// trial-decrypting all three (gms, kms, bms).
	Region string `mapstructure:"region"`

	DryRun       bool   `mapstructure:"dry_run"`
	LogLevel     string `mapstructure:"log_level"`
	LogOutputDir string `mapstructure:"log_output_dir"`
}
