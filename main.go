package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nolifestory/wz2nx/internal/config"
	"github.com/nolifestory/wz2nx/internal/logging"
	"github.com/nolifestory/wz2nx/internal/nx"
	"github.com/nolifestory/wz2nx/internal/parser"
)

var (
	cfgFile string
	cfg     *config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "wz2nx [path-to-wz-file]",
	Short: "Convert a MapleStory WZ archive into a flat NX file",
	Args:  cobra.MaximumNArgs(1),
	RunE:  convert,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to config file")

	rootCmd.Flags().StringP("input", "i", "", "path to .wz file to convert (defaults to the positional argument, or Data.wz)")
	rootCmd.Flags().StringP("output", "o", "", "path to output .nx file (defaults to the input name with a .nx extension)")
	rootCmd.Flags().String("region", "", "force the key oracle to a region (gms, kms, sea, tms, bms, classic) instead of auto-detecting it")

	rootCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.Flags().String("log-output-dir", "", "directory to write log files (if set, logs are written to both stdout and file)")
	rootCmd.Flags().Bool("dry-run", false, "parse and build the node table without writing output")

	viper.BindPFlag("input", rootCmd.Flags().Lookup("input"))
	viper.BindPFlag("output", rootCmd.Flags().Lookup("output"))
	viper.BindPFlag("region", rootCmd.Flags().Lookup("region"))
	viper.BindPFlag("log_level", rootCmd.Flags().Lookup("log-level"))
	viper.BindPFlag("log_output_dir", rootCmd.Flags().Lookup("log-output-dir"))
	viper.BindPFlag("dry_run", rootCmd.Flags().Lookup("dry-run"))
}

// initConfig reads in config file and environment variables if set
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "wz2nx"))
		}
		viper.AddConfigPath("/etc/wz2nx")
		viper.SetConfigName("config")
		viper.SetConfigType("toml")
	}

	viper.SetEnvPrefix("WZ2NX")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// convert runs the wz2nx command: read a WZ archive into memory, transcode
// it to the NX node/string tables, and write them out.
func convert(cmd *cobra.Command, args []string) error {
	cfg = &config.Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	if len(args) > 0 {
		cfg.InputFile = args[0]
	} else if cfg.InputFile == "" {
		cfg.InputFile = "Data.wz"
	}

	if err := logging.Setup(cfg.LogLevel, cfg.LogOutputDir); err != nil {
		return fmt.Errorf("could not set up logging: %w", err)
	}

	if cfg.OutputFile == "" {
		cfg.OutputFile = strings.TrimSuffix(cfg.InputFile, filepath.Ext(cfg.InputFile)) + ".nx"
	}

	start := time.Now()

	data, err := os.ReadFile(cfg.InputFile)
	if err != nil {
		return fmt.Errorf("failed to read WZ file: %w", err)
	}

	conv, err := parser.NewConverter(data, cfg.Region, slog.Default())
	if err != nil {
		return fmt.Errorf("could not set up converter: %w", err)
	}

	if err := conv.Run(); err != nil {
		return fmt.Errorf("conversion failed: %w", err)
	}

	if cfg.DryRun {
		slog.Info("Done", "elapsed", time.Since(start))
		return nil
	}

	out, err := os.Create(cfg.OutputFile)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer out.Close()
	slog.Info("Opened output", "output", cfg.OutputFile)

	if err := nx.Write(out, conv.Nodes, conv.Strings, slog.Default()); err != nil {
		return fmt.Errorf("failed to write NX file: %w", err)
	}

	slog.Info("Done", "elapsed", time.Since(start))
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
