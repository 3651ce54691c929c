// Package cli wires the flowpipe command line: definition listing, running,
// validation, export and scaffolding.
package cli

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "flowpipe",
	Short: "Run and inspect declarative pipeline definitions",
	Long: `flowpipe builds pipelines from YAML flow definitions and executes
them step by step. Definitions live in a directory of YAML files; each file
declares one flow with its steps, groups, conditions and recovery policy.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default searches ., $HOME/.flowpipe)")
	rootCmd.PersistentFlags().String("definitions", "flows", "directory holding flow definition YAML files")
	rootCmd.PersistentFlags().String("log-format", "console", "log format: json or console")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	_ = viper.BindPFlag("definitions", rootCmd.PersistentFlags().Lookup("definitions"))
	_ = viper.BindPFlag("log_format", rootCmd.PersistentFlags().Lookup("log-format"))
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("flowpipe")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.flowpipe")
	}

	viper.SetEnvPrefix("FLOWPIPE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	// A missing config file is fine: flags, env and defaults still apply.
	_ = viper.ReadInConfig()
}

func newLogger() (*zap.Logger, error) {
	var cfg zap.Config
	if viper.GetString("log_format") == "json" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	if viper.GetBool("debug") {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, errors.Wrap(err, "unable to build logger")
	}

	return logger, nil
}

func definitionsDir() string {
	return viper.GetString("definitions")
}
