// Package cmd implements the paramflow CLI.
package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/paramflow/paramflow/pkg/logger"
	"github.com/paramflow/paramflow/pkg/schema"
)

var cfg = schema.NewConfiguration()

// RootCmd is the top-level paramflow command.
var RootCmd = &cobra.Command{
	Use:   "paramflow",
	Short: "Templated pipeline configuration resolution with provenance tracking",
	Long: `paramflow resolves ${...} placeholders in pipeline definitions against
parameter files, records which parameter entries each stage actually
referenced, and detects parameter changes between runs.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the CLI.
func Execute() error {
	return RootCmd.Execute()
}

func init() {
	RootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return initConfig()
	}
	RootCmd.PersistentFlags().String("logs-level", "Info", "Log level: Debug, Info, Warning, Error, Off")
	RootCmd.PersistentFlags().String("logs-file", "/dev/stderr", "Log destination")
	RootCmd.PersistentFlags().String("params-file", schema.DefaultParamsFile, "Default parameters file name")
}

func initConfig() error {
	v := viper.New()
	v.SetEnvPrefix("PARAMFLOW")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if err := bindFlags(v, RootCmd.PersistentFlags()); err != nil {
		return err
	}

	cfg.Logs.Level = v.GetString("logs.level")
	cfg.Logs.File = v.GetString("logs.file")
	cfg.ParamsFile = v.GetString("params_file")

	l, err := logger.NewFromConfiguration(cfg)
	if err != nil {
		return err
	}
	logger.SetDefault(l)

	return nil
}

// bindFlags binds each configuration key to its command-line flag, so viper
// resolves flag > environment > default.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	bindings := map[string]string{
		"logs.level":  "logs-level",
		"logs.file":   "logs-file",
		"params_file": "params-file",
	}

	for key, name := range bindings {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			return err
		}
	}
	return nil
}
