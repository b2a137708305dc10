package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-colorable"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	cfgFile string
	verbose bool

	logger *zap.Logger

	// stderrColor is the colorized writer diagnostics are printed
	// through; go-colorable keeps ANSI codes working on a Windows
	// console the way plain os.Stderr would not.
	stderrColor = colorable.NewColorableStderr()
)

var rootCmd = &cobra.Command{
	Use:   "stencilctl",
	Short: "Lex, parse and render stencil templates",
	Long: `stencilctl drives the stencil template engine from the command line:
tokenize a template with lex, inspect its parsed structure with parse,
or render it against a JSON/YAML context with render.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initLogger()
	},
}

// Execute runs the root command.
func Execute() error {
	defer func() {
		if logger != nil {
			_ = logger.Sync()
		}
	}()
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default $HOME/.stencilctl.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose diagnostic logging")
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(".stencilctl")
		viper.SetConfigType("yaml")
		viper.AddConfigPath("$HOME")
		viper.AddConfigPath(".")
	}

	viper.SetEnvPrefix("STENCILCTL")
	viper.AutomaticEnv()

	// A missing config file is not an error: every setting it could
	// hold also has a flag/env-var/default fallback.
	_ = viper.ReadInConfig()
}

func initLogger() error {
	cfg := zap.NewProductionConfig()
	if verbose || viper.GetBool("verbose") {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.DisableStacktrace = true

	built, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	logger = built
	return nil
}

func warnf(format string, args ...any) {
	fmt.Fprintln(stderrColor, color.YellowString(format, args...))
}

func fatalf(format string, args ...any) {
	fmt.Fprintln(stderrColor, color.RedString(format, args...))
	os.Exit(1)
}
