// Package cmd implements the dynoteam command line.
package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tuannvm/dynoteam/internal/logging"
	"github.com/tuannvm/dynoteam/internal/runner"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "dynoteam",
	Short: "Run teams of agents in dependency order",
	Long: `Dynoteam runs a team of agents whose dependencies form a graph.
Agents are grouped into levels; each level runs after the one before it
and every agent receives its prerequisites' results as context.

Example:
  dynoteam init
  dynoteam plan
  dynoteam run --mode parallel
  dynoteam run ./teams/etl.yaml --context dataset=churn.csv --tui`,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "dynoteam version %s\n", version)
	},
}

// SetVersion sets the version string
func SetVersion(v string) {
	version = v
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringP("config", "c", "", "settings file (default is $HOME/.dynoteam/settings.yaml)")
	flags.String("team", "", "default team file or directory")
	flags.String("log-level", "warn", "structured log level: debug, info, warn, error")
	flags.String("log-format", logging.FormatText, "structured log format: text, json, logfmt")
	flags.BoolP("verbose", "v", false, "verbose output")
	flags.BoolP("quiet", "q", false, "quiet output (errors only)")

	for _, key := range []string{"config", "team", "log-level", "log-format", "verbose", "quiet"} {
		_ = viper.BindPFlag(key, flags.Lookup(key))
	}

	rootCmd.AddCommand(versionCmd)
}

func initConfig() {
	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("settings")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".dynoteam")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(filepath.Join(home, ".dynoteam"))
		}
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("DYNOTEAM")
	// DYNOTEAM_LOG_LEVEL for log-level
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	// Read settings if present (ignore error if not found)
	_ = viper.ReadInConfig()
}

// teamPath picks the positional path, falling back to the team setting.
func teamPath(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return viper.GetString("team")
}

func isVerbose() bool { return viper.GetBool("verbose") && !viper.GetBool("quiet") }
func isQuiet() bool   { return viper.GetBool("quiet") }

// newLogger builds the structured logger handed to teams. Verbose output
// lowers the level to debug unless a level was set explicitly.
func newLogger(cmd *cobra.Command) (*slog.Logger, error) {
	opts := logging.DefaultOptions()
	opts.Level = viper.GetString("log-level")
	opts.Format = viper.GetString("log-format")
	opts.Writer = cmd.ErrOrStderr()
	if isVerbose() && !viper.IsSet("log-level") {
		opts.Level = "debug"
	}
	return logging.New(opts)
}

// newStatusLogger returns the progress printer for cmd's output streams.
func newStatusLogger(cmd *cobra.Command) *runner.StdLogger {
	return runner.NewWriterLogger(cmd.OutOrStdout(), cmd.ErrOrStderr(), isVerbose(), isQuiet())
}
