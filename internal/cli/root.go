// Package cli implements the revue command line: small demo components
// wired to the runtime, used for manual exploration and scripted scenario
// runs.
package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/roach88/revue"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	ConfigFile string
}

// NewRootCommand creates the root command for the revue CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "revue",
		Short: "revue - a Model-View-Update runtime",
		Long:  "Demo components for the revue MVU runtime: dispatch, commands, subscriptions and time travel.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := initConfig(opts); err != nil {
				return err
			}
			level := slog.LevelInfo
			if opts.Verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: level,
			})))
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "config file (default revue.yaml in cwd)")

	cmd.AddCommand(NewCounterCommand(opts))
	cmd.AddCommand(NewClockCommand(opts))
	cmd.AddCommand(NewScriptCommand(opts))

	return cmd
}

// initConfig wires viper to the optional config file and REVUE_* environment
// variables, with defaults for every recognized runtime option.
func initConfig(opts *RootOptions) error {
	viper.SetDefault("enable_time_travel", false)
	viper.SetDefault("time_travel_max_history", 100)

	viper.SetEnvPrefix("REVUE")
	viper.AutomaticEnv()

	if opts.ConfigFile != "" {
		viper.SetConfigFile(opts.ConfigFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %q: %w", opts.ConfigFile, err)
		}
		return nil
	}

	viper.SetConfigName("revue")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	if err := viper.ReadInConfig(); err != nil {
		// Missing default config is fine; anything else is not.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	}
	return nil
}

// runtimeConfig maps the resolved viper settings onto the runtime's Config.
func runtimeConfig() revue.Config {
	return revue.Config{
		EnableTimeTravel:     viper.GetBool("enable_time_travel"),
		TimeTravelMaxHistory: viper.GetInt("time_travel_max_history"),
	}
}
