package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "INDICAST"

const longDescription = "Forecast annual country indicators to a horizon year with additive trend " +
	"exponential smoothing and symmetric residual based bands."

// app carries the state shared by every command so each root command gets its own
// configuration.
type app struct {
	v       *viper.Viper
	cfgFile string
	version string
}

func newRootCmd(version string) *cobra.Command {
	a := &app{
		v:       viper.New(),
		version: version,
	}

	rootCmd := &cobra.Command{
		Use:           "indicast",
		Short:         "Forecast annual indicator series",
		Long:          longDescription,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,

		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := a.initConfig(cmd.ErrOrStderr()); err != nil {
				return err
			}
			logger, err := a.newLogger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			cmd.SetContext(logger.WithContext(cmd.Context()))
			return nil
		},

		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default is ./indicast.yaml or $HOME/.indicast.yaml)")
	rootCmd.PersistentFlags().String("log-level", zerolog.InfoLevel.String(), "Log level: trace|debug|info|warn|error|disabled")
	rootCmd.PersistentFlags().Bool("log-json", false, "Write logs as json instead of console output")

	cobra.CheckErr(a.bindFlags(rootCmd.PersistentFlags(), map[string]string{
		"log-level": "log_level",
		"log-json":  "log_json",
	}))

	rootCmd.AddCommand(a.newForecastCmd(), a.newPlotCmd(), a.newVersionCmd())
	return rootCmd
}

func (a *app) initConfig(stderr io.Writer) error {
	// Enable environment variable support (e.g., INDICAST_HORIZON)
	a.v.SetEnvPrefix(envPrefix)
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	a.v.AutomaticEnv()

	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
		if err := a.v.ReadInConfig(); err != nil {
			return fmt.Errorf("unable to read config %s, %w", a.cfgFile, err)
		}
		fmt.Fprintln(stderr, "Using config file:", a.v.ConfigFileUsed())
		return nil
	}

	a.v.SetConfigType("yaml")
	a.v.AddConfigPath(".")

	// Try ./indicast.yaml first
	a.v.SetConfigName("indicast")
	err := a.v.ReadInConfig()

	// If not found, try $HOME/.indicast.yaml
	notFound := viper.ConfigFileNotFoundError{}
	if err != nil && errors.As(err, &notFound) {
		if home, herr := os.UserHomeDir(); herr == nil {
			a.v.AddConfigPath(home)
			a.v.SetConfigName(".indicast")
			err = a.v.ReadInConfig()
		}
	}

	switch {
	case err != nil && !errors.As(err, &notFound):
		return fmt.Errorf("unable to read config, %w", err)
	case err != nil:
		// The config file is optional
	default:
		fmt.Fprintln(stderr, "Using config file:", a.v.ConfigFileUsed())
	}
	return nil
}

func (a *app) newLogger(w io.Writer) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(a.v.GetString("log_level"))))
	if err != nil {
		return zerolog.Logger{}, fmt.Errorf("invalid --log-level, %w", err)
	}
	if level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	if !a.v.GetBool("log_json") {
		w = zerolog.ConsoleWriter{Out: w}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger(), nil
}

// bindFlags binds each named flag to its configuration key. Commands share keys, so
// subcommands bind right before they run.
func (a *app) bindFlags(flags *pflag.FlagSet, keys map[string]string) error {
	for name, key := range keys {
		if err := a.v.BindPFlag(key, flags.Lookup(name)); err != nil {
			return fmt.Errorf("unable to bind --%s, %w", name, err)
		}
	}
	return nil
}
