/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Seednode/cellshot/games/cells"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	bind           string
	codeDigits     int
	forfeitOnLeave bool
	maxUsername    int
	port           int
	prefix         string
	profile        bool
	quickMatchSize int
	serverRolls    bool
	tlsCert        string
	tlsKey         string
	verbose        bool
	version        bool
}

func (c *Config) validate() error {
	if (c.tlsCert == "") != (c.tlsKey == "") {
		return errors.New("both --tls-cert and --tls-key must be provided together")
	}
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	if c.codeDigits < 4 || c.codeDigits > 9 {
		return fmt.Errorf("invalid room code width (must be between 4-9 inclusive): %d", c.codeDigits)
	}
	if c.quickMatchSize < cells.MinPlayers || c.quickMatchSize > cells.MaxPlayers {
		return fmt.Errorf("invalid quick match size (must be between %d-%d inclusive): %d",
			cells.MinPlayers, cells.MaxPlayers, c.quickMatchSize)
	}
	if c.maxUsername < 1 {
		return fmt.Errorf("invalid username length limit: %d", c.maxUsername)
	}
	return nil
}

func (c *Config) scheme() string {
	if c.tlsCert != "" && c.tlsKey != "" {
		return "https"
	}
	return "http"
}

func (c *Config) directoryOptions() []cells.Option {
	opts := []cells.Option{
		cells.WithCodeDigits(c.codeDigits),
		cells.WithQuickMatchSize(c.quickMatchSize),
		cells.WithMaxUsername(c.maxUsername),
	}
	if c.serverRolls {
		opts = append(opts, cells.WithServerRolls(nil))
	}
	if c.forfeitOnLeave {
		opts = append(opts, cells.WithForfeitOnLeave())
	}
	return opts
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("CELLSHOT")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "cellshot",
		Short:         "Turn-based elimination dice game server.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		Version:       releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return ServePage(cmd.Context(), cfg, args)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: CELLSHOT_BIND)")
	fs.IntVar(&cfg.codeDigits, "code-digits", cells.DefaultCodeDigits, "number of digits in generated room codes (env: CELLSHOT_CODE_DIGITS)")
	fs.BoolVar(&cfg.forfeitOnLeave, "forfeit-on-leave", false, "eliminate players who leave a game in progress (env: CELLSHOT_FORFEIT_ON_LEAVE)")
	fs.IntVar(&cfg.maxUsername, "max-username", cells.DefaultMaxUsername, "maximum username length, in characters (env: CELLSHOT_MAX_USERNAME)")
	fs.IntVarP(&cfg.port, "port", "p", 8080, "port to listen on (env: CELLSHOT_PORT)")
	fs.StringVar(&cfg.prefix, "prefix", "", "path to prepend to all URLs, for use behind reverse proxy (env: CELLSHOT_PREFIX)")
	fs.BoolVar(&cfg.profile, "profile", false, "register net/http/pprof handlers (env: CELLSHOT_PROFILE)")
	fs.IntVar(&cfg.quickMatchSize, "quick-match-size", cells.DefaultQuickMatchSize, "players per quick match room (env: CELLSHOT_QUICK_MATCH_SIZE)")
	fs.BoolVar(&cfg.serverRolls, "server-rolls", false, "roll dice server-side instead of trusting clients (env: CELLSHOT_SERVER_ROLLS)")
	fs.StringVar(&cfg.tlsCert, "tls-cert", "", "path to tls certificate (env: CELLSHOT_TLS_CERT)")
	fs.StringVar(&cfg.tlsKey, "tls-key", "", "path to tls keyfile (env: CELLSHOT_TLS_KEY)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: CELLSHOT_VERBOSE)")
	fs.BoolVarP(&cfg.version, "version", "V", false, "display version and exit (env: CELLSHOT_VERSION)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("cellshot v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}
