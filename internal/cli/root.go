// Package cli implements triagectl, the operator command line for the
// triage engine.
package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"casetriage/internal/app"
	"casetriage/internal/platform/config"
	"casetriage/internal/platform/logger"
)

const configName = ".casetriage"

// session carries the state shared by every command of one invocation.
type session struct {
	configFile string
	v          *viper.Viper
	app        *app.App
}

// NewRootCmd builds the triagectl command tree.
func NewRootCmd() *cobra.Command {
	s := &session{v: viper.New()}

	root := &cobra.Command{
		Use:   "triagectl",
		Short: "Triage missing-person cases from the command line",
		Long: `triagectl ranks open missing-person cases by urgency, scoped to a viewer's
jurisdiction, and records status changes.

By default it works on a local SQLite file. Point it at the shared
Postgres or Redis backend with --store.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if noColor, _ := cmd.Flags().GetBool("no-color"); noColor {
				color.NoColor = true
			}
			return s.initConfig()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&s.configFile, "config", "", "config file (default is $HOME/.casetriage.yaml)")
	flags.String("store", config.StoreSQLite, "case store: sqlite, postgres, redis or memory")
	flags.String("sqlite-path", "casetriage.db", "SQLite database file")
	flags.String("database-url", "", "Postgres connection URL")
	flags.String("redis-url", "", "Redis connection URL")
	flags.String("policy-file", "", "YAML file overriding the triage policy and jurisdiction cascade")
	flags.String("log-level", "warn", "log level: debug, info, warn or error")
	flags.Bool("json", false, "print JSON instead of tables")
	flags.Bool("no-color", false, "disable coloured output")
	for _, key := range []string{"store", "sqlite-path", "database-url", "redis-url", "policy-file", "log-level"} {
		_ = s.v.BindPFlag(key, flags.Lookup(key))
	}

	root.AddCommand(
		viewCmd(s),
		scoreCmd(s),
		statusCmd(s),
		reportCmd(s),
		historyCmd(s),
		viewerCmd(s),
		policyCmd(s),
	)
	return root
}

// initConfig reads in config file and ENV variables if set.
func (s *session) initConfig() error {
	if s.configFile != "" {
		s.v.SetConfigFile(s.configFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			return fmt.Errorf("locate home directory: %w", err)
		}
		s.v.AddConfigPath(home)
		s.v.SetConfigName(configName)
		s.v.SetConfigType("yaml")
	}

	s.v.SetEnvPrefix(config.EnvPrefix)
	s.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	s.v.AutomaticEnv()

	if err := s.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	}
	return nil
}

func (s *session) serverConfig() config.Server {
	cfg := config.FromEnv()
	cfg.Store = strings.ToLower(s.v.GetString("store"))
	cfg.SQLitePath = s.v.GetString("sqlite-path")
	cfg.DatabaseURL = s.v.GetString("database-url")
	cfg.Redis.URL = s.v.GetString("redis-url")
	cfg.PolicyFile = s.v.GetString("policy-file")
	return cfg
}

func (s *session) engine() (config.Engine, error) {
	return config.LoadEngine(s.v.GetString("policy-file"))
}

// open builds the engine over the configured store on first use.
func (s *session) open(cmd *cobra.Command) (*app.App, error) {
	if s.app != nil {
		return s.app, nil
	}
	engine, err := s.engine()
	if err != nil {
		return nil, err
	}
	log := logger.NewTo(cmd.ErrOrStderr(), s.v.GetString("log-level"), "text")
	a, err := app.Build(commandContext(cmd), s.serverConfig(), engine, log, prometheus.NewRegistry())
	if err != nil {
		return nil, err
	}
	s.app = a
	return a, nil
}

func (s *session) close() error {
	if s.app == nil {
		return nil
	}
	err := s.app.Close()
	s.app = nil
	return err
}

// withApp opens the store for the duration of one command.
func (s *session) withApp(fn func(cmd *cobra.Command, args []string, a *app.App) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		a, err := s.open(cmd)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := s.close(); cerr != nil {
				err = errors.Join(err, cerr)
			}
		}()
		return fn(cmd, args, a)
	}
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func jsonOutput(cmd *cobra.Command) bool {
	on, _ := cmd.Flags().GetBool("json")
	return on
}
