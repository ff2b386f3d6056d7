package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	storageFile   = "file"
	storageBadger = "badger"
)

type Config struct {
	address        string
	databasePath   string
	rosterStorage  string
	dataFile       string
	timezone       string
	classDuration  time.Duration
	sessionTimeout time.Duration
	telegramToken  string
	watch          bool
	verbose        bool
}

func (c *Config) validate() error {
	if c.rosterStorage != storageFile && c.rosterStorage != storageBadger {
		return fmt.Errorf("invalid roster storage (must be %q or %q): %q", storageFile, storageBadger, c.rosterStorage)
	}
	if c.dataFile == "" {
		return errors.New("--data-file must not be empty")
	}
	return nil
}

func (c *Config) validateServe() error {
	if c.classDuration <= 0 {
		return fmt.Errorf("invalid class duration: %s", c.classDuration)
	}
	if c.sessionTimeout <= 0 {
		return fmt.Errorf("invalid session timeout: %s", c.sessionTimeout)
	}
	return nil
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("ATTENDBOT")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:     "attendbot",
		Short:   "A chatbot that keeps a class attendance roster.",
		Args:    cobra.ExactArgs(0),
		Version: releaseVersion,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return cfg.validate()
		},
	}

	pfs := cmd.PersistentFlags()
	pfs.StringVar(&cfg.databasePath, "database-path", "attendbot.db", "path to the database (env: ATTENDBOT_DATABASE_PATH)")
	pfs.StringVar(&cfg.rosterStorage, "roster-storage", storageFile, "where the roster is persisted, file or badger (env: ATTENDBOT_ROSTER_STORAGE)")
	pfs.StringVar(&cfg.dataFile, "data-file", "attendance_data.json", "path to the attendance json file (env: ATTENDBOT_DATA_FILE)")
	pfs.StringVar(&cfg.timezone, "timezone", "", "zone attendance times are shown and stored in, local if empty (env: ATTENDBOT_TIMEZONE)")
	pfs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display debug logs (env: ATTENDBOT_VERBOSE)")

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Serve the web chat, the api and the telegram bot.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := cfg.validateServe(); err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg)
		},
	}
	fs := serve.Flags()
	fs.StringVar(&cfg.address, "address", ":http", "http address to listen to (env: ATTENDBOT_ADDRESS)")
	fs.DurationVar(&cfg.classDuration, "class-duration", time.Hour, "length of a class in calendar feeds (env: ATTENDBOT_CLASS_DURATION)")
	fs.DurationVar(&cfg.sessionTimeout, "session-timeout", 60*time.Minute, "time before idle chat sessions are closed (env: ATTENDBOT_SESSION_TIMEOUT)")
	fs.StringVar(&cfg.telegramToken, "telegram-token", "", "telegram bot token, the bot is off if empty (env: ATTENDBOT_TELEGRAM_TOKEN)")
	fs.BoolVar(&cfg.watch, "watch", false, "if true, will serve templates and static files from filesystem (env: ATTENDBOT_WATCH)")

	chat := &cobra.Command{
		Use:   "chat",
		Short: "Chat with the bot in the terminal.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runChat(cmd.Context(), cfg, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	for _, flags := range []*pflag.FlagSet{pfs, fs} {
		bindEnv(v, flags)
	}

	cmd.AddCommand(serve, chat)
	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("attendbot v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}

// bindEnv fills every flag that was not set on the command line from its
// ATTENDBOT_ environment variable.
func bindEnv(v *viper.Viper, fs *pflag.FlagSet) {
	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})
	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})
}
