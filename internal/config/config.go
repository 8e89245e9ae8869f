// Package config defines the server configuration and its cobra command.
// Every flag is also bindable through the environment with a QUIZWIRE_
// prefix, e.g. QUIZWIRE_PORT or QUIZWIRE_STORE_DRIVER.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds everything the server needs to run.
type Config struct {
	Bind string
	Port int

	// StoreDriver selects the GameRecordStore backend: memory, postgres, or redis.
	StoreDriver string
	PostgresDSN string
	RedisAddr   string
	RedisDB     int

	MinPlayers       int
	QuestionsPerGame int
	AdvanceDelay     time.Duration
	CodeLength       int

	Verbose bool
}

var validDrivers = map[string]bool{
	"memory":   true,
	"postgres": true,
	"redis":    true,
}

// Validate checks invariants the flag parser cannot express.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.Port)
	}
	if !validDrivers[c.StoreDriver] {
		return fmt.Errorf("invalid store driver %q (must be memory, postgres, or redis)", c.StoreDriver)
	}
	if c.StoreDriver == "postgres" && c.PostgresDSN == "" {
		return fmt.Errorf("--postgres-dsn is required with the postgres store driver")
	}
	if c.MinPlayers < 1 {
		return fmt.Errorf("invalid min-players: %d", c.MinPlayers)
	}
	if c.QuestionsPerGame < 1 {
		return fmt.Errorf("invalid questions-per-game: %d", c.QuestionsPerGame)
	}
	if c.CodeLength < 4 {
		return fmt.Errorf("invalid code-length (must be at least 4): %d", c.CodeLength)
	}
	return nil
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Bind, c.Port)
}

// NewCommand builds the root cobra command, binding every flag to both
// pflag and the QUIZWIRE_* environment.
func NewCommand(cfg *Config, run func(cfg *Config) error) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("QUIZWIRE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:   "quizwire",
		Short: "A real-time multiplayer trivia game coordinator.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			return run(cfg)
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&cfg.Bind, "bind", "b", "0.0.0.0", "address to bind to (env: QUIZWIRE_BIND)")
	fs.IntVarP(&cfg.Port, "port", "p", 8080, "port to listen on (env: QUIZWIRE_PORT)")
	fs.StringVar(&cfg.StoreDriver, "store-driver", "memory", "record store backend: memory, postgres, or redis (env: QUIZWIRE_STORE_DRIVER)")
	fs.StringVar(&cfg.PostgresDSN, "postgres-dsn", "", "postgres connection string (env: QUIZWIRE_POSTGRES_DSN)")
	fs.StringVar(&cfg.RedisAddr, "redis-addr", "localhost:6379", "redis address (env: QUIZWIRE_REDIS_ADDR)")
	fs.IntVar(&cfg.RedisDB, "redis-db", 0, "redis database index (env: QUIZWIRE_REDIS_DB)")
	fs.IntVar(&cfg.MinPlayers, "min-players", 2, "minimum players required to start a game (env: QUIZWIRE_MIN_PLAYERS)")
	fs.IntVar(&cfg.QuestionsPerGame, "questions-per-game", 5, "questions drawn from the bank per game (env: QUIZWIRE_QUESTIONS_PER_GAME)")
	fs.DurationVar(&cfg.AdvanceDelay, "advance-delay", time.Second, "pause before broadcasting the next question or game over (env: QUIZWIRE_ADVANCE_DELAY)")
	fs.IntVar(&cfg.CodeLength, "code-length", 16, "room code length (env: QUIZWIRE_CODE_LENGTH)")
	fs.BoolVarP(&cfg.Verbose, "verbose", "v", false, "enable debug logging (env: QUIZWIRE_VERBOSE)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SilenceUsage = true

	return cmd
}
