// Command boltbot runs godbolt chat commands from a terminal or serves the
// webhook API.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gsarma/boltbot/internal/app"
	"github.com/gsarma/boltbot/internal/bot"
	"github.com/gsarma/boltbot/internal/config"
	"github.com/gsarma/boltbot/internal/godbolt"
	"github.com/gsarma/boltbot/internal/logger"
)

var (
	configPath string
	verbose    bool

	cfg *config.Config

	// newProvider is swapped out in tests.
	newProvider = func(cfg *config.Config) godbolt.Provider { return app.NewProvider(cfg) }
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "boltbot",
		Short:         "Compile and run code on Compiler Explorer from chat",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			level := cfg.LogLevel
			if verbose {
				level = "debug"
			}
			if err := logger.Init(cfg.Env, level, cfg.LogFile); err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logger.Sync()
		},
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file (or set BOLTBOT_CONFIG)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(serveCmd(), languagesCmd(), compilersCmd(), runCmd(), asmCmd())
	return root
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the chat webhook API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return app.Serve(ctx, cfg)
		},
	}
}

func languagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "languages [page]",
		Short: "List language ids",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return dispatch(cmd, "languages", args...)
		},
	}
}

func compilersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compilers <language> [page]",
		Short: "List compiler ids for a language",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return dispatch(cmd, "compilers", args...)
		},
	}
}

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run <compiler> <raw...>",
		Short: "Compile and execute a code block",
		Long: `Compile and execute a code block. Text before the block is passed to the
compiler as arguments; put it after "--" so it is not read as boltbot flags.
Use "-" as the only raw argument to read the text from stdin.`,
		Example: "  boltbot run g132 -- -O2 \"$(cat main.md)\"\n  boltbot run g132 - < main.md",
		Args:    cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return dispatchSource(cmd, "run", args)
		},
	}
}

func asmCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "asm <compiler> <raw...>",
		Aliases: []string{"disas", "disassemble"},
		Short:   "Show the assembly of a code block",
		Args:    cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return dispatchSource(cmd, "asm", args)
		},
	}
}

// dispatchSource resolves "-" to stdin before dispatching.
func dispatchSource(cmd *cobra.Command, name string, args []string) error {
	raw := strings.Join(args[1:], " ")
	if raw == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		raw = string(data)
	}
	return dispatch(cmd, name, args[0], raw)
}

// dispatch runs one command through the same dispatcher the webhook uses.
// The cooldown is off since a terminal has a single user.
func dispatch(cmd *cobra.Command, name string, args ...string) error {
	botCfg := *cfg
	botCfg.Bot.Cooldown = 0
	d := app.NewDispatcher(&botCfg, newProvider(cfg))

	text := strings.Join(append([]string{name}, args...), " ")
	reply := d.Handle(cmd.Context(), bot.Invocation{User: "cli", Text: text})

	fmt.Fprintln(cmd.OutOrStdout(), reply.Content)
	if reply.Status != bot.StatusOK {
		return fmt.Errorf("command failed: %s", reply.Status)
	}
	return nil
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
