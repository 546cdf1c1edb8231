package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Mohsinsiddi/w3vault/internal/config"
	"github.com/Mohsinsiddi/w3vault/internal/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Version is the current release. Overridable via build ldflags:
//
//	go build -ldflags "-X github.com/Mohsinsiddi/w3vault/cmd.Version=1.2.3" .
var Version = "0.1.0"

var (
	cfgDir     string
	cfg        *config.Config
	log        *zap.Logger
	verbose    bool
	walletName string
	assumeYes  bool
)

// rootCmd is the top-level command.
var rootCmd = &cobra.Command{
	Use:   "w3vault",
	Short: "Deposit, fund gas and query the WBTC vault",
	Long: `w3vault — talk to the WBTC vault contract from your terminal or browser.

  Deposit WBTC, fund and withdraw gas, and look up a depositor's balance
  and beneficiary. Every action is one contract call signed by a local wallet.

Surfaces:
  w3vault serve      web page with the four vault forms
  w3vault tui        the same forms in the terminal
  w3vault deposit    one-shot commands (also fund-gas, withdraw-gas, query)

Settings live in ~/.w3vault/config.json; W3VAULT_* environment variables
and a .env file in the working directory override them.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		// A missing .env is the normal case.
		if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("loading .env: %w", err)
		}

		var err error
		cfg, err = config.Load(cfgDir)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		opts := logger.Options{Env: cfg.Env, Verbose: verbose}
		if cmd.Name() == "tui" {
			// The terminal surface owns the screen.
			opts.File = cfg.LogPath()
		}
		log, err = logger.New(opts)
		if err != nil {
			return fmt.Errorf("building logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			logger.Sync(log)
		}
	},
}

// Execute runs the root command.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, errLine(err))
		stop()
		os.Exit(1)
	}
}

func init() {
	// W3VAULT_CONFIG_DIR env var overrides --config flag.
	if envDir := os.Getenv(config.DirEnvVar); envDir != "" {
		cfgDir = envDir
	}

	rootCmd.PersistentFlags().StringVar(&cfgDir, "config", cfgDir, "config directory (default: ~/.w3vault)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().StringVarP(&walletName, "wallet", "w", "", "wallet to sign with (default: the configured default wallet)")
	rootCmd.PersistentFlags().BoolVarP(&assumeYes, "yes", "y", false, "approve account requests without asking")

	rootCmd.AddCommand(
		depositCmd,
		fundGasCmd,
		withdrawGasCmd,
		queryCmd,
		serveCmd,
		tuiCmd,
		walletCmd,
		configCmd,
		rpcCmd,
		unitsCmd,
	)
}
