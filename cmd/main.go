// Package main provides the CLI entrypoint of the aviators service.
// It wires subcommands (serve, migrate, jwt, generate, import, health, cache),
// loads configuration, and initializes logging.
package main

import (
	"aviators/internal/config"
	"aviators/pkg/logger"
	"context"
	"flag"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// main sets up the root Cobra command, loads configuration and logging, and
// registers subcommands before executing the CLI.
func main() {
	rootCmd := &cobra.Command{
		Use:   "aviators",
		Short: "Content, lead and analytics backend of the Aviators Training Centre site",
	}

	// there is no way to access flags before command execution in cobra.
	// configPath here is parsed using the standard flags package.
	// following line is just added to prevent errors when Cobra is parsing the flags.
	rootCmd.PersistentFlags().StringP("config", "c", "config.yml", "Config File Path")

	fs := flag.NewFlagSet("aviators", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	configPath := fs.String("c", "config.yml", "The config file path")
	_ = fs.Parse(configArgs(os.Args[1:]))

	log.Println("loading config ...")
	if err := config.LoadDotEnv(".env"); err != nil {
		log.Fatal("could not load .env file", err)
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("could not load config file", err)
	}

	logger.Setup(cfg.Environment)
	if cfg.LogLevel != "" {
		if err := logger.SetLevel(cfg.LogLevel); err != nil {
			log.Fatal("could not set log level", err)
		}
	}

	ctx := context.Background()

	defer func() {
		if p := recover(); p != nil {
			logger.Error(ctx, "captured panic, exiting...", zap.Any("panic", p))
			_ = logger.Get(ctx).Sync()

			panic(p)
		}
	}()

	rootCmd.AddCommand(
		migrateCommand(cfg),
		serveCommand(cfg),
		JWTCommand(cfg),
		generateCommand(cfg),
		importCommand(cfg),
		healthCommand(cfg),
		cacheCommand(cfg),
	)

	err = rootCmd.Execute()
	_ = logger.Get(ctx).Sync()
	if err != nil {
		os.Exit(1) //nolint: gocritic
	}
}

// configArgs picks the -c/--config flag out of args so subcommand flags do
// not trip the standard flag parser.
func configArgs(args []string) []string {
	for i, a := range args {
		switch a {
		case "-c", "--c", "-config", "--config":
			if i+1 < len(args) {
				return []string{"-c", args[i+1]}
			}
		}
		for _, p := range []string{"-c=", "--c=", "-config=", "--config="} {
			if len(a) > len(p) && a[:len(p)] == p {
				return []string{"-c", a[len(p):]}
			}
		}
	}

	return nil
}
