package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/fedragon/go-mediasort/internal"
	"github.com/fedragon/go-mediasort/internal/config"

	"github.com/mattn/go-isatty"
	"github.com/mitchellh/go-homedir"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

const (
	exitNotDirectory        = -2
	exitUnsupportedPlatform = -1
)

func main() {
	app := &cli.App{
		Name:  "mediasort",
		Usage: "Sort photos into folders by capture date, optionally per camera model",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "TOML configuration file",
				Value: config.DefaultPath,
			},
			&cli.StringFlag{
				Name:  "hash",
				Usage: "hash algorithm used to compare colliding files: sha256 or blake3",
			},
			&cli.StringFlag{
				Name:  "types",
				Usage: "comma-separated list of extensions to sort, e.g. .jpg,.jpeg (default: every file)",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "debug, info, warn or error",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "log what would happen without creating or moving anything",
			},
			&cli.BoolFlag{
				Name:  "progress",
				Usage: "show a progress spinner when stderr is a terminal",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "date",
				Usage:     "Move files to <dst>/<year>/<month>; files without a capture date stay where they are",
				ArgsUsage: "<src> <dst>",
				Action:    sortAction(internal.ByDate),
			},
			{
				Name:      "device",
				Usage:     "Move files to <dst>/<model>/<year>/<month>, diverting duplicates and unclear files",
				ArgsUsage: "<src> <dst>",
				Action:    sortAction(internal.ByDevice),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func sortAction(mode internal.Mode) cli.ActionFunc {
	return func(c *cli.Context) error {
		if c.NArg() != 2 {
			_ = cli.ShowSubcommandHelp(c)
			return fmt.Errorf("expected 2 arguments, got %d", c.NArg())
		}

		cfg, err := loadConfig(c)
		if err != nil {
			return err
		}

		logger, err := newLogger(cfg.LogLevel, isatty.IsTerminal(os.Stderr.Fd()))
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		src, err := homedir.Expand(c.Args().Get(0))
		if err != nil {
			return err
		}
		dst, err := homedir.Expand(c.Args().Get(1))
		if err != nil {
			return err
		}

		opts := internal.Options{
			Mode:          mode,
			Source:        src,
			Dest:          dst,
			Hash:          cfg.Hash,
			FileTypes:     cfg.FileTypes,
			QuarantineDir: cfg.QuarantineDir,
			SkippedDir:    cfg.SkippedDir,
			TokenLength:   cfg.TokenLength,
			DryRun:        c.Bool("dry-run"),
		}
		if cfg.Progress && isatty.IsTerminal(os.Stderr.Fd()) {
			opts.Progress = os.Stderr
		}

		if err := internal.NewRunner(logger, opts).Run(); err != nil {
			logger.Error("Run failed", zap.Error(err))
			return cli.Exit("", exitCode(err))
		}

		return nil
	}
}

// loadConfig reads the configuration file and applies the flags on top.
func loadConfig(c *cli.Context) (config.Config, error) {
	cfg, err := config.Load(c.String("config"), c.IsSet("config"))
	if err != nil {
		return cfg, err
	}

	if c.IsSet("hash") {
		cfg.SetHash(c.String("hash"))
	}
	if c.IsSet("types") {
		cfg.SetFileTypes(c.String("types"))
	}
	if c.IsSet("log-level") {
		cfg.SetLogLevel(c.String("log-level"))
	}
	if c.IsSet("progress") {
		cfg.Progress = c.Bool("progress")
	}

	return cfg, cfg.Validate()
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, internal.ErrNotDirectory):
		return exitNotDirectory
	case errors.Is(err, internal.ErrUnsupportedPlatform):
		return exitUnsupportedPlatform
	default:
		return 1
	}
}
