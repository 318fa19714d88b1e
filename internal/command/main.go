// Package command implements the pdf-organizer command line interface.
package command

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/spf13/afero"
	"github.com/urfave/cli/v2"

	"github.com/Epistemic-Technology/pdf-organizer/internal/config"
	"github.com/Epistemic-Technology/pdf-organizer/internal/logger"
	"github.com/Epistemic-Technology/pdf-organizer/internal/organizer"
	"github.com/Epistemic-Technology/pdf-organizer/internal/sources"
)

const (
	envKey        = "env"
	paramLogLevel = "log-level"
)

// Env carries what every command needs.
type Env struct {
	Fs        afero.Fs
	Organizer *organizer.Organizer
	Resolver  *sources.Resolver
	Log       logger.Logger
	Out       io.Writer
}

// NewEnv builds an Env on the OS filesystem from the process configuration.
// A non-empty logLevel overrides the configured level.
func NewEnv(logLevel string) (*Env, error) {
	conf, err := config.Parse()
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		conf.Logger.Level = logLevel
	}

	// Status lines go to stderr without timestamps unless an output is configured
	var log logger.Logger
	if conf.Logger.Output == "" {
		log = logger.NewWriterLogger(os.Stderr, logger.ParseLevel(conf.Logger.Level))
	} else {
		log, err = logger.NewLogger(conf.LogConfig())
		if err != nil {
			return nil, err
		}
	}

	fs := afero.NewOsFs()
	return &Env{
		Fs:        fs,
		Organizer: organizer.New(fs, log, organizer.WithConfiguration(conf.PDF.Configuration())),
		Resolver:  sources.NewResolverFromConfig(conf, fs, log),
		Log:       log,
		Out:       os.Stdout,
	}, nil
}

// NewApp assembles the CLI. When env is nil it is built from the process
// configuration before any command runs.
func NewApp(name, usage string, env *Env) *cli.App {
	app := &cli.App{
		Name:  name,
		Usage: usage,
		Commands: []*cli.Command{
			MergeCommand(),
			SplitCommand(),
			SelectCommand(),
			ExtractImagesCommand(),
			PageCountCommand(),
		},
		Metadata: map[string]any{},
		Before: func(cCtx *cli.Context) error {
			if env == nil {
				built, err := NewEnv(cCtx.String(paramLogLevel))
				if err != nil {
					return err
				}
				env = built
			}
			cCtx.App.Metadata[envKey] = env
			return nil
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    paramLogLevel,
				EnvVars: []string{"PDF_ORGANIZER_LOG_LEVEL"},
				Usage:   "Set logging level (debug, info, warn, error)",
			},
		},
	}

	app.ExitErrHandler = func(cCtx *cli.Context, err error) {
		if err == nil {
			return
		}
		// Organizer failures were already reported by the operation's status line
		if organizer.KindOf(err) != "" {
			return
		}
		fmt.Fprintf(cCtx.App.ErrWriter, "error: %v\n", err)
	}

	sort.Sort(cli.FlagsByName(app.Flags))
	sort.Sort(cli.CommandsByName(app.Commands))

	return app
}

func Main(name string, usage string) {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	app := NewApp(name, usage, nil)
	if err := app.RunContext(ctx, os.Args); err != nil {
		os.Exit(1)
	}
}

func getEnv(cCtx *cli.Context) (*Env, error) {
	env, ok := cCtx.App.Metadata[envKey].(*Env)
	if !ok {
		return nil, errors.New("command environment is not initialized")
	}
	return env, nil
}
