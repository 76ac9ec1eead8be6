// Package main sorts or previews a folder of camera trap images by whether
// they contain animals.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"animalfinder/internal/app"
	"animalfinder/internal/config"
	"animalfinder/internal/logger"
	"animalfinder/internal/services/imageio"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"
)

const (
	flagMode  = "mode"
	flagDebug = "debug"

	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stderr io.Writer) int {
	cliApp := &cli.App{
		Name:      "animalfinder",
		Usage:     "find the images of a folder that contain animals",
		ArgsUsage: "FOLDER",
		UsageText: "animalfinder [--mode sort|display] [--debug] FOLDER",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  flagMode,
				Value: app.ModeDisplay,
				Usage: "`MODE` is sort (move files into animals and no_animals) or display (show detections)",
			},
			&cli.BoolFlag{
				Name:  flagDebug,
				Usage: "enable debug logging",
			},
		},
		Writer:    stderr,
		ErrWriter: stderr,
		OnUsageError: func(c *cli.Context, err error, isSubcommand bool) error {
			return &usageError{err: err}
		},
		Action: func(c *cli.Context) error {
			return action(c, stderr)
		},
	}

	err := cliApp.RunContext(ctx, flagsFirst(args))
	if err == nil {
		return exitOK
	}

	var usageErr *usageError
	var validationErr *imageio.ValidationError
	switch {
	case errors.As(err, &usageErr):
		fmt.Fprintf(stderr, "Incorrect usage: %v\n", usageErr.err)
		fmt.Fprintln(stderr, cliApp.UsageText)
		return exitUsage
	case errors.As(err, &validationErr):
		red := color.New(color.FgRed)
		red.Fprintf(stderr, "%d file(s) are not images, nothing was moved:\n", len(validationErr.Paths))
		for _, cause := range validationErr.Causes() {
			red.Fprintf(stderr, "  %v\n", cause)
		}
		return exitFailure
	default:
		return exitFailure
	}
}

// flagsFirst moves flags written after FOLDER in front of it, since urfave/cli
// stops parsing flags at the first positional argument. Everything after a
// "--" stays positional.
func flagsFirst(args []string) []string {
	if len(args) == 0 {
		return args
	}

	flags := make([]string, 0, len(args))
	var positional []string
	terminated := false
	for i := 1; i < len(args); i++ {
		arg := args[i]
		switch {
		case terminated:
			positional = append(positional, arg)
		case arg == "--":
			terminated = true
		case len(arg) > 1 && strings.HasPrefix(arg, "-"):
			flags = append(flags, arg)
			name := strings.TrimLeft(arg, "-")
			if name == flagMode && i+1 < len(args) {
				i++
				flags = append(flags, args[i])
			}
		default:
			positional = append(positional, arg)
		}
	}

	out := append([]string{args[0]}, flags...)
	if terminated {
		out = append(out, "--")
	}
	return append(out, positional...)
}

func action(c *cli.Context, stderr io.Writer) error {
	mode := c.String(flagMode)
	if mode != app.ModeSort && mode != app.ModeDisplay {
		return &usageError{err: fmt.Errorf("invalid mode %q", mode)}
	}
	if c.NArg() != 1 {
		return &usageError{err: errors.New("expected exactly one FOLDER argument")}
	}
	folder := c.Args().First()

	cfg := config.Load()
	log, err := logger.NewLogger(cfg)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to create logger: %v\n", err)
		return err
	}
	defer log.Sync()
	if c.Bool(flagDebug) {
		log.SetDebug(true)
	}

	a, err := app.NewApp(cfg, log)
	if err != nil {
		log.Error("Startup failed: %v", err)
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Warning("Failed to release resources: %v", err)
		}
	}()

	err = a.Run(c.Context, mode, folder)
	var validationErr *imageio.ValidationError
	if err != nil && !errors.As(err, &validationErr) {
		log.Error("%v", err)
	}
	return err
}
