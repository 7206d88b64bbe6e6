package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
)

const usage = `Usage: %s <command> [options]

Commands:
  predict   submit patient values from flags or a JSON file
  form      fill the form interactively, then submit and download
  serve     run the JSON front-end

Run "%[1]s <command> -h" for command options.
`

// errReported marks a failure that has already been shown to the user.
var errReported = errors.New("reported")

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "liverctl: load .env: %v\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := dispatch(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(os.Stderr, "liverctl: %v\n", err)
		}
		os.Exit(1)
	}
}

func dispatch(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	name := filepath.Base(os.Args[0])
	if len(args) == 0 {
		fmt.Fprintf(stderr, usage, name)
		return errors.New("missing command")
	}

	switch args[0] {
	case "predict":
		opts, err := parsePredictFlags(args[1:], stderr)
		if err != nil {
			return err
		}
		return withApp(ctx, opts.common, func(a *app) error {
			return runPredict(ctx, a, opts, stdout, stderr)
		})
	case "form":
		opts, err := parseFormFlags(args[1:], stderr)
		if err != nil {
			return err
		}
		return withApp(ctx, opts.common, func(a *app) error {
			return runForm(ctx, a, opts, stdin, stdout)
		})
	case "serve":
		opts, err := parseServeFlags(args[1:], stderr)
		if err != nil {
			return err
		}
		return withApp(ctx, opts.common, func(a *app) error {
			return runServe(ctx, a, opts)
		})
	case "-h", "--help", "help":
		fmt.Fprintf(stdout, usage, name)
		return nil
	default:
		fmt.Fprintf(stderr, usage, name)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func withApp(ctx context.Context, opts commonOptions, fn func(*app) error) error {
	a, err := newApp(ctx, opts)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}
