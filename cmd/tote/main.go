package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/totehq/tote/internal/app"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("tote", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "override config path (optional)")
	prefsPath := fs.String("prefs", "", "override preferences path (optional)")
	fs.Usage = func() { usage(stderr, fs) }
	if err := fs.Parse(args); err != nil {
		return 2
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts := app.Options{ConfigPath: *configPath, PrefsPath: *prefsPath}
	rest := fs.Args()

	var err error
	switch {
	case len(rest) == 0:
		err = app.Run(ctx, opts)
	case rest[0] == "demo":
		opts.Demo = true
		err = app.Run(ctx, opts)
	case rest[0] == "help":
		usage(stdout, fs)
		return 0
	default:
		cmd, ok := commands[rest[0]]
		if !ok {
			fmt.Fprintf(stderr, "tote: unknown command %q\n", rest[0])
			usage(stderr, fs)
			return 2
		}
		err = withEnv(ctx, opts, func(env *app.Env) error {
			return cmd(ctx, env, rest[1:], stdout)
		})
	}

	if err != nil {
		fmt.Fprintf(stderr, "tote: %v\n", err)
		return 1
	}
	return 0
}

func withEnv(ctx context.Context, opts app.Options, fn func(*app.Env) error) error {
	env, err := app.Build(ctx, opts)
	if err != nil {
		return err
	}
	defer env.Close()
	return fn(env)
}

func usage(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprint(w, `usage: tote [flags] [command]

commands:
  (none)      run the storefront
  demo        run the storefront against a seeded local backend
  signup      create a user and log in as it
  address     add, update or delete a delivery address
  admin       manage products, sections and types

flags:
`)
	fs.SetOutput(w)
	fs.PrintDefaults()
}
