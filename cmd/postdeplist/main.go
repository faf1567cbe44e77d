package main

import (
	"context"
	"fmt"
	"os"

	"github.com/op/go-logging"
	"github.com/shini4i/postdeplist/cmd/postdeplist/command"
	"github.com/shini4i/postdeplist/internal/app"
	"github.com/shini4i/postdeplist/internal/credentials"
	"github.com/spf13/afero"
	"golang.org/x/term"
)

var version = "local"

var log = logging.MustGetLogger("postdeplist")

func loggingInit(debug bool) {
	backend := logging.NewLogBackend(os.Stdout, "", 0)
	logging.SetBackend(logging.NewBackendFormatter(backend, logging.MustStringFormatter(`%{message}`)))

	level := logging.INFO
	if debug {
		level = logging.DEBUG
	}
	logging.SetLevel(level, "")
}

func newCredentialsProvider(cfg app.Config) (credentials.Provider, error) {
	path := cfg.CredentialsFile
	if path == "" {
		var err error
		if path, err = credentials.DefaultPath(); err != nil {
			return nil, fmt.Errorf("resolve credentials path: %w", err)
		}
	}

	prompt := &credentials.Prompt{In: os.Stdin, Out: os.Stdout}
	if fd := int(os.Stdin.Fd()); term.IsTerminal(fd) {
		prompt.ReadSecret = func() (string, error) {
			secret, err := term.ReadPassword(fd)
			fmt.Fprintln(os.Stdout)
			return string(secret), err
		}
	}

	return &credentials.Chain{
		Store:  &credentials.FileStore{FS: afero.NewOsFs(), Path: path},
		Prompt: prompt,
		Log:    log,
	}, nil
}

func runApp(cfg app.Config) error {
	provider, err := newCredentialsProvider(cfg)
	if err != nil {
		return err
	}

	a, err := app.New(cfg, app.Dependencies{
		Logger:      log,
		Credentials: provider,
	})
	if err != nil {
		return err
	}

	return a.Run(context.Background())
}

func main() {
	opts := command.Options{
		Version:     version,
		InitLogging: loggingInit,
		RunApp:      runApp,
	}

	if err := command.Execute(opts, nil); err != nil {
		os.Exit(1)
	}
}
