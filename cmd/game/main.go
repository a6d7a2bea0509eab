package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/tomz197/circus/internal/config"
	"github.com/tomz197/circus/internal/loop/client"
	"github.com/tomz197/circus/internal/loop/server"
	"golang.org/x/term"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "game error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}

	// The terminal is the game screen, so logs go to a file or nowhere.
	var logOut io.Writer = io.Discard
	if path := config.GetEnv("CIRCUS_LOG_FILE", ""); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		logOut = f
	}
	logger := config.NewLoggerTo(logOut, "game")

	tuning, stopTuning, err := config.OpenTuning(logger)
	if err != nil {
		return err
	}
	defer stopTuning()

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("enable raw mode: %w", err)
	}
	defer func() {
		_ = term.Restore(fd, oldState)
	}()

	c, err := client.NewClient(server.NewHub(logger), bufio.NewReader(os.Stdin), os.Stdout, client.ClientOptions{
		Username: config.GetEnv("USER", "player"),
		Tuning:   tuning,
		Logger:   logger,
	})
	if err != nil {
		return err
	}
	return c.Run()
}
