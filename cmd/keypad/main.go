package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"fincalc/internal/keypad"

	"golang.org/x/term"
)

var (
	configPath = flag.String("config", "settings/keypad.json", "path to the keypad settings file")
	scientific = flag.Bool("scientific", false, "enable the scientific keypad")
	token      = flag.String("token", "", "API token for uploading history")
	workers    = flag.Int("workers", 0, "number of goroutines uploading history")
	verbose    = flag.Bool("v", false, "log ignored keys")
)

func main() {
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	var config keypad.Config
	f, err := os.Open(*configPath)
	if err != nil {
		log.Warn("error opening settings, continuing without", "path", *configPath, "err", err)
	} else {
		if err = json.NewDecoder(f).Decode(&config); err != nil {
			log.Error("bad settings file", "path", *configPath, "err", err)
			os.Exit(1)
		}
		f.Close()
	}

	if *scientific {
		config.Scientific = true
	}
	if *token != "" {
		config.Token = *token
	}
	if *workers > 0 {
		config.MaxWorkers = *workers
	}

	if term.IsTerminal(int(os.Stdin.Fd())) {
		config.Prompt = "> "
	}

	k, err := keypad.New(config, log)
	if err != nil {
		log.Error("create keypad", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := k.Run(ctx, os.Stdin, os.Stdout); err != nil && ctx.Err() == nil {
		log.Error("keypad", "err", err)
		os.Exit(1)
	}
}
