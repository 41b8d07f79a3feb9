package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"fincalc/internal/rpc"
	"fincalc/internal/server"
	"fincalc/internal/storage"
	postfixnotation "fincalc/pkg/postfix_notation"
)

var (
	configPath = flag.String("config", "settings/server.json", "path to the server settings file")
	port       = flag.Int("port", 0, "HTTP port, overrides the settings file and PORT")
	grpcPort   = flag.Int("grpc-port", 0, "gRPC port, overrides the settings file")
)

func main() {
	flag.Parse()

	var config server.Config
	f, err := os.Open(*configPath)
	if err != nil {
		slog.Warn("error opening settings, continuing without", "path", *configPath, "err", err)
	} else {
		if err = json.NewDecoder(f).Decode(&config); err != nil {
			slog.Error("bad settings file", "path", *configPath, "err", err)
			os.Exit(1)
		}
		f.Close()
	}

	if v, err := strconv.Atoi(os.Getenv("PORT")); err == nil {
		config.Port = v
	}
	if v := os.Getenv("FINCALC_SECRET"); v != "" {
		config.Secret = v
	}
	if *port > 0 {
		config.Port = *port
	}
	if *grpcPort > 0 {
		config.GRPCPort = *grpcPort
	}
	config = config.Normalize()

	var level slog.Level
	if err := level.UnmarshalText([]byte(config.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(log)

	store, err := storage.Open(config.DBPath, config.HistoryLimit)
	if err != nil {
		log.Error("open storage", "path", config.DBPath, "err", err)
		os.Exit(1)
	}
	defer store.Close()
	log.Info("storage opened", "path", config.DBPath, "history_limit", store.HistoryLimit())

	srv, err := server.New(config, store, log)
	if err != nil {
		log.Error("create server", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if config.GRPCPort > 0 {
		opts := postfixnotation.Options{Grammar: postfixnotation.Scientific}
		log.Info("grpc evaluation", "grammar", opts.Grammar.String(), "angle", opts.Angle.String())
		svc := rpc.NewService(opts, log)
		go func() {
			if err := rpc.Serve(ctx, config.GRPCPort, svc, log); err != nil {
				log.Error("grpc server", "err", err)
				stop()
			}
		}()
	}

	if err := srv.Run(ctx); err != nil {
		log.Error("http server", "err", err)
		os.Exit(1)
	}
}
