package main

import (
	"context"
	log "log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	cli "github.com/spf13/pflag"

	"jarvis/internal/api"
	"jarvis/internal/brain"
	"jarvis/internal/config"
	"jarvis/internal/logging"
	"jarvis/internal/speech"
	"jarvis/pkg/stt"
)

func main() {
	configPath := cli.StringP("config", "c", "jarvis.yaml", "Config file path")
	envFile := cli.StringP("env", "e", ".env", "Env file path")
	logLevel := cli.StringP("log", "l", "info", "Log level")
	addr := cli.StringP("addr", "a", "", "Listen address (default from config, 0.0.0.0:8000)")
	echo := cli.Bool("echo", false, "Reply with the transcript instead of asking the brain")
	cli.Parse()

	logging.Setup(*logLevel)
	log.Info("Booting up")

	if err := godotenv.Load(*envFile); err != nil {
		log.Debug("No env file", "path", *envFile)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("Failed to load config", "err", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.API.Addr = *addr
	}

	b, err := brain.New(cfg.Brain, nil)
	if err != nil {
		log.Error("Failed to build brain", "kind", cfg.Brain.Kind, "err", err)
		os.Exit(1)
	}

	whisper, err := stt.NewTranscriber(cfg.STT.ModelPath)
	if err != nil {
		log.Error("Failed to init whisper", "err", err)
		os.Exit(1)
	}
	defer whisper.Close()

	opt := stt.EnglishGreedy(cfg.STT.Threads)
	opt.Language = cfg.STT.Language
	voice := speech.NewPipeline(stt.NewEngine(whisper, opt), nil)

	srv := api.NewServer(b, voice, api.Options{
		MaxUpload: cfg.API.MaxUpload,
		TempDir:   cfg.API.TempDir,
		Echo:      *echo,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("Boot up - successful", "brain", cfg.Brain.Kind, "echo", *echo)

	if err := srv.ListenAndServe(ctx, cfg.API.Addr); err != nil {
		log.Error("Server failed", "err", err)
		os.Exit(1)
	}
	log.Info("Server stopped")
}
