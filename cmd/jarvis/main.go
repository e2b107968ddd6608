package main

import (
	"context"
	log "log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/joho/godotenv"
	cli "github.com/spf13/pflag"

	"jarvis/internal/apps"
	"jarvis/internal/audio"
	"jarvis/internal/brain"
	"jarvis/internal/bus"
	"jarvis/internal/config"
	"jarvis/internal/ipc"
	"jarvis/internal/jarvis"
	"jarvis/internal/logging"
	"jarvis/internal/memory"
	"jarvis/internal/notify"
	"jarvis/internal/proxy"
	"jarvis/internal/speech"
	"jarvis/internal/tts"
	"jarvis/internal/vad"
	"jarvis/pkg/stt"
)

func main() {
	configPath := cli.StringP("config", "c", "jarvis.yaml", "Config file path")
	envFile := cli.StringP("env", "e", ".env", "Env file path")
	logLevel := cli.StringP("log", "l", "info", "Log level")
	mode := cli.StringP("mode", "m", "listen", "listen: continuous, trigger: one turn per jarvis-ctl trigger")
	busURL := cli.StringP("bus", "b", "", "Websocket hub url (optional)")
	proxyAddr := cli.StringP("proxy", "p", "", "Socks proxy address for the openai brain (optional)")
	dump := cli.String("dump", "", "Write the last captured clip to this WAV file")
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpClient, err := proxy.NewSocksClient(*proxyAddr)
	if err != nil {
		log.Error("Failed to dial socks proxy", "proxy", *proxyAddr, "err", err)
		os.Exit(1)
	}

	b, err := brain.New(cfg.Brain, httpClient)
	if err != nil {
		log.Error("Failed to build brain", "kind", cfg.Brain.Kind, "err", err)
		os.Exit(1)
	}
	log.Debug("Loaded brain", "kind", cfg.Brain.Kind)

	rec := audio.NewRecorder(vadConfig(cfg.Capture), cfg.Capture.FrameSize)
	if err := rec.Init(); err != nil {
		log.Error("Failed to init audio", "err", err)
		os.Exit(1)
	}
	defer rec.Close()
	if cfg.Capture.Duck {
		rec.Ducker = audio.NewDucker([]string{notify.AppName, "espeak-ng", "piper"}, 10)
	}
	rec.DumpPath = *dump

	log.Debug("Loaded recorder")

	whisper, err := stt.NewTranscriber(cfg.STT.ModelPath)
	if err != nil {
		log.Error("Failed to init whisper", "err", err)
		os.Exit(1)
	}
	defer whisper.Close()

	opt := stt.EnglishGreedy(cfg.STT.Threads)
	opt.Language = cfg.STT.Language

	speaker, err := tts.New(cfg.TTS)
	if err != nil {
		log.Error("Failed to init tts", "err", err)
		os.Exit(1)
	}

	log.Debug("Loaded whisper", "model", cfg.STT.ModelPath)

	deps := jarvis.Deps{
		User:   cfg.UserName,
		Ears:   rec,
		Voice:  speech.NewPipeline(stt.NewEngine(whisper, opt), speaker),
		Brain:  b,
		Memory: memory.NewStore(cfg.MemoryFile, cfg.UserName),
		Apps:   apps.NewLauncher(appTable(cfg.Apps)),
		Cue:    notify.NewCue(cfg.Cue.Sound, cfg.Cue.Desktop),
	}

	var hub *bus.Bus
	if *busURL != "" {
		hub, err = bus.NewBus(*busURL)
		if err != nil {
			log.Error("Bad bus url", "err", err)
			os.Exit(1)
		}
		if err := hub.Connect(ctx); err != nil {
			log.Warn("Bus unavailable, will retry on publish", "err", err)
		}
		defer hub.Close()
		deps.Bus = hub
	}

	var triggers <-chan struct{}
	switch *mode {
	case "listen":
	case "trigger":
		triggers, err = ipc.Triggers(ctx, ipc.SocketPath, stop)
		if err != nil {
			log.Error("Failed ipc server", "err", err)
			os.Exit(1)
		}
		if hub != nil {
			if remote, err := hub.Triggers(ctx); err == nil {
				triggers = merge(ctx, triggers, remote)
			}
		}
		log.Info("Waiting for triggers", "socket", ipc.SocketPath)
	default:
		log.Error("Unknown mode", "mode", *mode)
		os.Exit(1)
	}

	log.Info("Boot up - successful")

	if err := jarvis.New(deps).Run(ctx, triggers); err != nil {
		log.Error("Jarvis stopped", "err", err)
		os.Exit(1)
	}
	log.Info("Jarvis offline")
}

func vadConfig(c config.Capture) vad.Config {
	return vad.Config{
		SampleRate:       c.SampleRate,
		StartThreshold:   c.StartThreshold,
		SilenceThreshold: c.SilenceThreshold,
		SilenceDuration:  c.SilenceDuration,
		MaxDuration:      c.MaxDuration,
		PreRoll:          c.PreRoll,
	}
}

func appTable(cfg []config.App) []apps.Entry {
	if len(cfg) == 0 {
		return nil
	}
	table := make([]apps.Entry, len(cfg))
	for i, a := range cfg {
		table[i] = apps.Entry{Name: a.Name, Target: a.Target}
	}
	return table
}

// merge fans several trigger sources into one that closes once all of them
// have.
func merge(ctx context.Context, sources ...<-chan struct{}) <-chan struct{} {
	out := make(chan struct{})
	var wg sync.WaitGroup
	for _, src := range sources {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range src {
				select {
				case out <- struct{}{}:
				case <-ctx.Done():
					return
				}
			}
		}()
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}
