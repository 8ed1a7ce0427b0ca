package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"echo-corridor/internal/config"
	"echo-corridor/internal/core"
	"echo-corridor/internal/input"
	"echo-corridor/internal/platform"
	"echo-corridor/internal/symbols"
	"echo-corridor/internal/transport/observer"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	flags := pflag.NewFlagSet("echo-corridor", pflag.ContinueOnError)
	configPath := flags.String("config", "", "путь к файлу конфигурации (yaml, json, toml)")
	flags.Bool("headless", false, "запуск без окна по встроенному сценарию ввода")
	flags.Int("headless_frames", 3600, "число кадров в режиме без окна")
	flags.Int64("seed", 0, "сид генератора, 0 означает случайный")
	flags.String("observer.addr", "", "адрес websocket-потока кадров, например 127.0.0.1:8787")
	flags.String("log_level", "info", "уровень логирования: debug, info, warn, error")
	flags.String("messages_path", "", "YAML-файл с пулами сообщений")
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	// Загружаем конфигурацию; явные флаги перекрывают файл и окружение
	v := viper.New()
	if err := v.BindPFlags(flags); err != nil {
		return fmt.Errorf("bind flags: %w", err)
	}
	cfg, err := config.LoadWith(v, *configPath)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	messages, err := symbols.Load(cfg.MessagesPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := core.Options{
		Logger:   logger,
		Messages: messages,
	}

	if cfg.Observer.Addr != "" {
		hub := observer.NewHub(cfg.Observer.BufferSize, logger)
		opts.Publisher = hub
		go func() {
			if err := hub.Serve(ctx, cfg.Observer.Addr); err != nil {
				logger.Error("observer stopped", "error", err)
			}
		}()
	}

	if cfg.Headless {
		return runHeadless(ctx, cfg, opts, logger)
	}

	opts.AudioSink = platform.NewAudioSink(cfg.Audio.AssetsDir, logger)
	game := platform.NewGame(cfg, func() *core.Sim {
		return core.NewSim(cfg, opts)
	}, logger)
	return game.Run()
}

// runHeadless прогоняет симуляцию по сценарию с фиксированным шагом
func runHeadless(ctx context.Context, cfg *config.Config, opts core.Options, logger *slog.Logger) error {
	dt := 1.0 / float64(cfg.TargetFPS)
	script := input.DefaultScript()
	sim := core.NewSim(cfg, opts)

	resets := 0
	var last core.Frame
	for i := 0; i < cfg.HeadlessFrames; i++ {
		if ctx.Err() != nil {
			logger.Info("interrupted", "frame", i)
			break
		}

		frame, err := sim.Tick(script.Next(dt))
		if err != nil {
			if !errors.Is(err, core.ErrReset) {
				return err
			}
			resets++
			logger.Info("restarting", "cause", err, "frame", i)
			sim = core.NewSim(cfg, opts)
			continue
		}
		last = frame
	}

	logger.Info("headless run finished",
		"frames", cfg.HeadlessFrames,
		"resets", resets,
		"zone", last.Zone,
		"level", last.Level,
		"tier", last.Tier,
		"distance", last.Metrics.TotalDistance,
		"chunks", last.Chunks,
	)
	return nil
}

func newLogger(level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("log level %q: %w", level, err)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})), nil
}
