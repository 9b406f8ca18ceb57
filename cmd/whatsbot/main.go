package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"whatsbot/internal/bot"
	"whatsbot/internal/command"
	"whatsbot/internal/config"
	"whatsbot/internal/content"
	"whatsbot/internal/logging"
	"whatsbot/internal/storage"
	"whatsbot/internal/version"
	"whatsbot/internal/whatsapp"
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	os.Exit(code)
}

func run() (int, error) {
	cfg, err := config.New()
	if err != nil {
		return 0, fmt.Errorf("config: %w", err)
	}
	log := logging.New(cfg.LogLevel, cfg.LogFile)
	log.Info().Str("version", version.AppVersion).Msgf("starting %s", version.AppName)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := storage.New(cfg.StorePath, cfg.Prefix, log)
	if err != nil {
		return 0, fmt.Errorf("storage: %w", err)
	}
	defer store.Close()

	reg := content.LoadRegistry(cfg.QuotesPath, cfg.JokesPath, cfg.FactsPath, log)

	client, err := whatsapp.New(ctx, cfg.SessionPath, log)
	if err != nil {
		return 0, fmt.Errorf("whatsapp: %w", err)
	}

	engine := bot.New(client, store, reg, cfg.OwnerJID, log)
	defer engine.Shutdown()

	client.OnMessage = engine.HandleMessage
	client.OnParticipantsAdded = engine.HandleParticipantsAdded

	errCh := make(chan error, 1)
	go func() {
		errCh <- client.Run(ctx)
	}()

	engine.Reconcile(ctx)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	// The process supervisor (systemd, docker) restarts on non-zero exit;
	// shutdown exits clean.
	code := 0

	select {
	case s := <-sig:
		log.Info().Str("signal", s.String()).Msg("shutting down")
		cancel()
	case evt := <-command.SystemEvents():
		log.Info().Str("type", string(evt.Type)).Str("by", evt.By).Msg("system event")
		if evt.Type == command.SystemEventRestart {
			code = 1
		}
		cancel()
	case err := <-errCh:
		cancel()
		if err != nil {
			return 0, fmt.Errorf("whatsapp session: %w", err)
		}
	}

	engine.Shutdown()
	log.Info().Msg("exited cleanly")
	return code, nil
}
