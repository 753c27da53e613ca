package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/lueurxax/chat-insight/internal/app"
	"github.com/lueurxax/chat-insight/internal/platform/config"
)

func main() {
	mode := flag.String("mode", "serve", "Run mode (serve, chats, analyze, reply, download, kb, stats, auth)")

	opts := app.Options{}
	flag.Int64Var(&opts.ChatID, "chat", 0, "Chat id (analyze, reply)")
	flag.StringVar(&opts.Preset, "preset", "", "Date preset in hours: 24, 48, 168, 720")
	flag.StringVar(&opts.From, "from", "", "Custom window start (any common date format)")
	flag.StringVar(&opts.To, "to", "", "Custom window end")
	flag.StringVar(&opts.Text, "text", "", "Reply text (reply)")
	flag.StringVar(&opts.KBType, "kb-type", "prices", "Knowledge base type: prices, instructions")
	flag.StringVar(&opts.Content, "content", "", "Knowledge base content; empty loads instead of saving (kb)")

	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := newLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application := app.New(cfg, &logger)

	if *mode == "serve" {
		// Health server only matters for the resident mode
		go func() {
			if err := application.StartHealthServer(ctx); err != nil {
				logger.Error().Err(err).Msg("health check server error")
			}
		}()
	}

	if err := runMode(ctx, application, *mode, opts); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Info().Msg("application stopped")
			return
		}

		logger.Fatal().Err(err).Msg("application error")
	}
}

func newLogger(appEnv string) zerolog.Logger {
	if appEnv == "local" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Timestamp().Logger()
	}

	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}

func runMode(ctx context.Context, application *app.App, mode string, opts app.Options) error {
	switch mode {
	case "serve":
		return application.RunServe(ctx)
	case "chats":
		return application.RunChats(ctx, opts)
	case "analyze":
		return application.RunAnalyze(ctx, opts)
	case "reply":
		return application.RunReply(ctx, opts)
	case "download":
		return application.RunDownload(ctx)
	case "kb":
		return application.RunKnowledge(ctx, opts)
	case "stats":
		return application.RunStats(ctx)
	case "auth":
		return application.RunAuth(ctx)
	default:
		log.Fatalf("Usage: %s --mode=[serve|chats|analyze|reply|download|kb|stats|auth]", os.Args[0])

		return nil
	}
}
