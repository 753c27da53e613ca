// Package app provides the application bootstrap and runtime orchestration.
//
// The App type wires together the backend client, controller, and renderers
// and exposes methods to run different operational modes:
//
//   - Serve mode: local web server hosting the dashboard UI
//   - CLI modes: one-shot operations (chats, analyze, reply, download,
//     kb, stats, auth) rendered as text on stdout
//
// The health and metrics server runs in the background in every mode that
// stays resident.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/lueurxax/chat-insight/internal/api"
	"github.com/lueurxax/chat-insight/internal/dashboard"
	"github.com/lueurxax/chat-insight/internal/daterange"
	"github.com/lueurxax/chat-insight/internal/platform/config"
	"github.com/lueurxax/chat-insight/internal/platform/observability"
	"github.com/lueurxax/chat-insight/internal/platform/worker"
	"github.com/lueurxax/chat-insight/internal/webui"
)

const (
	shutdownTimeout   = 5 * time.Second
	readHeaderTimeout = 10 * time.Second

	refreshWorkerName = "chat-refresh"

	// statsRefreshFactor spaces stats refreshes relative to chat refreshes.
	statsRefreshFactor = 4

	logFieldPort = "port"
)

// Options carries the per-invocation parameters of the CLI modes.
type Options struct {
	ChatID  int64
	Preset  string
	From    string
	To      string
	Text    string
	KBType  string
	Content string
}

// App holds the application dependencies and provides methods to run different modes.
type App struct {
	cfg    *config.Config
	client *api.Client
	ctrl   *dashboard.Controller
	logger *zerolog.Logger
}

// New creates a new App instance from configuration.
func New(cfg *config.Config, logger *zerolog.Logger) *App {
	client := api.New(api.Config{
		BaseURL: cfg.APIBaseURL,
		Timeout: cfg.APITimeout,
	})

	ctrl := dashboard.New(dashboard.Config{
		API:    client,
		Saver:  &dashboard.DirSaver{Dir: cfg.DownloadDir},
		Logger: logger,
		Preset: cfg.Preset(),
	})

	return &App{
		cfg:    cfg,
		client: client,
		ctrl:   ctrl,
		logger: logger,
	}
}

// StartHealthServer starts the health check and metrics server.
// Readiness follows backend reachability via the auth status endpoint.
func (a *App) StartHealthServer(ctx context.Context) error {
	ready := func(ctx context.Context) error {
		_, err := a.client.AuthStatus(ctx)

		return err
	}

	return observability.NewServer(ready, a.cfg.HealthPort, a.logger).Start(ctx)
}

// RunServe hosts the dashboard web UI until the context is canceled.
func (a *App) RunServe(ctx context.Context) error {
	handler, err := webui.NewHandler(a.ctrl, a.logger)
	if err != nil {
		return fmt.Errorf("web ui init: %w", err)
	}

	mux := http.NewServeMux()
	handler.Register(mux)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.cfg.HTTPPort),
		Handler:           mux,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)

		defer cancel()

		//nolint:errcheck,contextcheck // shutdown in signal handler is best-effort, non-inherited context intentional
		_ = srv.Shutdown(shutdownCtx)
	}()

	if a.cfg.RefreshInterval > 0 {
		go a.runRefreshLoop(ctx)
	}

	a.warmUp(ctx)

	a.logger.Info().Int(logFieldPort, a.cfg.HTTPPort).Msg("dashboard server starting")

	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server error: %w", err)
	}

	return ctx.Err()
}

// warmUp preloads session state so the first page render is populated.
// Failures surface as operation states on the dashboard.
func (a *App) warmUp(ctx context.Context) {
	if _, err := a.ctrl.RefreshAuth(ctx); err != nil {
		a.logger.Warn().Err(err).Msg("auth status unavailable")
	}

	if err := a.ctrl.LoadChats(ctx); err != nil {
		a.logger.Warn().Err(err).Msg("initial chat list load failed")
	}

	if _, err := a.ctrl.RefreshStats(ctx); err != nil {
		a.logger.Warn().Err(err).Msg("analytics stats unavailable")
	}
}

func (a *App) runRefreshLoop(ctx context.Context) {
	err := worker.SingleTickerLoop(ctx, worker.SingleTickerConfig{
		Name:     refreshWorkerName,
		Interval: a.cfg.RefreshInterval,
		OnTick: func(ctx context.Context) {
			defer worker.RecoverPanic(a.logger, "chat list refresh")

			if err := a.ctrl.LoadChats(ctx); err != nil {
				a.logger.Warn().Err(err).Msg("background chat refresh failed")
			}
		},
		SecondaryInterval: a.cfg.RefreshInterval * statsRefreshFactor,
		OnSecondaryTick: func(ctx context.Context) {
			defer worker.RecoverPanic(a.logger, "stats refresh")

			if _, err := a.ctrl.RefreshStats(ctx); err != nil {
				a.logger.Warn().Err(err).Msg("background stats refresh failed")
			}
		},
		Logger: a.logger,
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		a.logger.Error().Err(err).Msg("refresh loop error")
	}
}

// RunChats loads and prints the chat list for the selected window.
func (a *App) RunChats(ctx context.Context, opts Options) error {
	if err := a.applyWindow(opts); err != nil {
		return err
	}

	if err := a.ctrl.LoadChats(ctx); err != nil {
		return err
	}

	return a.render()
}

// RunAnalyze analyzes one chat and prints the result.
func (a *App) RunAnalyze(ctx context.Context, opts Options) error {
	if err := a.applyWindow(opts); err != nil {
		return err
	}

	a.ctrl.SelectChat(opts.ChatID)

	if _, err := a.ctrl.AnalyzeChat(ctx, opts.ChatID); err != nil {
		return err
	}

	return a.render()
}

// RunReply sends a reply to one chat.
func (a *App) RunReply(ctx context.Context, opts Options) error {
	if err := a.ctrl.SendReply(ctx, opts.ChatID, opts.Text); err != nil {
		return err
	}

	a.logger.Info().Int64("chat_id", opts.ChatID).Msg("reply sent")

	return nil
}

// RunDownload fetches the analytics report and saves it to the download dir.
func (a *App) RunDownload(ctx context.Context) error {
	name, err := a.ctrl.DownloadAnalytics(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "saved %s\n", name)

	return nil
}

// RunKnowledge loads the knowledge-base blob, or saves it when content is given.
func (a *App) RunKnowledge(ctx context.Context, opts Options) error {
	kbType := api.KnowledgeType(opts.KBType)

	if opts.Content != "" {
		if err := a.ctrl.SaveKnowledgeBase(ctx, kbType, opts.Content); err != nil {
			return err
		}

		a.logger.Info().Str("type", opts.KBType).Msg("knowledge base saved")

		return nil
	}

	content, err := a.ctrl.LoadKnowledgeBase(ctx, kbType)
	if err != nil {
		return err
	}

	fmt.Fprintln(os.Stdout, content)

	return nil
}

// RunStats prints aggregate analytics.
func (a *App) RunStats(ctx context.Context) error {
	if _, err := a.ctrl.RefreshStats(ctx); err != nil {
		return err
	}

	return a.render()
}

// RunAuth prints the messaging session state.
func (a *App) RunAuth(ctx context.Context) error {
	if _, err := a.ctrl.RefreshAuth(ctx); err != nil {
		return err
	}

	return a.render()
}

func (a *App) applyWindow(opts Options) error {
	if opts.From != "" && opts.To != "" {
		start, err := daterange.ParseFlexible(opts.From)
		if err != nil {
			return fmt.Errorf("parsing --from: %w", err)
		}

		end, err := daterange.ParseFlexible(opts.To)
		if err != nil {
			return fmt.Errorf("parsing --to: %w", err)
		}

		a.ctrl.SetCustomRange(start, end)

		return nil
	}

	if opts.Preset != "" {
		a.ctrl.SetPreset(daterange.Preset(opts.Preset))
	}

	return nil
}

func (a *App) render() error {
	return dashboard.RenderText(os.Stdout, a.ctrl.Snapshot())
}
