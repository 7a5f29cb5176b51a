package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Kerhoff/weddingplanner/internal/api"
	"github.com/Kerhoff/weddingplanner/internal/auth"
	"github.com/Kerhoff/weddingplanner/internal/config"
	"github.com/Kerhoff/weddingplanner/internal/handlers"
	"github.com/Kerhoff/weddingplanner/internal/llm"
	"github.com/Kerhoff/weddingplanner/internal/metrics"
	"github.com/Kerhoff/weddingplanner/internal/planner"
	"github.com/Kerhoff/weddingplanner/internal/service"
	"github.com/Kerhoff/weddingplanner/internal/telegram"
	"github.com/Kerhoff/weddingplanner/internal/tier"
)

const shutdownTimeout = 10 * time.Second

func runServe(parent context.Context) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap((*config.Config).ValidateLLM)
	if err != nil {
		return err
	}
	defer app.close()
	l, cfg, svc := app.logger, app.cfg, app.svc

	l.Info("Starting wedding planner...")

	m, err := metrics.New(nil)
	if err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}

	model, closeModel, err := newCompleter(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeModel()

	generator := planner.NewGenerator(svc.Users, svc.Weddings, svc.Plans, model, l,
		planner.WithPolicies(tier.DefaultTable().WithModels(cfg.ModelBasic, cfg.ModelPremium)),
		planner.WithTimeout(cfg.LLMTimeout),
		planner.WithMetrics(m),
	)

	apiServer := api.NewServer(svc, generator, auth.NewTokenManager(cfg.JWTSecret, 0), m, l)
	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           apiServer.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		// Plan generation holds the request open for up to the model timeout.
		WriteTimeout: cfg.LLMTimeout + 30*time.Second,
	}

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsServer := &http.Server{
		Addr:              ":" + cfg.PrometheusPort,
		Handler:           metricsMux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	for _, srv := range []*http.Server{httpServer, metricsServer} {
		go func(srv *http.Server) {
			l.Infof("HTTP server listening on %s", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				l.WithError(err).WithField("addr", srv.Addr).Error("HTTP server error")
				stop()
			}
		}(srv)
	}

	if cfg.TelegramToken != "" {
		if err := startBot(ctx, app, m); err != nil {
			return err
		}
	} else {
		l.Warn("TELEGRAM_TOKEN not set, bot and reminders are disabled")
	}

	l.Info("Wedding planner started successfully")
	<-ctx.Done()

	l.Info("Shutting down HTTP servers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	for _, srv := range []*http.Server{httpServer, metricsServer} {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			l.WithError(err).WithField("addr", srv.Addr).Warn("Graceful shutdown failed")
		}
	}

	l.Info("Wedding planner stopped")
	return nil
}

// newCompleter returns the configured model client and its cleanup func.
func newCompleter(ctx context.Context, cfg *config.Config) (llm.Completer, func(), error) {
	switch cfg.LLMProvider {
	case config.ProviderGemini:
		c, err := llm.NewGeminiClient(ctx, cfg.GeminiAPIKey)
		if err != nil {
			return nil, nil, err
		}
		return c, func() { _ = c.Close() }, nil
	default:
		return llm.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL), func() {}, nil
	}
}

func startBot(ctx context.Context, app *app, m *metrics.Metrics) error {
	l, svc := app.logger, app.svc

	bot, err := telegram.NewBot(app.cfg.TelegramToken, l)
	if err != nil {
		return fmt.Errorf("failed to create Telegram bot: %w", err)
	}

	done := handlers.NewDoneHandler(svc, l)
	bot.RegisterCommand("start", handlers.NewStartHandler(svc, l))
	bot.RegisterCommand("help", handlers.NewHelpHandler(l))
	bot.RegisterCommand("tasks", handlers.NewTasksHandler(svc, l))
	bot.RegisterCommand("done", done)
	bot.RegisterCallback(handlers.DoneCallbackPrefix, done)

	go func() {
		if err := bot.Start(ctx); err != nil {
			l.WithError(err).Error("Bot error")
		}
	}()

	go svc.StartReminderScheduler(ctx, service.ReminderConfig{
		Interval:  app.cfg.ReminderInterval,
		Lookahead: app.cfg.ReminderLookahead,
		Metrics:   m,
	}, bot.SendMessage)

	return nil
}
