package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jrreynao/widgetamericanrent/internal/api"
	"github.com/jrreynao/widgetamericanrent/internal/auth"
	"github.com/jrreynao/widgetamericanrent/internal/config"
	"github.com/jrreynao/widgetamericanrent/internal/logger"
	"github.com/jrreynao/widgetamericanrent/internal/service"
	"github.com/jrreynao/widgetamericanrent/internal/web"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := logger.Init(logger.Config{Env: cfg.Env, Level: cfg.LogLevel})
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped with error", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	loadCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	catalog, err := service.LoadCatalog(loadCtx, cfg)
	cancel()
	if err != nil {
		return fmt.Errorf("catalog: %w", err)
	}
	log.Info("catalog loaded", zap.String("source", catalog.Source()))

	sender := service.NewMailSender(cfg)
	templates := service.NewTemplateStore(service.TemplateStoreConfig{
		BaseURL:  cfg.FrontendBase,
		CacheTTL: cfg.TemplateCacheTTL,
		Embedded: web.TemplatesFS,
	})
	deriver := service.NewDeriver(catalog, service.DeriverConfig{
		BusinessWhatsApp: cfg.BusinessWhatsApp,
		AgencyAddress:    cfg.AgencyAddress,
		AgencyMapURL:     cfg.AgencyMapURL,
	})

	quotes := service.NewQuoteService(templates, deriver, sender, service.QuoteConfig{
		AdminEmail: cfg.AdminEmail,
		FromName:   cfg.FromName,
		FromEmail:  cfg.FromEmail,
	})
	if n := service.NewWhatsAppNotifier(cfg); n != nil {
		quotes.WithNotifier(n)
		log.Info("business whatsapp notifications enabled")
	}

	jobs := service.NewJobService(sender, templates)
	scheduler, err := jobs.Start(cfg.SMTPProbeSchedule, cfg.TemplateWarmSchedule)
	if err != nil {
		return err
	}
	defer func() { <-scheduler.Stop().Done() }()

	router := api.NewRouter(api.RouterDeps{
		Quote:     api.NewQuoteHandler(quotes),
		Diag:      api.NewDiagHandler(cfg, sender, jobs, catalog.Source()),
		TestKey:   auth.NewTestKey(cfg.SMTPTestKey),
		Templates: web.TemplatesFS,
	})

	var handler http.Handler = router
	handler = api.AccessLog(handler)
	handler = api.CORS(cfg.CORSAllowedOrigins)(handler)
	handler = api.Recovery(handler)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		// El envío SMTP puede tardar hasta SMTP_TIMEOUT por correo.
		WriteTimeout: 2*cfg.SMTPTimeout + 30*time.Second,
		IdleTimeout:  time.Minute,
		ErrorLog:     zap.NewStdLog(log.Named("http")),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("server running",
			zap.String("addr", srv.Addr),
			zap.String("env", cfg.Env),
			zap.String("transport", sender.Name()),
			zap.Bool("remote_templates", templates.Remote()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("server stopped")
	return nil
}
