package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"flight-price-tracker/internal/domain/repository"
	"flight-price-tracker/internal/infrastructure/config"
	"flight-price-tracker/internal/infrastructure/oauth"
	"flight-price-tracker/internal/infrastructure/persistence"
	"flight-price-tracker/internal/infrastructure/router"
	"flight-price-tracker/internal/infrastructure/secrets"
	"flight-price-tracker/internal/interface/gmail"
	"flight-price-tracker/internal/interface/imap"
	"flight-price-tracker/internal/interface/mbox"
	"flight-price-tracker/internal/interface/report"
	repo "flight-price-tracker/internal/interface/repository"
	"flight-price-tracker/internal/usecase"
	"flight-price-tracker/pkg/logger"
	"flight-price-tracker/pkg/metrics"
	"flight-price-tracker/pkg/utils"
	"flight-price-tracker/templates"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.NewLogger("info", false).Fatal("Failed to load config", "error", err)
	}

	// Command-line flags override the environment
	flag.StringVar(&cfg.Source, "source", cfg.Source, "message source: mbox, gmail or imap")
	flag.StringVar(&cfg.MboxPath, "mbox", cfg.MboxPath, "path to the mbox archive")
	flag.StringVar(&cfg.CSVPath, "csv", cfg.CSVPath, "path of the CSV export")
	watchFlag := flag.Duration("watch", cfg.WatchInterval, "repeat the run at this interval (0 runs once)")
	flag.Parse()
	cfg.WatchInterval = *watchFlag
	cfg.Normalize()

	// Create logger
	log := logger.NewLogger(cfg.LogLevel, cfg.LogDevelopment)
	defer log.Sync()
	log.Info("Starting Flight Price Tracker", "version", cfg.AppVersion, "source", cfg.Source)

	if err := cfg.Validate(); err != nil {
		log.Fatal("Invalid configuration", "error", err)
	}

	profile, err := config.LoadProfile(cfg.ProfilePath)
	if err != nil {
		log.Fatal("Failed to load profile", "error", err)
	}

	// Set up context with cancellation on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewMetrics("flight_tracker", reg)

	// Variant detection order matters: the English single markers also appear in double alerts
	scanner := utils.NewTextScanner(log)
	variantRouter := router.NewVariantRouter(log)
	variantRouter.Register(templates.NewItalianSingle(profile, scanner, log))
	variantRouter.Register(templates.NewEnglishDouble(profile, scanner, log))
	variantRouter.Register(templates.NewEnglishSingle(profile, scanner, log))

	// Optional MongoDB message log
	var messageLog repository.MessageLogRepository
	if cfg.MongoURI != "" {
		log.Info("Connecting to MongoDB")
		mongoClient, err := persistence.NewMongoClient(ctx, cfg.MongoURI, cfg.MongoUser, cfg.MongoPassword)
		if err != nil {
			log.Fatal("Failed to connect to MongoDB", "error", err)
		}
		defer func() {
			if err := mongoClient.Disconnect(context.Background()); err != nil {
				log.Error("MongoDB disconnect error", "error", err)
			}
		}()

		messageLog, err = repo.NewMongoMessageLogRepository(ctx, persistence.GetDatabase(mongoClient, cfg.MongoDB))
		if err != nil {
			log.Fatal("Failed to set up message log", "error", err)
		}
	}

	// Optional observation store
	var store repository.ObservationRepository
	if cfg.ObservationDSN != "" {
		gormDB, err := persistence.OpenObservationDB(cfg.ObservationDSN)
		if err != nil {
			log.Fatal("Failed to open observation store", "error", err)
		}
		defer persistence.CloseDB(gormDB)

		observationRepo := repo.NewGormObservationRepository(gormDB)
		if err := observationRepo.Migrate(ctx); err != nil {
			log.Fatal("Failed to migrate observation store", "error", err)
		}
		store = observationRepo
	}

	source, err := newSource(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to set up message source", "error", err)
	}

	processor := usecase.NewMessageProcessor(variantRouter, messageLog, m, log)
	processor.History = store

	exporter := report.NewFileExporter(cfg.CSVPath, cfg.ResolvedChartPath(), cfg.ReportPDFPath, log)
	tracker := usecase.NewTracker(source, processor, store, exporter, m, log)
	if cfg.MetricsTextfile != "" {
		tracker.AfterRun = func(*usecase.RunSummary) {
			if err := m.WriteTextfile(cfg.MetricsTextfile); err != nil {
				log.Error("Failed to write metrics textfile", "path", cfg.MetricsTextfile, "error", err)
			}
		}
	}

	if cfg.WatchInterval <= 0 {
		if _, err := tracker.Run(ctx); err != nil {
			log.Error("Tracker run failed", "error", err)
			log.Sync()
			os.Exit(1)
		}
		return
	}

	if err := watch(ctx, cfg, tracker, m.Gatherer(), log); err != nil {
		log.Fatal("Watch mode failed", "error", err)
	}
	log.Info("Flight Price Tracker stopped")
}

func newSource(ctx context.Context, cfg *config.Config, log logger.Logger) (repository.MessageSource, error) {
	switch cfg.Source {
	case config.SourceGmail:
		gmailOAuth := oauth.NewGmailOAuth(
			cfg.GmailClientID,
			cfg.GmailClientSecret,
			cfg.GmailRefreshToken,
			"",
			log,
		)
		return gmail.NewGmailSource(ctx, gmailOAuth.GetTokenSource(ctx), cfg.GmailQuery, cfg.GmailRateLimit, log)
	case config.SourceIMAP:
		password, err := secrets.IMAPPassword(cfg.IMAPPassword, cfg.IMAPKeyringAccount)
		if err != nil {
			return nil, err
		}
		return imap.NewIMAPSource(imap.Options{
			Addr:       cfg.IMAPAddr,
			Username:   cfg.IMAPUsername,
			Password:   password,
			Mailbox:    cfg.IMAPMailbox,
			FromFilter: cfg.IMAPFromFilter,
			SinceDays:  cfg.IMAPSinceDays,
		}, log), nil
	default:
		return mbox.NewMboxSource(cfg.MboxPath, log), nil
	}
}

// watch repeats tracker runs and serves /metrics and /health until ctx is cancelled
func watch(ctx context.Context, cfg *config.Config, tracker *usecase.Tracker, gatherer prometheus.Gatherer, log logger.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Healthy"))
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("Starting HTTP server", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		log.Info("Watching for price alerts", "interval", cfg.WatchInterval.String())
		return tracker.Watch(gctx, cfg.WatchInterval)
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down")

		// Graceful shutdown
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("HTTP server shutdown error", "error", err)
		}
		return nil
	})

	return g.Wait()
}
