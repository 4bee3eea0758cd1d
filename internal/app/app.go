package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"ProblemRadar/internal/config"
	"ProblemRadar/internal/httpapi"
	"ProblemRadar/internal/infrastructure/auth"
	"ProblemRadar/internal/infrastructure/llm"
	"ProblemRadar/internal/infrastructure/ml"
	"ProblemRadar/internal/infrastructure/objectstore"
	"ProblemRadar/internal/infrastructure/parser"
	"ProblemRadar/internal/infrastructure/scheduler"
	"ProblemRadar/internal/infrastructure/slack"
	"ProblemRadar/internal/infrastructure/storage"
	"ProblemRadar/internal/infrastructure/telegram"
	"ProblemRadar/internal/infrastructure/tracking"
	"ProblemRadar/internal/logging"
	"ProblemRadar/internal/ports"
	"ProblemRadar/internal/scanner"
	"ProblemRadar/internal/usecase"
)

const shutdownTimeout = 10 * time.Second

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg       config.Config
	logger    *slog.Logger
	seeds     *parser.SeedSource
	pipeline  *usecase.Pipeline
	scheduler *usecase.Scheduler
	sources   []usecase.SourceInfo
	server    *http.Server
	closers   []func()
}

// New connects every configured backend and builds the use cases. Backends
// without configuration fall back to in-process implementations.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}
	a := &Application{cfg: cfg, logger: baseLogger}

	store, err := a.recordStore(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	tracker, err := a.conversionTracker(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	generator, err := llm.New(ctx, cfg.LLM)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("content generator: %w", err)
	}
	embedder, err := ml.NewEmbedder(ctx, cfg.Embedding)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("embedder: %w", err)
	}
	var index ports.VectorIndex = ml.NewMemoryIndex()
	if cfg.Vector.Endpoint != "" {
		index = ml.NewClient(cfg.Vector.Endpoint, cfg.Vector.APIKey, cfg.Vector.Namespace)
	}

	var objects ports.ObjectStorage
	if cfg.Storage.Dir != "" {
		fs, err := objectstore.NewFilesystem(cfg.Storage.Dir, cfg.Storage.BaseURL)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("object storage: %w", err)
		}
		objects = fs
	}

	seeds, err := parser.NewSeedSource(cfg.Aggregation.SeedFile, baseLogger.With("component", "seeds"))
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("seed source: %w", err)
	}
	a.seeds = seeds

	client := &http.Client{Timeout: cfg.Aggregation.AdapterTimeout.Duration}
	registry := scanner.NewRegistry()
	registry.Register(parser.NewRedditScanner(client))
	registry.Register(parser.NewHackerNewsScanner(client))
	registry.Register(parser.NewG2Scanner(client))
	registry.Register(parser.NewResearchScanner(generator))
	registry.Register(seeds)

	source := parser.NewStrategySource(registry, cfg.Sites, cfg.Aggregation.AdapterTimeout.Duration, baseLogger.With("component", "source"))
	aggregator := usecase.NewAggregator(usecase.AggregatorDeps{
		Source:         source,
		Seeds:          seeds,
		OverallTimeout: cfg.Aggregation.OverallTimeout.Duration,
		DefaultLimit:   cfg.Aggregation.DefaultLimit,
		Logger:         baseLogger.With("component", "aggregator"),
	})

	a.sources = describeSites(cfg.Sites)
	problems := usecase.NewProblemService(usecase.ProblemServiceDeps{
		Aggregator: aggregator,
		Store:      store,
		Embedder:   embedder,
		Index:      index,
		Sources:    a.sources,
		Logger:     baseLogger.With("component", "problems"),
	})
	ideas := usecase.NewIdeaGenerator(usecase.IdeaGeneratorDeps{
		Generator: generator,
		Store:     store,
		Logger:    baseLogger.With("component", "ideas"),
	})
	validation := usecase.NewValidationToolkit(usecase.ValidationToolkitDeps{
		Store:   store,
		Storage: objects,
		Tracker: tracker,
		Logger:  baseLogger.With("component", "validation"),
	})

	a.pipeline = usecase.NewPipeline(usecase.PipelineDeps{
		Aggregator: aggregator,
		Store:      store,
		Embedder:   embedder,
		Index:      index,
		Notifiers:  a.notifiers(),
		Logger:     baseLogger.With("component", "pipeline"),
	})

	if spec := strings.TrimSpace(cfg.Scheduler.CronExpression); spec != "" {
		if err := scheduler.Validate(spec); err != nil {
			a.Close()
			return nil, err
		}
		driver := scheduler.NewCronScheduler(spec, cfg.Scheduler.Location(), baseLogger.With("component", "cron"))
		a.scheduler = usecase.NewScheduler(driver, a.pipeline, baseLogger.With("component", "scheduler"))
	}

	routerDeps := httpapi.RouterDeps{
		Problems:       problems,
		Ideas:          ideas,
		Validation:     validation,
		PagesDir:       cfg.Storage.Dir,
		CORSOrigins:    cfg.Server.CORSOrigins,
		RequestTimeout: cfg.Server.RequestTimeout.Duration,
		Logger:         baseLogger.With("component", "http"),
	}
	if verifier := auth.NewStaticVerifier(cfg.Auth.Tokens); verifier.Enabled() {
		routerDeps.Verifier = verifier
	}
	a.server = &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           httpapi.NewRouter(routerDeps),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return a, nil
}

func (a *Application) recordStore(ctx context.Context) (ports.RecordStore, error) {
	if a.cfg.Database.DSN == "" {
		a.logger.Info("database not configured, keeping records in memory")
		return storage.NewMemoryStore(), nil
	}
	pg, err := storage.Connect(ctx, a.cfg.Database.DSN, a.cfg.Database.MaxConns)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	a.closers = append(a.closers, pg.Close)
	if err := pg.CreateTables(ctx); err != nil {
		return nil, fmt.Errorf("create tables: %w", err)
	}
	return pg, nil
}

func (a *Application) conversionTracker(ctx context.Context) (ports.ConversionTracker, error) {
	if a.cfg.Redis.Addr == "" {
		a.logger.Info("redis not configured, keeping conversion counters in memory")
		return tracking.NewMemoryTracker(), nil
	}
	rt, err := tracking.NewRedisTracker(ctx, a.cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	a.closers = append(a.closers, func() {
		if err := rt.Close(); err != nil {
			a.logger.Warn("close redis", "error", err)
		}
	})
	return rt, nil
}

func (a *Application) notifiers() []ports.Notifier {
	var out []ports.Notifier
	tg := a.cfg.Notifications.Telegram
	if tg.BotToken != "" && tg.ChatID != "" {
		out = append(out, telegram.NewNotifier(tg.BotToken, tg.ChatID))
	}
	sl := a.cfg.Notifications.Slack
	if sl.BotToken != "" && sl.Channel != "" {
		out = append(out, slack.NewNotifier(sl.BotToken, sl.Channel))
	}
	return out
}

func describeSites(sites []config.SiteConfig) []usecase.SourceInfo {
	out := make([]usecase.SourceInfo, 0, len(sites))
	for _, site := range sites {
		categories := make([]string, 0, len(site.Categories))
		for _, c := range site.Categories {
			categories = append(categories, c.Name)
		}
		out = append(out, usecase.DescribeSource(site.Name, site.Scanner, categories))
	}
	return out
}

// Sources returns the configured source catalog.
func (a *Application) Sources() []usecase.SourceInfo {
	return a.sources
}

// Refresh runs the pipeline once.
func (a *Application) Refresh(ctx context.Context) (usecase.RefreshReport, error) {
	return a.pipeline.Refresh(ctx, time.Now().In(a.cfg.Scheduler.Location()))
}

// Run serves HTTP, starts the scheduler and seed watcher, and blocks until
// ctx is cancelled or the listener fails.
func (a *Application) Run(ctx context.Context) error {
	if err := a.seeds.Watch(ctx); err != nil {
		a.logger.Warn("seed watcher disabled", "error", err)
	}

	if a.scheduler != nil {
		if err := a.scheduler.Start(ctx); err != nil {
			return fmt.Errorf("start scheduler: %w", err)
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := a.scheduler.Stop(stopCtx); err != nil {
				a.logger.Warn("stop scheduler", "error", err)
			}
		}()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		report, err := a.pipeline.Refresh(gctx, time.Now().In(a.cfg.Scheduler.Location()))
		if err != nil {
			a.logger.Warn("initial refresh incomplete", "error", err)
		}
		a.logger.Info("initial refresh done", "problems", report.Problems, "indexed", report.Indexed)
		return nil
	})
	g.Go(func() error {
		a.logger.Info("http server listening", "addr", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return a.server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// Close releases backend connections. Safe to call more than once.
func (a *Application) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
