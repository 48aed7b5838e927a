package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/filmrec/filmrec/internal/auth"
	"github.com/filmrec/filmrec/internal/config"
	"github.com/filmrec/filmrec/internal/database"
	"github.com/filmrec/filmrec/internal/database/movies"
	"github.com/filmrec/filmrec/internal/database/relations"
	statsdb "github.com/filmrec/filmrec/internal/database/stats"
	"github.com/filmrec/filmrec/internal/database/users"
	http_controllers "github.com/filmrec/filmrec/internal/http"
	"github.com/filmrec/filmrec/internal/importers"
	"github.com/filmrec/filmrec/internal/letterboxd"
	"github.com/filmrec/filmrec/internal/metadata"
	"github.com/filmrec/filmrec/internal/posters"
	"github.com/filmrec/filmrec/internal/scheduler"
	"github.com/filmrec/filmrec/internal/stats"
	"github.com/filmrec/filmrec/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		// service connections
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	// Wait for interrupt signal to gracefully shutdown the server with
	// a timeout of 1 second.
	quit := make(chan os.Signal, 1)
	// kill (no param) default send syscanll.SIGTERM
	// kill -2 is syscall.SIGINT
	// kill -9 is syscall. SIGKILL but can"t be catch, so don't need add it
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Call shutdown callback first (e.g., to stop task queue)
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting Filmrec v%s", version)

	// Initialize database
	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	// Repositories
	userRepo := users.NewRepository(db.DB)
	movieRepo := movies.NewRepository(db.DB)
	relationRepo := relations.NewRepository(db.DB)
	statsRepo := statsdb.NewRepository(db.DB)

	// Authentication
	authService, err := auth.NewService(userRepo, cfg.Auth)
	if err != nil {
		log.Fatalf("Failed to initialize auth service: %v", err)
	}

	// Letterboxd import pipeline
	fetcher := letterboxd.NewHTTPFeedFetcher(cfg.Letterboxd.FetchTimeout)
	importer := importers.NewImporter(db.DB)
	rssImporter := importers.NewRSSImporter(db.DB, fetcher)

	// Statistics
	statsService := stats.NewService(statsRepo)

	// TMDb metadata enricher
	tmdbClient := metadata.NewTMDBClient(cfg.TMDB)
	if !tmdbClient.IsConfigured() {
		log.Printf("WARNING: TMDb API key is not set. Metadata enrichment will be disabled. Set 'TMDB_API_KEY' environment variable to enable.")
	}
	metadataEnricher := metadata.NewEnricher(tmdbClient, movieRepo)

	// Create poster cache for locally caching movie posters
	posterCacheDir := filepath.Join(filepath.Dir(cfg.Database.Path), "posters")
	posterCache, err := posters.NewCache(posterCacheDir)
	if err != nil {
		log.Printf("WARNING: Failed to initialize poster cache: %v", err)
	} else {
		log.Printf("Poster cache initialized at %s", posterCacheDir)
		metadataEnricher.SetPosterInvalidator(posterCache)
	}

	// Initialize task queue if enabled
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	if cfg.Tasks.Enabled {
		taskCfg := tasks.Config{
			Workers:           cfg.Tasks.Workers,
			MaxRetries:        cfg.Tasks.MaxRetries,
			RetryDelay:        cfg.Tasks.RetryDelay,
			TaskTimeout:       cfg.Tasks.TaskTimeout,
			ReleaseAfter:      cfg.Tasks.ReleaseAfter,
			CleanupInterval:   cfg.Tasks.CleanupInterval,
			RetentionDuration: cfg.Tasks.RetentionDuration,
		}

		taskClient, err = tasks.NewClient(cfg.Database.Path, taskCfg)
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		// Register task queues
		taskClient.Register(
			tasks.NewEnrichMovieQueue(metadataEnricher, taskCfg),
			tasks.NewEnrichCatalogQueue(metadataEnricher, taskCfg),
			tasks.NewFeedSyncQueue(rssImporter, userRepo, taskCfg),
		)

		// Start task workers in background
		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)
	}

	// Periodic RSS sync for users with a connected Letterboxd feed
	var feedScheduler *scheduler.FeedSyncScheduler
	if cfg.Letterboxd.SyncEnabled && taskClient != nil {
		feedScheduler = scheduler.NewFeedSyncScheduler(userRepo, taskClient, cfg.Letterboxd)
		if err := feedScheduler.Start(context.Background()); err != nil {
			log.Fatalf("Failed to start feed sync scheduler: %v", err)
		}
	} else if cfg.Letterboxd.SyncEnabled {
		log.Printf("WARNING: LETTERBOXD_SYNC_ENABLED requires the task queue. Set 'TASKS_ENABLED' to enable periodic feed syncs.")
	}

	// Build router configuration with all dependencies
	routerCfg := http_controllers.RouterConfig{
		Database:     db,
		UserRepo:     userRepo,
		MovieRepo:    movieRepo,
		RelationRepo: relationRepo,
		AuthService:  authService,
		Importer:     importer,
		RSSImporter:  rssImporter,
		StatsService: statsService,
		TaskClient:   taskClient,
		PosterCache:  posterCache,
		Version:      version,
	}

	router := http_controllers.NewRouter(routerCfg)

	// Shutdown callback for graceful cleanup
	onShutdown := func(ctx context.Context) {
		if feedScheduler != nil {
			feedScheduler.Stop()
		}
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
	}

	Serve(router, cfg, onShutdown)
}
