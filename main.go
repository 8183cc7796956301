package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"oxyspa/b2b/internal/api"
	"oxyspa/b2b/internal/cache"
	"oxyspa/b2b/internal/config"
	"oxyspa/b2b/internal/db"
	"oxyspa/b2b/internal/email"
	"oxyspa/b2b/internal/models"
	"oxyspa/b2b/internal/services"
	"oxyspa/b2b/internal/tasks"
)

var runMode = flag.String("m", "all", "Run mode: 'api', 'bg' (lead notification worker), 'all' (default)")

func main() {
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*runMode)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize Database
	mongoClient, mongoDb, err := db.ConnectDB(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() {
		if err := db.DisconnectDB(mongoClient); err != nil {
			log.Printf("Error disconnecting from MongoDB: %v", err)
		}
	}()

	// Initialize Cache (Redis); nil when the queue is disabled
	redisClient, err := cache.ConnectRedis(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer func() {
		if err := cache.DisconnectRedis(redisClient); err != nil {
			log.Printf("Error disconnecting from Redis: %v", err)
		}
	}()

	// Leave these as nil interfaces when Redis is off.
	var notifier services.ILeadNotifier
	var pinger services.RedisPinger
	var taskClient *asynq.Client
	if redisClient != nil {
		taskClient = tasks.NewClient(redisClient)
		defer taskClient.Close()
		notifier = tasks.NewLeadNotifier(taskClient)
		pinger = redisClient
	}

	collections := db.Collections{
		models.EntityLead: cfg.LeadCollection,
	}
	log.Printf("Document store collections: %v", collections.Names())
	store := db.NewMongoDocumentStore(mongoDb, collections)
	leadService := services.NewLeadService(store, notifier)
	diagnosticService := services.NewDiagnosticService(cfg, mongoDb, pinger)

	// WaitGroup for managing goroutines
	var wg sync.WaitGroup

	// Channel to signal shutdown from Service API
	shutdownChan := make(chan struct{}, 1)

	// Start Service API (always runs, loopback only)
	serviceSrv := &http.Server{
		Addr:    "127.0.0.1:" + cfg.ServiceApiPort,
		Handler: api.SetupServiceRouter(shutdownChan),
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Printf("Service API listening on %s", serviceSrv.Addr)
		if err := serviceSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Service API ListenAndServe error: %v", err)
		}
		log.Println("Service API server stopped.")
	}()

	// --- Mode-specific servers ---
	var mainApiSrv *http.Server
	var backgroundTaskSrv *asynq.Server

	log.Printf("Starting %s %s in '%s' mode...", cfg.AppName, cfg.AppVersion, cfg.RunMode)

	apiMode := func() {
		mainApiSrv = &http.Server{
			Addr:              ":" + cfg.ApiPort,
			Handler:           api.SetupRouter(cfg, leadService, diagnosticService),
			ReadHeaderTimeout: 10 * time.Second,
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			log.Printf("Main API listening on :%s", cfg.ApiPort)
			if err := mainApiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("Main API ListenAndServe error: %v", err)
			}
			log.Println("Main API server stopped.")
		}()
	}

	bgMode := func() {
		if redisClient == nil {
			log.Println("Background worker not started: REDIS_ADDR not set.")
			return
		}
		processor := tasks.NewTaskProcessor(cfg, email.NewSender(cfg))
		srv, err := tasks.StartWorker(redisClient, processor)
		if err != nil {
			log.Fatalf("Background task server error: %v", err)
		}
		backgroundTaskSrv = srv
		log.Println("Background task server started.")
	}

	switch cfg.RunMode {
	case "api":
		apiMode()
	case "bg":
		bgMode()
	case "all":
		apiMode()
		bgMode()
	default:
		log.Fatalf("Invalid run mode specified in config: %s.", cfg.RunMode)
	}

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Printf("Received signal: %s. Shutting down gracefully...", sig)
	case <-shutdownChan:
		log.Println("Shutdown requested via Service API. Shutting down gracefully...")
	}

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelShutdown()

	if err := serviceSrv.Shutdown(ctxShutdown); err != nil {
		log.Printf("Service API server shutdown error: %v", err)
	}
	if mainApiSrv != nil {
		log.Println("Shutting down Main API server...")
		if err := mainApiSrv.Shutdown(ctxShutdown); err != nil {
			log.Printf("Main API server shutdown error: %v", err)
		}
	}
	if backgroundTaskSrv != nil {
		log.Println("Shutting down Background Task server...")
		backgroundTaskSrv.Shutdown()
	}

	log.Println("Waiting for servers to stop...")
	wg.Wait()
	log.Println("Server gracefully stopped")
}
