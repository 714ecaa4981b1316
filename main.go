package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/fishmad/grokstatev3-sub001/internal/api"
	"github.com/fishmad/grokstatev3-sub001/internal/auth"
	"github.com/fishmad/grokstatev3-sub001/internal/cache"
	"github.com/fishmad/grokstatev3-sub001/internal/config"
	"github.com/fishmad/grokstatev3-sub001/internal/db"
	"github.com/fishmad/grokstatev3-sub001/internal/email"
	"github.com/fishmad/grokstatev3-sub001/internal/export"
	"github.com/fishmad/grokstatev3-sub001/internal/reaxml"
	"github.com/fishmad/grokstatev3-sub001/internal/services"
	"github.com/fishmad/grokstatev3-sub001/internal/storage"
	"github.com/fishmad/grokstatev3-sub001/internal/syndication"
	"github.com/fishmad/grokstatev3-sub001/internal/tasks"
)

var runMode = flag.String("m", "all", "Run mode: 'api', 'worker' (export processing), 'all' (default)")

func main() {
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*runMode)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize Database
	mongoClient, mongoDb, err := db.ConnectDB(cfg.MongoURI, cfg.MongoDbName)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() {
		if err := db.DisconnectDB(mongoClient); err != nil {
			log.Printf("Error disconnecting from MongoDB: %v", err)
		}
	}()

	// Initialize Cache (Redis)
	redisClient, err := cache.ConnectRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer func() {
		if err := cache.DisconnectRedis(redisClient); err != nil {
			log.Printf("Error disconnecting from Redis: %v", err)
		}
	}()

	// Initialize the document archive only when enabled; the orchestrator
	// treats a nil archive as "archiving off".
	var documentArchive storage.IDocumentArchive
	if cfg.ArchiveDocuments {
		documentArchive, err = storage.NewS3Archive(cfg)
		if err != nil {
			log.Fatalf("Failed to initialize S3 document archive: %v", err)
		}
		log.Println("Document archiving to S3 enabled.")
	}

	// Setup Composite Email Sender
	// The composite sender will always include the primary sender.
	compositeSender := email.NewCompositeSender(email.NewSMTPSender(cfg))

	// Optionally add FileSender if LOG_EMAILS is set
	logEmailsPath := os.Getenv("LOG_EMAILS")
	if logEmailsPath != "" {
		log.Printf("LOG_EMAILS set to '%s', enabling file email logger.", logEmailsPath)
		fileSender, err := email.NewFileSender(logEmailsPath)
		if err != nil {
			log.Printf("WARNING: Failed to initialize file email sender (LOG_EMAILS='%s'): %v. Proceeding without file logging.", logEmailsPath, err)
		} else {
			compositeSender.AddSender(fileSender)
			log.Println("File email logger added to composite sender.")
		}
	}

	adminNotifier := email.NewAdminNotifier(cfg, compositeSender)

	// Initialize Services needed by handlers and the task processor
	propertyService := services.NewPropertyService(mongoDb, cfg)
	tokenProvider := auth.NewTokenProvider(cfg)
	syndicationClient := syndication.NewClient(cfg, tokenProvider)
	documentBuilder := reaxml.NewDocumentBuilder()

	// Initialize Task Client
	taskClient := tasks.NewClient(redisClient)

	retryScheduler := tasks.NewRetryScheduler(taskClient)
	orchestrator := export.NewOrchestrator(cfg, propertyService, documentBuilder, syndicationClient, retryScheduler, adminNotifier, documentArchive)
	taskProcessor := tasks.NewTaskProcessor(orchestrator)

	// WaitGroup for managing goroutines
	var wg sync.WaitGroup

	// --- Mode-specific servers ---
	var apiSrv *http.Server
	var taskSrv *asynq.Server

	fmt.Printf("Starting application in '%s' mode...\n", cfg.RunMode)

	apiMode := func() {
		fmt.Println("Starting API server...")
		router := api.SetupRouter(cfg, mongoDb, taskClient)
		apiSrv = &http.Server{
			Addr:    ":" + cfg.ApiPort,
			Handler: router,
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			fmt.Printf("API listening on :%s\n", cfg.ApiPort)
			if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("API ListenAndServe error: %v", err)
			}
			fmt.Println("API server stopped.")
		}()
	}

	workerMode := func() {
		fmt.Println("Starting export worker...")
		srv, mux := tasks.SetupServer(redisClient, taskProcessor, true)
		taskSrv = srv
		wg.Add(1)
		go func() {
			defer wg.Done()
			fmt.Println("Export task server starting...")
			if err := taskSrv.Run(mux); err != nil {
				log.Fatalf("Export task server error: %v", err)
			}
			fmt.Println("Export task server stopped.")
		}()
	}

	switch cfg.RunMode {
	case "api":
		apiMode()
	case "worker":
		workerMode()
	case "all":
		apiMode()
		workerMode()
	default:
		log.Fatalf("Invalid run mode specified in config: %s.", cfg.RunMode)
	}

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quit
	fmt.Printf("\nReceived signal: %s. Shutting down gracefully...\n", sig)

	// Create context with timeout for shutdown
	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelShutdown()

	if apiSrv != nil {
		fmt.Println("Shutting down API server...")
		if err := apiSrv.Shutdown(ctxShutdown); err != nil {
			log.Printf("API server shutdown error: %v", err)
		}
	}

	if taskSrv != nil {
		fmt.Println("Shutting down export task server...")
		taskSrv.Shutdown()
	}

	if err := taskClient.Close(); err != nil {
		log.Printf("Task client close error: %v", err)
	}

	// Wait for all server goroutines to finish
	fmt.Println("Waiting for servers to stop...")
	wg.Wait()

	fmt.Println("Server gracefully stopped")
}
