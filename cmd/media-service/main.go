package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/princekumarofficial/media-service/internal/cache"
	"github.com/princekumarofficial/media-service/internal/collections"
	"github.com/princekumarofficial/media-service/internal/config"
	"github.com/princekumarofficial/media-service/internal/disks"
	"github.com/princekumarofficial/media-service/internal/events"
	mediaHandlers "github.com/princekumarofficial/media-service/internal/http/handlers/media"
	wsHandler "github.com/princekumarofficial/media-service/internal/http/handlers/websocket"
	"github.com/princekumarofficial/media-service/internal/http/middleware"
	"github.com/princekumarofficial/media-service/internal/intake"
	"github.com/princekumarofficial/media-service/internal/pathgen"
	"github.com/princekumarofficial/media-service/internal/storage/postgres"
	"github.com/princekumarofficial/media-service/internal/urlgen"
	ws "github.com/princekumarofficial/media-service/internal/websocket"
)

func main() {
	// load config
	cfg := config.MustLoad()

	// database setup
	store, err := postgres.NewPostgres(cfg)
	if err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	slog.Info("Connected to Postgres database")

	// redis setup
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	slog.Info("Connected to Redis")

	// disk setup
	diskRegistry := disks.NewRegistry()
	for _, localDisk := range cfg.Media.LocalDisks {
		disk, err := disks.NewLocal(localDisk.Root, localDisk.BaseURL)
		if err != nil {
			log.Fatal("Failed to initialize local disk:", err)
		}
		diskRegistry.Add(localDisk.Name, disk)
	}
	if len(cfg.Media.S3Disks) > 0 {
		minioClient, err := minio.New(cfg.MinIO.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.MinIO.AccessKeyID, cfg.MinIO.SecretAccessKey, ""),
			Secure: cfg.MinIO.UseSSL,
		})
		if err != nil {
			log.Fatal("Failed to create MinIO client:", err)
		}
		for _, s3Disk := range cfg.Media.S3Disks {
			disk := disks.NewMinio(minioClient, s3Disk.Bucket, cfg.MinIO.UseSSL)
			if err := disk.EnsureBucket(context.Background()); err != nil {
				log.Fatal("Failed to ensure bucket exists:", err)
			}
			diskRegistry.Add(s3Disk.Name, disk)
		}
	}
	if !diskRegistry.Has(cfg.Media.DefaultDisk) {
		log.Fatalf("default disk %q is not configured", cfg.Media.DefaultDisk)
	}

	// media core setup
	collectionRegistry := collections.NewRegistry()
	collectionRegistry.Define("avatar").SingleFile().OnlyFor("user")

	paths := pathgen.Default{Prefix: cfg.Media.PathPrefix}
	pipeline := intake.New(store, diskRegistry, collectionRegistry, paths, intake.Config{
		DefaultDisk: cfg.Media.DefaultDisk,
		MaxFileSize: cfg.Media.MaxFileSize,
	})
	urls := urlgen.New(diskRegistry, paths)
	cacheService := cache.NewCacheService(store, redisClient)

	// websocket hub and event publisher
	hub := ws.NewHub()
	go hub.Run()
	publisher := events.NewEventPublisher(hub)

	// setup server
	router := http.NewServeMux()
	handlers := mediaHandlers.NewMediaHandlers(pipeline, cacheService, urls, publisher)
	auth := middleware.AuthMiddleware(cfg.JWTSecret)

	router.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Media service is up"))
	})
	router.Handle("POST /media", auth(handlers.Upload()))
	router.Handle("GET /media", auth(handlers.List()))
	router.Handle("GET /media/{id}", auth(handlers.Get()))
	router.Handle("GET /media/{id}/temporary-url", auth(handlers.TemporaryURL()))
	router.Handle("DELETE /media", auth(handlers.ClearCollection()))
	router.Handle("PATCH /media/{id}", auth(handlers.Reassign()))
	router.Handle("DELETE /media/{id}", auth(handlers.Delete()))
	router.HandleFunc("GET /ws", wsHandler.WebSocketHandler(hub, cfg.JWTSecret))

	server := http.Server{
		Addr:    cfg.HTTPServer.Address,
		Handler: router,
	}

	log.Println("server started on", cfg.HTTPServer.Address)

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		err := server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("failed to start server: %s", err)
		}
	}()

	<-done

	slog.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = server.Shutdown(ctx)
	if err != nil {
		slog.Error("failed to gracefully shutdown server", slog.String("error", err.Error()))
		return
	}

	slog.Info("Server stopped")
}
