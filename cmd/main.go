package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	httpSwagger "github.com/swaggo/http-swagger"

	"filetree-server/config"
	"filetree-server/internal/handler"
	"filetree-server/internal/repository"
	"filetree-server/internal/security"
	"filetree-server/internal/service"
	"filetree-server/internal/util"
)

// @title Filetree-server
// @version 1.0
// @description REST API файлового хранилища с иерархией папок и шарингом

// @host localhost:8080

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.LoadConfig("config.yaml")
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	db, err := config.SetupDatabase(cfg.DatabaseConfig.DSN)
	if err != nil {
		log.Fatalf("Не удалось подключиться к БД: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Ошибка при закрытии БД: %v", err)
		}
	}()

	redisClient, err := config.SetupRedis(&cfg.RedisConfig)
	if err != nil {
		log.Fatalf("Ошибка подключения к Redis: %v", err)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Printf("Ошибка при закрытии Redis: %v", err)
		}
	}()

	srv, router := config.SetupServer(cfg.ServerAddr)

	ttl := time.Duration(cfg.TTL.S3AndRedis) * time.Second

	userRepo := repository.NewUserRepository(db)
	nodeRepo := repository.NewNodeRepository(db)
	edgeRepo := repository.NewEdgeRepository(db)
	accessRepo := repository.NewAccessRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, ttl)

	s3Service, err := service.NewS3Service(ctx, &cfg.S3Config)
	if err != nil {
		log.Fatalf("Ошибка создания S3 сервиса: %v", err)
	}

	searchService := service.NewSearchService(nodeRepo, edgeRepo, accessRepo)
	fileService := service.NewFileService(nodeRepo, edgeRepo, accessRepo, userRepo, cacheRepo, s3Service, util.NewS3Uploader(), searchService, ttl)
	shareService := service.NewShareService(nodeRepo, edgeRepo, accessRepo, userRepo, cacheRepo)

	jwtService := security.NewJWTService(&cfg.JWT)
	userService := service.NewUserService(userRepo, nodeRepo, fileService, jwtService)

	fileHandler := handler.NewFileHandler(fileService, searchService)
	shareHandler := handler.NewShareHandler(shareService)
	userHandler := handler.NewUserHandler(userService)

	router.Use(config.DBMiddleware(db))
	router.Get("/swagger/*", httpSwagger.WrapHandler)

	setupAuthRoutes(router, userHandler)
	setupFileRoutes(router, fileHandler, jwtService)
	setupShareRoutes(router, shareHandler, jwtService)
	setupUserRoutes(router, userHandler, jwtService)

	runServer(ctx, srv)
}

func setupAuthRoutes(r chi.Router, h *handler.UserHandler) {
	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
	})
}

func setupFileRoutes(r chi.Router, h *handler.FileHandler, jwtService *security.JWTService) {
	r.Route("/api/files", func(r chi.Router) {
		r.Use(security.JWTMiddleware(jwtService))

		r.Delete("/", h.DeleteNodes)
		r.Put("/move", h.MoveNodes)
		r.Post("/archive", h.DownloadArchive)
		r.Get("/search", h.SearchByName)
		r.Get("/tree", h.FolderTree)

		r.Post("/folder", h.CreateFolder)
		r.Route("/folder/{uuid}", func(r chi.Router) {
			r.Get("/", h.ListFolder)
			r.Post("/upload", h.UploadFiles)
		})

		r.Route("/{uuid}", func(r chi.Router) {
			r.Get("/", h.NodeDetails)
			r.Get("/download", h.DownloadNode)
			r.Get("/path", h.BuildPath)
			r.Patch("/rename", h.RenameNode)
		})
	})
}

func setupShareRoutes(r chi.Router, h *handler.ShareHandler, jwtService *security.JWTService) {
	r.Route("/api/share", func(r chi.Router) {
		r.Use(security.JWTMiddleware(jwtService))

		r.Post("/", h.Share)
		r.Delete("/", h.Unshare)
		r.Post("/refuse", h.RefuseShare)
		r.Get("/{uuid}/users", h.UsersNodeSharedWith)
	})
}

func setupUserRoutes(r chi.Router, h *handler.UserHandler, jwtService *security.JWTService) {
	r.Route("/api/users", func(r chi.Router) {
		r.Use(security.JWTMiddleware(jwtService))
		r.Get("/search", h.SearchByLogin)
	})
}

func runServer(ctx context.Context, server *http.Server) {
	serverErrors := make(chan error, 1)
	go func() {
		log.Println("сервер запущен на " + server.Addr)
		serverErrors <- server.ListenAndServe()
	}()

	signalChannel := make(chan os.Signal, 1)
	signal.Notify(signalChannel, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil {
			log.Fatalf("ошибка работы сервера: %v", err)
		}
	case sig := <-signalChannel:
		log.Printf("получен сигнал %v остановки работы сервера ", sig)
	}

	shutDownCtx, shutDownCancel := context.WithTimeout(ctx, 5*time.Second)
	defer shutDownCancel()

	if err := server.Shutdown(shutDownCtx); err != nil {
		log.Printf("ошибка при остановке сервера: %v", err)
	} else {
		log.Println("Сервер успешно остановлен")
	}
}
