package container

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"roomtour-backend/internal/config"
	infraCache "roomtour-backend/internal/infrastructure/cache"
	"roomtour-backend/internal/infrastructure/database"
	"roomtour-backend/internal/infrastructure/queue"
	"roomtour-backend/internal/infrastructure/storage"
	"roomtour-backend/pkg/cache"

	placeHandler "roomtour-backend/internal/domains/place/handler"
	placeRepo "roomtour-backend/internal/domains/place/repository"
	placeService "roomtour-backend/internal/domains/place/service"
	"roomtour-backend/internal/domains/upload"
	uploadHandler "roomtour-backend/internal/domains/upload/handler"
	uploadService "roomtour-backend/internal/domains/upload/service"
	"roomtour-backend/internal/domains/user"
	userHandler "roomtour-backend/internal/domains/user/handler"
	userRepo "roomtour-backend/internal/domains/user/repository"
	userService "roomtour-backend/internal/domains/user/service"
)

// placeImageTypes are the MIME types accepted for place photos.
var placeImageTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

// Container holds the dependency graph of the API and the worker.
// Order: config -> infrastructure -> repositories -> services -> handlers.
type Container struct {
	// ========================================
	// INFRASTRUCTURE
	// ========================================
	Config      *config.Config
	DB          *database.PostgresDB    // nil with DB_DRIVER=memory
	Redis       *infraCache.RedisClient // nil when Redis is disabled or unreachable
	Cache       cache.Cache             // Redis, or the in-process LRU
	Storage     storage.FileStore
	Processor   *storage.ImageProcessor
	AsynqClient *asynq.Client     // nil without Redis or Postgres
	Dispatcher  *queue.Dispatcher // nil without Redis or Postgres

	// ========================================
	// VALIDATORS
	// ========================================
	UploadValidator     *upload.Validator
	AvatarValidator     *upload.Validator
	PlaceImageValidator *upload.Validator

	// ========================================
	// REPOSITORIES
	// ========================================
	UserRepo  user.Repository
	PlaceRepo placeRepo.PlaceRepository
	ImageRepo placeRepo.ImageRepository

	// ========================================
	// SERVICES
	// ========================================
	UploadService upload.Service
	UserService   user.Service
	PlaceService  placeService.PlaceService
	ImageService  placeService.ImageService

	// ========================================
	// HANDLERS
	// ========================================
	UploadHandler *uploadHandler.Handler
	UserHandler   *userHandler.UserHandler
	PlaceHandler  *placeHandler.Handler
}

// NewContainer loads the configuration from the environment and builds the graph.
func NewContainer(ctx context.Context) (*Container, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return Build(ctx, cfg)
}

// Build wires every layer for cfg. On error, whatever was opened is closed.
func Build(ctx context.Context, cfg *config.Config) (*Container, error) {
	log.Info().Str("env", cfg.App.Environment).Msg("Initializing DI container")

	c := &Container{Config: cfg}

	// STEP 1: infrastructure
	if err := c.initInfrastructure(ctx); err != nil {
		c.Cleanup()
		return nil, err
	}

	// STEP 2: repositories
	c.initRepositories()

	// STEP 3: services
	c.initServices()

	// STEP 4: handlers
	c.initHandlers()

	log.Info().
		Str("db", cfg.Database.Driver).
		Str("storage", cfg.Upload.Storage).
		Bool("redis", c.Redis != nil).
		Msg("DI container initialized")
	return c, nil
}

func (c *Container) initInfrastructure(ctx context.Context) error {
	cfg := c.Config

	// Database
	if cfg.Database.Driver == "postgres" {
		dbConfig, err := config.LoadDatabaseConfig()
		if err != nil {
			return fmt.Errorf("failed to load database config: %w", err)
		}

		db := database.NewPostgresDB(dbConfig)
		connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()

		if err := db.Connect(connectCtx); err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		c.DB = db

		if err := db.HealthCheck(connectCtx); err != nil {
			return fmt.Errorf("database health check failed: %w", err)
		}
		if err := db.Migrate(connectCtx); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	// Cache: Redis when reachable, otherwise in-process
	if cfg.Redis.Host != "" {
		rc := infraCache.NewRedisClient(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)
		if err := rc.Connect(ctx); err != nil {
			log.Warn().Err(err).Msg("Redis unavailable, falling back to in-memory cache and inline image work")
			_ = rc.Close()
		} else {
			c.Redis = rc
		}
	}
	if c.Redis != nil {
		c.Cache = infraCache.NewRedisCache(c.Redis.Client)
	} else {
		c.Cache = infraCache.NewMemoryCache(cfg.Cache.MemoryItems, 24*time.Hour)
	}

	// Background image work needs a store the worker can see too
	if c.Redis != nil && c.DB != nil {
		c.AsynqClient = asynq.NewClient(asynq.RedisClientOpt{
			Addr:     cfg.Redis.Host,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		c.Dispatcher = queue.NewDispatcher(c.AsynqClient)
	} else if c.Redis != nil {
		log.Info().Msg("Memory store in use, image variants are rendered inline")
	}

	// File storage
	switch cfg.Upload.Storage {
	case "minio":
		store, err := storage.NewMinIOStorage(ctx, cfg.MinIO)
		if err != nil {
			return fmt.Errorf("failed to init minio storage: %w", err)
		}
		c.Storage = store
	default:
		store, err := storage.NewDiskStorage(cfg.Upload.Path, cfg.Upload.CDNURL)
		if err != nil {
			return fmt.Errorf("failed to init disk storage: %w", err)
		}
		c.Storage = store
	}
	c.Processor = storage.NewImageProcessor(cfg.Upload.PlaceImageMax)

	// Validators
	c.UploadValidator = upload.NewValidator(upload.Rules{
		MaxSize:       cfg.Upload.MaxSize,
		AllowedTypes:  cfg.Upload.AllowedMIMETypes(),
		CheckDeclared: true,
	})
	c.AvatarValidator = upload.NewValidator(upload.Rules{
		MaxSize:       cfg.Upload.MaxSize,
		AllowedTypes:  cfg.Upload.AllowedMIMETypes(),
		CheckDeclared: true,
	})
	c.PlaceImageValidator = upload.NewValidator(upload.Rules{
		MaxSize:      cfg.Upload.PlaceImageMax,
		AllowedTypes: placeImageTypes,
		Extensions:   cfg.Upload.PlaceImageFormat,
	})

	return nil
}

func (c *Container) initRepositories() {
	if c.DB != nil {
		c.UserRepo = userRepo.NewPostgresRepository(c.DB.Pool)
		c.PlaceRepo = placeRepo.NewPostgresPlaceRepository(c.DB.Pool)
		c.ImageRepo = placeRepo.NewPostgresImageRepository(c.DB.Pool)
		return
	}

	c.UserRepo = userRepo.NewMemoryRepository()
	mem := placeRepo.NewMemoryStore()
	c.PlaceRepo = mem
	c.ImageRepo = mem
}

func (c *Container) initServices() {
	c.UploadService = uploadService.NewUploadService(c.Storage)
	c.UserService = userService.NewUserService(c.UserRepo, c.UploadService, c.AvatarValidator, c.Config.App.PublicURL)

	// A nil TaskQueue makes the image service work inline.
	var tasks placeService.TaskQueue
	if c.Dispatcher != nil {
		tasks = c.Dispatcher
	}
	c.ImageService = placeService.NewImageService(
		c.ImageRepo,
		c.UploadService,
		c.PlaceImageValidator,
		c.Storage,
		c.Processor,
		tasks,
		c.Cache,
	)
	c.PlaceService = placeService.NewPlaceService(c.PlaceRepo, c.ImageService)
}

func (c *Container) initHandlers() {
	c.UploadHandler = uploadHandler.NewHandler(c.UploadService, c.UploadValidator)
	c.UserHandler = userHandler.NewUserHandler(c.UserService, c.Config.Upload.MaxSize)
	c.PlaceHandler = placeHandler.NewHandler(c.PlaceService, c.Cache, c.Config.Cache.PlacesTTL, c.Config.Upload.PlaceImageMax)
}

// Status values reported by Health.
const (
	StatusUp       = "up"
	StatusDown     = "down"
	StatusInMemory = "memory"
)

// Health reports the state of the database and the cache.
func (c *Container) Health(ctx context.Context) (dbStatus, cacheStatus string) {
	dbStatus, cacheStatus = StatusInMemory, StatusInMemory

	if c.DB != nil {
		dbStatus = StatusUp
		if err := c.DB.HealthCheck(ctx); err != nil {
			log.Warn().Err(err).Msg("Database health check failed")
			dbStatus = StatusDown
		}
	}

	if c.Redis != nil {
		cacheStatus = StatusUp
		if err := c.Redis.HealthCheck(ctx); err != nil {
			log.Warn().Err(err).Msg("Redis health check failed")
			cacheStatus = StatusDown
		}
	}
	return dbStatus, cacheStatus
}

// Cleanup releases connections. Safe on a partially built container.
func (c *Container) Cleanup() {
	log.Info().Msg("Cleaning up container resources")

	if c.AsynqClient != nil {
		if err := c.AsynqClient.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close asynq client")
		}
	}

	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close Redis")
		}
	}

	if c.DB != nil && c.DB.Pool != nil {
		c.DB.Pool.Close()
	}

	log.Info().Msg("Container cleanup completed")
}
