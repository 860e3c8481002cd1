package container

import (
	"context"
	"fmt"
	"log"
	"time"

	"img2pdf-backend/internal/config"
	convHandler "img2pdf-backend/internal/domains/conversion/handler"
	convRepo "img2pdf-backend/internal/domains/conversion/repository"
	convService "img2pdf-backend/internal/domains/conversion/service"
	infraCache "img2pdf-backend/internal/infrastructure/cache"
	"img2pdf-backend/internal/infrastructure/database"
	"img2pdf-backend/internal/infrastructure/pdf"
	"img2pdf-backend/internal/infrastructure/storage"
	"img2pdf-backend/pkg/cache"
	pkgDatabase "img2pdf-backend/pkg/database"
	"img2pdf-backend/pkg/logger"
)

// ========================================
// CONTAINER STRUCT
// ========================================

// Container chứa TẤT CẢ dependencies của application
// Thứ tự initialize: Config → Infrastructure → Repositories → Services → Handlers
type Container struct {
	// Infrastructure - shared, singleton
	Config  *config.Config
	DB      *database.PostgresDB
	Cache   cache.Cache
	Storage *storage.MinIOStorage

	// Repository layer (data access)
	ConversionRepo convRepo.ConversionRepository
	ImageRepo      convRepo.ImageRepository

	// Service layer (business logic)
	ConversionService convService.ConversionService
	ImageService      convService.ImageService

	// Handler layer (HTTP)
	ConversionHandler *convHandler.ConversionHandler
	ImageHandler      *convHandler.ImageHandler

	redisCache *infraCache.RedisCache
}

// ========================================
// CONSTRUCTOR: BUILD CONTAINER
// ========================================

func NewContainer() (*Container, error) {
	log.Println("🔧 Initializing DI Container...")

	c := &Container{}

	// STEP 1: configuration
	log.Println("📋 Loading configuration...")

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg
	logger.Init(cfg.App.Environment)
	log.Printf("✅ Config loaded (Environment: %s)", cfg.App.Environment)

	// STEP 2: database
	log.Println("🗄️  Connecting to PostgreSQL...")

	db := database.NewPostgresDB(cfg.Database)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.HealthCheck(context.Background()); err != nil {
		return nil, fmt.Errorf("database health check failed: %w", err)
	}

	c.DB = db
	log.Println("✅ Database connected")

	// STEP 3: cache
	log.Println("🔴 Connecting to Redis...")

	redisCache := infraCache.NewRedisCache(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)
	if err := redisCache.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("redis health check failed: %w", err)
	}
	c.redisCache = redisCache
	c.Cache = redisCache
	log.Println("✅ Redis connected")

	// STEP 4: object storage
	log.Println("📦 Connecting to MinIO...")

	minioStorage, err := storage.NewMinIOStorage(cfg.MinIO)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize minio storage: %w", err)
	}
	c.Storage = minioStorage
	log.Println("✅ MinIO connected")

	// STEP 5: repositories
	c.ConversionRepo = convRepo.NewConversionRepository(db.Pool)
	c.ImageRepo = convRepo.NewImageRepository(db.Pool)

	// STEP 6: services
	txManager := pkgDatabase.NewTxManager(db.Pool)
	materializer := pdf.NewMaterializer(minioStorage)

	c.ConversionService = convService.NewConversionService(
		c.ConversionRepo,
		c.ImageRepo,
		minioStorage,
		materializer,
		txManager,
		c.Cache,
	)
	c.ImageService = convService.NewImageService(
		c.ConversionRepo,
		c.ImageRepo,
		minioStorage,
		txManager,
		c.Cache,
	)

	// STEP 7: handlers
	c.ConversionHandler = convHandler.NewConversionHandler(c.ConversionService)
	c.ImageHandler = convHandler.NewImageHandler(c.ImageService, minioStorage, cfg.App.MaxUploadMB)

	log.Println("✅ Container initialized")
	return c, nil
}

// Cleanup đóng các connection khi shutdown
func (c *Container) Cleanup() {
	if c.redisCache != nil {
		if err := c.redisCache.Close(); err != nil {
			log.Printf("⚠️  Failed to close redis: %v", err)
		}
	}
	if c.DB != nil {
		c.DB.Close()
	}
	log.Println("🧹 Container cleaned up")
}
