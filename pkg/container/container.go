package container

import (
	"context"
	"fmt"
	"log"
	"time"

	"medinfo-backend/internal/catalog"
	catalogHandler "medinfo-backend/internal/catalog/handler"
	"medinfo-backend/internal/config"
	"medinfo-backend/internal/docstore"
	infraCache "medinfo-backend/internal/infrastructure/cache"
	"medinfo-backend/internal/infrastructure/database"
	"medinfo-backend/internal/infrastructure/queue"
	"medinfo-backend/internal/infrastructure/storage"
	"medinfo-backend/internal/search"
	searchHandler "medinfo-backend/internal/search/handler"
	"medinfo-backend/pkg/cache"
	"medinfo-backend/pkg/session"

	"medinfo-backend/internal/domains/user"
	userHandler "medinfo-backend/internal/domains/user/handler"
	userRepo "medinfo-backend/internal/domains/user/repository"
	userService "medinfo-backend/internal/domains/user/service"
)

// ========================================
// CONTAINER STRUCT
// ========================================

// Container holds every dependency of the application. It is the root
// of the dependency graph; everything in it is a singleton built once
// at startup.
type Container struct {
	// Infrastructure layer
	Config   *config.Config
	DB       *database.PostgresDB
	Cache    cache.Cache
	Objects  *storage.MinIOStorage
	Sessions *session.Manager
	Queue    *queue.Client

	// Persistence layer
	DocStore docstore.Store
	UserRepo user.Repository

	// Service layer
	UserService     user.Service
	SearchService   *search.Service
	CatalogServices map[string]*catalog.Service // keyed by API path

	// Handler layer
	UserHandler    *userHandler.UserHandler
	SearchHandler  *searchHandler.SearchHandler
	EntityHandlers []*catalogHandler.EntityHandler
}

// ========================================
// CONSTRUCTOR
// ========================================

// NewContainer builds the full dependency graph. Initialization order
// matters: config, then infrastructure, then persistence, then
// services, then handlers.
func NewContainer() (*Container, error) {
	log.Println("🔧 Initializing DI Container...")

	c := &Container{}

	// Step 1: configuration
	log.Println("📋 Loading configuration...")
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg
	log.Printf("✅ Config loaded (Environment: %s)", cfg.App.Environment)

	// Step 2: database
	log.Println("🗄️  Connecting to PostgreSQL...")
	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load database config: %w", err)
	}

	db := database.NewPostgresDB(dbConfig)

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

	// Step 3: cache. A Redis outage is not fatal; list reads just skip
	// the cache.
	log.Println("🔴 Connecting to Redis...")
	redisCache := infraCache.NewRedisCache(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)
	if rc, ok := redisCache.(*infraCache.RedisCache); ok {
		if err := rc.Connect(context.Background()); err != nil {
			log.Printf("⚠️  Redis connection failed (non-critical): %v", err)
		} else {
			log.Println("✅ Redis connected")
		}
	}
	c.Cache = redisCache

	// Step 4: object storage
	log.Println("🪣 Connecting to MinIO...")
	objects, err := storage.NewMinIOStorage(cfg.MinIO)
	if err != nil {
		return nil, fmt.Errorf("failed to init object storage: %w", err)
	}
	c.Objects = objects
	log.Println("✅ Object storage ready")

	// Step 5: sessions + background queue
	c.Sessions = session.NewManager(cfg.Session.Secret)
	c.Queue = queue.NewClient(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)

	// Step 6: persistence
	log.Println("📦 Initializing repositories...")
	if err := c.initRepositories(); err != nil {
		return nil, fmt.Errorf("failed to init repositories: %w", err)
	}
	log.Println("✅ Repositories initialized")

	// Step 7: services
	log.Println("⚙️  Initializing services...")
	c.initServices()
	log.Println("✅ Services initialized")

	// Step 8: handlers
	log.Println("🎯 Initializing handlers...")
	c.initHandlers()
	log.Println("✅ Handlers initialized")

	log.Println("🎉 DI Container initialized successfully")
	return c, nil
}

// ========================================
// PRIVATE INITIALIZATION
// ========================================

func (c *Container) initRepositories() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, err := docstore.NewPostgresStore(ctx, c.DB.Pool)
	if err != nil {
		return fmt.Errorf("init document store: %w", err)
	}
	c.DocStore = store

	repo, err := userRepo.NewPostgresUserRepository(ctx, c.DB.Pool)
	if err != nil {
		return fmt.Errorf("init user repository: %w", err)
	}
	c.UserRepo = repo

	return nil
}

func (c *Container) initServices() {
	c.UserService = userService.NewUserService(c.UserRepo, c.Sessions)
	c.SearchService = search.NewService(c.DocStore)

	c.CatalogServices = make(map[string]*catalog.Service)
	for _, schema := range catalog.Registry() {
		c.CatalogServices[schema.APIPath] = catalog.NewService(schema, c.DocStore, c.Objects, c.Cache, c.Queue)
	}
}

func (c *Container) initHandlers() {
	c.UserHandler = userHandler.NewUserHandler(
		c.UserService,
		c.Config.Session.CookieDomain,
		c.Config.IsProduction(),
	)
	c.SearchHandler = searchHandler.NewSearchHandler(c.SearchService)

	c.EntityHandlers = make([]*catalogHandler.EntityHandler, 0, len(c.CatalogServices))
	for _, schema := range catalog.Registry() {
		c.EntityHandlers = append(c.EntityHandlers, catalogHandler.NewEntityHandler(c.CatalogServices[schema.APIPath]))
	}
}

// ========================================
// CLEANUP
// ========================================

// Cleanup releases every connection the container owns. Called on
// shutdown, reverse of initialization order.
func (c *Container) Cleanup() {
	log.Println("🧹 Cleaning up container...")

	if c.Queue != nil {
		if err := c.Queue.Close(); err != nil {
			log.Printf("⚠️  Failed to close queue client: %v", err)
		}
	}
	if rc, ok := c.Cache.(*infraCache.RedisCache); ok {
		if err := rc.Close(); err != nil {
			log.Printf("⚠️  Failed to close Redis: %v", err)
		}
	}
	if c.DB != nil {
		c.DB.Close()
	}

	log.Println("✅ Container cleaned up")
}
