package main

import (
	"log"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/pwanystay/pwanystay-api/internal/cache"
	"github.com/pwanystay/pwanystay-api/internal/config"
	"github.com/pwanystay/pwanystay-api/internal/db"
	"github.com/pwanystay/pwanystay-api/internal/middleware"
	"github.com/pwanystay/pwanystay-api/internal/services/admin"
	"github.com/pwanystay/pwanystay-api/internal/services/auth"
	"github.com/pwanystay/pwanystay-api/internal/services/resource"
	"github.com/pwanystay/pwanystay-api/internal/services/upload"
	"github.com/pwanystay/pwanystay-api/internal/store"
	"github.com/pwanystay/pwanystay-api/internal/utils"
)

func main() {
	cfg := config.LoadConfig()

	if err := db.InitDB(cfg); err != nil {
		log.Fatalf("❌ Failed to initialize database: %v", err)
	}
	defer db.CloseDB()

	app := fiber.New(fiber.Config{
		AppName:      "PwanyStay API",
		ErrorHandler: errorHandler,
		BodyLimit:    upload.MaxUploadSize + 1<<20,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:  []string{cfg.FrontendURL},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		ExposeHeaders: []string{"X-Cache"},
	}))

	// Stores: Postgres primary, file-backed fallback, resilient wrapper on
	// the read/create path.
	primary := store.NewPostgres(db.Pool)
	fallback := store.NewLocal(cfg.FallbackStorePath)
	resilient := store.NewResilient(primary, fallback, cfg.DBTimeout)

	responseCache := cache.New(cfg)

	authService := auth.NewAuthService(cfg, fallback)
	adminService := admin.NewAdminService(cfg, primary, fallback)
	uploadService := upload.NewUploadService(cfg)
	resourceService := resource.NewResourceService(cfg, resilient, uploadService)

	authMiddleware := middleware.AuthMiddleware(authService.GetJWTService())
	cacheMiddleware := middleware.CacheMiddleware(responseCache, cfg.CacheTTL)

	authService.SetupRoutes(app)
	adminService.SetupRoutes(app)
	uploadService.SetupRoutes(app, authMiddleware)
	resourceService.SetupRoutes(app, authMiddleware, cacheMiddleware)

	app.Use(func(c fiber.Ctx) error {
		return utils.Fail(c, fiber.StatusNotFound, "Not Found")
	})

	log.Printf("✅ PwanyStay API listening on port %s", cfg.Port)
	log.Fatal(app.Listen(":" + cfg.Port))
}

// errorHandler keeps unexpected errors inside the response envelope.
func errorHandler(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}
	log.Printf("unhandled error: %v", err)
	return utils.Fail(c, code, err.Error())
}
