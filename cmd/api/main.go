package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/ggorockee/coffeemode/docs"
	"github.com/ggorockee/coffeemode/internal/config"
	"github.com/ggorockee/coffeemode/internal/database"
	"github.com/ggorockee/coffeemode/internal/handlers"
	"github.com/ggorockee/coffeemode/internal/logger"
	"github.com/ggorockee/coffeemode/internal/middleware"
	"github.com/ggorockee/coffeemode/internal/repository"
	"github.com/ggorockee/coffeemode/internal/services"
	"github.com/ggorockee/coffeemode/internal/telemetry"
	"github.com/ggorockee/coffeemode/pkg/firebase"
	"github.com/ggorockee/coffeemode/pkg/googleplaces"
	"github.com/ggorockee/coffeemode/pkg/linkfollow"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/joho/godotenv"
)

const serviceName = "coffeemode-api"

// @title coffeemode API
// @version 1.0.0
// @description 작업하기 좋은 카페 정보 API (Google Maps 링크/게시물 → 카페)
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	_ = godotenv.Load()

	cfg := config.Load()

	if err := logger.Init(cfg.ServerEnv); err != nil {
		panic(err)
	}
	defer logger.Sync()
	log := logger.GetLogger("main")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry Tracer
	tracerShutdown, err := telemetry.InitTracer(ctx, serviceName, cfg.SigNozEndpoint)
	if err != nil {
		log.Warnf("Failed to initialize tracer: %v", err)
	} else {
		defer shutdownWithTimeout(tracerShutdown, "tracer")
	}

	// Initialize OpenTelemetry Metrics
	meterShutdown, err := telemetry.InitMeter(ctx, serviceName, cfg.SigNozEndpoint)
	if err != nil {
		log.Warnf("Failed to initialize metrics: %v", err)
	} else {
		defer shutdownWithTimeout(meterShutdown, "meter")
	}

	// Initialize database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	go database.StartConnectionPoolMetricsCollector(ctx, db.DB, 15*time.Second)

	app := fiber.New(fiber.Config{
		AppName:      "coffeemode API",
		ErrorHandler: handlers.ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format:     `{"time":"${time}","status":${status},"latency":"${latency}","ip":"${ip}","method":"${method}","path":"${path}","request_id":"${locals:requestid}","user_agent":"${ua}","error":"${error}"}` + "\n",
		TimeFormat: "2006-01-02T15:04:05Z07:00",
		TimeZone:   "Asia/Seoul",
	}))
	app.Use(telemetry.New(telemetry.DefaultConfig()))
	app.Use(middleware.PrometheusMiddleware())
	// 웹 프론트엔드와 모바일 앱에서 호출하므로 모든 origin 허용
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "*",
		AllowMethods:     "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		AllowHeaders:     "Accept, Accept-Encoding, Authorization, Content-Type, Origin, User-Agent, X-Requested-With",
		AllowCredentials: false,
		ExposeHeaders:    "Content-Length, Content-Type",
		MaxAge:           86400,
	}))

	setupRoutes(ctx, app, db, cfg)

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		log.Info("Shutting down server...")
		cancel()
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Errorf("Error shutting down server: %v", err)
		}
	}()

	port := cfg.ServerPort
	if port == "" {
		port = "8080"
	}
	log.Infof("Server starting on port %s", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func setupRoutes(ctx context.Context, app *fiber.App, db *database.DB, cfg *config.Config) {
	log := logger.GetLogger("main")

	// Swagger UI, metrics and k8s probes
	app.Get("/docs/*", swagger.HandlerDefault)
	app.Get("/metrics", middleware.PrometheusHandler())
	app.Get("/health", handlers.HealthCheck)
	app.Get("/health/live", handlers.LivenessCheck)
	app.Get("/health/ready", handlers.ReadinessCheck(db))
	app.Get("/", handlers.Home)

	// Stores
	cafeRepo := repository.NewCafeRepo(db)
	placeCache := repository.NewPlaceCacheRepo(db)
	linkRepo := repository.NewSharedLinkRepo(db)
	userRepo := repository.NewUserRepo(db)

	// External providers
	placesCfg := googleplaces.DefaultConfig()
	placesCfg.APIKey = cfg.GoogleMapsAPIKey
	placesCfg.Timeout = cfg.PlacesTimeout
	placesCfg.MaxRetries = cfg.PlacesMaxRetries
	placesCfg.Language = cfg.PlacesLanguage
	var lookup services.PlaceLookup
	if places, err := googleplaces.NewClient(placesCfg); err != nil {
		log.Warnf("Google Places disabled: %v", err)
		lookup = unavailableLookup{}
	} else {
		lookup = places
	}

	followCfg := linkfollow.DefaultConfig()
	followCfg.Timeout = cfg.LinkRedirectTimeout
	followCfg.CacheTTL = cfg.LinkRedirectCacheTTL
	follower := linkfollow.New(followCfg)

	// Firebase 미설정 시 인증이 필요한 라우트는 503
	var verifier middleware.TokenVerifier
	if authClient, err := firebase.NewAuthClient(ctx, cfg.FirebaseCredentials, cfg.FirebaseCredentialsPath); err != nil {
		log.Warnf("Firebase auth disabled: %v", err)
	} else {
		verifier = authClient
	}
	auth := middleware.AuthRequired(verifier)

	resolverCfg := services.ResolverConfig{
		CategoryHint:     cfg.CategoryHint,
		CategorySynonyms: cfg.CategorySynonyms,
		AutoCreateCafe:   cfg.LinkAutoCreateCafe,
	}

	api := app.Group("/api")

	handlers.SetupGoogleMapsRoutes(api.Group("/google-maps"), handlers.NewGoogleMapsHandler(
		services.NewPlaceResolver(lookup, placeCache, cafeRepo, resolverCfg),
		services.NewLinkResolver(follower, cafeRepo, linkRepo, resolverCfg),
	), middleware.OptionalAuth(verifier))
	handlers.SetupCafeRoutes(api.Group("/cafes"), handlers.NewCafeHandler(services.NewCafeService(cafeRepo)), auth)
	handlers.SetupUserRoutes(api.Group("/users"), handlers.NewUserHandler(services.NewUserService(userRepo)), auth)
	handlers.SetupImageRoutes(api.Group("/images"),
		handlers.NewImageHandler(services.NewUploadTokenService(cfg.JWTSecretKey, cfg.UploadTokenExpireMinutes)), auth)

	app.Use(handlers.NotFound)
}

func shutdownWithTimeout(shutdown func(context.Context) error, name string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		logger.GetLogger("main").Warnf("Error shutting down %s: %v", name, err)
	}
}
