package main

import (
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	appmodules "bookstack/app"
	"bookstack/app/jobs"
	"bookstack/app/search"
	coremodules "bookstack/core/app"
	"bookstack/core/app/auth"
	"bookstack/core/config"
	"bookstack/core/database"
	_ "bookstack/core/docs"
	"bookstack/core/email"
	"bookstack/core/emitter"
	"bookstack/core/logger"
	"bookstack/core/module"
	"bookstack/core/router"
	"bookstack/core/router/middleware"
	"bookstack/core/scheduler"
	"bookstack/core/storage"
	"bookstack/core/websocket"
)

// @title Bookstack API
// @description Personal library catalog with faceted summary search
// @license.name MIT
// @license.url https://opensource.org/licenses/MIT
// @version 1.0.0
// @BasePath /api
// @schemes http https
// @accept json
// @produce json
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Enter your token with the prefix "Bearer "

// App wires configuration, infrastructure and modules together.
type App struct {
	config      *config.Config
	db          *database.Database
	router      *router.Router
	logger      logger.Logger
	emitter     *emitter.Emitter
	storage     *storage.ActiveStorage
	emailSender email.Sender
	wsHub       *websocket.Hub
	scheduler   *scheduler.CronScheduler

	verbose bool
}

func New() *App {
	verbose := false
	for _, arg := range os.Args {
		if arg == "-v" || arg == "--verbose" {
			verbose = true
			break
		}
	}
	return &App{verbose: verbose}
}

// Start initializes and starts the application.
func (app *App) Start() error {
	return app.
		loadEnvironment().
		initConfig().
		initLogger().
		initDatabase().
		initInfrastructure().
		initRouter().
		registerModules().
		setupRoutes().
		startScheduler().
		displayServerInfo().
		run()
}

func (app *App) loadEnvironment() *App {
	// Missing .env is fine; environment variables still apply.
	_ = godotenv.Load()
	return app
}

func (app *App) initConfig() *App {
	app.config = config.NewConfig()
	return app
}

func (app *App) initLogger() *App {
	log, err := logger.NewLogger(logger.Config{
		Environment: app.config.Env,
		LogPath:     "logs",
		Level:       "debug",
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}

	app.logger = log
	return app
}

func (app *App) initDatabase() *App {
	db, err := database.InitDB(app.config)
	if err != nil {
		app.logger.Error("Failed to initialize database", logger.String("error", err.Error()))
		panic(fmt.Sprintf("Database initialization failed: %v", err))
	}

	app.db = db

	if app.verbose {
		app.logger.Info("Database connected", logger.String("driver", app.config.DBDriver))
	}

	return app
}

func (app *App) initInfrastructure() *App {
	app.emitter = emitter.New()

	activeStorage, err := storage.NewActiveStorage(app.db.DB, storage.Config{
		Provider:  app.config.StorageProvider,
		Path:      app.config.StoragePath,
		BaseURL:   app.config.StorageBaseURL,
		APIKey:    app.config.StorageAPIKey,
		APISecret: app.config.StorageAPISecret,
		Endpoint:  app.config.StorageEndpoint,
		Bucket:    app.config.StorageBucket,
		Region:    app.config.StorageRegion,
		CDN:       app.config.CDN,
	})
	if err != nil {
		app.logger.Error("Failed to initialize storage", logger.String("error", err.Error()))
		panic(fmt.Sprintf("Storage initialization failed: %v", err))
	}
	app.storage = activeStorage

	if app.verbose {
		app.logger.Info("Storage initialized", logger.String("provider", app.config.StorageProvider))
	}

	// Email is optional; registration works without a welcome mail.
	emailSender, err := email.NewSender(app.config)
	if err != nil {
		app.logger.Warn("Email sender not configured", logger.String("error", err.Error()))
	} else {
		app.emailSender = emailSender
	}

	return app
}

func (app *App) initRouter() *App {
	app.router = router.New()
	app.setupMiddleware()
	app.setupStaticRoutes()
	app.initWebSocket()

	if app.verbose {
		app.logger.Info("Router and middleware initialized")
	}

	return app
}

func (app *App) setupMiddleware() {
	middleware.ApplyConfigurableMiddleware(app.router, &app.config.Middleware)

	app.router.Use(func(next router.HandlerFunc) router.HandlerFunc {
		return func(c *router.Context) error {
			path := c.Request.URL.Path
			if !app.config.Middleware.IsLoggingRequired(path) {
				return next(c)
			}

			start := time.Now()
			err := next(c)

			app.logger.Info("Request",
				logger.String("method", c.Request.Method),
				logger.String("path", path),
				logger.Int("status", c.Writer.Status()),
				logger.Duration("duration", time.Since(start)),
				logger.String("ip", c.ClientIP()),
			)
			return err
		}
	})

	if app.config.Middleware.CORSEnabled {
		corsOrigins := strings.Split(os.Getenv("CORS_ALLOWED_ORIGINS"), ",")
		app.router.Use(middleware.CORSMiddleware(corsOrigins))
	}
}

func (app *App) setupStaticRoutes() {
	app.router.Static("/static", "./static")
	app.router.Static("/storage", "./storage")
	app.router.Static("/swagger", "./swagger")
}

func (app *App) initWebSocket() {
	if !app.config.WebSocketEnabled {
		return
	}

	app.wsHub = websocket.InitWebSocketModule(app.router.Group("/api"))
	appmodules.RelayEvents(app.emitter, app.wsHub)

	if app.verbose {
		app.logger.Info("WebSocket initialized")
	}
}

// registerModules initializes core modules first, then the domain
// modules, sharing one API group so authentication covers everything.
func (app *App) registerModules() *App {
	apiGroup := app.router.Group("/api")
	apiGroup.Use(auth.Middleware(app.config))

	deps := module.Dependencies{
		DB:          app.db.DB,
		Router:      apiGroup,
		Logger:      app.logger,
		Emitter:     app.emitter,
		Storage:     app.storage,
		EmailSender: app.emailSender,
		Config:      app.config,
	}

	initializer := module.NewInitializer(app.logger)
	coreProvider := coremodules.NewCoreModules(appmodules.GetSearchRegistry())
	appProvider := appmodules.NewAppModules()
	orchestrator := module.NewOrchestrator(initializer, coreProvider, appProvider)

	coreInitialized := orchestrator.InitializeCore(deps)
	appInitialized := orchestrator.InitializeApp(deps)

	// The cache sweep job needs the search module's cache.
	for _, m := range appInitialized {
		if searchModule, ok := m.(*search.Module); ok {
			app.scheduler = jobs.SetupScheduler(searchModule.Service.Cache, app.logger)
		}
	}

	if app.verbose {
		app.logger.Info("Modules initialized",
			logger.Int("core", len(coreInitialized)),
			logger.Int("app", len(appInitialized)))
	}

	return app
}

func (app *App) setupRoutes() *App {
	app.router.GET("/health", func(c *router.Context) error {
		return c.JSON(200, map[string]any{
			"status":  "ok",
			"version": app.config.Version,
		})
	})

	app.router.GET("/swagger", func(c *router.Context) error {
		return c.Redirect(302, "/swagger/index.html")
	})

	// Production build with a frontend bundle in ./public
	if _, err := os.Stat("./public"); err == nil {
		if app.verbose {
			app.logger.Info("Serving frontend from ./public")
		}

		app.router.GET("/_nuxt/*filepath", func(c *router.Context) error {
			filepath := c.Param("filepath")
			http.ServeFile(c.Writer, c.Request, "./public/_nuxt/"+filepath)
			return nil
		})

		app.router.NotFound(func(c *router.Context) error {
			if strings.HasPrefix(c.Request.URL.Path, "/api") {
				return c.JSON(404, map[string]any{
					"error": "Not found",
				})
			}
			http.ServeFile(c.Writer, c.Request, "./public/index.html")
			return nil
		})
	} else {
		app.router.GET("/", func(c *router.Context) error {
			return c.JSON(200, map[string]any{
				"message": "pong",
				"version": app.config.Version,
			})
		})
	}

	return app
}

func (app *App) startScheduler() *App {
	if app.scheduler != nil {
		app.scheduler.Start()
	}
	return app
}

func (app *App) displayServerInfo() *App {
	localIP := app.getLocalIP()
	port := app.config.ServerPort

	fmt.Printf("\n\033[1;32mBookstack API Ready!\033[0m\n\n")
	fmt.Printf("\033[36mServer URLs:\033[0m\n")
	fmt.Printf("  Local:   http://localhost%s\n", port)
	fmt.Printf("  Network: http://%s%s\n\n", localIP, port)
	fmt.Printf("\033[36mAPI Documentation:\033[0m\n")
	fmt.Printf("  Swagger: http://localhost%s/swagger/\n\n", port)

	return app
}

func (app *App) getLocalIP() string {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return "localhost"
	}

	for _, addr := range addrs {
		if ipnet, ok := addr.(*net.IPNet); ok && !ipnet.IP.IsLoopback() {
			if ipnet.IP.To4() != nil {
				return ipnet.IP.String()
			}
		}
	}
	return "localhost"
}

func (app *App) run() error {
	port := app.config.ServerPort

	if app.verbose {
		app.logger.Info("Server starting", logger.String("port", port))
	}

	if err := app.router.Run(port); err != nil {
		if strings.Contains(err.Error(), "bind: address already in use") {
			app.logger.Error("Server failed to start - Port already in use",
				logger.String("port", port),
				logger.String("error", err.Error()))
			return fmt.Errorf("port %s is already in use; stop the other server or change SERVER_PORT", port)
		}
		app.logger.Error("Server failed to start",
			logger.String("error", err.Error()))
		return fmt.Errorf("server failed to start: %w", err)
	}
	return nil
}

func main() {
	app := New()
	if err := app.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}
