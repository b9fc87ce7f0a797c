package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	migrate "github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"doflin-hub/internal/api/middleware"
	v1 "doflin-hub/internal/api/v1"
	"doflin-hub/internal/catalog"
	"doflin-hub/internal/model"
	"doflin-hub/internal/ratelimit"
	"doflin-hub/internal/repository"
	"doflin-hub/internal/repository/postgres"
	"doflin-hub/internal/scheduler"
	schedulerjobs "doflin-hub/internal/scheduler/jobs"
	"doflin-hub/internal/service"
)

type Config struct {
	App struct {
		Env string `mapstructure:"env"`
	} `mapstructure:"app"`
	Server struct {
		Host            string        `mapstructure:"host"`
		Port            int           `mapstructure:"port"`
		ReadTimeout     time.Duration `mapstructure:"read_timeout"`
		WriteTimeout    time.Duration `mapstructure:"write_timeout"`
		ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	} `mapstructure:"server"`
	Database struct {
		URL         string        `mapstructure:"url"`
		MaxConns    int           `mapstructure:"max_conns"`
		PingTimeout time.Duration `mapstructure:"ping_timeout"`
	} `mapstructure:"database"`
	Log struct {
		Level    string `mapstructure:"level"`
		Encoding string `mapstructure:"encoding"`
	} `mapstructure:"log"`
	CORS struct {
		AllowOrigins []string `mapstructure:"allow_origins"`
	} `mapstructure:"cors"`
	RateLimit struct {
		RevealLimit  int           `mapstructure:"reveal_limit"`
		RevealWindow time.Duration `mapstructure:"reveal_window"`
	} `mapstructure:"ratelimit"`
	Debug struct {
		PprofEnabled bool `mapstructure:"pprof_enabled"`
	} `mapstructure:"debug"`
}

var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "healthcheck":
			os.Exit(runHealthcheck())
		case "migrate":
			if err := runMigrateCommand(); err != nil {
				fmt.Fprintln(os.Stderr, sanitizeCLIError(err))
				os.Exit(1)
			}
			return
		case "seed":
			if err := runSeedCommand(os.Args[2:]); err != nil {
				fmt.Fprintln(os.Stderr, sanitizeCLIError(err))
				os.Exit(1)
			}
			return
		}
	}

	cfg, err := loadConfig()
	if err != nil {
		panic(fmt.Errorf("load config: %w", err))
	}

	logger, err := newLogger(cfg)
	if err != nil {
		panic(fmt.Errorf("init logger: %w", err))
	}
	defer logger.Sync() //nolint:errcheck

	isDebugMode := strings.EqualFold(cfg.App.Env, "development")
	if !isDebugMode {
		gin.SetMode(gin.ReleaseMode)
	}

	// A down database must not keep the service from starting: reveal
	// answers 503 and stats/collection serve the fallback tables until
	// the store comes back.
	dbPool, err := newDBPool(context.Background(), cfg)
	if err != nil {
		logger.Error("connect database failed, starting degraded", zap.Error(err))
		dbPool = nil
	}
	if dbPool != nil {
		defer dbPool.Close()
	}

	var (
		doflinRepo    repository.DoflinRepository
		bagCodeRepo   repository.BagCodeRepository
		scanEventRepo repository.ScanEventRepository
	)
	if dbPool != nil {
		doflinRepo = postgres.NewDoflinRepository(dbPool)
		bagCodeRepo = postgres.NewBagCodeRepository(dbPool)
		scanEventRepo = postgres.NewScanEventRepository(dbPool)
	}

	revealSvc := service.NewRevealService(scanEventRepo, dbPool, logger)
	statsSvc := service.NewStatsService(dbPool, logger)
	collectionSvc := service.NewCollectionService(doflinRepo, logger)
	eventSvc := service.NewEventService(scanEventRepo, bagCodeRepo, logger)

	limiter := ratelimit.NewFixedWindow()

	statsJob := schedulerjobs.NewStatsJob(statsSvc, logger)
	statsJob.RefreshRemainingGauges()

	cronRunner := scheduler.NewScheduler(scheduler.Deps{
		StatsJob: statsJob,
	}, logger)
	cronRunner.Start()
	defer func() {
		stopCtx := cronRunner.Stop()
		select {
		case <-stopCtx.Done():
		case <-time.After(2 * time.Second):
		}
	}()

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(buildCORSMiddleware(cfg))
	router.Use(middleware.RequestLogger(logger))

	healthHandler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
	readyHandler := func(c *gin.Context) {
		if dbPool == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "not_ready",
				"error":  "database unavailable",
			})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.Database.PingTimeout)
		defer cancel()

		if err := dbPool.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "not_ready",
				"error":  "database unavailable",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	}

	router.GET("/health", healthHandler)
	router.GET("/health/ready", readyHandler)
	router.GET("/api/v1/health", healthHandler)
	router.GET("/api/v1/health/ready", readyHandler)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if isDebugMode && cfg.Debug.PprofEnabled {
		registerPprofRoutes(router)
		logger.Info("pprof endpoint enabled", zap.String("path", "/debug/pprof/"))
	}

	apiV1 := router.Group("/api/v1")
	v1.RegisterRevealRoutes(apiV1, revealSvc, limiter, cfg.RateLimit.RevealLimit, cfg.RateLimit.RevealWindow)
	v1.RegisterStatsRoutes(apiV1, statsSvc, logger)
	v1.RegisterCollectionRoutes(apiV1, collectionSvc, logger)
	v1.RegisterEventRoutes(apiV1, eventSvc, limiter)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serverErrCh := make(chan error, 1)
	go func() {
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- err
			return
		}
		serverErrCh <- nil
	}()

	logger.Info("server started",
		zap.String("addr", srv.Addr),
		zap.String("version", Version),
		zap.String("commit", Commit),
		zap.String("build_time", BuildTime),
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutdown signal received", zap.String("signal", sig.String()))
	case err := <-serverErrCh:
		if err != nil {
			logger.Fatal("server exited unexpectedly", zap.Error(err))
		}
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown server failed", zap.Error(err))
	}
}

func loadConfig() (Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("DOFLIN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("database.url", "DOFLIN_DATABASE_URL", "DATABASE_URL")

	v.SetDefault("app.env", "development")
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("database.url", "")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.ping_timeout", "3s")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "json")
	v.SetDefault("cors.allow_origins", []string{"http://localhost:3000"})
	v.SetDefault("ratelimit.reveal_limit", 10)
	v.SetDefault("ratelimit.reveal_window", "60s")
	v.SetDefault("debug.pprof_enabled", false)

	if err := v.ReadInConfig(); err != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if !errors.As(err, &notFoundErr) {
			return Config{}, fmt.Errorf("read config file failed: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config failed: %w", err)
	}

	if cfg.Database.MaxConns <= 0 {
		return Config{}, errors.New("database.max_conns must be greater than 0")
	}

	if cfg.Database.PingTimeout <= 0 {
		return Config{}, errors.New("database.ping_timeout must be greater than 0")
	}

	if cfg.RateLimit.RevealLimit <= 0 {
		return Config{}, errors.New("ratelimit.reveal_limit must be greater than 0")
	}

	if cfg.RateLimit.RevealWindow <= 0 {
		return Config{}, errors.New("ratelimit.reveal_window must be greater than 0")
	}

	if len(cfg.CORS.AllowOrigins) == 0 {
		return Config{}, errors.New("cors.allow_origins must not be empty")
	}
	for _, origin := range cfg.CORS.AllowOrigins {
		if strings.TrimSpace(origin) == "*" {
			return Config{}, errors.New("cors.allow_origins must not contain wildcard *")
		}
	}

	return cfg, nil
}

func newLogger(cfg Config) (*zap.Logger, error) {
	var zapCfg zap.Config
	if strings.EqualFold(cfg.App.Env, "development") {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	if cfg.Log.Level != "" {
		if err := zapCfg.Level.UnmarshalText([]byte(cfg.Log.Level)); err != nil {
			return nil, fmt.Errorf("invalid log.level: %w", err)
		}
	}

	if cfg.Log.Encoding != "" {
		zapCfg.Encoding = cfg.Log.Encoding
	}

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build zap logger failed: %w", err)
	}

	return logger, nil
}

func newDBPool(ctx context.Context, cfg Config) (*pgxpool.Pool, error) {
	if strings.TrimSpace(cfg.Database.URL) == "" {
		return nil, errors.New("database.url is empty")
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database.url failed: %w", err)
	}

	const maxInt32 = int(^uint32(0) >> 1)
	if cfg.Database.MaxConns > maxInt32 {
		return nil, fmt.Errorf("database.max_conns must be <= %d", maxInt32)
	}

	poolCfg.MaxConns = int32(cfg.Database.MaxConns) // #nosec G115 -- validated upper bound above.

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool failed: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.Database.PingTimeout)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database failed: %w", err)
	}

	return pool, nil
}

func buildCORSMiddleware(cfg Config) gin.HandlerFunc {
	origins := make([]string, 0, len(cfg.CORS.AllowOrigins))
	for _, origin := range cfg.CORS.AllowOrigins {
		trimmed := strings.TrimSpace(origin)
		if trimmed == "" {
			continue
		}
		origins = append(origins, trimmed)
	}
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}

	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type"},
		ExposeHeaders:    []string{"Content-Type", "Retry-After"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	})
}

func registerPprofRoutes(router *gin.Engine) {
	pprofGroup := router.Group("/debug/pprof")
	pprofGroup.GET("/", gin.WrapF(pprof.Index))
	pprofGroup.GET("/cmdline", gin.WrapF(pprof.Cmdline))
	pprofGroup.GET("/profile", gin.WrapF(pprof.Profile))
	pprofGroup.GET("/symbol", gin.WrapF(pprof.Symbol))
	pprofGroup.POST("/symbol", gin.WrapF(pprof.Symbol))
	pprofGroup.GET("/trace", gin.WrapF(pprof.Trace))
	pprofGroup.GET("/allocs", gin.WrapH(pprof.Handler("allocs")))
	pprofGroup.GET("/block", gin.WrapH(pprof.Handler("block")))
	pprofGroup.GET("/goroutine", gin.WrapH(pprof.Handler("goroutine")))
	pprofGroup.GET("/heap", gin.WrapH(pprof.Handler("heap")))
	pprofGroup.GET("/mutex", gin.WrapH(pprof.Handler("mutex")))
	pprofGroup.GET("/threadcreate", gin.WrapH(pprof.Handler("threadcreate")))
}

func runMigrateCommand() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config failed: %w", err)
	}
	if strings.TrimSpace(cfg.Database.URL) == "" {
		return errors.New("database.url is required")
	}

	migrationDir := "/migrations"
	if _, statErr := os.Stat(migrationDir); statErr != nil {
		migrationDir = "./migrations"
	}

	migrator, err := migrate.New("file://"+migrationDir, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("init migrator failed: %w", err)
	}
	defer migrator.Close() //nolint:errcheck

	if err := migrator.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations failed: %w", err)
	}

	fmt.Println("migrations applied successfully")
	return nil
}

// runSeedCommand loads the embedded catalog into an empty database and
// generates redeemable codes with random pack contents.
func runSeedCommand(args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config failed: %w", err)
	}
	if strings.TrimSpace(cfg.Database.URL) == "" {
		return errors.New("database.url is required")
	}

	fs := flag.NewFlagSet("seed", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var codeCount int
	var packSize int

	fs.IntVar(&codeCount, "codes", 50, "number of codes to generate")
	fs.IntVar(&packSize, "pack-size", 3, "doflins per code (1, 3 or 5)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if codeCount < 0 {
		return errors.New("codes must be >= 0")
	}
	if packSize != 1 && packSize != 3 && packSize != 5 {
		return errors.New("pack-size must be 1, 3 or 5")
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("parse database config failed: %w", err)
	}
	poolCfg.MaxConns = 2

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return fmt.Errorf("connect database failed: %w", err)
	}
	defer pool.Close()

	doflinRepo := postgres.NewDoflinRepository(pool)
	bagCodeRepo := postgres.NewBagCodeRepository(pool)

	existing, err := doflinRepo.CountActive(ctx)
	if err != nil {
		return fmt.Errorf("count catalog failed: %w", err)
	}

	var seeded []model.Doflin
	if existing > 0 {
		fmt.Printf("catalog already has %d active doflins, skipping catalog seed\n", existing)
		listed, listErr := doflinRepo.ListActive(ctx)
		if listErr != nil {
			return fmt.Errorf("list catalog failed: %w", listErr)
		}
		for _, item := range listed {
			if item != nil {
				seeded = append(seeded, *item)
			}
		}
	} else {
		for _, item := range catalog.Fallback() {
			doflin := item
			doflin.ID = 0
			if createErr := doflinRepo.Create(ctx, &doflin); createErr != nil {
				return fmt.Errorf("seed doflin %q failed: %w", doflin.Slug, createErr)
			}
			seeded = append(seeded, doflin)
		}
		fmt.Printf("seeded %d doflins\n", len(seeded))
	}

	if len(seeded) == 0 {
		return errors.New("no doflins available to assign to codes")
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano())) // #nosec G404 -- seed data, not secrets.

	for i := 0; i < codeCount; i++ {
		code := generateCode()
		items := make([]*model.BagCodeItem, 0, packSize)
		for pos := 1; pos <= packSize; pos++ {
			picked := pickWeighted(seeded, rng)
			items = append(items, &model.BagCodeItem{
				DoflinID: picked.ID,
				Position: pos,
			})
		}

		bagCode := &model.BagCode{
			Code:     code,
			PackSize: packSize,
			DoflinID: items[0].DoflinID,
			Status:   model.BagCodeStatusActive,
		}
		if err := bagCodeRepo.Create(ctx, bagCode, items); err != nil {
			return fmt.Errorf("create code %s failed: %w", code, err)
		}
	}

	fmt.Printf("generated %d codes with pack size %d\n", codeCount, packSize)
	return nil
}

// generateCode derives a 10-char uppercase alphanumeric code from UUID
// entropy, matching the printed-code format.
func generateCode() string {
	raw := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return raw[:10]
}

// pickWeighted draws one catalog entry using the per-item rarity weights,
// so generated packs follow the published pull rates.
func pickWeighted(doflins []model.Doflin, rng *rand.Rand) model.Doflin {
	total := 0
	for _, d := range doflins {
		if d.Probability > 0 {
			total += d.Probability
		}
	}
	if total <= 0 {
		return doflins[rng.Intn(len(doflins))]
	}

	pick := rng.Intn(total)
	for _, d := range doflins {
		if d.Probability <= 0 {
			continue
		}
		pick -= d.Probability
		if pick < 0 {
			return d
		}
	}
	return doflins[len(doflins)-1]
}

func runHealthcheck() int {
	port := 8080
	if cfg, err := loadConfig(); err == nil && cfg.Server.Port > 0 {
		port = cfg.Server.Port
	}

	client := &http.Client{
		Timeout: 5 * time.Second,
	}

	resp, err := client.Get(fmt.Sprintf("http://localhost:%d/health", port))
	if err != nil {
		return 1
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return 1
	}
	return 0
}

func sanitizeCLIError(err error) string {
	if err == nil {
		return ""
	}

	text := strings.ReplaceAll(err.Error(), "\n", " ")
	text = strings.ReplaceAll(text, "\r", " ")
	return strings.TrimSpace(text)
}
