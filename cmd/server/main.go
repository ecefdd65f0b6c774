package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"vaultshare/internal/config"
	cronrunner "vaultshare/internal/cron"
	"vaultshare/internal/db"
	"vaultshare/internal/engine"
	"vaultshare/internal/handler"
	"vaultshare/internal/logger"
	gormrepository "vaultshare/internal/repository/gorm"
	"vaultshare/internal/treasury"
)

func main() {
	cfgPath := os.Getenv("VS_CONFIG")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}

	envOnly := false
	if envOnlyRaw := os.Getenv("VS_ENV_ONLY"); envOnlyRaw != "" {
		envOnly = strings.EqualFold(envOnlyRaw, "true") || envOnlyRaw == "1"
	}

	cfg, err := config.Load(cfgPath, envOnly)
	if err != nil {
		panic(err)
	}

	logger, err := logger.New(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	assets, err := parseAssets(cfg.Assets)
	if err != nil {
		logger.Fatal("invalid asset config", zap.Error(err))
	}

	dbConn, err := db.Open(cfg.DB)
	if err != nil {
		logger.Fatal("db open failed", zap.Error(err))
	}
	defer db.Close(dbConn)

	if err := db.SetTimezone(dbConn, cfg.DB.Timezone); err != nil {
		logger.Warn("failed to set timezone", zap.Error(err))
	}
	if err := db.AutoMigrate(dbConn); err != nil {
		logger.Fatal("auto-migrate failed", zap.Error(err))
	}

	store := gormrepository.New(dbConn.Gorm)
	ledger := treasury.NewLedger(assets.PrimaryMint, assets.SecondaryMint)
	eng := engine.New(store, ledger, clockwork.NewRealClock(), logger, assets, cfg.Vault.RentFloor)

	if strings.EqualFold(cfg.App.Env, "dev") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())

	healthHandler := &handler.HealthHandler{DB: dbConn.Gorm}
	healthHandler.Register(router)
	investmentHandler := &handler.InvestmentHandler{Engine: eng, Store: store}
	investmentHandler.Register(router)
	recordHandler := &handler.RecordHandler{Engine: eng, Store: store}
	recordHandler.Register(router)
	distributionHandler := &handler.DistributionHandler{Engine: eng, Store: store}
	distributionHandler.Register(router)
	vaultHandler := &handler.VaultHandler{Engine: eng, Store: store}
	vaultHandler.Register(router)
	auditHandler := &handler.AuditHandler{Store: store}
	auditHandler.Register(router)

	srv := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Cron.Enabled {
		cronRunner := cronrunner.New(logger, ctx)
		_, err := cronRunner.Add(cfg.Cron.CachePurge, func(ctx context.Context) {
			if _, err := eng.PurgeExpiredCaches(ctx); err != nil {
				logger.Warn("cache purge failed", zap.Error(err))
			}
		})
		if err != nil {
			logger.Warn("cron register cache purge failed", zap.Error(err))
		}
		cronRunner.Start()
		defer cronRunner.Stop()
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server starting", zap.String("addr", cfg.Server.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown requested")
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

func parseAssets(cfg config.AssetsConfig) (engine.AssetRegistry, error) {
	programID, err := solana.PublicKeyFromBase58(strings.TrimSpace(cfg.ProgramID))
	if err != nil {
		return engine.AssetRegistry{}, err
	}
	primary, err := solana.PublicKeyFromBase58(strings.TrimSpace(cfg.PrimaryMint))
	if err != nil {
		return engine.AssetRegistry{}, err
	}
	secondary, err := solana.PublicKeyFromBase58(strings.TrimSpace(cfg.SecondaryMint))
	if err != nil {
		return engine.AssetRegistry{}, err
	}
	return engine.AssetRegistry{
		ProgramID:     programID,
		PrimaryMint:   primary,
		SecondaryMint: secondary,
	}, nil
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,PATCH,DELETE,OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
