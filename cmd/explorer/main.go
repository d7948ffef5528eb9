// ExplorerService 主程序
// 功能：链上撮合所的链下后端，摄取账本区块、撮合订单、回写结算并提供行情查询
// 架构：基于 DDD + 后台轮询 worker + gin 读侧接口
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/privx-exchange/privx-exchange-backend/internal/exchange/application"
	"github.com/privx-exchange/privx-exchange-backend/internal/exchange/domain"
	"github.com/privx-exchange/privx-exchange-backend/internal/exchange/infrastructure/ledger"
	"github.com/privx-exchange/privx-exchange-backend/internal/exchange/infrastructure/messaging"
	"github.com/privx-exchange/privx-exchange-backend/internal/exchange/infrastructure/persistence/mysql"
	"github.com/privx-exchange/privx-exchange-backend/internal/exchange/infrastructure/settlement"
	exchangehttp "github.com/privx-exchange/privx-exchange-backend/internal/exchange/interfaces/http"
	"github.com/privx-exchange/privx-exchange-backend/pkg/config"
	"github.com/privx-exchange/privx-exchange-backend/pkg/db"
	"github.com/privx-exchange/privx-exchange-backend/pkg/logger"
	"github.com/privx-exchange/privx-exchange-backend/pkg/metrics"
	"github.com/privx-exchange/privx-exchange-backend/pkg/middleware"
	"github.com/privx-exchange/privx-exchange-backend/pkg/mq"
)

func main() {
	// 1. 加载配置
	var configPath string
	flag.StringVar(&configPath, "config", "configs/explorer/config.toml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	if err := logger.Init(cfg.Logger); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	logger.Info(ctx, "Starting ExplorerService",
		"service", cfg.ServiceName,
		"version", cfg.Version,
		"environment", cfg.Environment,
	)

	// 3. 初始化数据库
	database, err := db.Init(db.Config{
		Driver:             cfg.Database.Driver,
		DSN:                cfg.Database.DSN,
		MaxOpenConns:       cfg.Database.MaxOpenConns,
		MaxIdleConns:       cfg.Database.MaxIdleConns,
		ConnMaxLifetime:    cfg.Database.ConnMaxLifetime,
		LogEnabled:         cfg.Database.LogEnabled,
		SlowQueryThreshold: cfg.Database.SlowQueryThreshold,
	})
	if err != nil {
		logger.Fatal(ctx, "Failed to initialize database", "error", err)
	}
	defer database.Close()

	if err := database.AutoMigrate(
		&domain.Token{},
		&domain.Block{},
		&domain.Order{},
		&domain.Trade{},
	); err != nil {
		logger.Fatal(ctx, "Failed to migrate database", "error", err)
	}

	// 4. 初始化仓储并种子化交易对目录
	tokenRepo := mysql.NewTokenRepository(database.DB)
	blockRepo := mysql.NewBlockRepository(database.DB)
	orderRepo := mysql.NewOrderRepository(database.DB)
	tradeRepo := mysql.NewTradeRepository(database.DB)

	if err := tokenRepo.Seed(ctx, tokensFromConfig(cfg.Tokens)); err != nil {
		logger.Fatal(ctx, "Failed to seed tokens", "error", err)
	}

	// 5. 初始化指标
	metricsInstance := metrics.New(cfg.ServiceName)
	if err := metricsInstance.Register(); err != nil {
		logger.Fatal(ctx, "Failed to register metrics", "error", err)
	}
	if cfg.Metrics.Enabled {
		if err := metrics.StartHTTPServer(cfg.Metrics.Port, cfg.Metrics.Path); err != nil {
			logger.Fatal(ctx, "Failed to start metrics HTTP server", "error", err)
		}
	}

	// 6. 初始化外部客户端
	ledgerClient := ledger.NewClient(
		cfg.Ledger.Host,
		cfg.Ledger.Network,
		time.Duration(cfg.Ledger.Timeout)*time.Second,
	)
	settlementClient := settlement.NewClient(
		cfg.Settlement.Host,
		cfg.Settlement.Network,
		time.Duration(cfg.Settlement.Timeout)*time.Second,
	)

	var tradePublisher domain.TradePublisher
	if cfg.Kafka.Enabled {
		producer, err := mq.NewProducer(mq.KafkaConfig{
			Brokers:      cfg.Kafka.Brokers,
			MaxRetries:   cfg.Kafka.MaxRetries,
			RetryBackoff: cfg.Kafka.RetryBackoff,
		})
		if err != nil {
			logger.Fatal(ctx, "Failed to create kafka producer", "error", err)
		}
		defer producer.Close()
		tradePublisher = messaging.NewTradePublisher(producer, cfg.Kafka.TradeTopic)
	}

	// 7. 初始化应用服务
	ingestionService := application.NewIngestionService(
		ledgerClient,
		blockRepo,
		tokenRepo,
		cfg.Ledger.ProgramID,
		int64(cfg.Ledger.BatchSize),
		time.Duration(cfg.Ledger.PollInterval)*time.Second,
		metricsInstance,
		logger.Get(),
	)
	matchingService := application.NewMatchingService(
		tokenRepo,
		orderRepo,
		tradeRepo,
		tradePublisher,
		time.Duration(cfg.Workers.MatchInterval)*time.Second,
		metricsInstance,
		logger.Get(),
	)
	settlementService := application.NewSettlementService(
		tradeRepo,
		orderRepo,
		tokenRepo,
		settlementClient,
		cfg.Settlement.ProgramID,
		cfg.Settlement.PrivateKey,
		cfg.Settlement.Fee,
		time.Duration(cfg.Settlement.PollInterval)*time.Second,
		metricsInstance,
		logger.Get(),
	)
	queryService := application.NewMarketDataQueryService(tokenRepo, orderRepo, tradeRepo)

	// 8. 启动后台 worker
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	go ingestionService.Run(workerCtx)
	go matchingService.Run(workerCtx)
	go settlementService.Run(workerCtx)

	// 9. 启动 HTTP 服务器
	httpServer := createHTTPServer(cfg, queryService, metricsInstance)
	go func() {
		logger.Info(ctx, "Starting HTTP server", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal(ctx, "HTTP server error", "error", err)
		}
	}()

	// 10. 优雅关停
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info(ctx, "Shutting down ExplorerService")

	stopWorkers()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "HTTP server shutdown error", "error", err)
	}

	logger.Info(ctx, "ExplorerService stopped")
}

// createHTTPServer 创建 HTTP 服务器
func createHTTPServer(cfg *config.Config, queryService *application.MarketDataQueryService, m *metrics.Metrics) *http.Server {
	if cfg.Environment == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.GinLoggingMiddleware())
	router.Use(middleware.GinRecoveryMiddleware())
	router.Use(middleware.GinCORSMiddleware())
	router.Use(middleware.GinRateLimitMiddleware(middleware.NewRateLimiter(200, 100)))
	router.Use(middleware.GinMetricsMiddleware(m))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"service":   cfg.ServiceName,
			"timestamp": time.Now().Unix(),
		})
	})

	handler := exchangehttp.NewHandler(queryService)
	handler.RegisterRoutes(router)

	return &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeout) * time.Second,
	}
}

// tokensFromConfig 把配置中的交易对目录转换为领域对象
func tokensFromConfig(items []config.TokenConfig) []*domain.Token {
	tokens := make([]*domain.Token, 0, len(items))
	for _, item := range items {
		tokens = append(tokens, &domain.Token{
			ID:             item.ID,
			Base:           item.Base,
			Quote:          item.Quote,
			Symbol:         item.Symbol,
			SellFunction:   item.SellFunction,
			BuyFunction:    item.BuyFunction,
			SettleFunction: item.SettleFunction,
		})
	}
	return tokens
}
