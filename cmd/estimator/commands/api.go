package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/MuayyedAlibrahim/Turkish-House-Price-Prediction/internal/analytics"
	"github.com/MuayyedAlibrahim/Turkish-House-Price-Prediction/internal/api"
	"github.com/MuayyedAlibrahim/Turkish-House-Price-Prediction/internal/api/handlers"
	"github.com/MuayyedAlibrahim/Turkish-House-Price-Prediction/internal/estimation"
	"github.com/MuayyedAlibrahim/Turkish-House-Price-Prediction/internal/scheduler"
	"github.com/MuayyedAlibrahim/Turkish-House-Price-Prediction/internal/scheduler/jobs"
	"github.com/MuayyedAlibrahim/Turkish-House-Price-Prediction/pkg/redis"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "API 서버 시작",
	Long: `REST API 서버를 시작합니다.

이 명령어는:
- 데이터셋 로드 및 모델 학습
- HTTP API 서버 시작
- 데이터셋 갱신 스케줄러 시작 (REFRESH_ENABLED)

Endpoints:
  GET  /health                   - Health check
  POST /api/estimate             - 가격 추정
  GET  /api/similar              - 유사 매물
  GET  /api/model                - 모델 정보
  POST /api/model/refresh        - 데이터셋 재로드 및 재학습
  GET  /api/stats/{regions,prices,scatter}
  GET  /api/options/{provinces,districts,neighborhoods,seller-types}
  GET  /ws/model                 - 모델 교체 이벤트 (websocket)

Example:
  go run ./cmd/estimator api
  go run ./cmd/estimator api --port 8080`,
	RunE: runAPIServer,
}

var (
	apiPort string
)

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트 (default is $PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== House Price Estimator API Server ===")

	// 1. Load config + logger + model config
	rt, err := loadRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	cfg, log := rt.cfg, rt.log
	if apiPort != "" {
		cfg.Port = apiPort
	}

	log.WithFields(map[string]interface{}{
		"port":   cfg.Port,
		"env":    cfg.Env,
		"source": cfg.Dataset.Source,
	}).Info("Initializing API server")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Dataset source
	src, err := rt.source(ctx)
	if err != nil {
		return fmt.Errorf("create dataset source: %w", err)
	}

	// 3. Initial training. A server without a model only answers 503, so fail fast.
	service := estimation.NewService(rt.model.EstimationOptions(), log.Component("estimation"))
	if _, err := service.Reload(ctx, src); err != nil {
		return fmt.Errorf("initial training: %w", err)
	}

	// 4. Redis (cache + rate limiter); disabled config gives no-op helpers
	redisClient, err := redis.NewContext(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer redisClient.Close()

	// 5. Analytics
	stats := analytics.NewService(
		service,
		redis.NewCache(redisClient, "estimator"),
		rt.model.AnalyticsSettings(),
		log.Component("analytics"),
	)

	// 6. Scheduler
	var sched *scheduler.Scheduler
	if cfg.Refresh.Enabled {
		sched = scheduler.New(log, scheduler.WithRetry(2, 30*time.Second))
		if err := sched.AddJob(jobs.NewDatasetRefreshJob(service, src, cfg.Refresh.Schedule, log)); err != nil {
			return fmt.Errorf("register refresh job: %w", err)
		}
		if err := sched.AddJob(jobs.NewStatsWarmupJob(stats, cfg.Refresh.WarmSchedule, log)); err != nil {
			return fmt.Errorf("register warmup job: %w", err)
		}
		sched.Start()
		defer sched.Stop()
	}

	// 7. Handlers + router
	router := api.NewRouter(api.Handlers{
		Estimate: handlers.NewEstimateHandler(service, rt.model.SimilarOptions(), log),
		Model:    handlers.NewModelHandler(service, src, rt.model, rt.modelYAML, log),
		Stats:    handlers.NewStatsHandler(stats, log),
		Jobs:     handlers.NewJobsHandler(sched),
		Stream:   handlers.NewModelStream(service, log),
	}, api.NewLimiter(cfg, redisClient), cfg.RateLimit.TrustProxy, log)

	// 8. Server with graceful shutdown
	server := api.New(cfg, log, router)
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	log.Info("API server started successfully")
	fmt.Printf("\n✅ Server running on http://localhost:%s\n", cfg.Port)
	fmt.Printf("   Model: %s (%d records)\n", shortVersion(service.Current().Version()), len(service.Current().Records()))
	fmt.Println("\nPress Ctrl+C to stop")

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	log.Info("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
