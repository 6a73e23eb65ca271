// Command resolve-batch resolves a JSON Lines file of posts
// ({"title","description","url"}) to cafes and prints one result per line.
package main

import (
	"context"
	"flag"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ggorockee/coffeemode/internal/batch"
	"github.com/ggorockee/coffeemode/internal/config"
	"github.com/ggorockee/coffeemode/internal/database"
	"github.com/ggorockee/coffeemode/internal/logger"
	"github.com/ggorockee/coffeemode/internal/repository"
	"github.com/ggorockee/coffeemode/internal/services"
	"github.com/ggorockee/coffeemode/internal/telemetry"
	"github.com/ggorockee/coffeemode/pkg/googleplaces"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	if err := logger.Init(cfg.ServerEnv); err != nil {
		panic(err)
	}
	defer logger.Sync()
	log := logger.GetLogger("main")

	defaults := batch.DefaultConfig()
	input := flag.String("input", "-", "JSON Lines 입력 파일 (- 이면 stdin)")
	workers := flag.Int("workers", defaults.MaxWorkers, "동시 resolve 수")
	delay := flag.Duration("delay", defaults.Delay, "worker별 호출 간 딜레이")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("종료 시그널 수신, 남은 작업 취소")
		cancel()
	}()

	tracerShutdown, err := telemetry.InitTracer(ctx, "coffeemode-resolve-batch", cfg.SigNozEndpoint)
	if err != nil {
		log.Warnf("Telemetry 초기화 실패 (계속 실행): %v", err)
	} else {
		defer func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			_ = tracerShutdown(shutdownCtx)
		}()
	}

	var in io.Reader = os.Stdin
	if *input != "-" {
		f, err := os.Open(*input)
		if err != nil {
			log.Fatalf("입력 파일 열기 실패: %v", err)
		}
		defer f.Close()
		in = f
	}
	jobs, err := batch.ReadJobs(in)
	if err != nil {
		log.Fatalf("입력 파싱 실패: %v", err)
	}

	placesCfg := googleplaces.DefaultConfig()
	placesCfg.APIKey = cfg.GoogleMapsAPIKey
	placesCfg.Timeout = cfg.PlacesTimeout
	placesCfg.MaxRetries = cfg.PlacesMaxRetries
	placesCfg.Language = cfg.PlacesLanguage
	places, err := googleplaces.NewClient(placesCfg)
	if err != nil {
		log.Fatalf("Google Places 클라이언트 생성 실패: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("데이터베이스 연결 실패: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("마이그레이션 실패: %v", err)
	}

	resolver := services.NewPlaceResolver(places,
		repository.NewPlaceCacheRepo(db),
		repository.NewCafeRepo(db),
		services.ResolverConfig{CategoryHint: cfg.CategoryHint, CategorySynonyms: cfg.CategorySynonyms},
	)

	log.Infof("========== 작업 시작: %d건 (workers=%d) ==========", len(jobs), *workers)
	results, stats := batch.Run(ctx, resolver, jobs, batch.Config{MaxWorkers: *workers, Delay: *delay})
	if err := batch.WriteResults(os.Stdout, results); err != nil {
		log.Errorf("결과 출력 실패: %v", err)
	}
	log.Infof("========== 작업 종료: %s ==========", stats)
}
