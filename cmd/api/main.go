package main

import (
	"context"
	"log"

	"github.com/zeer-gl/thiqa-gateway/config"
	"github.com/zeer-gl/thiqa-gateway/internal/bootstrap"
	cronjob "github.com/zeer-gl/thiqa-gateway/internal/scheduler"
	"github.com/zeer-gl/thiqa-gateway/internal/upstream"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	bootstrap.SetGinMode(cfg.App.Environment)

	rdb, err := bootstrap.OpenRedis(context.Background(), cfg.Redis)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	defer rdb.Close()

	client := upstream.NewClient(cfg.Upstream.BaseURL)

	router, services := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName: "thiqa-gateway",
		Version:     cfg.App.Version,
		Config:      cfg,
		Redis:       rdb,
		Upstream:    client,
	})

	cronjob.NewScheduler(services.Payments).Start()

	log.Printf("listening on :%s (upstream=%s)", cfg.Server.Port, cfg.Upstream.BaseURL)
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("server: %v", err)
	}
}
