package main

import (
	"log"

	"estatehub/internal/caching"
	"estatehub/internal/config"
	"estatehub/internal/jobs"

	"github.com/spf13/cobra"
)

func workerCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Run the notification task worker",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}

			redisClient := caching.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
			defer redisClient.Close()

			redisOpt, err := jobs.RedisConnOpt(cfg.Redis)
			if err != nil {
				return err
			}
			handler := jobs.NewNotificationHandler(caching.NewRedisCacheService(redisClient))
			server, mux := jobs.NewWorker(redisOpt, cfg.Queue, handler)

			log.Printf("WORKER: starting with concurrency %d", cfg.Queue.Concurrency)
			// Run blocks until SIGTERM or SIGINT.
			return server.Run(mux)
		},
	}
}
