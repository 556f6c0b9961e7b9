package app

import (
	"context"

	"github.com/Saurav036/nexus/internal/config"
	"github.com/Saurav036/nexus/internal/logger"
	"github.com/Saurav036/nexus/internal/redis"
	"github.com/Saurav036/nexus/internal/telemetry"
)

type Infra struct {
	Redis    *redis.Client
	Shutdown telemetry.ShutdownFunc
}

func setupInfra(ctx context.Context, cfg config.Config) (*Infra, error) {
	shutdown, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:     cfg.OTelEnabled,
		ServiceName: cfg.OTelServiceName,
		Endpoint:    cfg.OTelEndpoint,
		SampleRatio: cfg.OTelSampleRatio,
	})
	if err != nil {
		return nil, err
	}

	logger.Info("telemetry ready", map[string]any{
		"enabled": cfg.OTelEnabled,
	})

	redisClient, err := redis.New(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		_ = shutdown(ctx)
		return nil, err
	}

	logger.Info("redis ready", map[string]any{
		"addr": cfg.RedisAddr,
	})

	return &Infra{
		Redis:    redisClient,
		Shutdown: shutdown,
	}, nil
}

func (i *Infra) Close(ctx context.Context) error {
	redisErr := i.Redis.Close()
	if err := i.Shutdown(ctx); err != nil {
		return err
	}
	return redisErr
}
